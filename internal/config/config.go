// Package config loads the process-level configuration: file paths, log
// level, and subsystem toggles. Runtime notification settings live in
// domain.NotificationConfig and are managed by the app facade instead.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the process configuration, sourced from an optional YAML file
// and FOCUSD_* environment variables.
type Config struct {
	DataDir           string        `mapstructure:"data_dir"`
	LogLevel          string        `mapstructure:"log_level"`
	MetricsAddr       string        `mapstructure:"metrics_addr"`
	ChecksEnabled     bool          `mapstructure:"checks_enabled"`
	BaseCheckInterval time.Duration `mapstructure:"base_check_interval"`
}

// Load reads the configuration. A missing config file is fine; defaults and
// environment variables cover everything.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("focusd")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "focusd"))
	}

	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("checks_enabled", true)
	v.SetDefault("base_check_interval", time.Minute)

	v.SetEnvPrefix("FOCUSD")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".focusd"
	}
	return filepath.Join(home, ".local", "share", "focusd")
}
