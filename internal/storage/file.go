package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/thamdi/focusd/internal/domain"
	"github.com/thamdi/focusd/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.ConfigStore   = (*FileStore)(nil)
	_ domain.ActivityStore = (*FileStore)(nil)
)

const configFileName = "notification_config.json"

// FileStore persists the notification config and per-user activity state as
// JSON files under a data directory. Writes are best-effort, not
// transactional.
type FileStore struct {
	dir string
	log *logger.Logger
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string, log *logger.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &FileStore{dir: dir, log: log}, nil
}

// LoadNotificationConfig reads the persisted config, or (nil, nil) when no
// config has been saved yet.
func (s *FileStore) LoadNotificationConfig() (*domain.NotificationConfig, error) {
	path := filepath.Join(s.dir, configFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg domain.NotificationConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// SaveNotificationConfig writes the config back to disk.
func (s *FileStore) SaveNotificationConfig(cfg *domain.NotificationConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	path := filepath.Join(s.dir, configFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	s.log.Debug("saved notification config to %s", path)
	return nil
}

// LoadActivityState reads a user's activity record, or (nil, nil) when none
// exists.
func (s *FileStore) LoadActivityState(userID string) (*domain.ActivityRecord, error) {
	path := s.activityPath(userID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var rec domain.ActivityRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &rec, nil
}

// SaveActivityState writes a user's activity record.
func (s *FileStore) SaveActivityState(userID string, rec *domain.ActivityRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding activity state: %w", err)
	}
	path := s.activityPath(userID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// activityPath builds the per-user state file path. User IDs are sanitized
// so they cannot escape the data directory.
func (s *FileStore) activityPath(userID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, userID)
	return filepath.Join(s.dir, fmt.Sprintf("activity_%s.json", safe))
}
