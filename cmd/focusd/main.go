// focusd runs the core of the focus/task desktop app headless: the
// countdown engine, the notification dispatcher, the periodic checks, and
// the inactivity tracker, with events logged to stdout in place of a UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thamdi/focusd/internal/app"
	"github.com/thamdi/focusd/internal/block"
	"github.com/thamdi/focusd/internal/bus"
	"github.com/thamdi/focusd/internal/config"
	"github.com/thamdi/focusd/internal/dispatch"
	"github.com/thamdi/focusd/internal/logger"
	"github.com/thamdi/focusd/internal/metrics"
	"github.com/thamdi/focusd/internal/notify"
	"github.com/thamdi/focusd/internal/schedule"
	"github.com/thamdi/focusd/internal/storage"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	dataDir := flag.String("data-dir", "", "override the data directory")
	metricsAddr := flag.String("metrics-addr", "", "serve prometheus metrics on this address (e.g. :9090)")
	noChecks := flag.Bool("no-checks", false, "disable the periodic check scheduler and inactivity tracker")
	user := flag.String("user", "", "user id to sign in at startup (defaults to $FOCUSD_USER)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *noChecks {
		cfg.ChecksEnabled = false
	}

	logLevel := logger.ParseLevel(cfg.LogLevel)
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	log := logger.New(logLevel, os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence and collaborators.
	files, err := storage.NewFileStore(cfg.DataDir, log.WithComponent("storage"))
	if err != nil {
		log.Error("data dir unavailable: %v", err)
		os.Exit(1)
	}
	store := storage.NewMemoryStore(log.WithComponent("storage"))
	blocker := block.New(log.WithComponent("block"))
	b := bus.New(log.WithComponent("bus"))

	// Delivery sink: in-app center plus the native OS path. Audio is
	// optional; a headless box just loses the chime.
	center := notify.NewCenter(b, log.WithComponent("notify"))
	var player *notify.Player
	if p, err := notify.NewPlayer(log.WithComponent("notify")); err != nil {
		log.Warn("audio unavailable, chime disabled: %v", err)
	} else {
		player = p
	}
	sink := notify.NewSink(center, player, log.WithComponent("notify"))

	met := metrics.New("focusd")
	core := app.New(store, store, files, files, sink, blocker, b, log,
		app.WithChecksEnabled(cfg.ChecksEnabled),
		app.WithDispatcherOptions(dispatch.WithMetrics(met)),
		app.WithSchedulerOptions(schedule.WithBaseInterval(cfg.BaseCheckInterval), schedule.WithMetrics(met)),
	)
	defer core.Close()

	if cfg.MetricsAddr != "" {
		serveMetrics(cfg.MetricsAddr, met, log)
	}

	if uid := signInUser(*user); uid != "" {
		core.SetCurrentUser(uid)
		core.RecordUserActivity(uid)
	}

	core.Start(ctx)

	// Stand-in for the UI layer: log everything the core emits.
	events, unsubscribe := b.Subscribe(64)
	defer unsubscribe()
	go func() {
		for ev := range events {
			log.Info("event %s: %+v", ev.Kind, ev.Payload)
		}
	}()

	log.Info("focusd running (data=%s, checks=%v)", cfg.DataDir, cfg.ChecksEnabled)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("shutting down")
}

// serveMetrics exposes the metric set on a debug listener.
func serveMetrics(addr string, met *metrics.Metrics, log *logger.Logger) {
	reg := prometheus.NewRegistry()
	if err := met.Register(reg); err != nil {
		log.Error("registering metrics: %v", err)
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("metrics listener failed: %v", err)
		}
	}()
	log.Info("metrics on %s/metrics", addr)
}

func signInUser(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("FOCUSD_USER")
}
