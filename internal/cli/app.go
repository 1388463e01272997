package cli

import (
	"fmt"

	"analog/internal/config"
	"analog/internal/lifecycle"
	"analog/internal/logging"
	"analog/internal/observability"
	"analog/internal/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// app wires the config, logger, store and registry shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	log      zerolog.Logger
	metrics  *prometheus.Registry
	store    *session.Store
	registry *session.Registry
	notifier *lifecycle.Notifier

	stopSignals func()
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadFromDefaultPath()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if storageDir != "" {
		cfg.StorageDir = storageDir
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// newApp builds the shared components. The registry is attached to a
// notifier relaying OS signals, so the current session is saved whenever the
// process is asked to stop.
func newApp(console bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Console: console,
		Pretty:  true,
	})
	if err != nil {
		return nil, err
	}

	promReg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(promReg)

	store := session.NewStore(cfg.StorageDir,
		session.WithLogger(logger.Component("store")),
		session.WithMetrics(metrics),
	)
	registry := session.NewRegistry(store,
		session.WithErrorReporter(session.LogReporter(logger.Component("registry"))),
	)

	notifier := &lifecycle.Notifier{}
	if err := registry.Attach(notifier); err != nil {
		_ = logger.Close()
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		log:      logger.Component("cli"),
		metrics:  promReg,
		store:    store,
		registry: registry,
		notifier: notifier,
	}
	a.stopSignals = notifier.RelaySignals()

	a.log.Debug().
		Str("storage_dir", cfg.StorageDir).
		Str("session", registry.Current().ID.String()).
		Msg("Session registry ready")

	return a, nil
}

// close delivers a final lifecycle signal so the current session is saved,
// then releases everything newApp acquired.
func (a *app) close() {
	a.stopSignals()
	a.notifier.Notify()
	_ = a.registry.Close()
	_ = a.logger.Close()
}

// readOnlyApp loads config and a store without a live registry subscription.
// Used by commands that only inspect storage.
func readOnlyApp() (*session.Store, *logging.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Console: false,
	})
	if err != nil {
		return nil, nil, err
	}

	store := session.NewStore(cfg.StorageDir, session.WithLogger(logger.Component("store")))
	return store, logger, nil
}
