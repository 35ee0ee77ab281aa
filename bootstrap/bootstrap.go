// Package bootstrap wires all dependencies and starts the application.
// Configuration comes from a YAML file with environment overrides; the
// holder keeps cooldown settings and the log level hot-reloadable.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/artpar/cmdgate/adapters/clock"
	"github.com/artpar/cmdgate/adapters/hasher"
	"github.com/artpar/cmdgate/adapters/idgen"
	"github.com/artpar/cmdgate/adapters/memory"
	"github.com/artpar/cmdgate/adapters/metrics"
	"github.com/artpar/cmdgate/adapters/sqlite"
	"github.com/artpar/cmdgate/app"
	"github.com/artpar/cmdgate/config"
	"github.com/artpar/cmdgate/core/events"
	"github.com/artpar/cmdgate/core/registry"
	"github.com/artpar/cmdgate/domain/cooldown"
	"github.com/artpar/cmdgate/ports"
	"github.com/artpar/cmdgate/web"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	Holder     *config.Holder
	DB         *sqlite.DB
	Metrics    *metrics.Collector
	Bus        *events.Bus
	Registry   *registry.Registry
	Dispatcher *app.DispatchService
	HTTPServer *http.Server

	// Adapters (for cleanup)
	usageRecorder ports.UsageRecorder
}

// Options provides configuration for application initialization.
type Options struct {
	// ConfigPath names the YAML config file. Empty falls back to
	// environment variables and defaults.
	ConfigPath string

	// Version is the build version for /version and the OpenAPI doc.
	Version string

	// Registrations are the commands served by the dispatcher.
	Registrations []app.Registration

	// Watch enables the config file watcher and SIGHUP handling.
	Watch bool
}

// New creates and initializes the application.
func New(opts Options) (*App, error) {
	cfg, err := config.LoadWithFallback(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("initializing cmdgate")

	a := &App{
		Logger: logger,
		Config: cfg,
	}

	// Stores by database driver
	usageStore, err := a.initStores(cfg)
	if err != nil {
		return nil, fmt.Errorf("init stores: %w", err)
	}

	a.usageRecorder = NewLocalUsageRecorder(usageStore, logger,
		cfg.Usage.BatchSize, cfg.Usage.FlushInterval)

	a.Bus = events.NewBus(logger)

	if cfg.Metrics.On() {
		a.Metrics = metrics.New()
		subscribeMetrics(a.Bus, a.Metrics)
		logger.Info().Msg("prometheus metrics enabled")
	}

	// Dispatcher
	a.Registry = registry.New()
	a.Dispatcher = app.NewDispatchService(app.DispatchDeps{
		Registry:  a.Registry,
		Cooldowns: memory.NewCooldownStore(),
		Usage:     a.usageRecorder,
		Clock:     clock.Real{},
		IDGen:     idgen.UUID{},
		Bus:       a.Bus,
	}, app.DispatchConfig{
		Prefix: cfg.Prefix,
		Cooldown: cooldown.Config{
			Uses:   cfg.Cooldown.Uses,
			Window: cfg.Cooldown.Window,
		},
	})

	if err := a.Dispatcher.RegisterAll(opts.Registrations...); err != nil {
		return nil, fmt.Errorf("register commands: %w", err)
	}
	if a.Metrics != nil {
		a.Metrics.RegisteredCommands.Set(float64(a.Registry.Len()))
	}
	logger.Info().Int("commands", a.Registry.Len()).Str("prefix", cfg.Prefix).Msg("commands registered")

	// HTTP introspection server
	if cfg.Web.On() {
		a.initHTTPServer(cfg, opts.Version)
	}

	// Config hot reload
	if opts.ConfigPath != "" {
		if err := a.initHolder(opts.ConfigPath, opts.Watch); err != nil {
			return nil, fmt.Errorf("init config holder: %w", err)
		}
	}

	return a, nil
}

func (a *App) initStores(cfg *config.Config) (ports.UsageStore, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		a.DB = db
		a.Logger.Info().Str("dsn", cfg.Database.DSN).Msg("database initialized")
		return sqlite.NewUsageStore(db), nil

	case "memory":
		a.Logger.Info().Msg("using in-memory stores")
		return memory.NewUsageStore(), nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func (a *App) initHTTPServer(cfg *config.Config, version string) {
	handler := web.NewHandler(web.Deps{
		Registry:       a.Registry,
		Prefix:         cfg.Prefix,
		Logger:         a.Logger,
		Metrics:        a.Metrics,
		Hasher:         hasher.NewBcrypt(0),
		AdminTokenHash: cfg.Web.AdminTokenHash,
		Version:        version,
		EnableOpenAPI:  cfg.OpenAPI.On(),
		MetricsPath:    cfg.Metrics.Path,
	})

	a.HTTPServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("http server configured")
}

func (a *App) initHolder(path string, watch bool) error {
	holder, err := config.NewHolder(path, a.Logger)
	if err != nil {
		return err
	}
	a.Holder = holder

	holder.OnChange(func(cfg *config.Config) {
		a.applyConfig(cfg)
		if a.Metrics != nil {
			a.Metrics.ConfigReloads.Inc()
		}
	})
	holder.OnReloadError(func(err error) {
		if a.Metrics != nil {
			a.Metrics.ConfigReloadErrors.Inc()
		}
	})

	if watch {
		if err := holder.WatchFile(); err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		holder.WatchSignals()
	}

	return nil
}

// applyConfig pushes the hot-reloadable settings into running services.
func (a *App) applyConfig(cfg *config.Config) {
	a.Dispatcher.UpdateConfig(cooldown.Config{
		Uses:   cfg.Cooldown.Uses,
		Window: cfg.Cooldown.Window,
	})

	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	a.Config = cfg
}

// Run starts the HTTP server and blocks until interrupt or server error.
func (a *App) Run() error {
	errCh := make(chan error, 1)

	if a.HTTPServer != nil {
		go func() {
			a.Logger.Info().
				Str("addr", a.HTTPServer.Addr).
				Msg("starting http server")
			if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application, aggregating every cleanup
// error instead of returning the first.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var errs *multierror.Error

	if a.Holder != nil {
		a.Holder.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
			errs = multierror.Append(errs, fmt.Errorf("http server: %w", err))
		}
	}

	if a.usageRecorder != nil {
		if err := a.usageRecorder.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("usage recorder close error")
			errs = multierror.Append(errs, fmt.Errorf("usage recorder: %w", err))
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
			errs = multierror.Append(errs, fmt.Errorf("database: %w", err))
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return errs.ErrorOrNil()
}

// subscribeMetrics maps dispatcher lifecycle events onto the collector.
func subscribeMetrics(bus *events.Bus, m *metrics.Collector) {
	bus.Subscribe("command.*", func(ctx context.Context, e events.Event) error {
		m.DispatchesTotal.WithLabelValues(e.Command, eventStatus(e.Name)).Inc()
		return nil
	})

	bus.Subscribe(events.Dispatched, func(ctx context.Context, e events.Event) error {
		if ms, ok := e.Data["latency_ms"].(int64); ok {
			m.DispatchDuration.WithLabelValues(e.Command).Observe(float64(ms) / 1000)
		}
		return nil
	})

	bus.Subscribe(events.Rejected, func(ctx context.Context, e events.Event) error {
		codes, ok := e.Data["codes"].([]string)
		if !ok {
			return nil
		}
		for _, code := range codes {
			m.ValidationErrors.WithLabelValues(e.Command, code).Inc()
		}
		return nil
	})
}

// eventStatus maps "command.dispatched" to the "dispatched" label.
func eventStatus(name string) string {
	const prefix = "command."
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		return name[len(prefix):]
	}
	return name
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
