// Package app assembles the full bridge: configuration, security layer,
// collection store, operation registry, dispatch router, and gateway. The
// droidbridge binary is a thin CLI over Run.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/droidbridge/droidbridge/internal/api"
	"github.com/droidbridge/droidbridge/internal/bridge"
	"github.com/droidbridge/droidbridge/internal/collection"
	"github.com/droidbridge/droidbridge/internal/config"
	"github.com/droidbridge/droidbridge/internal/gateway"
	"github.com/droidbridge/droidbridge/internal/host"
	"github.com/droidbridge/droidbridge/internal/security"
	"github.com/droidbridge/droidbridge/internal/tts"
)

// maintenanceSchedule runs the nightly store maintenance.
const maintenanceSchedule = "0 3 * * *"

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file. Empty
	// searches the standard locations; absent everywhere means defaults.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string
}

// Run starts the bridge and blocks until a shutdown signal arrives.
func Run(params RunParams) error {
	cfg, err := LoadConfig(params.ConfigPath)
	if err != nil {
		return err
	}

	logger := NewLogger(cfg)
	logger.Info("droidbridge starting",
		slog.String("version", params.Version),
		slog.String("bind", cfg.Gateway.Bind))

	stack, err := buildStack(cfg, logger)
	if err != nil {
		return err
	}
	defer stack.close(logger)

	if err := stack.gateway.Start(); err != nil {
		return err
	}
	stack.cron.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := stack.gateway.Stop(shutdownCtx); err != nil {
		logger.Error("gateway shutdown failed", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}

// LoadConfig resolves and loads the configuration. A missing file is not an
// error; the defaults describe a working local setup.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		resolved, ok := resolveConfigPath()
		if !ok {
			return config.Default(), nil
		}
		path = resolved
	}
	return config.Load(path)
}

// NewLogger builds the redacting logger every component shares. Template
// content never reaches the log unsanitized, even at debug level.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.DebugMode {
		level = slog.LevelDebug
	}
	inner := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(security.NewRedactingHandler(inner, 0))
}

// stack holds every running component, in dependency order.
type stack struct {
	store    *collection.Store
	session  *collection.Session
	engine   *tts.Engine
	registry *bridge.Registry
	router   *bridge.Router
	gateway  *gateway.Gateway
	cron     *cron.Cron
	auditLog *os.File
}

// buildStack wires the components without starting anything.
func buildStack(cfg *config.Config, logger *slog.Logger) (*stack, error) {
	s := &stack{}

	var auditWriter *os.File
	if cfg.Security.AuditLogPath != "" {
		f, err := os.OpenFile(cfg.Security.AuditLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("app: open audit log: %w", err)
		}
		auditWriter = f
		s.auditLog = f
	}
	audit := security.NewAuditLogger(security.AuditLoggerConfig{Writer: auditWriter})
	limiter := security.NewLimiter()

	store, err := collection.Open(cfg.Collection.Path)
	if err != nil {
		return nil, err
	}
	s.store = store

	session, err := collection.NewSession(context.Background(), store)
	if err != nil {
		s.close(logger)
		return nil, err
	}
	s.session = session

	s.engine = tts.New(tts.Config{Logger: logger})

	hst := &host.Host{
		Reviewer:   session,
		Collection: store,
		Window:     newConsoleWindow(logger),
	}

	operations := api.New(api.Config{
		Host:          hst,
		TTS:           s.engine,
		Logger:        logger,
		ShowToasts:    cfg.UI.ShowToastNotifications,
		ToastDuration: time.Duration(cfg.UI.ToastDurationMS) * time.Millisecond,
		TTSEnabled:    cfg.TTS.Enabled,
	})
	s.registry = bridge.NewRegistry()
	if err := operations.Register(s.registry); err != nil {
		s.close(logger)
		return nil, err
	}

	promReg := prometheus.NewRegistry()
	metrics, err := gateway.NewMetrics(promReg)
	if err != nil {
		s.close(logger)
		return nil, err
	}

	s.router = bridge.NewRouter(bridge.Config{
		Registry:        s.registry,
		Limiter:         limiter,
		Audit:           audit,
		Logger:          logger,
		Metrics:         metrics,
		RatePerSecond:   cfg.Security.RateLimitPerSecond,
		MaxPayloadBytes: cfg.Security.MaxPayloadBytes,
		TemplateSource: func() (string, bool) {
			card, ok := session.Card()
			if !ok {
				return "", false
			}
			return card.Template.Question, true
		},
	})

	s.gateway, err = gateway.New(gateway.Config{
		Bind:              cfg.Gateway.Bind,
		Router:            s.router,
		Registry:          s.registry,
		Logger:            logger,
		Prometheus:        promReg,
		Metrics:           metrics,
		MessagesPerSecond: cfg.Gateway.SocketMessagesPerSecond,
		ReadLimitBytes:    cfg.Gateway.SocketReadLimitBytes,
	})
	if err != nil {
		s.close(logger)
		return nil, err
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(maintenanceSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := store.Optimize(ctx); err != nil {
			logger.Warn("store maintenance failed", slog.Any("error", err))
		} else {
			logger.Info("store maintenance completed")
		}
	}); err != nil {
		s.close(logger)
		return nil, err
	}

	return s, nil
}

// close releases everything buildStack acquired, tolerating partial builds.
func (s *stack) close(logger *slog.Logger) {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.engine != nil {
		s.engine.Stop()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logger.Warn("closing collection failed", slog.Any("error", err))
		}
	}
	if s.auditLog != nil {
		_ = s.auditLog.Close()
	}
}

// resolveConfigPath searches the standard locations.
// Order: $XDG_CONFIG_HOME/droidbridge/droidbridge.yaml ->
// ~/.config/droidbridge/droidbridge.yaml -> ./droidbridge.yaml
func resolveConfigPath() (string, bool) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "droidbridge", "droidbridge.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "droidbridge", "droidbridge.yaml"))
	}

	candidates = append(candidates, "droidbridge.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}
