// Package gateway exposes the bridge over HTTP: a WebSocket endpoint the
// reviewer webview connects to, plus health and metrics endpoints. It is the
// only package that owns a listener.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/droidbridge/droidbridge/internal/bridge"
)

// Server defaults.
const (
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	DefaultMessagesPerSecond = 50
	DefaultReadLimitBytes    = 32 * 1024
)

// Config wires a Gateway. Router is required.
type Config struct {
	Bind   string
	Router *bridge.Router
	Logger *slog.Logger

	// Registry is consulted by the health endpoint for the operation count.
	Registry *bridge.Registry

	// Prometheus is the metrics registry backing /metrics. Nil means a fresh
	// private registry.
	Prometheus *prometheus.Registry

	// Metrics reuses counters already registered on Prometheus, for callers
	// that built them first to hand to the router. Nil means the gateway
	// creates and registers its own.
	Metrics *Metrics

	// MessagesPerSecond caps inbound socket messages per connection, before
	// any command parsing. Zero means DefaultMessagesPerSecond.
	MessagesPerSecond float64

	// ReadLimitBytes caps one socket message. Zero means
	// DefaultReadLimitBytes.
	ReadLimitBytes int64

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Gateway is the HTTP server around the bridge router.
type Gateway struct {
	bind     string
	router   *bridge.Router
	registry *bridge.Registry
	logger   *slog.Logger
	metrics  *Metrics
	promReg  *prometheus.Registry

	messagesPerSecond float64
	readLimitBytes    int64
	readTimeout       time.Duration
	writeTimeout      time.Duration
	shutdownTimeout   time.Duration

	server      *http.Server
	connections atomic.Int64
	startedAt   time.Time
}

// New creates a gateway. The returned gateway's Metrics implements
// bridge.Metrics and should be handed to the router configuration.
func New(cfg Config) (*Gateway, error) {
	if cfg.Router == nil {
		return nil, errors.New("gateway: router is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	promReg := cfg.Prometheus
	if promReg == nil {
		promReg = prometheus.NewRegistry()
	}

	g := &Gateway{
		bind:              cfg.Bind,
		router:            cfg.Router,
		registry:          cfg.Registry,
		logger:            logger,
		promReg:           promReg,
		messagesPerSecond: cfg.MessagesPerSecond,
		readLimitBytes:    cfg.ReadLimitBytes,
		readTimeout:       cfg.ReadTimeout,
		writeTimeout:      cfg.WriteTimeout,
		shutdownTimeout:   cfg.ShutdownTimeout,
	}
	if g.messagesPerSecond <= 0 {
		g.messagesPerSecond = DefaultMessagesPerSecond
	}
	if g.readLimitBytes <= 0 {
		g.readLimitBytes = DefaultReadLimitBytes
	}
	if g.readTimeout <= 0 {
		g.readTimeout = DefaultReadTimeout
	}
	if g.writeTimeout <= 0 {
		g.writeTimeout = DefaultWriteTimeout
	}
	if g.shutdownTimeout <= 0 {
		g.shutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Metrics != nil {
		g.metrics = cfg.Metrics
	} else {
		var err error
		g.metrics, err = NewMetrics(promReg)
		if err != nil {
			return nil, fmt.Errorf("gateway: register metrics: %w", err)
		}
	}
	return g, nil
}

// Metrics returns the dispatch counters for wiring into the router.
func (g *Gateway) Metrics() *Metrics {
	return g.metrics
}

// Handler returns the HTTP handler, for serving through an external listener.
func (g *Gateway) Handler() http.Handler {
	return g.buildRouter()
}

// Start binds the listener and serves in the background.
func (g *Gateway) Start() error {
	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:         g.bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.readTimeout,
		WriteTimeout: g.writeTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.bind)
	if err != nil {
		return fmt.Errorf("gateway: listen on %s: %w", g.bind, err)
	}

	go func() {
		g.logger.Info("gateway listening", slog.String("addr", g.bind))
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", slog.Any("error", err))
		}
	}()

	return nil
}

// Stop shuts the server down gracefully.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.shutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
