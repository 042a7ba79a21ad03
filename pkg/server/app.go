package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PeerBench/pkg/config"
	xhttp "PeerBench/pkg/http"
	applogger "PeerBench/pkg/logger"
	"PeerBench/pkg/metrics"
)

type closer struct {
	name string
	fn   func() error
}

type janitor struct {
	every time.Duration
	fn    func(context.Context)
}

// Option customises App.
type Option func(*App)

// WithCloser registers a resource released on shutdown, in registration order.
func WithCloser(name string, fn func() error) Option {
	return func(a *App) { a.closers = append(a.closers, closer{name: name, fn: fn}) }
}

// WithJanitor runs fn every interval until shutdown.
func WithJanitor(every time.Duration, fn func(context.Context)) Option {
	return func(a *App) { a.janitors = append(a.janitors, janitor{every: every, fn: fn}) }
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	closers    []closer
	janitors   []janitor
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, rec *metrics.Recorder, handler xhttp.Handler, opts ...Option) *App {
	serverOpts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORSOrigins),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled && rec != nil {
		serverOpts = append(serverOpts, xhttp.WithMetrics(rec.Registry(), rec.Handler(), cfg.Metrics.Path, cfg.Metrics.SlowThreshold))
	}

	a := &App{
		cfg:        cfg,
		log:        l,
		httpServer: xhttp.NewServer(handler, serverOpts...),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HTTPServer exposes the server, mainly for tests.
func (a *App) HTTPServer() *xhttp.Server { return a.httpServer }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext serves until ctx is done, then shuts down.
func (a *App) RunContext(ctx context.Context) error {
	for _, j := range a.janitors {
		go a.loop(ctx, j)
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("peerbench started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("fdic", a.cfg.FDIC.BaseURL),
		applogger.Bool("fallback", a.cfg.Fallback.Enabled),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) loop(ctx context.Context, j janitor) {
	if j.every <= 0 {
		return
	}
	t := time.NewTicker(j.every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			j.fn(ctx)
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	for _, c := range a.closers {
		if err := c.fn(); err != nil {
			a.log.Warn("close error", applogger.String("resource", c.name), applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
