package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	lecturehttp "github.com/yungbote/lecture-studio/internal/http"
	"github.com/yungbote/lecture-studio/internal/jobs/pipeline/lecture_build"
	"github.com/yungbote/lecture-studio/internal/observability"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/sse"
)

// Version is stamped at build time.
var Version = "dev"

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Clients  Clients
	Services Services
	Hub      *sse.SSEHub
	Pipeline *lecture_build.Pipeline
	Runner   *lecture_build.Runner
	Router   lecturehttp.RouterConfig

	closers      []io.Closer
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewWithLogger(ctx, log, cfg)
}

func NewWithLogger(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	otelShutdown, err := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     Version,
		Tracing:     cfg.Tracing,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	a := &App{Log: log, Cfg: cfg, otelShutdown: otelShutdown, cancel: cancel}

	clients, closers, err := wireClients(runCtx, log, cfg)
	a.closers = append(a.closers, closers...)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Clients = clients

	reposet, dbCloser, err := wireRepos(log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if dbCloser != nil {
		a.closers = append(a.closers, dbCloser)
	}

	a.Hub = sse.NewSSEHub(log)
	svcs, err := wireServices(log, cfg, clients, reposet, a.Hub)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Services = svcs
	a.Pipeline, a.Runner = wirePipeline(runCtx, log, cfg, clients, svcs)
	a.Router = wireRouter(log, cfg, clients, svcs, a.Runner, a.Hub)
	return a, nil
}

// StartForwarder relays run events published by other instances into the local hub.
func (a *App) StartForwarder(ctx context.Context) error {
	if a.Clients.SSEBus == nil {
		return nil
	}
	return a.Clients.SSEBus.StartForwarder(ctx, a.Hub.Broadcast)
}

// Serve runs the HTTP API until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if err := a.StartForwarder(ctx); err != nil {
		return fmt.Errorf("start SSE forwarder: %w", err)
	}
	srv := lecturehttp.NewServer(a.Router)
	a.Log.Info("Serving lecture studio", "addr", a.Cfg.HTTP.Addr)
	err := srv.Run(ctx, a.Cfg.HTTP.Addr, a.Cfg.HTTP.ShutdownGrace.Std())
	if a.Runner != nil {
		a.Runner.Wait()
	}
	return err
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && a.Log != nil {
			a.Log.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil && !errors.Is(err, context.Canceled) && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
