package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "EventWeights/internal/domain/repository"
	"EventWeights/internal/usecase"
	"EventWeights/pkg/config"
	xhttp "EventWeights/pkg/http"
	applogger "EventWeights/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	reloader   *usecase.Reloader
	source     domrepo.Source
	httpServer *xhttp.Server
	closers    []io.Closer
}

// New creates a new App instance with all dependencies. closers are closed last,
// in order, after the source.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	reloader *usecase.Reloader,
	source domrepo.Source,
	httpServer *xhttp.Server,
	closers ...io.Closer,
) *App {
	return &App{
		cfg:        cfg,
		l:          l,
		reloader:   reloader,
		source:     source,
		httpServer: httpServer,
		closers:    closers,
	}
}

// Run installs the first snapshot, starts serving and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, a.cfg.Reload.Timeout)
	err := a.reloader.Start(startCtx)
	cancel()
	if err != nil {
		a.l.Error("snapshot build failed at startup", applogger.Error(err))
		a.closeInfra()
		return err
	}
	a.l.Info("reloader started", applogger.Duration("interval", a.cfg.Reload.Interval))

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops intake first, then the scheduler, then releases the store.
func (a *App) shutdown() error {
	a.l.Info("shutting down...")
	timeout := a.httpServer.ShutdownTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}
	if err := a.reloader.Stop(ctx); err != nil {
		a.l.Warn("reloader stop error", applogger.Error(err))
		errs = append(errs, fmt.Errorf("reloader: %w", err))
	}
	a.closeInfra()

	a.l.Info("shutdown complete")
	a.l.RemoveCollector()
	return errors.Join(errs...)
}

func (a *App) closeInfra() {
	if a.source != nil {
		if err := a.source.Close(); err != nil {
			a.l.Warn("source close error", applogger.Error(err))
		}
	}
	for _, c := range a.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			a.l.Warn("close error", applogger.Error(err))
		}
	}
}
