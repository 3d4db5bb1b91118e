package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"EventWeights/internal/domain/models"
	domrepo "EventWeights/internal/domain/repository"
	"EventWeights/internal/snapshot"
	applogger "EventWeights/pkg/logger"
)

// ErrorReporter forwards failures to an external collector.
type ErrorReporter interface {
	Report(ctx context.Context, script string, err error)
}

// ReloaderConfig controls the rebuild schedule.
type ReloaderConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Reloader rebuilds the snapshot from the source on a fixed interval and publishes
// it through the holder. A failed rebuild leaves the installed snapshot in place.
type Reloader struct {
	src         domrepo.Source
	instruments []models.Instrument
	holder      *snapshot.Holder
	cfg         ReloaderConfig
	metrics     domrepo.Metrics
	reporter    ErrorReporter
	l           *applogger.Logger

	mu     sync.Mutex // serialises rebuilds
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewReloader(src domrepo.Source, instruments []models.Instrument, holder *snapshot.Holder, cfg ReloaderConfig, metrics domrepo.Metrics, reporter ErrorReporter, l *applogger.Logger) *Reloader {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	if l == nil {
		l = applogger.NewNop()
	}
	return &Reloader{
		src:         src,
		instruments: instruments,
		holder:      holder,
		cfg:         cfg,
		metrics:     metrics,
		reporter:    reporter,
		l:           l.With(applogger.String("component", "reloader")),
	}
}

// Start installs the first snapshot synchronously, then schedules rebuilds.
// A failed first build is returned and nothing is scheduled.
func (r *Reloader) Start(ctx context.Context) error {
	if err := r.Reload(ctx); err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.wg.Add(1)
	go r.loop(loopCtx)
	return nil
}

func (r *Reloader) loop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = r.Reload(ctx)
		}
	}
}

// Reload builds a fresh snapshot and installs it.
func (r *Reloader) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	snap, err := snapshot.Load(ctx, r.src, r.instruments)
	elapsed := time.Since(start)
	if err != nil {
		r.fail(ctx, err, elapsed)
		return err
	}

	r.holder.Store(snap)
	st := snap.Stats()
	if r.metrics != nil {
		r.metrics.RecordReload("ok", elapsed.Seconds())
		r.metrics.RecordSnapshotSize("events", st.Events)
		r.metrics.RecordSnapshotSize("occurrences", st.Occurrences)
		r.metrics.RecordSnapshotSize("series", st.Series)
		r.metrics.RecordSnapshotSize("rates", st.Rates)
		r.metrics.RecordSnapshotSize("codes", st.Codes)
	}
	r.l.Info("snapshot installed",
		applogger.String("version", snap.Version),
		applogger.Int("events", st.Events),
		applogger.Int("occurrences", st.Occurrences),
		applogger.Int("series", st.Series),
		applogger.Int("rates", st.Rates),
		applogger.Int("codes", st.Codes),
		applogger.Duration("duration_ms", elapsed),
	)
	return nil
}

func (r *Reloader) fail(ctx context.Context, err error, elapsed time.Duration) {
	if r.metrics != nil {
		r.metrics.RecordReload("error", elapsed.Seconds())
		r.metrics.RecordError("reload")
	}
	// shutdown cancels the in-flight rebuild; that is not a failure worth reporting
	if errors.Is(err, context.Canceled) {
		r.l.Warn("snapshot rebuild cancelled", applogger.Error(err))
		return
	}
	fields := []applogger.Field{applogger.Error(err), applogger.Duration("duration_ms", elapsed)}
	if cur := r.holder.Load(); cur != nil {
		fields = append(fields, applogger.String("kept_version", cur.Version))
	}
	r.l.Error("snapshot rebuild failed", fields...)
	if r.reporter != nil {
		r.reporter.Report(context.WithoutCancel(ctx), "server_background_reload", err)
	}
}

// Stop cancels the schedule and any in-flight rebuild, then waits for the loop.
func (r *Reloader) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
