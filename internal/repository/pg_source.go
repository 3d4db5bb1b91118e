package repository

import (
	"context"
	"fmt"
	"time"

	"EventWeights/internal/domain/models"
	domrepo "EventWeights/internal/domain/repository"
	applogger "EventWeights/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSource implements repository.Source backed by a pgx pool.
type PGSource struct {
	pool   *pgxpool.Pool
	tables Tables
	l      *applogger.Logger
}

var _ domrepo.Source = (*PGSource)(nil)

func NewPGSource(pool *pgxpool.Pool, tables Tables, l *applogger.Logger) *PGSource {
	if l == nil {
		l = applogger.NewNop()
	}
	return &PGSource{pool: pool, tables: tables, l: l}
}

func (s *PGSource) LoadEventDefinitions(ctx context.Context) ([]models.EventDefinition, error) {
	start := time.Now()
	rows, err := s.pool.Query(ctx, eventsQuery(s.tables))
	if err != nil {
		s.logError("load_events query error", s.tables.Events, err)
		return nil, fmt.Errorf("load events: %w", err)
	}
	defer rows.Close()

	out := make([]models.EventDefinition, 0, 512)
	for rows.Next() {
		var (
			id    int64
			count *int64
		)
		if err := rows.Scan(&id, &count); err != nil {
			s.logError("load_events scan error", s.tables.Events, err)
			return nil, fmt.Errorf("scan event: %w", err)
		}
		def := models.EventDefinition{ID: id}
		if count != nil {
			def.OccurrenceCount = *count
		}
		def.Type = models.EventTypeFromCount(def.OccurrenceCount)
		out = append(out, def)
	}
	if err := rows.Err(); err != nil {
		s.logError("load_events rows error", s.tables.Events, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.logDone("load_events ok", s.tables.Events, len(out), start)
	return out, nil
}

func (s *PGSource) LoadOccurrences(ctx context.Context) ([]models.Occurrence, error) {
	start := time.Now()
	rows, err := s.pool.Query(ctx, occurrencesQuery(s.tables))
	if err != nil {
		s.logError("load_occurrences query error", s.tables.Occurrences, err)
		return nil, fmt.Errorf("load occurrences: %w", err)
	}
	defer rows.Close()

	out := make([]models.Occurrence, 0, 4096)
	for rows.Next() {
		var (
			id         int64
			at         *time.Time
			importance *int64
		)
		if err := rows.Scan(&id, &at, &importance); err != nil {
			s.logError("load_occurrences scan error", s.tables.Occurrences, err)
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		if at == nil {
			continue
		}
		o := models.Occurrence{EventID: id, Time: at.UTC()}
		if importance != nil {
			o.Importance = int(*importance)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		s.logError("load_occurrences rows error", s.tables.Occurrences, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.logDone("load_occurrences ok", s.tables.Occurrences, len(out), start)
	return out, nil
}

func (s *PGSource) LoadRateRows(ctx context.Context, table string) ([]models.RateRow, error) {
	start := time.Now()
	rows, err := s.pool.Query(ctx, ratesQuery(table))
	if err != nil {
		s.logError("load_rates query error", table, err)
		return nil, fmt.Errorf("load rates %s: %w", table, err)
	}
	defer rows.Close()

	out := make([]models.RateRow, 0, 8192)
	for rows.Next() {
		var (
			r    models.RateRow
			date time.Time
		)
		if err := rows.Scan(&date, &r.Open, &r.Close, &r.High, &r.Low, &r.T1); err != nil {
			s.logError("load_rates scan error", table, err)
			return nil, fmt.Errorf("scan rate: %w", err)
		}
		r.Date = date.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		s.logError("load_rates rows error", table, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.logDone("load_rates ok", table, len(out), start)
	return out, nil
}

// Health pings the pool.
func (s *PGSource) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases all pool connections.
func (s *PGSource) Close() error {
	s.pool.Close()
	return nil
}

func (s *PGSource) logError(msg, table string, err error) {
	s.l.Error("postgres "+msg,
		applogger.String("table", table),
		applogger.Error(err),
	)
}

func (s *PGSource) logDone(msg, table string, n int, start time.Time) {
	s.l.Info("postgres "+msg,
		applogger.String("table", table),
		applogger.Int("rows", n),
		applogger.Duration("duration_ms", time.Since(start)),
	)
}
