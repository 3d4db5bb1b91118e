package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"EventWeights/internal/domain/models"
	domrepo "EventWeights/internal/domain/repository"
	applogger "EventWeights/pkg/logger"
)

// SQLSource implements repository.Source over database/sql.
// It serves both the ClickHouse and SQLite drivers.
type SQLSource struct {
	db     *sql.DB
	driver string
	tables Tables
	l      *applogger.Logger
}

var _ domrepo.Source = (*SQLSource)(nil)

// NewSQLSource wraps an open pool; driver is used for log context only.
func NewSQLSource(db *sql.DB, driver string, tables Tables, l *applogger.Logger) *SQLSource {
	if l == nil {
		l = applogger.NewNop()
	}
	return &SQLSource{db: db, driver: driver, tables: tables, l: l}
}

func (s *SQLSource) LoadEventDefinitions(ctx context.Context) ([]models.EventDefinition, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, eventsQuery(s.tables))
	if err != nil {
		s.logError("load_events query error", s.tables.Events, err)
		return nil, fmt.Errorf("load events: %w", err)
	}
	defer rows.Close()

	out := make([]models.EventDefinition, 0, 512)
	for rows.Next() {
		var (
			id    int64
			count sql.NullInt64
		)
		if err := rows.Scan(&id, &count); err != nil {
			s.logError("load_events scan error", s.tables.Events, err)
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, models.EventDefinition{
			ID:              id,
			OccurrenceCount: count.Int64,
			Type:            models.EventTypeFromCount(count.Int64),
		})
	}
	if err := rows.Err(); err != nil {
		s.logError("load_events rows error", s.tables.Events, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.logDone("load_events ok", s.tables.Events, len(out), start)
	return out, nil
}

func (s *SQLSource) LoadOccurrences(ctx context.Context) ([]models.Occurrence, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, occurrencesQuery(s.tables))
	if err != nil {
		s.logError("load_occurrences query error", s.tables.Occurrences, err)
		return nil, fmt.Errorf("load occurrences: %w", err)
	}
	defer rows.Close()

	out := make([]models.Occurrence, 0, 4096)
	skipped := 0
	for rows.Next() {
		var (
			id         int64
			at         any
			importance sql.NullInt64
		)
		if err := rows.Scan(&id, &at, &importance); err != nil {
			s.logError("load_occurrences scan error", s.tables.Occurrences, err)
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		ts, err := asTime(at)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, models.Occurrence{EventID: id, Time: ts, Importance: int(importance.Int64)})
	}
	if err := rows.Err(); err != nil {
		s.logError("load_occurrences rows error", s.tables.Occurrences, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	if skipped > 0 {
		s.l.Warn("occurrences with unreadable timestamps skipped",
			applogger.String("table", s.tables.Occurrences),
			applogger.Int("skipped", skipped),
		)
	}
	s.logDone("load_occurrences ok", s.tables.Occurrences, len(out), start)
	return out, nil
}

func (s *SQLSource) LoadRateRows(ctx context.Context, table string) ([]models.RateRow, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, ratesQuery(table))
	if err != nil {
		s.logError("load_rates query error", table, err)
		return nil, fmt.Errorf("load rates %s: %w", table, err)
	}
	defer rows.Close()

	out := make([]models.RateRow, 0, 8192)
	for rows.Next() {
		var (
			date any
			cols [5]any
		)
		if err := rows.Scan(&date, &cols[0], &cols[1], &cols[2], &cols[3], &cols[4]); err != nil {
			s.logError("load_rates scan error", table, err)
			return nil, fmt.Errorf("scan rate: %w", err)
		}
		r, err := rateRow(date, cols)
		if err != nil {
			s.logError("load_rates convert error", table, err)
			return nil, fmt.Errorf("convert rate: %w", err)
		}
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
func (s *SQLSource) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the pool.
func (s *SQLSource) Close() error {
	return s.db.Close()
}

func (s *SQLSource) logError(msg, table string, err error) {
	s.l.Error(s.driver+" "+msg,
		applogger.String("table", table),
		applogger.Error(err),
	)
}

func (s *SQLSource) logDone(msg, table string, n int, start time.Time) {
	s.l.Info(s.driver+" "+msg,
		applogger.String("table", table),
		applogger.Int("rows", n),
		applogger.Duration("duration_ms", time.Since(start)),
	)
}
