package repository

import (
	"context"

	"EventWeights/internal/domain/models"
)

// Source is the read-only relational store a snapshot is built from.
type Source interface {
	LoadEventDefinitions(ctx context.Context) ([]models.EventDefinition, error)
	LoadOccurrences(ctx context.Context) ([]models.Occurrence, error)
	LoadRateRows(ctx context.Context, table string) ([]models.RateRow, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordReload(status string, seconds float64)
	RecordSnapshotSize(kind string, n int)
	RecordCompute(granularity string, seconds float64, features int)
	RecordError(kind string)
}
