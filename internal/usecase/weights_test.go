package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"EventWeights/internal/domain/models"
	domrepo "EventWeights/internal/domain/repository"
	"EventWeights/internal/snapshot"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMetrics struct {
	mu       sync.Mutex
	reloads  map[string]int
	computes int
	errors   map[string]int
	sizes    map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{reloads: map[string]int{}, errors: map[string]int{}, sizes: map[string]int{}}
}

func (f *fakeMetrics) RecordReload(status string, _ float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads[status]++
}

func (f *fakeMetrics) RecordSnapshotSize(kind string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sizes[kind] = n
}

func (f *fakeMetrics) RecordCompute(string, float64, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.computes++
}

func (f *fakeMetrics) RecordError(kind string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[kind]++
}

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

var target = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func row(at time.Time, open, close, high, t1 string) models.RateRow {
	r := models.RateRow{Date: at, Open: dec(open), Close: dec(close), High: dec(high), Low: dec("0.5")}
	if t1 != "" {
		r.T1 = dec(t1)
	}
	return r
}

// fixtureInput: event 501 recurs with two occurrences before the target, one of them
// three hours before it. Both shifted timestamps are hourly maxima of EURUSD and the
// candle before the target is bullish.
func fixtureInput() snapshot.Input {
	prior := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	inWindow := target.Add(-3 * time.Hour)
	hourly := models.Series{InstrumentID: 1, Granularity: models.Hourly}

	return snapshot.Input{
		Events: []models.EventDefinition{
			{ID: 501, OccurrenceCount: 12},
			{ID: 7, OccurrenceCount: 1},
		},
		Occurrences: []models.Occurrence{
			{EventID: 501, Time: prior, Importance: 2},
			{EventID: 501, Time: inWindow, Importance: 1},
			{EventID: 7, Time: target.AddDate(0, 0, -7), Importance: 3},
			{EventID: 7, Time: target, Importance: 3},
		},
		Rates: map[models.Series][]models.RateRow{
			hourly: {
				row(prior.Add(2*time.Hour), "1", "1", "1", ""),
				row(prior.Add(3*time.Hour), "1", "1", "2", "0.25"),
				row(prior.Add(4*time.Hour), "1", "1", "1", ""),
				row(target.Add(-time.Hour), "1", "2", "1", ""),
				row(target, "1", "1", "3", "0.5"),
				row(target.Add(time.Hour), "1", "1", "1", ""),
			},
		},
	}
}

func newCalculator(t *testing.T, in snapshot.Input, maxHistory int) (*WeightCalculator, *fakeMetrics) {
	t.Helper()
	holder := snapshot.NewHolder()
	holder.Store(snapshot.Build(in))
	m := newFakeMetrics()
	return NewWeightCalculator(holder, domrepo.NewInstruments(nil), maxHistory, m, nil), m
}

func TestCompute_ShiftedMagnitudeAndTrend(t *testing.T) {
	calc, m := newCalculator(t, fixtureInput(), 0)

	got, err := calc.Compute(context.Background(), 1, models.Hourly, target)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{
		"501_1_0_3": 0.75,
		"501_1_1_3": 0.001,
		"7_0_1":     -0.001,
	}, got)
	assert.Equal(t, 1, m.computes)
}

// dailyInput: event 5 recurs, its in-window occurrence is two days before a
// midnight target. Shifting the history by two days lands on daily maxima.
func dailyInput(target time.Time) snapshot.Input {
	prior := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	daily := models.Series{InstrumentID: 1, Granularity: models.Daily}

	return snapshot.Input{
		Events: []models.EventDefinition{{ID: 5, OccurrenceCount: 3}},
		Occurrences: []models.Occurrence{
			{EventID: 5, Time: prior, Importance: 2},
			{EventID: 5, Time: target.AddDate(0, 0, -2), Importance: 1},
		},
		Rates: map[models.Series][]models.RateRow{
			daily: {
				row(prior.AddDate(0, 0, 1), "1", "1", "1", ""),
				row(prior.AddDate(0, 0, 2), "1", "1", "2", "0.25"),
				row(prior.AddDate(0, 0, 3), "1", "1", "1", ""),
				row(target.AddDate(0, 0, -1), "1", "2", "1", ""),
				row(target, "1", "1", "3", "0.5"),
				row(target.AddDate(0, 0, 1), "1", "1", "1", ""),
			},
		},
	}
}

func TestCompute_DailyShiftsInWholeDays(t *testing.T) {
	midnight := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	calc, _ := newCalculator(t, dailyInput(midnight), 0)

	got, err := calc.Compute(context.Background(), 1, models.Daily, midnight)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		"5_1_0_2": 0.75,
		"5_1_1_2": 0.001,
	}, got)

	// two days is outside the hourly window
	got, err = calc.Compute(context.Background(), 1, models.Hourly, midnight)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompute_UnknownPairUsesDefaultSeriesAndNeutralScale(t *testing.T) {
	calc, _ := newCalculator(t, fixtureInput(), 0)

	got, err := calc.Compute(context.Background(), 99, models.Hourly, target)
	require.NoError(t, err)

	assert.Equal(t, 0.75, got["501_1_0_3"])
	assert.Equal(t, 1.0, got["501_1_1_3"])
	assert.Equal(t, -1.0, got["7_0_1"])
}

func TestCompute_MissingSeriesYieldsNothing(t *testing.T) {
	calc, _ := newCalculator(t, fixtureInput(), 0)

	got, err := calc.Compute(context.Background(), 3, models.Hourly, target)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompute_EarlyTargetIsEmpty(t *testing.T) {
	calc, _ := newCalculator(t, fixtureInput(), 0)

	got, err := calc.Compute(context.Background(), 1, models.Hourly, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCompute_Idempotent(t *testing.T) {
	calc, _ := newCalculator(t, fixtureInput(), 0)

	first, err := calc.Compute(context.Background(), 1, models.Hourly, target)
	require.NoError(t, err)
	second, err := calc.Compute(context.Background(), 1, models.Hourly, target)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompute_MaxHistoryKeepsMostRecent(t *testing.T) {
	calc, _ := newCalculator(t, fixtureInput(), 1)

	got, err := calc.Compute(context.Background(), 1, models.Hourly, target)
	require.NoError(t, err)
	assert.Equal(t, 0.5, got["501_1_0_3"])
}

func TestCompute_NoSnapshot(t *testing.T) {
	calc := NewWeightCalculator(snapshot.NewHolder(), domrepo.NewInstruments(nil), 0, nil, nil)

	_, err := calc.Compute(context.Background(), 1, models.Hourly, target)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestCompute_Cancelled(t *testing.T) {
	calc, _ := newCalculator(t, fixtureInput(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := calc.Compute(ctx, 1, models.Hourly, target)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMagnitude_CountsAbsentRates(t *testing.T) {
	snap := snapshot.Build(fixtureInput())
	series := models.Series{InstrumentID: 1, Granularity: models.Hourly}
	history := []time.Time{
		time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC),
	}

	m := magnitude(snap, series, history, 3*time.Hour)
	assert.Equal(t, 1, m.Present)
	assert.Equal(t, 1, m.Absent)
	assert.True(t, m.Sum.Equal(decimal.RequireFromString("0.25")))
}

func TestAlignment(t *testing.T) {
	extrema := map[int64]struct{}{target.Unix(): {}}
	history := []time.Time{target.Add(-time.Hour), target.Add(-2 * time.Hour), target.Add(-5 * time.Hour), target.Add(-6 * time.Hour)}

	v := alignment(extrema, history, time.Hour, decimal.NewFromInt(100))
	assert.True(t, v.Equal(decimal.NewFromInt(-50)), v.String())

	assert.True(t, alignment(extrema, nil, 0, decimal.NewFromInt(1)).IsZero())
}

func TestPut_RoundsAndDropsZeros(t *testing.T) {
	out := map[string]float64{}
	put(out, "a", decimal.RequireFromString("0.0000004"))
	put(out, "b", decimal.RequireFromString("1.23456789"))
	put(out, "c", decimal.RequireFromString("-0.0000005"))

	assert.NotContains(t, out, "a")
	assert.Equal(t, 1.234568, out["b"])
	assert.Equal(t, -0.000001, out["c"])
}
