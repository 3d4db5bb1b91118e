package usecase

import (
	"context"
	"errors"
	"time"

	"EventWeights/internal/domain/models"
	domrepo "EventWeights/internal/domain/repository"
	"EventWeights/internal/services/features"
	"EventWeights/internal/snapshot"
	applogger "EventWeights/pkg/logger"

	"github.com/shopspring/decimal"
)

// ErrNoSnapshot is returned when no snapshot has been installed yet.
var ErrNoSnapshot = errors.New("snapshot not loaded")

// valuePlaces is the rounding precision of published feature values.
const valuePlaces = 6

var (
	decOne = decimal.NewFromInt(1)
	decTwo = decimal.NewFromInt(2)
)

// Magnitude is the mode-0 aggregate over the shifted history of one event.
// Rates missing from the series are counted in Absent and add nothing to Sum.
type Magnitude struct {
	Sum     decimal.Decimal
	Present int
	Absent  int
}

// WeightCalculator builds sparse weight vectors from the current snapshot.
type WeightCalculator struct {
	holder      *snapshot.Holder
	instruments *domrepo.Instruments
	maxHistory  int
	metrics     domrepo.Metrics
	l           *applogger.Logger
}

// NewWeightCalculator creates a calculator. maxHistory caps the prior occurrences
// used per event to the most recent N; zero keeps all of them.
func NewWeightCalculator(holder *snapshot.Holder, instruments *domrepo.Instruments, maxHistory int, metrics domrepo.Metrics, l *applogger.Logger) *WeightCalculator {
	if l == nil {
		l = applogger.NewNop()
	}
	return &WeightCalculator{
		holder:      holder,
		instruments: instruments,
		maxHistory:  maxHistory,
		metrics:     metrics,
		l:           l,
	}
}

// Snapshot returns the snapshot requests are currently served from.
func (w *WeightCalculator) Snapshot() (*snapshot.Snapshot, error) {
	snap := w.holder.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Compute builds the weight vector of pair at target on the current snapshot.
func (w *WeightCalculator) Compute(ctx context.Context, pair int, g models.Granularity, target time.Time) (map[string]float64, error) {
	snap, err := w.Snapshot()
	if err != nil {
		return nil, err
	}
	return w.ComputeOn(ctx, snap, pair, g, target)
}

// ComputeOn builds the weight vector on a given snapshot. Unknown pairs read the
// default instrument's series with a neutral scale.
func (w *WeightCalculator) ComputeOn(ctx context.Context, snap *snapshot.Snapshot, pair int, g models.Granularity, target time.Time) (map[string]float64, error) {
	start := time.Now()
	target = target.UTC()
	inst := w.instruments.Normalize(pair)
	scale := decimal.NewFromFloat(w.instruments.Scale(pair))
	series := models.Series{InstrumentID: inst.ID, Granularity: g}
	unit := g.Unit()

	out := map[string]float64{}
	selections := features.SelectWindow(snap, target, g)
	if len(selections) == 0 {
		w.record(g, start, 0)
		return out, nil
	}

	trend, hasTrend := features.LocateTrend(snap.Candles(series), target)
	var extrema map[int64]struct{}
	if hasTrend {
		extrema = snap.ExtremumMembers(series, features.TrendExtremum(trend))
	}

	for _, sel := range selections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		history := w.history(snap, sel.Occurrence.EventID, target)
		if len(history) == 0 {
			continue
		}
		offset := time.Duration(sel.Shift) * unit

		code := models.NewWeightCode(sel.Occurrence.EventID, sel.Type, models.ModeMagnitude, sel.Shift)
		m := magnitude(snap, series, history, offset)
		put(out, code.String(), m.Sum)

		if !hasTrend {
			continue
		}
		code.Mode = models.ModeTrend
		put(out, code.String(), alignment(extrema, history, offset, scale))
	}

	w.record(g, start, len(out))
	return out, nil
}

func (w *WeightCalculator) history(snap *snapshot.Snapshot, eventID int64, target time.Time) []time.Time {
	h := snap.HistoryBefore(eventID, target)
	if w.maxHistory > 0 && len(h) > w.maxHistory {
		h = h[len(h)-w.maxHistory:]
	}
	return h
}

func (w *WeightCalculator) record(g models.Granularity, start time.Time, n int) {
	if w.metrics != nil {
		w.metrics.RecordCompute(g.String(), time.Since(start).Seconds(), n)
	}
}

// magnitude sums the series rates at every history timestamp moved by offset.
func magnitude(snap *snapshot.Snapshot, series models.Series, history []time.Time, offset time.Duration) Magnitude {
	m := Magnitude{Sum: decimal.Zero}
	for _, h := range history {
		r, ok := snap.Rate(series, h.Add(offset))
		if !ok {
			m.Absent++
			continue
		}
		m.Sum = m.Sum.Add(r)
		m.Present++
	}
	return m
}

// alignment maps the share of shifted history timestamps that hit the trend's
// extremum set into [-scale, scale].
func alignment(extrema map[int64]struct{}, history []time.Time, offset time.Duration, scale decimal.Decimal) decimal.Decimal {
	if len(history) == 0 {
		return decimal.Zero
	}
	matches := 0
	for _, h := range history {
		if _, ok := extrema[h.Add(offset).Unix()]; ok {
			matches++
		}
	}
	ratio := decimal.NewFromInt(int64(matches)).Div(decimal.NewFromInt(int64(len(history))))
	return ratio.Mul(decTwo).Sub(decOne).Mul(scale)
}

// put stores v rounded to valuePlaces; values that round to zero are omitted.
func put(out map[string]float64, key string, v decimal.Decimal) {
	r := v.Round(valuePlaces)
	if r.IsZero() {
		return
	}
	out[key] = r.InexactFloat64()
}
