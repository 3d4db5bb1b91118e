package snapshot

import (
	"context"
	"fmt"
	"sort"
	"time"

	"EventWeights/internal/domain/models"
	"EventWeights/internal/domain/repository"
	"EventWeights/internal/services/features"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Input is the raw material of one snapshot.
type Input struct {
	Events      []models.EventDefinition
	Occurrences []models.Occurrence
	Rates       map[models.Series][]models.RateRow
}

// Load reads everything a snapshot needs from src and builds it.
func Load(ctx context.Context, src repository.Source, instruments []models.Instrument) (*Snapshot, error) {
	events, err := src.LoadEventDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	occ, err := src.LoadOccurrences(ctx)
	if err != nil {
		return nil, fmt.Errorf("load occurrences: %w", err)
	}

	rates := make(map[models.Series][]models.RateRow, len(instruments)*2)
	for _, inst := range instruments {
		for _, g := range []models.Granularity{models.Hourly, models.Daily} {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			table := inst.TableFor(g)
			rows, err := src.LoadRateRows(ctx, table)
			if err != nil {
				return nil, fmt.Errorf("load rates %s: %w", table, err)
			}
			rates[models.Series{InstrumentID: inst.ID, Granularity: g}] = rows
		}
	}

	return Build(Input{Events: events, Occurrences: occ, Rates: rates}), nil
}

// Build projects source rows into a new snapshot. Input slices are not retained.
func Build(in Input) *Snapshot {
	s := &Snapshot{
		Version:     uuid.NewString(),
		LoadedAt:    time.Now().UTC(),
		series:      make(map[models.Series]*Series, len(in.Rates)),
		eventTypes:  make(map[int64]models.EventType, len(in.Events)),
		history:     make(map[int64][]time.Time),
		occurrences: make(map[int64][]models.Occurrence),
	}

	s.events = make([]models.EventDefinition, 0, len(in.Events))
	for _, e := range in.Events {
		e.Type = models.EventTypeFromCount(e.OccurrenceCount)
		s.events = append(s.events, e)
		s.eventTypes[e.ID] = e.Type
	}
	sort.SliceStable(s.events, func(i, j int) bool { return s.events[i].ID < s.events[j].ID })

	for _, o := range in.Occurrences {
		o.Time = o.Time.UTC()
		s.history[o.EventID] = append(s.history[o.EventID], o.Time)
		s.occurrences[o.Time.Unix()] = append(s.occurrences[o.Time.Unix()], o)
	}
	for id, h := range s.history {
		sort.Slice(h, func(i, j int) bool { return h[i].Before(h[j]) })
		s.history[id] = h
	}

	for key, rows := range in.Rates {
		s.series[key] = buildSeries(rows, key.Granularity.Unit())
	}

	s.codes = features.CodeSpace(s.events)
	s.ordered = make([]models.WeightCode, len(s.codes))
	copy(s.ordered, s.codes)
	sort.Slice(s.ordered, func(i, j int) bool { return s.ordered[i].Compare(s.ordered[j]) < 0 })

	return s
}

func buildSeries(rows []models.RateRow, unit time.Duration) *Series {
	sorted := make([]models.RateRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	// duplicate timestamps: last row wins, keeping the series strictly increasing
	dedup := sorted[:0]
	for _, r := range sorted {
		r.Date = r.Date.UTC()
		if n := len(dedup); n > 0 && dedup[n-1].Date.Equal(r.Date) {
			dedup[n-1] = r
			continue
		}
		dedup = append(dedup, r)
	}

	ser := &Series{
		rates:   make(map[int64]decimal.Decimal, len(dedup)),
		candles: make([]models.Candle, 0, len(dedup)),
		maxima:  make(map[int64]struct{}),
		minima:  make(map[int64]struct{}),
	}
	highs := make(map[int64]decimal.Decimal, len(dedup))
	lows := make(map[int64]decimal.Decimal, len(dedup))
	for _, r := range dedup {
		ts := r.Date.Unix()
		if r.T1.Valid {
			ser.rates[ts] = r.T1.Decimal
		}
		if r.High.Valid {
			highs[ts] = r.High.Decimal
		}
		if r.Low.Valid {
			lows[ts] = r.Low.Decimal
		}
		ser.candles = append(ser.candles, models.Candle{Time: r.Date, Bullish: r.Bullish()})
	}

	step := int64(unit / time.Second)
	for ts, v := range highs {
		prev, okP := highs[ts-step]
		next, okN := highs[ts+step]
		if okP && okN && v.GreaterThan(prev) && v.GreaterThan(next) {
			ser.maxima[ts] = struct{}{}
		}
	}
	for ts, v := range lows {
		prev, okP := lows[ts-step]
		next, okN := lows[ts+step]
		if okP && okN && v.LessThan(prev) && v.LessThan(next) {
			ser.minima[ts] = struct{}{}
		}
	}
	return ser
}
