// Package snapshot holds the immutable in-memory projection of the relational store.
//
// A Snapshot is built in one pass from source rows and never mutated afterwards.
// Holder publishes the current snapshot through a single atomic pointer so readers
// always see either the old or the new snapshot as a whole.
package snapshot

import (
	"sort"
	"sync/atomic"
	"time"

	"EventWeights/internal/domain/models"

	"github.com/shopspring/decimal"
)

// Series is the projection of one rate table.
type Series struct {
	rates   map[int64]decimal.Decimal // unix seconds -> derived scalar
	candles []models.Candle           // ascending by time
	maxima  map[int64]struct{}
	minima  map[int64]struct{}
}

// Snapshot is a complete replica of the query-relevant store state at one rebuild instant.
type Snapshot struct {
	Version  string
	LoadedAt time.Time

	series      map[models.Series]*Series
	events      []models.EventDefinition // ascending by id
	eventTypes  map[int64]models.EventType
	history     map[int64][]time.Time         // event -> ascending occurrence times
	occurrences map[int64][]models.Occurrence // unix seconds -> occurrences at that instant
	codes       []models.WeightCode           // catalog order
	ordered     []models.WeightCode           // Compare order
}

// Rate returns the derived scalar at t; ok is false when no rate was recorded.
func (s *Snapshot) Rate(key models.Series, t time.Time) (decimal.Decimal, bool) {
	ser, ok := s.series[key]
	if !ok {
		return decimal.Decimal{}, false
	}
	v, ok := ser.rates[t.Unix()]
	return v, ok
}

// ExtremumMembers returns the extremum set of a series. The map must not be modified.
func (s *Snapshot) ExtremumMembers(key models.Series, kind models.ExtremumKind) map[int64]struct{} {
	ser, ok := s.series[key]
	if !ok {
		return nil
	}
	if kind == models.ExtremumMax {
		return ser.maxima
	}
	return ser.minima
}

// IsExtremum reports whether t belongs to the given extremum set.
func (s *Snapshot) IsExtremum(key models.Series, kind models.ExtremumKind, t time.Time) bool {
	_, ok := s.ExtremumMembers(key, kind)[t.Unix()]
	return ok
}

// Candles returns the ordered candle directions of a series. The slice must not be modified.
func (s *Snapshot) Candles(key models.Series) []models.Candle {
	if ser, ok := s.series[key]; ok {
		return ser.candles
	}
	return nil
}

// OccurrencesAt returns the occurrences recorded exactly at t.
func (s *Snapshot) OccurrencesAt(t time.Time) []models.Occurrence {
	return s.occurrences[t.Unix()]
}

// HistoryBefore returns the occurrence times of an event strictly before t, ascending.
// The slice aliases snapshot memory and must not be modified.
func (s *Snapshot) HistoryBefore(eventID int64, t time.Time) []time.Time {
	hist := s.history[eventID]
	n := sort.Search(len(hist), func(i int) bool { return !hist[i].Before(t) })
	return hist[:n]
}

// EventType returns the periodicity class of an event; unknown events are Type0.
func (s *Snapshot) EventType(eventID int64) models.EventType {
	return s.eventTypes[eventID]
}

// Events returns the loaded event definitions ordered by id.
func (s *Snapshot) Events() []models.EventDefinition { return s.events }

// Codes returns the weight-code catalog in generator order.
func (s *Snapshot) Codes() []models.WeightCode { return s.codes }

// CodesAfter returns the catalog codes strictly greater than code, ascending.
func (s *Snapshot) CodesAfter(code models.WeightCode) []models.WeightCode {
	i := sort.Search(len(s.ordered), func(i int) bool { return s.ordered[i].Compare(code) > 0 })
	out := make([]models.WeightCode, len(s.ordered)-i)
	copy(out, s.ordered[i:])
	return out
}

// Stats summarises snapshot contents for logs and metrics.
type Stats struct {
	Events      int
	Occurrences int
	Series      int
	Rates       int
	Codes       int
}

func (s *Snapshot) Stats() Stats {
	st := Stats{Events: len(s.events), Series: len(s.series), Codes: len(s.codes)}
	for _, h := range s.history {
		st.Occurrences += len(h)
	}
	for _, ser := range s.series {
		st.Rates += len(ser.rates)
	}
	return st
}

// Holder publishes the current snapshot.
type Holder struct {
	p atomic.Pointer[Snapshot]
}

func NewHolder() *Holder { return &Holder{} }

// Load returns the last installed snapshot, or nil before the first build.
func (h *Holder) Load() *Snapshot { return h.p.Load() }

// Store installs s, replacing the previous snapshot.
func (h *Holder) Store(s *Snapshot) { h.p.Store(s) }
