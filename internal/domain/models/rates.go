package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Granularity is the candle resolution of a rate series.
type Granularity int

const (
	Hourly Granularity = 0
	Daily  Granularity = 1
)

// GranularityFromFlag maps the public day flag to a granularity; anything but 1 is hourly.
func GranularityFromFlag(day int) Granularity {
	if day == 1 {
		return Daily
	}
	return Hourly
}

// Unit returns the duration of one candle.
func (g Granularity) Unit() time.Duration {
	if g == Daily {
		return 24 * time.Hour
	}
	return time.Hour
}

func (g Granularity) String() string {
	if g == Daily {
		return "day"
	}
	return "hour"
}

// Instrument is a traded pair with its rate tables.
type Instrument struct {
	ID    int
	Name  string
	Table string  // hourly table; daily table carries the "_day" suffix
	Scale float64 // normalises the trend-alignment feature across price scales
}

// TableFor returns the rate table backing the given granularity.
func (i Instrument) TableFor(g Granularity) string {
	if g == Daily {
		return i.Table + "_day"
	}
	return i.Table
}

// Series identifies one rate series.
type Series struct {
	InstrumentID int
	Granularity  Granularity
}

// RateRow is one OHLC row as stored in a rate table.
type RateRow struct {
	Date  time.Time
	Open  decimal.NullDecimal
	Close decimal.NullDecimal
	High  decimal.NullDecimal
	Low   decimal.NullDecimal
	T1    decimal.NullDecimal // derived scalar
}

// Bullish reports whether the candle closed above its open.
func (r RateRow) Bullish() bool {
	return r.Open.Valid && r.Close.Valid && r.Close.Decimal.GreaterThan(r.Open.Decimal)
}

// Candle is the direction of one rate row.
type Candle struct {
	Time    time.Time
	Bullish bool
}

// ExtremumKind selects one of the two extremum sets of a series.
type ExtremumKind int

const (
	ExtremumMin ExtremumKind = iota
	ExtremumMax
)
