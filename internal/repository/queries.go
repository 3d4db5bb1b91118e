package repository

import (
	"fmt"
	"strings"
	"time"

	"EventWeights/internal/domain/models"

	"github.com/shopspring/decimal"
)

// Tables names the calendar tables read by a source.
type Tables struct {
	Events      string
	Occurrences string
}

func eventsQuery(t Tables) string {
	return fmt.Sprintf(`SELECT event_id, occurrence_count FROM %s`, t.Events)
}

func occurrencesQuery(t Tables) string {
	return fmt.Sprintf(`
        SELECT event_id, occurrence_time_utc, importance
        FROM %s
        WHERE event_id IS NOT NULL
    `, t.Occurrences)
}

func ratesQuery(table string) string {
	return fmt.Sprintf(`SELECT date, open, close, max, min, t1 FROM %s`, table)
}

var storedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// asTime converts a driver value into a UTC timestamp.
func asTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case *time.Time:
		if t != nil {
			return t.UTC(), nil
		}
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range storedLayouts {
			if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return ts.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable timestamp %q", t)
	case []byte:
		return asTime(string(t))
	case int64:
		return time.Unix(t, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp value %T", v)
}

// asDecimal converts a nullable driver value into a decimal.
func asDecimal(v any) (decimal.NullDecimal, error) {
	switch d := v.(type) {
	case nil:
		return decimal.NullDecimal{}, nil
	case decimal.Decimal:
		return decimal.NewNullDecimal(d), nil
	case *decimal.Decimal:
		if d == nil {
			return decimal.NullDecimal{}, nil
		}
		return decimal.NewNullDecimal(*d), nil
	case *float64:
		if d == nil {
			return decimal.NullDecimal{}, nil
		}
		return decimal.NewNullDecimal(decimal.NewFromFloat(*d)), nil
	case float64:
		return decimal.NewNullDecimal(decimal.NewFromFloat(d)), nil
	case float32:
		return decimal.NewNullDecimal(decimal.NewFromFloat32(d)), nil
	}
	var n decimal.NullDecimal
	if err := n.Scan(v); err != nil {
		return decimal.NullDecimal{}, err
	}
	return n, nil
}

func rateRow(date any, cols [5]any) (models.RateRow, error) {
	ts, err := asTime(date)
	if err != nil {
		return models.RateRow{}, err
	}
	var vals [5]decimal.NullDecimal
	for i, c := range cols {
		if vals[i], err = asDecimal(c); err != nil {
			return models.RateRow{}, fmt.Errorf("column %d: %w", i+1, err)
		}
	}
	return models.RateRow{
		Date:  ts,
		Open:  vals[0],
		Close: vals[1],
		High:  vals[2],
		Low:   vals[3],
		T1:    vals[4],
	}, nil
}
