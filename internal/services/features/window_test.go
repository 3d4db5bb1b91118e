package features

import (
	"testing"
	"time"

	"EventWeights/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

type fakeIndex struct {
	at    map[int64][]models.Occurrence
	types map[int64]models.EventType
}

func newFakeIndex(types map[int64]models.EventType, occ ...models.Occurrence) *fakeIndex {
	f := &fakeIndex{at: map[int64][]models.Occurrence{}, types: types}
	for _, o := range occ {
		f.at[o.Time.Unix()] = append(f.at[o.Time.Unix()], o)
	}
	return f
}

func (f *fakeIndex) OccurrencesAt(t time.Time) []models.Occurrence { return f.at[t.Unix()] }
func (f *fakeIndex) EventType(id int64) models.EventType           { return f.types[id] }

func TestSelectWindowHourly(t *testing.T) {
	target := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	idx := newFakeIndex(
		map[int64]models.EventType{501: models.Type1, 7: models.Type0},
		models.Occurrence{EventID: 501, Time: target.Add(-3 * time.Hour), Importance: 1},
		models.Occurrence{EventID: 501, Time: target.Add(5 * time.Hour), Importance: 2}, // not top importance
		models.Occurrence{EventID: 7, Time: target.Add(-time.Hour), Importance: 1},      // type0 off target
		models.Occurrence{EventID: 7, Time: target, Importance: 3},                      // exact match kept
		models.Occurrence{EventID: 501, Time: target.Add(13 * time.Hour), Importance: 1},
	)

	got := SelectWindow(idx, target, models.Hourly)
	assert.Equal(t, []Selection{
		{Occurrence: models.Occurrence{EventID: 501, Time: target.Add(-3 * time.Hour), Importance: 1}, Shift: 3, Type: models.Type1},
		{Occurrence: models.Occurrence{EventID: 7, Time: target, Importance: 3}, Shift: 0, Type: models.Type0},
	}, got)
}

func TestSelectWindowDaily(t *testing.T) {
	target := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	idx := newFakeIndex(
		map[int64]models.EventType{11: models.Type1},
		models.Occurrence{EventID: 11, Time: target.AddDate(0, 0, 12), Importance: 1},
		models.Occurrence{EventID: 11, Time: target.Add(12 * time.Hour), Importance: 1}, // not on a day boundary
	)

	got := SelectWindow(idx, target, models.Daily)
	if assert.Len(t, got, 1) {
		assert.Equal(t, -12, got[0].Shift)
	}
}

func TestSelectWindowShiftBounds(t *testing.T) {
	target := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	var occ []models.Occurrence
	for k := -15; k <= 15; k++ {
		occ = append(occ,
			models.Occurrence{EventID: 1, Time: target.Add(time.Duration(k) * time.Hour), Importance: 1},
			models.Occurrence{EventID: 2, Time: target.Add(time.Duration(k) * time.Hour), Importance: 1},
		)
	}
	idx := newFakeIndex(map[int64]models.EventType{1: models.Type0, 2: models.Type1}, occ...)

	type1 := 0
	for _, s := range SelectWindow(idx, target, models.Hourly) {
		switch s.Type {
		case models.Type0:
			assert.Zero(t, s.Shift)
		case models.Type1:
			type1++
			assert.LessOrEqual(t, s.Shift, models.MaxShift)
			assert.GreaterOrEqual(t, s.Shift, -models.MaxShift)
		}
	}
	assert.Equal(t, 2*Window+1, type1)
}
