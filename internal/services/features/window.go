package features

import (
	"time"

	"EventWeights/internal/domain/models"
)

// Window is the look-around distance, in granularity units, around a target timestamp.
const Window = 12

// OccurrenceIndex is the part of a snapshot the window selector reads.
type OccurrenceIndex interface {
	OccurrencesAt(t time.Time) []models.Occurrence
	EventType(eventID int64) models.EventType
}

// Selection is one occurrence that contributes features for a target timestamp.
type Selection struct {
	Occurrence models.Occurrence
	Shift      int // target minus occurrence, in granularity units
	Type       models.EventType
}

// SelectWindow picks the occurrences around target that carry features.
// Offsets are visited from -Window to +Window, so the result order is deterministic.
func SelectWindow(idx OccurrenceIndex, target time.Time, g models.Granularity) []Selection {
	unit := g.Unit()
	var out []Selection
	for k := -Window; k <= Window; k++ {
		at := target.Add(time.Duration(k) * unit)
		exact := k == 0
		for _, o := range idx.OccurrencesAt(at) {
			if !exact && o.Importance != models.TopImportance {
				continue
			}
			shift := int(target.Sub(o.Time) / unit)
			typ := idx.EventType(o.EventID)
			if !keepShift(typ, shift) {
				continue
			}
			out = append(out, Selection{Occurrence: o, Shift: shift, Type: typ})
		}
	}
	return out
}

func keepShift(t models.EventType, shift int) bool {
	if t == models.Type1 {
		return shift >= -models.MaxShift && shift <= models.MaxShift
	}
	return shift == 0
}
