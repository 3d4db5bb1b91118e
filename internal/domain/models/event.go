package models

import "time"

// EventType classifies how often an event recurs.
type EventType int

const (
	// Type0 events are expected once per cycle and only matter at zero shift.
	Type0 EventType = 0
	// Type1 events recur with comparable occurrences.
	Type1 EventType = 1
)

// TopImportance is the highest importance tier of a calendar occurrence.
const TopImportance = 1

// EventTypeFromCount derives the periodicity class from the observed occurrence count.
func EventTypeFromCount(count int64) EventType {
	if count > 1 {
		return Type1
	}
	return Type0
}

// EventDefinition is one row of the event index table.
type EventDefinition struct {
	ID              int64
	OccurrenceCount int64
	Type            EventType
}

// Occurrence is one concrete timestamped instance of an event.
type Occurrence struct {
	EventID    int64
	Time       time.Time // UTC
	Importance int
}
