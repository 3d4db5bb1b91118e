package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Mode is the feature family of a weight code.
type Mode int

const (
	ModeMagnitude Mode = 0
	ModeTrend     Mode = 1
)

// MaxShift bounds the shift of type1 codes.
const MaxShift = 12

var ErrInvalidWeightCode = errors.New("invalid weight code")

// WeightCode identifies exactly one scalar feature: {event}_{type}_{mode}[_{shift}].
type WeightCode struct {
	EventID  int64
	Type     EventType
	Mode     Mode
	Shift    int
	HasShift bool
}

// NewWeightCode builds the code for an event feature; the shift is kept only for type1 events.
func NewWeightCode(eventID int64, t EventType, m Mode, shift int) WeightCode {
	wc := WeightCode{EventID: eventID, Type: t, Mode: m}
	if t == Type1 {
		wc.Shift = shift
		wc.HasShift = true
	}
	return wc
}

func (w WeightCode) String() string {
	base := fmt.Sprintf("%d_%d_%d", w.EventID, w.Type, w.Mode)
	if w.HasShift {
		return base + "_" + strconv.Itoa(w.Shift)
	}
	return base
}

// ParseWeightCode parses "{event}_{type}_{mode}[_{shift}]".
func ParseWeightCode(s string) (WeightCode, error) {
	parts := strings.Split(strings.TrimSpace(s), "_")
	if len(parts) < 3 || len(parts) > 4 {
		return WeightCode{}, fmt.Errorf("%w: %q", ErrInvalidWeightCode, s)
	}
	var nums [4]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return WeightCode{}, fmt.Errorf("%w: component %q is not an integer", ErrInvalidWeightCode, p)
		}
		nums[i] = n
	}
	wc := WeightCode{EventID: nums[0], Type: EventType(nums[1]), Mode: Mode(nums[2])}
	if len(parts) == 4 {
		wc.Shift = int(nums[3])
		wc.HasShift = true
	}
	return wc, nil
}

// Compare orders codes by (event, type, mode, has_shift, shift).
func (w WeightCode) Compare(o WeightCode) int {
	switch {
	case w.EventID != o.EventID:
		return cmpInt64(w.EventID, o.EventID)
	case w.Type != o.Type:
		return cmpInt64(int64(w.Type), int64(o.Type))
	case w.Mode != o.Mode:
		return cmpInt64(int64(w.Mode), int64(o.Mode))
	case w.HasShift != o.HasShift:
		if w.HasShift {
			return 1
		}
		return -1
	default:
		return cmpInt64(int64(w.Shift), int64(o.Shift))
	}
}

func cmpInt64(a, b int64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
