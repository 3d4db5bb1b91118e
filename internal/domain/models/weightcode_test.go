package models

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeightCode(t *testing.T) {
	wc, err := ParseWeightCode("501_1_0_-3")
	require.NoError(t, err)
	assert.Equal(t, WeightCode{EventID: 501, Type: Type1, Mode: ModeMagnitude, Shift: -3, HasShift: true}, wc)
	assert.Equal(t, "501_1_0_-3", wc.String())

	wc, err = ParseWeightCode("7_0_1")
	require.NoError(t, err)
	assert.False(t, wc.HasShift)
	assert.Equal(t, "7_0_1", wc.String())
}

func TestParseWeightCodeInvalid(t *testing.T) {
	for _, s := range []string{"", "1_0", "a_0_1", "1_0_1_x", "1_0_1_2_3"} {
		_, err := ParseWeightCode(s)
		assert.ErrorIs(t, err, ErrInvalidWeightCode, s)
	}
}

func TestNewWeightCodeDropsShiftForType0(t *testing.T) {
	assert.Equal(t, "9_0_1", NewWeightCode(9, Type0, ModeTrend, 0).String())
	assert.Equal(t, "9_1_1_0", NewWeightCode(9, Type1, ModeTrend, 0).String())
}

func TestWeightCodeOrdering(t *testing.T) {
	codes := []string{"2_1_0_3", "2_1_0", "1_1_1_-12", "2_1_0_-1", "1_0_0", "2_1_1", "2_0_0"}
	parsed := make([]WeightCode, 0, len(codes))
	for _, c := range codes {
		wc, err := ParseWeightCode(c)
		require.NoError(t, err)
		parsed = append(parsed, wc)
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Compare(parsed[j]) < 0 })

	got := make([]string, 0, len(parsed))
	for _, wc := range parsed {
		got = append(got, wc.String())
	}
	assert.Equal(t, []string{"1_0_0", "1_1_1_-12", "2_0_0", "2_1_0", "2_1_0_-1", "2_1_0_3", "2_1_1"}, got)
}
