package features

import (
	"sort"
	"time"

	"EventWeights/internal/domain/models"
)

// LocateTrend returns the candle with the greatest timestamp strictly before target.
// candles must be ascending by time. ok is false when target precedes every candle.
func LocateTrend(candles []models.Candle, target time.Time) (models.Candle, bool) {
	idx := sort.Search(len(candles), func(i int) bool { return !candles[i].Time.Before(target) })
	if idx == 0 {
		return models.Candle{}, false
	}
	return candles[idx-1], true
}

// TrendExtremum maps a candle direction to the extremum set it aligns with.
func TrendExtremum(c models.Candle) models.ExtremumKind {
	if c.Bullish {
		return models.ExtremumMax
	}
	return models.ExtremumMin
}
