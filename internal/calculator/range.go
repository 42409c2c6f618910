package calculator

import (
	"errors"
	"math"

	"StockLens/internal/model"
)

// Trading-day lookbacks for the range helpers.
const (
	Lookback52Week = 252
	Lookback30Day  = 22
)

// Range scans the most recent lookback bars and returns the highest high and
// lowest low. A lookback larger than the series uses every bar.
func Range(series model.PriceSeries, lookback int) (high, low float64, err error) {
	n := series.Len()
	if n == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	if lookback < 1 {
		return 0, 0, errors.New("lookback must be positive")
	}
	start := max(n-lookback, 0)

	high, low = math.Inf(-1), math.Inf(1)
	for _, b := range series.Bars[start:] {
		high = math.Max(high, b.High)
		low = math.Min(low, b.Low)
	}
	return high, low, nil
}

// Position returns where current sits inside [low, high], clamped to 0.0~1.0.
// A zero-width range reports the midpoint.
func Position(current, high, low float64) (float64, error) {
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	if high == low {
		return 0.5, nil
	}
	pos := (current - low) / (high - low)
	return math.Min(math.Max(pos, 0), 1), nil
}
