package calculator

import (
	"math"

	"StockLens/internal/model"
)

// ValidateSeries checks ordering and OHLCV sanity of every bar.
// It never reorders or drops bars; the first violation is returned.
func ValidateSeries(series model.PriceSeries) error {
	if len(series.Bars) == 0 {
		return &MalformedSeriesError{Index: 0, Field: "bars", Reason: "empty series"}
	}
	for i, b := range series.Bars {
		if b.Time.IsZero() {
			return &MalformedSeriesError{Index: i, Field: "time", Reason: "missing timestamp"}
		}
		if i > 0 && !b.Time.After(series.Bars[i-1].Time) {
			return &MalformedSeriesError{Index: i, Field: "time", Reason: "timestamp not strictly increasing"}
		}

		for _, f := range []struct {
			name string
			v    float64
		}{{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close}} {
			if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
				return &MalformedSeriesError{Index: i, Field: f.name, Reason: "missing or non-finite value"}
			}
			if f.v <= 0 {
				return &MalformedSeriesError{Index: i, Field: f.name, Reason: "price must be positive"}
			}
		}
		if math.IsNaN(b.Volume) || math.IsInf(b.Volume, 0) {
			return &MalformedSeriesError{Index: i, Field: "volume", Reason: "missing or non-finite value"}
		}
		if b.Volume < 0 {
			return &MalformedSeriesError{Index: i, Field: "volume", Reason: "volume must be non-negative"}
		}

		if b.Low > b.High {
			return &MalformedSeriesError{Index: i, Field: "low", Reason: "low above high"}
		}
		if math.Min(b.Open, b.Close) < b.Low {
			return &MalformedSeriesError{Index: i, Field: "low", Reason: "open or close below low"}
		}
		if math.Max(b.Open, b.Close) > b.High {
			return &MalformedSeriesError{Index: i, Field: "high", Reason: "open or close above high"}
		}
	}
	return nil
}
