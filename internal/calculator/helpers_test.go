package calculator

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"StockLens/internal/model"
)

const tolerance = 1e-9

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func assertClose(t *testing.T, label string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("%s: got %.10f, want %.10f", label, got, want)
	}
}

// flatSeries builds bars where open, high, low and close all equal the close.
func flatSeries(closes, volumes []float64) model.PriceSeries {
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		v := 1000.0
		if volumes != nil {
			v = volumes[i]
		}
		bars[i] = model.PriceBar{
			Time: day0.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: v,
		}
	}
	return model.PriceSeries{Symbol: "TEST", Bars: bars}
}

// randomWalk builds a valid OHLCV series from a seeded random walk.
func randomWalk(n int, seed int64) model.PriceSeries {
	r := rand.New(rand.NewSource(seed))
	bars := make([]model.PriceBar, n)
	price := 100.0
	for i := range bars {
		open := price
		price = math.Max(1, price*(1+(r.Float64()-0.5)*0.06))
		hi := math.Max(open, price) * (1 + r.Float64()*0.02)
		lo := math.Min(open, price) * (1 - r.Float64()*0.02)
		bars[i] = model.PriceBar{
			Time:   day0.AddDate(0, 0, i),
			Open:   open,
			High:   hi,
			Low:    lo,
			Close:  price,
			Volume: float64(1000 + r.Intn(9000)),
		}
	}
	return model.PriceSeries{Symbol: "WALK", Bars: bars}
}

func countDefined(values []float64) int {
	n := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}
