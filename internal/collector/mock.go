package collector

import (
	"context"
	"math"
	"strings"
	"time"

	"StockLens/internal/model"
)

// MockFetcher returns deterministic bars for development and tests.
type MockFetcher struct {
	Price float64
	// Series, when set, is returned for every symbol instead of generated bars.
	Series *model.PriceSeries
	// End is the timestamp of the last generated bar; zero means today.
	End time.Time
	// Err, when set, is returned by every fetch.
	Err error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(_ context.Context, symbol string, rng Range, interval Interval) (model.PriceSeries, error) {
	if m.Err != nil {
		return model.PriceSeries{}, m.Err
	}
	symbol = strings.ToUpper(symbol)
	if m.Series != nil {
		s := *m.Series
		s.Symbol = symbol
		return s, nil
	}

	end := m.End
	if end.IsZero() {
		end = time.Now().UTC().Truncate(24 * time.Hour)
	}
	price := m.Price
	if price <= 0 {
		price = 100
	}
	return model.PriceSeries{
		Symbol:    symbol,
		Interval:  string(interval),
		Bars:      generateMockBars(price, rng.Bars(interval), end, interval),
		Info:      model.SymbolInfo{Name: symbol + " (mock)", Currency: "USD", Exchange: "MOCK"},
		FetchedAt: end,
	}, nil
}

// generateMockBars produces an oscillating uptrend that finishes near
// basePrice, so every indicator has something to react to.
func generateMockBars(basePrice float64, count int, end time.Time, interval Interval) []model.PriceBar {
	step := 24 * time.Hour * time.Duration(intervalTradingDays[interval])
	bars := make([]model.PriceBar, count)
	for i := 0; i < count; i++ {
		back := float64(count - 1 - i)
		p := basePrice * (1 - back*0.0008) * (1 + 0.03*math.Sin(float64(i)/6))
		open := p * (1 - 0.004*math.Cos(float64(i)/3))
		bars[i] = model.PriceBar{
			Time:   end.Add(-time.Duration(count-1-i) * step),
			Open:   open,
			High:   math.Max(open, p) * 1.006,
			Low:    math.Min(open, p) * 0.994,
			Close:  p,
			Volume: 1_000_000 * (1 + 0.5*math.Sin(float64(i)/4)),
		}
	}
	return bars
}
