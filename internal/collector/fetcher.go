package collector

import (
	"context"
	"fmt"

	"StockLens/internal/model"
)

// Range is the history window requested from a provider.
type Range string

const (
	Range1M Range = "1mo"
	Range3M Range = "3mo"
	Range6M Range = "6mo"
	Range1Y Range = "1y"
	Range2Y Range = "2y"
	Range5Y Range = "5y"
)

// Interval is the bar size.
type Interval string

const (
	IntervalDaily   Interval = "1d"
	IntervalWeekly  Interval = "1wk"
	IntervalMonthly Interval = "1mo"
)

var rangeTradingDays = map[Range]int{
	Range1M: 22,
	Range3M: 66,
	Range6M: 126,
	Range1Y: 252,
	Range2Y: 504,
	Range5Y: 1260,
}

var intervalTradingDays = map[Interval]int{
	IntervalDaily:   1,
	IntervalWeekly:  5,
	IntervalMonthly: 21,
}

// ParseRange validates a range string; empty selects one year.
func ParseRange(s string) (Range, error) {
	if s == "" {
		return Range1Y, nil
	}
	r := Range(s)
	if _, ok := rangeTradingDays[r]; !ok {
		return "", fmt.Errorf("unsupported range %q", s)
	}
	return r, nil
}

// ParseInterval validates an interval string; empty selects daily bars.
func ParseInterval(s string) (Interval, error) {
	if s == "" {
		return IntervalDaily, nil
	}
	i := Interval(s)
	if _, ok := intervalTradingDays[i]; !ok {
		return "", fmt.Errorf("unsupported interval %q", s)
	}
	return i, nil
}

// Bars returns the approximate number of bars a range holds at an interval.
func (r Range) Bars(interval Interval) int {
	days, ok := rangeTradingDays[r]
	if !ok {
		days = rangeTradingDays[Range1Y]
	}
	step, ok := intervalTradingDays[interval]
	if !ok {
		step = 1
	}
	return max(days/step, 1)
}

// Fetcher retrieves historical bars for a symbol. Implementations return
// bars in ascending time order and mark missing fields as NaN.
type Fetcher interface {
	FetchSeries(ctx context.Context, symbol string, rng Range, interval Interval) (model.PriceSeries, error)
	Name() string
}
