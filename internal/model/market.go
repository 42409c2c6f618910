package model

import "time"

// PriceBar represents a single candlestick bar.
type PriceBar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// SymbolInfo carries the descriptive quote fields shown next to a chart.
// Zero values mean the provider did not report the field.
type SymbolInfo struct {
	Name          string  `json:"name,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	Exchange      string  `json:"exchange,omitempty"`
	MarketCap     float64 `json:"market_cap,omitempty"`
	TrailingPE    float64 `json:"trailing_pe,omitempty"`
	DividendYield float64 `json:"dividend_yield,omitempty"`
}

// PriceSeries holds an ascending run of bars for one symbol.
// It is treated as immutable once fetched.
type PriceSeries struct {
	Symbol    string     `json:"symbol"`
	Interval  string     `json:"interval"`
	Bars      []PriceBar `json:"bars"`
	Info      SymbolInfo `json:"info"`
	FetchedAt time.Time  `json:"fetched_at"`
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Closes extracts the close prices.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high prices.
func (s PriceSeries) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low prices.
func (s PriceSeries) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// Volumes extracts the bar volumes.
func (s PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// Times extracts the bar timestamps.
func (s PriceSeries) Times() []time.Time {
	out := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Time
	}
	return out
}

// Last returns the most recent bar, or false for an empty series.
func (s PriceSeries) Last() (PriceBar, bool) {
	if len(s.Bars) == 0 {
		return PriceBar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}
