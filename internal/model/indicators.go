package model

import (
	"encoding/json"
	"math"
	"time"
)

// IndicatorIssue records an indicator that could not produce defined values.
// The column is still present in the frame, filled with NaN.
type IndicatorIssue struct {
	Indicator string `json:"indicator"`
	Err       error  `json:"-"`
}

// MarshalJSON renders the error as text.
func (i IndicatorIssue) MarshalJSON() ([]byte, error) {
	msg := ""
	if i.Err != nil {
		msg = i.Err.Error()
	}
	return json.Marshal(struct {
		Indicator string `json:"indicator"`
		Error     string `json:"error"`
	}{i.Indicator, msg})
}

// IndicatorFrame holds indicator columns aligned 1:1 with a PriceSeries.
// Undefined values (warm-up, zero range) are NaN.
type IndicatorFrame struct {
	Index   []time.Time          `json:"index"`
	Columns map[string][]float64 `json:"-"`
	Order   []string             `json:"order"`
	Issues  []IndicatorIssue     `json:"issues,omitempty"`
}

// NewIndicatorFrame creates an empty frame over the given index.
func NewIndicatorFrame(index []time.Time) *IndicatorFrame {
	return &IndicatorFrame{
		Index:   index,
		Columns: make(map[string][]float64),
	}
}

// Set stores a column, keeping insertion order.
func (f *IndicatorFrame) Set(name string, values []float64) {
	if _, ok := f.Columns[name]; !ok {
		f.Order = append(f.Order, name)
	}
	f.Columns[name] = values
}

// Last returns the final value of a column and whether it is defined.
func (f *IndicatorFrame) Last(name string) (float64, bool) {
	col, ok := f.Columns[name]
	if !ok || len(col) == 0 {
		return math.NaN(), false
	}
	v := col[len(col)-1]
	return v, !math.IsNaN(v)
}

// Len returns the number of rows.
func (f *IndicatorFrame) Len() int { return len(f.Index) }

// MarshalJSON encodes NaN as null so the frame survives encoding/json.
func (f *IndicatorFrame) MarshalJSON() ([]byte, error) {
	cols := make(map[string][]*float64, len(f.Columns))
	for name, values := range f.Columns {
		out := make([]*float64, len(values))
		for i := range values {
			if math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
				continue
			}
			v := values[i]
			out[i] = &v
		}
		cols[name] = out
	}
	return json.Marshal(struct {
		Index   []time.Time           `json:"index"`
		Order   []string              `json:"order"`
		Columns map[string][]*float64 `json:"columns"`
		Issues  []IndicatorIssue      `json:"issues,omitempty"`
	}{f.Index, f.Order, cols, f.Issues})
}
