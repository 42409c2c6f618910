package calculator

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned for unusable indicator parameters.
var ErrInvalidConfig = errors.New("invalid indicator config")

// MalformedSeriesError reports a bar that violates the PriceSeries invariants.
// Index is the offending bar, Field the OHLCV field (or "time").
type MalformedSeriesError struct {
	Index  int
	Field  string
	Reason string
}

func (e *MalformedSeriesError) Error() string {
	return fmt.Sprintf("malformed series at bar %d (%s): %s", e.Index, e.Field, e.Reason)
}

// InsufficientDataError reports a series shorter than an indicator's warm-up.
type InsufficientDataError struct {
	Indicator string
	Need      int
	Have      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need %d bars, have %d", e.Indicator, e.Need, e.Have)
}
