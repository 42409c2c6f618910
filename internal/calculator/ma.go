package calculator

import "fmt"

// SMA computes the trailing arithmetic mean over period values.
// The first period-1 points are NaN.
func SMA(values []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: SMA period %d", ErrInvalidConfig, period)
	}
	out := nanSlice(len(values))
	for i := period - 1; i < len(values); i++ {
		out[i] = mean(values[i-period+1 : i+1])
	}
	return out, nil
}

// EMA computes an exponential moving average with alpha = 2/(period+1).
//
// Seed convention: the first defined value is the SMA of the first period
// defined inputs, placed at that window's last index. Leading NaN input is
// skipped, so EMA can be chained on another indicator's output (MACD signal).
func EMA(values []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: EMA period %d", ErrInvalidConfig, period)
	}
	out := nanSlice(len(values))
	start := firstDefined(values)
	if start < 0 || len(values)-start < period {
		return out, nil
	}

	seedAt := start + period - 1
	out[seedAt] = mean(values[start : seedAt+1])

	alpha := 2.0 / float64(period+1)
	for i := seedAt + 1; i < len(values); i++ {
		out[i] = out[i-1] + alpha*(values[i]-out[i-1])
	}
	return out, nil
}
