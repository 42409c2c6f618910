package calculator

import "fmt"

// BollingerBands returns upper, middle and lower bands.
// middle is SMA(period); the bands are offset by k population standard deviations.
func BollingerBands(values []float64, period int, k float64) (upper, middle, lower []float64, err error) {
	if period < 1 {
		return nil, nil, nil, fmt.Errorf("%w: Bollinger period %d", ErrInvalidConfig, period)
	}
	if k < 0 {
		return nil, nil, nil, fmt.Errorf("%w: Bollinger multiplier %.2f", ErrInvalidConfig, k)
	}

	n := len(values)
	upper, middle, lower = nanSlice(n), nanSlice(n), nanSlice(n)
	for i := period - 1; i < n; i++ {
		window := values[i-period+1 : i+1]
		m := mean(window)
		sd := stddev(window, m)
		middle[i] = m
		upper[i] = m + k*sd
		lower[i] = m - k*sd
	}
	return upper, middle, lower, nil
}
