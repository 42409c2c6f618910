package calculator

import "fmt"

// OBV computes on-balance volume, starting at 0 on the first bar.
func OBV(close, volume []float64) ([]float64, error) {
	if len(close) != len(volume) {
		return nil, fmt.Errorf("%w: OBV input lengths differ", ErrInvalidConfig)
	}
	out := make([]float64, len(close))
	for i := 1; i < len(close); i++ {
		switch {
		case close[i] > close[i-1]:
			out[i] = out[i-1] + volume[i]
		case close[i] < close[i-1]:
			out[i] = out[i-1] - volume[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out, nil
}
