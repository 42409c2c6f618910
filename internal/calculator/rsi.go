package calculator

import "fmt"

// RSI computes the Wilder-smoothed relative strength index.
//
// The first value sits at index period and uses the simple average of the
// first period price changes; later values use Wilder smoothing. When the
// average loss is zero the RSI is 100, which also covers a flat series.
func RSI(values []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: RSI period %d", ErrInvalidConfig, period)
	}
	out := nanSlice(len(values))
	if len(values) < period+1 {
		return out, nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	p := float64(period)
	avgGain /= p
	avgLoss /= p
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
