package calculator

import "fmt"

// Stochastic returns %K and %D.
//
// %K is NaN wherever the highest high equals the lowest low over the
// window; %D is SMA(%K, dPeriod) and is NaN if any %K in its window is.
func Stochastic(high, low, close []float64, kPeriod, dPeriod int) (k, d []float64, err error) {
	if kPeriod < 1 || dPeriod < 1 {
		return nil, nil, fmt.Errorf("%w: stochastic periods %d/%d", ErrInvalidConfig, kPeriod, dPeriod)
	}
	if len(high) != len(close) || len(low) != len(close) {
		return nil, nil, fmt.Errorf("%w: stochastic input lengths differ", ErrInvalidConfig)
	}

	k = nanSlice(len(close))
	for i := kPeriod - 1; i < len(close); i++ {
		hh := highest(high[i-kPeriod+1 : i+1])
		ll := lowest(low[i-kPeriod+1 : i+1])
		if hh == ll {
			continue
		}
		k[i] = 100 * (close[i] - ll) / (hh - ll)
	}

	d, err = SMA(k, dPeriod)
	if err != nil {
		return nil, nil, err
	}
	return k, d, nil
}
