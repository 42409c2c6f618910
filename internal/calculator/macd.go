package calculator

import "fmt"

// MACD returns the MACD line, its signal line and the histogram.
// line = EMA(fast) - EMA(slow); signal = EMA(line, signal); hist = line - signal.
func MACD(values []float64, fast, slow, signal int) (line, sig, hist []float64, err error) {
	if fast < 1 || slow < 1 || signal < 1 {
		return nil, nil, nil, fmt.Errorf("%w: MACD periods %d/%d/%d", ErrInvalidConfig, fast, slow, signal)
	}
	emaFast, err := EMA(values, fast)
	if err != nil {
		return nil, nil, nil, err
	}
	emaSlow, err := EMA(values, slow)
	if err != nil {
		return nil, nil, nil, err
	}

	line = make([]float64, len(values))
	for i := range values {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig, err = EMA(line, signal)
	if err != nil {
		return nil, nil, nil, err
	}
	hist = make([]float64, len(values))
	for i := range values {
		hist[i] = line[i] - sig[i]
	}
	return line, sig, hist, nil
}
