package calculator

import "math"

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func firstDefined(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}

// mean returns NaN when any element is NaN. The result is clamped to the
// window's range so rounding never puts it outside [lowest, highest]; a
// constant window yields its value exactly.
func mean(window []float64) float64 {
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	m := sum / float64(len(window))
	if math.IsNaN(m) {
		return m
	}
	return math.Min(math.Max(m, lowest(window)), highest(window))
}

// stddev is the population standard deviation of window around m.
func stddev(window []float64, m float64) float64 {
	variance := 0.0
	for _, v := range window {
		variance += (v - m) * (v - m)
	}
	return math.Sqrt(variance / float64(len(window)))
}

func highest(window []float64) float64 {
	h := math.Inf(-1)
	for _, v := range window {
		if v > h {
			h = v
		}
	}
	return h
}

func lowest(window []float64) float64 {
	l := math.Inf(1)
	for _, v := range window {
		if v < l {
			l = v
		}
	}
	return l
}
