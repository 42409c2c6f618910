package calculator

import "math"

// VolumeRatio returns the volume SMA and volume divided by that SMA.
// The ratio is NaN where the SMA is undefined or zero.
func VolumeRatio(volume []float64, period int) (avg, ratio []float64, err error) {
	avg, err = SMA(volume, period)
	if err != nil {
		return nil, nil, err
	}
	ratio = nanSlice(len(volume))
	for i := range volume {
		if math.IsNaN(avg[i]) || avg[i] == 0 {
			continue
		}
		ratio[i] = volume[i] / avg[i]
	}
	return avg, ratio, nil
}
