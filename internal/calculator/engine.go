package calculator

import (
	"errors"
	"fmt"

	"StockLens/internal/model"
)

type inputs struct {
	n                        int
	high, low, close, volume []float64
}

// Compute validates the series and runs every configured indicator over it.
//
// Indicators are independent: a short series yields all-NaN columns and an
// InsufficientDataError in frame.Issues for each affected indicator. With
// cfg.Strict set, those errors are joined and returned without a frame.
// A malformed series is rejected before any indicator runs.
func Compute(series model.PriceSeries, cfg Config) (*model.IndicatorFrame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateSeries(series); err != nil {
		return nil, err
	}

	in := inputs{
		n:      series.Len(),
		high:   series.Highs(),
		low:    series.Lows(),
		close:  series.Closes(),
		volume: series.Volumes(),
	}
	frame := model.NewIndicatorFrame(series.Times())

	var insufficient []error
	for _, raw := range cfg.Indicators {
		spec := raw.withDefaults()
		names := spec.Columns()

		cols, err := computeSpec(in, spec)
		if err != nil {
			frame.Issues = append(frame.Issues, model.IndicatorIssue{Indicator: spec.Label(), Err: err})
			for _, name := range names {
				frame.Set(name, nanSlice(in.n))
			}
			continue
		}

		if need := spec.Lookback(); in.n < need {
			ierr := &InsufficientDataError{Indicator: spec.Label(), Need: need, Have: in.n}
			insufficient = append(insufficient, ierr)
			frame.Issues = append(frame.Issues, model.IndicatorIssue{Indicator: spec.Label(), Err: ierr})
		}
		for i, name := range names {
			frame.Set(name, cols[i])
		}
	}

	if cfg.Strict && len(insufficient) > 0 {
		return nil, errors.Join(insufficient...)
	}
	return frame, nil
}

func computeSpec(in inputs, s Spec) ([][]float64, error) {
	switch s.Kind {
	case KindSMA:
		v, err := SMA(in.close, s.Period)
		return [][]float64{v}, err
	case KindEMA:
		v, err := EMA(in.close, s.Period)
		return [][]float64{v}, err
	case KindRSI:
		v, err := RSI(in.close, s.Period)
		return [][]float64{v}, err
	case KindMACD:
		line, sig, hist, err := MACD(in.close, s.Fast, s.Slow, s.Signal)
		return [][]float64{line, sig, hist}, err
	case KindBollinger:
		upper, middle, lower, err := BollingerBands(in.close, s.Period, s.K)
		return [][]float64{upper, middle, lower}, err
	case KindStochastic:
		k, d, err := Stochastic(in.high, in.low, in.close, s.KPeriod, s.DPeriod)
		return [][]float64{k, d}, err
	case KindOBV:
		v, err := OBV(in.close, in.volume)
		return [][]float64{v}, err
	case KindVolume:
		avg, ratio, err := VolumeRatio(in.volume, s.Period)
		return [][]float64{avg, ratio}, err
	}
	return nil, fmt.Errorf("%w: unknown indicator kind %q", ErrInvalidConfig, s.Kind)
}
