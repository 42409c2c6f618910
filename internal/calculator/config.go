package calculator

import (
	"fmt"
	"strconv"
)

// Kind names an indicator family.
type Kind string

const (
	KindSMA        Kind = "SMA"
	KindEMA        Kind = "EMA"
	KindRSI        Kind = "RSI"
	KindMACD       Kind = "MACD"
	KindBollinger  Kind = "BB"
	KindStochastic Kind = "STOCH"
	KindOBV        Kind = "OBV"
	KindVolume     Kind = "VOLUME"
)

// Default parameters, applied when a Spec leaves a field at zero.
const (
	DefaultMAPeriod     = 20
	DefaultRSIPeriod    = 14
	DefaultMACDFast     = 12
	DefaultMACDSlow     = 26
	DefaultMACDSignal   = 9
	DefaultBBPeriod     = 20
	DefaultBBMultiplier = 2.0
	DefaultStochK       = 14
	DefaultStochD       = 3
	DefaultVolumePeriod = 20
)

// Spec configures a single indicator. Zero-valued parameters take the
// defaults above. Name overrides the column name for single-column kinds
// and the column prefix for MACD, BB, STOCH and VOLUME.
type Spec struct {
	Kind    Kind    `yaml:"kind" json:"kind"`
	Period  int     `yaml:"period,omitempty" json:"period,omitempty"`
	Fast    int     `yaml:"fast,omitempty" json:"fast,omitempty"`
	Slow    int     `yaml:"slow,omitempty" json:"slow,omitempty"`
	Signal  int     `yaml:"signal,omitempty" json:"signal,omitempty"`
	K       float64 `yaml:"k,omitempty" json:"k,omitempty"`
	KPeriod int     `yaml:"k_period,omitempty" json:"k_period,omitempty"`
	DPeriod int     `yaml:"d_period,omitempty" json:"d_period,omitempty"`
	Name    string  `yaml:"name,omitempty" json:"name,omitempty"`
}

// Config is the indicator set computed by Compute.
// In Strict mode an InsufficientDataError fails the whole call.
type Config struct {
	Indicators []Spec `yaml:"indicators" json:"indicators"`
	Strict     bool   `yaml:"strict" json:"strict"`
}

// DefaultConfig returns every indicator with its conventional parameters.
func DefaultConfig() Config {
	return Config{Indicators: []Spec{
		{Kind: KindSMA, Period: 20},
		{Kind: KindSMA, Period: 50},
		{Kind: KindEMA, Period: 12},
		{Kind: KindEMA, Period: 26},
		{Kind: KindRSI, Period: DefaultRSIPeriod},
		{Kind: KindMACD, Fast: DefaultMACDFast, Slow: DefaultMACDSlow, Signal: DefaultMACDSignal},
		{Kind: KindBollinger, Period: DefaultBBPeriod, K: DefaultBBMultiplier},
		{Kind: KindStochastic, KPeriod: DefaultStochK, DPeriod: DefaultStochD},
		{Kind: KindOBV},
		{Kind: KindVolume, Period: DefaultVolumePeriod},
	}}
}

// Validate rejects unknown kinds, unusable parameters and column clashes.
func (c Config) Validate() error {
	seen := make(map[string]int)
	for i, raw := range c.Indicators {
		s := raw.withDefaults()
		if err := s.validate(); err != nil {
			return fmt.Errorf("indicator %d: %w", i, err)
		}
		for _, col := range s.Columns() {
			if j, dup := seen[col]; dup {
				return fmt.Errorf("%w: column %q produced by indicators %d and %d", ErrInvalidConfig, col, j, i)
			}
			seen[col] = i
		}
	}
	return nil
}

func (s Spec) withDefaults() Spec {
	switch s.Kind {
	case KindSMA, KindEMA:
		if s.Period == 0 {
			s.Period = DefaultMAPeriod
		}
	case KindRSI:
		if s.Period == 0 {
			s.Period = DefaultRSIPeriod
		}
	case KindMACD:
		if s.Fast == 0 {
			s.Fast = DefaultMACDFast
		}
		if s.Slow == 0 {
			s.Slow = DefaultMACDSlow
		}
		if s.Signal == 0 {
			s.Signal = DefaultMACDSignal
		}
	case KindBollinger:
		if s.Period == 0 {
			s.Period = DefaultBBPeriod
		}
		if s.K == 0 {
			s.K = DefaultBBMultiplier
		}
	case KindStochastic:
		if s.KPeriod == 0 {
			s.KPeriod = DefaultStochK
		}
		if s.DPeriod == 0 {
			s.DPeriod = DefaultStochD
		}
	case KindVolume:
		if s.Period == 0 {
			s.Period = DefaultVolumePeriod
		}
	}
	return s
}

func (s Spec) validate() error {
	switch s.Kind {
	case KindSMA, KindEMA, KindRSI, KindVolume:
		if s.Period < 1 {
			return fmt.Errorf("%w: %s period must be >= 1, got %d", ErrInvalidConfig, s.Kind, s.Period)
		}
	case KindMACD:
		if s.Fast < 1 || s.Slow < 1 || s.Signal < 1 {
			return fmt.Errorf("%w: MACD periods must be >= 1", ErrInvalidConfig)
		}
		if s.Fast >= s.Slow {
			return fmt.Errorf("%w: MACD fast period %d must be below slow period %d", ErrInvalidConfig, s.Fast, s.Slow)
		}
	case KindBollinger:
		if s.Period < 1 {
			return fmt.Errorf("%w: BB period must be >= 1, got %d", ErrInvalidConfig, s.Period)
		}
		if s.K <= 0 {
			return fmt.Errorf("%w: BB multiplier must be positive, got %.2f", ErrInvalidConfig, s.K)
		}
	case KindStochastic:
		if s.KPeriod < 1 || s.DPeriod < 1 {
			return fmt.Errorf("%w: STOCH periods must be >= 1", ErrInvalidConfig)
		}
	case KindOBV:
	default:
		return fmt.Errorf("%w: unknown indicator kind %q", ErrInvalidConfig, s.Kind)
	}
	return nil
}

// Lookback is the minimum number of bars needed for one defined value.
func (s Spec) Lookback() int {
	s = s.withDefaults()
	switch s.Kind {
	case KindSMA, KindEMA, KindBollinger, KindVolume:
		return s.Period
	case KindRSI:
		return s.Period + 1
	case KindMACD:
		return s.Slow + s.Signal - 1
	case KindStochastic:
		return s.KPeriod + s.DPeriod - 1
	case KindOBV:
		return 1
	}
	return 0
}

// Label identifies the indicator in errors and logs, e.g. "MACD(12,26,9)".
func (s Spec) Label() string {
	s = s.withDefaults()
	switch s.Kind {
	case KindSMA, KindEMA, KindRSI, KindVolume:
		return fmt.Sprintf("%s(%d)", s.Kind, s.Period)
	case KindMACD:
		return fmt.Sprintf("MACD(%d,%d,%d)", s.Fast, s.Slow, s.Signal)
	case KindBollinger:
		return fmt.Sprintf("BB(%d,%s)", s.Period, strconv.FormatFloat(s.K, 'f', -1, 64))
	case KindStochastic:
		return fmt.Sprintf("STOCH(%d,%d)", s.KPeriod, s.DPeriod)
	}
	return string(s.Kind)
}

// Columns lists the frame columns the indicator produces, in order.
func (s Spec) Columns() []string {
	s = s.withDefaults()
	prefix := func(def string) string {
		if s.Name != "" {
			return s.Name
		}
		return def
	}
	switch s.Kind {
	case KindSMA, KindEMA:
		return []string{prefix(fmt.Sprintf("%s_%d", s.Kind, s.Period))}
	case KindRSI:
		if s.Period == DefaultRSIPeriod {
			return []string{prefix("RSI")}
		}
		return []string{prefix(fmt.Sprintf("RSI_%d", s.Period))}
	case KindMACD:
		p := prefix("MACD")
		return []string{p, p + "_Signal", p + "_Hist"}
	case KindBollinger:
		p := prefix("BB")
		return []string{p + "_Upper", p + "_Middle", p + "_Lower"}
	case KindStochastic:
		p := prefix("STOCH")
		return []string{p + "_K", p + "_D"}
	case KindOBV:
		return []string{prefix("OBV")}
	case KindVolume:
		p := prefix("Volume")
		return []string{fmt.Sprintf("%s_SMA_%d", p, s.Period), p + "_Ratio"}
	}
	return nil
}
