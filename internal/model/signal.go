package model

// Bias is the direction a factor leans.
type Bias string

const (
	BiasBullish Bias = "BULLISH"
	BiasBearish Bias = "BEARISH"
	BiasNeutral Bias = "NEUTRAL"
)

// FactorScore represents a single factor's scoring result.
type FactorScore struct {
	Name       string  `json:"name"`
	RawScore   float64 `json:"raw_score"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Bias       Bias    `json:"bias"`
	Available  bool    `json:"available"`
	Commentary string  `json:"commentary"`
}

// Outlook maps a total score range to a label.
type Outlook struct {
	Label string `json:"label"`
	Bias  Bias   `json:"bias"`
}

// Assessment is the output of the insight engine.
type Assessment struct {
	Factors    []FactorScore `json:"factors"`
	TotalScore float64       `json:"total_score"`
	Outlook    Outlook       `json:"outlook"`
	Signals    []string      `json:"signals"`
	WarningMsg string        `json:"warning,omitempty"`
}

// PriceSummary is the headline block of an analysis.
type PriceSummary struct {
	Current     float64 `json:"current"`
	Change      float64 `json:"change"`
	ChangePct   float64 `json:"change_pct"`
	High52w     float64 `json:"high_52w"`
	Low52w      float64 `json:"low_52w"`
	Position52w float64 `json:"position_52w"`
	High30d     float64 `json:"high_30d"`
	Low30d      float64 `json:"low_30d"`
}

// Analysis bundles everything produced for one symbol.
type Analysis struct {
	Symbol     string          `json:"symbol"`
	Profile    string          `json:"profile"`
	Series     *PriceSeries    `json:"-"`
	Summary    PriceSummary    `json:"summary"`
	Frame      *IndicatorFrame `json:"frame"`
	Assessment *Assessment     `json:"assessment"`
}
