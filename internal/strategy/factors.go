package strategy

import (
	"fmt"
	"math"

	"StockLens/internal/model"
)

// Factor weights. They sum to 1; unavailable factors are left out of the
// normalisation so partial profiles still score on the same [-2, 2] scale.
const (
	weightRSI        = 0.25
	weightTrend      = 0.25
	weightMACD       = 0.20
	weightBollinger  = 0.15
	weightStochastic = 0.10
	weightVolume     = 0.05
)

// snapshot is the last row of a frame plus the raw closes.
type snapshot struct {
	price  float64
	frame  *model.IndicatorFrame
	closes []float64
}

func (s snapshot) get(name string) (float64, bool) {
	if s.frame == nil {
		return math.NaN(), false
	}
	return s.frame.Last(name)
}

func unavailable(name string, weight float64) model.FactorScore {
	return model.FactorScore{Name: name, Weight: weight, Bias: model.BiasNeutral, Commentary: "n/a"}
}

func scored(name string, score, weight float64, commentary string) model.FactorScore {
	return model.FactorScore{
		Name:       name,
		RawScore:   score,
		Weight:     weight,
		Weighted:   score * weight,
		Bias:       biasOf(score),
		Available:  true,
		Commentary: commentary,
	}
}

func biasOf(score float64) model.Bias {
	switch {
	case score > 0:
		return model.BiasBullish
	case score < 0:
		return model.BiasBearish
	default:
		return model.BiasNeutral
	}
}

// scoreRSI reads RSI contrarian-style: oversold scores positive.
// Weight: 0.25
func scoreRSI(s snapshot) model.FactorScore {
	rsi, ok := s.get("RSI")
	if !ok {
		return unavailable("RSI", weightRSI)
	}
	var score float64
	switch {
	case rsi <= 20:
		score = 2.0
	case rsi <= 30:
		score = 1.5
	case rsi <= 40:
		score = 0.5
	case rsi <= 60:
		score = 0
	case rsi <= 70:
		score = -0.5
	case rsi <= 80:
		score = -1.5
	default:
		score = -2.0
	}
	return scored("RSI", score, weightRSI, fmt.Sprintf("RSI=%.1f", rsi))
}

// scoreTrend scores the price / SMA20 / SMA50 alignment.
// Weight: 0.25
func scoreTrend(s snapshot) model.FactorScore {
	sma20, ok20 := s.get("SMA_20")
	sma50, ok50 := s.get("SMA_50")
	if !ok20 || !ok50 {
		return unavailable("Trend", weightTrend)
	}
	var score float64
	var commentary string
	switch {
	case s.price > sma20 && sma20 > sma50:
		score, commentary = 1.5, "price > SMA20 > SMA50"
	case s.price < sma20 && sma20 < sma50:
		score, commentary = -1.5, "price < SMA20 < SMA50"
	case s.price > sma20 && sma20 < sma50:
		score, commentary = 0.5, "price reclaimed SMA20 below SMA50"
	case s.price < sma20 && sma20 > sma50:
		score, commentary = -0.5, "price lost SMA20 above SMA50"
	default:
		score, commentary = 0, "mixed"
	}
	return scored("Trend", score, weightTrend, commentary)
}

// scoreMACD scores the line against its signal and the zero line.
// Weight: 0.20
func scoreMACD(s snapshot) model.FactorScore {
	line, okLine := s.get("MACD")
	sig, okSig := s.get("MACD_Signal")
	if !okLine || !okSig {
		return unavailable("MACD", weightMACD)
	}
	var score float64
	switch {
	case line > sig && line > 0:
		score = 1.5
	case line > sig:
		score = 1.0
	case line < sig && line < 0:
		score = -1.5
	case line < sig:
		score = -1.0
	}
	return scored("MACD", score, weightMACD, fmt.Sprintf("line %.3f vs signal %.3f", line, sig))
}

// scoreBollinger scores the price's place inside the bands (%B).
// Weight: 0.15
func scoreBollinger(s snapshot) model.FactorScore {
	upper, okU := s.get("BB_Upper")
	lower, okL := s.get("BB_Lower")
	if !okU || !okL {
		return unavailable("Bollinger", weightBollinger)
	}
	if upper == lower {
		return scored("Bollinger", 0, weightBollinger, "bands collapsed")
	}
	pctB := (s.price - lower) / (upper - lower)
	var score float64
	switch {
	case s.price > upper:
		score = -1.5
	case s.price < lower:
		score = 1.5
	case pctB > 0.8:
		score = -0.5
	case pctB < 0.2:
		score = 0.5
	}
	return scored("Bollinger", score, weightBollinger, fmt.Sprintf("%%B=%.2f", pctB))
}

// scoreStochastic scores %K extremes and the %K/%D cross.
// Weight: 0.10
func scoreStochastic(s snapshot) model.FactorScore {
	k, okK := s.get("STOCH_K")
	d, okD := s.get("STOCH_D")
	if !okK || !okD {
		return unavailable("Stochastic", weightStochastic)
	}
	var score float64
	switch {
	case k < 20:
		score = 1.0
	case k > 80:
		score = -1.0
	}
	if k > d {
		score += 0.5
	} else if k < d {
		score -= 0.5
	}
	return scored("Stochastic", score, weightStochastic, fmt.Sprintf("%%K=%.1f %%D=%.1f", k, d))
}

// scoreVolume treats heavy volume as conviction behind the 5-bar move.
// Weight: 0.05
func scoreVolume(s snapshot, ratio float64) model.FactorScore {
	if math.IsNaN(ratio) || len(s.closes) < 5 {
		return unavailable("Volume", weightVolume)
	}
	move := s.closes[len(s.closes)-1] - s.closes[len(s.closes)-5]
	var score float64
	switch {
	case ratio > 1.5 && move > 0:
		score = 1.0
	case ratio > 1.5 && move < 0:
		score = -1.0
	}
	return scored("Volume", score, weightVolume, fmt.Sprintf("%.2fx 20-day average", ratio))
}
