package strategy

import (
	"fmt"
	"math"

	"StockLens/internal/calculator"
	"StockLens/internal/model"
)

// Outlooks maps a normalised total score to a label, highest first.
var Outlooks = []struct {
	MinScore float64
	Outlook  model.Outlook
}{
	{1.0, model.Outlook{Label: "Strong bullish", Bias: model.BiasBullish}},
	{0.4, model.Outlook{Label: "Bullish", Bias: model.BiasBullish}},
	{-0.4, model.Outlook{Label: "Neutral", Bias: model.BiasNeutral}},
	{-1.0, model.Outlook{Label: "Bearish", Bias: model.BiasBearish}},
}

// DefaultOutlook is used for scores below every tier.
var DefaultOutlook = model.Outlook{Label: "Strong bearish", Bias: model.BiasBearish}

func mapOutlook(score float64) model.Outlook {
	for _, o := range Outlooks {
		if score >= o.MinScore {
			return o.Outlook
		}
	}
	return DefaultOutlook
}

// Evaluate scores the latest row of frame and produces the signal lines.
// Factors whose columns are missing or undefined are reported as n/a and
// excluded from the total.
func Evaluate(series model.PriceSeries, frame *model.IndicatorFrame) *model.Assessment {
	last, ok := series.Last()
	if !ok {
		return &model.Assessment{
			Outlook: model.Outlook{Label: "Insufficient data", Bias: model.BiasNeutral},
			Signals: []string{"Insufficient data for analysis"},
		}
	}
	snap := snapshot{price: last.Close, frame: frame, closes: series.Closes()}
	ratio := volumeRatio(series, frame)

	factors := []model.FactorScore{
		scoreRSI(snap),
		scoreTrend(snap),
		scoreMACD(snap),
		scoreBollinger(snap),
		scoreStochastic(snap),
		scoreVolume(snap, ratio),
	}

	var weighted, weights float64
	for _, f := range factors {
		if f.Available {
			weighted += f.Weighted
			weights += f.Weight
		}
	}
	total := 0.0
	if weights > 0 {
		total = weighted / weights
	}

	a := &model.Assessment{
		Factors:    factors,
		TotalScore: total,
		Outlook:    mapOutlook(total),
		Signals:    signals(snap, ratio),
	}
	if rsi, ok := snap.get("RSI"); ok && rsi > 85 {
		a.WarningMsg = fmt.Sprintf("RSI %.0f above 85: consider taking partial profits", rsi)
	}
	return a
}

// volumeRatio prefers the frame column and falls back to a 20-bar average.
func volumeRatio(series model.PriceSeries, frame *model.IndicatorFrame) float64 {
	if frame != nil {
		if v, ok := frame.Last("Volume_Ratio"); ok {
			return v
		}
	}
	_, ratio, err := calculator.VolumeRatio(series.Volumes(), calculator.DefaultVolumePeriod)
	if err != nil || len(ratio) == 0 {
		return math.NaN()
	}
	return ratio[len(ratio)-1]
}

func signals(s snapshot, volRatio float64) []string {
	var out []string

	if rsi, ok := s.get("RSI"); ok {
		switch {
		case rsi > 70:
			out = append(out, fmt.Sprintf("RSI overbought (%.1f) - potential reversal", rsi))
		case rsi < 30:
			out = append(out, fmt.Sprintf("RSI oversold (%.1f) - potential bounce", rsi))
		default:
			out = append(out, fmt.Sprintf("RSI neutral at %.1f", rsi))
		}
	}

	sma20, ok20 := s.get("SMA_20")
	sma50, ok50 := s.get("SMA_50")
	if ok20 && ok50 {
		switch {
		case s.price > sma20 && sma20 > sma50:
			out = append(out, "Strong uptrend: price above 20-day and 50-day SMAs")
		case s.price < sma20 && sma20 < sma50:
			out = append(out, "Strong downtrend: price below 20-day and 50-day SMAs")
		case s.price > sma20 && sma20 < sma50:
			out = append(out, "Potential trend reversal: price above 20-day SMA but below 50-day SMA")
		}
	}

	line, okLine := s.get("MACD")
	sig, okSig := s.get("MACD_Signal")
	if okLine && okSig {
		if line > sig {
			out = append(out, "MACD bullish: MACD line above signal line")
		} else {
			out = append(out, "MACD bearish: MACD line below signal line")
		}
	}

	upper, okU := s.get("BB_Upper")
	lower, okL := s.get("BB_Lower")
	if okU && okL {
		switch {
		case s.price > upper:
			out = append(out, "Price above upper Bollinger Band - potential reversal")
		case s.price < lower:
			out = append(out, "Price below lower Bollinger Band - potential bounce")
		default:
			out = append(out, "Price within Bollinger Bands - normal volatility")
		}
	}

	if k, ok := s.get("STOCH_K"); ok {
		switch {
		case k > 80:
			out = append(out, fmt.Sprintf("Stochastic %%K %.1f in overbought zone", k))
		case k < 20:
			out = append(out, fmt.Sprintf("Stochastic %%K %.1f in oversold zone", k))
		}
	}

	if !math.IsNaN(volRatio) {
		switch {
		case volRatio > 1.5:
			out = append(out, "High volume - strong conviction in current move")
		case volRatio < 0.5:
			out = append(out, "Low volume - weak conviction in current move")
		}
	}

	if n := len(s.closes); n >= 5 {
		if s.closes[n-1] > s.closes[n-5] {
			out = append(out, "Recent 5-day uptrend")
		} else {
			out = append(out, "Recent 5-day downtrend")
		}
	}

	if len(out) == 0 {
		out = append(out, "No clear signals - consider a longer timeframe")
	}
	return out
}
