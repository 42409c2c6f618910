package notifier

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"StockLens/internal/education"
	"StockLens/internal/model"
)

func sampleAnalysis() *model.Analysis {
	return &model.Analysis{
		Symbol:  "AAPL",
		Profile: "advanced",
		Summary: model.PriceSummary{Current: 190.5, Change: 2.5, ChangePct: 1.33, High52w: 200, Low52w: 150, Position52w: 0.81, High30d: 195, Low30d: 180},
		Frame: &model.IndicatorFrame{Issues: []model.IndicatorIssue{
			{Indicator: "SMA(200)"},
		}},
		Assessment: &model.Assessment{
			Factors: []model.FactorScore{
				{Name: "RSI", RawScore: 1, Weight: 0.25, Weighted: 0.25, Available: true, Commentary: "RSI=28.0"},
				{Name: "Volume", Weight: 0.05, Commentary: "n/a"},
			},
			TotalScore: 0.55,
			Outlook:    model.Outlook{Label: "Bullish", Bias: model.BiasBullish},
			Signals:    []string{"RSI oversold <30"},
			WarningMsg: "RSI above 85",
		},
	}
}

func TestFormatAnalysis(t *testing.T) {
	out := FormatAnalysis(sampleAnalysis())
	for _, want := range []string{
		"<b>AAPL</b>",
		"Price: 190.50 (+2.50, +1.33%)",
		"RSI(RSI=28.0): +1.0",
		"Volume: n/a",
		"<b>Bullish</b>",
		"RSI oversold &lt;30",
		"RSI above 85",
		"SMA(200)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatAnalysis_NaNSummary(t *testing.T) {
	a := &model.Analysis{Symbol: "X", Summary: model.PriceSummary{Current: 10, High52w: math.NaN(), Low52w: math.NaN()}}
	out := FormatAnalysis(a)
	if !strings.Contains(out, "52w range: n/a - n/a") {
		t.Errorf("NaN should render as n/a:\n%s", out)
	}
}

func TestFormatDigest(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	failures := map[string]error{"ZZZ": errors.New("no data"), "BAD": errors.New("timeout")}
	out := FormatDigest([]*model.Analysis{sampleAnalysis()}, failures, at)

	if !strings.Contains(out, "2024-05-01 09:30") {
		t.Error("missing timestamp")
	}
	if !strings.Contains(out, "🟢 <b>AAPL</b> 190.50") {
		t.Errorf("missing symbol line:\n%s", out)
	}
	if strings.Index(out, "BAD") > strings.Index(out, "ZZZ") {
		t.Error("failures should be sorted")
	}
}

func TestFormatDigest_Empty(t *testing.T) {
	out := FormatDigest(nil, nil, time.Now())
	if !strings.Contains(out, "Watchlist is empty") {
		t.Errorf("unexpected digest: %s", out)
	}
}

func TestFormatTopic(t *testing.T) {
	topic := education.Topic{
		ID:    "risk",
		Title: "Risk & Sizing",
		Sections: []education.Section{
			{Heading: "Rules", Points: []education.Point{{Term: "1%", Text: "risk at most 1% per trade"}}},
		},
	}
	out := FormatTopic(topic)
	if !strings.Contains(out, "Risk &amp; Sizing") || !strings.Contains(out, "<b>1%</b>") {
		t.Errorf("unexpected topic rendering:\n%s", out)
	}
}

func TestFormatRiskPlan(t *testing.T) {
	in := education.RiskInput{PortfolioValue: 10000, RiskPerTradePct: 3, StopLossPct: 5, MaxPositions: 5, EntryPrice: 50}
	out := FormatRiskPlan(education.PlanRisk(in))
	for _, want := range []string{"$300.00", "Position size: $6000.00", "Shares: 120.00", "⚠️"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatQuiz(t *testing.T) {
	out := FormatQuiz([]education.Question{
		{Question: "What is a 'stop loss'?", Options: []string{"A dividend", "An exit order"}, Correct: 1},
		{Question: "RSI < 30 means?", Options: []string{"Oversold", "Overbought"}, Correct: 0},
	})
	for _, want := range []string{"<b>1.</b>", "a) A dividend", "b) An exit order", "RSI &lt; 30", "/quiz a a"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if FormatQuiz(nil) != "Quiz is not available." {
		t.Error("empty bank should render a notice")
	}
}

func TestFormatQuizResult(t *testing.T) {
	out := FormatQuizResult(education.QuizResult{
		Score: 3, Total: 5, Percentage: 60, Grade: "good", Feedback: "Good! Keep studying to improve your knowledge.",
		Answers: []education.AnswerResult{{Question: "Q1", Right: true}, {Question: "Q2", Right: false}},
	})
	for _, want := range []string{"✅ 1. Q1", "❌ 2. Q2", "3/5", "60.0%", "📚 Good!"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
