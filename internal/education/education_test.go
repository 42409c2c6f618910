package education

import (
	"errors"
	"math"
	"testing"
)

func assertClose(t *testing.T, label string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: got %.6f, want %.6f", label, got, want)
	}
}

func TestLoad_EmbeddedContent(t *testing.T) {
	lib, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, id := range []string{"basics", "indicators", "strategies", "options", "risk", "psychology", "examples"} {
		topic, err := lib.Topic(id)
		if err != nil {
			t.Errorf("missing topic %s: %v", id, err)
			continue
		}
		if topic.Title == "" || len(topic.Sections) == 0 {
			t.Errorf("topic %s is empty", id)
		}
	}
	if _, err := lib.Topic("crypto"); !errors.Is(err, ErrTopicNotFound) {
		t.Errorf("expected ErrTopicNotFound, got %v", err)
	}
}

func TestLibrary_TopicsFilter(t *testing.T) {
	lib, _ := Load()
	got := lib.Topics("risk", "basics")
	if len(got) != 2 || got[0].ID != "basics" || got[1].ID != "risk" {
		t.Errorf("filter should keep file order, got %+v", got)
	}
	if len(lib.Topics()) != 7 {
		t.Errorf("expected 7 topics, got %d", len(lib.Topics()))
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := Parse([]byte("topics:\n  - title: no id\n")); err == nil {
		t.Error("expected error for missing id")
	}
	if _, err := Parse([]byte("topics:\n  - id: a\n  - id: a\n")); err == nil {
		t.Error("expected error for duplicate id")
	}
}

func TestOptionPayoff_LongCall(t *testing.T) {
	// NVDA example: $185 call for $3.50
	leg := OptionLeg{Type: "call", Action: "buy", Strike: 185, Premium: 3.5}
	if err := leg.Normalize(); err != nil {
		t.Fatal(err)
	}
	p := OptionPayoff(leg, 180.45, []float64{170, 188.5, 200})
	assertClose(t, "below strike", p.Points[0].ProfitLoss, -350)
	assertClose(t, "break-even", p.Points[1].ProfitLoss, 0)
	assertClose(t, "at 200", p.Points[2].ProfitLoss, 1150)
	assertClose(t, "break-even price", p.BreakEven, 188.5)
	// out of the money at 180.45: the whole premium is at risk
	assertClose(t, "current price", p.CurrentPrice, 180.45)
	assertClose(t, "current P/L", p.CurrentProfitLoss, -350)
	if p.MaxProfit != nil {
		t.Error("long call profit should be unlimited")
	}
	assertClose(t, "max loss", *p.MaxLoss, -350)
}

func TestOptionPayoff_LongPut(t *testing.T) {
	// TSLA example: $325 put for $8
	leg := OptionLeg{Type: "put", Action: "buy", Strike: 325, Premium: 8}
	_ = leg.Normalize()
	p := OptionPayoff(leg, 330.56, []float64{300, 340})
	assertClose(t, "at 300", p.Points[0].ProfitLoss, 1700)
	assertClose(t, "above strike", p.Points[1].ProfitLoss, -800)
	assertClose(t, "break-even", p.BreakEven, 317)
	assertClose(t, "max profit", *p.MaxProfit, 31700)
	assertClose(t, "current P/L", p.CurrentProfitLoss, -800)
}

func TestOptionPayoff_ShortLegsMirrorLong(t *testing.T) {
	for _, typ := range []string{"call", "put"} {
		long := OptionLeg{Type: typ, Action: "buy", Strike: 50, Premium: 2}
		short := OptionLeg{Type: typ, Action: "sell", Strike: 50, Premium: 2}
		_ = long.Normalize()
		_ = short.Normalize()
		for _, price := range PriceGrid(50, 0.7, 1.3, 50) {
			assertClose(t, typ, long.ProfitAt(price)+short.ProfitAt(price), 0)
		}
	}
	shortCall := OptionLeg{Type: "call", Action: "sell", Strike: 50, Premium: 2}
	_ = shortCall.Normalize()
	p := OptionPayoff(shortCall, 50, nil)
	if p.MaxLoss != nil {
		t.Error("short call loss should be unlimited")
	}
	assertClose(t, "short call max profit", *p.MaxProfit, 200)
	assertClose(t, "short call at the money", p.CurrentProfitLoss, 200)
}

func TestOptionLeg_Validation(t *testing.T) {
	tests := []OptionLeg{
		{Type: "swap", Action: "buy", Strike: 1, Premium: 1},
		{Type: "call", Action: "hold", Strike: 1, Premium: 1},
		{Type: "call", Action: "buy", Strike: 0, Premium: 1},
		{Type: "put", Action: "sell", Strike: 1, Premium: -1},
	}
	for i, leg := range tests {
		if err := leg.Normalize(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestPriceGrid(t *testing.T) {
	grid := PriceGrid(50, 0.7, 1.3, 50)
	if len(grid) != 50 {
		t.Fatalf("len = %d", len(grid))
	}
	assertClose(t, "start", grid[0], 35)
	assertClose(t, "end", grid[49], 65)
	for i := 1; i < len(grid); i++ {
		if grid[i] <= grid[i-1] {
			t.Fatal("grid not increasing")
		}
	}
	if PriceGrid(10, 1, 2, 0) != nil {
		t.Error("expected nil for n=0")
	}
}

func TestPlanRisk_Defaults(t *testing.T) {
	in := RiskInput{PortfolioValue: 10000}
	if err := in.Normalize(); err != nil {
		t.Fatal(err)
	}
	plan := PlanRisk(in)
	assertClose(t, "risk amount", plan.RiskAmount, 100)
	assertClose(t, "position size", plan.PositionSize, 2000)
	assertClose(t, "max portfolio risk", plan.MaxPortfolioRisk, 500)
	assertClose(t, "portfolio risk pct", plan.PortfolioRiskPct, 5)
	if len(plan.Warnings) != 0 {
		t.Errorf("unexpected warnings %v", plan.Warnings)
	}
}

func TestPlanRisk_EntryPriceAndWarnings(t *testing.T) {
	in := RiskInput{PortfolioValue: 10000, RiskPerTradePct: 5, StopLossPct: 2, MaxPositions: 4, EntryPrice: 50}
	if err := in.Normalize(); err != nil {
		t.Fatal(err)
	}
	plan := PlanRisk(in)
	assertClose(t, "position size", plan.PositionSize, 25000)
	assertClose(t, "shares", plan.Shares, 500)
	assertClose(t, "stop price", plan.StopPrice, 49)
	if len(plan.Warnings) != 3 {
		t.Errorf("expected 3 warnings, got %v", plan.Warnings)
	}
}

func TestRiskInput_Validation(t *testing.T) {
	bad := []RiskInput{
		{PortfolioValue: 0},
		{PortfolioValue: 1000, StopLossPct: 150},
		{PortfolioValue: 1000, EntryPrice: -1},
	}
	for i, in := range bad {
		if err := in.Normalize(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestLoad_BasicsAndPatterns(t *testing.T) {
	lib, _ := Load()
	headings := func(id string) map[string]bool {
		topic, err := lib.Topic(id)
		if err != nil {
			t.Fatal(err)
		}
		out := map[string]bool{}
		for _, sec := range topic.Sections {
			out[sec.Heading] = true
		}
		return out
	}
	basics := headings("basics")
	if !basics["Market types"] || !basics["Order types"] {
		t.Errorf("basics sections: %v", basics)
	}
	if !headings("indicators")["Chart patterns"] {
		t.Error("indicators should cover chart patterns")
	}
	strategies := headings("strategies")
	for _, h := range []string{"Value investing", "Growth investing", "Day trading", "Swing trading"} {
		if !strategies[h] {
			t.Errorf("strategies missing %q", h)
		}
	}
}

func TestQuiz_Bank(t *testing.T) {
	lib, _ := Load()
	quiz := lib.Quiz()
	if len(quiz) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(quiz))
	}
	if quiz[1].Options[quiz[1].Correct] != "Relative Strength Index" {
		t.Errorf("RSI question answer = %q", quiz[1].Options[quiz[1].Correct])
	}
	quiz[0].Question = "changed"
	if lib.Quiz()[0].Question == "changed" {
		t.Error("Quiz should return a copy")
	}
}

func TestGradeQuiz_Tiers(t *testing.T) {
	lib, _ := Load()
	correct := make([]int, len(lib.Quiz()))
	for i, q := range lib.Quiz() {
		correct[i] = q.Correct
	}
	wrong := func(n int) []int {
		answers := append([]int(nil), correct...)
		for i := 0; i < n; i++ {
			answers[i] = (answers[i] + 1) % len(lib.Quiz()[i].Options)
		}
		return answers
	}

	tests := []struct {
		name    string
		answers []int
		score   int
		pct     float64
		grade   string
	}{
		{"all right", correct, 5, 100, "excellent"},
		{"four of five", wrong(1), 4, 80, "excellent"},
		{"three of five", wrong(2), 3, 60, "good"},
		{"two of five", wrong(3), 2, 40, "keep_learning"},
		{"unanswered", nil, 0, 0, "keep_learning"},
		{"partly answered", correct[:2], 2, 40, "keep_learning"},
		{"skipped with -1", []int{-1, correct[1], correct[2], correct[3], correct[4]}, 4, 80, "excellent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := lib.GradeQuiz(tt.answers)
			if err != nil {
				t.Fatal(err)
			}
			if res.Score != tt.score || res.Total != 5 || res.Percentage != tt.pct || res.Grade != tt.grade {
				t.Errorf("got %d/%d %.1f%% %s", res.Score, res.Total, res.Percentage, res.Grade)
			}
			if res.Feedback == "" || len(res.Answers) != 5 {
				t.Errorf("incomplete result %+v", res)
			}
		})
	}
}

func TestGradeQuiz_InvalidAnswers(t *testing.T) {
	lib, _ := Load()
	for _, answers := range [][]int{
		{0, 0, 0, 0, 0, 0},
		{4},
		{-2},
	} {
		if _, err := lib.GradeQuiz(answers); !errors.Is(err, ErrInvalidAnswers) {
			t.Errorf("%v: expected ErrInvalidAnswers, got %v", answers, err)
		}
	}
}

func TestParse_QuizErrors(t *testing.T) {
	bad := []string{
		"quiz:\n  - question: q\n    options: [a]\n    correct: 0\n",
		"quiz:\n  - question: q\n    options: [a, b]\n    correct: 2\n",
		"quiz:\n  - options: [a, b]\n    correct: 0\n",
	}
	for _, doc := range bad {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}
	lib, err := Parse([]byte("topics: []\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lib.GradeQuiz(nil); !errors.Is(err, ErrInvalidAnswers) {
		t.Errorf("empty bank should not grade, got %v", err)
	}
}
