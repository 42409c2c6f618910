package notifier

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"
	"time"

	"StockLens/internal/education"
	"StockLens/internal/model"
)

// FormatAnalysis formats a single symbol analysis into a Telegram message.
func FormatAnalysis(a *model.Analysis) string {
	var b strings.Builder
	s := a.Summary

	fmt.Fprintf(&b, "📊 <b>%s</b> | %s\n\n", html.EscapeString(a.Symbol), html.EscapeString(a.Profile))
	fmt.Fprintf(&b, "Price: %s (%+.2f, %+.2f%%)\n", num(s.Current), s.Change, s.ChangePct)
	fmt.Fprintf(&b, "52w range: %s - %s (position %.0f%%)\n", num(s.Low52w), num(s.High52w), s.Position52w*100)
	fmt.Fprintf(&b, "30d range: %s - %s\n", num(s.Low30d), num(s.High30d))

	if a.Assessment == nil {
		return b.String()
	}
	as := a.Assessment

	b.WriteString("\n📈 <b>Factors:</b>\n")
	for _, f := range as.Factors {
		if !f.Available {
			fmt.Fprintf(&b, "  %s: n/a\n", f.Name)
			continue
		}
		fmt.Fprintf(&b, "  %s(%s): %+.1f (×%.2f) = %+.3f\n",
			f.Name, html.EscapeString(f.Commentary), f.RawScore, f.Weight, f.Weighted)
	}
	b.WriteString("  ─────────────────\n")
	fmt.Fprintf(&b, "  Total: %+.3f → <b>%s</b>\n", as.TotalScore, as.Outlook.Label)

	if len(as.Signals) > 0 {
		b.WriteString("\n🔎 <b>Signals:</b>\n")
		for _, sig := range as.Signals {
			fmt.Fprintf(&b, "• %s\n", html.EscapeString(sig))
		}
	}
	if as.WarningMsg != "" {
		fmt.Fprintf(&b, "\n⚠️ %s\n", html.EscapeString(as.WarningMsg))
	}
	if a.Frame != nil && len(a.Frame.Issues) > 0 {
		names := make([]string, len(a.Frame.Issues))
		for i, is := range a.Frame.Issues {
			names[i] = is.Indicator
		}
		fmt.Fprintf(&b, "\n<i>Not enough history for: %s</i>\n", html.EscapeString(strings.Join(names, ", ")))
	}
	return b.String()
}

// FormatDigest summarises a watchlist scan, one line per symbol.
func FormatDigest(analyses []*model.Analysis, failures map[string]error, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🗞 <b>StockLens digest</b> | %s\n\n", at.Format("2006-01-02 15:04"))

	if len(analyses) == 0 && len(failures) == 0 {
		b.WriteString("Watchlist is empty.\n")
		return b.String()
	}

	for _, a := range analyses {
		label, score := "n/a", 0.0
		if a.Assessment != nil {
			label, score = a.Assessment.Outlook.Label, a.Assessment.TotalScore
		}
		fmt.Fprintf(&b, "%s <b>%s</b> %s (%+.2f%%) score %+.2f %s\n",
			biasIcon(a.Assessment), html.EscapeString(a.Symbol), num(a.Summary.Current),
			a.Summary.ChangePct, score, label)
	}

	if len(failures) > 0 {
		syms := make([]string, 0, len(failures))
		for sym := range failures {
			syms = append(syms, sym)
		}
		sort.Strings(syms)
		b.WriteString("\n❌ <b>Failed:</b>\n")
		for _, sym := range syms {
			fmt.Fprintf(&b, "  %s: %s\n", html.EscapeString(sym), html.EscapeString(failures[sym].Error()))
		}
	}
	return b.String()
}

// FormatTopic renders a learning topic.
func FormatTopic(t education.Topic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📚 <b>%s</b>\n", html.EscapeString(t.Title))
	if t.Summary != "" {
		fmt.Fprintf(&b, "<i>%s</i>\n", html.EscapeString(t.Summary))
	}
	for _, sec := range t.Sections {
		fmt.Fprintf(&b, "\n<b>%s</b>\n", html.EscapeString(sec.Heading))
		if sec.Body != "" {
			b.WriteString(html.EscapeString(strings.TrimSpace(sec.Body)))
			b.WriteString("\n")
		}
		for _, p := range sec.Points {
			fmt.Fprintf(&b, "• <b>%s</b>: %s\n", html.EscapeString(p.Term), html.EscapeString(p.Text))
		}
	}
	return b.String()
}

// FormatTopicList lists topic ids for the /learn command.
func FormatTopicList(topics []education.Topic) string {
	var b strings.Builder
	b.WriteString("📚 <b>Topics</b>\n")
	for _, t := range topics {
		fmt.Fprintf(&b, "• <code>%s</code> %s\n", html.EscapeString(t.ID), html.EscapeString(t.Title))
	}
	return b.String()
}

// FormatRiskPlan renders the position sizing result.
func FormatRiskPlan(p education.RiskPlan) string {
	var b strings.Builder
	in := p.Input
	b.WriteString("🛡 <b>Risk plan</b>\n\n")
	fmt.Fprintf(&b, "Portfolio: $%.2f\n", in.PortfolioValue)
	fmt.Fprintf(&b, "Risk per trade: %.2f%% → $%.2f\n", in.RiskPerTradePct, p.RiskAmount)
	fmt.Fprintf(&b, "Stop loss: %.2f%%\n", in.StopLossPct)
	fmt.Fprintf(&b, "Position size: $%.2f\n", p.PositionSize)
	if p.Shares > 0 {
		fmt.Fprintf(&b, "Shares: %.2f @ $%.2f, stop at $%.2f\n", p.Shares, in.EntryPrice, p.StopPrice)
	}
	fmt.Fprintf(&b, "Max risk over %d positions: $%.2f (%.1f%%)\n", in.MaxPositions, p.MaxPortfolioRisk, p.PortfolioRiskPct)
	for _, w := range p.Warnings {
		fmt.Fprintf(&b, "⚠️ %s\n", html.EscapeString(w))
	}
	return b.String()
}

// FormatQuiz lists the quiz questions with lettered options.
func FormatQuiz(questions []education.Question) string {
	if len(questions) == 0 {
		return "Quiz is not available."
	}
	var b strings.Builder
	b.WriteString("🎯 <b>Trading Knowledge Quiz</b>\n")
	for i, q := range questions {
		fmt.Fprintf(&b, "\n<b>%d.</b> %s\n", i+1, html.EscapeString(q.Question))
		for j, opt := range q.Options {
			fmt.Fprintf(&b, "   %c) %s\n", 'a'+rune(j), html.EscapeString(opt))
		}
	}
	fmt.Fprintf(&b, "\nReply with one letter per question, e.g. <code>/quiz %s</code>\n",
		strings.Repeat("a ", len(questions)-1)+"a")
	return b.String()
}

// FormatQuizResult renders a graded quiz.
func FormatQuizResult(r education.QuizResult) string {
	var b strings.Builder
	icon := map[string]string{"excellent": "🎉", "good": "📚"}[r.Grade]
	if icon == "" {
		icon = "📖"
	}
	b.WriteString("📊 <b>Quiz Results</b>\n\n")
	for i, a := range r.Answers {
		mark := "❌"
		if a.Right {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s %d. %s\n", mark, i+1, html.EscapeString(a.Question))
	}
	fmt.Fprintf(&b, "\nScore: <b>%d/%d</b> (%.1f%%)\n", r.Score, r.Total, r.Percentage)
	fmt.Fprintf(&b, "%s %s\n", icon, html.EscapeString(r.Feedback))
	return b.String()
}

func biasIcon(as *model.Assessment) string {
	if as == nil {
		return "⚪"
	}
	switch as.Outlook.Bias {
	case model.BiasBullish:
		return "🟢"
	case model.BiasBearish:
		return "🔴"
	default:
		return "🟡"
	}
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
