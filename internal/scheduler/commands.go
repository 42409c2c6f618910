package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"StockLens/internal/calculator"
	"StockLens/internal/collector"
	"StockLens/internal/education"
	"StockLens/internal/notifier"
)

const helpText = `Available commands:
• /analyze SYMBOL [range] [interval]: indicators and outlook
• /watchlist: scan the watchlist now
• /learn [topic]: learning material
• /risk VALUE [RISK%] [STOP%] [ENTRY]: position sizing
• /quiz [ANSWERS...]: knowledge quiz, answer with letters
• /help: this message`

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	name := strings.ToLower(fields[0])
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	args := fields[1:]

	switch name {
	case "/analyze":
		return s.analyzeCommand(ctx, args)
	case "/watchlist":
		if len(s.Watchlist) == 0 {
			return "Watchlist is empty."
		}
		return s.scan(ctx)
	case "/learn":
		return s.learnCommand(args)
	case "/risk":
		return riskCommand(args)
	case "/quiz":
		return s.quizCommand(args)
	default:
		return helpText
	}
}

func (s *Scheduler) analyzeCommand(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /analyze SYMBOL [range] [interval]"
	}
	var rngArg, ivArg string
	if len(args) > 1 {
		rngArg = args[1]
	}
	if len(args) > 2 {
		ivArg = args[2]
	}
	rng, err := collector.ParseRange(rngArg)
	if err != nil {
		return "❌ " + err.Error()
	}
	iv, err := collector.ParseInterval(ivArg)
	if err != nil {
		return "❌ " + err.Error()
	}

	a, err := s.Collector.Analyze(ctx, args[0], rng, iv)
	if err != nil {
		var malformed *calculator.MalformedSeriesError
		var short *calculator.InsufficientDataError
		switch {
		case errors.As(err, &malformed):
			return fmt.Sprintf("❌ Bad data from provider for %s: %v", strings.ToUpper(args[0]), malformed)
		case errors.As(err, &short):
			return fmt.Sprintf("❌ Not enough history for %s, try a longer range", strings.ToUpper(args[0]))
		}
		return fmt.Sprintf("❌ Analysis failed: %v", err)
	}
	if err := s.Recorder.RecordAnalysis(a); err != nil {
		return notifier.FormatAnalysis(a) + "\n(not recorded: " + err.Error() + ")"
	}
	return notifier.FormatAnalysis(a)
}

func (s *Scheduler) learnCommand(args []string) string {
	sections := s.Collector.Profile().Sections
	if len(args) == 0 {
		return notifier.FormatTopicList(s.Library.Topics(sections...))
	}
	id := strings.ToLower(args[0])
	if !s.Collector.Profile().HasSection(id) {
		return fmt.Sprintf("Unknown topic %q. Send /learn for the list.", id)
	}
	topic, err := s.Library.Topic(id)
	if err != nil {
		return fmt.Sprintf("Unknown topic %q. Send /learn for the list.", id)
	}
	return notifier.FormatTopic(topic)
}

func riskCommand(args []string) string {
	if len(args) == 0 {
		return "Usage: /risk VALUE [RISK%] [STOP%] [ENTRY]"
	}
	vals := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(strings.TrimSuffix(a, "%"), 64)
		if err != nil {
			return fmt.Sprintf("❌ %q is not a number", a)
		}
		vals[i] = v
	}

	in := education.RiskInput{PortfolioValue: vals[0]}
	if len(vals) > 1 {
		in.RiskPerTradePct = vals[1]
	}
	if len(vals) > 2 {
		in.StopLossPct = vals[2]
	}
	if len(vals) > 3 {
		in.EntryPrice = vals[3]
	}
	if err := in.Normalize(); err != nil {
		return "❌ Invalid input: " + err.Error()
	}
	return notifier.FormatRiskPlan(education.PlanRisk(in))
}

// quizCommand lists the questions, or grades answers given as letters
// (a, b, ...) or 1-based option numbers.
func (s *Scheduler) quizCommand(args []string) string {
	if len(args) == 0 {
		return notifier.FormatQuiz(s.Library.Quiz())
	}
	answers := make([]int, len(args))
	for i, a := range args {
		a = strings.ToLower(strings.TrimSuffix(a, ","))
		switch {
		case len(a) == 1 && a[0] >= 'a' && a[0] <= 'z':
			answers[i] = int(a[0] - 'a')
		default:
			n, err := strconv.Atoi(a)
			if err != nil || n < 1 {
				return fmt.Sprintf("❌ %q is not an answer. Use letters, e.g. /quiz b a b b b", args[i])
			}
			answers[i] = n - 1
		}
	}
	res, err := s.Library.GradeQuiz(answers)
	if err != nil {
		return "❌ " + err.Error()
	}
	return notifier.FormatQuizResult(res)
}
