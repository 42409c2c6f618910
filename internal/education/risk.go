package education

import "github.com/creasty/defaults"

// RiskInput configures the position sizing calculator. Percentages are
// whole numbers, so 1 means 1%.
type RiskInput struct {
	PortfolioValue  float64 `json:"portfolio_value" validate:"gt=0"`
	RiskPerTradePct float64 `json:"risk_per_trade_pct" default:"1" validate:"gt=0,lte=100"`
	StopLossPct     float64 `json:"stop_loss_pct" default:"5" validate:"gt=0,lte=100"`
	MaxPositions    int     `json:"max_positions" default:"5" validate:"min=1"`
	// EntryPrice is optional; when set, share count and stop price are reported.
	EntryPrice float64 `json:"entry_price,omitempty" validate:"gte=0"`
}

// RiskPlan is the result of the sizing calculation.
type RiskPlan struct {
	Input            RiskInput `json:"input"`
	RiskAmount       float64   `json:"risk_amount"`
	PositionSize     float64   `json:"position_size"`
	MaxPortfolioRisk float64   `json:"max_portfolio_risk"`
	PortfolioRiskPct float64   `json:"portfolio_risk_pct"`
	Shares           float64   `json:"shares,omitempty"`
	StopPrice        float64   `json:"stop_price,omitempty"`
	Warnings         []string  `json:"warnings,omitempty"`
}

// Normalize fills defaults and validates the input.
func (in *RiskInput) Normalize() error {
	if err := defaults.Set(in); err != nil {
		return err
	}
	return validate.Struct(in)
}

// PlanRisk sizes a position so a stop-out loses RiskPerTradePct of the
// portfolio. The input must be normalized.
func PlanRisk(in RiskInput) RiskPlan {
	plan := RiskPlan{Input: in}
	plan.RiskAmount = in.PortfolioValue * in.RiskPerTradePct / 100
	plan.PositionSize = plan.RiskAmount / (in.StopLossPct / 100)
	plan.MaxPortfolioRisk = plan.RiskAmount * float64(in.MaxPositions)
	plan.PortfolioRiskPct = plan.MaxPortfolioRisk / in.PortfolioValue * 100

	if in.EntryPrice > 0 {
		plan.Shares = plan.PositionSize / in.EntryPrice
		plan.StopPrice = in.EntryPrice * (1 - in.StopLossPct/100)
	}

	if in.RiskPerTradePct > 2 {
		plan.Warnings = append(plan.Warnings, "risk per trade above 2% of the portfolio")
	}
	if plan.PositionSize > in.PortfolioValue {
		plan.Warnings = append(plan.Warnings, "position larger than the portfolio; the stop is too tight for this risk")
	}
	if plan.PortfolioRiskPct > 10 {
		plan.Warnings = append(plan.Warnings, "combined open risk above 10% of the portfolio")
	}
	return plan
}
