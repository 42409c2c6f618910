package model

import "time"

// Position is one holding in a simulated portfolio.
type Position struct {
	Symbol    string  `json:"symbol"`
	Shares    float64 `json:"shares"`
	AvgPrice  float64 `json:"avg_price"`
	TotalCost float64 `json:"total_cost"`
}

// SessionState is the per-user context: portfolio plus watchlist.
type SessionState struct {
	ID        string               `json:"id"`
	Portfolio map[string]*Position `json:"portfolio"`
	Watchlist []string             `json:"watchlist"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// PositionValue is a position marked to a current price.
type PositionValue struct {
	Position
	CurrentPrice float64 `json:"current_price"`
	CurrentValue float64 `json:"current_value"`
	GainLoss     float64 `json:"gain_loss"`
	GainLossPct  float64 `json:"gain_loss_pct"`
	Priced       bool    `json:"priced"`
}

// PortfolioValuation totals a marked portfolio.
type PortfolioValuation struct {
	Positions    []PositionValue `json:"positions"`
	TotalCost    float64         `json:"total_cost"`
	CurrentValue float64         `json:"current_value"`
	GainLoss     float64         `json:"gain_loss"`
	GainLossPct  float64         `json:"gain_loss_pct"`
}
