package recorder

import (
	"time"

	"StockLens/internal/model"
)

// PortfolioEvent records a change to a session's portfolio or watchlist.
type PortfolioEvent struct {
	SessionID string
	EventType string // "OPEN", "CLOSE", "BUY", "REMOVE", "WATCH", "UNWATCH"
	Symbol    string
	Shares    float64
	Price     float64
	Note      string
}

// AnalysisRecord is one stored analysis row.
type AnalysisRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Symbol      string    `json:"symbol"`
	Profile     string    `json:"profile"`
	Price       float64   `json:"price"`
	ChangePct   float64   `json:"change_pct"`
	Position52w float64   `json:"position_52w"`
	TotalScore  float64   `json:"total_score"`
	Outlook     string    `json:"outlook"`
	Issues      int       `json:"issues"`
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordAnalysis(a *model.Analysis) error
	RecordPortfolioEvent(evt *PortfolioEvent) error
	History(symbol string, limit int) ([]AnalysisRecord, error)
	Close() error
}
