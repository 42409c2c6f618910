package recorder

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"StockLens/internal/model"
)

// factorColumns fixes the column order for per-factor weighted scores.
var factorColumns = []string{"RSI", "Trend", "MACD", "Bollinger", "Stochastic", "Volume"}

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the service writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			profile       TEXT,
			price         REAL,
			change_pct    REAL,
			high_52w      REAL,
			low_52w       REAL,
			position_52w  REAL,
			rsi_score     REAL,
			trend_score   REAL,
			macd_score    REAL,
			bb_score      REAL,
			stoch_score   REAL,
			volume_score  REAL,
			total_score   REAL,
			outlook       TEXT,
			issues        INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol_ts ON analyses(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS portfolio_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			session_id  TEXT NOT NULL,
			event_type  TEXT,
			symbol      TEXT,
			shares      REAL,
			price       REAL,
			note        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_portfolio_session ON portfolio_events(session_id, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", strings.TrimSpace(s)[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAnalysis(a *model.Analysis) error {
	if a == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	factors := make([]any, len(factorColumns))
	total, outlook := any(nil), ""
	if a.Assessment != nil {
		byName := make(map[string]model.FactorScore, len(a.Assessment.Factors))
		for _, f := range a.Assessment.Factors {
			byName[f.Name] = f
		}
		for i, name := range factorColumns {
			if f, ok := byName[name]; ok && f.Available {
				factors[i] = f.Weighted
			}
		}
		total, outlook = a.Assessment.TotalScore, a.Assessment.Outlook.Label
	}
	issues := 0
	if a.Frame != nil {
		issues = len(a.Frame.Issues)
	}

	s := a.Summary
	_, err := r.db.Exec(`INSERT INTO analyses
		(timestamp, symbol, profile, price, change_pct, high_52w, low_52w, position_52w,
		 rsi_score, trend_score, macd_score, bb_score, stoch_score, volume_score,
		 total_score, outlook, issues)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.now().Unix(), a.Symbol, a.Profile,
		nullable(s.Current), nullable(s.ChangePct), nullable(s.High52w), nullable(s.Low52w), nullable(s.Position52w),
		factors[0], factors[1], factors[2], factors[3], factors[4], factors[5],
		total, outlook, issues,
	)
	return err
}

func (r *SQLiteRecorder) RecordPortfolioEvent(evt *PortfolioEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO portfolio_events
		(timestamp, session_id, event_type, symbol, shares, price, note)
		VALUES (?,?,?,?,?,?,?)`,
		r.now().Unix(), evt.SessionID, evt.EventType, evt.Symbol,
		evt.Shares, evt.Price, evt.Note,
	)
	return err
}

// History returns the latest analyses for symbol, newest first.
func (r *SQLiteRecorder) History(symbol string, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.Query(`SELECT timestamp, symbol, profile, price, change_pct, position_52w,
			total_score, outlook, issues
		FROM analyses WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		strings.ToUpper(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		var ts int64
		var price, change, pos52, total sql.NullFloat64
		var profile, outlook sql.NullString
		if err := rows.Scan(&ts, &rec.Symbol, &profile, &price, &change, &pos52, &total, &outlook, &rec.Issues); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec.Timestamp = time.Unix(ts, 0).UTC()
		rec.Profile = profile.String
		rec.Price = price.Float64
		rec.ChangePct = change.Float64
		rec.Position52w = pos52.Float64
		rec.TotalScore = total.Float64
		rec.Outlook = outlook.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

// nullable stores NaN as NULL.
func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
