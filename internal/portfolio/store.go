// Package portfolio keeps per-user sessions holding a simulated portfolio
// and a watchlist. Sessions are opened and closed explicitly.
package portfolio

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"StockLens/internal/model"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrPositionNotFound = errors.New("position not found")
	ErrInvalidPosition  = errors.New("invalid position")
)

// Store owns every open session and persists them after each change.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*model.SessionState
	filePath string
	now      func() time.Time
}

// NewStore loads sessions from filePath. An empty path keeps them in memory only.
func NewStore(filePath string) (*Store, error) {
	sessions, err := LoadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	return &Store{sessions: sessions, filePath: filePath, now: time.Now}, nil
}

// Open creates a new empty session.
func (s *Store) Open() model.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	state := &model.SessionState{
		ID:        uuid.NewString(),
		Portfolio: make(map[string]*model.Position),
		Watchlist: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[state.ID] = state
	s.save()
	return clone(state)
}

// Get returns a copy of a session.
func (s *Store) Get(id string) (model.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return model.SessionState{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return clone(state), nil
}

// Close removes a session and its data.
func (s *Store) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	s.save()
	return nil
}

// Prune closes sessions idle for longer than maxIdle and returns how many.
func (s *Store) Prune(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	n := 0
	for id, state := range s.sessions {
		if state.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.save()
	}
	return n
}

// Len returns the number of open sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// AddPosition buys shares at price, merging into any existing position
// at the weighted average price.
func (s *Store) AddPosition(id, symbol string, shares, price float64) (model.Position, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" || shares <= 0 || price <= 0 {
		return model.Position{}, fmt.Errorf("%w: symbol %q, %v shares at %v", ErrInvalidPosition, symbol, shares, price)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return model.Position{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	addShares := decimal.NewFromFloat(shares)
	addCost := addShares.Mul(decimal.NewFromFloat(price))
	totalShares, totalCost := addShares, addCost
	if cur, exists := state.Portfolio[symbol]; exists {
		totalShares = totalShares.Add(decimal.NewFromFloat(cur.Shares))
		totalCost = totalCost.Add(decimal.NewFromFloat(cur.TotalCost))
	}

	pos := &model.Position{
		Symbol:    symbol,
		Shares:    totalShares.InexactFloat64(),
		AvgPrice:  totalCost.DivRound(totalShares, 6).InexactFloat64(),
		TotalCost: totalCost.Round(6).InexactFloat64(),
	}
	state.Portfolio[symbol] = pos
	s.touch(state)
	return *pos, nil
}

// RemovePosition drops a holding entirely.
func (s *Store) RemovePosition(id, symbol string) error {
	symbol = normalizeSymbol(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if _, exists := state.Portfolio[symbol]; !exists {
		return fmt.Errorf("%w: %s", ErrPositionNotFound, symbol)
	}
	delete(state.Portfolio, symbol)
	s.touch(state)
	return nil
}

// AddToWatchlist appends symbols not already present and returns the list.
func (s *Store) AddToWatchlist(id string, symbols ...string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	for _, sym := range symbols {
		sym = normalizeSymbol(sym)
		if sym != "" && !slices.Contains(state.Watchlist, sym) {
			state.Watchlist = append(state.Watchlist, sym)
		}
	}
	s.touch(state)
	return slices.Clone(state.Watchlist), nil
}

// RemoveFromWatchlist deletes a symbol and returns the remaining list.
func (s *Store) RemoveFromWatchlist(id, symbol string) ([]string, error) {
	symbol = normalizeSymbol(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	state.Watchlist = slices.DeleteFunc(state.Watchlist, func(w string) bool { return w == symbol })
	s.touch(state)
	return slices.Clone(state.Watchlist), nil
}

// Valuate marks a session's portfolio to prices.
func (s *Store) Valuate(id string, prices map[string]float64) (model.PortfolioValuation, error) {
	state, err := s.Get(id)
	if err != nil {
		return model.PortfolioValuation{}, err
	}
	return Valuate(state.Portfolio, prices), nil
}

// Valuate marks positions to prices. Positions without a price are listed
// unpriced and left out of the totals.
func Valuate(positions map[string]*model.Position, prices map[string]float64) model.PortfolioValuation {
	symbols := make([]string, 0, len(positions))
	for sym := range positions {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	v := model.PortfolioValuation{Positions: make([]model.PositionValue, 0, len(symbols))}
	totalCost, totalValue := decimal.Zero, decimal.Zero
	for _, sym := range symbols {
		pos := positions[sym]
		pv := model.PositionValue{Position: *pos}
		price, ok := prices[sym]
		if ok && price > 0 {
			cost := decimal.NewFromFloat(pos.TotalCost)
			value := decimal.NewFromFloat(pos.Shares).Mul(decimal.NewFromFloat(price))
			gain := value.Sub(cost)

			pv.Priced = true
			pv.CurrentPrice = price
			pv.CurrentValue = value.Round(2).InexactFloat64()
			pv.GainLoss = gain.Round(2).InexactFloat64()
			if !cost.IsZero() {
				pv.GainLossPct = gain.Div(cost).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
			}
			totalCost = totalCost.Add(cost)
			totalValue = totalValue.Add(value)
		}
		v.Positions = append(v.Positions, pv)
	}

	gain := totalValue.Sub(totalCost)
	v.TotalCost = totalCost.Round(2).InexactFloat64()
	v.CurrentValue = totalValue.Round(2).InexactFloat64()
	v.GainLoss = gain.Round(2).InexactFloat64()
	if !totalCost.IsZero() {
		v.GainLossPct = gain.Div(totalCost).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}
	return v
}

func (s *Store) touch(state *model.SessionState) {
	state.UpdatedAt = s.now().UTC()
	s.save()
}

// save must be called with mu held.
func (s *Store) save() {
	if err := SaveState(s.filePath, s.sessions); err != nil {
		log.Error().Err(err).Str("path", s.filePath).Msg("failed to save sessions")
	}
}

func normalizeSymbol(sym string) string {
	return strings.ToUpper(strings.TrimSpace(sym))
}

func clone(state *model.SessionState) model.SessionState {
	out := *state
	out.Portfolio = make(map[string]*model.Position, len(state.Portfolio))
	for k, p := range state.Portfolio {
		cp := *p
		out.Portfolio[k] = &cp
	}
	out.Watchlist = slices.Clone(state.Watchlist)
	return out
}
