package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"StockLens/internal/collector"
	"StockLens/internal/model"
	"StockLens/internal/recorder"
)

type positionRequest struct {
	Symbol string  `json:"symbol" validate:"required,max=16"`
	Shares float64 `json:"shares" validate:"gt=0"`
	// Price defaults to the latest close when zero.
	Price float64 `json:"price" validate:"gte=0"`
}

type watchlistRequest struct {
	Symbols []string `json:"symbols" validate:"min=1,dive,required,max=16"`
}

type watchlistResponse struct {
	Watchlist []string `json:"watchlist"`
}

// watchlistEntry is one row of a watchlist scan.
type watchlistEntry struct {
	Symbol     string             `json:"symbol"`
	Summary    model.PriceSummary `json:"summary"`
	TotalScore float64            `json:"total_score"`
	Outlook    model.Outlook      `json:"outlook"`
	Warning    string             `json:"warning,omitempty"`
}

type watchlistScan struct {
	ScannedAt time.Time         `json:"scanned_at"`
	Entries   []watchlistEntry  `json:"entries"`
	Failures  map[string]string `json:"failures,omitempty"`
}

func (h *Handler) openSession(c echo.Context) error {
	state := h.Sessions.Open()
	h.record(&recorder.PortfolioEvent{SessionID: state.ID, EventType: "OPEN"})
	return CreatedResponse(c, state)
}

func (h *Handler) getSession(c echo.Context) error {
	state, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return SuccessResponse(c, state)
}

func (h *Handler) closeSession(c echo.Context) error {
	id := c.Param("id")
	if err := h.Sessions.Close(id); err != nil {
		return h.fail(c, err)
	}
	h.record(&recorder.PortfolioEvent{SessionID: id, EventType: "CLOSE"})
	return NoContentResponse(c)
}

func (h *Handler) addPosition(c echo.Context) error {
	id := c.Param("id")
	var req positionRequest
	if errs := ReadAndValidateRequest(c, &req); errs != nil {
		return BadRequestResponse(c, errs)
	}
	if _, err := h.Sessions.Get(id); err != nil {
		return h.fail(c, err)
	}

	sym := strings.ToUpper(strings.TrimSpace(req.Symbol))
	price := req.Price
	if price == 0 {
		p, ok := h.Collector.LatestPrices(c.Request().Context(), []string{sym})[sym]
		if !ok {
			return h.fail(c, fmt.Errorf("%w %s: no current price", collector.ErrFetch, sym))
		}
		price = p
	}

	pos, err := h.Sessions.AddPosition(id, sym, req.Shares, price)
	if err != nil {
		return h.fail(c, err)
	}
	h.record(&recorder.PortfolioEvent{SessionID: id, EventType: "BUY", Symbol: sym, Shares: req.Shares, Price: price})
	return CreatedResponse(c, pos)
}

func (h *Handler) removePosition(c echo.Context) error {
	id, sym := c.Param("id"), strings.ToUpper(c.Param("symbol"))
	if err := h.Sessions.RemovePosition(id, sym); err != nil {
		return h.fail(c, err)
	}
	h.record(&recorder.PortfolioEvent{SessionID: id, EventType: "REMOVE", Symbol: sym})
	return NoContentResponse(c)
}

// getPortfolio marks the session's positions to the latest closes.
func (h *Handler) getPortfolio(c echo.Context) error {
	id := c.Param("id")
	state, err := h.Sessions.Get(id)
	if err != nil {
		return h.fail(c, err)
	}
	symbols := make([]string, 0, len(state.Portfolio))
	for sym := range state.Portfolio {
		symbols = append(symbols, sym)
	}
	prices := h.Collector.LatestPrices(c.Request().Context(), symbols)
	v, err := h.Sessions.Valuate(id, prices)
	if err != nil {
		return h.fail(c, err)
	}
	return SuccessResponse(c, v)
}

// scanWatchlist analyzes every symbol on the session's watchlist.
func (h *Handler) scanWatchlist(c echo.Context) error {
	state, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	analyses, failures := h.Collector.CollectMany(c.Request().Context(), state.Watchlist)
	return SuccessResponse(c, scanResult(analyses, failures))
}

func (h *Handler) addToWatchlist(c echo.Context) error {
	id := c.Param("id")
	var req watchlistRequest
	if errs := ReadAndValidateRequest(c, &req); errs != nil {
		return BadRequestResponse(c, errs)
	}
	list, err := h.Sessions.AddToWatchlist(id, req.Symbols...)
	if err != nil {
		return h.fail(c, err)
	}
	h.record(&recorder.PortfolioEvent{SessionID: id, EventType: "WATCH", Symbol: strings.ToUpper(strings.Join(req.Symbols, ","))})
	return SuccessResponse(c, watchlistResponse{Watchlist: list})
}

func (h *Handler) removeFromWatchlist(c echo.Context) error {
	id, sym := c.Param("id"), strings.ToUpper(c.Param("symbol"))
	list, err := h.Sessions.RemoveFromWatchlist(id, sym)
	if err != nil {
		return h.fail(c, err)
	}
	h.record(&recorder.PortfolioEvent{SessionID: id, EventType: "UNWATCH", Symbol: sym})
	return SuccessResponse(c, watchlistResponse{Watchlist: list})
}

func (h *Handler) record(evt *recorder.PortfolioEvent) {
	if err := h.Recorder.RecordPortfolioEvent(evt); err != nil {
		log.Error().Err(err).Str("session", evt.SessionID).Str("event", evt.EventType).Msg("record portfolio event")
	}
}

func scanResult(analyses []*model.Analysis, failures map[string]error) watchlistScan {
	out := watchlistScan{ScannedAt: time.Now().UTC(), Entries: make([]watchlistEntry, 0, len(analyses))}
	for _, a := range analyses {
		e := watchlistEntry{Symbol: a.Symbol, Summary: a.Summary}
		if a.Assessment != nil {
			e.TotalScore = a.Assessment.TotalScore
			e.Outlook = a.Assessment.Outlook
			e.Warning = a.Assessment.WarningMsg
		}
		out.Entries = append(out.Entries, e)
	}
	if len(failures) > 0 {
		out.Failures = make(map[string]string, len(failures))
		for sym, err := range failures {
			out.Failures[sym] = err.Error()
		}
	}
	return out
}
