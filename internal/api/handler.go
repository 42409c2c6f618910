package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"StockLens/internal/calculator"
	"StockLens/internal/collector"
	"StockLens/internal/education"
	"StockLens/internal/portfolio"
	"StockLens/internal/recorder"
)

// Handler holds the services behind the routes.
type Handler struct {
	Collector *collector.Collector
	Sessions  *portfolio.Store
	Library   *education.Library
	Recorder  recorder.Recorder
}

func NewHandler(col *collector.Collector, sessions *portfolio.Store, lib *education.Library, rec recorder.Recorder) *Handler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Handler{Collector: col, Sessions: sessions, Library: lib, Recorder: rec}
}

// RegisterRoutes mounts every route on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.health)

	g := e.Group("/api")
	g.GET("/profile", h.getProfile)

	stocks := g.Group("/stocks/:symbol")
	stocks.GET("/indicators", h.getIndicators)
	stocks.GET("/analysis", h.getAnalysis)
	stocks.GET("/history", h.getHistory)

	g.GET("/learn", h.listTopics)
	g.GET("/learn/:topic", h.getTopic)

	g.POST("/tools/options", h.optionPayoff)
	g.POST("/tools/risk", h.riskPlan)
	g.GET("/tools/quiz", h.listQuiz)
	g.POST("/tools/quiz", h.gradeQuiz)

	g.POST("/sessions", h.openSession)
	s := g.Group("/sessions/:id")
	s.GET("", h.getSession)
	s.DELETE("", h.closeSession)
	s.POST("/positions", h.addPosition)
	s.DELETE("/positions/:symbol", h.removePosition)
	s.GET("/portfolio", h.getPortfolio)
	s.GET("/watchlist", h.scanWatchlist)
	s.POST("/watchlist", h.addToWatchlist)
	s.DELETE("/watchlist/:symbol", h.removeFromWatchlist)
}

func (h *Handler) health(c echo.Context) error {
	return SuccessResponse(c, map[string]string{"status": "ok"})
}

// fail maps service errors onto HTTP statuses.
func (h *Handler) fail(c echo.Context, err error) error {
	var malformed *calculator.MalformedSeriesError
	var short *calculator.InsufficientDataError
	switch {
	case errors.As(err, &malformed):
		return AppErrorResponse(c, NewAppError("ERR_MALFORMED_SERIES", malformed.Field, malformed.Error(), http.StatusUnprocessableEntity).
			WithParam("index", malformed.Index))
	case errors.As(err, &short):
		return AppErrorResponse(c, NewAppError("ERR_INSUFFICIENT_DATA", "", err.Error(), http.StatusUnprocessableEntity).
			WithParam("indicator", short.Indicator).
			WithParam("need", short.Need).
			WithParam("have", short.Have))
	case errors.Is(err, portfolio.ErrSessionNotFound),
		errors.Is(err, portfolio.ErrPositionNotFound),
		errors.Is(err, education.ErrTopicNotFound):
		return AppErrorResponse(c, NotFoundError(err.Error()))
	case errors.Is(err, portfolio.ErrInvalidPosition),
		errors.Is(err, education.ErrInvalidAnswers):
		return AppErrorResponse(c, BadRequestError(err.Error()))
	case errors.Is(err, collector.ErrFetch):
		log.Warn().Err(err).Str("path", c.Path()).Msg("upstream fetch failed")
		return AppErrorResponse(c, NewAppError("ERR_UPSTREAM", "", err.Error(), http.StatusBadGateway))
	case errors.Is(err, context.DeadlineExceeded):
		return AppErrorResponse(c, NewAppError("ERR_TIMEOUT", "", err.Error(), http.StatusGatewayTimeout))
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return InternalServerErrorResponse(c)
}
