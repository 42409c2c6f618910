package api

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"StockLens/internal/calculator"
	"StockLens/internal/collector"
	"StockLens/internal/model"
	"StockLens/internal/profile"
	"StockLens/internal/recorder"
)

type seriesQuery struct {
	Symbol   string `param:"symbol" validate:"required,max=16"`
	Range    string `query:"range" default:"1y" validate:"oneof=1mo 3mo 6mo 1y 2y 5y"`
	Interval string `query:"interval" default:"1d" validate:"oneof=1d 1wk 1mo"`
	Strict   bool   `query:"strict"`
}

type historyQuery struct {
	Symbol string `param:"symbol" validate:"required,max=16"`
	Limit  int    `query:"limit" default:"30" validate:"min=1,max=500"`
}

type profileResponse struct {
	Profile   profile.Profile `json:"profile"`
	Columns   []string        `json:"columns"`
	Available []string        `json:"available"`
}

type indicatorsResponse struct {
	Symbol   string                `json:"symbol"`
	Range    string                `json:"range"`
	Interval string                `json:"interval"`
	Info     model.SymbolInfo      `json:"info"`
	Bars     []model.PriceBar      `json:"bars"`
	Frame    *model.IndicatorFrame `json:"frame"`
}

func (h *Handler) getProfile(c echo.Context) error {
	p := h.Collector.Profile()
	var cols []string
	for _, spec := range p.Indicators.Indicators {
		cols = append(cols, spec.Columns()...)
	}
	return SuccessResponse(c, profileResponse{Profile: p, Columns: cols, Available: profile.Names()})
}

// getIndicators runs the engine over the requested series. strict=true
// turns short-history columns into a 422 instead of NaN columns.
func (h *Handler) getIndicators(c echo.Context) error {
	var q seriesQuery
	if errs := ReadAndValidateRequest(c, &q); errs != nil {
		return BadRequestResponse(c, errs)
	}
	ctx := c.Request().Context()

	series, err := h.Collector.Series(ctx, q.Symbol, collector.Range(q.Range), collector.Interval(q.Interval))
	if err != nil {
		return h.fail(c, err)
	}
	cfg := h.Collector.Profile().Indicators
	cfg.Strict = cfg.Strict || q.Strict
	frame, err := calculator.Compute(series, cfg)
	if err != nil {
		return h.fail(c, err)
	}
	return SuccessResponse(c, indicatorsResponse{
		Symbol:   series.Symbol,
		Range:    q.Range,
		Interval: q.Interval,
		Info:     series.Info,
		Bars:     series.Bars,
		Frame:    frame,
	})
}

func (h *Handler) getAnalysis(c echo.Context) error {
	var q seriesQuery
	if errs := ReadAndValidateRequest(c, &q); errs != nil {
		return BadRequestResponse(c, errs)
	}
	a, err := h.Collector.Analyze(c.Request().Context(), q.Symbol, collector.Range(q.Range), collector.Interval(q.Interval))
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Recorder.RecordAnalysis(a); err != nil {
		log.Error().Err(err).Str("symbol", a.Symbol).Msg("record analysis")
	}
	return SuccessResponse(c, a)
}

func (h *Handler) getHistory(c echo.Context) error {
	var q historyQuery
	if errs := ReadAndValidateRequest(c, &q); errs != nil {
		return BadRequestResponse(c, errs)
	}
	recs, err := h.Recorder.History(q.Symbol, q.Limit)
	if err != nil {
		return h.fail(c, err)
	}
	if recs == nil {
		recs = []recorder.AnalysisRecord{}
	}
	return SuccessResponse(c, recs)
}
