package api

import (
	"github.com/labstack/echo/v4"

	"StockLens/internal/education"
)

type optionsRequest struct {
	education.OptionLeg
	// CurrentPrice centres the price grid; the strike is used when zero.
	CurrentPrice float64 `json:"current_price" validate:"gte=0"`
	Low          float64 `json:"low" default:"0.7" validate:"gt=0"`
	High         float64 `json:"high" default:"1.3" validate:"gtfield=Low"`
	Points       int     `json:"points" default:"61" validate:"min=2,max=1000"`
}

func (h *Handler) optionPayoff(c echo.Context) error {
	var req optionsRequest
	if errs := ReadAndValidateRequest(c, &req); errs != nil {
		return BadRequestResponse(c, errs)
	}
	center := req.CurrentPrice
	if center == 0 {
		center = req.Strike
	}
	grid := education.PriceGrid(center, req.Low, req.High, req.Points)
	return SuccessResponse(c, education.OptionPayoff(req.OptionLeg, center, grid))
}

func (h *Handler) riskPlan(c echo.Context) error {
	var in education.RiskInput
	if errs := ReadAndValidateRequest(c, &in); errs != nil {
		return BadRequestResponse(c, errs)
	}
	return SuccessResponse(c, education.PlanRisk(in))
}

type quizRequest struct {
	// Answers holds one option index per question; -1 skips a question.
	Answers []int `json:"answers" validate:"max=100,dive,min=-1"`
}

func (h *Handler) listQuiz(c echo.Context) error {
	return SuccessResponse(c, h.Library.Quiz())
}

func (h *Handler) gradeQuiz(c echo.Context) error {
	var req quizRequest
	if errs := ReadAndValidateRequest(c, &req); errs != nil {
		return BadRequestResponse(c, errs)
	}
	res, err := h.Library.GradeQuiz(req.Answers)
	if err != nil {
		return h.fail(c, err)
	}
	return SuccessResponse(c, res)
}
