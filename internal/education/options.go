package education

import (
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// OptionLeg describes a single option position.
type OptionLeg struct {
	Type              string  `json:"type" validate:"required,oneof=call put"`
	Action            string  `json:"action" validate:"required,oneof=buy sell"`
	Strike            float64 `json:"strike" validate:"gt=0"`
	Premium           float64 `json:"premium" validate:"gt=0"`
	Contracts         int     `json:"contracts" default:"1" validate:"min=1"`
	SharesPerContract int     `json:"shares_per_contract" default:"100" validate:"min=1"`
}

// PayoffPoint is profit or loss at expiry for one underlying price.
type PayoffPoint struct {
	Price      float64 `json:"price"`
	ProfitLoss float64 `json:"profit_loss"`
}

// Payoff is the expiry profile of a leg. A nil MaxProfit or MaxLoss means
// unlimited. MaxLoss is reported as a negative amount.
type Payoff struct {
	Leg               OptionLeg     `json:"leg"`
	Points            []PayoffPoint `json:"points"`
	CurrentPrice      float64       `json:"current_price"`
	CurrentProfitLoss float64       `json:"current_profit_loss"`
	BreakEven         float64       `json:"break_even"`
	MaxProfit         *float64      `json:"max_profit"`
	MaxLoss           *float64      `json:"max_loss"`
}

// Normalize fills defaults and validates the leg.
func (l *OptionLeg) Normalize() error {
	if err := defaults.Set(l); err != nil {
		return err
	}
	return validate.Struct(l)
}

func (l OptionLeg) multiplier() float64 {
	return float64(l.Contracts * l.SharesPerContract)
}

// ProfitAt returns the leg's profit or loss at expiry for price.
func (l OptionLeg) ProfitAt(price float64) float64 {
	var intrinsic float64
	if l.Type == "call" {
		intrinsic = max(price-l.Strike, 0)
	} else {
		intrinsic = max(l.Strike-price, 0)
	}
	pl := intrinsic - l.Premium
	if l.Action == "sell" {
		pl = -pl
	}
	return pl * l.multiplier()
}

// OptionPayoff evaluates the leg over prices and at the current underlying
// price. The leg must be normalized.
func OptionPayoff(leg OptionLeg, current float64, prices []float64) Payoff {
	p := Payoff{
		Leg:               leg,
		Points:            make([]PayoffPoint, len(prices)),
		CurrentPrice:      current,
		CurrentProfitLoss: leg.ProfitAt(current),
	}
	for i, price := range prices {
		p.Points[i] = PayoffPoint{Price: price, ProfitLoss: leg.ProfitAt(price)}
	}

	premium := leg.Premium * leg.multiplier()
	floor := (leg.Strike - leg.Premium) * leg.multiplier()
	switch {
	case leg.Type == "call" && leg.Action == "buy":
		p.BreakEven = leg.Strike + leg.Premium
		p.MaxLoss = ptr(-premium)
	case leg.Type == "call":
		p.BreakEven = leg.Strike + leg.Premium
		p.MaxProfit = ptr(premium)
	case leg.Action == "buy":
		p.BreakEven = leg.Strike - leg.Premium
		p.MaxProfit = ptr(floor)
		p.MaxLoss = ptr(-premium)
	default:
		p.BreakEven = leg.Strike - leg.Premium
		p.MaxProfit = ptr(premium)
		p.MaxLoss = ptr(-floor)
	}
	return p
}

// PriceGrid returns n evenly spaced prices from current*lo to current*hi.
func PriceGrid(current, lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	start, end := current*lo, current*hi
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (end - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = end
	return out
}

func ptr(v float64) *float64 { return &v }
