// Package profile maps the dashboard variants onto indicator sets and
// learning sections.
package profile

import (
	"fmt"
	"sort"
	"strings"

	"StockLens/internal/calculator"
)

// Names of the built-in profiles.
const (
	Basic    = "basic"
	Enhanced = "enhanced"
	Improved = "improved"
	Advanced = "advanced"

	Default = Advanced
)

// Profile selects the indicators computed for a symbol and the education
// topics offered alongside them.
type Profile struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Indicators  calculator.Config `json:"indicators"`
	Sections    []string          `json:"sections"`
}

var registry = map[string]Profile{
	Basic: {
		Name:        Basic,
		Description: "Price with 20 and 50 day moving averages",
		Indicators: calculator.Config{Indicators: []calculator.Spec{
			{Kind: calculator.KindSMA, Period: 20},
			{Kind: calculator.KindSMA, Period: 50},
		}},
		Sections: []string{"basics", "strategies", "options", "risk", "psychology"},
	},
	Enhanced: {
		Name:        Enhanced,
		Description: "Moving averages plus worked real-market examples",
		Indicators: calculator.Config{Indicators: []calculator.Spec{
			{Kind: calculator.KindSMA, Period: 20},
			{Kind: calculator.KindSMA, Period: 50},
		}},
		Sections: []string{"basics", "strategies", "options", "risk", "psychology", "examples"},
	},
	Improved: {
		Name:        Improved,
		Description: "Trend, momentum, volatility and volume indicators",
		Indicators: calculator.Config{Indicators: []calculator.Spec{
			{Kind: calculator.KindSMA, Period: 20},
			{Kind: calculator.KindSMA, Period: 50},
			{Kind: calculator.KindEMA, Period: 12},
			{Kind: calculator.KindEMA, Period: 26},
			{Kind: calculator.KindRSI},
			{Kind: calculator.KindMACD},
			{Kind: calculator.KindBollinger},
			{Kind: calculator.KindVolume},
		}},
		Sections: []string{"basics", "indicators", "options", "risk", "psychology"},
	},
	Advanced: {
		Name:        Advanced,
		Description: "Full indicator set with stochastic and on-balance volume",
		Indicators:  calculator.DefaultConfig(),
		Sections:    []string{"basics", "indicators", "strategies", "options", "risk", "psychology", "examples"},
	},
}

// Lookup returns the named profile. Names are case-insensitive; an empty
// name selects the default.
func Lookup(name string) (Profile, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = Default
	}
	p, ok := registry[key]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	// copy so callers can't mutate the registry
	p.Indicators.Indicators = append([]calculator.Spec(nil), p.Indicators.Indicators...)
	p.Sections = append([]string(nil), p.Sections...)
	return p, nil
}

// Names returns the registered profile names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WithStrict returns a copy of p whose indicator config fails on short series.
func (p Profile) WithStrict(strict bool) Profile {
	p.Indicators.Strict = strict
	return p
}

// HasSection reports whether the profile offers the given learning topic.
func (p Profile) HasSection(id string) bool {
	for _, s := range p.Sections {
		if s == id {
			return true
		}
	}
	return false
}
