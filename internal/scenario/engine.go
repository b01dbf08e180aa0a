package scenario

import (
	"math"

	"BrownianScope/internal/calculator"
	"BrownianScope/internal/model"
)

// Tiers maps the terminal return of a path to an outlook, highest first.
var Tiers = []model.OutlookTier{
	{Label: "Strong rally", MinReturn: 0.25},
	{Label: "Rally", MinReturn: 0.08},
	{Label: "Sideways", MinReturn: -0.08},
	{Label: "Decline", MinReturn: -0.25},
}

// DefaultTier catches returns below every tier, and NaN.
var DefaultTier = model.OutlookTier{Label: "Crash", MinReturn: math.Inf(-1)}

func mapTier(ret float64) model.OutlookTier {
	for _, t := range Tiers {
		if ret >= t.MinReturn {
			return t
		}
	}
	return DefaultTier
}

// Summarize condenses a forecast path relative to the parameters it was generated from.
func Summarize(path model.ForecastPath, params model.Parameters) model.ScenarioSummary {
	sum := model.ScenarioSummary{
		Seed:     path.Seed,
		Initial:  params.InitialPrice,
		Terminal: path.Terminal(),
	}
	sum.Return = sum.Terminal/sum.Initial - 1

	if high, low, err := calculator.PathRange(path.Prices); err == nil {
		sum.High = high
		sum.Low = low
	} else {
		sum.High = sum.Initial
		sum.Low = sum.Initial
	}

	sum.Outlook = mapTier(sum.Return).Label
	return sum
}

// SummarizeAll summarizes every path in order.
func SummarizeAll(paths []model.ForecastPath, params model.Parameters) []model.ScenarioSummary {
	out := make([]model.ScenarioSummary, len(paths))
	for i, p := range paths {
		out[i] = Summarize(p, params)
	}
	return out
}
