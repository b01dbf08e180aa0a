package model

// Parameters are the GBM inputs derived from a HistoricalSeries.
type Parameters struct {
	InitialPrice float64 // last close
	Drift        float64 // annualized mean return
	Volatility   float64 // annualized std-dev of returns
}

// ForecastPath is one simulated price trajectory.
// Prices and TimeIndex always have the same length, horizon+1.
type ForecastPath struct {
	Seed      int64
	Prices    []float64
	TimeIndex []float64
}

// Terminal returns the last simulated price.
func (p ForecastPath) Terminal() float64 {
	if len(p.Prices) == 0 {
		return 0
	}
	return p.Prices[len(p.Prices)-1]
}

// OutlookTier maps a minimum terminal return to a label.
type OutlookTier struct {
	Label     string
	MinReturn float64
}

// ScenarioSummary condenses one ForecastPath for reports.
type ScenarioSummary struct {
	Seed     int64
	Initial  float64
	Terminal float64
	Return   float64 // Terminal/Initial - 1
	High     float64
	Low      float64
	Outlook  string
}
