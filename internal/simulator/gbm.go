package simulator

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"BrownianScope/internal/model"
)

// InvalidHorizonError is returned when a forecast horizon has no steps or no length.
type InvalidHorizonError struct {
	Steps int
	Years float64
}

func (e *InvalidHorizonError) Error() string {
	if e.Steps <= 0 {
		return fmt.Sprintf("invalid horizon: steps must be positive, got %d", e.Steps)
	}
	return fmt.Sprintf("invalid horizon: years must be positive, got %v", e.Years)
}

// Horizon describes the simulated span: Steps points covering Years years.
type Horizon struct {
	Steps int
	Years float64
}

// Generate simulates one GBM path over a one-year horizon split into horizonSteps steps.
// The forecast time index starts at lookbackOffset so it lines up after the historical window.
func Generate(seed int64, params model.Parameters, horizonSteps, lookbackOffset int) (model.ForecastPath, error) {
	return GenerateSpan(seed, params, Horizon{Steps: horizonSteps, Years: 1}, lookbackOffset)
}

// GenerateSpan simulates one GBM path from the cumulative Brownian path W.
//
// W is zero-based like the increments it sums, so step i reads W[i-1] while the
// drift term reads t[i]. Keep that pairing: changing it shifts every path by one
// increment. Every call draws from its own source seeded with seed, so equal
// seeds give bit-identical paths.
func GenerateSpan(seed int64, params model.Parameters, h Horizon, lookbackOffset int) (model.ForecastPath, error) {
	if h.Steps <= 0 || !(h.Years > 0) {
		return model.ForecastPath{}, &InvalidHorizonError{Steps: h.Steps, Years: h.Years}
	}

	n := h.Steps
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(uint64(seed))}
	dt := h.Years / float64(n)
	sqrtDt := math.Sqrt(dt)

	// Brownian path; w[k] holds the sum of the first k+1 increments.
	w := make([]float64, n)
	var sum float64
	for k := range w {
		sum += normal.Rand() * sqrtDt
		w[k] = sum
	}

	prices := make([]float64, n+1)
	timeIndex := make([]float64, n+1)
	prices[0] = params.InitialPrice
	timeIndex[0] = float64(lookbackOffset)

	driftRate := params.Drift - 0.5*params.Volatility*params.Volatility
	for i := 1; i <= n; i++ {
		t := float64(i) * h.Years / float64(n)
		drift := driftRate * t
		diffusion := params.Volatility * w[i-1]
		prices[i] = params.InitialPrice * math.Exp(drift+diffusion)
		timeIndex[i] = float64(lookbackOffset + i)
	}

	return model.ForecastPath{Seed: seed, Prices: prices, TimeIndex: timeIndex}, nil
}
