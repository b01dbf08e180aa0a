package calculator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"BrownianScope/internal/model"
)

// InsufficientDataError is returned when a series is too short to yield a return.
type InsufficientDataError struct {
	Points int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: need at least 2 closes, got %d", e.Points)
}

// Estimate derives GBM parameters from a historical series.
func Estimate(series model.HistoricalSeries, periodsPerYear int) (model.Parameters, error) {
	return EstimateCloses(series.Closes(), periodsPerYear)
}

// EstimateCloses derives GBM parameters from chronological closing prices.
//
// Drift is the mean daily return times periodsPerYear. Volatility is the sample
// (N-1) standard deviation of daily returns times sqrt(periodsPerYear). With only
// two closes the standard deviation is NaN and is returned as is.
func EstimateCloses(closes []float64, periodsPerYear int) (model.Parameters, error) {
	if len(closes) < 2 {
		return model.Parameters{}, &InsufficientDataError{Points: len(closes)}
	}

	returns := DailyReturns(closes)
	mean, std := stat.MeanStdDev(returns, nil)
	k := float64(periodsPerYear)

	return model.Parameters{
		InitialPrice: closes[len(closes)-1],
		Drift:        mean * k,
		Volatility:   std * math.Sqrt(k),
	}, nil
}
