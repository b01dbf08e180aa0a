package calculator

// DefaultPeriodsPerYear is the number of trading days used to annualize daily statistics.
const DefaultPeriodsPerYear = 252

// DailyReturns computes the percentage change between consecutive closes.
// The result has one element fewer than closes; a zero close yields ±Inf or NaN.
func DailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns[i-1] = (closes[i] - closes[i-1]) / closes[i-1]
	}
	return returns
}
