package calculator

import (
	"errors"
	"math"
)

// PathRange scans a price path and returns its high and low.
// NaN prices are skipped; a path of only NaNs yields NaN for both.
func PathRange(prices []float64) (high, low float64, err error) {
	if len(prices) == 0 {
		return 0, 0, errors.New("no prices provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	seen := false
	for _, p := range prices {
		if math.IsNaN(p) {
			continue
		}
		seen = true
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
	}
	if !seen {
		return math.NaN(), math.NaN(), nil
	}
	return high, low, nil
}
