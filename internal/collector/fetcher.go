package collector

import (
	"context"

	"BrownianScope/internal/model"
)

// Fetcher defines the interface for fetching historical market data.
// Implementations return bars in chronological order.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	Name() string
}

// trimLast keeps the most recent n bars.
func trimLast(bars []model.OHLCV, n int) []model.OHLCV {
	if n > 0 && len(bars) > n {
		return bars[len(bars)-n:]
	}
	return bars
}
