package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"BrownianScope/internal/model"
)

func seriesFromCloses(closes ...float64) model.HistoricalSeries {
	bars := make([]model.OHLCV, len(closes))
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return model.HistoricalSeries{Symbol: "^GSPC", Bars: bars}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-12*math.Max(1, math.Abs(b))
}

func TestDailyReturns(t *testing.T) {
	got := DailyReturns([]float64{100, 102, 101})
	if len(got) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(got))
	}
	if !almostEqual(got[0], 0.02) {
		t.Errorf("first return: expected 0.02, got %v", got[0])
	}
	if !almostEqual(got[1], -1.0/102.0) {
		t.Errorf("second return: expected %v, got %v", -1.0/102.0, got[1])
	}
	if DailyReturns([]float64{100}) != nil {
		t.Error("expected nil returns for a single close")
	}
}

func TestEstimate_ThreePoints(t *testing.T) {
	params, err := Estimate(seriesFromCloses(100, 102, 101), 252)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r1, r2 := 0.02, -1.0/102.0
	mean := (r1 + r2) / 2
	std := math.Sqrt(((r1-mean)*(r1-mean) + (r2-mean)*(r2-mean)) / 1) // N-1 = 1

	if params.InitialPrice != 101 {
		t.Errorf("initial price: expected 101, got %v", params.InitialPrice)
	}
	if !almostEqual(params.Drift, mean*252) {
		t.Errorf("drift: expected %v, got %v", mean*252, params.Drift)
	}
	if !almostEqual(params.Volatility, std*math.Sqrt(252)) {
		t.Errorf("volatility: expected %v, got %v", std*math.Sqrt(252), params.Volatility)
	}
}

func TestEstimate_InitialPriceIsLastClose(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
	}{
		{"two points", []float64{10, 11}},
		{"rising", []float64{1, 2, 3, 4, 5}},
		{"falling", []float64{50, 40, 30, 20}},
		{"flat", []float64{7, 7, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := Estimate(seriesFromCloses(tt.closes...), DefaultPeriodsPerYear)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := tt.closes[len(tt.closes)-1]
			if params.InitialPrice != want {
				t.Errorf("expected initial price %v, got %v", want, params.InitialPrice)
			}
		})
	}
}

func TestEstimate_InsufficientData(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
	}{
		{"empty", nil},
		{"single point", []float64{100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Estimate(seriesFromCloses(tt.closes...), 252)
			var insufficient *InsufficientDataError
			if !errors.As(err, &insufficient) {
				t.Fatalf("expected InsufficientDataError, got %v", err)
			}
			if insufficient.Points != len(tt.closes) {
				t.Errorf("expected Points=%d, got %d", len(tt.closes), insufficient.Points)
			}
		})
	}
}

func TestEstimate_TwoPointsVolatilityIsNaN(t *testing.T) {
	params, err := Estimate(seriesFromCloses(100, 105), 252)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(params.Drift, 0.05*252) {
		t.Errorf("drift: expected %v, got %v", 0.05*252, params.Drift)
	}
	if !math.IsNaN(params.Volatility) {
		t.Errorf("expected NaN volatility from a single return, got %v", params.Volatility)
	}
}

func TestEstimate_IgnoresNonCloseFields(t *testing.T) {
	a := seriesFromCloses(100, 103, 99, 104)
	b := seriesFromCloses(100, 103, 99, 104)
	b.Symbol = "SPX500"
	for i := range b.Bars {
		b.Bars[i].High *= 2
		b.Bars[i].Volume = 1e9
		b.Bars[i].Time = b.Bars[i].Time.AddDate(1, 0, 0)
	}

	pa, err := Estimate(a, 252)
	if err != nil {
		t.Fatal(err)
	}
	pb, err := Estimate(b, 252)
	if err != nil {
		t.Fatal(err)
	}
	if pa != pb {
		t.Errorf("expected identical parameters, got %+v and %+v", pa, pb)
	}
}

func TestEstimate_ZeroFlatSeriesHasZeroVolatility(t *testing.T) {
	params, err := EstimateCloses([]float64{50, 50, 50, 50}, 252)
	if err != nil {
		t.Fatal(err)
	}
	if params.Drift != 0 || params.Volatility != 0 {
		t.Errorf("expected zero drift and volatility, got %+v", params)
	}
}

func TestEstimate_MatchesSeriesCloses(t *testing.T) {
	series := seriesFromCloses(4700, 4725.5, 4690.25, 4750)
	got, err := Estimate(series, 252)
	if err != nil {
		t.Fatal(err)
	}
	want, err := EstimateCloses(series.Closes(), 252)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
