package simulator

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"BrownianScope/internal/model"
)

var sp500Params = model.Parameters{InitialPrice: 4500, Drift: 0.08, Volatility: 0.18}

func sameBits(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
			return false
		}
	}
	return true
}

func TestGenerate_Deterministic(t *testing.T) {
	for _, seed := range []int64{0, 1, 5, 10, 15, 20, -7, math.MaxInt64} {
		a, err := Generate(seed, sp500Params, 504, 504)
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		b, err := Generate(seed, sp500Params, 504, 504)
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		if !sameBits(a.Prices, b.Prices) {
			t.Errorf("seed %d: prices differ between identical calls", seed)
		}
		if !sameBits(a.TimeIndex, b.TimeIndex) {
			t.Errorf("seed %d: time index differs between identical calls", seed)
		}
	}
}

func TestGenerate_DifferentSeedsDiffer(t *testing.T) {
	seeds := []int64{5, 10, 15, 20}
	paths := make([]model.ForecastPath, len(seeds))
	for i, s := range seeds {
		p, err := Generate(s, sp500Params, 504, 504)
		if err != nil {
			t.Fatal(err)
		}
		paths[i] = p
	}
	for i := range paths {
		for j := i + 1; j < len(paths); j++ {
			if sameBits(paths[i].Prices, paths[j].Prices) {
				t.Errorf("seeds %d and %d produced identical paths", seeds[i], seeds[j])
			}
		}
	}
}

func TestGenerate_ShapeAndAnchor(t *testing.T) {
	tests := []struct {
		name   string
		steps  int
		offset int
	}{
		{"single step", 1, 0},
		{"one week", 5, 3},
		{"two years", 504, 504},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Generate(42, sp500Params, tt.steps, tt.offset)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(p.Prices) != tt.steps+1 || len(p.TimeIndex) != tt.steps+1 {
				t.Fatalf("expected %d points, got prices=%d timeIndex=%d", tt.steps+1, len(p.Prices), len(p.TimeIndex))
			}
			if p.Prices[0] != sp500Params.InitialPrice {
				t.Errorf("expected first price %v, got %v", sp500Params.InitialPrice, p.Prices[0])
			}
			for i, x := range p.TimeIndex {
				if x != float64(tt.offset+i) {
					t.Fatalf("timeIndex[%d]: expected %d, got %v", i, tt.offset+i, x)
				}
			}
			if p.Seed != 42 {
				t.Errorf("expected seed 42, got %d", p.Seed)
			}
		})
	}
}

func TestGenerate_InvalidHorizon(t *testing.T) {
	for _, steps := range []int{0, -1, -504} {
		_, err := Generate(1, sp500Params, steps, 0)
		var invalid *InvalidHorizonError
		if !errors.As(err, &invalid) {
			t.Fatalf("steps %d: expected InvalidHorizonError, got %v", steps, err)
		}
		if invalid.Steps != steps {
			t.Errorf("expected Steps=%d, got %d", steps, invalid.Steps)
		}
	}

	_, err := GenerateSpan(1, sp500Params, Horizon{Steps: 10, Years: 0}, 0)
	var invalid *InvalidHorizonError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidHorizonError for zero years, got %v", err)
	}
}

func TestGenerate_ZeroVolatilityFollowsDrift(t *testing.T) {
	params := model.Parameters{InitialPrice: 100, Drift: 0.1, Volatility: 0}
	p, err := Generate(3, params, 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 4; i++ {
		want := 100 * math.Exp(0.1*float64(i)/4)
		if math.Abs(p.Prices[i]-want) > 1e-9 {
			t.Errorf("prices[%d]: expected %v, got %v", i, want, p.Prices[i])
		}
	}
}

// referencePath replays the model with the increments drawn up front and the
// Brownian path built by an explicit cumulative sum.
func referencePath(seed int64, params model.Parameters, n int) []float64 {
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(uint64(seed))}
	dt := 1.0 / float64(n)
	b := make([]float64, n)
	for i := range b {
		b[i] = normal.Rand() * math.Sqrt(dt)
	}
	w := make([]float64, n)
	for i := range b {
		for j := 0; j <= i; j++ {
			w[i] += b[j]
		}
	}
	s := []float64{params.InitialPrice}
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		drift := (params.Drift - 0.5*math.Pow(params.Volatility, 2)) * t
		s = append(s, params.InitialPrice*math.Exp(drift+params.Volatility*w[i-1]))
	}
	return s
}

func TestGenerate_MatchesReferencePath(t *testing.T) {
	for _, seed := range []int64{5, 10, 15, 20} {
		p, err := Generate(seed, sp500Params, 12, 0)
		if err != nil {
			t.Fatal(err)
		}
		want := referencePath(seed, sp500Params, 12)
		for i := range want {
			if math.Abs(p.Prices[i]-want[i]) > 1e-9*want[i] {
				t.Errorf("seed %d prices[%d]: expected %v, got %v", seed, i, want[i], p.Prices[i])
			}
		}
	}
}

func TestGenerate_PathologicalParamsPropagate(t *testing.T) {
	params := model.Parameters{InitialPrice: 100, Drift: math.NaN(), Volatility: 0.2}
	p, err := Generate(1, params, 5, 0)
	if err != nil {
		t.Fatalf("NaN drift must not be an error, got %v", err)
	}
	if p.Prices[0] != 100 {
		t.Errorf("expected first price 100, got %v", p.Prices[0])
	}
	for i := 1; i < len(p.Prices); i++ {
		if !math.IsNaN(p.Prices[i]) {
			t.Errorf("prices[%d]: expected NaN, got %v", i, p.Prices[i])
		}
	}

	huge := model.Parameters{InitialPrice: 100, Drift: 1e6, Volatility: 0}
	p, err = Generate(1, huge, 5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(p.Terminal(), 1) {
		t.Errorf("expected +Inf terminal price, got %v", p.Terminal())
	}
}

func TestGenerateSpan_OneYearMatchesGenerate(t *testing.T) {
	a, err := Generate(20, sp500Params, 30, 7)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateSpan(20, sp500Params, Horizon{Steps: 30, Years: 1}, 7)
	if err != nil {
		t.Fatal(err)
	}
	if !sameBits(a.Prices, b.Prices) {
		t.Error("GenerateSpan with one year should match Generate")
	}
}
