package calculator

import (
	"math"
	"testing"
)

func TestPathRange(t *testing.T) {
	tests := []struct {
		name      string
		prices    []float64
		high, low float64
		wantErr   bool
	}{
		{name: "empty", prices: nil, wantErr: true},
		{name: "single", prices: []float64{5}, high: 5, low: 5},
		{name: "mixed", prices: []float64{101, 99.5, 104, 100}, high: 104, low: 99.5},
		{name: "skips NaN", prices: []float64{101, math.NaN(), 97}, high: 101, low: 97},
		{name: "keeps Inf", prices: []float64{101, math.Inf(1)}, high: math.Inf(1), low: 101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			high, low, err := PathRange(tt.prices)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if high != tt.high || low != tt.low {
				t.Errorf("expected (%v, %v), got (%v, %v)", tt.high, tt.low, high, low)
			}
		})
	}
}

func TestPathRange_AllNaN(t *testing.T) {
	high, low, err := PathRange([]float64{math.NaN(), math.NaN()})
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(high) || !math.IsNaN(low) {
		t.Errorf("expected NaN range, got (%v, %v)", high, low)
	}
}
