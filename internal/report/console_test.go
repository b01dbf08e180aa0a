package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"BrownianScope/internal/model"
)

func TestPrint(t *testing.T) {
	series := model.HistoricalSeries{Symbol: "^GSPC", Bars: make([]model.OHLCV, 504)}
	params := model.Parameters{InitialPrice: 4500, Drift: 0.1, Volatility: 0.2}
	sums := []model.ScenarioSummary{
		{Seed: 5, Terminal: 5800, Return: 0.2889, High: 6000, Low: 4400, Outlook: "Strong rally"},
		{Seed: 10, Terminal: 3000, Return: -0.3333, High: 4600, Low: 2900, Outlook: "Crash"},
	}

	var buf bytes.Buffer
	Print(&buf, series, params, sums, "data/gbm_scenarios.png")
	out := buf.String()
	for _, want := range []string{
		"GBM forecast for ^GSPC", "504", "4500.00", "+10.00%", "+20.00%",
		"Seed", "Outlook", "5800.00", "+28.89%", "Strong rally", "-33.33%", "Crash",
		"data/gbm_scenarios.png",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"num", num(101.456), "101.46"},
		{"num nan", num(math.NaN()), "n/a"},
		{"pct", pct(-0.05), "-5.00%"},
		{"pct inf", pct(math.Inf(1)), "n/a"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, tt.got)
		}
	}
}

func TestReturns(t *testing.T) {
	out := Returns([]float64{0.02, -0.01, 0.01})
	for _, want := range []string{"Returns     3", "+0.67%", "-1.00%", "+2.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if out := Returns(nil); !strings.Contains(out, "none") {
		t.Errorf("expected empty marker, got %q", out)
	}
}
