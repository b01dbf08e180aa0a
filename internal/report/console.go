package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"BrownianScope/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	paramsStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	upStyle     = cellStyle.Foreground(lipgloss.Color("#10B981"))
	downStyle   = cellStyle.Foreground(lipgloss.Color("#EF4444"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func pct(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", v*100)
}

// Parameters renders the estimated parameters panel.
func Parameters(series model.HistoricalSeries, params model.Parameters) string {
	body := fmt.Sprintf("Symbol      %s\nBars        %d\nS0          %s\nDrift μ     %s\nVol σ       %s",
		series.Symbol, series.Len(), num(params.InitialPrice), pct(params.Drift), pct(params.Volatility))
	return paramsStyle.Render(body)
}

// Returns renders summary statistics of the daily return sample.
func Returns(returns []float64) string {
	if len(returns) == 0 {
		return paramsStyle.Render("Returns     none")
	}
	mean, std := stat.MeanStdDev(returns, nil)
	body := fmt.Sprintf("Returns     %d\nMean        %s\nStd dev     %s\nMin         %s\nMax         %s",
		len(returns), pct(mean), pct(std), pct(floats.Min(returns)), pct(floats.Max(returns)))
	return paramsStyle.Render(body)
}

// Scenarios renders one table row per scenario summary.
func Scenarios(sums []model.ScenarioSummary) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("Seed", "Terminal", "Return", "High", "Low", "Outlook").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 2 && row >= 0 && row < len(sums) {
				switch {
				case sums[row].Return > 0:
					return upStyle
				case sums[row].Return < 0:
					return downStyle
				}
			}
			return cellStyle
		})
	for _, s := range sums {
		t.Row(strconv.FormatInt(s.Seed, 10), num(s.Terminal), pct(s.Return), num(s.High), num(s.Low), s.Outlook)
	}
	return t.String()
}

// Print writes the full console summary of a forecast batch.
func Print(w io.Writer, series model.HistoricalSeries, params model.Parameters, sums []model.ScenarioSummary, chartPath string) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("GBM forecast for %s", series.Symbol)))
	fmt.Fprintln(w, Parameters(series, params))
	fmt.Fprintln(w, Scenarios(sums))
	if chartPath != "" {
		fmt.Fprintln(w, mutedStyle.Render("chart: "+chartPath))
	}
}
