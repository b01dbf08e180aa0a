package notifier

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"BrownianScope/internal/model"
)

// price renders v with two decimals. Non-finite values render as n/a.
func price(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// percent renders a fraction as a signed percentage.
func percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	d := decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(1)
	if d.IsPositive() {
		return "+" + d.StringFixed(1) + "%"
	}
	return d.StringFixed(1) + "%"
}

// FormatForecastReport formats one forecast batch into a Telegram message.
func FormatForecastReport(series model.HistoricalSeries, params model.Parameters, sums []model.ScenarioSummary, now time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 <b>%s GBM forecast</b> | %s\n\n", series.Symbol, now.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Last close: %s (%d bars)\n", price(params.InitialPrice), series.Len()))
	b.WriteString(fmt.Sprintf("Drift μ: %s | Volatility σ: %s\n\n", percent(params.Drift), percent(params.Volatility)))

	b.WriteString("🎲 <b>Scenarios:</b>\n")
	for _, s := range sums {
		b.WriteString(fmt.Sprintf("  seed %d: %s (%s) %s\n", s.Seed, price(s.Terminal), percent(s.Return), s.Outlook))
		b.WriteString(fmt.Sprintf("    range %s - %s\n", price(s.Low), price(s.High)))
	}
	return b.String()
}

// FormatParameters formats the estimated parameters alone.
func FormatParameters(series model.HistoricalSeries, params model.Parameters) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📐 <b>%s parameters</b>\n\n", series.Symbol))
	if first, ok := firstBar(series); ok {
		last, _ := series.Last()
		b.WriteString(fmt.Sprintf("Window: %s → %s (%d bars)\n",
			first.Time.Format("2006-01-02"), last.Time.Format("2006-01-02"), series.Len()))
	}
	b.WriteString(fmt.Sprintf("S0: %s\n", price(params.InitialPrice)))
	b.WriteString(fmt.Sprintf("μ: %s\n", percent(params.Drift)))
	b.WriteString(fmt.Sprintf("σ: %s\n", percent(params.Volatility)))
	return b.String()
}

// FormatHelp lists the commands the bot answers.
func FormatHelp() string {
	return "Available commands:\n• /forecast run a forecast now\n• /params show the estimated parameters\n• /help show this message"
}

func firstBar(s model.HistoricalSeries) (model.OHLCV, bool) {
	if len(s.Bars) == 0 {
		return model.OHLCV{}, false
	}
	return s.Bars[0], true
}
