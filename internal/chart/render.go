package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"BrownianScope/internal/model"
)

// Options controls the figure layout.
type Options struct {
	Title   string
	Columns int
	Width   vg.Length
	Height  vg.Length
	DPI     int
}

// DefaultOptions matches a 12x8 inch figure at 300 dpi in two columns.
func DefaultOptions() Options {
	return Options{
		Columns: 2,
		Width:   12 * vg.Inch,
		Height:  8 * vg.Inch,
		DPI:     300,
	}
}

// DefaultTitle describes n scenarios of symbol over a horizon of steps trading periods.
func DefaultTitle(n int, symbol string, steps, periodsPerYear int) string {
	return fmt.Sprintf("%d Scenarios of %s price over the next %s using Geometric Brownian Motion",
		n, symbol, horizonText(steps, periodsPerYear))
}

func horizonText(steps, periodsPerYear int) string {
	if periodsPerYear > 0 && steps%periodsPerYear == 0 {
		years := steps / periodsPerYear
		if years == 1 {
			return "year"
		}
		return fmt.Sprintf("%d years", years)
	}
	return fmt.Sprintf("%d trading days", steps)
}

var (
	errEmptySeries = errors.New("chart: empty historical series")
	errNoPaths     = errors.New("chart: no forecast paths")
)

const (
	titleStrip = 0.4 * vg.Inch
	labelStrip = 0.35 * vg.Inch
)

// Render draws one panel per path, each overlaying the historical closes and
// the forecast, and writes the figure to w as PNG.
func Render(w io.Writer, series model.HistoricalSeries, paths []model.ForecastPath, opts Options) error {
	if series.Len() == 0 {
		return errEmptySeries
	}
	if len(paths) == 0 {
		return errNoPaths
	}
	opts = withDefaults(opts)
	if opts.Title == "" {
		opts.Title = fmt.Sprintf("%d Scenarios of %s price", len(paths), series.Symbol)
	}

	actual := finite(historicalXYs(series.Closes()))
	cols := opts.Columns
	if cols > len(paths) {
		cols = len(paths)
	}
	rows := (len(paths) + cols - 1) / cols

	lim := limitsOf(actual)
	plots := make([][]*plot.Plot, rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, cols)
	}
	for i, path := range paths {
		forecast := make(plotter.XYs, len(path.Prices))
		for j := range path.Prices {
			forecast[j].X = path.TimeIndex[j]
			forecast[j].Y = path.Prices[j]
		}
		forecast = finite(forecast)
		lim = lim.union(limitsOf(forecast))

		p, err := panel(path.Seed, actual, forecast)
		if err != nil {
			return err
		}
		plots[i/cols][i%cols] = p
	}

	// Shared axes.
	for _, row := range plots {
		for _, p := range row {
			if p == nil || !lim.valid() {
				continue
			}
			p.X.Min, p.X.Max = lim.xmin, lim.xmax
			p.Y.Min, p.Y.Max = lim.ymin, lim.ymax
		}
	}

	img := vgimg.NewWith(vgimg.UseWH(opts.Width, opts.Height), vgimg.UseDPI(opts.DPI))
	dc := draw.New(img)
	drawFigureText(dc, plots[0][0], opts.Title)

	body := draw.Crop(dc, labelStrip, 0, labelStrip, -titleStrip)
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(2),
		PadBottom: vg.Points(2),
		PadLeft:   vg.Points(2),
		PadRight:  vg.Points(2),
	}
	canvases := plot.Align(plots, tiles, body)
	for r, row := range plots {
		for c, p := range row {
			if p != nil {
				p.Draw(canvases[r][c])
			}
		}
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("chart: encode png: %w", err)
	}
	return nil
}

// RenderFile renders to path, creating its directory.
func RenderFile(path string, series model.HistoricalSeries, paths []model.ForecastPath, opts Options) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("chart: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if err := Render(f, series, paths, opts); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.Columns <= 0 {
		opts.Columns = def.Columns
	}
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.DPI <= 0 {
		opts.DPI = def.DPI
	}
	return opts
}

// panel overlays actual and forecast. Either may be empty when none of its
// points are finite; the panel then shows what is left.
func panel(seed int64, actual, forecast plotter.XYs) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("seed = %d", seed)
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true

	if len(actual) > 0 {
		hist, err := plotter.NewLine(actual)
		if err != nil {
			return nil, fmt.Errorf("chart: actual line: %w", err)
		}
		hist.Color = plotutil.Color(0)
		hist.Width = vg.Points(1)
		p.Add(hist)
		p.Legend.Add("Actual", hist)
	}

	if len(forecast) > 0 {
		fc, err := plotter.NewLine(forecast)
		if err != nil {
			return nil, fmt.Errorf("chart: forecast line for seed %d: %w", seed, err)
		}
		fc.Color = plotutil.Color(1)
		fc.Width = vg.Points(1)
		p.Add(fc)
		p.Legend.Add("Forecast", fc)
	}
	return p, nil
}

// finite drops points with a NaN or infinite coordinate.
func finite(pts plotter.XYs) plotter.XYs {
	out := make(plotter.XYs, 0, len(pts))
	for _, pt := range pts {
		if math.IsNaN(pt.X) || math.IsInf(pt.X, 0) || math.IsNaN(pt.Y) || math.IsInf(pt.Y, 0) {
			continue
		}
		out = append(out, pt)
	}
	return out
}

// historicalXYs spreads the closes evenly over [0, len(closes)].
func historicalXYs(closes []float64) plotter.XYs {
	pts := make(plotter.XYs, len(closes))
	n := len(closes)
	for i, c := range closes {
		if n > 1 {
			pts[i].X = float64(i) * float64(n) / float64(n-1)
		}
		pts[i].Y = c
	}
	return pts
}

// drawFigureText writes the figure title and the shared axis labels around the panel area.
func drawFigureText(dc draw.Canvas, ref *plot.Plot, title string) {
	sty := ref.Title.TextStyle
	sty.XAlign = text.XCenter
	sty.YAlign = text.YCenter
	centerX := (dc.Min.X + dc.Max.X) / 2
	centerY := (dc.Min.Y + dc.Max.Y) / 2

	dc.FillText(sty, vg.Point{X: centerX, Y: dc.Max.Y - titleStrip/2}, title)

	label := ref.X.Label.TextStyle
	label.XAlign = text.XCenter
	label.YAlign = text.YCenter
	dc.FillText(label, vg.Point{X: centerX, Y: dc.Min.Y + labelStrip/2}, "Trading Days")

	label.Rotation = math.Pi / 2
	dc.FillText(label, vg.Point{X: dc.Min.X + labelStrip/2, Y: centerY}, "Stock Price $")
}

type limits struct {
	xmin, xmax, ymin, ymax float64
}

func limitsOf(xys plotter.XYs) limits {
	l := limits{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, pt := range xys {
		if math.IsNaN(pt.Y) || math.IsInf(pt.Y, 0) {
			continue
		}
		l.xmin = math.Min(l.xmin, pt.X)
		l.xmax = math.Max(l.xmax, pt.X)
		l.ymin = math.Min(l.ymin, pt.Y)
		l.ymax = math.Max(l.ymax, pt.Y)
	}
	return l
}

func (l limits) valid() bool {
	return !math.IsInf(l.xmin, 0) && !math.IsInf(l.ymin, 0)
}

func (l limits) union(o limits) limits {
	return limits{
		xmin: math.Min(l.xmin, o.xmin),
		xmax: math.Max(l.xmax, o.xmax),
		ymin: math.Min(l.ymin, o.ymin),
		ymax: math.Max(l.ymax, o.ymax),
	}
}
