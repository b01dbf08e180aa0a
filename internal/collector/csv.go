package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"BrownianScope/internal/model"
)

// CSVFetcher reads daily bars from a local file with a
// Date,Open,High,Low,Close,Volume header. Extra columns are ignored.
type CSVFetcher struct {
	Path string
}

func NewCSVFetcher(path string) *CSVFetcher {
	return &CSVFetcher{Path: path}
}

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.OHLCV, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	bars, err := ReadBarsCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return trimLast(bars, days), nil
}

// ReadBarsCSV parses bars from r. Rows with an empty or zero close are skipped;
// a value that is present but not numeric is an error.
func ReadBarsCSV(r io.Reader) ([]model.OHLCV, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"date", "close"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	// field returns 0 for a missing, empty or null cell. A present value must parse.
	field := func(row []string, name string) (float64, error) {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return 0, nil
		}
		raw := strings.TrimSpace(row[i])
		if raw == "" || strings.EqualFold(raw, "null") {
			return 0, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", name, err)
		}
		return v, nil
	}

	var bars []model.OHLCV
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t, err := time.Parse("2006-01-02", strings.TrimSpace(row[cols["date"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: parse date: %w", line, err)
		}
		var values [5]float64
		for k, name := range []string{"open", "high", "low", "close", "volume"} {
			if values[k], err = field(row, name); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		if values[3] == 0 {
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:   t,
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
