package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v4"
)

const chartBody = `{"chart":{"result":[{"timestamp":[1704326400,1704153600,1704240000,1704412800],
"indicators":{"quote":[{"open":[102,100,101,null],"high":[103,101,102,null],"low":[101,99,100,null],
"close":[102.5,100.5,101.5,null],"volume":[3000,1000,2000,null]}]}}],"error":null}}`

func newTestYahoo(url string) *YahooFetcher {
	f := NewYahooFetcher("")
	f.BaseURL = url
	f.Limiter = nil
	f.NewBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
	}
	return f
}

func TestYahoo_FetchDailyBars(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, chartBody)
	}))
	defer srv.Close()

	bars, err := newTestYahoo(srv.URL).FetchDailyBars(context.Background(), "SPX500", 504)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gotPath, "%5EGSPC") {
		t.Errorf("expected SPX500 to map to ^GSPC, path was %s", gotPath)
	}
	if !strings.Contains(gotQuery, "range=5y") || !strings.Contains(gotQuery, "interval=1d") {
		t.Errorf("unexpected query %s", gotQuery)
	}
	if len(bars) != 3 {
		t.Fatalf("expected null bar to be skipped, got %d bars", len(bars))
	}
	want := []float64{100.5, 101.5, 102.5}
	for i, b := range bars {
		if b.Close != want[i] {
			t.Errorf("bar %d: expected close %v, got %v", i, want[i], b.Close)
		}
	}
}

func TestYahoo_TrimsToDays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartBody)
	}))
	defer srv.Close()

	bars, err := newTestYahoo(srv.URL).FetchDailyBars(context.Background(), "^GSPC", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 || bars[1].Close != 102.5 {
		t.Errorf("expected the 2 most recent bars, got %+v", bars)
	}
}

func TestYahoo_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, chartBody)
	}))
	defer srv.Close()

	bars, err := newTestYahoo(srv.URL).FetchDailyBars(context.Background(), "^GSPC", 10)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if len(bars) != 3 || atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 calls and 3 bars, got %d calls and %d bars", calls, len(bars))
	}
}

func TestYahoo_ClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "no such symbol", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestYahoo(srv.URL).FetchDailyBars(context.Background(), "NOPE", 10)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("404 should not be retried, got %d calls", calls)
	}
}

func TestYahoo_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	_, err := newTestYahoo(srv.URL).FetchDailyBars(context.Background(), "^GSPC", 10)
	if err == nil || !strings.Contains(err.Error(), "No data found") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestYahooRange(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{20, "1mo"}, {60, "3mo"}, {120, "6mo"}, {252, "2y"}, {250, "1y"},
		{504, "5y"}, {500, "2y"}, {1250, "5y"}, {2000, "10y"}, {9000, "max"},
	}
	for _, tt := range tests {
		if got := yahooRange(tt.days); got != tt.want {
			t.Errorf("yahooRange(%d): expected %s, got %s", tt.days, tt.want, got)
		}
	}
}
