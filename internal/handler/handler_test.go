package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mandes/MandesCDA/internal/domain"
	"github.com/mandes/MandesCDA/internal/sim"
	"github.com/mandes/MandesCDA/internal/stats"
)

func newTestServer(t *testing.T) (*httptest.Server, *stats.RunResult) {
	t.Helper()

	clock := sim.NewClock(1000000)
	rec := stats.NewRecorder(clock, domain.TimeStamp{Day: 0, Tick: 100}, 30000)
	if err := clock.AdvanceTo(domain.TimeStamp{Day: 0, Tick: 200}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	rec.OnTrade(&domain.Trade{ID: 1, Time: clock.Now(), Price: 30100, Size: 10, AggressorBuy: true})
	rec.OnQuote(domain.Quote{ID: 2, Time: clock.Now(), BestBid: 29900, BestBidVol: 5, BestAsk: 30100, BestAskVol: 5})

	store := stats.NewStore()
	res := store.Add(42, rec)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewRouter(store, logger))
	t.Cleanup(srv.Close)
	return srv, res
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out map[string]string
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["status"] != "ok" {
		t.Errorf("status = %q, want ok", out["status"])
	}
}

func TestListRuns(t *testing.T) {
	srv, res := newTestServer(t)

	resp, body := get(t, srv.URL+"/runs")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		Runs []struct {
			ID   string `json:"id"`
			Seed int64  `json:"seed"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(out.Runs))
	}
	if out.Runs[0].ID != res.ID.String() || out.Runs[0].Seed != 42 {
		t.Errorf("unexpected run entry: %+v", out.Runs[0])
	}
}

func TestRunSummary(t *testing.T) {
	srv, res := newTestServer(t)

	resp, body := get(t, srv.URL+"/runs/"+res.ID.String()+"/summary")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out stats.Summary
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Trades != 1 || out.Volume != 10 {
		t.Errorf("unexpected summary: %+v", out)
	}
	if out.AvgSpread != 200 {
		t.Errorf("AvgSpread = %v, want 200", out.AvgSpread)
	}
}

func TestRunTradesCSV(t *testing.T) {
	srv, res := newTestServer(t)

	resp, body := get(t, srv.URL+"/runs/"+res.ID.String()+"/trades")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if got := string(body); got != "1,10,30100,true\n" {
		t.Errorf("unexpected body %q", got)
	}
}

func TestRunTradesCSVWithCut(t *testing.T) {
	srv, res := newTestServer(t)

	// The only trade sits at (0,200); cutting at (0,300) excludes it.
	_, body := get(t, srv.URL+"/runs/"+res.ID.String()+"/trades?after_day=0&after_tick=300")
	if got := string(body); got != "" {
		t.Errorf("expected an empty export, got %q", got)
	}
}

func TestRunQuotesCSV(t *testing.T) {
	srv, res := newTestServer(t)

	resp, body := get(t, srv.URL+"/runs/"+res.ID.String()+"/quotes")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one quote, got %d lines", len(lines))
	}
	if lines[1] != "29900;30100;200;30000" {
		t.Errorf("unexpected row %q", lines[1])
	}
}

func TestRunNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := get(t, srv.URL+"/runs/00000000-0000-0000-0000-000000000000/summary")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRunBadID(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/runs/not-a-uuid/summary")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var out struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Error != "invalid_request" {
		t.Errorf("error code = %q, want invalid_request", out.Error)
	}
}
