package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradestats/analytics"
	"github.com/rustyeddy/tradestats/internal/refresh"
	"github.com/rustyeddy/tradestats/pkg/logger"
)

type stubSource struct {
	snap refresh.Snapshot
	err  error
}

func (s stubSource) Refresh(ctx context.Context) (refresh.Snapshot, error) {
	return s.snap, s.err
}

func snapshot(t *testing.T) refresh.Snapshot {
	t.Helper()

	closeAt := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)
	trades := []analytics.Trade{
		{ID: "A", Instrument: "EUR_USD", Direction: analytics.Long, EntryPrice: 1.085,
			PnL: analytics.Float(150), EntryTime: closeAt.Add(-time.Hour), CloseTime: analytics.Time(closeAt)},
	}
	rep, err := analytics.Compute(trades, 1000)
	require.NoError(t, err)
	return refresh.Snapshot{Report: rep, Trades: trades, ComputedAt: closeAt.Add(time.Hour)}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h := NewRouter(stubSource{}, logger.Nop())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"tradestats"}`, rec.Body.String())
}

func TestGetReport(t *testing.T) {
	t.Parallel()

	h := NewRouter(stubSource{snap: snapshot(t)}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/report", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "2024-03-04T16:00:00Z", rec.Header().Get("X-Report-Computed-At"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1.0, body["totalTrades"])
	assert.Equal(t, "Infinity", body["profitFactor"])
	assert.Equal(t, 1150.0, body["finalEquity"])
	assert.NotContains(t, body, "trades")
}

func TestGetExport(t *testing.T) {
	t.Parallel()

	h := NewRouter(stubSource{snap: snapshot(t)}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="tradestats-20240304-160000.json"`)

	doc, err := analytics.ReadExport(rec.Body)
	require.NoError(t, err)
	require.Len(t, doc.Trades, 1)
	assert.Equal(t, "A", doc.Trades[0].ID)
	assert.Equal(t, 1, doc.TotalTrades)
}

func TestReportError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"load failure", errors.New("load trades: disk gone"), http.StatusInternalServerError},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewRouter(stubSource{err: tt.err}, nil)
			for _, path := range []string{"/api/v1/report", "/api/v1/export"} {
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
				assert.Equal(t, tt.status, rec.Code, path)
				assert.Contains(t, rec.Body.String(), tt.err.Error())
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	h := NewRouter(stubSource{snap: snapshot(t)}, nil)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/report", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tradestats_http_requests_total{method="GET",path="/api/v1/report",status="200"}`)
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	h := NewRouter(stubSource{}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v2/report", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, addr, NewRouter(stubSource{}, nil), logger.Nop()) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
