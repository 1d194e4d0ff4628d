package refresh

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradestats/analytics"
	"github.com/rustyeddy/tradestats/journal"
	"github.com/rustyeddy/tradestats/pkg/logger"
)

// fakeSource serves whatever trades it currently holds and counts loads.
type fakeSource struct {
	mu     sync.Mutex
	trades []analytics.Trade
	err    error
	calls  atomic.Int32
}

func (s *fakeSource) ListTrades(ctx context.Context) ([]analytics.Trade, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]analytics.Trade(nil), s.trades...), nil
}

func (s *fakeSource) set(trades []analytics.Trade, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades, s.err = trades, err
}

func trade(id string, pnl float64, day int) analytics.Trade {
	closeAt := time.Date(2024, 3, day, 15, 0, 0, 0, time.UTC)
	return analytics.Trade{
		ID:         id,
		Instrument: "EUR_USD",
		Direction:  analytics.Long,
		EntryPrice: 1.085,
		PnL:        analytics.Float(pnl),
		EntryTime:  closeAt.Add(-time.Hour),
		CloseTime:  analytics.Time(closeAt),
	}
}

// tick returns a clock that advances one second per call.
func tick() func() time.Time {
	var n atomic.Int64
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		return base.Add(time.Duration(n.Add(1)) * time.Second)
	}
}

func TestRefreshComputesReport(t *testing.T) {
	t.Parallel()

	src := &fakeSource{trades: []analytics.Trade{trade("A", 100, 4), trade("B", -40, 5)}}
	r := New(src, Options{Balance: 1000, Now: tick()}, logger.Nop())

	_, ok := r.Latest()
	assert.False(t, ok)

	snap, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Report.TotalTrades)
	assert.InDelta(t, 1060, snap.Report.FinalEquity, 1e-9)
	assert.Len(t, snap.Trades, 2)
	assert.Equal(t, Fingerprint(snap.Trades, 1000), snap.Fingerprint)

	latest, ok := r.Latest()
	require.True(t, ok)
	assert.Equal(t, snap.ComputedAt, latest.ComputedAt)
}

func TestRefreshReusesCachedReport(t *testing.T) {
	t.Parallel()

	src := &fakeSource{trades: []analytics.Trade{trade("A", 100, 4)}}
	r := New(src, Options{Balance: 1000, Now: tick()}, nil)

	first, err := r.Refresh(context.Background())
	require.NoError(t, err)
	second, err := r.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), src.calls.Load(), "source is reread without a min interval")
	assert.Equal(t, first.ComputedAt, second.ComputedAt, "unchanged inputs reuse the report")

	src.set([]analytics.Trade{trade("A", 100, 4), trade("B", 50, 5)}, nil)
	third, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, third.ComputedAt.After(first.ComputedAt))
	assert.Equal(t, 2, third.Report.TotalTrades)
}

func TestRefreshThrottled(t *testing.T) {
	t.Parallel()

	src := &fakeSource{trades: []analytics.Trade{trade("A", 100, 4)}}
	r := New(src, Options{Balance: 1000, MinInterval: time.Hour, Now: tick()}, nil)

	first, err := r.Refresh(context.Background())
	require.NoError(t, err)

	src.set([]analytics.Trade{trade("A", 100, 4), trade("B", 50, 5)}, nil)
	second, err := r.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, 1, second.Report.TotalTrades)
}

func TestRefreshSourceError(t *testing.T) {
	t.Parallel()

	src := &fakeSource{trades: []analytics.Trade{trade("A", 100, 4)}}
	r := New(src, Options{Balance: 1000}, nil)

	good, err := r.Refresh(context.Background())
	require.NoError(t, err)

	boom := errors.New("disk gone")
	src.set(nil, boom)
	_, err = r.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	latest, ok := r.Latest()
	require.True(t, ok)
	assert.Equal(t, good.Fingerprint, latest.Fingerprint)
}

func TestRefreshInvalidBalance(t *testing.T) {
	t.Parallel()

	r := New(&fakeSource{}, Options{Balance: posInf()}, nil)
	_, err := r.Refresh(context.Background())
	assert.ErrorIs(t, err, analytics.ErrInvalidBalance)
}

func TestRefreshEmptyLog(t *testing.T) {
	t.Parallel()

	r := New(&fakeSource{}, Options{Balance: 2500}, nil)
	snap, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snap.Report.TotalTrades)
	assert.Equal(t, 2500.0, snap.Report.FinalEquity)
	assert.Len(t, snap.Report.TimeOfDayPerformance, 24)
}

func TestStartSchedulesRefresh(t *testing.T) {
	t.Parallel()

	src := &fakeSource{trades: []analytics.Trade{trade("A", 100, 4)}}
	r := New(src, Options{Balance: 1000}, nil)

	require.NoError(t, r.Start(context.Background(), "@every 1s"))
	assert.Error(t, r.Start(context.Background(), "@every 1s"), "second start is rejected")

	require.Eventually(t, func() bool {
		_, ok := r.Latest()
		return ok
	}, 5*time.Second, 50*time.Millisecond)

	r.Stop()
	r.Stop()
}

func TestStartRejectsBadSpec(t *testing.T) {
	t.Parallel()

	r := New(&fakeSource{}, Options{Balance: 1000}, nil)
	err := r.Start(context.Background(), "whenever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "whenever")
	r.Stop()
}

func TestCSVSource(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	j, err := journal.NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, j.RecordTrade(trade("A", 100, 4)))
	require.NoError(t, j.Close())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("B,EUR_USD,FLAT,1.1,,,,,,\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	trades, err := CSVSource{Path: path, Log: logger.Nop()}.ListTrades(context.Background())
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "A", trades[0].ID)

	_, err = CSVSource{Path: filepath.Join(t.TempDir(), "missing.csv")}.ListTrades(context.Background())
	assert.Error(t, err)
}

func TestSourceFunc(t *testing.T) {
	t.Parallel()

	var src TradeSource = SourceFunc(func(ctx context.Context) ([]analytics.Trade, error) {
		return []analytics.Trade{trade("A", 1, 4)}, nil
	})
	trades, err := src.ListTrades(context.Background())
	require.NoError(t, err)
	assert.Len(t, trades, 1)
}
