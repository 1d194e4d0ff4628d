package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradestats/analytics"
)

func TestCSVJournalHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")

	j, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	header, err := csv.NewReader(strings.NewReader(string(data))).Read()
	require.NoError(t, err)
	assert.Equal(t, CSVHeader, header)
}

func TestCSVJournalRecordTrade(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")

	j, err := NewCSV(path)
	require.NoError(t, err)

	closeT := time.Date(2024, 1, 2, 4, 5, 6, 0, time.UTC)
	tr := closedTrade("T1", -12.5, closeT)
	require.NoError(t, j.RecordTrade(tr))

	open := analytics.Trade{
		ID:         "T2",
		Instrument: "GBP_USD",
		Direction:  analytics.Short,
		EntryPrice: 1.2345678,
	}
	require.NoError(t, j.RecordTrade(open))
	require.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"T1",
		"EUR_USD",
		"LONG",
		"1.085000",
		"1.083000",
		"1.089000",
		"-12.500000",
		closeT.Add(-2 * time.Hour).Format(time.RFC3339),
		closeT.Format(time.RFC3339),
		"10000.000000",
	}, rows[1])

	assert.Equal(t, []string{
		"T2", "GBP_USD", "SHORT", "1.234568", "", "", "", "", "", "0.000000",
	}, rows[2])
}

func TestCSVRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	j, err := NewCSV(path)
	require.NoError(t, err)

	want := []analytics.Trade{
		closedTrade("T1", 120, time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)),
		closedTrade("T2", -80, time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)),
		{
			ID:         "T3",
			Instrument: "USD_JPY",
			Direction:  analytics.Short,
			EntryPrice: 150.25,
			EntryTime:  time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC),
		},
	}
	for _, tr := range want {
		require.NoError(t, j.RecordTrade(tr))
	}
	require.NoError(t, j.Close())

	got, rejected, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Empty(t, rejected)
	require.Len(t, got, len(want))

	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Direction, got[i].Direction)
		assert.Equal(t, want[i].Status(), got[i].Status())
		assert.InDelta(t, want[i].EntryPrice, got[i].EntryPrice, 1e-6)
		assert.True(t, got[i].EntryTime.Equal(want[i].EntryTime))
	}
	assert.InDelta(t, -80.0, *got[1].PnL, 1e-9)
	assert.InDelta(t, 1.083, got[0].StopLoss, 1e-9)
	assert.InDelta(t, 1.089, got[0].TakeProfit, 1e-9)
	assert.Nil(t, got[2].CloseTime)
}

func TestCSVRoundTripWithoutStops(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	j, err := NewCSV(path)
	require.NoError(t, err)

	closeAt := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(analytics.Trade{
		ID:         "NOSTOP",
		Instrument: "EUR_USD",
		Direction:  analytics.Long,
		EntryPrice: 1.085,
		PnL:        analytics.Float(42),
		EntryTime:  closeAt.Add(-time.Hour),
		CloseTime:  analytics.Time(closeAt),
	}))
	require.NoError(t, j.Close())

	got, rejected, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Empty(t, rejected)
	require.Len(t, got, 1)
	assert.Equal(t, "NOSTOP", got[0].ID)
	assert.Zero(t, got[0].StopLoss)
	assert.Zero(t, got[0].TakeProfit)
	assert.Zero(t, got[0].RiskReward())
	assert.InDelta(t, 42.0, *got[0].PnL, 1e-9)
}

func TestReadCSVRejectsBadRows(t *testing.T) {
	t.Parallel()

	in := strings.Join([]string{
		"instrument,direction,entry_price,realized_pl,close_time",
		"EUR_USD,LONG,1.0850,25.5,2024-03-01T15:00:00Z",
		"EUR_USD,SIDEWAYS,1.0850,10,2024-03-01T16:00:00Z",
		"GBP_USD,short,-1.25,10,2024-03-01T17:00:00Z",
		",LONG,1.1,10,2024-03-01T18:00:00Z",
		"USD_JPY,SHORT,150.1,abc,2024-03-01T19:00:00Z",
		"USD_JPY,SHORT,150.1,,",
	}, "\n")

	trades, rejected, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, trades, 2)
	assert.Equal(t, "EUR_USD", trades[0].Instrument)
	assert.InDelta(t, 25.5, *trades[0].PnL, 1e-9)
	assert.NotEmpty(t, trades[0].ID, "missing IDs are generated")
	assert.Equal(t, analytics.Open, trades[1].Status())

	require.Len(t, rejected, 4)
	lines := make([]int, len(rejected))
	for i, r := range rejected {
		lines[i] = r.Line
	}
	assert.Equal(t, []int{3, 4, 5, 6}, lines)
	assert.Contains(t, rejected[1].Reason, "entry_price must be positive")
	assert.Contains(t, rejected[3].String(), "line 6")
}

func TestReadCSVHeaderErrors(t *testing.T) {
	t.Parallel()

	trades, rejected, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.Empty(t, rejected)

	_, _, err = ReadCSV(strings.NewReader("trade_id,instrument\nT1,EUR_USD\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "direction")
}
