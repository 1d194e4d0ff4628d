package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketIndexBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pnl  float64
		want string
	}{
		{-5000, "<= -1000"},
		{-1000, "<= -1000"},
		{-999.99, "-1000 to -500"},
		{-500, "-1000 to -500"},
		{-499, "-500 to -100"},
		{-100, "-500 to -100"},
		{-99.5, "-100 to 0"},
		{-0.01, "-100 to 0"},
		{0, "0 to 100"},
		{100, "0 to 100"},
		{100.01, "100 to 500"},
		{500, "100 to 500"},
		{1000, "500 to 1000"},
		{1000.01, "> 1000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, distributionRanges[bucketIndex(tt.pnl)], "pnl %v", tt.pnl)
	}
}

func TestDistributionCountsSumToClosedTrades(t *testing.T) {
	t.Parallel()

	rep, err := Compute(sampleTrades(), 10000)
	require.NoError(t, err)

	require.Len(t, rep.PnLDistribution, 8)
	total := 0
	for _, b := range rep.PnLDistribution {
		total += b.Count
	}
	assert.Equal(t, rep.TotalTrades, total)

	// -1500 is the only trade at or below -1000.
	assert.Equal(t, 1, rep.PnLDistribution[0].Count)
	// 1300 and 2100 are above 1000.
	assert.Equal(t, 2, rep.PnLDistribution[7].Count)
}
