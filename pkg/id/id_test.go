package id

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsUniqueAndSorted(t *testing.T) {
	prev := ""
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		v := New()
		require.Len(t, v, 26)
		assert.False(t, seen[v], "duplicate id %s", v)
		seen[v] = true
		assert.Greater(t, v, prev)
		prev = v
	}
}

func TestAtEmbedsTimestamp(t *testing.T) {
	at := time.Date(2024, 4, 10, 9, 30, 0, 0, time.UTC)
	v, err := ulid.Parse(At(at))
	require.NoError(t, err)
	assert.Equal(t, uint64(at.UnixMilli()), v.Time())

	early, err := ulid.Parse(At(time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), early.Time())
}
