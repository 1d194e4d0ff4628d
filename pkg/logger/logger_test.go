package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	for _, enc := range []string{"json", "console"} {
		l, err := New("debug", enc)
		require.NoError(t, err)
		assert.NotNil(t, l)
	}

	_, err := New("loud", "json")
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	base := Nop()
	child := base.With(StringField("component", "refresh"))

	assert.Same(t, base, base.FromContext(context.Background()))

	ctx := NewContext(context.Background(), child)
	assert.Same(t, child, base.FromContext(ctx))
}
