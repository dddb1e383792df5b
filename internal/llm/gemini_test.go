package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientMissingKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	ctx := context.Background()

	c := NewClient(ctx, "gemini-2.5-flash", time.Second, 0)
	assert.False(t, c.Ready())
	assert.ErrorIs(t, c.Err(), ErrNotReady)

	_, err := c.Generate(ctx, "system", "user")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestNewClientTemperaturePerRole(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	ctx := context.Background()

	ranker := NewClient(ctx, "gemini-2.5-flash", time.Second, 0)
	analyzer := NewClient(ctx, "gemini-2.5-pro", time.Second, 0.2)

	assert.Equal(t, float32(0), ranker.temperature)
	assert.Equal(t, float32(0.2), analyzer.temperature)
}

func TestExtractText(t *testing.T) {
	t.Run("nil response", func(t *testing.T) {
		assert.Empty(t, extractText(nil))
	})
}
