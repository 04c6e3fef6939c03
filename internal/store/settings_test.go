package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/environmental-risk-aggregation/internal/config"
)

func TestSettingsStore(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	s := NewSettingsStore(mem, config.DefaultSettings, nil)

	assert.Equal(t, config.DefaultSettings, s.Load(ctx))

	t.Run("partial documents merge over defaults", func(t *testing.T) {
		require.NoError(t, mem.Put(ctx, SettingsKey, []byte(`{"weatherAPI":"openmeteo","alertThreshold":"high"}`)))
		got := s.Load(ctx)
		assert.Equal(t, "openmeteo", got.Provider)
		assert.Equal(t, "high", got.AlertThreshold)
		assert.True(t, got.UseOpenAQ)
		assert.Equal(t, int64(60000), got.RefreshIntervalMs)
	})

	t.Run("invalid documents fall back to defaults", func(t *testing.T) {
		require.NoError(t, mem.Put(ctx, SettingsKey, []byte(`{"weatherAPI":"darksky"}`)))
		assert.Equal(t, config.DefaultSettings, s.Load(ctx))

		require.NoError(t, mem.Put(ctx, SettingsKey, []byte(`[]`)))
		assert.Equal(t, config.DefaultSettings, s.Load(ctx))
	})

	t.Run("save round trip", func(t *testing.T) {
		want := config.DefaultSettings
		want.Provider = "weatherbit"
		want.APIKey = "secret"
		require.NoError(t, s.Save(ctx, want))
		assert.Equal(t, want, s.Load(ctx))

		want.AlertThreshold = "extreme"
		assert.Error(t, s.Save(ctx, want))
	})
}
