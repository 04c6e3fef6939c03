package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	dir := t.TempDir()

	file, err := NewFileStore(filepath.Join(dir, "nested", "state.json"))
	require.NoError(t, err)

	sqlite, err := NewSQLiteStore(context.Background(), filepath.Join(dir, "state.db"))
	require.NoError(t, err)

	out := map[string]Backend{
		"memory": NewMemoryStore(),
		"file":   file,
		"sqlite": sqlite,
	}

	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		pool, err := NewRedisPool(addr)
		require.NoError(t, err)
		out["redis"] = NewRedisStore(pool, "envrisk-test-"+filepath.Base(dir))
	}

	t.Cleanup(func() {
		for _, b := range out {
			b.Close()
		}
	})
	return out
}

func TestBackendContract(t *testing.T) {
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Get(ctx, "missing")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, b.Put(ctx, "k", []byte(`{"a":1}`)))
			got, err := b.Get(ctx, "k")
			require.NoError(t, err)
			assert.JSONEq(t, `{"a":1}`, string(got))

			require.NoError(t, b.Put(ctx, "k", []byte(`[1,2]`)))
			got, err = b.Get(ctx, "k")
			require.NoError(t, err)
			assert.JSONEq(t, `[1,2]`, string(got))

			require.NoError(t, b.Put(ctx, "other", []byte(`"x"`)))
			got, err = b.Get(ctx, "k")
			require.NoError(t, err)
			assert.JSONEq(t, `[1,2]`, string(got))
		})
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	in := []byte(`"abc"`)
	require.NoError(t, s.Put(ctx, "k", in))
	in[1] = 'z'

	out, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(out))
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)

	assert.Error(t, s.Put(ctx, "k", []byte(`not json`)))

	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0o644))
	_, err = s.Get(ctx, "k")
	assert.Error(t, err)

	// A corrupt file does not block writes.
	require.NoError(t, s.Put(ctx, "k", []byte(`1`)))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "1", string(got))

	// Survives reopening.
	s2, err := NewFileStore(path)
	require.NoError(t, err)
	got, err = s2.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "1", string(got))
}
