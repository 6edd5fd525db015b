package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazuruo/aoss-console/internal/errors"
)

func TestScreenKey(t *testing.T) {
	assert.Equal(t, Key("comments-Create Collection Group"), ScreenKey("Create Collection Group"))
	assert.Equal(t, "comments-show-pins", ShowPinsKey.String())
	assert.NotEqual(t, ShowPinsKey, ScreenKey("Collections"))
}

// stores runs fn against every Store implementation.
func stores(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemory())
	})
	t.Run("sqlite-file", func(t *testing.T) {
		s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "local.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})
	t.Run("sqlite-memory", func(t *testing.T) {
		s, err := OpenSQLite(MemoryPath)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})
}

func TestStore_GetPutDelete(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		k := ScreenKey("Collections")

		_, ok, err := s.Get(ctx, k)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.Put(ctx, k, []byte(`[1]`)))
		require.NoError(t, s.Put(ctx, k, []byte(`[1,2]`)))

		got, ok, err := s.Get(ctx, k)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[1,2]`, string(got))

		require.NoError(t, s.Delete(ctx, k))
		require.NoError(t, s.Delete(ctx, k))
		_, ok, err = s.Get(ctx, k)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestStore_Keys(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, PutJSON(ctx, s, ScreenKey("Indexes"), []string{}))
		require.NoError(t, PutJSON(ctx, s, ScreenKey("Collections"), []string{}))
		require.NoError(t, PutJSON(ctx, s, ShowPinsKey, true))
		require.NoError(t, s.Put(ctx, Key("other"), []byte("x")))

		keys, err := s.Keys(ctx, "comments-")
		require.NoError(t, err)
		assert.Equal(t, []Key{"comments-Collections", "comments-Indexes", "comments-show-pins"}, keys)

		screens, err := ScreenKeys(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, []string{"Collections", "Indexes"}, screens)
	})
}

func TestJSONHelpers(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		type note struct {
			Text string `json:"text"`
			PinX *int   `json:"pinX,omitempty"`
		}
		x := 42
		in := []note{{Text: "first", PinX: &x}, {Text: "second"}}
		require.NoError(t, PutJSON(ctx, s, ScreenKey("Details"), in))

		out, ok, err := GetJSON[[]note](ctx, s, ScreenKey("Details"))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, in, out)

		missing, ok, err := GetJSON[bool](ctx, s, ShowPinsKey)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, missing)

		require.NoError(t, s.Put(ctx, ShowPinsKey, []byte("not json")))
		_, _, err = GetJSON[bool](ctx, s, ShowPinsKey)
		assert.True(t, errors.IsIO(err))
	})
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, PutJSON(ctx, s, ShowPinsKey, false))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	show, ok, err := GetJSON[bool](ctx, s, ShowPinsKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, show)
}
