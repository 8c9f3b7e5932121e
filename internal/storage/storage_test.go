package storage

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

	file, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	sqlite, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)

	all := map[string]Backend{
		KindFile:   file,
		KindSQLite: sqlite,
		KindMemory: NewMemoryBackend(),
	}
	t.Cleanup(func() {
		for _, b := range all {
			b.Close()
		}
	})
	return all
}

func TestBackend_SetGetDelete(t *testing.T) {
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := b.Get(ctx, "token")
			require.NoError(t, err)
			assert.False(t, ok)

			err = b.Set(ctx, map[string]string{"token": "abc", "loginTime": "1700000000000"})
			require.NoError(t, err)

			v, ok, err := b.Get(ctx, "token")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "abc", v)

			v, ok, err = b.Get(ctx, "loginTime")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "1700000000000", v)

			// overwrite
			err = b.Set(ctx, map[string]string{"token": "def"})
			require.NoError(t, err)
			v, _, err = b.Get(ctx, "token")
			require.NoError(t, err)
			assert.Equal(t, "def", v)

			// missing keys are not an error
			err = b.Delete(ctx, "token", "loginTime", "refresh_token")
			require.NoError(t, err)

			_, ok, err = b.Get(ctx, "token")
			require.NoError(t, err)
			assert.False(t, ok)
			_, ok, err = b.Get(ctx, "loginTime")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFileBackend(t *testing.T) {
	t.Run("creates directory with correct permissions", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "authfront")

		b, err := NewFileBackend(dir)
		require.NoError(t, err)
		assert.NotNil(t, b)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm())

		info, err = os.Stat(b.Path())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("writes are visible to a new instance", func(t *testing.T) {
		ctx := context.Background()
		dir := t.TempDir()

		b1, err := NewFileBackend(dir)
		require.NoError(t, err)
		require.NoError(t, b1.Set(ctx, map[string]string{"token": "abc"}))

		b2, err := NewFileBackend(dir)
		require.NoError(t, err)
		v, ok, err := b2.Get(ctx, "token")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "abc", v)
	})

	t.Run("leaves no temp file behind", func(t *testing.T) {
		ctx := context.Background()
		dir := t.TempDir()

		b, err := NewFileBackend(dir)
		require.NoError(t, err)
		require.NoError(t, b.Set(ctx, map[string]string{"token": "abc"}))

		_, err = os.Stat(b.Path() + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("returns error on corrupt document", func(t *testing.T) {
		ctx := context.Background()
		dir := t.TempDir()

		b, err := NewFileBackend(dir)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(b.Path(), []byte("{not json"), 0600))

		_, _, err = b.Get(ctx, "token")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse session file")
	})

	t.Run("rejects use after close", func(t *testing.T) {
		ctx := context.Background()
		b, err := NewFileBackend(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, b.Close())

		err = b.Set(ctx, map[string]string{"token": "abc"})
		assert.ErrorIs(t, err, ErrClosed)
	})
}

func TestSQLiteBackend_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	b1, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	require.NoError(t, b1.Set(ctx, map[string]string{"token": "abc", "refresh_token": "r1"}))
	require.NoError(t, b1.Close())

	b2, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	defer b2.Close()

	v, ok, err := b2.Get(ctx, "refresh_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "r1", v)
}

func TestMemoryBackend_Snapshot(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.Set(ctx, map[string]string{"token": "abc"}))

	snap := b.Snapshot()
	snap["token"] = "mutated"

	v, _, err := b.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}

func TestOpen(t *testing.T) {
	t.Run("file by default", func(t *testing.T) {
		b, err := Open("", t.TempDir())
		require.NoError(t, err)
		defer b.Close()
		assert.IsType(t, &FileBackend{}, b)
	})

	t.Run("sqlite", func(t *testing.T) {
		dir := t.TempDir()
		b, err := Open(KindSQLite, dir)
		require.NoError(t, err)
		defer b.Close()
		assert.IsType(t, &SQLiteBackend{}, b)

		_, err = os.Stat(filepath.Join(dir, "session.db"))
		require.NoError(t, err)
	})

	t.Run("memory", func(t *testing.T) {
		b, err := Open(KindMemory, "")
		require.NoError(t, err)
		assert.IsType(t, &MemoryBackend{}, b)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Open("redis", t.TempDir())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownBackend)
	})
}
