package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	st, err := NewFile(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	return st
}

func TestFile_GetMissing(t *testing.T) {
	st := newTestFileStore(t)

	data, err := st.Get(context.Background(), "leads")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, data)
}

func TestFile_PutAndGet(t *testing.T) {
	st := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "leads", []byte(`[{"id":"1"}]`)))

	data, err := st.Get(ctx, "leads")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(data))
}

func TestFile_Overwrite(t *testing.T) {
	st := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "leads", []byte("original")))
	require.NoError(t, st.Put(ctx, "leads", []byte("updated")))

	data, err := st.Get(ctx, "leads")
	require.NoError(t, err)
	assert.Equal(t, "updated", string(data))
}

func TestFile_NoTempFilesLeftBehind(t *testing.T) {
	st := newTestFileStore(t)
	require.NoError(t, st.Put(context.Background(), "leads", []byte("x")))

	matches, err := filepath.Glob(filepath.Join(st.dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFile_KeySanitized(t *testing.T) {
	st := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "../escape/leads", []byte("x")))

	_, err := os.Stat(filepath.Join(st.dir, ".._escape_leads.json"))
	assert.NoError(t, err)

	data, err := st.Get(ctx, "../escape/leads")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestNewFile_RequiresDir(t *testing.T) {
	_, err := NewFile("")
	assert.Error(t, err)
}
