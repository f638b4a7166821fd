package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-cli/internal/config"
)

func TestOpen_File(t *testing.T) {
	kv, err := Open(context.Background(), config.StoreConfig{Driver: "file", Dir: t.TempDir()})
	require.NoError(t, err)
	defer kv.Close() //nolint:errcheck

	assert.IsType(t, &FileStore{}, kv)
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	kv, err := Open(ctx, config.StoreConfig{Driver: "sqlite", Dir: t.TempDir()})
	require.NoError(t, err)
	defer kv.Close() //nolint:errcheck

	assert.IsType(t, &SQLiteStore{}, kv)
	require.NoError(t, kv.Put(ctx, "k", []byte("v")))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "mongo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
