// Package store provides the persistent key-value slot backends that hold
// serialized application state such as the saved lead list.
package store

import (
	"context"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/config"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = eris.New("store: key not found")

// KV is a string-keyed slot store. Put overwrites the whole value.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open builds the backend named by cfg.Driver and prepares it for use.
func Open(ctx context.Context, cfg config.StoreConfig) (KV, error) {
	log := zap.L().With(zap.String("driver", cfg.Driver))

	switch cfg.Driver {
	case "", "file":
		log.Debug("opening file store", zap.String("dir", cfg.Dir))
		return NewFile(cfg.Dir)
	case "sqlite":
		dsn := filepath.Join(cfg.Dir, "leads.db")
		log.Debug("opening sqlite store", zap.String("dsn", dsn))
		st, err := NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close() //nolint:errcheck
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := NewPostgres(ctx, cfg.DatabaseURL, nil)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close() //nolint:errcheck
			return nil, err
		}
		return st, nil
	case "redis":
		log.Debug("opening redis store", zap.String("addr", cfg.Redis.Addr))
		return NewRedis(ctx, cfg.Redis)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
