package store

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gofrs/flock"
	"github.com/rotisserie/eris"
)

const lockRetryDelay = 50 * time.Millisecond

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileStore keeps each key in its own JSON file under a directory.
type FileStore struct {
	dir string
}

// NewFile creates a FileStore rooted at dir, creating the directory if needed.
func NewFile(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, eris.New("file: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "file: create dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, unsafeKeyChars.ReplaceAllString(key, "_")+".json")
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "file: read %s", key)
	}
	return data, nil
}

// Put writes value to a temp file and renames it over the slot while holding
// an advisory lock, so readers never see a partial write.
func (s *FileStore) Put(ctx context.Context, key string, value []byte) error {
	target := s.path(key)

	lock := flock.New(target + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return eris.Wrapf(err, "file: lock %s", key)
	}
	if !locked {
		return eris.Errorf("file: lock %s: not acquired", key)
	}
	defer lock.Unlock() //nolint:errcheck

	tmp, err := os.CreateTemp(s.dir, filepath.Base(target)+".*.tmp")
	if err != nil {
		return eris.Wrapf(err, "file: create temp for %s", key)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(value); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrapf(err, "file: write %s", key)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "file: close temp for %s", key)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return eris.Wrapf(err, "file: rename into %s", key)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
