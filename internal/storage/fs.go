package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-noteflow/internal/logging"
	"github.com/goliatone/go-noteflow/pkg/interfaces"
)

// FSStore is an ObjectStore backed by a directory tree. Object keys map
// directly to relative paths under the root. Writes go through a temp file
// and rename so a crashed write never leaves a truncated object behind.
type FSStore struct {
	root   string
	logger interfaces.Logger
}

var _ interfaces.ObjectStore = (*FSStore)(nil)

type FSOption func(*FSStore)

func WithFSLogger(logger interfaces.Logger) FSOption {
	return func(s *FSStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewFSStore creates the root directory if needed and returns a store
// rooted there.
func NewFSStore(root string, opts ...FSOption) (*FSStore, error) {
	if root == "" {
		return nil, errors.New("storage: fs store requires a root directory")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root %s: %w", root, err)
	}

	store := &FSStore{
		root:   root,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

func (s *FSStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("storage: prepare %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".put-*")
	if err != nil {
		return fmt.Errorf("storage: stage %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: flush %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: commit %s: %w", key, err)
	}

	s.logger.Debug("object stored", "key", key, "bytes", len(data), "content_type", contentType)
	return nil
}

func (s *FSStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, interfaces.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return data, nil
}

func (s *FSStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path, err := s.resolve(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("storage: stat %s: %w", key, err)
	}
	return true, nil
}

// resolve maps a key to an absolute path and rejects keys that escape the
// root.
func (s *FSStore) resolve(key string) (string, error) {
	if key == "" {
		return "", errors.New("storage: empty object key")
	}

	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == ".." || filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: invalid object key %q", key)
	}
	return filepath.Join(s.root, cleaned), nil
}
