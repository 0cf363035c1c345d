package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/metrics"
	"github.com/sirupsen/logrus"
)

// LocalStore keeps uploads on disk below root; the HTTP server exposes
// root under baseURL.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &LocalStore{root: root, baseURL: baseURL}, nil
}

// Root is the directory served as static media
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Save(ctx context.Context, prefix string, up *Upload) (string, error) {
	key := newKey(prefix, up)
	target, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		metrics.ImageStoreOperations.WithLabelValues("local", "save", "error").Inc()
		return "", err
	}
	if err := os.WriteFile(target, up.Data, 0o644); err != nil {
		metrics.ImageStoreOperations.WithLabelValues("local", "save", "error").Inc()
		return "", err
	}
	metrics.ImageStoreOperations.WithLabelValues("local", "save", "ok").Inc()
	logrus.WithFields(logrus.Fields{"key": key, "bytes": len(up.Data)}).Debug("Image stored on disk")
	return key, nil
}

// Delete removes the file; a missing file is not an error
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		metrics.ImageStoreOperations.WithLabelValues("local", "delete", "error").Inc()
		return err
	}
	metrics.ImageStoreOperations.WithLabelValues("local", "delete", "ok").Inc()
	return nil
}

func (s *LocalStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return joinURL(s.baseURL, key)
}

// resolve maps a key to a path that cannot escape root
func (s *LocalStore) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}
