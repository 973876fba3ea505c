package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// LocalStore keeps images as plain files under a directory. It is the
// default backend so the service runs with zero external configuration.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Backend() string { return "local" }

func (s *LocalStore) path(key string) string {
	// Keys are UUIDs from the design service; Base guards against
	// path traversal if that ever changes.
	return filepath.Join(s.dir, filepath.Base(key))
}

func (s *LocalStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	p := s.path(key)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write image file: %w", err)
	}
	log.Debug().Str("path", p).Int("bytes", len(data)).Str("content_type", contentType).
		Msg("image stored locally")
	return nil
}

func (s *LocalStore) Get(_ context.Context, key string) ([]byte, string, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, "", fmt.Errorf("read image file: %w", err)
	}
	return data, mimetype.Detect(data).String(), nil
}
