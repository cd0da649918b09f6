package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps objects on the local filesystem under
// <root>/customer/<key>. It is the development and single-node fallback.
type LocalStore struct {
	root string
}

// NewLocalStore creates a filesystem-backed object store.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) path(ref string) string {
	// refs are keys relative to <root>/customer; reject traversal
	clean := filepath.Clean(strings.TrimPrefix(ref, "/"))
	return filepath.Join(s.root, "customer", clean)
}

func (s *LocalStore) Save(ctx context.Context, key string, data []byte) (string, error) {
	target := s.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write object %s: %w", key, err)
	}
	return key, nil
}

func (s *LocalStore) Load(ctx context.Context, ref string) ([]byte, error) {
	data, err := os.ReadFile(s.path(ref))
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", ref, err)
	}
	return data, nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	err := os.Remove(s.path(ref))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object %s: %w", ref, err)
	}
	return nil
}
