package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mft-data/fitmenthub/internal/pkg/env"
)

// ObjectStore is the object-storage collaborator. The ingestion engine holds
// only the returned reference, never the bytes.
type ObjectStore interface {
	Save(ctx context.Context, key string, data []byte) (ref string, err error)
	Load(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}

// UploadKey builds the canonical object key for an uploaded file:
// uploads/<uuid>_<original-name>.
func UploadKey(originalName string) string {
	name := filepath.Base(strings.TrimSpace(originalName))
	if name == "" || name == "." {
		name = "upload.bin"
	}
	return fmt.Sprintf("uploads/%s_%s", uuid.New().String(), name)
}

// NewFromEnv selects the backend: an S3-compatible bucket when storage
// credentials are configured, otherwise the local filesystem under
// STORAGE_DIR.
func NewFromEnv() (ObjectStore, error) {
	if env.GetEnv("AZURE_STORAGE_ACCOUNT_KEY", "") != "" || env.GetEnv("S3_ACCESS_KEY_ID", "") != "" {
		return NewS3StoreFromEnv()
	}
	return NewLocalStore(env.GetEnv("STORAGE_DIR", "./storage")), nil
}
