package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/hivemind/support-engine/internal/config"
	apperrors "github.com/hivemind/support-engine/pkg/util/errorutil"
)

// BlobStore persists attachment bytes and returns a publicly resolvable URL.
type BlobStore interface {
	Save(ctx context.Context, path string, data []byte) (string, error)
}

// Uploader validates and stores message attachments. Validation happens
// before any store call: an oversized or disallowed blob never leaves the
// client.
type Uploader struct {
	store   BlobStore
	maxSize int64
	allowed []string
}

// NewUploader builds an uploader from attachment configuration.
func NewUploader(store BlobStore, cfg config.AttachmentConfig) *Uploader {
	return &Uploader{
		store:   store,
		maxSize: cfg.MaxSizeBytes,
		allowed: cfg.AllowedTypes,
	}
}

// Upload validates the blob and stores it under the ticket's namespace with
// a randomized filename. Returns the reference URL consumed as a Message
// attachment.
func (u *Uploader) Upload(ctx context.Context, ticketID, filename, mimeType string, data []byte) (string, error) {
	if int64(len(data)) > u.maxSize {
		return "", apperrors.NewValidationError("file exceeds size limit", map[string]any{
			"size_bytes": len(data),
			"max_bytes":  u.maxSize,
		})
	}
	if !u.typeAllowed(mimeType) {
		return "", apperrors.NewValidationError("file type not allowed", map[string]any{
			"mime_type": mimeType,
		})
	}

	name := uuid.NewString()
	if ext := filepath.Ext(filename); ext != "" {
		name += ext
	}
	url, err := u.store.Save(ctx, ticketID+"/"+name, data)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	return url, nil
}

func (u *Uploader) typeAllowed(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	for _, prefix := range u.allowed {
		if strings.HasPrefix(mimeType, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

// DiskStore keeps attachments on the local filesystem, served under a
// public base URL.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore builds a disk-backed BlobStore rooted at dir.
func NewDiskStore(cfg config.AttachmentConfig) *DiskStore {
	return &DiskStore{dir: cfg.Dir, baseURL: strings.TrimRight(cfg.PublicBaseURL, "/")}
}

// Save writes the blob and returns its public URL.
func (d *DiskStore) Save(_ context.Context, path string, data []byte) (string, error) {
	full := filepath.Join(d.dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create attachment dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return d.baseURL + "/" + path, nil
}
