// Package storage keeps uploaded profile pictures in an object store:
// either a directory on local disk or an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/hydratr/internal/common"
	"github.com/dmitrijs2005/hydratr/internal/server/config"
	"github.com/google/uuid"
)

// Storage stores opaque objects under string keys.
type Storage interface {
	Upload(ctx context.Context, key string, contentType string, data io.Reader) error
	// Download returns common.ErrorNotFound for a missing key.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete is a no-op for a missing key.
	Delete(ctx context.Context, key string) error
}

// Presigner is implemented by backends that can hand out a temporary
// direct download URL instead of proxying the bytes.
type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

const (
	TypeLocal = "local"
	TypeS3    = "s3"
)

// New builds the backend selected by cfg.StorageType.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageType {
	case TypeLocal:
		return NewLocalStorage(cfg.StorageLocalPath)
	case TypeS3:
		return NewS3Storage(ctx, S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown storage type: %q", cfg.StorageType)
	}
}

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// ContentType returns the MIME type of an allowed picture file name.
func ContentType(filename string) (string, bool) {
	ct, ok := imageTypes[strings.ToLower(filepath.Ext(filename))]
	return ct, ok
}

// ProfilePictureKey derives a fresh storage key for an uploaded picture.
// Only png, jpg, jpeg and gif are accepted; other names wrap
// common.ErrorValidation.
func ProfilePictureKey(userID int64, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := imageTypes[ext]; !ok {
		return "", fmt.Errorf("%w: unsupported picture type %q", common.ErrorValidation, ext)
	}
	return fmt.Sprintf("profile_pictures/%d/%s%s", userID, uuid.NewString(), ext), nil
}
