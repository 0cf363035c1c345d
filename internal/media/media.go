// Package media stores uploaded recipe images and avatars.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	// ErrInvalidDataURI is returned when an upload is not a base64 image data URI
	ErrInvalidDataURI = errors.New("image must be a base64 encoded data URI")
	// ErrUnsupportedImage is returned for image types outside knownExtensions
	// and for payloads whose bytes do not match the declared type
	ErrUnsupportedImage = fmt.Errorf("%w: only png, jpeg, gif and webp images are accepted", ErrInvalidDataURI)
)

// Upload is a decoded image payload
type Upload struct {
	Data        []byte
	ContentType string
	Ext         string
}

// Store persists uploads under opaque keys and resolves them to public URLs
type Store interface {
	// Save writes the upload below prefix and returns its key
	Save(ctx context.Context, prefix string, up *Upload) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

var knownExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DecodeDataURI parses "data:image/<type>;base64,<payload>". The payload must
// be one of the raster formats in knownExtensions and its content must agree
// with the declared type.
func DecodeDataURI(uri string) (*Upload, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return nil, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrInvalidDataURI
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok || !strings.HasPrefix(contentType, "image/") {
		return nil, ErrInvalidDataURI
	}

	contentType = strings.ToLower(contentType)
	ext, ok := knownExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidDataURI
	}
	if !mimetype.Detect(data).Is(contentType) {
		return nil, ErrUnsupportedImage
	}

	return &Upload{Data: data, ContentType: contentType, Ext: ext}, nil
}

// newKey builds a collision free object key such as "recipes/<uuid>.png"
func newKey(prefix string, up *Upload) string {
	return path.Join(prefix, uuid.NewString()+up.Ext)
}

// joinURL appends key to base with exactly one slash between them
func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}

// Open builds the store selected by IMAGE_STORAGE
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.ImageStorage {
	case "s3":
		return NewS3Store(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	case "local", "":
		return NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	default:
		return nil, fmt.Errorf("unsupported image storage: %s", cfg.ImageStorage)
	}
}
