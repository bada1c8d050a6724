// Package storage keeps uploaded product images.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	apperrors "github.com/stephenstephen/review/pkg/errors"
	"github.com/stephenstephen/review/pkg/slug"
)

// Storage defines the interface for image storage operations.
type Storage interface {
	// Upload stores a file under input.Key and returns its key and URL.
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)

	// Delete removes a file by key. A missing key is a NotFound AppError.
	Delete(ctx context.Context, key string) error

	// Open returns the file content. The caller closes it.
	Open(ctx context.Context, key string) (io.ReadSeekCloser, *ObjectInfo, error)

	// URL returns the public URL for key.
	URL(key string) string
}

// UploadInput holds the parameters for uploading a file.
type UploadInput struct {
	Key         string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UploadResult holds the result of a successful upload.
type UploadResult struct {
	Key string `json:"filename"`
	URL string `json:"url"`
}

// ObjectInfo describes a stored file.
type ObjectInfo struct {
	ContentType string
	Size        int64
	ModTime     time.Time
}

// SniffLen is how many leading bytes DetectImage needs.
const SniffLen = 3072

var allowedImages = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DetectImage identifies the image type from the leading bytes of a file and
// returns its content type and canonical extension. Anything that is not a
// supported image is an InvalidInput error.
func DetectImage(head []byte) (contentType, ext string, err error) {
	mt := mimetype.Detect(head)
	for ct, e := range allowedImages {
		if mt.Is(ct) {
			return ct, e, nil
		}
	}
	return "", "", apperrors.InvalidInput(fmt.Sprintf("unsupported file type %s", mt.String()))
}

// NewKey builds a unique file name from the uploaded name, e.g.
// 0190f3c2-...-espresso-grinder.png.
func NewKey(originalName, ext string) string {
	base := strings.TrimSuffix(path.Base(originalName), path.Ext(originalName))
	s := slug.Truncate(slug.Generate(base), 64)
	id := uuid.Must(uuid.NewV7()).String()
	if s == "" {
		return id + ext
	}
	return id + "-" + s + ext
}

// ValidKey reports whether key is a bare file name that cannot escape the
// storage root.
func ValidKey(key string) bool {
	return key != "" && key != "." && key != ".." &&
		!strings.ContainsAny(key, `/\`) && !strings.HasPrefix(key, ".")
}

// PublicURL joins a base URL and a key under /uploads.
func PublicURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/uploads/" + key
}
