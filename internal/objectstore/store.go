// Package objectstore abstracts the blob store that holds uploaded media.
package objectstore

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
)

// UploadsPrefix is the key namespace for uploaded media.
const UploadsPrefix = "uploads/"

// Store is a key/value blob store with public and signed URL issuance.
// When Enabled is false every mutating call fails with StorageUnavailable.
type Store interface {
	Enabled() bool
	Exists(ctx context.Context, key string) (bool, error)
	UploadBuffer(ctx context.Context, data []byte, key, contentType string) error
	UploadFromLocalPath(ctx context.Context, path, key string) error
	PublicURL(key string) string
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// UploadKey maps a file name to its key in the uploads namespace.
func UploadKey(filename string) string {
	return UploadsPrefix + strings.TrimPrefix(filename, "/")
}

// BuildPublicURL picks the public base, then endpoint/bucket, then the
// virtual-hosted S3 form.
func BuildPublicURL(publicBase, endpoint, bucket, key string) string {
	publicBase = strings.TrimRight(publicBase, "/")
	endpoint = strings.TrimRight(endpoint, "/")
	switch {
	case publicBase != "":
		return publicBase + "/" + escapeSegments(key)
	case endpoint != "":
		return endpoint + "/" + bucket + "/" + escapeSegments(key)
	default:
		return "https://" + bucket + ".s3.amazonaws.com/" + url.PathEscape(key)
	}
}

func escapeSegments(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

var errDisabled = apperr.StorageUnavailable("object storage is not enabled", nil)

// Disabled is the Store used when object storage is switched off.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) Exists(context.Context, string) (bool, error) { return false, nil }

func (Disabled) PublicURL(string) string { return "" }

func (Disabled) Delete(context.Context, string) error { return errDisabled }

func (Disabled) UploadFromLocalPath(context.Context, string, string) error { return errDisabled }

func (Disabled) UploadBuffer(context.Context, []byte, string, string) error {
	return errDisabled
}

func (Disabled) SignedURL(context.Context, string, time.Duration) (string, error) {
	return "", errDisabled
}
