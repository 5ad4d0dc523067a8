// Package media resolves stored media references into servable URLs and
// turns uploads into references.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/logger"
	"github.com/bilgisen/ujala/internal/models"
	"github.com/bilgisen/ujala/internal/objectstore"
)

// LocalFiles is the on-disk uploads directory.
type LocalFiles interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Path(name string) string
	Exists(name string) bool
	Remove(ctx context.Context, name string) error
}

// Config holds the resolver settings.
type Config struct {
	// StoragePublicBase is the configured public bucket URL. Absolute URLs
	// under it are treated as managed uploads.
	StoragePublicBase string
	// StorageEndpoint is the bucket's own endpoint URL; URLs under it are
	// managed too.
	StorageEndpoint string
	// ServerURL is this server's public origin. Only its /uploads/ paths are
	// managed.
	ServerURL string
	// PublicDir is the static root that relative fallback assets live in.
	PublicDir string
	// Fallback is served when a local file is missing. Empty means not found.
	Fallback       string
	SignedURLTTL   time.Duration
	StorageTimeout time.Duration
	MaxConcurrency int
}

// Target is the outcome of serve-time resolution: a redirect or a local file.
type Target struct {
	Redirect string
	File     string
}

// ServeOptions selects signed URLs for protected access.
type ServeOptions struct {
	Signed bool
}

type Resolver struct {
	store objectstore.Store
	local LocalFiles
	cfg   Config
}

func NewResolver(store objectstore.Store, local LocalFiles, cfg Config) *Resolver {
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = 15 * time.Minute
	}
	if cfg.StorageTimeout <= 0 {
		cfg.StorageTimeout = 20 * time.Second
	}
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	return &Resolver{store: store, local: local, cfg: cfg}
}

// StorageEnabled reports whether uploads go to the object store.
func (r *Resolver) StorageEnabled() bool {
	return r.store.Enabled()
}

// managed reports whether an absolute URL points at an upload this server
// owns. Third-party URLs are never managed, whatever their path looks like.
func (r *Resolver) managed(u string) bool {
	under := func(base string) bool {
		base = strings.TrimRight(strings.TrimSpace(base), "/")
		return base != "" && strings.HasPrefix(u, base+"/")
	}
	if under(r.cfg.StoragePublicBase) || under(r.cfg.StorageEndpoint) {
		return true
	}
	return under(strings.TrimRight(r.cfg.ServerURL, "/") + "/uploads")
}

// inUploads reports whether a root-relative path lies in the uploads directory.
func inUploads(p string) bool {
	return strings.HasPrefix(path.Clean("/"+p), "/uploads/")
}

// Display returns the URL to put in listing payloads. It performs no I/O.
func (r *Resolver) Display(ref models.MediaRef) string {
	if ref.IsZero() {
		return ""
	}
	enabled := r.store.Enabled()

	switch ref.Kind {
	case models.RefURL:
		if enabled && r.managed(ref.Value) {
			if name := ref.Filename(); name != "" {
				return r.store.PublicURL(objectstore.UploadKey(name))
			}
		}
		return ref.Value
	case models.RefKey:
		if enabled {
			return r.store.PublicURL(ref.Value)
		}
		return "/" + strings.TrimPrefix(ref.Value, "/")
	case models.RefPath:
		if enabled && inUploads(ref.Value) {
			if name := ref.Filename(); name != "" {
				return r.store.PublicURL(objectstore.UploadKey(name))
			}
		}
		return ref.Value
	default:
		return ref.Value
	}
}

// Serve resolves a reference for a media request. Object storage is
// consulted first when enabled, then the local uploads directory, then the
// fallback asset. A missing file with no usable fallback is NotFound.
func (r *Resolver) Serve(ctx context.Context, ref models.MediaRef, opts ServeOptions) (Target, error) {
	if ref.IsZero() {
		return Target{}, apperr.NotFound("no media")
	}
	log := logger.Get()
	enabled := r.store.Enabled()
	name := ref.Filename()

	if ref.Kind == models.RefURL {
		if !enabled || !r.managed(ref.Value) || name == "" {
			return Target{Redirect: ref.Value}, nil
		}
		key := objectstore.UploadKey(name)
		exists, err := r.exists(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Error checking object existence")
		}
		if exists {
			return Target{Redirect: r.storageURL(ctx, key, opts)}, nil
		}
		return Target{Redirect: ref.Value}, nil
	}

	if ref.Kind == models.RefPath && !inUploads(ref.Value) {
		return r.static(ref.Value), nil
	}

	if enabled && name != "" {
		key := objectstore.UploadKey(name)
		if ref.Kind == models.RefKey {
			key = strings.TrimPrefix(ref.Value, "/")
		}
		exists, err := r.exists(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Error checking object existence")
		}
		if exists {
			return Target{Redirect: r.storageURL(ctx, key, opts)}, nil
		}
	}

	if name != "" && r.local.Exists(name) {
		return Target{File: r.local.Path(name)}, nil
	}
	return r.fallback()
}

// static serves a path outside the uploads directory from the public root,
// or hands it back unchanged when no such file exists there.
func (r *Resolver) static(p string) Target {
	if r.cfg.PublicDir != "" {
		file := filepath.Join(r.cfg.PublicDir, filepath.Clean("/"+p))
		if info, err := os.Stat(file); err == nil && info.Mode().IsRegular() {
			return Target{File: file}
		}
	}
	return Target{Redirect: p}
}

func (r *Resolver) exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.StorageTimeout)
	defer cancel()
	return r.store.Exists(ctx, key)
}

// storageURL prefers a signed URL when asked for one and falls back to the public URL.
func (r *Resolver) storageURL(ctx context.Context, key string, opts ServeOptions) string {
	if opts.Signed {
		ctx, cancel := context.WithTimeout(ctx, r.cfg.StorageTimeout)
		defer cancel()
		signed, err := r.store.SignedURL(ctx, key, r.cfg.SignedURLTTL)
		if err == nil {
			return signed
		}
		logger.Get().Warn().Err(err).Str("key", key).Msg("Signing failed, using public URL")
	}
	return r.store.PublicURL(key)
}

func (r *Resolver) fallback() (Target, error) {
	fb := strings.TrimSpace(r.cfg.Fallback)
	if fb == "" {
		return Target{}, apperr.NotFound("media file not found")
	}
	if models.IsAbsoluteURL(fb) {
		return Target{Redirect: fb}, nil
	}
	path := filepath.Join(r.cfg.PublicDir, filepath.Clean("/"+fb))
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return Target{File: path}, nil
	}
	return Target{}, apperr.NotFound("media file not found")
}

// Remove deletes the blobs behind a reference. External URLs are left alone.
func (r *Resolver) Remove(ctx context.Context, ref models.MediaRef) error {
	if ref.IsZero() {
		return nil
	}
	name := ref.Filename()
	var key string
	switch ref.Kind {
	case models.RefKey:
		key = strings.TrimPrefix(ref.Value, "/")
	case models.RefPath:
		if !inUploads(ref.Value) {
			return nil
		}
		key = objectstore.UploadKey(name)
	case models.RefURL:
		if !r.managed(ref.Value) {
			return nil
		}
		key = objectstore.UploadKey(name)
	}
	if name == "" {
		return nil
	}

	var errs []error
	if r.store.Enabled() && key != "" {
		sctx, cancel := context.WithTimeout(ctx, r.cfg.StorageTimeout)
		err := r.store.Delete(sctx, key)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("delete object %s: %w", key, err))
		}
	}
	if err := r.local.Remove(ctx, name); err != nil {
		errs = append(errs, fmt.Errorf("remove local %s: %w", name, err))
	}
	return errors.Join(errs...)
}
