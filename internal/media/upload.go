package media

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bilgisen/ujala/internal/logger"
	"github.com/bilgisen/ujala/internal/models"
	"github.com/bilgisen/ujala/internal/objectstore"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Upload is an incoming file.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Attach stores an upload and returns its single authoritative reference.
// The blob is always written locally first. With object storage enabled it
// is then uploaded and the reference becomes a storage key; if that upload
// fails the local path is kept instead.
func (r *Resolver) Attach(ctx context.Context, up Upload) (models.MediaRef, error) {
	log := logger.Get()
	name := uploadName(up.Filename)

	_, saveErr := r.local.Save(ctx, name, up.Data)
	if saveErr != nil {
		log.Warn().Err(saveErr).Str("file", name).Msg("Failed to write upload to disk")
	}

	if !r.store.Enabled() {
		if saveErr != nil {
			return models.MediaRef{}, fmt.Errorf("store upload %s: %w", name, saveErr)
		}
		return models.PathRef("/uploads/" + name), nil
	}

	key := objectstore.UploadKey(name)
	sctx, cancel := context.WithTimeout(ctx, r.cfg.StorageTimeout)
	err := r.store.UploadBuffer(sctx, up.Data, key, up.ContentType)
	cancel()
	if err != nil {
		if saveErr != nil {
			return models.MediaRef{}, fmt.Errorf("store upload %s: %w", name, err)
		}
		log.Warn().Err(err).Str("key", key).Msg("Object storage upload failed, keeping local file")
		return models.PathRef("/uploads/" + name), nil
	}

	if saveErr == nil {
		if err := r.local.Remove(ctx, name); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("Failed to remove local copy after upload")
		}
	}
	return models.KeyRef(key), nil
}

// AttachGallery attaches every element with bounded concurrency. The
// result keeps input order; an element that cannot be stored at all is
// dropped without affecting its siblings.
func (r *Resolver) AttachGallery(ctx context.Context, uploads []Upload) []models.MediaRef {
	if len(uploads) == 0 {
		return nil
	}
	refs := make([]models.MediaRef, len(uploads))

	var g errgroup.Group
	g.SetLimit(r.cfg.MaxConcurrency)
	for i, up := range uploads {
		g.Go(func() error {
			ref, err := r.Attach(ctx, up)
			if err != nil {
				logger.Get().Warn().Err(err).Int("index", i).Str("file", up.Filename).Msg("Failed to process gallery file")
				return nil
			}
			refs[i] = ref
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.MediaRef, 0, len(refs))
	for _, ref := range refs {
		if !ref.IsZero() {
			out = append(out, ref)
		}
	}
	return out
}

func uploadName(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if len(ext) > 10 {
		ext = ""
	}
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}
