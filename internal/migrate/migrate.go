// Package migrate moves media still held in the local uploads directory
// into object storage and points stored references at the new keys.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bilgisen/ujala/internal/logger"
	"github.com/bilgisen/ujala/internal/models"
	"github.com/bilgisen/ujala/internal/objectstore"
	"github.com/bilgisen/ujala/internal/repository"
	"github.com/bilgisen/ujala/internal/storage"
	"golang.org/x/sync/errgroup"
)

// Report summarises one run.
type Report struct {
	Files    int
	Uploaded int
	News     int
	Users    int
	Removed  int
	Failed   []string
}

type Migrator struct {
	news        repository.NewsRepository
	users       repository.UserRepository
	store       objectstore.Store
	local       *storage.Local
	concurrency int
	// DryRun lists what would move without writing anything.
	DryRun bool
}

func New(news repository.NewsRepository, users repository.UserRepository, store objectstore.Store, local *storage.Local, concurrency int) *Migrator {
	return &Migrator{
		news:        news,
		users:       users,
		store:       store,
		local:       local,
		concurrency: max(concurrency, 1),
	}
}

// Run uploads every local file, then rewrites references one file at a
// time. A file is removed locally only after its references were saved.
// Failures are recorded per file and never stop the run.
func (m *Migrator) Run(ctx context.Context) (Report, error) {
	if !m.store.Enabled() {
		return Report{}, errors.New("object storage is not enabled")
	}
	log := logger.Component("migrate")

	names, err := m.local.List(ctx)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Files: len(names)}
	if m.DryRun {
		for _, name := range names {
			log.Info().Str("file", name).Str("key", objectstore.UploadKey(name)).Msg("Would migrate")
		}
		return rep, nil
	}

	uploaded := make([]bool, len(names))
	var (
		mu     sync.Mutex
		failed []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for i, name := range names {
		g.Go(func() error {
			key := objectstore.UploadKey(name)
			if err := m.store.UploadFromLocalPath(gctx, m.local.Path(name), key); err != nil {
				log.Error().Err(err).Str("file", name).Msg("Upload failed")
				mu.Lock()
				failed = append(failed, name)
				mu.Unlock()
				return nil
			}
			uploaded[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}
	rep.Failed = failed

	for i, name := range names {
		if !uploaded[i] {
			continue
		}
		rep.Uploaded++
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		news, users, err := m.rewrite(ctx, name)
		rep.News += news
		rep.Users += users
		if err != nil {
			log.Error().Err(err).Str("file", name).Msg("Rewriting references failed, keeping local copy")
			rep.Failed = append(rep.Failed, name)
			continue
		}
		if err := m.local.Remove(ctx, name); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("Failed to remove local copy")
			continue
		}
		rep.Removed++
		log.Info().Str("file", name).Int("news", news).Int("users", users).Msg("Migrated")
	}
	return rep, nil
}

// swap replaces local path references to name with its storage key.
func swap(ref *models.MediaRef, name string) bool {
	if ref.Kind != models.RefPath || ref.Filename() != name {
		return false
	}
	*ref = models.KeyRef(objectstore.UploadKey(name))
	return true
}

func (m *Migrator) rewrite(ctx context.Context, name string) (int, int, error) {
	items, err := m.news.FindMany(ctx, repository.Filter{MediaContains: name}, repository.ListOptions{})
	if err != nil {
		return 0, 0, fmt.Errorf("find news referencing %s: %w", name, err)
	}
	newsCount := 0
	for _, n := range items {
		changed := swap(&n.Image, name)
		changed = swap(&n.Video, name) || changed
		for i := range n.Gallery {
			changed = swap(&n.Gallery[i], name) || changed
		}
		if !changed {
			continue
		}
		media := repository.Set(n, repository.FieldImage, repository.FieldVideo, repository.FieldGallery)
		if _, err := m.news.Update(ctx, n.ID, media); err != nil {
			return newsCount, 0, fmt.Errorf("update news %s: %w", n.ID.Hex(), err)
		}
		newsCount++
	}

	if m.users == nil {
		return newsCount, 0, nil
	}
	accounts, err := m.users.List(ctx, "")
	if err != nil {
		return newsCount, 0, fmt.Errorf("list users: %w", err)
	}
	userCount := 0
	for _, u := range accounts {
		if !swap(&u.Avatar, name) {
			continue
		}
		if err := m.users.Update(ctx, u); err != nil {
			return newsCount, userCount, fmt.Errorf("update user %s: %w", u.ID.Hex(), err)
		}
		userCount++
	}
	return newsCount, userCount, nil
}
