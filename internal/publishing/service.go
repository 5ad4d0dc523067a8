package publishing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/logger"
	"github.com/bilgisen/ujala/internal/media"
	"github.com/bilgisen/ujala/internal/models"
	"github.com/bilgisen/ujala/internal/repository"
	"github.com/bilgisen/ujala/internal/slug"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaField names a servable media slot of an item.
type MediaField string

const (
	FieldImage   MediaField = "image"
	FieldVideo   MediaField = "video"
	FieldGallery MediaField = "gallery"
)

// CreateInput is a new submission.
type CreateInput struct {
	Title       string `validate:"required"`
	Description string `validate:"required"`
	Content     string `validate:"required"`
	Author      string
	Location    string
	Category    string
	Tags        []string
	Kind        models.ContentKind
	EventDate   *time.Time
	EventVenue  string

	Image   *media.Upload
	Video   *media.Upload
	Gallery []media.Upload
}

// MediaInput carries replacement uploads for an edit.
type MediaInput struct {
	Image   *media.Upload
	Video   *media.Upload
	Gallery []media.Upload
}

type Service struct {
	news     repository.NewsRepository
	media    *media.Resolver
	validate *validator.Validate
	now      func() time.Time
}

func NewService(news repository.NewsRepository, resolver *media.Resolver) *Service {
	return &Service{
		news:     news,
		media:    resolver,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) uniqueSlug(ctx context.Context, title string, self primitive.ObjectID) (string, error) {
	return slug.EnsureUnique(ctx, slug.Generate(title), func(ctx context.Context, candidate string) (bool, error) {
		return s.news.SlugExists(ctx, candidate, self)
	})
}

func (s *Service) checkInput(in CreateInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Content = strings.TrimSpace(in.Content)
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperr.Validation("Missing required fields")
		}
		return fmt.Errorf("validate input: %w", err)
	}
	return nil
}

func (s *Service) attach(ctx context.Context, up *media.Upload) (models.MediaRef, error) {
	if up == nil || len(up.Data) == 0 {
		return models.MediaRef{}, nil
	}
	ref, err := s.media.Attach(ctx, *up)
	if err != nil {
		return models.MediaRef{}, apperr.StorageUnavailable("failed to store media", err)
	}
	return ref, nil
}

// Create submits a new item through flow. Validation runs before any slug
// or media work; a slug or shortId collision with a concurrent writer is
// reported as a conflict.
func (s *Service) Create(ctx context.Context, in CreateInput, flow Flow, actor Actor) (*models.News, error) {
	if err := s.checkInput(in); err != nil {
		return nil, err
	}

	n := &models.News{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Content:     in.Content,
		Author:      strings.TrimSpace(in.Author),
		Location:    strings.TrimSpace(in.Location),
		Category:    strings.TrimSpace(in.Category),
		Tags:        in.Tags,
		EventVenue:  strings.TrimSpace(in.EventVenue),
		EventDate:   in.EventDate,
	}
	kind := in.Kind
	if kind == "" {
		kind = models.KindPlain
	}
	Submit(n, kind, flow, actor)

	var err error
	if n.Slug, err = s.uniqueSlug(ctx, n.Title, primitive.NilObjectID); err != nil {
		return nil, err
	}
	n.ShortID = slug.ShortID()

	if n.Image, err = s.attach(ctx, in.Image); err != nil {
		return nil, err
	}
	if n.Video, err = s.attach(ctx, in.Video); err != nil {
		s.removeBlobs(ctx, n.ID, []models.MediaRef{n.Image})
		return nil, err
	}
	n.Gallery = s.media.AttachGallery(ctx, in.Gallery)

	if err := s.news.Insert(ctx, n); err != nil {
		s.removeBlobs(ctx, n.ID, n.MediaRefs())
		return nil, err
	}

	logger.Get().Info().
		Str("id", n.ID.Hex()).
		Str("slug", n.Slug).
		Str("flow", flow.Name).
		Bool("approved", n.Approved).
		Msg("News submitted")
	return n, nil
}

// editFields are the fields an edit may write. Approval and featuring state
// belong to their own transitions and are never part of an edit.
var editFields = []string{
	repository.FieldTitle,
	repository.FieldSlug,
	repository.FieldDescription,
	repository.FieldContent,
	repository.FieldAuthor,
	repository.FieldLocation,
	repository.FieldCategory,
	repository.FieldEventVenue,
	repository.FieldEventDate,
	repository.FieldImage,
	repository.FieldVideo,
	repository.FieldGallery,
}

// Edit changes text fields and optionally replaces media. Only the fields the
// edit actually changed are written. Replaced blobs are removed after the
// update succeeds; newly stored blobs are removed when it fails.
func (s *Service) Edit(ctx context.Context, id string, in EditInput, up MediaInput) (*models.News, error) {
	n, err := s.news.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := n.Clone()

	if ApplyEdit(n, in) {
		if n.Slug, err = s.uniqueSlug(ctx, n.Title, n.ID); err != nil {
			return nil, err
		}
	}

	var replaced, added []models.MediaRef
	fail := func(err error) (*models.News, error) {
		s.removeBlobs(ctx, n.ID, added)
		return nil, err
	}
	if up.Image != nil {
		ref, err := s.attach(ctx, up.Image)
		if err != nil {
			return fail(err)
		}
		if !ref.IsZero() {
			replaced = append(replaced, n.Image)
			added = append(added, ref)
			n.Image = ref
		}
	}
	if up.Video != nil {
		ref, err := s.attach(ctx, up.Video)
		if err != nil {
			return fail(err)
		}
		if !ref.IsZero() {
			replaced = append(replaced, n.Video)
			added = append(added, ref)
			n.Video = ref
		}
	}
	if len(up.Gallery) > 0 {
		if refs := s.media.AttachGallery(ctx, up.Gallery); len(refs) > 0 {
			replaced = append(replaced, n.Gallery...)
			added = append(added, refs...)
			n.Gallery = refs
		}
	}

	patch := repository.Changes(before, n, editFields...)
	if patch.Empty() {
		return n, nil
	}
	stored, err := s.news.Update(ctx, n.ID, patch)
	if err != nil {
		return fail(err)
	}
	s.removeBlobs(ctx, n.ID, replaced)
	return stored, nil
}

func (s *Service) removeBlobs(ctx context.Context, id primitive.ObjectID, refs []models.MediaRef) {
	for _, ref := range refs {
		if ref.IsZero() {
			continue
		}
		if err := s.media.Remove(ctx, ref); err != nil {
			logger.Get().Warn().Err(err).
				Str("id", id.Hex()).
				Str("ref", ref.Value).
				Msg("Failed to remove media blob")
		}
	}
}

// Fields owned by the approval and featuring transitions.
var (
	approvalFields = []string{
		repository.FieldApproved,
		repository.FieldIsUjala,
		repository.FieldKind,
		repository.FieldCategory,
		repository.FieldIsBreaking,
	}
	featureFields = []string{repository.FieldIsFeatured, repository.FieldFeaturedAt}
)

// mutate runs fn on the current item and writes back only owned, so
// transitions racing on the same item never revert each other's fields.
func (s *Service) mutate(ctx context.Context, id string, owned []string, fn func(*models.News) error) (*models.News, error) {
	n, err := s.news.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(n); err != nil {
		return nil, err
	}
	return s.news.Update(ctx, n.ID, repository.Set(n, owned...))
}

func (s *Service) Approve(ctx context.Context, id string) (*models.News, error) {
	return s.mutate(ctx, id, approvalFields, func(n *models.News) error {
		Approve(n)
		return nil
	})
}

func (s *Service) ApproveAs(ctx context.Context, id string, kind models.ContentKind) (*models.News, error) {
	if kindCategory(kind) == "" {
		return nil, apperr.Validation("approval kind must be gallery or event")
	}
	return s.mutate(ctx, id, approvalFields, func(n *models.News) error {
		return ApproveAs(n, kind)
	})
}

func (s *Service) Feature(ctx context.Context, id string) (*models.News, error) {
	return s.mutate(ctx, id, featureFields, func(n *models.News) error {
		Feature(n, s.now())
		return nil
	})
}

func (s *Service) Unfeature(ctx context.Context, id string) (*models.News, error) {
	return s.mutate(ctx, id, featureFields, func(n *models.News) error {
		Unfeature(n)
		return nil
	})
}

// Delete removes the item, then its blobs. Blob cleanup failures are logged
// and never undo the delete.
func (s *Service) Delete(ctx context.Context, id string) (*models.News, error) {
	n, err := s.news.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.removeBlobs(ctx, n.ID, n.MediaRefs())
	logger.Get().Info().Str("id", n.ID.Hex()).Str("slug", n.Slug).Msg("News deleted")
	return n, nil
}

func (s *Service) IncrementView(ctx context.Context, id string) (int64, error) {
	return s.news.IncrementViews(ctx, id)
}

// List returns one page of items and the total number matching f.
func (s *Service) List(ctx context.Context, f repository.Filter, opts repository.ListOptions) ([]*models.News, int64, error) {
	total, err := s.news.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.news.FindMany(ctx, f, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindBySlug looks an item up by slug regardless of approval.
func (s *Service) FindBySlug(ctx context.Context, slugValue string) (*models.News, error) {
	if slugValue == "" {
		return nil, apperr.NotFound("news not found")
	}
	return s.news.FindOne(ctx, repository.Filter{Slug: slugValue})
}

// GetBySlug is the public detail read; unapproved items are not visible.
func (s *Service) GetBySlug(ctx context.Context, slugValue string) (*models.News, error) {
	n, err := s.FindBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}
	if !n.Approved {
		return nil, apperr.NotFound("news not found")
	}
	return n, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.News, error) {
	return s.news.FindByID(ctx, id)
}

func (s *Service) FindByShortID(ctx context.Context, short string) (*models.News, error) {
	if short == "" {
		return nil, apperr.NotFound("news not found")
	}
	return s.news.FindOne(ctx, repository.Filter{ShortID: short})
}

// FindByMedia finds the item referencing filename and the slot it is held in.
// idx is only meaningful for gallery references.
func (s *Service) FindByMedia(ctx context.Context, filename string) (*models.News, MediaField, int, error) {
	if filename == "" {
		return nil, "", 0, apperr.NotFound("media not referenced")
	}
	n, err := s.news.FindOne(ctx, repository.Filter{MediaContains: filename})
	if err != nil {
		return nil, "", 0, err
	}
	switch {
	case n.Image.Filename() == filename:
		return n, FieldImage, 0, nil
	case n.Video.Filename() == filename:
		return n, FieldVideo, 0, nil
	}
	for i, g := range n.Gallery {
		if g.Filename() == filename {
			return n, FieldGallery, i, nil
		}
	}
	return nil, "", 0, apperr.NotFound("media not referenced")
}

// ResolveMedia resolves one media slot of an item for serving. Image and
// video get signed URLs; gallery entries use public URLs.
func (s *Service) ResolveMedia(ctx context.Context, id string, field MediaField, idx int) (media.Target, error) {
	n, err := s.news.FindByID(ctx, id)
	if err != nil {
		return media.Target{}, err
	}

	var ref models.MediaRef
	opts := media.ServeOptions{Signed: true}
	switch field {
	case FieldImage:
		ref = n.Image
	case FieldVideo:
		ref = n.Video
	case FieldGallery:
		if idx < 0 || idx >= len(n.Gallery) {
			return media.Target{}, apperr.NotFound("No image")
		}
		ref = n.Gallery[idx]
		opts.Signed = false
	default:
		return media.Target{}, apperr.Validation("unknown media field")
	}
	if ref.IsZero() {
		return media.Target{}, apperr.NotFound("No " + string(field))
	}
	return s.media.Serve(ctx, ref, opts)
}

// Display resolves a reference for listing payloads.
func (s *Service) Display(ref models.MediaRef) string {
	return s.media.Display(ref)
}

func (s *Service) StorageEnabled() bool {
	return s.media.StorageEnabled()
}
