package api

import (
	"time"

	"github.com/bilgisen/ujala/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewsView is a news item as returned to clients, with media references
// resolved to URLs.
type NewsView struct {
	ID          primitive.ObjectID `json:"_id"`
	Title       string             `json:"title"`
	Slug        string             `json:"slug"`
	ShortID     string             `json:"shortId,omitempty"`
	Description string             `json:"description"`
	Content     string             `json:"content"`
	Category    string             `json:"category"`
	Author      string             `json:"author"`
	Source      string             `json:"source,omitempty"`
	Location    string             `json:"location"`
	Tags        []string           `json:"tags"`

	Kind       models.ContentKind `json:"kind"`
	IsUjala    bool               `json:"isUjala"`
	IsGallery  bool               `json:"isGallery"`
	IsEvent    bool               `json:"isEvent"`
	IsFeatured bool               `json:"isFeatured"`
	IsBreaking bool               `json:"isBreaking"`
	Approved   bool               `json:"approved"`

	ImageURL      string   `json:"imageUrl"`
	VideoURL      string   `json:"videoUrl"`
	GalleryImages []string `json:"galleryImages"`

	EventDate  *time.Time          `json:"eventDate,omitempty"`
	EventVenue string              `json:"eventVenue,omitempty"`
	ReporterID *primitive.ObjectID `json:"reporterId,omitempty"`

	Views      int64      `json:"views"`
	FeaturedAt *time.Time `json:"featuredAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (h *Handlers) display(ref models.MediaRef) string {
	return h.absolute(h.news.Display(ref))
}

func (h *Handlers) view(n *models.News) NewsView {
	gallery := make([]string, 0, len(n.Gallery))
	for _, g := range n.Gallery {
		gallery = append(gallery, h.display(g))
	}
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return NewsView{
		ID:            n.ID,
		Title:         n.Title,
		Slug:          n.Slug,
		ShortID:       n.ShortID,
		Description:   n.Description,
		Content:       n.Content,
		Category:      n.Category,
		Author:        n.Author,
		Source:        n.Source,
		Location:      n.Location,
		Tags:          tags,
		Kind:          n.Kind,
		IsUjala:       n.IsUjala,
		IsGallery:     n.IsGallery(),
		IsEvent:       n.IsEvent(),
		IsFeatured:    n.IsFeatured,
		IsBreaking:    n.IsBreaking,
		Approved:      n.Approved,
		ImageURL:      h.display(n.Image),
		VideoURL:      h.display(n.Video),
		GalleryImages: gallery,
		EventDate:     n.EventDate,
		EventVenue:    n.EventVenue,
		ReporterID:    n.ReporterID,
		Views:         n.Views,
		FeaturedAt:    n.FeaturedAt,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
	}
}

func (h *Handlers) views(items []*models.News) []NewsView {
	out := make([]NewsView, 0, len(items))
	for _, n := range items {
		out = append(out, h.view(n))
	}
	return out
}

type pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int64 `json:"pages"`
	Limit int   `json:"limit"`
}

func paginate(total int64, page, limit int) pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return pagination{Total: total, Page: page, Pages: pages, Limit: limit}
}

type listQuery struct {
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
	Category string `query:"category"`
	Search   string `query:"search"`
}

const maxPageSize = 100

func (q *listQuery) normalize(defaultLimit int) {
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.Limit <= 0:
		q.Limit = defaultLimit
	case q.Limit > maxPageSize:
		q.Limit = maxPageSize
	}
}

func (q listQuery) skip() int64 {
	return int64(q.Page-1) * int64(q.Limit)
}
