package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentKind is the type tag of a news item. Gallery and event are
// mutually exclusive by construction.
type ContentKind string

const (
	KindPlain   ContentKind = "plain"
	KindGallery ContentKind = "gallery"
	KindEvent   ContentKind = "event"
)

// ParseKind maps the "type" form value to a kind. Anything unknown is plain.
func ParseKind(s string) ContentKind {
	switch ContentKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindGallery:
		return KindGallery
	case KindEvent:
		return KindEvent
	default:
		return KindPlain
	}
}

// News is a stored content item.
type News struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	ShortID     string             `bson:"shortId,omitempty" json:"shortId,omitempty"`
	Description string             `bson:"description" json:"description"`
	Content     string             `bson:"content" json:"content"`
	Category    string             `bson:"category" json:"category"`
	Author      string             `bson:"author,omitempty" json:"author,omitempty"`
	Source      string             `bson:"source,omitempty" json:"source,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`

	Kind       ContentKind `bson:"kind" json:"kind"`
	IsUjala    bool        `bson:"isUjala" json:"isUjala"`
	IsFeatured bool        `bson:"isFeatured" json:"isFeatured"`
	IsBreaking bool        `bson:"isBreaking" json:"isBreaking"`
	Approved   bool        `bson:"approved" json:"approved"`

	Image   MediaRef   `bson:"image,omitempty" json:"image,omitempty"`
	Video   MediaRef   `bson:"video,omitempty" json:"video,omitempty"`
	Gallery []MediaRef `bson:"gallery,omitempty" json:"gallery,omitempty"`

	EventDate  *time.Time          `bson:"eventDate,omitempty" json:"eventDate,omitempty"`
	EventVenue string              `bson:"eventVenue,omitempty" json:"eventVenue,omitempty"`
	ReporterID *primitive.ObjectID `bson:"reporterId,omitempty" json:"reporterId,omitempty"`

	Views      int64      `bson:"views" json:"views"`
	FeaturedAt *time.Time `bson:"featuredAt,omitempty" json:"featuredAt,omitempty"`
	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func (n *News) IsGallery() bool { return n.Kind == KindGallery }
func (n *News) IsEvent() bool   { return n.Kind == KindEvent }

// MediaRefs returns every non-empty reference held by the item.
func (n *News) MediaRefs() []MediaRef {
	var refs []MediaRef
	if !n.Image.IsZero() {
		refs = append(refs, n.Image)
	}
	if !n.Video.IsZero() {
		refs = append(refs, n.Video)
	}
	for _, g := range n.Gallery {
		if !g.IsZero() {
			refs = append(refs, g)
		}
	}
	return refs
}

// Clone returns a deep copy.
func (n *News) Clone() *News {
	if n == nil {
		return nil
	}
	c := *n
	if n.Tags != nil {
		c.Tags = append([]string(nil), n.Tags...)
	}
	if n.Gallery != nil {
		c.Gallery = append([]MediaRef(nil), n.Gallery...)
	}
	if n.EventDate != nil {
		t := *n.EventDate
		c.EventDate = &t
	}
	if n.FeaturedAt != nil {
		t := *n.FeaturedAt
		c.FeaturedAt = &t
	}
	if n.ReporterID != nil {
		id := *n.ReporterID
		c.ReporterID = &id
	}
	return &c
}
