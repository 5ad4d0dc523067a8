package repository

import (
	"reflect"
	"slices"
	"time"

	"github.com/bilgisen/ujala/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Writable news fields, by stored name. Views, createdAt and shortId are not
// writable through a patch.
const (
	FieldTitle       = "title"
	FieldSlug        = "slug"
	FieldDescription = "description"
	FieldContent     = "content"
	FieldCategory    = "category"
	FieldAuthor      = "author"
	FieldSource      = "source"
	FieldLocation    = "location"
	FieldTags        = "tags"
	FieldKind        = "kind"
	FieldIsUjala     = "isUjala"
	FieldIsFeatured  = "isFeatured"
	FieldIsBreaking  = "isBreaking"
	FieldApproved    = "approved"
	FieldImage       = "image"
	FieldVideo       = "video"
	FieldGallery     = "gallery"
	FieldEventDate   = "eventDate"
	FieldEventVenue  = "eventVenue"
	FieldReporterID  = "reporterId"
	FieldFeaturedAt  = "featuredAt"
)

type newsField struct {
	// value is what gets stored.
	value func(n *models.News) any
	// assign copies the field from src into dst.
	assign func(dst, src *models.News)
}

var newsFields = map[string]newsField{
	FieldTitle:       {func(n *models.News) any { return n.Title }, func(d, s *models.News) { d.Title = s.Title }},
	FieldSlug:        {func(n *models.News) any { return n.Slug }, func(d, s *models.News) { d.Slug = s.Slug }},
	FieldDescription: {func(n *models.News) any { return n.Description }, func(d, s *models.News) { d.Description = s.Description }},
	FieldContent:     {func(n *models.News) any { return n.Content }, func(d, s *models.News) { d.Content = s.Content }},
	FieldCategory:    {func(n *models.News) any { return n.Category }, func(d, s *models.News) { d.Category = s.Category }},
	FieldAuthor:      {func(n *models.News) any { return n.Author }, func(d, s *models.News) { d.Author = s.Author }},
	FieldSource:      {func(n *models.News) any { return n.Source }, func(d, s *models.News) { d.Source = s.Source }},
	FieldLocation:    {func(n *models.News) any { return n.Location }, func(d, s *models.News) { d.Location = s.Location }},
	FieldTags:        {func(n *models.News) any { return n.Tags }, func(d, s *models.News) { d.Tags = slices.Clone(s.Tags) }},
	FieldKind:        {func(n *models.News) any { return string(kindOrPlain(n.Kind)) }, func(d, s *models.News) { d.Kind = s.Kind }},
	FieldIsUjala:     {func(n *models.News) any { return n.IsUjala }, func(d, s *models.News) { d.IsUjala = s.IsUjala }},
	FieldIsFeatured:  {func(n *models.News) any { return n.IsFeatured }, func(d, s *models.News) { d.IsFeatured = s.IsFeatured }},
	FieldIsBreaking:  {func(n *models.News) any { return n.IsBreaking }, func(d, s *models.News) { d.IsBreaking = s.IsBreaking }},
	FieldApproved:    {func(n *models.News) any { return n.Approved }, func(d, s *models.News) { d.Approved = s.Approved }},
	FieldImage:       {func(n *models.News) any { return refOrNil(n.Image) }, func(d, s *models.News) { d.Image = s.Image }},
	FieldVideo:       {func(n *models.News) any { return refOrNil(n.Video) }, func(d, s *models.News) { d.Video = s.Video }},
	FieldGallery:     {func(n *models.News) any { return n.Gallery }, func(d, s *models.News) { d.Gallery = slices.Clone(s.Gallery) }},
	FieldEventDate:   {func(n *models.News) any { return n.EventDate }, func(d, s *models.News) { d.EventDate = cloneTime(s.EventDate) }},
	FieldEventVenue:  {func(n *models.News) any { return n.EventVenue }, func(d, s *models.News) { d.EventVenue = s.EventVenue }},
	FieldReporterID: {func(n *models.News) any { return n.ReporterID }, func(d, s *models.News) {
		if s.ReporterID == nil {
			d.ReporterID = nil
			return
		}
		id := *s.ReporterID
		d.ReporterID = &id
	}},
	FieldFeaturedAt: {func(n *models.News) any { return n.FeaturedAt }, func(d, s *models.News) { d.FeaturedAt = cloneTime(s.FeaturedAt) }},
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Patch is a partial update of one news item: the named fields take their
// values from src, every other stored field is left as it is.
type Patch struct {
	src    *models.News
	fields []string
}

// Set builds a patch writing fields of n. Unknown names are ignored.
func Set(n *models.News, fields ...string) Patch {
	p := Patch{src: n.Clone()}
	for _, f := range fields {
		if _, ok := newsFields[f]; ok && !slices.Contains(p.fields, f) {
			p.fields = append(p.fields, f)
		}
	}
	return p
}

// Changes builds a patch of the fields among candidates whose values differ
// between before and after.
func Changes(before, after *models.News, candidates ...string) Patch {
	var changed []string
	for _, f := range candidates {
		nf, ok := newsFields[f]
		if !ok {
			continue
		}
		if !reflect.DeepEqual(nf.value(before), nf.value(after)) {
			changed = append(changed, f)
		}
	}
	return Set(after, changed...)
}

// Fields lists the fields the patch writes.
func (p Patch) Fields() []string { return slices.Clone(p.fields) }

func (p Patch) Empty() bool { return len(p.fields) == 0 }

// Has reports whether the patch writes field.
func (p Patch) Has(field string) bool { return slices.Contains(p.fields, field) }

func (p Patch) update(now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	for _, f := range p.fields {
		set[f] = newsFields[f].value(p.src)
	}
	return bson.M{"$set": set}
}

func (p Patch) applyTo(dst *models.News) {
	for _, f := range p.fields {
		newsFields[f].assign(dst, p.src)
	}
}
