package repository

import (
	"regexp"
	"strings"

	"github.com/bilgisen/ujala/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filter selects news items. Nil pointers and empty strings match anything.
type Filter struct {
	Approved *bool
	Ujala    *bool
	Featured *bool
	Kind     *models.ContentKind
	Slug     string
	ShortID  string
	// MediaContains matches items whose image, video or any gallery reference contains the substring.
	MediaContains string
	// LocalMedia matches items holding at least one server-relative path reference.
	LocalMedia bool
}

func Bool(b bool) *bool { return &b }

func KindOf(k models.ContentKind) *models.ContentKind { return &k }

// Match evaluates the filter in memory.
func (f Filter) Match(n *models.News) bool {
	if f.Approved != nil && n.Approved != *f.Approved {
		return false
	}
	if f.Ujala != nil && n.IsUjala != *f.Ujala {
		return false
	}
	if f.Featured != nil && n.IsFeatured != *f.Featured {
		return false
	}
	if f.Kind != nil && kindOrPlain(n.Kind) != *f.Kind {
		return false
	}
	if f.Slug != "" && n.Slug != f.Slug {
		return false
	}
	if f.ShortID != "" && n.ShortID != f.ShortID {
		return false
	}
	if f.MediaContains != "" && !anyRef(n, func(r models.MediaRef) bool {
		return strings.Contains(r.Value, f.MediaContains)
	}) {
		return false
	}
	if f.LocalMedia && !anyRef(n, func(r models.MediaRef) bool { return r.Kind == models.RefPath }) {
		return false
	}
	return true
}

func kindOrPlain(k models.ContentKind) models.ContentKind {
	if k == "" {
		return models.KindPlain
	}
	return k
}

func anyRef(n *models.News, pred func(models.MediaRef) bool) bool {
	for _, r := range n.MediaRefs() {
		if pred(r) {
			return true
		}
	}
	return false
}

var mediaFields = []string{"image", "video", "gallery"}

// toBSON builds the equivalent MongoDB filter document.
func (f Filter) toBSON() bson.M {
	q := bson.M{}
	if f.Approved != nil {
		q["approved"] = *f.Approved
	}
	if f.Ujala != nil {
		q["isUjala"] = *f.Ujala
	}
	if f.Featured != nil {
		q["isFeatured"] = *f.Featured
	}
	if f.Kind != nil {
		if *f.Kind == models.KindPlain {
			q["kind"] = bson.M{"$in": bson.A{string(models.KindPlain), nil}}
		} else {
			q["kind"] = string(*f.Kind)
		}
	}
	if f.Slug != "" {
		q["slug"] = f.Slug
	}
	if f.ShortID != "" {
		q["shortId"] = f.ShortID
	}

	var and []bson.M
	if f.MediaContains != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.MediaContains)}
		or := make(bson.A, 0, len(mediaFields))
		for _, field := range mediaFields {
			or = append(or, bson.M{field + ".value": re})
		}
		and = append(and, bson.M{"$or": or})
	}
	if f.LocalMedia {
		or := make(bson.A, 0, len(mediaFields))
		for _, field := range mediaFields {
			or = append(or, bson.M{field + ".kind": string(models.RefPath)})
		}
		and = append(and, bson.M{"$or": or})
	}
	switch len(and) {
	case 0:
	case 1:
		for k, v := range and[0] {
			q[k] = v
		}
	default:
		q["$and"] = and
	}
	return q
}

func sortDoc(fields []SortField) bson.D {
	if len(fields) == 0 {
		fields = Newest()
	}
	d := make(bson.D, 0, len(fields))
	for _, s := range fields {
		dir := 1
		if s.Desc {
			dir = -1
		}
		d = append(d, bson.E{Key: s.Field, Value: dir})
	}
	return d
}

func refOrNil(r models.MediaRef) any {
	if r.IsZero() {
		return nil
	}
	return r
}
