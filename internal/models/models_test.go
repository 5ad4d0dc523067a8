package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestClassifyRef(t *testing.T) {
	assert.Equal(t, MediaRef{}, ClassifyRef("  "))
	assert.Equal(t, URLRef("https://cdn.example.com/a.jpg"), ClassifyRef("https://cdn.example.com/a.jpg"))
	assert.Equal(t, URLRef("HTTP://x.test/a.jpg"), ClassifyRef("HTTP://x.test/a.jpg"))
	assert.Equal(t, PathRef("/uploads/a.jpg"), ClassifyRef("/uploads/a.jpg"))
	assert.Equal(t, KeyRef("uploads/a.jpg"), ClassifyRef("uploads/a.jpg"))
}

func TestMediaRefFilename(t *testing.T) {
	assert.Equal(t, "a.jpg", URLRef("https://pub.r2.dev/uploads/a.jpg?X-Amz-Expires=900").Filename())
	assert.Equal(t, "b.png", PathRef("/uploads/b.png").Filename())
	assert.Equal(t, "c.gif", KeyRef("c.gif").Filename())
	assert.Equal(t, "", MediaRef{}.Filename())
}

func TestMediaRefIsZero(t *testing.T) {
	assert.True(t, MediaRef{}.IsZero())
	assert.True(t, MediaRef{Kind: RefKey}.IsZero())
	assert.False(t, KeyRef("uploads/a.jpg").IsZero())
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindGallery, ParseKind("gallery"))
	assert.Equal(t, KindEvent, ParseKind(" Event "))
	assert.Equal(t, KindPlain, ParseKind(""))
	assert.Equal(t, KindPlain, ParseKind("video"))
}

func TestNewsMediaRefsAndClone(t *testing.T) {
	now := time.Now()
	rid := primitive.NewObjectID()
	n := &News{
		Image:      KeyRef("uploads/a.jpg"),
		Gallery:    []MediaRef{PathRef("/uploads/g1.jpg"), {}, URLRef("https://x.test/g2.jpg")},
		Tags:       []string{"local"},
		FeaturedAt: &now,
		ReporterID: &rid,
	}

	assert.Len(t, n.MediaRefs(), 3)

	c := n.Clone()
	c.Gallery[0] = KeyRef("uploads/other.jpg")
	c.Tags[0] = "changed"
	*c.FeaturedAt = now.Add(time.Hour)

	assert.Equal(t, PathRef("/uploads/g1.jpg"), n.Gallery[0])
	assert.Equal(t, "local", n.Tags[0])
	assert.Equal(t, now, *n.FeaturedAt)
}
