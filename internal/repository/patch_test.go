package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPatchUpdateDocument(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	n := &models.News{Title: "t", Slug: "t", Views: 42, Approved: true, Image: models.KeyRef("uploads/a.jpg")}

	set := Set(n, FieldTitle, FieldImage, FieldVideo, FieldKind, "views", "shortId")
	doc := set.update(now)["$set"].(bson.M)

	assert.Len(t, doc, 5)
	assert.Equal(t, "t", doc["title"])
	assert.Equal(t, models.KeyRef("uploads/a.jpg"), doc["image"])
	assert.Nil(t, doc["video"], "cleared media is nulled")
	assert.Equal(t, "plain", doc["kind"])
	assert.Equal(t, now, doc["updatedAt"])
	assert.NotContains(t, doc, "approved")
	assert.NotContains(t, doc, "views")
	assert.NotContains(t, doc, "shortId")
}

func TestChangesOnlyListsDifferingFields(t *testing.T) {
	before := &models.News{Title: "a", Slug: "a", Approved: false, Gallery: []models.MediaRef{models.KeyRef("uploads/1.jpg")}}
	after := before.Clone()
	after.Title = "b"
	after.Slug = "b"
	after.Approved = true

	p := Changes(before, after, FieldTitle, FieldSlug, FieldGallery, FieldContent)
	assert.ElementsMatch(t, []string{FieldTitle, FieldSlug}, p.Fields())
	assert.False(t, p.Has(FieldApproved), "fields outside the candidates are never written")

	assert.True(t, Changes(before, before.Clone(), FieldTitle, FieldGallery).Empty())
}

func TestMemoryNewsUpdateLeavesOtherFieldsAlone(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryNews()
	n := &models.News{Title: "a", Slug: "a"}
	require.NoError(t, repo.Insert(ctx, n))

	stale := n.Clone()

	approved := n.Clone()
	approved.Approved = true
	approved.IsBreaking = true
	_, err := repo.Update(ctx, n.ID, Set(approved, FieldApproved, FieldIsBreaking))
	require.NoError(t, err)

	stale.Title = "edited"
	got, err := repo.Update(ctx, n.ID, Set(stale, FieldTitle))
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Title)
	assert.True(t, got.Approved)
	assert.True(t, got.IsBreaking)
}

func TestMemoryNewsUpdateConflictsAndMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryNews()
	a := &models.News{Title: "a", Slug: "a"}
	b := &models.News{Title: "b", Slug: "b"}
	require.NoError(t, repo.Insert(ctx, a))
	require.NoError(t, repo.Insert(ctx, b))

	b.Slug = "a"
	_, err := repo.Update(ctx, b.ID, Set(b, FieldSlug))
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	got, err := repo.FindByID(ctx, b.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "b", got.Slug, "a rejected update leaves the item unchanged")

	_, err = repo.Update(ctx, primitive.NewObjectID(), Set(a, FieldTitle))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
