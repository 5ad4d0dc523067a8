package publishing

import (
	"testing"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSubmitReporterFlow(t *testing.T) {
	actorID := primitive.NewObjectID()
	n := &models.News{Title: "t"}
	Submit(n, models.KindPlain, ReporterFlow(), Actor{ID: actorID.Hex(), Name: "Asha", Role: models.RoleReporter})

	assert.False(t, n.Approved)
	assert.True(t, n.IsUjala)
	assert.Equal(t, CategoryDefault, n.Category)
	assert.Equal(t, "Asha", n.Author)
	require.NotNil(t, n.ReporterID)
	assert.Equal(t, actorID, *n.ReporterID)
}

func TestSubmitAdminFlow(t *testing.T) {
	n := &models.News{Title: "t"}
	Submit(n, models.KindPlain, AdminFlow(true), Actor{ID: primitive.NewObjectID().Hex(), Name: "Admin"})
	assert.True(t, n.Approved)
	assert.Equal(t, CategoryAdmin, n.Category)
	assert.Equal(t, AuthorTeam, n.Author)
	assert.Nil(t, n.ReporterID)

	n = &models.News{Title: "t", Category: "local"}
	Submit(n, models.KindGallery, AdminFlow(false), Actor{})
	assert.False(t, n.Approved)
	assert.Equal(t, CategoryGallery, n.Category, "gallery submissions use the section label")
}

func TestApprovePreservesExplicitCategory(t *testing.T) {
	n := &models.News{Category: "local", Kind: models.KindPlain}
	Approve(n)
	assert.True(t, n.Approved)
	assert.Equal(t, "local", n.Category)
	assert.True(t, n.IsBreaking)

	n = &models.News{Kind: models.KindPlain}
	Approve(n)
	assert.Equal(t, CategoryDefault, n.Category)
	assert.True(t, n.IsBreaking)

	n = &models.News{Kind: models.KindEvent, Category: "local"}
	Approve(n)
	assert.Equal(t, CategoryEvents, n.Category)
}

func TestApproveAs(t *testing.T) {
	n := &models.News{Kind: models.KindEvent, Category: "custom"}
	require.NoError(t, ApproveAs(n, models.KindGallery))
	assert.Equal(t, models.KindGallery, n.Kind)
	assert.True(t, n.IsGallery())
	assert.False(t, n.IsEvent())
	assert.Equal(t, CategoryGallery, n.Category)
	assert.True(t, n.Approved)
	assert.True(t, n.IsBreaking)

	require.NoError(t, ApproveAs(n, models.KindEvent))
	assert.False(t, n.IsGallery())
	assert.Equal(t, CategoryEvents, n.Category)

	err := ApproveAs(n, models.KindPlain)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestFeatureToggle(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	n := &models.News{}

	Feature(n, now)
	assert.True(t, n.IsFeatured)
	require.NotNil(t, n.FeaturedAt)
	assert.Equal(t, now, *n.FeaturedAt)
	assert.False(t, n.Approved, "featuring does not require approval")

	Unfeature(n)
	assert.False(t, n.IsFeatured)
	assert.Nil(t, n.FeaturedAt)
}

func TestApplyEdit(t *testing.T) {
	n := &models.News{Title: "old", Description: "d", Approved: true, Kind: models.KindGallery}

	changed := ApplyEdit(n, EditInput{Title: "old", Content: "new body"})
	assert.False(t, changed)
	assert.Equal(t, "new body", n.Content)
	assert.Equal(t, "d", n.Description, "empty fields are left alone")

	changed = ApplyEdit(n, EditInput{Title: "  new  "})
	assert.True(t, changed)
	assert.Equal(t, "new", n.Title)
	assert.True(t, n.Approved)
	assert.Equal(t, models.KindGallery, n.Kind)
}
