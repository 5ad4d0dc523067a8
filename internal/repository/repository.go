// Package repository persists news items, user accounts, categories and
// contact messages.
package repository

import (
	"context"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewsRepository stores news items.
type NewsRepository interface {
	FindByID(ctx context.Context, id string) (*models.News, error)
	FindOne(ctx context.Context, f Filter) (*models.News, error)
	FindMany(ctx context.Context, f Filter, opts ListOptions) ([]*models.News, error)
	Count(ctx context.Context, f Filter) (int64, error)
	Insert(ctx context.Context, n *models.News) error
	// Update applies p to the item and returns it as stored afterwards.
	// Fields outside the patch keep whatever value they hold at write time.
	Update(ctx context.Context, id primitive.ObjectID, p Patch) (*models.News, error)
	// DeleteByID removes the item and returns it as it was.
	DeleteByID(ctx context.Context, id string) (*models.News, error)
	// SlugExists reports whether another item already uses slug.
	SlugExists(ctx context.Context, slug string, exceptID primitive.ObjectID) (bool, error)
	// IncrementViews atomically adds one view and returns the new count.
	IncrementViews(ctx context.Context, id string) (int64, error)
}

// UserRepository stores admin and reporter accounts.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByReporterID(ctx context.Context, reporterID string) (*models.User, error)
	List(ctx context.Context, role string) ([]*models.User, error)
	Insert(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	DeleteByID(ctx context.Context, id string) (*models.User, error)
}

// CategoryRepository stores navigation categories.
type CategoryRepository interface {
	// List returns every category by ascending order, then name.
	List(ctx context.Context) ([]*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Insert(ctx context.Context, c *models.Category) error
}

// ContactRepository stores contact form messages.
type ContactRepository interface {
	Insert(ctx context.Context, c *models.Contact) error
	// List returns every message, newest first.
	List(ctx context.Context) ([]*models.Contact, error)
}

// SortField orders a listing by one field.
type SortField struct {
	Field string
	Desc  bool
}

// ListOptions pages and orders FindMany results. A zero Limit means no limit.
type ListOptions struct {
	Sort  []SortField
	Skip  int64
	Limit int64
}

// Newest sorts by creation time, most recent first.
func Newest() []SortField {
	return []SortField{{Field: "createdAt", Desc: true}}
}

// ParseID validates a caller supplied id before it reaches the driver.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.InvalidID("invalid id")
	}
	return oid, nil
}

func stamp(createdAt, updatedAt *time.Time) {
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}
