package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryCategories is an in-memory CategoryRepository with a unique slug.
type MemoryCategories struct {
	mu   sync.RWMutex
	cats []models.Category
}

func NewMemoryCategories() *MemoryCategories {
	return &MemoryCategories{}
}

func (r *MemoryCategories) List(_ context.Context) ([]*models.Category, error) {
	r.mu.RLock()
	out := make([]*models.Category, 0, len(r.cats))
	for _, c := range r.cats {
		out = append(out, &c)
	}
	r.mu.RUnlock()
	slices.SortStableFunc(out, func(a, b *models.Category) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), cmp.Compare(a.Name, b.Name))
	})
	return out, nil
}

func (r *MemoryCategories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.cats {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, apperr.NotFound("Category not found")
}

func (r *MemoryCategories) Insert(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.ContainsFunc(r.cats, func(o models.Category) bool { return o.Slug == c.Slug }) {
		return apperr.Conflict("duplicate key", nil)
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	stamp(&c.CreatedAt, &c.UpdatedAt)
	r.cats = append(r.cats, *c)
	return nil
}

// MemoryContacts is an in-memory ContactRepository.
type MemoryContacts struct {
	mu       sync.RWMutex
	messages []models.Contact
}

func NewMemoryContacts() *MemoryContacts {
	return &MemoryContacts{}
}

func (r *MemoryContacts) Insert(_ context.Context, c *models.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	stamp(&c.CreatedAt, &c.UpdatedAt)
	r.messages = append(r.messages, *c)
	return nil
}

func (r *MemoryContacts) List(_ context.Context) ([]*models.Contact, error) {
	r.mu.RLock()
	out := make([]*models.Contact, 0, len(r.messages))
	for i := len(r.messages) - 1; i >= 0; i-- {
		c := r.messages[i]
		out = append(out, &c)
	}
	r.mu.RUnlock()
	slices.SortStableFunc(out, func(a, b *models.Contact) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}
