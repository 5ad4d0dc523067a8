package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryNews is an in-memory NewsRepository enforcing the same unique
// indexes as the Mongo collection.
type MemoryNews struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]*models.News
}

func NewMemoryNews() *MemoryNews {
	return &MemoryNews{items: make(map[primitive.ObjectID]*models.News)}
}

func (r *MemoryNews) FindByID(_ context.Context, id string) (*models.News, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.items[oid]
	if !ok {
		return nil, apperr.NotFound("news not found")
	}
	return n.Clone(), nil
}

func (r *MemoryNews) FindOne(ctx context.Context, f Filter) (*models.News, error) {
	items, err := r.FindMany(ctx, f, ListOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.NotFound("news not found")
	}
	return items[0], nil
}

func (r *MemoryNews) FindMany(_ context.Context, f Filter, opts ListOptions) ([]*models.News, error) {
	r.mu.RLock()
	out := make([]*models.News, 0)
	for _, n := range r.items {
		if f.Match(n) {
			out = append(out, n.Clone())
		}
	}
	r.mu.RUnlock()

	sortNews(out, opts.Sort)

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(out)) {
			return []*models.News{}, nil
		}
		out = out[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < int64(len(out)) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (r *MemoryNews) Count(_ context.Context, f Filter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var c int64
	for _, n := range r.items {
		if f.Match(n) {
			c++
		}
	}
	return c, nil
}

// conflict reports a slug or shortId already held by another item. Caller holds the lock.
func (r *MemoryNews) conflict(n *models.News) bool {
	for id, other := range r.items {
		if id == n.ID {
			continue
		}
		if other.Slug == n.Slug {
			return true
		}
		if n.ShortID != "" && other.ShortID == n.ShortID {
			return true
		}
	}
	return false
}

func (r *MemoryNews) Insert(_ context.Context, n *models.News) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.Kind == "" {
		n.Kind = models.KindPlain
	}
	if _, exists := r.items[n.ID]; exists || r.conflict(n) {
		return apperr.Conflict("duplicate key", nil)
	}
	stamp(&n.CreatedAt, &n.UpdatedAt)
	r.items[n.ID] = n.Clone()
	return nil
}

func (r *MemoryNews) Update(_ context.Context, id primitive.ObjectID, p Patch) (*models.News, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.items[id]
	if !ok {
		return nil, apperr.NotFound("news not found")
	}
	next := cur.Clone()
	p.applyTo(next)
	if r.conflict(next) {
		return nil, apperr.Conflict("duplicate key", nil)
	}
	next.UpdatedAt = time.Now().UTC()
	r.items[id] = next
	return next.Clone(), nil
}

func (r *MemoryNews) DeleteByID(_ context.Context, id string) (*models.News, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[oid]
	if !ok {
		return nil, apperr.NotFound("news not found")
	}
	delete(r.items, oid)
	return n, nil
}

func (r *MemoryNews) SlugExists(_ context.Context, slug string, exceptID primitive.ObjectID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, n := range r.items {
		if n.Slug == slug && id != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryNews) IncrementViews(_ context.Context, id string) (int64, error) {
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[oid]
	if !ok {
		return 0, apperr.NotFound("news not found")
	}
	n.Views++
	return n.Views, nil
}

func sortNews(items []*models.News, fields []SortField) {
	if len(fields) == 0 {
		fields = Newest()
	}
	sort.SliceStable(items, func(i, j int) bool {
		for _, f := range fields {
			c := compareField(items[i], items[j], f.Field)
			if c == 0 {
				continue
			}
			if f.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareField(a, b *models.News, field string) int {
	switch field {
	case "views":
		return cmpInt(a.Views, b.Views)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "featuredAt":
		return timePtr(a.FeaturedAt).Compare(timePtr(b.FeaturedAt))
	case "title":
		return strings.Compare(a.Title, b.Title)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func timePtr(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// MemoryUsers is an in-memory UserRepository with unique email and reporterId.
type MemoryUsers struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *MemoryUsers) find(pred func(*models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if pred(u) {
			return u.Clone(), nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (r *MemoryUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return r.find(func(u *models.User) bool { return u.ID == oid })
}

func (r *MemoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *MemoryUsers) FindByReporterID(_ context.Context, reporterID string) (*models.User, error) {
	if reporterID == "" {
		return nil, apperr.NotFound("user not found")
	}
	return r.find(func(u *models.User) bool { return u.ReporterID == reporterID })
}

func (r *MemoryUsers) List(_ context.Context, role string) ([]*models.User, error) {
	r.mu.RLock()
	out := make([]*models.User, 0)
	for _, u := range r.users {
		if role == "" || u.Role == role {
			out = append(out, u.Clone())
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryUsers) conflict(u *models.User) bool {
	for id, other := range r.users {
		if id == u.ID {
			continue
		}
		if other.Email == u.Email {
			return true
		}
		if u.ReporterID != "" && other.ReporterID == u.ReporterID {
			return true
		}
	}
	return false
}

func (r *MemoryUsers) Insert(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if _, exists := r.users[u.ID]; exists || r.conflict(u) {
		return apperr.Conflict("duplicate key", nil)
	}
	stamp(&u.CreatedAt, &u.UpdatedAt)
	r.users[u.ID] = u.Clone()
	return nil
}

func (r *MemoryUsers) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.users[u.ID]
	if !ok {
		return apperr.NotFound("user not found")
	}
	if r.conflict(u) {
		return apperr.Conflict("duplicate key", nil)
	}
	u.UpdatedAt = time.Now().UTC()
	next := u.Clone()
	next.Email = cur.Email
	next.Password = cur.Password
	next.CreatedAt = cur.CreatedAt
	r.users[u.ID] = next
	return nil
}

func (r *MemoryUsers) DeleteByID(_ context.Context, id string) (*models.User, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[oid]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	delete(r.users, oid)
	return u, nil
}
