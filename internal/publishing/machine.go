// Package publishing implements the moderation lifecycle of news items:
// submission, approval, featuring, editing and deletion.
package publishing

import (
	"strings"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CategoryDefault = "Moradabad ujala"
	CategoryAdmin   = "ujala"
	CategoryGallery = "ujala gallery"
	CategoryEvents  = "ujala events"

	AuthorTeam     = "Moradabad Ujala Team"
	AuthorReporter = "Reporter"
)

// Flow is a creation path with its own defaults.
type Flow struct {
	Name     string
	Approved bool
	// Category applies to plain submissions without an explicit category.
	Category string
	Author   string
	// AttachReporter records the submitting actor as the item's reporter.
	AttachReporter bool
}

// AdminFlow is the direct admin upload. Whether its items start approved is configurable.
func AdminFlow(approved bool) Flow {
	return Flow{Name: "admin", Approved: approved, Category: CategoryAdmin, Author: AuthorTeam}
}

// ReporterFlow is a reporter submission; it always waits for review.
func ReporterFlow() Flow {
	return Flow{Name: "reporter", Category: CategoryDefault, Author: AuthorReporter, AttachReporter: true}
}

// Actor is the authenticated caller.
type Actor struct {
	ID   string
	Name string
	Role string
}

func kindCategory(k models.ContentKind) string {
	switch k {
	case models.KindGallery:
		return CategoryGallery
	case models.KindEvent:
		return CategoryEvents
	}
	return ""
}

// Submit initializes a freshly created item for flow.
func Submit(n *models.News, kind models.ContentKind, flow Flow, actor Actor) {
	n.Kind = kind
	n.IsUjala = true
	n.Approved = flow.Approved
	n.IsFeatured = false
	n.FeaturedAt = nil

	if c := kindCategory(kind); c != "" {
		n.Category = c
	} else if strings.TrimSpace(n.Category) == "" {
		n.Category = flow.Category
	}

	if strings.TrimSpace(n.Author) == "" {
		n.Author = flow.Author
		if flow.AttachReporter && actor.Name != "" {
			n.Author = actor.Name
		}
	}

	if flow.AttachReporter && actor.ID != "" {
		if oid, err := primitive.ObjectIDFromHex(actor.ID); err == nil {
			n.ReporterID = &oid
		}
	}
}

// Approve publishes an item. Gallery and event items get their section
// label; a plain item keeps the submitter's category and only an empty one
// is defaulted. Approved items are marked breaking.
func Approve(n *models.News) {
	n.Approved = true
	n.IsUjala = true
	if c := kindCategory(n.Kind); c != "" {
		n.Category = c
	} else if strings.TrimSpace(n.Category) == "" {
		n.Category = CategoryDefault
	}
	n.IsBreaking = true
}

// ApproveAs publishes an item as a gallery or event, overriding its category.
func ApproveAs(n *models.News, kind models.ContentKind) error {
	c := kindCategory(kind)
	if c == "" {
		return apperr.Validation("approval kind must be gallery or event")
	}
	n.Approved = true
	n.IsUjala = true
	n.Kind = kind
	n.Category = c
	n.IsBreaking = true
	return nil
}

// Feature has no approval precondition.
func Feature(n *models.News, now time.Time) {
	n.IsFeatured = true
	n.FeaturedAt = &now
}

func Unfeature(n *models.News) {
	n.IsFeatured = false
	n.FeaturedAt = nil
}

// EditInput holds text changes. Empty strings leave a field untouched.
type EditInput struct {
	Title       string     `json:"title" form:"title"`
	Description string     `json:"description" form:"description"`
	Content     string     `json:"content" form:"content"`
	Author      string     `json:"author" form:"author"`
	Location    string     `json:"location" form:"location"`
	Category    string     `json:"category" form:"category"`
	EventVenue  string     `json:"eventVenue" form:"eventVenue"`
	EventDate   *time.Time `json:"eventDate" form:"-"`
}

// ApplyEdit mutates text fields and reports whether the title changed.
// Approval and kind are never touched.
func ApplyEdit(n *models.News, in EditInput) bool {
	titleChanged := false
	if t := strings.TrimSpace(in.Title); t != "" && t != n.Title {
		n.Title = t
		titleChanged = true
	}
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&n.Description, in.Description)
	set(&n.Content, in.Content)
	set(&n.Author, in.Author)
	set(&n.Location, in.Location)
	set(&n.Category, in.Category)
	set(&n.EventVenue, in.EventVenue)
	if in.EventDate != nil {
		d := *in.EventDate
		n.EventDate = &d
	}
	return titleChanged
}
