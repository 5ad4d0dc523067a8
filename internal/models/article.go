package models

// Article is a live item from the third-party news provider. It is never persisted.
type Article struct {
	ID          string   `json:"_id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	ImageURL    string   `json:"imageUrl"`
	Author      string   `json:"author"`
	Source      string   `json:"source"`
	Views       int      `json:"views"`
	IsFeatured  bool     `json:"isFeatured"`
	IsBreaking  bool     `json:"isBreaking"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"createdAt"`
	PublishedAt string   `json:"publishedAt,omitempty"`
	ExternalURL *string  `json:"externalUrl"`
	VideoURL    *string  `json:"videoUrl"`
}
