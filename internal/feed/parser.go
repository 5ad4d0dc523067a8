package feed

import (
	"fmt"
	"html"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/bilgisen/ujala/internal/models"
	"github.com/bilgisen/ujala/internal/slug"
)

const (
	placeholderImage = "https://via.placeholder.com/800x450?text=Breaking+News"
	slugMaxLen       = 80
	maxTags          = 5
)

var (
	htmlTagRegex  = regexp.MustCompile(`<[^>]*>`)
	slugTokenRule = regexp.MustCompile(`([A-Za-z]{3,}|[\x{0900}-\x{097F}]{3,})`)
)

// CleanHTML removes HTML tags and normalizes whitespace
func CleanHTML(input string) string {
	cleaned := htmlTagRegex.ReplaceAllString(input, " ")
	cleaned = html.UnescapeString(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}

var categoryMap = map[string]string{
	"breaking":      "general",
	"india":         "nation",
	"world":         "world",
	"sports":        "sports",
	"entertainment": "entertainment",
	"business":      "business",
	"technology":    "technology",
	"health":        "health",
	"education":     "general",
	"lifestyle":     "general",
	"auto":          "technology",
	"religion":      "general",
}

// MapCategory maps a site category onto a provider category.
func MapCategory(category string) string {
	if c, ok := categoryMap[strings.ToLower(category)]; ok {
		return c
	}
	return "general"
}

var categoryKeywords = map[string][]string{
	"breaking":      {"breaking", "live", "update", "latest"},
	"sports":        {"cricket", "football", "tennis", "match", "score", "player"},
	"entertainment": {"film", "movie", "actor", "actress", "bollywood", "series", "music"},
	"business":      {"business", "stock", "market", "economy", "company", "shares"},
	"technology":    {"technology", "tech", "ai", "app", "software", "google", "apple"},
	"health":        {"health", "covid", "hospital", "disease", "medical", "doctor"},
	"world":         {"world", "international", "united", "countries", "global"},
	"india":         {"india", "modi", "government", "delhi", "mumbai", "bharat", "भारत"},
}

// FilterByKeywords keeps articles mentioning any keyword of category.
func FilterByKeywords(articles []RawArticle, category string) []RawArticle {
	kws, ok := categoryKeywords[category]
	if !ok {
		kws = []string{strings.ToLower(category)}
	}
	var out []RawArticle
	for _, a := range articles {
		text := strings.ToLower(a.Title + " " + a.Description + " " + a.Content)
		for _, k := range kws {
			if strings.Contains(text, k) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

var tagKeywords = []string{
	"election", "politics", "cricket", "football", "tennis", "business",
	"stock", "market", "technology", "ai", "india", "modi", "government",
	"court", "police", "accident", "weather", "health", "covid",
	"education", "exam", "university", "film", "actor", "actress",
	"bollywood", "series", "match", "player", "minister", "pm",
	"breaking", "live", "update", "latest", "news",
}

// ExtractTags returns up to five known keywords found in the title or description.
func ExtractTags(title, description string) []string {
	text := strings.ToLower(title + " " + description)
	tags := make([]string, 0, maxTags)
	for _, k := range tagKeywords {
		if strings.Contains(text, k) {
			tags = append(tags, k)
			if len(tags) == maxTags {
				break
			}
		}
	}
	return tags
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Transform converts provider articles into live articles. Slugs carry the
// fetch time and position so repeated fetches never collide.
func Transform(raw []RawArticle, category string, now time.Time) []models.Article {
	if category == "" {
		category = "general"
	}
	ms := now.UnixMilli()
	out := make([]models.Article, 0, len(raw))

	for i, a := range raw {
		base := slug.ASCIIBase(a.Title, slugMaxLen)
		if base == "" {
			base = fmt.Sprintf("article-%d", ms)
		}

		image := a.URLToImage
		if image == "" {
			image = a.Image
		}
		if image == "" {
			image = placeholderImage
		}

		source := a.Source.Name
		if source == "" {
			source = "External Source"
		}
		author := a.Author
		if author == "" {
			author = source
		}

		content := CleanHTML(a.Content)
		description := CleanHTML(a.Description)
		if description == "" {
			description = truncate(content, 200)
		}
		if description == "" {
			description = "Read full article..."
		}
		if content == "" {
			content = description
		}

		createdAt := a.PublishedAt
		if createdAt == "" {
			createdAt = now.UTC().Format(time.RFC3339)
		}

		art := models.Article{
			ID:          fmt.Sprintf("live-%d-%d", ms, i),
			Title:       a.Title,
			Slug:        fmt.Sprintf("%s-%d-%d", base, ms, i),
			Description: description,
			Content:     content,
			Category:    category,
			ImageURL:    image,
			Author:      author,
			Source:      source,
			Views:       rand.IntN(10000) + 500,
			IsBreaking:  i < 2,
			Tags:        ExtractTags(a.Title, a.Description),
			CreatedAt:   createdAt,
			PublishedAt: a.PublishedAt,
		}
		if a.URL != "" {
			u := a.URL
			art.ExternalURL = &u
		}
		out = append(out, art)
	}
	return out
}

// SearchTermFromSlug builds a provider query from a slug's meaningful
// words: at most four tokens with three or more Latin or Devanagari letters.
func SearchTermFromSlug(s string) string {
	var terms []string
	for _, tok := range strings.Split(s, "-") {
		tok = strings.TrimSpace(tok)
		if tok == "" || !slugTokenRule.MatchString(tok) {
			continue
		}
		terms = append(terms, tok)
		if len(terms) == 4 {
			break
		}
	}
	return strings.Join(terms, " ")
}
