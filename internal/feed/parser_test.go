package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanHTML(t *testing.T) {
	assert.Equal(t, "Hello world & more", CleanHTML("<p>Hello</p>\n<b>world</b> &amp; more "))
	assert.Equal(t, "", CleanHTML("  <br/> "))
}

func TestMapCategory(t *testing.T) {
	assert.Equal(t, "nation", MapCategory("india"))
	assert.Equal(t, "general", MapCategory("breaking"))
	assert.Equal(t, "technology", MapCategory("auto"))
	assert.Equal(t, "general", MapCategory("unknown"))
}

func TestExtractTagsCapsAtFive(t *testing.T) {
	tags := ExtractTags("Breaking: India cricket match live update", "election news from the court")
	assert.Len(t, tags, 5)
	assert.Equal(t, []string{"election", "cricket", "india", "court", "match"}, tags)
	assert.Empty(t, ExtractTags("", ""))
}

func TestFilterByKeywords(t *testing.T) {
	articles := []RawArticle{
		{Title: "Cricket final tonight"},
		{Title: "Budget announced"},
		{Title: "Quantum things", Description: "a quantum update"},
	}
	assert.Len(t, FilterByKeywords(articles, "sports"), 1)
	assert.Len(t, FilterByKeywords(articles, "quantum"), 1, "unknown categories match on their own name")
	assert.Empty(t, FilterByKeywords(articles, "health"))
}

func TestTransform(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	raw := []RawArticle{
		{Title: "Storm Hits Coast!", Description: "<b>Heavy</b> rain", URL: "https://x.test/a", Image: "https://img.test/a.jpg"},
		{Title: "तूफान", Content: strings.Repeat("x", 300)},
		{Title: "Third"},
	}
	raw[0].Source.Name = "Wire"

	out := Transform(raw, "sports", now)
	require.Len(t, out, 3)

	a := out[0]
	assert.Equal(t, "storm-hits-coast-1700000000000-0", a.Slug)
	assert.Equal(t, "live-1700000000000-0", a.ID)
	assert.Equal(t, "Heavy rain", a.Description)
	assert.Equal(t, "Heavy rain", a.Content)
	assert.Equal(t, "https://img.test/a.jpg", a.ImageURL)
	assert.Equal(t, "Wire", a.Author)
	assert.Equal(t, "sports", a.Category)
	require.NotNil(t, a.ExternalURL)
	assert.Equal(t, "https://x.test/a", *a.ExternalURL)
	assert.True(t, a.IsBreaking)
	assert.GreaterOrEqual(t, a.Views, 500)
	assert.Less(t, a.Views, 10500)

	b := out[1]
	assert.Equal(t, "article-1700000000000-1700000000000-1", b.Slug, "non-Latin titles fall back to a timestamp base")
	assert.Len(t, b.Description, 200)
	assert.Equal(t, placeholderImage, b.ImageURL)
	assert.Equal(t, "External Source", b.Source)
	assert.True(t, b.IsBreaking)

	assert.False(t, out[2].IsBreaking)
	assert.Nil(t, out[2].ExternalURL)
	assert.Equal(t, "Read full article...", out[2].Description)
}

func TestSearchTermFromSlug(t *testing.T) {
	assert.Equal(t, "storm hits coast", SearchTermFromSlug("storm-hits-coast-1700000000000-0"))
	assert.Equal(t, "२०२४ चुनाव परिणाम", SearchTermFromSlug("२०२४-चुनाव-परिणाम"), "Devanagari digits count as Devanagari")
	assert.Equal(t, "alpha beta gamma delta", SearchTermFromSlug("alpha-beta-gamma-delta-epsilon"))
	assert.Equal(t, "", SearchTermFromSlug("12-ab-34"))
}
