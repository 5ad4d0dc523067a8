// Package slug derives URL identifiers from titles and keeps them unique.
package slug

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxAttempts is the number of existence checks before the timestamp suffix is forced.
const MaxAttempts = 10

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

var (
	nonSlugChars = regexp.MustCompile(`[^\p{L}\p{N}\s\p{Z}-]+`)
	nonWordChars = regexp.MustCompile(`[^\w\s-]+`)
	whitespace   = regexp.MustCompile(`[\s\p{Z}]+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// ExistsFunc reports whether a candidate slug is already taken by another item.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Generate lower-cases the title, strips combining marks after NFKD
// decomposition and keeps only letters, numbers and hyphens.
// Titles that reduce to nothing get an "item-<ms>-<n>" base.
func Generate(title string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mark)))
	decomposed, _, err := transform.String(t, strings.ToLower(title))
	if err != nil {
		return GenerateASCII(title)
	}

	s := nonSlugChars.ReplaceAllString(decomposed, "")
	if s = collapse(s); s == "" {
		return fallback()
	}
	return s
}

// GenerateASCII is the word-character variant of Generate. It agrees with
// Generate on plain ASCII titles.
func GenerateASCII(title string) string {
	if s := ASCIIBase(title, 0); s != "" {
		return s
	}
	return fallback()
}

// ASCIIBase returns the word-character slug of title cut to max runes
// (0 means no limit). It may be empty.
func ASCIIBase(title string, max int) string {
	s := nonWordChars.ReplaceAllString(strings.ToLower(title), "")
	s = collapse(s)
	if max > 0 && len(s) > max {
		s = strings.Trim(s[:max], "-")
	}
	return s
}

func collapse(s string) string {
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func fallback() string {
	return fmt.Sprintf("item-%d-%d", time.Now().UnixMilli(), rand.IntN(1_000_001))
}

// Candidate returns the slug tried on the given attempt: the base itself
// first, then the base with a random 4 character suffix.
func Candidate(base string, attempt int) string {
	if attempt <= 0 {
		return base
	}
	return base + "-" + randomBase36(4)
}

// EnsureUnique returns the first candidate that exists reports as free.
// After MaxAttempts collisions a millisecond timestamp suffix is accepted
// without another check. Self-matches are the caller's concern: exists
// must ignore the item being updated.
func EnsureUnique(ctx context.Context, base string, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		candidate := Candidate(base, attempt)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return base + "-" + strconv.FormatInt(time.Now().UnixMilli(), 36), nil
}

// ShortID returns a compact share token: base36 milliseconds followed by
// random base36 characters, 10 characters total.
func ShortID() string {
	id := strconv.FormatInt(time.Now().UnixMilli(), 36) + randomBase36(6)
	if len(id) > 10 {
		id = id[:10]
	}
	return id
}

func randomBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.IntN(len(base36))]
	}
	return string(b)
}
