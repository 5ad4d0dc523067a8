package slug

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wellFormed = regexp.MustCompile(`^[\p{L}\p{N}]+(-[\p{L}\p{N}]+)*$`)

type takenSet map[string]bool

func (s takenSet) exists(_ context.Context, candidate string) (bool, error) {
	return s[candidate], nil
}

func TestGenerateLatinTitle(t *testing.T) {
	got := Generate("Breaking: Storm Hits! (Update)")
	assert.Equal(t, "breaking-storm-hits-update", got)

	unique, err := EnsureUnique(context.Background(), got, takenSet{}.exists)
	require.NoError(t, err)
	assert.Regexp(t, `^breaking-storm-hits-update(-[a-z0-9]{4})?$`, unique)
}

func TestGenerateStripsAccents(t *testing.T) {
	assert.Equal(t, "cafe-creme-brulee", Generate("Café  Crème -- Brûlée"))
}

func TestGenerateDevanagari(t *testing.T) {
	got := Generate("२०२४ चुनाव परिणाम")

	require.NotEmpty(t, got)
	assert.True(t, strings.HasPrefix(got, "२०२४-"), got)
	assert.Regexp(t, wellFormed, got)
	hasDevanagari := false
	for _, r := range got {
		assert.False(t, r < unicode.MaxASCII && unicode.IsLetter(r), "unexpected latin letter in %q", got)
		if unicode.Is(unicode.Devanagari, r) {
			hasDevanagari = true
		}
	}
	assert.True(t, hasDevanagari, got)

	unique, err := EnsureUnique(context.Background(), got, takenSet{}.exists)
	require.NoError(t, err)
	assert.Equal(t, got, unique)
}

func TestGenerateFallsBackForEmptyTitles(t *testing.T) {
	for _, title := range []string{"", "!!!", "🔥🔥🔥", " -- "} {
		got := Generate(title)
		assert.Regexp(t, `^item-\d+-\d+$`, got, "title %q", title)
	}
}

func TestGenerateIsWellFormed(t *testing.T) {
	titles := []string{
		"  Leading and trailing  ",
		"Multiple---hyphens and   spaces",
		"Mixed हिंदी and English 2024",
		"Tabs\tand\nnewlines",
		"Ünïcödé Ñame",
	}
	for _, title := range titles {
		got := Generate(title)
		assert.Regexp(t, wellFormed, got, "title %q", title)
		assert.Equal(t, strings.ToLower(got), got)
	}
}

func TestGenerateASCIICompatibleForASCII(t *testing.T) {
	for _, title := range []string{"Hello World", "Breaking: Storm Hits! (Update)", "A  -  B"} {
		assert.Equal(t, Generate(title), GenerateASCII(title), "title %q", title)
	}
	assert.Regexp(t, `^item-\d+-\d+$`, GenerateASCII("चुनाव"))
}

func TestASCIIBaseTruncates(t *testing.T) {
	long := strings.Repeat("word ", 40)
	got := ASCIIBase(long, 80)
	assert.LessOrEqual(t, len(got), 80)
	assert.False(t, strings.HasSuffix(got, "-"))
	assert.Equal(t, "", ASCIIBase("!!!", 80))
}

func TestCandidate(t *testing.T) {
	assert.Equal(t, "base", Candidate("base", 0))
	for attempt := 1; attempt < MaxAttempts; attempt++ {
		assert.Regexp(t, `^base-[a-z0-9]{4}$`, Candidate("base", attempt))
	}
}

func TestEnsureUniqueRetriesWithSuffix(t *testing.T) {
	got, err := EnsureUnique(context.Background(), "storm", takenSet{"storm": true}.exists)
	require.NoError(t, err)
	assert.Regexp(t, `^storm-[a-z0-9]{4}$`, got)
}

func TestEnsureUniqueForcesTimestampAfterMaxAttempts(t *testing.T) {
	calls := 0
	alwaysTaken := func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	}

	got, err := EnsureUnique(context.Background(), "storm", alwaysTaken)
	require.NoError(t, err)
	assert.Equal(t, MaxAttempts, calls)
	assert.Regexp(t, `^storm-[a-z0-9]{8,}$`, got)
}

func TestEnsureUniqueIsIdempotentForSelf(t *testing.T) {
	// The stored item owns "storm"; its own id is excluded by the check.
	selfAware := func(_ context.Context, candidate string) (bool, error) {
		return false, nil
	}
	first, err := EnsureUnique(context.Background(), "storm", selfAware)
	require.NoError(t, err)
	second, err := EnsureUnique(context.Background(), "storm", selfAware)
	require.NoError(t, err)
	assert.Equal(t, "storm", first)
	assert.Equal(t, first, second)
}

func TestEnsureUniquePropagatesLookupErrors(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := EnsureUnique(context.Background(), "storm", func(context.Context, string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestShortID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := ShortID()
		assert.Len(t, id, 10)
		assert.Regexp(t, `^[0-9a-z]{10}$`, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 150)
}
