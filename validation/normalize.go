package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const (
	MaxHandleLength = 32
	MaxItemIDLength = 20

	// DefaultHandle is used when neither the requested handle nor the
	// display name yields any slug characters.
	DefaultHandle = "maker"

	maxHandleProbes = 10000
)

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	nonHandleChars  = regexp.MustCompile(`[^a-z0-9\-_]`)
	makerIDPattern  = regexp.MustCompile(`^[A-Z0-9]{3}-[A-Z0-9]{3}-[A-Z0-9]{3}$`)
	newRandomSuffix = func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:6] }
)

// ToHandleSlug lowercases input, turns whitespace runs into single hyphens,
// drops everything outside [a-z0-9-_] and truncates to MaxHandleLength.
func ToHandleSlug(input string) string {
	slug := strings.ToLower(strings.TrimSpace(input))
	slug = whitespaceRun.ReplaceAllString(slug, "-")
	slug = nonHandleChars.ReplaceAllString(slug, "")
	if len(slug) > MaxHandleLength {
		slug = slug[:MaxHandleLength]
	}
	return slug
}

// UniqueHandle picks a handle from preferred, then fallbackName, then
// DefaultHandle, and probes "-2", "-3", ... until taken reports false.
// After maxHandleProbes collisions it returns a random short handle.
func UniqueHandle(preferred, fallbackName string, taken func(string) bool) string {
	base := ToHandleSlug(preferred)
	if base == "" {
		base = ToHandleSlug(fallbackName)
	}
	if base == "" {
		base = DefaultHandle
	}
	if !taken(base) {
		return base
	}

	for n := 2; n <= maxHandleProbes; n++ {
		suffix := "-" + strconv.Itoa(n)
		stem := base
		if len(stem)+len(suffix) > MaxHandleLength {
			stem = stem[:MaxHandleLength-len(suffix)]
		}
		candidate := stem + suffix
		if !taken(candidate) {
			return candidate
		}
	}

	return DefaultHandle + "-" + newRandomSuffix()
}

// NormalizeMakerID uppercases input, keeps only letters and digits and
// regroups the first nine of them as XXX-XXX-XXX. Missing groups are
// omitted, not padded.
func NormalizeMakerID(input string) string {
	var raw strings.Builder
	for _, r := range strings.ToUpper(input) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			raw.WriteRune(r)
		}
	}
	chars := raw.String()
	if len(chars) > 9 {
		chars = chars[:9]
	}

	groups := make([]string, 0, 3)
	for start := 0; start < len(chars); start += 3 {
		end := start + 3
		if end > len(chars) {
			end = len(chars)
		}
		groups = append(groups, chars[start:end])
	}
	return strings.Join(groups, "-")
}

// IsValidMakerID reports whether value is exactly XXX-XXX-XXX in uppercase
// letters and digits.
func IsValidMakerID(value string) bool {
	return makerIDPattern.MatchString(value)
}

// NormalizeItemID trims, uppercases and truncates a course id. No other
// structure is enforced.
func NormalizeItemID(input string) string {
	return truncateRunes(strings.ToUpper(strings.TrimSpace(input)), MaxItemIDLength)
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
