package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHandleSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Mario", "mario"},
		{"Super  Mario\tBros", "super-mario-bros"},
		{"Luigi's Mansion!", "luigis-mansion"},
		{"under_score-ok", "under_score-ok"},
		{"***", ""},
		{strings.Repeat("a", 40), strings.Repeat("a", 32)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToHandleSlug(tt.input), "input %q", tt.input)
	}
}

func TestUniqueHandleNoCollision(t *testing.T) {
	none := func(string) bool { return false }
	assert.Equal(t, "peach", UniqueHandle("Peach", "Ignored", none))
	assert.Equal(t, "toad", UniqueHandle("", "Toad", none))
	assert.Equal(t, DefaultHandle, UniqueHandle("!!", "??", none))
}

func TestUniqueHandleProbesSuffixes(t *testing.T) {
	taken := map[string]bool{"mario": true, "mario-2": true, "mario-3": true}
	handle := UniqueHandle("", "Mario", func(h string) bool { return taken[h] })
	assert.Equal(t, "mario-4", handle)
}

func TestUniqueHandleKeepsLengthBound(t *testing.T) {
	base := strings.Repeat("x", MaxHandleLength)
	handle := UniqueHandle(base, "", func(h string) bool { return h == base })
	assert.Equal(t, strings.Repeat("x", MaxHandleLength-2)+"-2", handle)
	assert.LessOrEqual(t, len(handle), MaxHandleLength)
}

func TestUniqueHandleAvoidsManyCollisions(t *testing.T) {
	taken := map[string]bool{"bowser": true}
	for n := 2; n <= 50; n++ {
		taken[fmt.Sprintf("bowser-%d", n)] = true
	}
	handle := UniqueHandle("bowser", "", func(h string) bool { return taken[h] })
	assert.False(t, taken[handle])
	assert.Equal(t, "bowser-51", handle)
}

func TestUniqueHandleGivesUpAfterBoundedProbes(t *testing.T) {
	original := newRandomSuffix
	newRandomSuffix = func() string { return "abc123" }
	defer func() { newRandomSuffix = original }()

	probes := 0
	handle := UniqueHandle("wario", "", func(string) bool {
		probes++
		return true
	})
	assert.Equal(t, "maker-abc123", handle)
	assert.Equal(t, maxHandleProbes, probes)
}

func TestNormalizeMakerID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"abc123def", "ABC-123-DEF"},
		{"ab", "AB"},
		{"abcd", "ABC-D"},
		{" a-b c 1 2 3 x y z ", "ABC-123-XYZ"},
		{"abc123def456", "ABC-123-DEF"},
		{"", ""},
		{"ÄBC", "BC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeMakerID(tt.input), "input %q", tt.input)
	}
}

func TestIsValidMakerID(t *testing.T) {
	assert.True(t, IsValidMakerID("ABC-123-DEF"))
	assert.True(t, IsValidMakerID("000-000-000"))
	assert.False(t, IsValidMakerID("ABC-123-D"))
	assert.False(t, IsValidMakerID("abc-123-def"))
	assert.False(t, IsValidMakerID("ABC123DEF"))
	assert.False(t, IsValidMakerID("ABC-123-DEF-"))
	assert.False(t, IsValidMakerID(""))
}

func TestNormalizeItemID(t *testing.T) {
	assert.Equal(t, "XYZ-987-QWE", NormalizeItemID("  xyz-987-qwe "))
	assert.Equal(t, strings.Repeat("A", MaxItemIDLength), NormalizeItemID(strings.Repeat("a", 30)))
	assert.Equal(t, "", NormalizeItemID("   "))
}
