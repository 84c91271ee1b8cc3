package validation

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"maker-profiles/models"

	"github.com/stretchr/testify/assert"
)

func TestSelectTags(t *testing.T) {
	assert.Equal(t, []string{}, SelectTags(nil))
	assert.Equal(t, []string{"Puzzle", "Speedrun"}, SelectTags([]string{"Speedrun", "Puzzle"}))
	assert.Equal(t, []string{"Music"}, SelectTags([]string{"Music", "Music", "music", "Nope"}))
	assert.Equal(t, []string{"Standard", "Puzzle"}, SelectTags([]string{"Kaizo", "Puzzle", "Standard", "Art"}))
}

func TestSelectTagsNeverExceedsBound(t *testing.T) {
	inputs := [][]string{
		Tags,
		append(append([]string{}, Tags...), Tags...),
		{"x", "y", "z"},
		{"Art", "Art", "Art"},
	}
	for _, input := range inputs {
		selected := SelectTags(input)
		assert.LessOrEqual(t, len(selected), MaxTags)
		for _, tag := range selected {
			assert.True(t, IsKnownTag(tag))
		}
	}
}

func TestParseProfileFormValid(t *testing.T) {
	form := url.Values{
		"name":        {"  Mario  "},
		"handle":      {""},
		"makerId":     {"abc123def"},
		"bio":         {strings.Repeat("b", 350)},
		"tags":        {"Kaizo", "Unknown", "Music"},
		"item1_title": {"Castle Run"},
		"item1_id":    {"q1w-2e3-r4t"},
		"item2_title": {""},
		"item3_note":  {"just a note"},
	}

	input, err := ParseProfileForm(form)
	assert.NoError(t, err)
	assert.Equal(t, "Mario", input.Name)
	assert.Equal(t, "ABC-123-DEF", input.MakerID)
	assert.Len(t, input.Bio, MaxBioLength)
	assert.Equal(t, []string{"Music", "Kaizo"}, input.Tags)
	assert.Equal(t, []models.TopItem{
		{Title: "Castle Run", ItemID: "Q1W-2E3-R4T"},
		{Note: "just a note"},
	}, input.TopItems)
}

func TestParseProfileFormCompactsFavorites(t *testing.T) {
	form := url.Values{"name": {"Luigi"}, "makerId": {"LLL-222-GGG"}}
	form.Set(ItemField(10, "title"), "Last slot")
	form.Set(ItemField(4, "id"), "abc")

	input, err := ParseProfileForm(form)
	assert.NoError(t, err)
	assert.Equal(t, []models.TopItem{
		{ItemID: "ABC"},
		{Title: "Last slot"},
	}, input.TopItems)
}

func TestParseProfileFormMissingName(t *testing.T) {
	_, err := ParseProfileForm(url.Values{"name": {"   "}, "makerId": {"abc123def"}})
	var fieldErr *FieldError
	assert.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "name", fieldErr.Field)
}

func TestParseProfileFormBadMakerID(t *testing.T) {
	input, err := ParseProfileForm(url.Values{"name": {"Toad"}, "makerId": {"abc12"}})
	var fieldErr *FieldError
	assert.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "makerId", fieldErr.Field)
	assert.Equal(t, "ABC-12", input.MakerID)
	assert.Contains(t, err.Error(), "makerId")
}

func TestParseProfileFormTruncatesName(t *testing.T) {
	input, err := ParseProfileForm(url.Values{"name": {strings.Repeat("é", 50)}, "makerId": {"abc123def"}})
	assert.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", MaxNameLength), input.Name)
}
