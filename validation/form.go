package validation

import (
	"fmt"
	"net/url"
	"strings"

	"maker-profiles/models"
)

const (
	MaxNameLength      = 40
	MaxBioLength       = 300
	MaxTopItems        = 10
	MaxItemTitleLength = 60
	MaxItemNoteLength  = 80
)

// FieldError rejects a single required field. Message is shown to the
// visitor as-is.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ProfileInput is a normalized create/edit submission.
type ProfileInput struct {
	Handle   string
	Name     string
	MakerID  string
	Bio      string
	Tags     []string
	TopItems []models.TopItem
}

// ItemField names the form field for favorite slot n (1-based), e.g.
// "item3_title".
func ItemField(n int, part string) string {
	return fmt.Sprintf("item%d_%s", n, part)
}

// ParseProfileForm normalizes a submitted form. Optional fields degrade to
// empty; a missing name or a malformed maker id yields a *FieldError
// together with the best-effort input so the form can be re-rendered.
func ParseProfileForm(form url.Values) (ProfileInput, error) {
	input := ProfileInput{
		Handle:   strings.TrimSpace(form.Get("handle")),
		Name:     truncateRunes(strings.TrimSpace(form.Get("name")), MaxNameLength),
		MakerID:  NormalizeMakerID(form.Get("makerId")),
		Bio:      truncateRunes(strings.TrimSpace(form.Get("bio")), MaxBioLength),
		Tags:     SelectTags(form["tags"]),
		TopItems: parseTopItems(form),
	}

	if input.Name == "" {
		return input, &FieldError{Field: "name", Message: "Display name is required (up to 40 characters)."}
	}
	if !IsValidMakerID(input.MakerID) {
		return input, &FieldError{Field: "makerId", Message: "Maker ID must look like ABC-123-DEF (three groups of three letters or digits)."}
	}
	return input, nil
}

func parseTopItems(form url.Values) []models.TopItem {
	items := make([]models.TopItem, 0, MaxTopItems)
	for n := 1; n <= MaxTopItems; n++ {
		item := models.TopItem{
			Title:  truncateRunes(strings.TrimSpace(form.Get(ItemField(n, "title"))), MaxItemTitleLength),
			ItemID: NormalizeItemID(form.Get(ItemField(n, "id"))),
			Note:   truncateRunes(strings.TrimSpace(form.Get(ItemField(n, "note"))), MaxItemNoteLength),
		}
		if item.Title == "" && item.ItemID == "" && item.Note == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}
