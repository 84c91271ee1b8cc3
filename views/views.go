package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"maker-profiles/middleware"
	"maker-profiles/models"
	"maker-profiles/validation"

	"github.com/gorilla/csrf"
)

//go:embed templates/*.html
var templateFiles embed.FS

const dateLayout = "Jan 2, 2006"

var pageNames = []string{"index.html", "makers.html", "profile.html", "form.html", "error.html"}

// Renderer holds one parsed template set per page, each combined with the
// shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

// Page is what every template receives. Data is page specific.
type Page struct {
	Title       string
	CSRFToken   string
	CSRFField   string
	OwnerHandle string
	Data        any
}

func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"rank": func(i int) int { return i + 1 },
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format(dateLayout)
		},
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFiles, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = tpl
	}
	return &Renderer{pages: pages}, nil
}

// Render executes page into a buffer first so a template failure never
// leaves a half-written response.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) error {
	tpl, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	page := Page{
		Title:     title,
		CSRFToken: csrf.Token(r),
		CSRFField: "gorilla.csrf.Token",
		Data:      data,
	}
	if owner, ok := middleware.OwnerFromContext(r.Context()); ok {
		page.OwnerHandle = owner.Handle
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RenderError implements middleware.ErrorRenderer.
func (v *Renderer) RenderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := ErrorData{Status: status, StatusText: http.StatusText(status), Message: message}
	if err := v.Render(w, r, status, "error.html", http.StatusText(status), data); err != nil {
		log.Printf("error page render failed: status=%d err=%v", status, err)
		http.Error(w, message, status)
	}
}

type ErrorData struct {
	Status     int
	StatusText string
	Message    string
}

type ListData struct {
	Query    string
	Tag      string
	Tags     []string
	Summary  []TagCount
	Profiles []models.Profile
	Total    int
}

type ProfileData struct {
	Profile models.Profile
	IsOwner bool
}

type TagOption struct {
	Name    string
	Checked bool
}

type ItemSlot struct {
	Number int
	Item   models.TopItem
}

type FormData struct {
	Editing    bool
	Action     string
	Handle     string
	Input      validation.ProfileInput
	TagOptions []TagOption
	Slots      []ItemSlot
	ErrorField string
	Error      string
}

// NewFormData builds the shared create/edit form, always with
// validation.MaxTopItems favorite slots.
func NewFormData(editing bool, handle string, input validation.ProfileInput, fieldErr *validation.FieldError) FormData {
	action := "/new"
	if editing {
		action = "/edit"
	}

	selected := make(map[string]bool, len(input.Tags))
	for _, tag := range input.Tags {
		selected[tag] = true
	}
	options := make([]TagOption, 0, len(validation.Tags))
	for _, tag := range validation.Tags {
		options = append(options, TagOption{Name: tag, Checked: selected[tag]})
	}

	slots := make([]ItemSlot, validation.MaxTopItems)
	for i := range slots {
		slots[i].Number = i + 1
		if i < len(input.TopItems) {
			slots[i].Item = input.TopItems[i]
		}
	}

	data := FormData{
		Editing:    editing,
		Action:     action,
		Handle:     handle,
		Input:      input,
		TagOptions: options,
		Slots:      slots,
	}
	if fieldErr != nil {
		data.ErrorField = fieldErr.Field
		data.Error = fieldErr.Message
	}
	return data
}

// InputFromProfile pre-populates the edit form.
func InputFromProfile(profile models.Profile) validation.ProfileInput {
	return validation.ProfileInput{
		Handle:   profile.Handle,
		Name:     profile.Name,
		MakerID:  profile.MakerID,
		Bio:      profile.Bio,
		Tags:     append([]string{}, profile.Tags...),
		TopItems: append([]models.TopItem{}, profile.TopItems...),
	}
}
