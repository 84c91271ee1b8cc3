package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"maker-profiles/config"
	"maker-profiles/middleware"
	"maker-profiles/models"
	"maker-profiles/store"
	"maker-profiles/utils"
	"maker-profiles/validation"
	"maker-profiles/views"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

var (
	generateEditSecret = utils.GenerateEditSecret
	newProfileID       = uuid.NewString
)

const maxFormBytes = 64 << 10

// PageRenderer renders one named page with its data.
type PageRenderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) error
}

// SaveScheduler is notified after every successful mutation.
type SaveScheduler interface {
	ScheduleSave()
}

type ProfileHandler struct {
	cfg   config.Config
	store store.ProfileStore
	saver SaveScheduler
	pages PageRenderer
	now   func() time.Time
}

func NewProfileHandler(cfg config.Config, profiles store.ProfileStore, saver SaveScheduler, pages PageRenderer) *ProfileHandler {
	return &ProfileHandler{cfg: cfg, store: profiles, saver: saver, pages: pages, now: time.Now}
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query().Get("q")
	tag := r.URL.Query().Get("tag")

	all := h.store.List()
	views.SortNewestFirst(all)

	data := views.ListData{
		Query:    query,
		Tag:      tag,
		Tags:     validation.Tags,
		Summary:  views.TagSummary(all),
		Profiles: views.FilterProfiles(all, query, tag),
		Total:    len(all),
	}
	return h.render(w, r, http.StatusOK, "index.html", "Find a maker", data)
}

func (h *ProfileHandler) Makers(w http.ResponseWriter, r *http.Request) error {
	all := h.store.List()
	views.SortNewestFirst(all)
	return h.render(w, r, http.StatusOK, "makers.html", "All makers", views.ListData{Profiles: all, Total: len(all)})
}

func (h *ProfileHandler) NewForm(w http.ResponseWriter, r *http.Request) error {
	if _, ok := middleware.OwnerFromContext(r.Context()); ok {
		http.Redirect(w, r, "/edit", http.StatusSeeOther)
		return nil
	}
	data := views.NewFormData(false, "", validation.ProfileInput{}, nil)
	return h.render(w, r, http.StatusOK, "form.html", "Create your profile", data)
}

// Create registers a new profile and hands the client its identity
// cookies. A client that already owns a profile is sent to /edit instead.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) error {
	if _, ok := middleware.OwnerFromContext(r.Context()); ok {
		http.Redirect(w, r, "/edit", http.StatusSeeOther)
		return nil
	}

	input, fieldErr, err := h.parseForm(w, r)
	if err != nil {
		return err
	}
	if fieldErr != nil {
		data := views.NewFormData(false, "", input, fieldErr)
		return h.render(w, r, http.StatusBadRequest, "form.html", "Create your profile", data)
	}

	secret, err := generateEditSecret()
	if err != nil {
		log.Printf("Error generating edit secret: %v", err)
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}

	now := h.now().UTC()
	profile := models.Profile{
		ID:         newProfileID(),
		Name:       input.Name,
		MakerID:    input.MakerID,
		Bio:        input.Bio,
		Tags:       input.Tags,
		TopItems:   input.TopItems,
		CreatedAt:  now,
		UpdatedAt:  now,
		EditSecret: secret,
	}
	created, err := h.store.Create(profile, func(taken func(string) bool) string {
		return validation.UniqueHandle(input.Handle, input.Name, taken)
	})
	if err != nil {
		log.Printf("Error creating profile: %v", err)
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}

	setCookie(w, h.cfg, h.cfg.Identity.HandleCookieName, created.Handle, h.cfg.Identity.TTL)
	setCookie(w, h.cfg, h.cfg.Identity.SecretCookieName, created.EditSecret, h.cfg.Identity.TTL)
	h.saver.ScheduleSave()

	log.Printf("profile created: handle=%s", created.Handle)
	http.Redirect(w, r, profilePath(created.Handle), http.StatusSeeOther)
	return nil
}

func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) error {
	profile, ok := h.store.Get(mux.Vars(r)["handle"])
	if !ok {
		return middleware.NewAppError(http.StatusNotFound, "No maker with that handle.", nil)
	}

	owner, isOwner := middleware.OwnerFromContext(r.Context())
	data := views.ProfileData{Profile: profile, IsOwner: isOwner && owner.Handle == profile.Handle}
	return h.render(w, r, http.StatusOK, "profile.html", profile.Name, data)
}

// EditForm and Update expect RequireOwner in front of them.
func (h *ProfileHandler) EditForm(w http.ResponseWriter, r *http.Request) error {
	profile, err := h.ownedProfile(r)
	if err != nil {
		return err
	}
	data := views.NewFormData(true, profile.Handle, views.InputFromProfile(profile), nil)
	return h.render(w, r, http.StatusOK, "form.html", "Edit your profile", data)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) error {
	profile, err := h.ownedProfile(r)
	if err != nil {
		return err
	}

	input, fieldErr, err := h.parseForm(w, r)
	if err != nil {
		return err
	}
	if fieldErr != nil {
		data := views.NewFormData(true, profile.Handle, input, fieldErr)
		return h.render(w, r, http.StatusBadRequest, "form.html", "Edit your profile", data)
	}

	updated, err := h.store.Update(profile.Handle, func(p *models.Profile) {
		p.Name = input.Name
		p.MakerID = input.MakerID
		p.Bio = input.Bio
		p.Tags = input.Tags
		p.TopItems = input.TopItems
		p.UpdatedAt = nextUpdatedAt(p.UpdatedAt, h.now().UTC())
	})
	if errors.Is(err, store.ErrNotFound) {
		return middleware.NewAppError(http.StatusForbidden, "You can only edit your own profile.", err)
	}
	if err != nil {
		log.Printf("Error updating profile: %v", err)
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
	h.saver.ScheduleSave()

	log.Printf("profile updated: handle=%s", updated.Handle)
	http.Redirect(w, r, profilePath(updated.Handle), http.StatusSeeOther)
	return nil
}

func (h *ProfileHandler) NotFound(w http.ResponseWriter, r *http.Request) error {
	return middleware.NewAppError(http.StatusNotFound, "Not found", nil)
}

func (h *ProfileHandler) ownedProfile(r *http.Request) (models.Profile, error) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		return models.Profile{}, middleware.NewAppError(http.StatusForbidden, "You can only edit your own profile.", nil)
	}
	profile, found := h.store.Get(owner.Handle)
	if !found {
		return models.Profile{}, middleware.NewAppError(http.StatusForbidden, "You can only edit your own profile.", store.ErrNotFound)
	}
	return profile, nil
}

// parseForm separates the two failure kinds: a malformed body is an
// *AppError, a rejected field is a *FieldError for re-rendering.
func (h *ProfileHandler) parseForm(w http.ResponseWriter, r *http.Request) (validation.ProfileInput, *validation.FieldError, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return validation.ProfileInput{}, nil, middleware.NewAppError(http.StatusBadRequest, "Invalid form submission", err)
	}

	input, err := validation.ParseProfileForm(r.PostForm)
	var fieldErr *validation.FieldError
	if errors.As(err, &fieldErr) {
		return input, fieldErr, nil
	}
	if err != nil {
		return input, nil, middleware.NewAppError(http.StatusBadRequest, "Invalid form submission", err)
	}
	return input, nil, nil
}

func (h *ProfileHandler) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) error {
	if err := h.pages.Render(w, r, status, page, title, data); err != nil {
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
	return nil
}

// nextUpdatedAt keeps edit timestamps strictly increasing even when the
// clock has not moved since the previous write.
func nextUpdatedAt(previous, now time.Time) time.Time {
	if now.After(previous) {
		return now
	}
	return previous.Add(time.Millisecond)
}

func profilePath(handle string) string {
	return "/u/" + url.PathEscape(handle)
}

func setCookie(w http.ResponseWriter, cfg config.Config, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     cfg.Cookie.Path,
		Domain:   cfg.Cookie.Domain,
		HttpOnly: true,
		Secure:   cfg.Cookie.Secure,
		SameSite: cfg.Cookie.SameSite,
		MaxAge:   int(ttl.Seconds()),
	})
}
