package middleware

import (
	"context"
	"net/http"

	"maker-profiles/config"
	"maker-profiles/models"
	"maker-profiles/utils"
)

type contextKey string

const ownerKey contextKey = "owner"

// ProfileLookup is the read side of the profile store.
type ProfileLookup interface {
	Get(handle string) (models.Profile, bool)
}

// Identity resolves the identity cookies into the profile they own and
// stores it on the request context. Requests without a valid pair pass
// through anonymously; rejecting them is up to RequireOwner.
func Identity(cfg config.IdentityConfig, profiles ProfileLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if owner, ok := ResolveOwner(r, cfg, profiles); ok {
				r = r.WithContext(ContextWithOwner(r.Context(), owner))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ResolveOwner returns the profile whose handle and edit secret match the
// request's identity cookies.
func ResolveOwner(r *http.Request, cfg config.IdentityConfig, profiles ProfileLookup) (models.Profile, bool) {
	handle := cookieValue(r, cfg.HandleCookieName)
	secret := cookieValue(r, cfg.SecretCookieName)
	if handle == "" || secret == "" {
		return models.Profile{}, false
	}

	profile, found := profiles.Get(handle)
	if !found || !utils.SecretsMatch(profile.EditSecret, secret) {
		return models.Profile{}, false
	}
	return profile, true
}

func OwnerFromContext(ctx context.Context) (models.Profile, bool) {
	owner, ok := ctx.Value(ownerKey).(models.Profile)
	return owner, ok
}

func ContextWithOwner(ctx context.Context, owner models.Profile) context.Context {
	return context.WithValue(ctx, ownerKey, owner)
}

// RequireOwner rejects requests that carry no valid identity with 403. The
// response does not reveal whether the claimed handle exists.
func RequireOwner(next AppHandler) AppHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		if _, ok := OwnerFromContext(r.Context()); !ok {
			return NewAppError(http.StatusForbidden, "You can only edit your own profile.", nil)
		}
		return next(w, r)
	}
}

func cookieValue(r *http.Request, name string) string {
	if cookie, err := r.Cookie(name); err == nil {
		return cookie.Value
	}
	return ""
}
