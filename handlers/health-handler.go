package handlers

import (
	"encoding/json"
	"net/http"

	"maker-profiles/middleware"
)

type JSONResponse map[string]interface{}

// Counter is satisfied by the profile store.
type Counter interface {
	Len() int
}

func HealthHandler(profiles Counter) middleware.AppHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(JSONResponse{"status": "ok", "profiles": profiles.Len()}); err != nil {
			return middleware.NewAppError(http.StatusInternalServerError, "Could not encode health status", err)
		}
		return nil
	}
}
