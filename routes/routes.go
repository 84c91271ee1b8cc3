package routes

import (
	"net/http"

	"maker-profiles/handlers"
	"maker-profiles/middleware"

	"github.com/gorilla/mux"
)

// SetupRoutes mounts the site. Unknown paths and unsupported methods both
// end on the generic not-found page.
func SetupRoutes(h *handlers.ProfileHandler, health middleware.AppHandler, pages middleware.ErrorRenderer) *mux.Router {
	router := mux.NewRouter()
	wrap := func(handler middleware.AppHandler) http.HandlerFunc {
		return middleware.ErrorHandler(pages, handler)
	}

	router.HandleFunc("/", wrap(h.List)).Methods(http.MethodGet)
	router.HandleFunc("/makers", wrap(h.Makers)).Methods(http.MethodGet)
	router.HandleFunc("/new", wrap(h.NewForm)).Methods(http.MethodGet)
	router.HandleFunc("/new", wrap(h.Create)).Methods(http.MethodPost)
	router.HandleFunc("/u/{handle}", wrap(h.Show)).Methods(http.MethodGet)
	router.HandleFunc("/edit", wrap(middleware.RequireOwner(h.EditForm))).Methods(http.MethodGet)
	router.HandleFunc("/edit", wrap(middleware.RequireOwner(h.Update))).Methods(http.MethodPost)
	router.HandleFunc("/health", wrap(health)).Methods(http.MethodGet)

	router.NotFoundHandler = wrap(h.NotFound)
	router.MethodNotAllowedHandler = wrap(h.NotFound)

	return router
}
