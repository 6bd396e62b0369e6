// Package router sets up the HTTP routes and middleware chain for the page
// service, and resolves page paths against that route table.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pagebuilder/internal/handlers"
	"pagebuilder/internal/middleware"
)

// New creates and returns the configured Chi router. Routes registered
// here take precedence over the generic page route, which makes any page
// whose path they match an overridden page.
func New(h *handlers.Pages) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", healthHandler)

	// Page management API.
	r.Route("/admin/pages", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Show)
		r.Put("/{id}/slug", h.Rename)
		r.Put("/{id}/parent", h.Reparent)
		r.Delete("/{id}", h.Delete)
	})

	r.Get("/menu", h.Menu)

	// Public routes: the root page, then generic slug dispatch.
	r.Get("/", h.Home)
	r.Get(PagePattern, h.Page)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
