package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/spicerack/internal/catalog"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *catalog.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Index lookups.
	r.Get("/models/search", h.SearchModels)
	r.Get("/models/{name}", h.GetModel)
	r.Get("/subcircuits/search", h.SearchSubcircuits)
	r.Get("/subcircuits/{name}", h.GetSubcircuit)

	// Mirror full-text search.
	r.Get("/search", h.Search)

	// Netlist operations.
	r.Post("/netlist/parse", h.ParseNetlist)
	r.Post("/netlist/resolve", h.ResolveNetlist)

	// Library management.
	r.Post("/libraries", h.AddLibrary)
	r.Post("/reindex", h.Reindex)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
