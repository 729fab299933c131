package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/spicerack/internal/apperr"
	"github.com/starford/spicerack/internal/catalog"
	"github.com/starford/spicerack/internal/circuit"
	"github.com/starford/spicerack/internal/spice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *catalog.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

func searchParams(r *http.Request) (query, typeFilter string, limit int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	return q.Get("q"), q.Get("type"), limit
}

// SearchModels handles GET /models/search.
func (h *Handler) SearchModels(w http.ResponseWriter, r *http.Request) {
	query, typeFilter, limit := searchParams(r)
	results := h.svc.SearchModels(r.Context(), query, typeFilter, limit)
	if results == nil {
		results = []spice.ModelDefinition{}
	}
	writeJSON(w, http.StatusOK, ModelSearchResponse{Results: results})
}

// SearchSubcircuits handles GET /subcircuits/search.
func (h *Handler) SearchSubcircuits(w http.ResponseWriter, r *http.Request) {
	query, typeFilter, limit := searchParams(r)
	results := h.svc.SearchSubcircuits(r.Context(), query, typeFilter, limit)
	if results == nil {
		results = []spice.SubcircuitDefinition{}
	}
	writeJSON(w, http.StatusOK, SubcircuitSearchResponse{Results: results})
}

// GetSubcircuit handles GET /subcircuits/{name}.
func (h *Handler) GetSubcircuit(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	def, err := h.svc.GetSubcircuit(r.Context(), name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("get subcircuit failed", slog.String("name", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// GetModel handles GET /models/{name}.
func (h *Handler) GetModel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	def, err := h.svc.GetModel(r.Context(), name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("get model failed", slog.String("name", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// Search handles GET /search (mirror full-text).
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.FullTextSearch(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, FullTextSearchResponse{Results: results})
}

// ParseNetlist handles POST /netlist/parse. A line that cannot be
// decomposed is the client's fault: 400 with the offending line.
func (h *Handler) ParseNetlist(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req ParseNetlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	nl, err := h.svc.ParseNetlist(r.Context(), []byte(req.Content))
	if err != nil {
		var le *spice.LineError
		if errors.As(err, &le) {
			writeJSON(w, http.StatusBadRequest, errorBody(le.Error()))
			return
		}
		slog.Error("parse netlist failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ParseNetlistResponse{
		Title:      nl.Title,
		Components: nl.Components,
		Models:     nl.Models,
		Directives: nl.Directives,
	})
}

// ResolveNetlist handles POST /netlist/resolve.
func (h *Handler) ResolveNetlist(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req ParseNetlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	name := req.Name
	if name == "" {
		name = "netlist"
	}

	c, err := h.svc.ResolveNetlist(r.Context(), name, []byte(req.Content))
	if err != nil {
		var (
			le *spice.LineError
			ue *circuit.UnknownSubcircuitError
			ne *circuit.NodeCountError
		)
		switch {
		case errors.As(err, &le), errors.As(err, &ne):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.As(err, &ue):
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		default:
			slog.Error("resolve netlist failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	resp := ResolveNetlistResponse{
		Name:       c.Name,
		Components: len(c.Components()),
	}
	seen := map[string]struct{}{}
	for _, inst := range c.Instances() {
		resp.Instances = append(resp.Instances, ResolvedInstance(inst))
		if _, ok := seen[inst.Subcircuit]; !ok {
			seen[inst.Subcircuit] = struct{}{}
			resp.Subcircuits = append(resp.Subcircuits, inst.Subcircuit)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// AddLibrary handles POST /libraries.
func (h *Handler) AddLibrary(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req AddLibraryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Filename == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("filename and content are required"))
		return
	}
	stats, err := h.svc.AddLibrary(r.Context(), req.Filename, []byte(req.Content))
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorBody("library file already exists"))
			return
		}
		slog.Error("add library failed", slog.String("filename", req.Filename), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, AddLibraryResponse{Filename: req.Filename, Stats: stats})
}

// Reindex handles POST /reindex.
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Reindex(r.Context())
	if err != nil {
		slog.Error("reindex failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
