// Package api exposes registered entities as a headless JSON API.
//
// Every entity gets five routes under the mount point:
//
//	GET    /{plural}      list, with exact-match filtering via the query string
//	POST   /{plural}      create from a JSON body
//	GET    /{name}/{id}   fetch one entity
//	POST   /{name}/{id}   replace one entity from a JSON body
//	DELETE /{name}/{id}   delete and return the deleted entity
//
// Path segments use the kebab-case entity names. Errors are returned as
// {"error": "..."} with 404 for absent entities, 400 for malformed input
// and vetoed writes, and 500 otherwise.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// EntityHandler handles the JSON API requests for all registered entities.
type EntityHandler struct {
	service simplecms.Service
}

// NewEntityHandler creates a new entity handler.
func NewEntityHandler(service simplecms.Service) *EntityHandler {
	return &EntityHandler{service: service}
}

// Routes returns the routes for every entity registered at call time.
func (h *EntityHandler) Routes() chi.Router {
	r := chi.NewRouter()

	for _, sc := range h.service.Registry().Schemas() {
		r.Get("/"+sc.PluralPath, h.List(sc))
		r.Post("/"+sc.PluralPath, h.Create(sc))
		r.Get("/"+sc.Path+"/{id}", h.Get(sc))
		r.Post("/"+sc.Path+"/{id}", h.Update(sc))
		r.Delete("/"+sc.Path+"/{id}", h.Delete(sc))
	}
	return r
}

// List returns all entities of one type, narrowed by query-string filters.
func (h *EntityHandler) List(sc *simplecms.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entities, err := h.service.ListEntities(r.Context(), simplecms.ListEntitiesRequest{
			Name:    sc.Name,
			Filters: r.URL.Query(),
		})
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		render.JSON(w, r, entities)
	}
}

// Get returns one entity by id.
func (h *EntityHandler) Get(sc *simplecms.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entity, err := h.service.GetEntity(r.Context(), simplecms.GetEntityRequest{
			Name: sc.Name,
			ID:   chi.URLParam(r, "id"),
		})
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		render.JSON(w, r, entity)
	}
}

// Create stores a new entity decoded from the JSON body.
func (h *EntityHandler) Create(sc *simplecms.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entity, err := h.service.DecodeJSON(sc, r.Body)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		created, err := h.service.CreateEntity(r.Context(), simplecms.CreateEntityRequest{
			Name:   sc.Name,
			Entity: entity,
		})
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		id, _ := sc.ID(created)
		slog.Info("Entity created", "entity", sc.Name, "id", id)
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, created)
	}
}

// Update replaces an entity with the JSON body. The path id wins over any id
// carried in the body.
func (h *EntityHandler) Update(sc *simplecms.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entity, err := h.service.DecodeJSON(sc, r.Body)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		updated, err := h.service.UpdateEntity(r.Context(), simplecms.UpdateEntityRequest{
			Name:   sc.Name,
			ID:     chi.URLParam(r, "id"),
			Entity: entity,
		})
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		slog.Info("Entity updated", "entity", sc.Name, "id", chi.URLParam(r, "id"))
		render.JSON(w, r, updated)
	}
}

// Delete removes an entity and returns its last stored state.
func (h *EntityHandler) Delete(sc *simplecms.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := h.service.DeleteEntity(r.Context(), simplecms.DeleteEntityRequest{
			Name: sc.Name,
			ID:   chi.URLParam(r, "id"),
		})
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		slog.Info("Entity deleted", "entity", sc.Name, "id", chi.URLParam(r, "id"))
		render.JSON(w, r, deleted)
	}
}

func (h *EntityHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var hookErr *simplecms.HookError
	switch {
	case errors.Is(err, simplecms.ErrNotFound), errors.Is(err, simplecms.ErrNotRegistered):
		status = http.StatusNotFound
	case errors.Is(err, simplecms.ErrDecode),
		errors.Is(err, simplecms.ErrBadFilter),
		errors.Is(err, simplecms.ErrInvalidID),
		errors.Is(err, simplecms.ErrWrongType),
		errors.As(err, &hookErr):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		slog.Error("Entity request failed", "error", err)
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: err.Error()})
}
