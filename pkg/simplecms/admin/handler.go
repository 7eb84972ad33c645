// Package admin serves the server-rendered management UI for all registered
// entities. Every entity gets a list page, an add form, an edit form and a
// delete action under the mount point:
//
//	GET  /{plural}            list page
//	GET  /{plural}/add        empty form
//	POST /{plural}/add        create, redirect to the edit page
//	GET  /{name}/{id}         pre-filled form
//	POST /{name}/{id}         replace, redirect back to the edit page
//	POST /{name}/{id}/delete  delete, redirect to the list page
//
// GET / redirects to the first entity's list page. Path segments use the
// kebab-case entity names. Pages are rendered from embedded templates and
// interface text is localized per request (lang query param, then cookie,
// then Accept-Language).
package admin

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/i18n"
)

// entityFormID identifies the entity form element; the inline scripts of
// datetime inputs hook its submit event.
const entityFormID = "cms-entity-form"

// Handler renders the admin pages for all registered entities.
type Handler struct {
	service     simplecms.Service
	editor      simplecms.EditorConfig
	uploadsPath string
}

// NewHandler creates an admin handler. uploadsPath is the public mount point
// of the uploads endpoint, "/uploads" by convention.
func NewHandler(service simplecms.Service, editor simplecms.EditorConfig, uploadsPath string) *Handler {
	if uploadsPath == "" {
		uploadsPath = "/uploads"
	}
	return &Handler{service: service, editor: editor, uploadsPath: uploadsPath}
}

// Routes returns the routes for every entity registered at call time.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	schemas := h.service.Registry().Schemas()
	if len(schemas) > 0 {
		home := "/" + schemas[0].PluralPath
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, home, http.StatusFound)
		})
	}
	for _, sc := range schemas {
		r.Get("/"+sc.PluralPath, h.List(sc))
		r.Get("/"+sc.PluralPath+"/add", h.AddForm(sc))
		r.Post("/"+sc.PluralPath+"/add", h.Add(sc))
		r.Get("/"+sc.Path+"/{id}", h.EditForm(sc))
		r.Post("/"+sc.Path+"/{id}", h.Edit(sc))
		r.Post("/"+sc.Path+"/{id}/delete", h.Delete(sc))
	}
	return r
}

// List renders the entity table with one row per stored entity.
func (h *Handler) List(sc *simplecms.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag, p := h.language(w, r)

		entities, err := h.service.ListEntities(r.Context(), simplecms.ListEntitiesRequest{Name: sc.Name})
		if err != nil {
			h.renderError(w, r, err)
			return
		}

		columns := sc.Columns()
		view := listView{
			basePage: h.base(tag, sc.PluralLabel, sc),
			Heading:  sc.PluralLabel,
			AddURL:   "/" + sc.PluralPath + "/add",
			AddLabel: p.Sprintf(i18n.ListAddKey),
		}
		for _, f := range columns {
			view.Columns = append(view.Columns, listColumn{Label: f.Label, Hidden: f.Hidden})
		}
		for _, entity := range entities {
			root, err := sc.Struct(entity)
			if err != nil {
				h.renderError(w, r, err)
				return
			}
			id, err := sc.ID(entity)
			if err != nil {
				h.renderError(w, r, err)
				return
			}
			row := listRow{Onclick: rowOnclick("/" + sc.Path + "/" + url.PathEscape(id))}
			for _, f := range columns {
				row.Cells = append(row.Cells, listCell{
					HTML:   renderCell(f, f.ValueOf(root), h.uploadsPath),
					Hidden: f.Hidden,
				})
			}
			view.Rows = append(view.Rows, row)
		}
		h.render(w, http.StatusOK, "list.html", view)
	}
}

// AddForm renders an empty entity form.
func (h *Handler) AddForm(sc *simplecms.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag, p := h.language(w, r)

		inputs, err := h.renderer(p).renderInputs(sc, sc.New())
		if err != nil {
			h.renderError(w, r, err)
			return
		}

		title := p.Sprintf(i18n.CreateTitleKey, sc.Label)
		h.render(w, http.StatusOK, "form.html", formView{
			basePage: h.base(tag, title, sc),
			Heading:  title,
			FormID:   entityFormID,
			Inputs:   inputs,
			Submit:   p.Sprintf(i18n.SubmitKey),
		})
	}
}

// Add creates an entity from the submitted form and redirects to its edit
// page.
func (h *Handler) Add(sc *simplecms.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entity, err := h.decodeForm(sc, r)
		if err != nil {
			h.renderError(w, r, err)
			return
		}

		created, err := h.service.CreateEntity(r.Context(), simplecms.CreateEntityRequest{
			Name:   sc.Name,
			Entity: entity,
		})
		if err != nil {
			h.renderError(w, r, err)
			return
		}

		id, err := sc.ID(created)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		slog.Info("Entity created", "entity", sc.Name, "id", id)
		http.Redirect(w, r, "/"+sc.Path+"/"+url.PathEscape(id), http.StatusSeeOther)
	}
}

// EditForm renders the form pre-filled with the stored entity.
func (h *Handler) EditForm(sc *simplecms.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag, p := h.language(w, r)
		id := chi.URLParam(r, "id")

		entity, err := h.service.GetEntity(r.Context(), simplecms.GetEntityRequest{Name: sc.Name, ID: id})
		if err != nil {
			h.renderError(w, r, err)
			return
		}

		inputs, err := h.renderer(p).renderInputs(sc, entity)
		if err != nil {
			h.renderError(w, r, err)
			return
		}

		title := p.Sprintf(i18n.EditTitleKey, sc.Label)
		h.render(w, http.StatusOK, "form.html", formView{
			basePage:  h.base(tag, title, sc),
			Heading:   title,
			FormID:    entityFormID,
			Inputs:    inputs,
			Submit:    p.Sprintf(i18n.SubmitKey),
			DeleteURL: "/" + sc.Path + "/" + url.PathEscape(id) + "/delete",
			Delete:    p.Sprintf(i18n.DeleteKey),
		})
	}
}

// Edit replaces the stored entity with the submitted form and redirects back
// to the edit page. Fields excluded from the form keep their stored values.
func (h *Handler) Edit(sc *simplecms.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		entity, err := h.decodeForm(sc, r)
		if err != nil {
			h.renderError(w, r, err)
			return
		}

		updated, err := h.service.UpdateEntity(r.Context(), simplecms.UpdateEntityRequest{
			Name:            sc.Name,
			ID:              id,
			Entity:          entity,
			PreserveSkipped: true,
		})
		if err != nil {
			h.renderError(w, r, err)
			return
		}

		stored, err := sc.ID(updated)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		slog.Info("Entity updated", "entity", sc.Name, "id", stored)
		http.Redirect(w, r, "/"+sc.Path+"/"+url.PathEscape(stored), http.StatusSeeOther)
	}
}

// Delete removes the entity and redirects to the list page.
func (h *Handler) Delete(sc *simplecms.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if _, err := h.service.DeleteEntity(r.Context(), simplecms.DeleteEntityRequest{Name: sc.Name, ID: id}); err != nil {
			h.renderError(w, r, err)
			return
		}

		slog.Info("Entity deleted", "entity", sc.Name, "id", id)
		http.Redirect(w, r, "/"+sc.PluralPath, http.StatusSeeOther)
	}
}

// language resolves the request language, persisting an explicit query-param
// choice as a cookie.
func (h *Handler) language(w http.ResponseWriter, r *http.Request) (language.Tag, *message.Printer) {
	tag, persist := i18n.ResolveTag(r)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}
	return tag, i18n.Printer(tag)
}

func (h *Handler) renderer(p *message.Printer) *inputRenderer {
	return &inputRenderer{
		printer:     p,
		formID:      entityFormID,
		editor:      h.editor,
		uploadsPath: h.uploadsPath,
	}
}

func (h *Handler) decodeForm(sc *simplecms.Schema, r *http.Request) (any, error) {
	if err := r.ParseForm(); err != nil {
		return nil, &simplecms.EntityError{Entity: sc.Name, Op: "decode", Err: fmt.Errorf("%w: %v", simplecms.ErrDecode, err)}
	}
	return h.service.DecodeForm(sc, r.PostForm)
}

func (h *Handler) base(tag language.Tag, title string, active *simplecms.Schema) basePage {
	var sidebar []sidebarEntry
	for _, sc := range h.service.Registry().Schemas() {
		sidebar = append(sidebar, sidebarEntry{
			URL:    "/" + sc.PluralPath,
			Label:  sc.PluralLabel,
			Active: active != nil && sc.Name == active.Name,
		})
	}
	return basePage{Lang: tag.String(), Title: title, Sidebar: sidebar}
}

// render executes the template into a buffer first so a rendering failure
// never emits a half-written page.
func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("Failed to render admin page", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// renderError maps service errors to the error page: 404 for absent
// entities, 400 for malformed input and vetoed writes, 500 otherwise.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	tag, p := h.language(w, r)

	status := http.StatusInternalServerError
	heading := p.Sprintf(i18n.ErrorTitleKey)
	var hookErr *simplecms.HookError
	switch {
	case errors.Is(err, simplecms.ErrNotFound), errors.Is(err, simplecms.ErrNotRegistered):
		status = http.StatusNotFound
		heading = p.Sprintf(i18n.NotFoundTitleKey)
	case errors.Is(err, simplecms.ErrDecode),
		errors.Is(err, simplecms.ErrInvalidID),
		errors.Is(err, simplecms.ErrWrongType),
		errors.As(err, &hookErr):
		status = http.StatusBadRequest
	}
	slog.Error("Admin request failed", "status", status, "error", err)

	h.render(w, status, "error.html", errorView{
		basePage: basePage{Lang: tag.String(), Title: heading},
		Heading:  heading,
		Lines:    []string{err.Error()},
		Back:     p.Sprintf(i18n.GoBackKey),
	})
}
