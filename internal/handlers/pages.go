// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers exposes the page service over JSON HTTP endpoints.
package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pagebuilder/internal/models"
	"pagebuilder/internal/pages"
)

// PageCache caches page lookups by full path. *cache.PageCache satisfies it.
type PageCache interface {
	Get(ctx context.Context, path string) (*models.Page, bool)
	Set(ctx context.Context, p *models.Page)
}

// URLFunc maps a page to its canonical URL.
type URLFunc func(p *models.Page) string

// Pages groups the public page lookup and the page management API.
type Pages struct {
	svc   *pages.Service
	cache PageCache
	url   URLFunc
}

// NewPages creates the page handler group. cache may be nil when Valkey
// is not configured.
func NewPages(svc *pages.Service, cache PageCache, urlFor URLFunc) *Pages {
	return &Pages{svc: svc, cache: cache, url: urlFor}
}

// pageResponse is the JSON shape of a page.
type pageResponse struct {
	*models.Page
	URL            string         `json:"url"`
	Segment        string         `json:"segment"`
	Visible        bool           `json:"visible"`
	Overridden     bool           `json:"overridden"`
	PublishedSince string         `json:"published_since,omitempty"`
	Children       []pageResponse `json:"children,omitempty"`
}

func (h *Pages) respond(p *models.Page) pageResponse {
	now := h.svc.Now()
	resp := pageResponse{
		Page:           p,
		URL:            h.url(p),
		Segment:        p.Segment(),
		Visible:        p.IsVisible(now),
		Overridden:     h.svc.IsOverridden(p),
		PublishedSince: p.PublishedSince(now),
	}
	for i := range p.Children {
		resp.Children = append(resp.Children, h.respond(&p.Children[i]))
	}
	return resp
}

// Home handles GET / by serving the root page.
func (h *Pages) Home(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, models.RootSlug)
}

// Page handles GET /* by looking the request path up as a page slug.
func (h *Pages) Page(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(chi.URLParam(r, "*"), "/")
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}
	if path == "" {
		h.serve(w, r, models.RootSlug)
		return
	}
	h.serve(w, r, path)
}

// serve answers with the visible page at path. Drafts and pages outside
// their publish window are reported as missing. Login-required pages get
// 401: this service has no session layer to satisfy them.
func (h *Pages) serve(w http.ResponseWriter, r *http.Request, path string) {
	ctx := r.Context()

	p, cached := h.lookupCache(ctx, path)
	if !cached {
		var err error
		p, err = h.svc.GetByPath(ctx, path)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if h.cache != nil {
			h.cache.Set(ctx, p)
		}
	}

	if !p.IsVisible(h.svc.Now()) {
		writeError(w, r, pages.ErrNotFound)
		return
	}
	if p.LoginRequired {
		writeJSON(w, http.StatusUnauthorized, errorBody("login required"))
		return
	}
	writeJSON(w, http.StatusOK, h.respond(p))
}

func (h *Pages) lookupCache(ctx context.Context, path string) (*models.Page, bool) {
	if h.cache == nil {
		return nil, false
	}
	return h.cache.Get(ctx, path)
}

// Menu handles GET /menu with the visible in-menu page tree.
func (h *Pages) Menu(w http.ResponseWriter, r *http.Request) {
	tree, err := h.svc.Menu(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	items := make([]pageResponse, 0, len(tree))
	for i := range tree {
		items = append(items, h.respond(&tree[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": items})
}

// List handles GET /admin/pages. ?parent_id= lists the children of a
// page; without it the top-level pages are listed.
func (h *Pages) List(w http.ResponseWriter, r *http.Request) {
	var parentID *uuid.UUID
	if raw := r.URL.Query().Get("parent_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid parent_id"))
			return
		}
		parentID = &id
	}

	children, err := h.svc.Children(r.Context(), parentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items := make([]pageResponse, 0, len(children))
	for i := range children {
		items = append(items, h.respond(&children[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": items})
}

// Show handles GET /admin/pages/{id}.
func (h *Pages) Show(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPage(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.respond(p))
}

// Create handles POST /admin/pages.
func (h *Pages) Create(w http.ResponseWriter, r *http.Request) {
	var req createPageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	p := req.page()
	if p.ParentID != nil {
		parent, err := h.svc.Get(ctx, *p.ParentID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		p.Parent = parent
	}

	if err := h.svc.Create(ctx, p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.respond(p))
}

// Rename handles PUT /admin/pages/{id}/slug.
func (h *Pages) Rename(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPage(w, r)
	if !ok {
		return
	}
	var req renameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.Rename(r.Context(), p, req.Slug); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.respond(p))
}

// Reparent handles PUT /admin/pages/{id}/parent.
func (h *Pages) Reparent(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPage(w, r)
	if !ok {
		return
	}
	var req reparentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	var parent *models.Page
	if req.ParentID != nil {
		var err error
		parent, err = h.svc.Get(ctx, *req.ParentID)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	if err := h.svc.Reparent(ctx, p, parent); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.respond(p))
}

// Delete handles DELETE /admin/pages/{id}. The page's subtree goes with it.
func (h *Pages) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid page id"))
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadPage resolves the {id} URL parameter, writing the error response
// itself when it fails.
func (h *Pages) loadPage(w http.ResponseWriter, r *http.Request) (*models.Page, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid page id"))
		return nil, false
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return p, true
}
