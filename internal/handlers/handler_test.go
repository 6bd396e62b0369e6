// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Pages live in the in-memory store, so no external services are needed.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"pagebuilder/internal/models"
	"pagebuilder/internal/pages"
	"pagebuilder/internal/store"
)

// testNow is the fixed clock used by every handler test.
var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// explicitRoutes classifies paths the same way the production route table
// would: the home page and the API prefixes are served by their own
// handlers, everything else by the page route.
var explicitRoutes = pages.ResolverFunc(func(path string) pages.RouteKind {
	switch {
	case path == models.RootSlug, path == "menu", path == "health":
		return pages.RouteExplicit
	case path == "admin" || strings.HasPrefix(path, "admin/"):
		return pages.RouteExplicit
	}
	return pages.RouteGeneric
})

// memCache is an in-process PageCache.
type memCache struct {
	mu    sync.Mutex
	pages map[string]models.Page
	hits  int
}

func newMemCache() *memCache {
	return &memCache{pages: make(map[string]models.Page)}
}

func (c *memCache) Get(_ context.Context, path string) (*models.Page, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pages[path]
	if ok {
		c.hits++
	}
	return &p, ok
}

func (c *memCache) Set(_ context.Context, p *models.Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[p.FullPath()] = *p
}

func (c *memCache) InvalidatePage(_ context.Context, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pages, path)
}

func (c *memCache) InvalidatePrefix(_ context.Context, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.pages {
		if strings.HasPrefix(k, prefix) {
			delete(c.pages, k)
		}
	}
}

// testEnv wires the page handlers to an in-memory store.
type testEnv struct {
	svc   *pages.Service
	cache *memCache
	mux   chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	c := newMemCache()
	svc := pages.NewService(store.NewMemoryPageStore(), explicitRoutes,
		pages.WithClock(func() time.Time { return testNow }),
		pages.WithInvalidator(c),
	)
	h := NewPages(svc, c, func(p *models.Page) string {
		if p.IsRoot() {
			return "/"
		}
		return "/" + p.FullPath()
	})

	r := chi.NewRouter()
	r.Route("/admin/pages", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Show)
		r.Put("/{id}/slug", h.Rename)
		r.Put("/{id}/parent", h.Reparent)
		r.Delete("/{id}", h.Delete)
	})
	r.Get("/menu", h.Menu)
	r.Get("/", h.Home)
	r.Get("/*", h.Page)

	return &testEnv{svc: svc, cache: c, mux: r}
}

// addPage creates a page through the service.
func (e *testEnv) addPage(t *testing.T, title, slug string, parent *models.Page) *models.Page {
	t.Helper()
	p := models.NewPage(title, slug)
	if parent != nil {
		id := parent.ID
		p.ParentID = &id
		p.Parent = parent
	}
	if err := e.svc.Create(context.Background(), p); err != nil {
		t.Fatalf("Create %q: %v", slug, err)
	}
	return p
}

// do sends a request with an optional JSON body and returns the recorder.
func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			if err := json.NewEncoder(&buf).Encode(b); err != nil {
				t.Fatalf("encode body: %v", err)
			}
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.mux.ServeHTTP(rr, req)
	return rr
}

// decode unmarshals the response body into a generic map.
func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}

// slugOf reads a page's stored slug.
func (e *testEnv) slugOf(t *testing.T, p *models.Page) string {
	t.Helper()
	got, err := e.svc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Get %s: %v", p.ID, err)
	}
	return got.Slug
}

func ptr[T any](v T) *T { return &v }
