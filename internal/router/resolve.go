// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pagebuilder/internal/models"
	"pagebuilder/internal/pages"
)

// PagePattern is the catch-all route served by the generic page handler.
const PagePattern = "/*"

// HomeURL returns the URL of the site root route.
func HomeURL() string {
	return "/"
}

// PagePath returns the URL the generic page route would use for path.
// The root slug maps to the home route instead.
func PagePath(path string) string {
	if path == models.RootSlug {
		return HomeURL()
	}
	return "/" + path
}

// PageURL returns the canonical URL of a page.
func PageURL(p *models.Page) string {
	return PagePath(p.FullPath())
}

// Resolver classifies page paths against a chi route table. It must be
// bound to the router before use; an unbound resolver treats every path
// as generic.
type Resolver struct {
	routes chi.Routes
}

// NewResolver returns a resolver, optionally bound to routes.
func NewResolver(routes chi.Routes) *Resolver {
	return &Resolver{routes: routes}
}

// Bind attaches the route table. Call it once, before serving.
func (res *Resolver) Bind(routes chi.Routes) {
	res.routes = routes
}

// Kind reports which route would serve a GET for the page path.
func (res *Resolver) Kind(path string) pages.RouteKind {
	if res.routes == nil {
		return pages.RouteGeneric
	}

	rctx := chi.NewRouteContext()
	if !res.routes.Match(rctx, http.MethodGet, PagePath(path)) {
		return pages.RouteNone
	}
	if rctx.RoutePattern() == PagePattern {
		return pages.RouteGeneric
	}
	return pages.RouteExplicit
}
