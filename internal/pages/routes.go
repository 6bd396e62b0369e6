// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pages

// RouteKind classifies the handler that would serve a page path.
type RouteKind int

const (
	// RouteGeneric is the catch-all page lookup handler.
	RouteGeneric RouteKind = iota
	// RouteExplicit is any route registered for a specific path.
	RouteExplicit
	// RouteNone means nothing would serve the path.
	RouteNone
)

func (k RouteKind) String() string {
	switch k {
	case RouteGeneric:
		return "generic"
	case RouteExplicit:
		return "explicit"
	default:
		return "none"
	}
}

// RouteResolver tells which kind of route would serve a page's full path.
type RouteResolver interface {
	Kind(path string) RouteKind
}

// ResolverFunc adapts a plain function to RouteResolver.
type ResolverFunc func(path string) RouteKind

// Kind calls f(path).
func (f ResolverFunc) Kind(path string) RouteKind {
	return f(path)
}
