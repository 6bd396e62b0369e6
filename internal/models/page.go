// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// PageStatus represents the publishing state of a page.
type PageStatus string

const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusPublished PageStatus = "published"
)

// RootSlug is the slug of the page served at the site root.
const RootSlug = "/"

// Page is a node in the site's page tree. Slug holds the page's full
// routable path (e.g. "company/contact"), kept in sync with the parent
// chain by the rename and reparent operations.
type Page struct {
	ID            uuid.UUID  `json:"id"`
	ParentID      *uuid.UUID `json:"parent_id,omitempty"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	InMenu        bool       `json:"in_menu"`
	LoginRequired bool       `json:"login_required"`
	Status        PageStatus `json:"status"`
	PublishDate   *time.Time `json:"publish_date,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Virtual fields populated by store and service methods.
	Parent   *Page  `json:"-"`
	Children []Page `json:"children,omitempty"`
	Depth    int    `json:"depth,omitempty"`
}

// NewPage returns a page with the column defaults applied: published,
// shown in the menu, no login required.
func NewPage(title, slug string) *Page {
	return &Page{
		Title:  title,
		Slug:   slug,
		InMenu: true,
		Status: PageStatusPublished,
	}
}

// IsPublished returns true if the page is in published status.
func (p *Page) IsPublished() bool {
	return p.Status == PageStatusPublished
}

// IsVisible reports whether the page may be shown to non-staff visitors
// at the given instant: it must be published, and now must fall inside
// the optional [PublishDate, ExpiryDate] window.
func (p *Page) IsVisible(now time.Time) bool {
	if !p.IsPublished() {
		return false
	}
	if p.PublishDate != nil && p.PublishDate.After(now) {
		return false
	}
	if p.ExpiryDate != nil && p.ExpiryDate.Before(now) {
		return false
	}
	return true
}

// IsRoot reports whether the page is served at the site root.
func (p *Page) IsRoot() bool {
	return p.Slug == RootSlug
}

// HasParent reports whether the page sits below another page.
func (p *Page) HasParent() bool {
	return p.ParentID != nil
}

// FullPath returns the routable path of the page.
func (p *Page) FullPath() string {
	return p.Slug
}

// Segment returns the part of the slug owned by this page alone. When the
// parent is loaded and the slug sits below it, the parent's path is
// stripped; otherwise the whole slug is the segment.
func (p *Page) Segment() string {
	if p.Parent == nil {
		return p.Slug
	}
	if rest, ok := strings.CutPrefix(p.Slug, p.Parent.FullPath()+"/"); ok {
		return rest
	}
	return p.Slug
}

// PublishedSince returns a human-readable age of the publish date,
// e.g. "3 days ago". Empty when no publish date is set.
func (p *Page) PublishedSince(now time.Time) string {
	if p.PublishDate == nil {
		return ""
	}
	return humanize.RelTime(*p.PublishDate, now, "ago", "from now")
}

func (p *Page) String() string {
	return p.Title
}
