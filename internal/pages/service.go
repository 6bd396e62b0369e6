// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pages implements the page tree operations: saving with
// timestamp defaults, slug renames that cascade to descendants, and
// reparenting with cycle detection.
package pages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"pagebuilder/internal/models"
	"pagebuilder/internal/slug"
)

// Repository is the persistence contract the service runs on. Lookups
// return (nil, nil) when nothing matches. Methods called with the context
// passed to an InTx callback run inside that transaction.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Page, error)
	FindBySlug(ctx context.Context, slug string) (*models.Page, error)
	ListByParent(ctx context.Context, parentID *uuid.UUID) ([]models.Page, error)
	// ListBySlugPrefix returns every page whose slug starts with prefix,
	// ordered by slug then id.
	ListBySlugPrefix(ctx context.Context, prefix string) ([]models.Page, error)
	// Ancestors returns the parent chain of id, nearest first.
	Ancestors(ctx context.Context, id uuid.UUID) ([]models.Page, error)
	ListMenu(ctx context.Context) ([]models.Page, error)
	Insert(ctx context.Context, p *models.Page) error
	Update(ctx context.Context, p *models.Page) error
	// Delete removes the page and its whole subtree.
	Delete(ctx context.Context, id uuid.UUID) error
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Invalidator drops cached lookups for page paths.
type Invalidator interface {
	InvalidatePage(ctx context.Context, path string)
	InvalidatePrefix(ctx context.Context, prefix string)
}

// Service groups the page operations over a repository and a route resolver.
type Service struct {
	repo   Repository
	routes RouteResolver
	cache  Invalidator
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for timestamps and visibility.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithInvalidator registers a cache to purge when paths change.
func WithInvalidator(inv Invalidator) Option {
	return func(s *Service) { s.cache = inv }
}

// NewService creates a page service. routes decides which pages are
// overridden by explicit routes.
func NewService(repo Repository, routes RouteResolver, opts ...Option) *Service {
	s := &Service{repo: repo, routes: routes, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// Get loads a page by ID together with its parent.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if err := s.loadParent(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByPath loads a page by its full path.
func (s *Service) GetByPath(ctx context.Context, path string) (*models.Page, error) {
	p, err := s.repo.FindBySlug(ctx, path)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// Children returns the direct children of a page; nil lists root pages.
func (s *Service) Children(ctx context.Context, parentID *uuid.UUID) ([]models.Page, error) {
	return s.repo.ListByParent(ctx, parentID)
}

// Menu returns the visible in-menu pages as a tree. Children of hidden
// pages are left out along with their parent.
func (s *Service) Menu(ctx context.Context) ([]models.Page, error) {
	all, err := s.repo.ListMenu(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	visible := all[:0]
	for _, p := range all {
		if p.IsVisible(now) {
			visible = append(visible, p)
		}
	}
	return buildTree(visible, nil, 0), nil
}

// buildTree recursively builds a tree from a flat list.
func buildTree(flat []models.Page, parentID *uuid.UUID, depth int) []models.Page {
	var result []models.Page
	for _, p := range flat {
		if ptrEqual(p.ParentID, parentID) {
			p.Depth = depth
			p.Children = buildTree(flat, &p.ID, depth+1)
			result = append(result, p)
		}
	}
	return result
}

func ptrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Save persists p. It always stamps UpdatedAt, stamps CreatedAt on first
// insert, and defaults PublishDate to now when unset.
func (s *Service) Save(ctx context.Context, p *models.Page) error {
	now := s.now()
	p.UpdatedAt = now
	if p.PublishDate == nil {
		published := now
		p.PublishDate = &published
	}

	if p.ID != uuid.Nil {
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		s.invalidate(ctx, p.Slug)
		return nil
	}

	p.ID = uuid.New()
	p.CreatedAt = now
	if err := s.repo.Insert(ctx, p); err != nil {
		p.ID = uuid.Nil
		return err
	}
	return nil
}

// Create inserts a new page. A blank slug is generated from the title and
// placed below the parent's path.
func (s *Service) Create(ctx context.Context, p *models.Page) error {
	if p.Status == "" {
		p.Status = models.PageStatusPublished
	}
	if p.Slug == "" {
		parentPath := ""
		if err := s.loadParent(ctx, p); err != nil {
			return err
		}
		if p.Parent != nil {
			parentPath = p.Parent.FullPath()
		}
		p.Slug = slug.Join(parentPath, slug.Generate(p.Title))
	}
	if err := s.Save(ctx, p); err != nil {
		return err
	}
	slog.Info("page created", "id", p.ID, "slug", p.Slug)
	return nil
}

// IsOverridden reports whether an explicitly registered route, rather than
// the generic page handler, would serve p's path.
func (s *Service) IsOverridden(p *models.Page) bool {
	return s.routes.Kind(p.FullPath()) != RouteGeneric
}

// Rename changes p's slug and rewrites the leading path of every
// non-overridden page below it.
func (s *Service) Rename(ctx context.Context, p *models.Page, newSlug string) error {
	oldSlug, oldUpdated, oldPublish := p.Slug, p.UpdatedAt, p.PublishDate
	err := s.inTx(ctx, func(ctx context.Context) error {
		return s.rename(ctx, p, newSlug)
	})
	if err != nil {
		p.Slug, p.UpdatedAt, p.PublishDate = oldSlug, oldUpdated, oldPublish
		return err
	}
	return nil
}

func (s *Service) rename(ctx context.Context, p *models.Page, newSlug string) error {
	oldSlug := p.Slug

	var moved int
	if oldSlug != "" && oldSlug != newSlug {
		descendants, err := s.repo.ListBySlugPrefix(ctx, slug.DescendantPrefix(oldSlug))
		if err != nil {
			return fmt.Errorf("list descendants of %q: %w", oldSlug, err)
		}
		for i := range descendants {
			d := &descendants[i]
			if d.ID == p.ID {
				continue
			}
			if s.IsOverridden(d) {
				slog.Debug("keeping overridden page path", "id", d.ID, "slug", d.Slug)
				continue
			}
			renamed, _ := slug.ReplacePrefix(d.Slug, oldSlug, newSlug)
			previous := d.Slug
			d.Slug = renamed
			if err := s.Save(ctx, d); err != nil {
				return fmt.Errorf("rename descendant %s: %w", d.ID, err)
			}
			s.invalidate(ctx, previous)
			moved++
		}
	}

	p.Slug = newSlug
	if err := s.Save(ctx, p); err != nil {
		return err
	}
	if oldSlug != newSlug {
		s.invalidate(ctx, oldSlug)
		slog.Info("page renamed", "id", p.ID, "from", oldSlug, "to", newSlug, "descendants", moved)
	}
	return nil
}

// Reparent moves p under newParent (nil moves it to the top level) and
// shifts its slug to match. It fails with a *CycleError, writing nothing,
// when newParent is p or one of p's descendants.
func (s *Service) Reparent(ctx context.Context, p, newParent *models.Page) error {
	if err := s.checkCycle(ctx, p, newParent); err != nil {
		return err
	}
	if err := s.loadParent(ctx, p); err != nil {
		return err
	}

	hadParent := p.HasParent()
	oldParentPath := ""
	if p.Parent != nil {
		oldParentPath = p.Parent.FullPath()
	}
	newParentPath := ""
	var newParentID *uuid.UUID
	if newParent != nil {
		newParentPath = newParent.FullPath()
		id := newParent.ID
		newParentID = &id
	}

	oldParentID, oldParent, oldSlug := p.ParentID, p.Parent, p.Slug
	oldUpdated, oldPublish := p.UpdatedAt, p.PublishDate
	err := s.inTx(ctx, func(ctx context.Context) error {
		p.ParentID = newParentID
		p.Parent = newParent
		if err := s.Save(ctx, p); err != nil {
			return err
		}

		ownSlug := p.Slug
		if ownSlug == "" {
			return nil
		}
		if !hadParent || oldParentPath == "" {
			if newParent == nil {
				return nil
			}
			return s.rename(ctx, p, slug.Join(newParentPath, ownSlug))
		}
		if slug.IsDescendant(ownSlug, oldParentPath) {
			moved, _ := slug.ReplacePrefix(ownSlug, oldParentPath, newParentPath)
			return s.rename(ctx, p, strings.Trim(moved, "/"))
		}
		return nil
	})
	if err != nil {
		p.ParentID, p.Parent, p.Slug = oldParentID, oldParent, oldSlug
		p.UpdatedAt, p.PublishDate = oldUpdated, oldPublish
		return err
	}

	slog.Info("page reparented", "id", p.ID, "parent", newParentID, "slug", p.Slug)
	return nil
}

// checkCycle walks newParent's ancestor chain looking for p.
func (s *Service) checkCycle(ctx context.Context, p, newParent *models.Page) error {
	if newParent == nil {
		return nil
	}
	if newParent.ID == p.ID {
		return &CycleError{PageID: p.ID, ParentID: newParent.ID}
	}
	ancestors, err := s.repo.Ancestors(ctx, newParent.ID)
	if err != nil {
		return fmt.Errorf("load ancestors of %s: %w", newParent.ID, err)
	}
	for _, a := range ancestors {
		if a.ID == p.ID {
			return &CycleError{PageID: p.ID, ParentID: newParent.ID}
		}
	}
	return nil
}

// Delete removes a page and its subtree.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, p.Slug)
	slog.Info("page deleted", "id", id, "slug", p.Slug)
	return nil
}

// loadParent fills p.Parent from p.ParentID when it is not loaded yet.
func (s *Service) loadParent(ctx context.Context, p *models.Page) error {
	if p.ParentID == nil {
		p.Parent = nil
		return nil
	}
	if p.Parent != nil && p.Parent.ID == *p.ParentID {
		return nil
	}
	parent, err := s.repo.FindByID(ctx, *p.ParentID)
	if err != nil {
		return fmt.Errorf("load parent of %s: %w", p.ID, err)
	}
	p.Parent = parent
	return nil
}

// pendingKey marks a context running inside Service.inTx. Its value
// collects the paths to purge once the transaction commits.
type pendingKey struct{}

type pendingPaths struct {
	paths []string
}

// inTx runs fn in a repository transaction and purges the paths fn
// invalidated only after the commit, so a concurrent read cannot put the
// pre-commit row back into the cache. Nested calls join the outer one.
func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, nested := ctx.Value(pendingKey{}).(*pendingPaths); nested {
		return s.repo.InTx(ctx, fn)
	}

	pending := &pendingPaths{}
	if err := s.repo.InTx(context.WithValue(ctx, pendingKey{}, pending), fn); err != nil {
		return err
	}
	for _, path := range pending.paths {
		s.invalidate(ctx, path)
	}
	return nil
}

// invalidate drops cached lookups for path and everything below it.
// Inside inTx the purge waits for the commit.
func (s *Service) invalidate(ctx context.Context, path string) {
	if s.cache == nil || path == "" {
		return
	}
	if pending, ok := ctx.Value(pendingKey{}).(*pendingPaths); ok {
		pending.paths = append(pending.paths, path)
		return
	}
	s.cache.InvalidatePage(ctx, path)
	s.cache.InvalidatePrefix(ctx, slug.DescendantPrefix(path))
}
