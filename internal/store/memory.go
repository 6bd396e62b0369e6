// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pagebuilder/internal/models"
)

// MemoryPageStore keeps pages in process memory. It backs `serve --memory`
// and handler tests. InTx serializes callers and, when the callback fails,
// restores the rows written through the transaction's context. Writes made
// outside the transaction are left alone.
type MemoryPageStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]models.Page
	txMu sync.Mutex
}

// NewMemoryPageStore returns an empty in-memory store.
func NewMemoryPageStore() *MemoryPageStore {
	return &MemoryPageStore{rows: make(map[uuid.UUID]models.Page)}
}

// memTx records the prior state of every row a transaction wrote. A nil
// entry means the row did not exist.
type memTx struct {
	undo map[uuid.UUID]*models.Page
}

// remember saves the current state of row id before the transaction in
// ctx overwrites it. The caller holds s.mu.
func (s *MemoryPageStore) remember(ctx context.Context, id uuid.UUID) {
	tx, ok := ctx.Value(txKey{}).(*memTx)
	if !ok {
		return
	}
	if _, seen := tx.undo[id]; seen {
		return
	}
	if prev, exists := s.rows[id]; exists {
		tx.undo[id] = &prev
		return
	}
	tx.undo[id] = nil
}

// detach strips the virtual fields before a page is stored or returned.
func detach(p models.Page) models.Page {
	p.Parent = nil
	p.Children = nil
	p.Depth = 0
	return p
}

func (s *MemoryPageStore) FindByID(_ context.Context, id uuid.UUID) (*models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *MemoryPageStore) FindBySlug(_ context.Context, slug string) (*models.Page, error) {
	matches := s.filter(func(p models.Page) bool { return p.Slug == slug }, bySlug)
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (s *MemoryPageStore) ListByParent(_ context.Context, parentID *uuid.UUID) ([]models.Page, error) {
	return s.filter(func(p models.Page) bool {
		if parentID == nil || p.ParentID == nil {
			return parentID == nil && p.ParentID == nil
		}
		return *p.ParentID == *parentID
	}, byTitle), nil
}

func (s *MemoryPageStore) ListBySlugPrefix(_ context.Context, prefix string) ([]models.Page, error) {
	return s.filter(func(p models.Page) bool { return strings.HasPrefix(p.Slug, prefix) }, bySlug), nil
}

func (s *MemoryPageStore) Ancestors(_ context.Context, id uuid.UUID) ([]models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var chain []models.Page
	cur, ok := s.rows[id]
	for depth := 0; ok && cur.ParentID != nil && depth < maxTreeDepth; depth++ {
		cur, ok = s.rows[*cur.ParentID]
		if ok {
			chain = append(chain, cur)
		}
	}
	return chain, nil
}

func (s *MemoryPageStore) ListMenu(_ context.Context) ([]models.Page, error) {
	return s.filter(func(p models.Page) bool { return p.InMenu }, byTitle), nil
}

func (s *MemoryPageStore) Insert(ctx context.Context, p *models.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rows[p.ID]; exists {
		return fmt.Errorf("insert page: duplicate id %s", p.ID)
	}
	s.remember(ctx, p.ID)
	s.rows[p.ID] = detach(*p)
	return nil
}

func (s *MemoryPageStore) Update(ctx context.Context, p *models.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.rows[p.ID]
	if !ok {
		return nil
	}
	s.remember(ctx, p.ID)
	row := detach(*p)
	row.CreatedAt = prev.CreatedAt
	s.rows[p.ID] = row
	return nil
}

// Delete removes the page and, like ON DELETE CASCADE, its subtree.
func (s *MemoryPageStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doomed := []uuid.UUID{id}
	for len(doomed) > 0 {
		cur := doomed[0]
		doomed = doomed[1:]
		if _, exists := s.rows[cur]; exists {
			s.remember(ctx, cur)
		}
		delete(s.rows, cur)
		for cid, p := range s.rows {
			if p.ParentID != nil && *p.ParentID == cur {
				doomed = append(doomed, cid)
			}
		}
	}
	return nil
}

func (s *MemoryPageStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, nested := ctx.Value(txKey{}).(*memTx); nested {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &memTx{undo: make(map[uuid.UUID]*models.Page)}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		s.mu.Lock()
		for id, prev := range tx.undo {
			if prev == nil {
				delete(s.rows, id)
				continue
			}
			s.rows[id] = *prev
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

type order func(a, b models.Page) bool

func bySlug(a, b models.Page) bool {
	if a.Slug != b.Slug {
		return a.Slug < b.Slug
	}
	return a.ID.String() < b.ID.String()
}

func byTitle(a, b models.Page) bool {
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.ID.String() < b.ID.String()
}

func (s *MemoryPageStore) filter(keep func(models.Page) bool, less order) []models.Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Page
	for _, p := range s.rows {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
