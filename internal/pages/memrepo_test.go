package pages

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"pagebuilder/internal/models"
	"pagebuilder/internal/store"
)

// memRepo wraps the in-memory store with write counting, injectable
// write failures and a log of committed transactions.
type memRepo struct {
	*store.MemoryPageStore
	writes int
	failOn func(p *models.Page) error
	events *[]string
}

func newMemRepo() *memRepo {
	return &memRepo{MemoryPageStore: store.NewMemoryPageStore(), events: new([]string)}
}

func (m *memRepo) Insert(ctx context.Context, p *models.Page) error {
	if m.failOn != nil {
		if err := m.failOn(p); err != nil {
			return err
		}
	}
	if err := m.MemoryPageStore.Insert(ctx, p); err != nil {
		return err
	}
	m.writes++
	return nil
}

func (m *memRepo) Update(ctx context.Context, p *models.Page) error {
	if m.failOn != nil {
		if err := m.failOn(p); err != nil {
			return err
		}
	}
	if err := m.MemoryPageStore.Update(ctx, p); err != nil {
		return err
	}
	m.writes++
	return nil
}

func (m *memRepo) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := m.MemoryPageStore.InTx(ctx, fn); err != nil {
		return err
	}
	*m.events = append(*m.events, "commit")
	return nil
}

// add stores a page directly, bypassing the service and the write counter.
// Options adjust the page before it is stored.
func (m *memRepo) add(title, slug string, parent *models.Page, opts ...func(*models.Page)) *models.Page {
	p := models.NewPage(title, slug)
	p.ID = uuid.New()
	if parent != nil {
		id := parent.ID
		p.ParentID = &id
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := m.MemoryPageStore.Insert(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}

// row returns the stored copy of a page.
func (m *memRepo) row(t *testing.T, id uuid.UUID) models.Page {
	t.Helper()
	p, err := m.FindByID(context.Background(), id)
	if err != nil || p == nil {
		t.Fatalf("page %s not stored (err %v)", id, err)
	}
	return *p
}

func (m *memRepo) slugOf(t *testing.T, id uuid.UUID) string {
	t.Helper()
	return m.row(t, id).Slug
}

func (m *memRepo) exists(id uuid.UUID) bool {
	p, _ := m.FindByID(context.Background(), id)
	return p != nil
}

// fakeRoutes treats the listed paths as explicitly routed.
type fakeRoutes map[string]bool

func (f fakeRoutes) Kind(path string) RouteKind {
	if f[path] {
		return RouteExplicit
	}
	return RouteGeneric
}
