// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides the PostgreSQL-backed persistence for pages.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pagebuilder/internal/models"
)

// maxTreeDepth bounds the ancestor walk so corrupt data cannot loop forever.
const maxTreeDepth = 1000

// dbtx is the subset of *sql.DB and *sql.Tx the store needs.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// PageStore manages pages in the database.
type PageStore struct {
	db *sql.DB
}

// NewPageStore returns a new PageStore.
func NewPageStore(db *sql.DB) *PageStore {
	return &PageStore{db: db}
}

// conn returns the transaction carried by ctx, or the pool.
func (s *PageStore) conn(ctx context.Context) dbtx {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// InTx runs fn inside a transaction. Store calls made with the context
// handed to fn join it. Nested calls reuse the outer transaction.
func (s *PageStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const pageColumns = `id, parent_id, title, slug, in_menu, login_required, status,
	publish_date, expiry_date, created_at, updated_at`

// scanPage scans a row into a Page struct.
func scanPage(scanner interface{ Scan(...any) error }) (*models.Page, error) {
	var p models.Page
	err := scanner.Scan(
		&p.ID, &p.ParentID, &p.Title, &p.Slug, &p.InMenu, &p.LoginRequired,
		&p.Status, &p.PublishDate, &p.ExpiryDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// queryPages runs a query returning page rows.
func (s *PageStore) queryPages(ctx context.Context, op, query string, args ...any) ([]models.Page, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// findOne runs a single-row query. Returns nil if not found.
func (s *PageStore) findOne(ctx context.Context, op, query string, args ...any) (*models.Page, error) {
	p, err := scanPage(s.conn(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// FindByID retrieves a page by ID. Returns nil if not found.
func (s *PageStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	return s.findOne(ctx, "find page by id",
		`SELECT `+pageColumns+` FROM pages WHERE id = $1`, id)
}

// FindBySlug retrieves a page by its full path. Returns nil if not found.
func (s *PageStore) FindBySlug(ctx context.Context, slug string) (*models.Page, error) {
	return s.findOne(ctx, "find page by slug",
		`SELECT `+pageColumns+` FROM pages WHERE slug = $1 ORDER BY created_at LIMIT 1`, slug)
}

// ListByParent returns the direct children of parentID ordered by title.
// A nil parentID lists top-level pages.
func (s *PageStore) ListByParent(ctx context.Context, parentID *uuid.UUID) ([]models.Page, error) {
	if parentID == nil {
		return s.queryPages(ctx, "list top-level pages",
			`SELECT `+pageColumns+` FROM pages WHERE parent_id IS NULL ORDER BY title, id`)
	}
	return s.queryPages(ctx, "list child pages",
		`SELECT `+pageColumns+` FROM pages WHERE parent_id = $1 ORDER BY title, id`, *parentID)
}

// ListBySlugPrefix returns every page whose slug starts with prefix,
// ordered by slug then id. The prefix is compared literally.
func (s *PageStore) ListBySlugPrefix(ctx context.Context, prefix string) ([]models.Page, error) {
	return s.queryPages(ctx, "list pages by slug prefix", `
		SELECT `+pageColumns+` FROM pages
		WHERE slug LIKE $1 ESCAPE '\'
		ORDER BY slug, id
	`, likePrefix(prefix))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePrefix turns prefix into a LIKE pattern matching it literally. A
// constant-prefix LIKE can use the text_pattern_ops slug index.
func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}

// Ancestors returns the parent chain of the given page, nearest first.
func (s *PageStore) Ancestors(ctx context.Context, id uuid.UUID) ([]models.Page, error) {
	return s.queryPages(ctx, "list page ancestors", `
		WITH RECURSIVE chain AS (
			SELECT p.*, 1 AS depth
			FROM pages p
			WHERE p.id = (SELECT parent_id FROM pages WHERE id = $1)
			UNION ALL
			SELECT p.*, c.depth + 1
			FROM pages p
			JOIN chain c ON p.id = c.parent_id
			WHERE c.depth < $2
		)
		SELECT `+pageColumns+` FROM chain ORDER BY depth
	`, id, maxTreeDepth)
}

// ListMenu returns every page flagged for the menu, ordered by title.
func (s *PageStore) ListMenu(ctx context.Context) ([]models.Page, error) {
	return s.queryPages(ctx, "list menu pages",
		`SELECT `+pageColumns+` FROM pages WHERE in_menu ORDER BY title, id`)
}

// Insert stores a new page. ID and timestamps are set by the caller.
func (s *PageStore) Insert(ctx context.Context, p *models.Page) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO pages (`+pageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, p.ID, p.ParentID, p.Title, p.Slug, p.InMenu, p.LoginRequired,
		p.Status, p.PublishDate, p.ExpiryDate, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert page: %w", err)
	}
	return nil
}

// Update writes every mutable column of an existing page. created_at is
// never touched.
func (s *PageStore) Update(ctx context.Context, p *models.Page) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE pages SET
			parent_id = $1, title = $2, slug = $3, in_menu = $4,
			login_required = $5, status = $6, publish_date = $7,
			expiry_date = $8, updated_at = $9
		WHERE id = $10
	`, p.ParentID, p.Title, p.Slug, p.InMenu, p.LoginRequired,
		p.Status, p.PublishDate, p.ExpiryDate, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	return nil
}

// Delete removes a page by ID. Descendants go with it (ON DELETE CASCADE).
func (s *PageStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return nil
}
