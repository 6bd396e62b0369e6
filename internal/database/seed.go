package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Seed populates an empty pages table with a root page and a small
// company section for local development.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM pages").Scan(&count); err != nil {
		return fmt.Errorf("seed check pages: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	now := time.Now()
	homeID, companyID := uuid.New(), uuid.New()

	seed := []struct {
		id       uuid.UUID
		parentID *uuid.UUID
		title    string
		slug     string
	}{
		{homeID, nil, "Home", "/"},
		{companyID, nil, "Company", "company"},
		{uuid.New(), &companyID, "About Us", "company/about-us"},
		{uuid.New(), &companyID, "Contact", "company/contact"},
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, p := range seed {
		_, err := tx.Exec(`
			INSERT INTO pages (id, parent_id, title, slug, publish_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5, $5)
		`, p.id, p.parentID, p.title, p.slug, now)
		if err != nil {
			return fmt.Errorf("seed insert page %q: %w", p.slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default pages", "count", len(seed))
	return nil
}
