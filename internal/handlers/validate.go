package handlers

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"pagebuilder/internal/models"
)

// Field limits match the pages table columns.
const (
	maxTitleLen = 255
	maxSlugLen  = 255
)

// slugRules reject slugs the router could never serve.
var slugRules = []validation.Rule{
	validation.RuneLength(0, maxSlugLen),
	validation.By(func(v any) error {
		s, _ := v.(string)
		if s == models.RootSlug {
			return nil
		}
		if strings.HasPrefix(s, "/") || strings.HasSuffix(s, "/") || strings.Contains(s, "//") {
			return validation.NewError("validation_slug_slashes", "must not start or end with a slash or contain empty segments")
		}
		return nil
	}),
}

// createPageRequest is the body of POST /admin/pages.
type createPageRequest struct {
	Title         string            `json:"title"`
	Slug          string            `json:"slug"`
	ParentID      *uuid.UUID        `json:"parent_id"`
	InMenu        *bool             `json:"in_menu"`
	LoginRequired bool              `json:"login_required"`
	Status        models.PageStatus `json:"status"`
	PublishDate   *time.Time        `json:"publish_date"`
	ExpiryDate    *time.Time        `json:"expiry_date"`
}

// Validate checks the request fields.
func (r *createPageRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Slug = strings.TrimSpace(r.Slug)
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, maxTitleLen)),
		validation.Field(&r.Slug, slugRules...),
		validation.Field(&r.Status, validation.In(models.PageStatusDraft, models.PageStatusPublished)),
		validation.Field(&r.ExpiryDate, validation.By(func(any) error {
			if r.PublishDate != nil && r.ExpiryDate != nil && r.ExpiryDate.Before(*r.PublishDate) {
				return validation.NewError("validation_expiry_order", "must not be before publish_date")
			}
			return nil
		})),
	)
}

// page builds the entity described by the request.
func (r *createPageRequest) page() *models.Page {
	p := models.NewPage(r.Title, r.Slug)
	p.ParentID = r.ParentID
	if r.InMenu != nil {
		p.InMenu = *r.InMenu
	}
	p.LoginRequired = r.LoginRequired
	if r.Status != "" {
		p.Status = r.Status
	}
	p.PublishDate = r.PublishDate
	p.ExpiryDate = r.ExpiryDate
	return p
}

// renameRequest is the body of PUT /admin/pages/{id}/slug.
type renameRequest struct {
	Slug string `json:"slug"`
}

// Validate checks the request fields.
func (r *renameRequest) Validate() error {
	r.Slug = strings.TrimSpace(r.Slug)
	rules := append([]validation.Rule{validation.Required}, slugRules...)
	return validation.ValidateStruct(r,
		validation.Field(&r.Slug, rules...),
	)
}

// reparentRequest is the body of PUT /admin/pages/{id}/parent. A null
// parent_id moves the page to the top level.
type reparentRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

// Validate has nothing to check beyond JSON decoding.
func (r *reparentRequest) Validate() error {
	return nil
}
