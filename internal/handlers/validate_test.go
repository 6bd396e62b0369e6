package handlers

import (
	"errors"
	"strings"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"pagebuilder/internal/models"
)

func TestCreatePageRequestValidate(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name      string
		req       createPageRequest
		wantField string
	}{
		{name: "valid", req: createPageRequest{Title: "About", Slug: "about"}},
		{name: "blank slug allowed", req: createPageRequest{Title: "About"}},
		{name: "root slug allowed", req: createPageRequest{Title: "Home", Slug: "/"}},
		{name: "nested slug", req: createPageRequest{Title: "Team", Slug: "company/team"}},
		{name: "draft", req: createPageRequest{Title: "About", Status: models.PageStatusDraft}},
		{name: "empty title", req: createPageRequest{Title: ""}, wantField: "title"},
		{name: "whitespace title", req: createPageRequest{Title: "   "}, wantField: "title"},
		{name: "title too long", req: createPageRequest{Title: strings.Repeat("a", maxTitleLen+1)}, wantField: "title"},
		{name: "slug too long", req: createPageRequest{Title: "t", Slug: strings.Repeat("a", maxSlugLen+1)}, wantField: "slug"},
		{name: "leading slash", req: createPageRequest{Title: "t", Slug: "/about"}, wantField: "slug"},
		{name: "trailing slash", req: createPageRequest{Title: "t", Slug: "about/"}, wantField: "slug"},
		{name: "empty segment", req: createPageRequest{Title: "t", Slug: "a//b"}, wantField: "slug"},
		{name: "unknown status", req: createPageRequest{Title: "t", Status: "archived"}, wantField: "status"},
		{name: "expiry before publish", req: createPageRequest{Title: "t", PublishDate: &now, ExpiryDate: &earlier}, wantField: "expiry_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var fields validation.Errors
			if !errors.As(err, &fields) {
				t.Fatalf("expected validation.Errors, got %v", err)
			}
			if _, ok := fields[tt.wantField]; !ok {
				t.Errorf("expected error on %q, got %v", tt.wantField, fields)
			}
		})
	}
}

func TestCreatePageRequestPage(t *testing.T) {
	off := false
	req := createPageRequest{Title: "Team", Slug: "company/team", InMenu: &off, LoginRequired: true}

	p := req.page()
	if p.InMenu {
		t.Error("in_menu override ignored")
	}
	if !p.LoginRequired {
		t.Error("login_required ignored")
	}
	if p.Status != models.PageStatusPublished {
		t.Errorf("status default: got %q", p.Status)
	}
}

func TestRenameRequestValidate(t *testing.T) {
	if err := (&renameRequest{Slug: "articles"}).Validate(); err != nil {
		t.Errorf("valid slug rejected: %v", err)
	}
	if err := (&renameRequest{Slug: " "}).Validate(); err == nil {
		t.Error("blank slug accepted")
	}
	if err := (&renameRequest{Slug: "/x"}).Validate(); err == nil {
		t.Error("leading slash accepted")
	}
}
