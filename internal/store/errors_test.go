package store

import (
	"errors"
	"fmt"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-wiki/internal/frontmatter"
	"github.com/goliatone/go-wiki/internal/slug"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, Kind("")},
		{"not found", &NotFoundError{Resource: "page", Key: "abc"}, KindNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", &NotFoundError{Resource: "page"}), KindNotFound},
		{"conflict", &ConflictError{Slug: "getting-started"}, KindConflict},
		{"authorization", &AuthorizationError{Role: "wiki:editors", Operation: "createPage"}, KindAuthorization},
		{"missing sentinel", frontmatter.ErrMissingSentinel, KindFormat},
		{"empty title", slug.ErrEmptyTitle, KindValidation},
		{"unusable slug", slug.ErrUnusable, KindValidation},
		{
			"ozzo errors",
			validation.Errors{"title": validation.NewError("wiki.page.title_required", "title is required")},
			KindValidation,
		},
		{"backend wrap", WrapBackend(errors.New("connection refused"), "list pages"), KindBackend},
		{"format wrap", WrapFormat(errors.New("bad header"), "decode page blob"), KindFormat},
		{"unknown", errors.New("something odd"), KindBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrapBackendPassthrough(t *testing.T) {
	if WrapBackend(nil, "noop") != nil {
		t.Fatal("nil must stay nil")
	}

	base := errors.New("disk full")
	wrapped := WrapBackend(base, "save page")
	if !errors.Is(wrapped, base) {
		t.Fatal("wrapping must preserve the cause")
	}

	// A second wrap must not re-categorize the error.
	again := WrapBackend(wrapped, "outer layer")
	if again != wrapped {
		t.Fatal("already-wrapped errors must pass through")
	}
	if !goerrors.IsCategory(again, goerrors.CategoryExternal) {
		t.Fatal("category lost on rewrap")
	}
}

func TestErrorMessages(t *testing.T) {
	cases := map[error]string{
		&NotFoundError{Resource: "page", Key: "welcome"}:              `page "welcome" not found`,
		&NotFoundError{Resource: "category"}:                          "category not found",
		&ConflictError{Slug: "welcome"}:                               `page with slug "welcome" already exists`,
		&AuthorizationError{Role: "wiki:editors", Operation: "deletePage"}: `deletePage requires role "wiki:editors"`,
		&AuthorizationError{Operation: "createPage"}:                  "createPage requires an authenticated identity",
	}
	for err, want := range cases {
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	}
}
