package store

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goslug "github.com/goliatone/go-slug"

	"github.com/goliatone/go-wiki/internal/identity"
)

// CategorySlug derives a category slug. Categories are host-facing labels,
// so they follow the shared go-slug rules rather than the page slug codec.
func CategorySlug(name string) (string, error) {
	return goslug.Normalize(name)
}

// IsValidCategorySlug reports whether the value already satisfies the
// category slug rules.
func IsValidCategorySlug(value string) bool {
	return goslug.IsValid(value)
}

// NewCategory builds a category from its display name. The slug and ID are
// derived, so the same name always maps to the same category.
func NewCategory(name, description string) (*Category, error) {
	name = strings.TrimSpace(name)

	errs := validation.Errors{}
	if name == "" {
		errs["name"] = validation.NewError("wiki.category.name_required", "name is required")
	} else if len(name) > 120 {
		errs["name"] = validation.NewError("wiki.category.name_too_long", "name must be at most 120 characters")
	}
	if len(errs) > 0 {
		return nil, errs
	}

	slug, err := CategorySlug(name)
	if err != nil {
		return nil, validation.Errors{
			"name": validation.NewError("wiki.category.slug_unusable", err.Error()),
		}
	}
	return &Category{
		ID:          identity.CategoryUUID(slug),
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(description),
		IsActive:    true,
	}, nil
}

// FindCategoryBySlug scans a category set for an exact slug match.
func FindCategoryBySlug(categories []*Category, slug string) (*Category, error) {
	for _, c := range categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, &NotFoundError{Resource: "category", Key: slug}
}
