package blobstore

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-wiki/internal/store"
)

func newIndexRepository(db *bun.DB) repository.Repository[*indexModel] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*indexModel]{
		NewRecord: func() *indexModel { return &indexModel{} },
		GetID: func(m *indexModel) uuid.UUID {
			return m.ID
		},
		SetID: func(m *indexModel, id uuid.UUID) {
			m.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(m *indexModel) string {
			return m.Slug
		},
	})
}

func newVersionRepository(db *bun.DB) repository.Repository[*versionModel] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*versionModel]{
		NewRecord: func() *versionModel { return &versionModel{} },
		GetID: func(m *versionModel) uuid.UUID {
			return m.ID
		},
		SetID: func(m *versionModel, id uuid.UUID) {
			m.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(m *versionModel) string {
			return m.ID.String()
		},
	})
}

// categoryRow reads the shared wiki_categories table without owning its
// model definition.
type categoryRow struct {
	ID          uuid.UUID `bun:"id"`
	Slug        string    `bun:"slug"`
	Name        string    `bun:"name"`
	Description string    `bun:"description"`
	Color       string    `bun:"color"`
	Icon        string    `bun:"icon"`
	Order       int       `bun:"sort_order"`
	IsActive    bool      `bun:"is_active"`
	Moderators  string    `bun:"moderators"`
}

func (r categoryRow) toCategory() *store.Category {
	return &store.Category{
		ID:          r.ID,
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
		Color:       r.Color,
		Icon:        r.Icon,
		Order:       r.Order,
		IsActive:    r.IsActive,
		Moderators:  splitCSV(r.Moderators),
	}
}
