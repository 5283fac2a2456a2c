package tablestore

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func newPageRepository(db *bun.DB) repository.Repository[*pageModel] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*pageModel]{
		NewRecord: func() *pageModel { return &pageModel{} },
		GetID: func(m *pageModel) uuid.UUID {
			return m.ID
		},
		SetID: func(m *pageModel, id uuid.UUID) {
			m.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(m *pageModel) string {
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

func newCategoryRepository(db *bun.DB) repository.Repository[*categoryModel] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*categoryModel]{
		NewRecord: func() *categoryModel { return &categoryModel{} },
		GetID: func(m *categoryModel) uuid.UUID {
			return m.ID
		},
		SetID: func(m *categoryModel, id uuid.UUID) {
			m.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(m *categoryModel) string {
			return m.Slug
		},
	})
}
