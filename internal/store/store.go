// Package store defines the PageStore contract implemented by every wiki
// backend, the shared data model, and the helpers that keep create/update
// semantics identical across backends with very different storage shapes.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/goliatone/go-wiki/pkg/interfaces"
)

const (
	// MaxPageLimit caps ListPages page sizes; larger requests are clamped.
	MaxPageLimit = 100
	// DefaultPageLimit applies when Filters.Limit is unset.
	DefaultPageLimit = 20
	// ExcerptLength bounds the derived excerpt in runes.
	ExcerptLength = 200
	// RecentPageCount is the number of pages reported by Stats.RecentPages.
	RecentPageCount = 5
	// TopContributorCount bounds Stats.TopContributors.
	TopContributorCount = 5
)

// PageStore is the contract every storage backend satisfies. Mutating
// operations take the acting identity explicitly; reads do not. All
// methods return typed errors classifiable via Kind.
type PageStore interface {
	CreatePage(ctx context.Context, actor interfaces.Identity, data CreatePageData) (*Page, error)
	GetPage(ctx context.Context, id uuid.UUID) (*Page, error)
	GetPageBySlug(ctx context.Context, slug string) (*Page, error)
	UpdatePage(ctx context.Context, actor interfaces.Identity, id uuid.UUID, patch UpdatePageData) (*Page, error)
	DeletePage(ctx context.Context, actor interfaces.Identity, id uuid.UUID) error
	ListPages(ctx context.Context, filters Filters) (*PageList, error)
	SearchPages(ctx context.Context, query string) ([]SearchResult, error)
	GetPageVersions(ctx context.Context, id uuid.UUID) ([]*PageVersion, error)
	GetPageVersion(ctx context.Context, id uuid.UUID, version int) (*PageVersion, error)
	GetCategories(ctx context.Context) ([]*Category, error)
	GetStats(ctx context.Context) (*Stats, error)
}

// LimitedVersionHistory marks backends whose version history is derived
// rather than recorded, with a bounded number of retrievable revisions.
// Callers that need full-fidelity history should check for this interface
// before treating GetPageVersions output as complete.
type LimitedVersionHistory interface {
	VersionHistoryLimit() int
}
