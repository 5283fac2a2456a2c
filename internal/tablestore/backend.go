// Package tablestore implements the relational page backend: one row
// per page with inline content, explicit version rows, and SQL-side
// filtering for listings.
package tablestore

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-wiki/internal/identity"
	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/internal/store"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// Backend is the table-backed PageStore.
type Backend struct {
	db         *bun.DB
	pages      repository.Repository[*pageModel]
	versions   repository.Repository[*versionModel]
	categories repository.Repository[*categoryModel]

	now    func() time.Time
	id     func() uuid.UUID
	logger interfaces.Logger
}

var _ store.PageStore = (*Backend)(nil)

// Option configures the backend at construction time.
type Option func(*Backend)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) Option {
	return func(b *Backend) {
		if clock != nil {
			b.now = clock
		}
	}
}

// WithIDGenerator overrides page ID allocation.
func WithIDGenerator(generator func() uuid.UUID) Option {
	return func(b *Backend) {
		if generator != nil {
			b.id = generator
		}
	}
}

// WithLogger attaches a logger for degraded reads and swallowed
// version-append failures.
func WithLogger(logger interfaces.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New builds a table backend over an open bun handle.
func New(db *bun.DB, opts ...Option) *Backend {
	b := &Backend{
		db:         db,
		pages:      newPageRepository(db),
		versions:   newVersionRepository(db),
		categories: newCategoryRepository(db),
		now:        time.Now,
		id:         uuid.New,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// EnsureSchema creates the backend tables when they do not exist.
// Production deployments run the embedded SQL migrations instead.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	models := []any{
		(*pageModel)(nil),
		(*versionModel)(nil),
		(*categoryModel)(nil),
	}
	for _, model := range models {
		if _, err := b.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return store.WrapBackend(err, "create table")
		}
	}
	return nil
}

func (b *Backend) CreatePage(ctx context.Context, actor interfaces.Identity, data store.CreatePageData) (*store.Page, error) {
	now := b.now()
	page, err := store.NewPage(actor, data, b.id(), now)
	if err != nil {
		return nil, err
	}

	exists, err := b.db.NewSelect().
		Model((*pageModel)(nil)).
		Where("?TableAlias.slug = ?", page.Slug).
		Exists(ctx)
	if err != nil {
		return nil, store.WrapBackend(err, "check slug")
	}
	if exists {
		return nil, &store.ConflictError{Slug: page.Slug}
	}

	if _, err := b.pages.Create(ctx, pageToModel(page)); err != nil {
		if isUniqueViolation(err) {
			return nil, &store.ConflictError{Slug: page.Slug}
		}
		return nil, store.WrapBackend(err, "create page")
	}

	b.appendVersion(ctx, store.NewVersion(page, "", identity.VersionUUID(page.ID, page.Version), now))
	return page, nil
}

func (b *Backend) GetPage(ctx context.Context, id uuid.UUID) (*store.Page, error) {
	model, err := b.pages.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapLookupError(err, "page", id.String())
	}
	return model.toPage(), nil
}

func (b *Backend) GetPageBySlug(ctx context.Context, slug string) (*store.Page, error) {
	records, _, err := b.pages.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.slug = ?", slug)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapLookupError(err, "page", slug)
	}
	if len(records) == 0 {
		return nil, &store.NotFoundError{Resource: "page", Key: slug}
	}
	return records[0].toPage(), nil
}

func (b *Backend) UpdatePage(ctx context.Context, actor interfaces.Identity, id uuid.UUID, patch store.UpdatePageData) (*store.Page, error) {
	now := b.now()

	model, err := b.pages.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapLookupError(err, "page", id.String())
	}

	page := model.toPage()
	changed, err := store.ApplyPatch(page, actor, patch, now)
	if err != nil {
		return nil, err
	}

	if _, err := b.pages.Update(ctx, pageToModel(page),
		repository.UpdateByID(page.ID.String()),
		repository.UpdateColumns(
			"title",
			"content",
			"excerpt",
			"category_id",
			"last_edited_by",
			"last_edited_by_name",
			"version",
			"is_published",
			"is_locked",
			"tags",
			"attachments",
			"metadata",
			"updated_at",
		),
	); err != nil {
		return nil, store.WrapBackend(err, "update page")
	}

	if changed {
		b.appendVersion(ctx, store.NewVersion(page, patch.ChangeDescription, identity.VersionUUID(page.ID, page.Version), now))
	}
	return page, nil
}

func (b *Backend) DeletePage(ctx context.Context, _ interfaces.Identity, id uuid.UUID) error {
	if _, err := b.pages.GetByID(ctx, id.String()); err != nil {
		return mapLookupError(err, "page", id.String())
	}

	return b.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*versionModel)(nil)).
			Where("?TableAlias.page_id = ?", id).
			Exec(ctx); err != nil {
			return store.WrapBackend(err, "delete page versions")
		}
		if _, err := tx.NewDelete().
			Model((*pageModel)(nil)).
			Where("?TableAlias.id = ?", id).
			Exec(ctx); err != nil {
			return store.WrapBackend(err, "delete page")
		}
		return nil
	})
}

func (b *Backend) ListPages(ctx context.Context, filters store.Filters) (*store.PageList, error) {
	f := store.NormalizeFilters(filters)

	list, err := b.listPages(ctx, f, true)
	if err != nil && isColumnMismatch(err) {
		// Field mismatch gets one retry without ordering before giving up.
		b.logger.Warn("list retrying unsorted", "error", err)
		list, err = b.listPages(ctx, f, false)
	}
	if err != nil {
		b.logger.Error("list degraded to empty", "error", err)
		return store.EmptyPageList(f), nil
	}
	return list, nil
}

func (b *Backend) listPages(ctx context.Context, f store.Filters, sorted bool) (*store.PageList, error) {
	total, err := b.db.NewSelect().
		Model((*pageModel)(nil)).
		ApplyQueryBuilder(filterQuery(f)).
		Count(ctx)
	if err != nil {
		return nil, store.WrapBackend(err, "count pages")
	}

	criteria := []repository.SelectCriteria{
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.ApplyQueryBuilder(filterQuery(f))
		}),
		repository.SelectPaginate(f.Limit, (f.Page-1)*f.Limit),
	}
	if sorted {
		criteria = append(criteria, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.? ?, ?TableAlias.slug ASC",
				bun.Ident(f.SortBy), bun.Safe(strings.ToUpper(f.SortOrder)))
		}))
	}

	records, _, err := b.pages.List(ctx, criteria...)
	if err != nil {
		return nil, store.WrapBackend(err, "list pages")
	}

	pages := make([]*store.Page, len(records))
	for i, record := range records {
		pages[i] = record.toPage()
	}
	return &store.PageList{
		Pages:      pages,
		Pagination: store.BuildPagination(total, f.Page, f.Limit),
	}, nil
}

func (b *Backend) SearchPages(ctx context.Context, query string) ([]store.SearchResult, error) {
	needle := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	records, _, err := b.pages.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.
					Where("LOWER(?TableAlias.title) LIKE ?", needle).
					WhereOr("LOWER(?TableAlias.excerpt) LIKE ?", needle).
					WhereOr("LOWER(?TableAlias.tags) LIKE ?", needle)
			})
		}),
	)
	if err != nil {
		b.logger.Error("search degraded to empty", "error", err)
		return []store.SearchResult{}, nil
	}

	pages := make([]*store.Page, len(records))
	for i, record := range records {
		pages[i] = record.toPage()
	}
	return store.RankPages(pages, query), nil
}

func (b *Backend) GetPageVersions(ctx context.Context, id uuid.UUID) ([]*store.PageVersion, error) {
	if _, err := b.pages.GetByID(ctx, id.String()); err != nil {
		return nil, mapLookupError(err, "page", id.String())
	}

	records, _, err := b.versions.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.page_id = ?", id).
				OrderExpr("?TableAlias.version DESC")
		}),
	)
	if err != nil {
		return nil, store.WrapBackend(err, "list page versions")
	}

	out := make([]*store.PageVersion, len(records))
	for i, record := range records {
		out[i] = record.toVersion()
	}
	return out, nil
}

func (b *Backend) GetPageVersion(ctx context.Context, id uuid.UUID, version int) (*store.PageVersion, error) {
	records, _, err := b.versions.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.page_id = ?", id).
				Where("?TableAlias.version = ?", version)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, store.WrapBackend(err, "get page version")
	}
	if len(records) == 0 {
		return nil, &store.NotFoundError{Resource: "page version", Key: id.String()}
	}
	return records[0].toVersion(), nil
}

func (b *Backend) GetCategories(ctx context.Context) ([]*store.Category, error) {
	records, _, err := b.categories.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.is_active = ?", true).
				OrderExpr("?TableAlias.sort_order ASC, ?TableAlias.slug ASC")
		}),
	)
	if err != nil {
		b.logger.Error("categories degraded to empty", "error", err)
		return []*store.Category{}, nil
	}

	out := make([]*store.Category, len(records))
	for i, record := range records {
		out[i] = record.toCategory()
	}
	return out, nil
}

// GetCategoryBySlug resolves a single category, active or not.
func (b *Backend) GetCategoryBySlug(ctx context.Context, slug string) (*store.Category, error) {
	record, err := b.categories.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapLookupError(err, "category", slug)
	}
	return record.toCategory(), nil
}

func (b *Backend) GetStats(ctx context.Context) (*store.Stats, error) {
	stats := &store.Stats{
		RecentPages:     []*store.Page{},
		TopContributors: []*store.Contributor{},
	}

	published, err := b.db.NewSelect().
		Model((*pageModel)(nil)).
		Where("?TableAlias.is_published = ?", true).
		Count(ctx)
	if err != nil {
		b.logger.Error("stats degraded to empty", "error", err)
		return stats, nil
	}
	stats.TotalPages = published

	categories, err := b.db.NewSelect().
		Model((*categoryModel)(nil)).
		Where("?TableAlias.is_active = ?", true).
		Count(ctx)
	if err != nil {
		b.logger.Error("stats degraded to empty", "error", err)
		return stats, nil
	}
	stats.TotalCategories = categories

	recent, _, err := b.pages.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.is_published = ?", true).
				OrderExpr("?TableAlias.updated_at DESC, ?TableAlias.slug ASC")
		}),
		repository.SelectPaginate(store.RecentPageCount, 0),
	)
	if err != nil {
		b.logger.Error("stats degraded to empty", "error", err)
		return stats, nil
	}
	for _, record := range recent {
		stats.RecentPages = append(stats.RecentPages, record.toPage())
	}

	versionRecords, _, err := b.versions.List(ctx)
	if err != nil {
		b.logger.Error("stats contributors degraded", "error", err)
		return stats, nil
	}
	versions := make([]*store.PageVersion, len(versionRecords))
	for i, record := range versionRecords {
		versions[i] = record.toVersion()
	}
	stats.TopContributors = store.TopContributors(versions)

	return stats, nil
}

// appendVersion records a history snapshot. Failures are logged and
// swallowed; the page row is the source of truth. The version ID is
// deterministic per (page, version) so a retried append cannot produce
// duplicate history.
func (b *Backend) appendVersion(ctx context.Context, v *store.PageVersion) {
	if err := store.ValidateVersionSnapshot(v); err != nil {
		b.logger.Error("version append skipped", "page_id", v.PageID, "error", err)
		return
	}
	if _, err := b.versions.Create(ctx, versionToModel(v)); err != nil {
		b.logger.Error("version append failed", "page_id", v.PageID, "version", v.Version, "error", err)
	}
}

// PutCategory seeds or replaces a category row.
func (b *Backend) PutCategory(ctx context.Context, c *store.Category) error {
	model := categoryToModel(c)
	exists, err := b.db.NewSelect().
		Model((*categoryModel)(nil)).
		Where("?TableAlias.id = ?", c.ID).
		Exists(ctx)
	if err != nil {
		return store.WrapBackend(err, "check category")
	}
	if exists {
		if _, err := b.db.NewUpdate().Model(model).WherePK().Exec(ctx); err != nil {
			return store.WrapBackend(err, "update category")
		}
		return nil
	}
	if _, err := b.categories.Create(ctx, model); err != nil {
		return store.WrapBackend(err, "create category")
	}
	return nil
}

func filterQuery(f store.Filters) func(bun.QueryBuilder) bun.QueryBuilder {
	return func(q bun.QueryBuilder) bun.QueryBuilder {
		if f.CategoryID != nil {
			q = q.Where("?TableAlias.category_id = ?", *f.CategoryID)
		}
		if f.AuthorID != "" {
			q = q.Where("?TableAlias.author_id = ?", f.AuthorID)
		}
		if f.IsPublished != nil {
			q = q.Where("?TableAlias.is_published = ?", *f.IsPublished)
		}
		if f.Search != "" {
			needle := "%" + strings.ToLower(f.Search) + "%"
			q = q.WhereGroup(" AND ", func(q bun.QueryBuilder) bun.QueryBuilder {
				return q.Where("LOWER(?TableAlias.title) LIKE ?", needle).
					WhereOr("LOWER(?TableAlias.content) LIKE ?", needle)
			})
		}
		return q
	}
}

func mapLookupError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &store.NotFoundError{Resource: resource, Key: key}
	}
	return store.WrapBackend(err, resource+" lookup")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

func isColumnMismatch(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "unknown column")
}
