// Package blobstore implements the split page backend: a searchable
// index row in the relational store plus the full frontmatter-encoded
// document in an object store. The two writes are not transactional;
// see the saga notes on CreatePage and UpdatePage.
package blobstore

import (
	"context"
	"database/sql"
	"errors"
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

// Backend is the blob-index PageStore. Creating and deleting pages
// requires membership in the configured editor role; updates are open
// to any authenticated identity.
type Backend struct {
	db      *bun.DB
	blobs   interfaces.ObjectStore
	index   repository.Repository[*indexModel]
	history repository.Repository[*versionModel]

	role   string
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

// WithLogger attaches a logger for saga compensation and swallowed
// version-append failures.
func WithLogger(logger interfaces.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New builds a blob-index backend. role names the privileged group
// required for create and delete.
func New(db *bun.DB, blobs interfaces.ObjectStore, role string, opts ...Option) *Backend {
	b := &Backend{
		db:      db,
		blobs:   blobs,
		index:   newIndexRepository(db),
		history: newVersionRepository(db),
		role:    role,
		now:     time.Now,
		id:      uuid.New,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// EnsureSchema creates the index and history tables when they do not
// exist. Production deployments run the embedded SQL migrations instead.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	models := []any{
		(*indexModel)(nil),
		(*versionModel)(nil),
	}
	for _, model := range models {
		if _, err := b.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return store.WrapBackend(err, "create table")
		}
	}
	return nil
}

// CreatePage uploads the document blob first, then writes the index row
// pointing at it. The pair is a saga, not a transaction: if the index
// write fails the uploaded blob is deleted best-effort, and because the
// blob key is deterministic per (id, version) a retry overwrites the
// same object rather than orphaning another one.
func (b *Backend) CreatePage(ctx context.Context, actor interfaces.Identity, data store.CreatePageData) (*store.Page, error) {
	if err := b.requireRole(actor, "createPage"); err != nil {
		return nil, err
	}

	now := b.now()
	page, err := store.NewPage(actor, data, b.id(), now)
	if err != nil {
		return nil, err
	}

	exists, err := b.db.NewSelect().
		Model((*indexModel)(nil)).
		Where("?TableAlias.slug = ?", page.Slug).
		Exists(ctx)
	if err != nil {
		return nil, store.WrapBackend(err, "check slug")
	}
	if exists {
		return nil, &store.ConflictError{Slug: page.Slug}
	}

	blobKey := blobKeyFor(page.ID, page.Version)
	if err := b.blobs.Upload(ctx, blobKey, encodePageBlob(page)); err != nil {
		return nil, store.WrapBackend(err, "upload page blob")
	}

	if _, err := b.index.Create(ctx, indexFromPage(page, blobKey)); err != nil {
		b.compensateBlob(ctx, blobKey)
		if isUniqueViolation(err) {
			return nil, &store.ConflictError{Slug: page.Slug}
		}
		return nil, store.WrapBackend(err, "write page index")
	}

	b.appendVersion(ctx, store.NewVersion(page, "", identity.VersionUUID(page.ID, page.Version), now))
	return page, nil
}

func (b *Backend) GetPage(ctx context.Context, id uuid.UUID) (*store.Page, error) {
	row, err := b.index.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapLookupError(err, "page", id.String())
	}
	return b.loadPage(ctx, row)
}

func (b *Backend) GetPageBySlug(ctx context.Context, slug string) (*store.Page, error) {
	row, err := b.findBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return b.loadPage(ctx, row)
}

// UpdatePage is open to any authenticated identity; only create and
// delete are role-gated. The asymmetry is the product's current policy.
func (b *Backend) UpdatePage(ctx context.Context, actor interfaces.Identity, id uuid.UUID, patch store.UpdatePageData) (*store.Page, error) {
	if actor.IsZero() {
		return nil, &store.AuthorizationError{Operation: "updatePage"}
	}

	now := b.now()
	row, err := b.index.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapLookupError(err, "page", id.String())
	}

	page, err := b.loadPage(ctx, row)
	if err != nil {
		return nil, err
	}

	changed, err := store.ApplyPatch(page, actor, patch, now)
	if err != nil {
		return nil, err
	}

	// New blob first, index row second. The old blob stays behind when
	// the version advanced; the index pointer moving is the commit point.
	blobKey := blobKeyFor(page.ID, page.Version)
	if err := b.blobs.Upload(ctx, blobKey, encodePageBlob(page)); err != nil {
		return nil, store.WrapBackend(err, "upload page blob")
	}

	if _, err := b.index.Update(ctx, indexFromPage(page, blobKey),
		repository.UpdateByID(page.ID.String()),
		repository.UpdateColumns(
			"title",
			"excerpt",
			"blob_key",
			"category_id",
			"last_edited_by",
			"last_edited_by_name",
			"version",
			"is_published",
			"is_locked",
			"tags",
			"updated_at",
		),
	); err != nil {
		if blobKey != row.BlobKey {
			b.compensateBlob(ctx, blobKey)
		}
		return nil, store.WrapBackend(err, "update page index")
	}

	if changed {
		b.appendVersion(ctx, store.NewVersion(page, patch.ChangeDescription, identity.VersionUUID(page.ID, page.Version), now))
		if row.BlobKey != blobKey {
			b.compensateBlob(ctx, row.BlobKey)
		}
	}
	return page, nil
}

func (b *Backend) DeletePage(ctx context.Context, actor interfaces.Identity, id uuid.UUID) error {
	if err := b.requireRole(actor, "deletePage"); err != nil {
		return err
	}

	row, err := b.index.GetByID(ctx, id.String())
	if err != nil {
		return mapLookupError(err, "page", id.String())
	}

	err = b.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*versionModel)(nil)).
			Where("?TableAlias.page_id = ?", id).
			Exec(ctx); err != nil {
			return store.WrapBackend(err, "delete page versions")
		}
		if _, err := tx.NewDelete().
			Model((*indexModel)(nil)).
			Where("?TableAlias.id = ?", id).
			Exec(ctx); err != nil {
			return store.WrapBackend(err, "delete page index")
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.compensateBlob(ctx, row.BlobKey)
	return nil
}

func (b *Backend) ListPages(ctx context.Context, filters store.Filters) (*store.PageList, error) {
	f := store.NormalizeFilters(filters)

	records, _, err := b.index.List(ctx)
	if err != nil {
		b.logger.Error("list degraded to empty", "error", err)
		return store.EmptyPageList(f), nil
	}

	// Search filtering needs content the index does not carry; the
	// excerpt stands in for it on this backend.
	needle := strings.ToLower(f.Search)
	pages := make([]*store.Page, 0, len(records))
	for _, record := range records {
		if needle != "" &&
			!strings.Contains(strings.ToLower(record.Title), needle) &&
			!strings.Contains(strings.ToLower(record.Excerpt), needle) {
			continue
		}
		pages = append(pages, record.toStub())
	}
	f.Search = ""
	return store.PaginateSlice(pages, f), nil
}

func (b *Backend) SearchPages(ctx context.Context, query string) ([]store.SearchResult, error) {
	records, _, err := b.index.List(ctx)
	if err != nil {
		b.logger.Error("search degraded to empty", "error", err)
		return []store.SearchResult{}, nil
	}

	pages := make([]*store.Page, len(records))
	for i, record := range records {
		stub := record.toStub()
		stub.Content = stub.Excerpt
		pages[i] = stub
	}
	return store.RankPages(pages, query), nil
}

func (b *Backend) GetPageVersions(ctx context.Context, id uuid.UUID) ([]*store.PageVersion, error) {
	if _, err := b.index.GetByID(ctx, id.String()); err != nil {
		return nil, mapLookupError(err, "page", id.String())
	}

	records, _, err := b.history.List(ctx,
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
	records, _, err := b.history.List(ctx,
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

// GetCategories returns the shared category table contents. The blob
// backend does not own category rows; deployments seed them through the
// table backend or migrations.
func (b *Backend) GetCategories(ctx context.Context) ([]*store.Category, error) {
	var models []categoryRow
	err := b.db.NewSelect().
		Table("wiki_categories").
		Where("is_active = ?", true).
		OrderExpr("sort_order ASC, slug ASC").
		Scan(ctx, &models)
	if err != nil {
		b.logger.Error("categories degraded to empty", "error", err)
		return []*store.Category{}, nil
	}

	out := make([]*store.Category, len(models))
	for i, m := range models {
		out[i] = m.toCategory()
	}
	return out, nil
}

// GetCategoryBySlug resolves a single category, active or not.
func (b *Backend) GetCategoryBySlug(ctx context.Context, slug string) (*store.Category, error) {
	var model categoryRow
	err := b.db.NewSelect().
		Table("wiki_categories").
		Where("slug = ?", slug).
		Limit(1).
		Scan(ctx, &model)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &store.NotFoundError{Resource: "category", Key: slug}
		}
		return nil, store.WrapBackend(err, "load category")
	}
	return model.toCategory(), nil
}

func (b *Backend) GetStats(ctx context.Context) (*store.Stats, error) {
	stats := &store.Stats{
		RecentPages:     []*store.Page{},
		TopContributors: []*store.Contributor{},
	}

	records, _, err := b.index.List(ctx)
	if err != nil {
		b.logger.Error("stats degraded to empty", "error", err)
		return stats, nil
	}

	published := make([]*store.Page, 0, len(records))
	for _, record := range records {
		if record.IsPublished {
			published = append(published, record.toStub())
		}
	}
	store.SortPages(published, store.SortByUpdatedAt, "desc")

	stats.TotalPages = len(published)
	if len(published) > store.RecentPageCount {
		published = published[:store.RecentPageCount]
	}
	stats.RecentPages = published

	categories, err := b.GetCategories(ctx)
	if err == nil {
		stats.TotalCategories = len(categories)
	}

	versionRecords, _, err := b.history.List(ctx)
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

func (b *Backend) loadPage(ctx context.Context, row *indexModel) (*store.Page, error) {
	data, err := b.blobs.Download(ctx, row.BlobKey)
	if err != nil {
		return nil, store.WrapBackend(err, "download page blob")
	}
	return decodePageBlob(row.toStub(), data)
}

func (b *Backend) findBySlug(ctx context.Context, slug string) (*indexModel, error) {
	records, _, err := b.index.List(ctx,
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
	return records[0], nil
}

func (b *Backend) requireRole(actor interfaces.Identity, operation string) error {
	if actor.IsZero() {
		return &store.AuthorizationError{Operation: operation}
	}
	if !actor.HasRole(b.role) {
		return &store.AuthorizationError{Role: b.role, Operation: operation}
	}
	return nil
}

// compensateBlob removes an object left behind by a failed or superseded
// write. Best effort only; a leaked blob is reclaimed on the next retry
// because keys are deterministic.
func (b *Backend) compensateBlob(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := b.blobs.Delete(ctx, key); err != nil {
		b.logger.Warn("blob cleanup failed", "key", key, "error", err)
	}
}

func (b *Backend) appendVersion(ctx context.Context, v *store.PageVersion) {
	if err := store.ValidateVersionSnapshot(v); err != nil {
		b.logger.Error("version append skipped", "page_id", v.PageID, "error", err)
		return
	}
	if _, err := b.history.Create(ctx, versionToModel(v)); err != nil {
		b.logger.Error("version append failed", "page_id", v.PageID, "version", v.Version, "error", err)
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
