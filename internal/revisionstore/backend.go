// Package revisionstore implements the revision-controlled page backend:
// one frontmatter file per page committed to a git repository, with a
// side JSON index for listings. Version history is derived from the
// commit log rather than explicit version records, bounded by a maximum
// revision count.
package revisionstore

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/google/uuid"

	"github.com/goliatone/go-wiki/internal/identity"
	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/internal/store"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

const pagesDir = "pages"

// DefaultMaxHistory bounds how many revisions a history walk visits.
// Each revision costs one tree lookup, so the walk must not be unbounded.
const DefaultMaxHistory = 50

// Config carries the repository settings.
type Config struct {
	// Path is the working tree location. Initialized when empty.
	Path string
	// AuthorName and AuthorEmail stamp commits. The acting identity's
	// display name takes precedence for the commit author when present.
	AuthorName  string
	AuthorEmail string
	// MaxHistory bounds derived version walks. Zero means DefaultMaxHistory.
	MaxHistory int
}

// Backend is the revision-controlled PageStore.
type Backend struct {
	mu   sync.Mutex
	repo *git.Repository
	cfg  Config

	now    func() time.Time
	logger interfaces.Logger
}

var (
	_ store.PageStore             = (*Backend)(nil)
	_ store.LimitedVersionHistory = (*Backend)(nil)
)

// Option configures the backend at construction time.
type Option func(*Backend)

// WithClock overrides the clock used to stamp commits and records.
func WithClock(clock func() time.Time) Option {
	return func(b *Backend) {
		if clock != nil {
			b.now = clock
		}
	}
}

// WithLogger attaches a logger for degraded reads.
func WithLogger(logger interfaces.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New opens the repository at cfg.Path, initializing it when absent.
func New(cfg Config, opts ...Option) (*Backend, error) {
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = DefaultMaxHistory
	}
	if cfg.AuthorName == "" {
		cfg.AuthorName = "wiki"
	}
	if cfg.AuthorEmail == "" {
		cfg.AuthorEmail = "wiki@localhost"
	}

	repo, err := git.PlainOpen(cfg.Path)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(cfg.Path, false)
	}
	if err != nil {
		return nil, store.WrapBackend(err, "open page repository")
	}

	b := &Backend{
		repo:   repo,
		cfg:    cfg,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// VersionHistoryLimit reports the bound on derived version walks. This
// backend reconstructs history from the commit log, so anything past the
// limit is not retrievable through GetPageVersions.
func (b *Backend) VersionHistoryLimit() int {
	return b.cfg.MaxHistory
}

func (b *Backend) CreatePage(_ context.Context, actor interfaces.Identity, data store.CreatePageData) (*store.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	page, err := store.NewPage(actor, data, uuid.Nil, now)
	if err != nil {
		return nil, err
	}
	page.ID = identity.PageUUID(page.Slug)

	idx, err := b.readIndex()
	if err != nil {
		return nil, err
	}
	if _, exists := idx.bySlug(page.Slug); exists {
		return nil, &store.ConflictError{Slug: page.Slug}
	}

	idx.Pages[page.Slug] = entryFromPage(page)
	files := map[string][]byte{
		pageFile(page.Slug): store.EncodePageDoc(page),
		indexFile:           idx.encode(),
	}
	if err := b.commit(files, nil, "Create page "+page.Slug, actor, now); err != nil {
		return nil, err
	}
	return page, nil
}

func (b *Backend) GetPage(_ context.Context, id uuid.UUID) (*store.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx, err := b.readIndex()
	if err != nil {
		return nil, err
	}
	entry, ok := idx.byID(id)
	if !ok {
		return nil, &store.NotFoundError{Resource: "page", Key: id.String()}
	}
	return b.loadPage(entry)
}

func (b *Backend) GetPageBySlug(_ context.Context, slug string) (*store.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx, err := b.readIndex()
	if err != nil {
		return nil, err
	}
	entry, ok := idx.bySlug(slug)
	if !ok {
		return nil, &store.NotFoundError{Resource: "page", Key: slug}
	}
	return b.loadPage(entry)
}

func (b *Backend) UpdatePage(_ context.Context, actor interfaces.Identity, id uuid.UUID, patch store.UpdatePageData) (*store.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	idx, err := b.readIndex()
	if err != nil {
		return nil, err
	}
	entry, ok := idx.byID(id)
	if !ok {
		return nil, &store.NotFoundError{Resource: "page", Key: id.String()}
	}

	page, err := b.loadPage(entry)
	if err != nil {
		return nil, err
	}
	if _, err := store.ApplyPatch(page, actor, patch, now); err != nil {
		return nil, err
	}

	idx.Pages[page.Slug] = entryFromPage(page)
	files := map[string][]byte{
		pageFile(page.Slug): store.EncodePageDoc(page),
		indexFile:           idx.encode(),
	}
	message := "Update page " + page.Slug
	if desc := strings.TrimSpace(patch.ChangeDescription); desc != "" {
		message += ": " + desc
	}
	if err := b.commit(files, nil, message, actor, now); err != nil {
		return nil, err
	}
	return page, nil
}

func (b *Backend) DeletePage(_ context.Context, actor interfaces.Identity, id uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx, err := b.readIndex()
	if err != nil {
		return err
	}
	entry, ok := idx.byID(id)
	if !ok {
		return &store.NotFoundError{Resource: "page", Key: id.String()}
	}

	delete(idx.Pages, entry.Slug)
	files := map[string][]byte{indexFile: idx.encode()}
	removals := []string{pageFile(entry.Slug)}
	return b.commit(files, removals, "Delete page "+entry.Slug, actor, b.now())
}

func (b *Backend) ListPages(_ context.Context, filters store.Filters) (*store.PageList, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f := store.NormalizeFilters(filters)
	idx, err := b.readIndex()
	if err != nil {
		b.logger.Error("list degraded to empty", "error", err)
		return store.EmptyPageList(f), nil
	}

	needle := strings.ToLower(f.Search)
	pages := make([]*store.Page, 0, len(idx.Pages))
	for _, entry := range idx.Pages {
		if needle != "" &&
			!strings.Contains(strings.ToLower(entry.Title), needle) &&
			!strings.Contains(strings.ToLower(entry.Excerpt), needle) {
			continue
		}
		pages = append(pages, entry.toStub())
	}
	f.Search = ""
	return store.PaginateSlice(pages, f), nil
}

func (b *Backend) SearchPages(_ context.Context, query string) ([]store.SearchResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx, err := b.readIndex()
	if err != nil {
		b.logger.Error("search degraded to empty", "error", err)
		return []store.SearchResult{}, nil
	}

	pages := make([]*store.Page, 0, len(idx.Pages))
	for _, entry := range idx.Pages {
		stub := entry.toStub()
		stub.Content = stub.Excerpt
		pages = append(pages, stub)
	}
	return store.RankPages(pages, query), nil
}

func (b *Backend) GetPageVersions(_ context.Context, id uuid.UUID) ([]*store.PageVersion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx, err := b.readIndex()
	if err != nil {
		return nil, err
	}
	entry, ok := idx.byID(id)
	if !ok {
		return nil, &store.NotFoundError{Resource: "page", Key: id.String()}
	}
	return b.deriveVersions(entry)
}

func (b *Backend) GetPageVersion(_ context.Context, id uuid.UUID, version int) (*store.PageVersion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx, err := b.readIndex()
	if err != nil {
		return nil, err
	}
	entry, ok := idx.byID(id)
	if !ok {
		return nil, &store.NotFoundError{Resource: "page", Key: id.String()}
	}

	versions, err := b.deriveVersions(entry)
	if err != nil {
		return nil, err
	}
	for _, v := range versions {
		if v.Version == version {
			return v, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "page version", Key: id.String()}
}

func (b *Backend) GetCategories(_ context.Context) ([]*store.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := b.readFile(categoriesFile)
	if err != nil {
		if os.IsNotExist(err) {
			return []*store.Category{}, nil
		}
		b.logger.Error("categories degraded to empty", "error", err)
		return []*store.Category{}, nil
	}

	categories, err := decodeCategories(data)
	if err != nil {
		b.logger.Error("categories degraded to empty", "error", err)
		return []*store.Category{}, nil
	}

	active := make([]*store.Category, 0, len(categories))
	for _, c := range categories {
		if c.IsActive {
			active = append(active, c)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].Order == active[j].Order {
			return active[i].Slug < active[j].Slug
		}
		return active[i].Order < active[j].Order
	})
	return active, nil
}

// GetCategoryBySlug resolves a single category, active or not.
func (b *Backend) GetCategoryBySlug(_ context.Context, slug string) (*store.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := b.readFile(categoriesFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &store.NotFoundError{Resource: "category", Key: slug}
		}
		return nil, store.WrapBackend(err, "load categories")
	}
	categories, err := decodeCategories(data)
	if err != nil {
		return nil, store.WrapFormat(err, "decode categories")
	}
	return store.FindCategoryBySlug(categories, slug)
}

// PutCategory seeds or replaces a category, committing the change.
func (b *Backend) PutCategory(_ context.Context, actor interfaces.Identity, c *store.Category) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var categories []*store.Category
	data, err := b.readFile(categoriesFile)
	if err == nil {
		if categories, err = decodeCategories(data); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return store.WrapBackend(err, "read categories")
	}

	replaced := false
	for i, existing := range categories {
		if existing.ID == c.ID {
			categories[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		categories = append(categories, c)
	}

	files := map[string][]byte{categoriesFile: encodeCategories(categories)}
	return b.commit(files, nil, "Update categories", actor, b.now())
}

func (b *Backend) GetStats(_ context.Context) (*store.Stats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := &store.Stats{
		RecentPages:     []*store.Page{},
		TopContributors: []*store.Contributor{},
	}

	idx, err := b.readIndex()
	if err != nil {
		b.logger.Error("stats degraded to empty", "error", err)
		return stats, nil
	}

	published := make([]*store.Page, 0, len(idx.Pages))
	var allVersions []*store.PageVersion
	for _, entry := range idx.Pages {
		if entry.IsPublished {
			published = append(published, entry.toStub())
		}
		versions, err := b.deriveVersions(entry)
		if err != nil {
			b.logger.Warn("stats history walk failed", "slug", entry.Slug, "error", err)
			continue
		}
		allVersions = append(allVersions, versions...)
	}
	store.SortPages(published, store.SortByUpdatedAt, "desc")

	stats.TotalPages = len(published)
	if len(published) > store.RecentPageCount {
		published = published[:store.RecentPageCount]
	}
	stats.RecentPages = published
	stats.TopContributors = store.TopContributors(allVersions)

	if data, err := b.readFile(categoriesFile); err == nil {
		if categories, err := decodeCategories(data); err == nil {
			for _, c := range categories {
				if c.IsActive {
					stats.TotalCategories++
				}
			}
		}
	}
	return stats, nil
}

func (b *Backend) loadPage(entry indexEntry) (*store.Page, error) {
	data, err := b.readFile(pageFile(entry.Slug))
	if err != nil {
		return nil, store.WrapBackend(err, "read page file")
	}
	page, err := store.DecodePageDoc(data)
	if err != nil {
		return nil, err
	}
	page.ID = entry.ID
	return page, nil
}

// deriveVersions reconstructs history from the commit log for the page
// file. Commits that did not advance the version (metadata-only edits)
// collapse into the newest entry for that version number. Each revision
// costs one tree lookup, so the walk stops at the configured bound.
func (b *Backend) deriveVersions(entry indexEntry) ([]*store.PageVersion, error) {
	rel := pageFile(entry.Slug)
	iter, err := b.repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return []*store.PageVersion{}, nil
		}
		return nil, store.WrapBackend(err, "read commit log")
	}
	defer iter.Close()

	seen := map[int]bool{}
	out := []*store.PageVersion{}
	visited := 0

	err = iter.ForEach(func(c *object.Commit) error {
		if visited >= b.cfg.MaxHistory {
			return errStopIteration
		}
		visited++

		file, err := c.File(rel)
		if err != nil {
			if errors.Is(err, object.ErrFileNotFound) {
				return nil
			}
			return err
		}
		contents, err := file.Contents()
		if err != nil {
			return err
		}
		doc, err := store.DecodePageDoc([]byte(contents))
		if err != nil {
			b.logger.Warn("skipping malformed revision", "slug", entry.Slug, "commit", c.Hash.String(), "error", err)
			return nil
		}
		if seen[doc.Version] {
			return nil
		}
		seen[doc.Version] = true

		out = append(out, &store.PageVersion{
			ID:                identity.VersionUUID(entry.ID, doc.Version),
			PageID:            entry.ID,
			Version:           doc.Version,
			Title:             doc.Title,
			Content:           doc.Content,
			AuthorID:          doc.LastEditedBy,
			AuthorName:        doc.LastEditedByName,
			ChangeDescription: strings.TrimSpace(c.Message),
			CreatedAt:         c.Author.When,
		})
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return nil, store.WrapBackend(err, "walk commit log")
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

var errStopIteration = errors.New("revisionstore: stop iteration")

// commit writes the supplied files into the worktree, stages them along
// with any removals, and issues a single commit.
func (b *Backend) commit(files map[string][]byte, removals []string, message string, actor interfaces.Identity, now time.Time) error {
	wt, err := b.repo.Worktree()
	if err != nil {
		return store.WrapBackend(err, "open worktree")
	}

	for rel, data := range files {
		abs := filepath.Join(b.cfg.Path, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return store.WrapBackend(err, "create page directory")
		}
		if err := os.WriteFile(abs, data, 0o644); err != nil {
			return store.WrapBackend(err, "write "+rel)
		}
		if _, err := wt.Add(rel); err != nil {
			return store.WrapBackend(err, "stage "+rel)
		}
	}
	for _, rel := range removals {
		if _, err := wt.Remove(rel); err != nil {
			return store.WrapBackend(err, "remove "+rel)
		}
	}

	name := b.cfg.AuthorName
	if actor.DisplayName != "" {
		name = actor.DisplayName
	}
	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  name,
			Email: b.cfg.AuthorEmail,
			When:  now,
		},
	})
	if err != nil {
		return store.WrapBackend(err, "commit "+message)
	}
	return nil
}

func (b *Backend) readIndex() (pageIndex, error) {
	data, err := b.readFile(indexFile)
	if err != nil {
		if os.IsNotExist(err) {
			return newPageIndex(), nil
		}
		return newPageIndex(), store.WrapBackend(err, "read page index")
	}
	return decodeIndex(data)
}

func (b *Backend) readFile(rel string) ([]byte, error) {
	return os.ReadFile(filepath.Join(b.cfg.Path, filepath.FromSlash(rel)))
}

func pageFile(slug string) string {
	return path.Join(pagesDir, slug+".md")
}
