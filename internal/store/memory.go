package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// MemoryStore is an in-memory PageStore for scaffolding and tests. It
// honors the full contract, including version history and category
// aggregation, with no external storage.
type MemoryStore struct {
	mu         sync.RWMutex
	pages      map[uuid.UUID]*Page
	slugs      map[string]uuid.UUID
	versions   map[uuid.UUID][]*PageVersion
	categories map[uuid.UUID]*Category

	now    func() time.Time
	id     func() uuid.UUID
	logger interfaces.Logger
}

// MemoryOption configures the store at construction time.
type MemoryOption func(*MemoryStore)

// WithMemoryClock overrides the clock used to stamp records.
func WithMemoryClock(clock func() time.Time) MemoryOption {
	return func(m *MemoryStore) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithMemoryIDGenerator overrides page/version ID allocation.
func WithMemoryIDGenerator(generator func() uuid.UUID) MemoryOption {
	return func(m *MemoryStore) {
		if generator != nil {
			m.id = generator
		}
	}
}

// WithMemoryLogger attaches a logger for best-effort failure reporting.
func WithMemoryLogger(logger interfaces.Logger) MemoryOption {
	return func(m *MemoryStore) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMemoryStore creates an empty in-memory page store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		pages:      make(map[uuid.UUID]*Page),
		slugs:      make(map[string]uuid.UUID),
		versions:   make(map[uuid.UUID][]*PageVersion),
		categories: make(map[uuid.UUID]*Category),
		now:        time.Now,
		id:         uuid.New,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ PageStore = (*MemoryStore)(nil)

// PutCategory seeds or replaces a category.
func (m *MemoryStore) PutCategory(c *Category) {
	if c == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *c
	copied.Moderators = cloneStrings(c.Moderators)
	m.categories[c.ID] = &copied
}

func (m *MemoryStore) CreatePage(_ context.Context, actor interfaces.Identity, data CreatePageData) (*Page, error) {
	now := m.now()
	page, err := NewPage(actor, data, m.id(), now)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.slugs[page.Slug]; exists {
		return nil, &ConflictError{Slug: page.Slug}
	}

	m.pages[page.ID] = ClonePage(page)
	m.slugs[page.Slug] = page.ID
	m.appendVersionLocked(NewVersion(page, "", m.id(), now))

	return page, nil
}

func (m *MemoryStore) GetPage(_ context.Context, id uuid.UUID) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	page, ok := m.pages[id]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: id.String()}
	}
	return ClonePage(page), nil
}

func (m *MemoryStore) GetPageBySlug(_ context.Context, slug string) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugs[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: slug}
	}
	return ClonePage(m.pages[id]), nil
}

func (m *MemoryStore) UpdatePage(_ context.Context, actor interfaces.Identity, id uuid.UUID, patch UpdatePageData) (*Page, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.pages[id]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: id.String()}
	}

	updated := ClonePage(current)
	changed, err := ApplyPatch(updated, actor, patch, now)
	if err != nil {
		return nil, err
	}

	m.pages[id] = ClonePage(updated)
	if changed {
		m.appendVersionLocked(NewVersion(updated, patch.ChangeDescription, m.id(), now))
	}

	return updated, nil
}

func (m *MemoryStore) DeletePage(_ context.Context, _ interfaces.Identity, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	page, ok := m.pages[id]
	if !ok {
		return &NotFoundError{Resource: "page", Key: id.String()}
	}

	delete(m.pages, id)
	delete(m.slugs, page.Slug)
	delete(m.versions, id)
	return nil
}

func (m *MemoryStore) ListPages(_ context.Context, filters Filters) (*PageList, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return PaginateSlice(m.snapshotLocked(), filters), nil
}

func (m *MemoryStore) SearchPages(_ context.Context, query string) ([]SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return RankPages(m.snapshotLocked(), query), nil
}

func (m *MemoryStore) GetPageVersions(_ context.Context, id uuid.UUID) ([]*PageVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.pages[id]; !ok {
		return nil, &NotFoundError{Resource: "page", Key: id.String()}
	}

	records := m.versions[id]
	out := make([]*PageVersion, len(records))
	for i, v := range records {
		copied := *v
		out[i] = &copied
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (m *MemoryStore) GetPageVersion(_ context.Context, id uuid.UUID, version int) (*PageVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, v := range m.versions[id] {
		if v.Version == version {
			copied := *v
			return &copied, nil
		}
	}
	return nil, &NotFoundError{Resource: "page version", Key: id.String()}
}

func (m *MemoryStore) GetCategories(_ context.Context) ([]*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Category, 0, len(m.categories))
	for _, c := range m.categories {
		if !c.IsActive {
			continue
		}
		copied := *c
		copied.Moderators = cloneStrings(c.Moderators)
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order == out[j].Order {
			return out[i].Slug < out[j].Slug
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

// GetCategoryBySlug resolves a single category, active or not.
func (m *MemoryStore) GetCategoryBySlug(_ context.Context, slug string) (*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.categories {
		if c.Slug == slug {
			copied := *c
			copied.Moderators = cloneStrings(c.Moderators)
			return &copied, nil
		}
	}
	return nil, &NotFoundError{Resource: "category", Key: slug}
}

func (m *MemoryStore) GetStats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	published := make([]*Page, 0, len(m.pages))
	for _, p := range m.pages {
		if p.IsPublished {
			published = append(published, ClonePage(p))
		}
	}
	SortPages(published, SortByUpdatedAt, "desc")

	recent := published
	if len(recent) > RecentPageCount {
		recent = recent[:RecentPageCount]
	}

	activeCategories := 0
	for _, c := range m.categories {
		if c.IsActive {
			activeCategories++
		}
	}

	var allVersions []*PageVersion
	for _, records := range m.versions {
		allVersions = append(allVersions, records...)
	}

	return &Stats{
		TotalPages:      len(published),
		TotalCategories: activeCategories,
		RecentPages:     recent,
		TopContributors: TopContributors(allVersions),
	}, nil
}

// appendVersionLocked records a history snapshot. Failures are logged and
// swallowed; the page write remains the source of truth.
func (m *MemoryStore) appendVersionLocked(v *PageVersion) {
	if err := ValidateVersionSnapshot(v); err != nil {
		m.logger.Error("version append skipped", "page_id", v.PageID, "error", err)
		return
	}
	m.versions[v.PageID] = append(m.versions[v.PageID], v)
}

func (m *MemoryStore) snapshotLocked() []*Page {
	out := make([]*Page, 0, len(m.pages))
	for _, p := range m.pages {
		out = append(out, ClonePage(p))
	}
	return out
}

// ClonePage returns a deep copy safe to hand to callers.
func ClonePage(src *Page) *Page {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Tags = cloneStrings(src.Tags)
	copied.Attachments = cloneStrings(src.Attachments)
	if src.Metadata != nil {
		copied.Metadata = make(map[string]string, len(src.Metadata))
		for k, v := range src.Metadata {
			copied.Metadata[k] = v
		}
	}
	if src.CategoryID != nil {
		id := *src.CategoryID
		copied.CategoryID = &id
	}
	return &copied
}
