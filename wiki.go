package wiki

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-wiki/internal/blobstore"
	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/internal/logging/gologger"
	"github.com/goliatone/go-wiki/internal/objectstore"
	"github.com/goliatone/go-wiki/internal/revisionstore"
	"github.com/goliatone/go-wiki/internal/runtimeconfig"
	"github.com/goliatone/go-wiki/internal/storage"
	"github.com/goliatone/go-wiki/internal/store"
	"github.com/goliatone/go-wiki/internal/tablestore"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// PageStore exports the page store contract for consumers of the wiki package.
type PageStore = store.PageStore

// LimitedVersionHistory marks stores whose version listings are bounded.
type LimitedVersionHistory = store.LimitedVersionHistory

// Page exports the page record DTO.
type Page = store.Page

// PageVersion exports the version snapshot DTO.
type PageVersion = store.PageVersion

// Category exports the category DTO.
type Category = store.Category

// SearchResult exports the ranked search hit DTO.
type SearchResult = store.SearchResult

// CreatePageData exports the page creation payload.
type CreatePageData = store.CreatePageData

// UpdatePageData exports the page update patch.
type UpdatePageData = store.UpdatePageData

// Filters exports the listing filter set.
type Filters = store.Filters

// Pagination exports the listing page window descriptor.
type Pagination = store.Pagination

// PageList exports the paginated listing result.
type PageList = store.PageList

// Stats exports the aggregate statistics DTO.
type Stats = store.Stats

// Contributor exports the per-author contribution DTO.
type Contributor = store.Contributor

// Identity exports the caller identity consumed by authorization checks.
type Identity = interfaces.Identity

// ObjectStore exports the blob storage contract used by the blob-index backend.
type ObjectStore = interfaces.ObjectStore

// Logger exports the leveled logging contract.
type Logger = interfaces.Logger

var ErrAlreadyConfigured = errors.New("wiki: backend already configured, call Reset before configuring again")
var ErrNotConfigured = errors.New("wiki: backend not configured")

// Option overrides a collaborator during module construction.
type Option func(*Module)

// WithObjectStore substitutes the blob storage client used by the blob-index
// backend, bypassing the S3 client built from configuration.
func WithObjectStore(blobs interfaces.ObjectStore) Option {
	return func(m *Module) {
		m.blobs = blobs
	}
}

// WithLoggerProvider substitutes the logger provider built from the logging
// configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		m.logs = provider
	}
}

// Module is the top level wiki runtime facade. It owns the selected backend
// and the resources behind it.
type Module struct {
	cfg   Config
	logs  interfaces.LoggerProvider
	blobs interfaces.ObjectStore
	db    *bun.DB
	store store.PageStore
}

// New constructs a wiki module from the provided configuration. The backend
// named by cfg.Backend is built and migrated; Close releases its resources.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}

	if m.logs == nil {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
		})
		if err != nil {
			return nil, err
		}
		m.logs = provider
	}

	if err := m.buildBackend(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Module) buildBackend(ctx context.Context) error {
	switch normalizedBackend(m.cfg.Backend) {
	case runtimeconfig.BackendTable:
		db, err := m.openStorage(ctx)
		if err != nil {
			return err
		}
		m.store = tablestore.New(db, tablestore.WithLogger(logging.TableLogger(m.logs)))
	case runtimeconfig.BackendBlobIndex:
		db, err := m.openStorage(ctx)
		if err != nil {
			return err
		}
		if m.blobs == nil {
			blobs, err := objectstore.NewS3Store(ctx, objectstore.S3Config{
				Endpoint:  m.cfg.ObjectStore.Endpoint,
				Region:    m.cfg.ObjectStore.Region,
				Bucket:    m.cfg.ObjectStore.Bucket,
				AccessKey: m.cfg.ObjectStore.AccessKey,
				SecretKey: m.cfg.ObjectStore.SecretKey,
			})
			if err != nil {
				return err
			}
			m.blobs = blobs
		}
		m.store = blobstore.New(db, m.blobs, m.cfg.Security.EditorRole,
			blobstore.WithLogger(logging.BlobLogger(m.logs)))
	case runtimeconfig.BackendRevision:
		backend, err := revisionstore.New(revisionstore.Config{
			Path:        m.cfg.Revision.Path,
			AuthorName:  m.cfg.Revision.AuthorName,
			AuthorEmail: m.cfg.Revision.AuthorEmail,
			MaxHistory:  m.cfg.Revision.MaxHistory,
		}, revisionstore.WithLogger(logging.RevisionLogger(m.logs)))
		if err != nil {
			return err
		}
		m.store = backend
	default:
		return fmt.Errorf("%w: %s", ErrBackendUnknown, m.cfg.Backend)
	}
	return nil
}

func (m *Module) openStorage(ctx context.Context) (*bun.DB, error) {
	db, err := storage.Open(m.cfg.Storage.Driver, m.cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}
	if err := storage.ApplyMigrations(ctx, db, GetMigrationsFS(), "data/sql/migrations"); err != nil {
		db.Close()
		return nil, err
	}
	m.db = db
	return db, nil
}

// Store returns the active page store.
func (m *Module) Store() PageStore {
	if m == nil {
		return nil
	}
	return m.store
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config {
	return m.cfg
}

// Close releases the backend resources. The module must not be used after
// Close returns.
func (m *Module) Close() error {
	if m == nil {
		return nil
	}
	m.store = nil
	if m.db != nil {
		db := m.db
		m.db = nil
		return db.Close()
	}
	return nil
}

func normalizedBackend(backend string) string {
	return strings.ToLower(strings.TrimSpace(backend))
}

var selector struct {
	mu     sync.Mutex
	module *Module
}

// Configure builds the process-wide module. It fails if a module is already
// active; call Reset first to swap backends.
func Configure(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	selector.mu.Lock()
	defer selector.mu.Unlock()

	if selector.module != nil {
		return nil, ErrAlreadyConfigured
	}
	module, err := New(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	selector.module = module
	return module, nil
}

// Active returns the page store of the process-wide module configured via
// Configure.
func Active() (PageStore, error) {
	selector.mu.Lock()
	defer selector.mu.Unlock()

	if selector.module == nil {
		return nil, ErrNotConfigured
	}
	return selector.module.Store(), nil
}

// Reset tears down the process-wide module, releasing its resources. It is a
// no-op when nothing is configured.
func Reset() error {
	selector.mu.Lock()
	defer selector.mu.Unlock()

	if selector.module == nil {
		return nil
	}
	module := selector.module
	selector.module = nil
	return module.Close()
}
