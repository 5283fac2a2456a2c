package blobstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-wiki/internal/objectstore"
	"github.com/goliatone/go-wiki/internal/store"
	"github.com/goliatone/go-wiki/internal/storetest"
	"github.com/goliatone/go-wiki/pkg/interfaces"
	"github.com/goliatone/go-wiki/pkg/testsupport"
)

func newTestBackend(t *testing.T) (*Backend, *objectstore.MemoryStore) {
	t.Helper()

	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	blobs := objectstore.NewMemoryStore()
	backend := New(db, blobs, storetest.EditorRole)
	if err := backend.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return backend, blobs
}

func TestBlobBackendContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.PageStore {
		backend, _ := newTestBackend(t)
		return backend
	})
}

func TestBlobBackendRoleAsymmetry(t *testing.T) {
	backend, _ := newTestBackend(t)
	ctx := context.Background()

	// Reviewer is authenticated but not in the editor role.
	if _, err := backend.CreatePage(ctx, storetest.Reviewer, store.CreatePageData{
		Title: "Denied", Content: "x",
	}); store.KindOf(err) != store.KindAuthorization {
		t.Fatalf("create without role err = %v", err)
	}

	// Anonymous callers are rejected outright.
	if _, err := backend.CreatePage(ctx, interfaces.Identity{}, store.CreatePageData{
		Title: "Anon", Content: "x",
	}); store.KindOf(err) != store.KindAuthorization {
		t.Fatalf("anonymous create err = %v", err)
	}

	page, err := backend.CreatePage(ctx, storetest.Editor, store.CreatePageData{Title: "Open Edits", Content: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Updates are open to any authenticated identity.
	body := "revised"
	if _, err := backend.UpdatePage(ctx, storetest.Reviewer, page.ID, store.UpdatePageData{Content: &body}); err != nil {
		t.Fatalf("reviewer update: %v", err)
	}
	if _, err := backend.UpdatePage(ctx, interfaces.Identity{}, page.ID, store.UpdatePageData{}); store.KindOf(err) != store.KindAuthorization {
		t.Fatal("anonymous update must be rejected")
	}

	// Delete is role-gated again.
	if err := backend.DeletePage(ctx, storetest.Reviewer, page.ID); store.KindOf(err) != store.KindAuthorization {
		t.Fatalf("delete without role err = %v", err)
	}
	if err := backend.DeletePage(ctx, storetest.Editor, page.ID); err != nil {
		t.Fatalf("editor delete: %v", err)
	}
}

func TestBlobBackendUploadFailureLeavesNoIndexRow(t *testing.T) {
	backend, blobs := newTestBackend(t)
	ctx := context.Background()

	blobs.FailUploads = true
	_, err := backend.CreatePage(ctx, storetest.Editor, store.CreatePageData{Title: "Doomed", Content: "x"})
	if store.KindOf(err) != store.KindBackend {
		t.Fatalf("err = %v, want backend error", err)
	}

	blobs.FailUploads = false
	if _, err := backend.GetPageBySlug(ctx, "doomed"); store.KindOf(err) != store.KindNotFound {
		t.Fatalf("index row leaked: %v", err)
	}

	// Retry succeeds; the deterministic blob key means no orphan remains.
	page, err := backend.CreatePage(ctx, storetest.Editor, store.CreatePageData{Title: "Doomed", Content: "x"})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !blobs.Has(blobKeyFor(page.ID, 1)) {
		t.Fatal("blob missing after retry")
	}
	if blobs.Len() != 1 {
		t.Fatalf("blob count = %d, want 1", blobs.Len())
	}
}

func TestBlobBackendBlobLifecycle(t *testing.T) {
	backend, blobs := newTestBackend(t)
	ctx := context.Background()

	page, err := backend.CreatePage(ctx, storetest.Editor, store.CreatePageData{
		Title:   "Lifecycle",
		Content: "first",
		Tags:    []string{"ops", "infra"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !blobs.Has(blobKeyFor(page.ID, 1)) {
		t.Fatal("v1 blob missing")
	}

	body := "second"
	updated, err := backend.UpdatePage(ctx, storetest.Editor, page.ID, store.UpdatePageData{Content: &body})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !blobs.Has(blobKeyFor(page.ID, 2)) {
		t.Fatal("v2 blob missing")
	}
	if blobs.Has(blobKeyFor(page.ID, 1)) {
		t.Fatal("superseded v1 blob not cleaned up")
	}

	fetched, err := backend.GetPage(ctx, updated.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Content != "second" {
		t.Fatalf("content = %q", fetched.Content)
	}
	if len(fetched.Tags) != 2 {
		t.Fatalf("tags = %v", fetched.Tags)
	}

	if err := backend.DeletePage(ctx, storetest.Editor, page.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if blobs.Len() != 0 {
		t.Fatalf("blobs after delete = %d, want 0", blobs.Len())
	}
}

func TestBlobDocumentRoundTrip(t *testing.T) {
	page, err := store.NewPage(storetest.Editor, store.CreatePageData{
		Title:   "Round Trip",
		Content: "line one\n\nline two",
		Tags:    []string{"a", "b"},
	}, uuid.New(), time.Now())
	if err != nil {
		t.Fatalf("new page: %v", err)
	}
	page.Metadata = map[string]string{"source": "import"}
	page.Attachments = []string{"diagram.png"}

	data := encodePageBlob(page)
	decoded, err := decodePageBlob(page, data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Content != page.Content {
		t.Fatalf("content = %q", decoded.Content)
	}
	if decoded.Metadata["source"] != "import" {
		t.Fatalf("metadata = %v", decoded.Metadata)
	}
	if len(decoded.Attachments) != 1 || decoded.Attachments[0] != "diagram.png" {
		t.Fatalf("attachments = %v", decoded.Attachments)
	}
}

func TestBlobBackendCategoriesFromSharedTable(t *testing.T) {
	backend, _ := newTestBackend(t)
	ctx := context.Background()

	if _, err := backend.db.ExecContext(ctx, `CREATE TABLE wiki_categories (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		moderators TEXT NOT NULL DEFAULT ''
	)`); err != nil {
		t.Fatalf("create categories table: %v", err)
	}
	rows := [][]any{
		{uuid.New().String(), "guides", "Guides", 2, true},
		{uuid.New().String(), "archive", "Archive", 1, false},
		{uuid.New().String(), "admin", "Admin", 1, true},
	}
	for _, row := range rows {
		if _, err := backend.db.ExecContext(ctx,
			`INSERT INTO wiki_categories (id, slug, name, sort_order, is_active) VALUES (?, ?, ?, ?, ?)`,
			row...); err != nil {
			t.Fatalf("seed category: %v", err)
		}
	}

	cats, err := backend.GetCategories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("active categories = %d, want 2", len(cats))
	}
	if cats[0].Slug != "admin" || cats[1].Slug != "guides" {
		t.Fatalf("order = %q, %q", cats[0].Slug, cats[1].Slug)
	}

	archived, err := backend.GetCategoryBySlug(ctx, "archive")
	if err != nil {
		t.Fatalf("category by slug: %v", err)
	}
	if archived.IsActive {
		t.Fatalf("expected inactive category, got %+v", archived)
	}
	if _, err := backend.GetCategoryBySlug(ctx, "missing"); store.KindOf(err) != store.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
