package revisionstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-wiki/internal/store"
	"github.com/goliatone/go-wiki/internal/storetest"
)

func newTestBackend(t *testing.T, cfg ...Config) *Backend {
	t.Helper()

	c := Config{Path: t.TempDir(), AuthorName: "wiki-test", AuthorEmail: "wiki@test.local"}
	if len(cfg) > 0 {
		c = cfg[0]
		if c.Path == "" {
			c.Path = t.TempDir()
		}
	}

	backend, err := New(c)
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	return backend
}

func TestRevisionBackendContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.PageStore {
		return newTestBackend(t)
	})
}

func TestRevisionBackendReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := New(Config{Path: dir})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	page, err := first.CreatePage(ctx, storetest.Editor, store.CreatePageData{Title: "Durable", Content: "body"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A new backend over the same path sees the committed state.
	second, err := New(Config{Path: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	fetched, err := second.GetPage(ctx, page.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if fetched.Content != "body" || fetched.Version != 1 {
		t.Fatalf("fetched = %+v", fetched)
	}

	versions, err := second.GetPageVersions(ctx, page.ID)
	if err != nil || len(versions) != 1 {
		t.Fatalf("versions = %d (%v)", len(versions), err)
	}
}

func TestRevisionBackendDeterministicIDs(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	page, err := backend.CreatePage(ctx, storetest.Editor, store.CreatePageData{Title: "Stable ID", Content: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if page.ID == uuid.Nil {
		t.Fatal("page ID must be assigned")
	}

	// The ID derives from the slug, so delete and re-create yields the
	// same identifier.
	if err := backend.DeletePage(ctx, storetest.Editor, page.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	again, err := backend.CreatePage(ctx, storetest.Editor, store.CreatePageData{Title: "Stable ID", Content: "y"})
	if err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if again.ID != page.ID {
		t.Fatalf("ID changed across recreate: %s vs %s", again.ID, page.ID)
	}
}

func TestRevisionBackendHistoryBound(t *testing.T) {
	backend := newTestBackend(t, Config{MaxHistory: 3})
	ctx := context.Background()

	if got := backend.VersionHistoryLimit(); got != 3 {
		t.Fatalf("limit = %d", got)
	}

	page, err := backend.CreatePage(ctx, storetest.Editor, store.CreatePageData{Title: "Long Story", Content: "v1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 2; i <= 6; i++ {
		content := fmt.Sprintf("v%d", i)
		if _, err := backend.UpdatePage(ctx, storetest.Editor, page.ID, store.UpdatePageData{Content: &content}); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	versions, err := backend.GetPageVersions(ctx, page.ID)
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("derived versions = %d, want the configured bound", len(versions))
	}
	if versions[0].Version != 6 {
		t.Fatalf("newest derived version = %d", versions[0].Version)
	}

	// Revisions past the bound are not retrievable.
	if _, err := backend.GetPageVersion(ctx, page.ID, 1); store.KindOf(err) != store.KindNotFound {
		t.Fatalf("out-of-window version err = %v", err)
	}
}

func TestRevisionBackendChangeDescriptionInHistory(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	page, err := backend.CreatePage(ctx, storetest.Editor, store.CreatePageData{Title: "Documented", Content: "v1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	content := "v2"
	if _, err := backend.UpdatePage(ctx, storetest.Editor, page.ID, store.UpdatePageData{
		Content:           &content,
		ChangeDescription: "tighten wording",
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	versions, err := backend.GetPageVersions(ctx, page.ID)
	if err != nil || len(versions) != 2 {
		t.Fatalf("versions = %d (%v)", len(versions), err)
	}
	if versions[0].ChangeDescription != "Update page documented: tighten wording" {
		t.Fatalf("change description = %q", versions[0].ChangeDescription)
	}
	if versions[1].ChangeDescription != "Create page documented" {
		t.Fatalf("create message = %q", versions[1].ChangeDescription)
	}
}

func TestRevisionBackendCategories(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	seed := []*store.Category{
		{ID: uuid.New(), Slug: "guides", Name: "Guides", Order: 2, IsActive: true},
		{ID: uuid.New(), Slug: "archive", Name: "Archive", Order: 1, IsActive: false},
		{ID: uuid.New(), Slug: "admin", Name: "Admin", Order: 1, IsActive: true},
	}
	for _, c := range seed {
		if err := backend.PutCategory(ctx, storetest.Editor, c); err != nil {
			t.Fatalf("put category %s: %v", c.Slug, err)
		}
	}

	cats, err := backend.GetCategories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("active categories = %d", len(cats))
	}
	if cats[0].Slug != "admin" || cats[1].Slug != "guides" {
		t.Fatalf("order = %q, %q", cats[0].Slug, cats[1].Slug)
	}

	stats, err := backend.GetStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalCategories != 2 {
		t.Fatalf("TotalCategories = %d", stats.TotalCategories)
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
