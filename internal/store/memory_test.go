package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-wiki/pkg/interfaces"
)

var memActor = interfaces.Identity{ID: "user-1", DisplayName: "Ada Lovelace"}

func TestMemoryStoreCloneIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.CreatePage(ctx, memActor, CreatePageData{
		Title:   "Isolated",
		Content: "body",
		Tags:    []string{"one"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Mutating the returned page must not leak into the store.
	created.Title = "Tampered"
	created.Tags[0] = "tampered"

	fetched, err := s.GetPage(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Title != "Isolated" || fetched.Tags[0] != "one" {
		t.Fatalf("store state leaked: %+v", fetched)
	}
}

func TestMemoryStoreDeterministicClockAndIDs(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	next := 0

	s := NewMemoryStore(
		WithMemoryClock(func() time.Time { return at }),
		WithMemoryIDGenerator(func() uuid.UUID {
			id := ids[next%len(ids)]
			next++
			return id
		}),
	)

	page, err := s.CreatePage(context.Background(), memActor, CreatePageData{Title: "Clockwork", Content: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if page.ID != ids[0] {
		t.Fatalf("ID = %s, want injected %s", page.ID, ids[0])
	}
	if !page.CreatedAt.Equal(at) {
		t.Fatalf("CreatedAt = %v", page.CreatedAt)
	}
}

func TestMemoryStoreCategories(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.PutCategory(&Category{ID: uuid.New(), Slug: "guides", Name: "Guides", Order: 2, IsActive: true})
	s.PutCategory(&Category{ID: uuid.New(), Slug: "archive", Name: "Archive", Order: 1, IsActive: false})
	s.PutCategory(&Category{ID: uuid.New(), Slug: "admin", Name: "Admin", Order: 1, IsActive: true})

	cats, err := s.GetCategories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("active categories = %d, want 2", len(cats))
	}
	if cats[0].Slug != "admin" || cats[1].Slug != "guides" {
		t.Fatalf("order = %q, %q", cats[0].Slug, cats[1].Slug)
	}
}

func TestMemoryStoreStats(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.PutCategory(&Category{ID: uuid.New(), Slug: "guides", Name: "Guides", IsActive: true})
	s.PutCategory(&Category{ID: uuid.New(), Slug: "hidden", Name: "Hidden", IsActive: false})

	unpublished := false
	if _, err := s.CreatePage(ctx, memActor, CreatePageData{Title: "Draft", Content: "x", IsPublished: &unpublished}); err != nil {
		t.Fatalf("create draft: %v", err)
	}

	other := interfaces.Identity{ID: "user-2", DisplayName: "Grace Hopper"}
	page, err := s.CreatePage(ctx, memActor, CreatePageData{Title: "Live", Content: "x"})
	if err != nil {
		t.Fatalf("create live: %v", err)
	}
	body := "second revision"
	if _, err := s.UpdatePage(ctx, other, page.ID, UpdatePageData{Content: &body}); err != nil {
		t.Fatalf("update: %v", err)
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalPages != 1 {
		t.Fatalf("TotalPages = %d, want published only", stats.TotalPages)
	}
	if stats.TotalCategories != 1 {
		t.Fatalf("TotalCategories = %d", stats.TotalCategories)
	}
	if len(stats.RecentPages) != 1 || stats.RecentPages[0].Slug != "live" {
		t.Fatalf("RecentPages = %+v", stats.RecentPages)
	}
	if len(stats.TopContributors) == 0 {
		t.Fatal("expected contributors from version history")
	}
}
