// Package storetest runs the PageStore contract against any backend.
// Every backend test file invokes Run with a factory so the three storage
// implementations and the in-memory scaffold stay behaviorally aligned.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/goliatone/go-wiki/internal/store"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// EditorRole is the privileged role used by contract fixtures. Backends
// that gate operations on a role must be constructed with this one.
const EditorRole = "wiki:editors"

// Editor is the default acting identity for contract fixtures.
var Editor = interfaces.Identity{
	ID:          "user-editor",
	DisplayName: "Ada Lovelace",
	Roles:       []string{EditorRole},
}

// Reviewer is a second authenticated identity without privileged roles.
var Reviewer = interfaces.Identity{
	ID:          "user-reviewer",
	DisplayName: "Grace Hopper",
}

// Factory builds a fresh, empty store for one test.
type Factory func(t *testing.T) store.PageStore

// Run exercises the full PageStore contract against the factory.
func Run(t *testing.T, factory Factory) {
	t.Run("CreateAndFetch", func(t *testing.T) { testCreateAndFetch(t, factory) })
	t.Run("CreateValidation", func(t *testing.T) { testCreateValidation(t, factory) })
	t.Run("DuplicateSlug", func(t *testing.T) { testDuplicateSlug(t, factory) })
	t.Run("UpdateVersioning", func(t *testing.T) { testUpdateVersioning(t, factory) })
	t.Run("UpdateMetadataOnly", func(t *testing.T) { testUpdateMetadataOnly(t, factory) })
	t.Run("DeleteCascades", func(t *testing.T) { testDeleteCascades(t, factory) })
	t.Run("ListPagination", func(t *testing.T) { testListPagination(t, factory) })
	t.Run("ListFallbackSort", func(t *testing.T) { testListFallbackSort(t, factory) })
	t.Run("SearchRanking", func(t *testing.T) { testSearchRanking(t, factory) })
	t.Run("Scenario", func(t *testing.T) { testScenario(t, factory) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, factory) })
}

func testCreateAndFetch(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	created, err := s.CreatePage(ctx, Editor, store.CreatePageData{
		Title:   "Getting Started",
		Content: "Hello",
		Tags:    []string{"intro"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Slug != "getting-started" {
		t.Fatalf("slug = %q", created.Slug)
	}
	if created.Version != 1 {
		t.Fatalf("version = %d, want 1", created.Version)
	}
	if created.AuthorID != Editor.ID || created.AuthorName != Editor.DisplayName {
		t.Fatalf("author = %q/%q", created.AuthorID, created.AuthorName)
	}
	if !created.IsPublished {
		t.Fatal("pages should publish by default")
	}

	bySlug, err := s.GetPageBySlug(ctx, "getting-started")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if bySlug.ID != created.ID || bySlug.Version != 1 {
		t.Fatalf("fetched page mismatch: %+v", bySlug)
	}

	byID, err := s.GetPage(ctx, created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Slug != created.Slug {
		t.Fatalf("byID.Slug = %q", byID.Slug)
	}

	versions, err := s.GetPageVersions(ctx, created.ID)
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(versions) != 1 || versions[0].Version != 1 {
		t.Fatalf("expected exactly one version record, got %d", len(versions))
	}
	if versions[0].Content != "Hello" {
		t.Fatalf("version content = %q", versions[0].Content)
	}
}

func testCreateValidation(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	cases := []store.CreatePageData{
		{Title: "", Content: "body"},
		{Title: "   ", Content: "body"},
		{Title: "Valid", Content: ""},
		{Title: "!!!", Content: "punctuation only title"},
	}
	for _, data := range cases {
		if _, err := s.CreatePage(ctx, Editor, data); err == nil {
			t.Fatalf("create %+v should fail", data)
		} else if kind := store.KindOf(err); kind != store.KindValidation {
			t.Fatalf("create %+v kind = %s, want validation", data, kind)
		}
	}
}

func testDuplicateSlug(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	if _, err := s.CreatePage(ctx, Editor, store.CreatePageData{Title: "Same Title", Content: "one"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := s.CreatePage(ctx, Editor, store.CreatePageData{Title: "Same  Title!", Content: "two"})
	if err == nil {
		t.Fatal("duplicate slug should conflict")
	}
	if kind := store.KindOf(err); kind != store.KindConflict {
		t.Fatalf("kind = %s, want conflict", kind)
	}
}

func testUpdateVersioning(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	page, err := s.CreatePage(ctx, Editor, store.CreatePageData{Title: "Version Walk", Content: "v1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const edits = 3
	for i := 0; i < edits; i++ {
		content := fmt.Sprintf("content revision %d", i+2)
		page, err = s.UpdatePage(ctx, Reviewer, page.ID, store.UpdatePageData{
			Content:           &content,
			ChangeDescription: fmt.Sprintf("edit %d", i+1),
		})
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	if page.Version != 1+edits {
		t.Fatalf("version = %d, want %d", page.Version, 1+edits)
	}
	if page.LastEditedBy != Reviewer.ID {
		t.Fatalf("lastEditedBy = %q", page.LastEditedBy)
	}
	if page.AuthorID != Editor.ID {
		t.Fatal("author must stay immutable across edits")
	}

	versions, err := s.GetPageVersions(ctx, page.ID)
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(versions) != 1+edits {
		t.Fatalf("version records = %d, want %d", len(versions), 1+edits)
	}
	for i := 1; i < len(versions); i++ {
		if versions[i-1].Version <= versions[i].Version {
			t.Fatal("versions must be ordered descending")
		}
	}
	if versions[0].Content != fmt.Sprintf("content revision %d", 1+edits) {
		t.Fatalf("latest snapshot content = %q", versions[0].Content)
	}

	single, err := s.GetPageVersion(ctx, page.ID, 2)
	if err != nil {
		t.Fatalf("get version 2: %v", err)
	}
	if single.Version != 2 {
		t.Fatalf("single.Version = %d", single.Version)
	}
}

func testUpdateMetadataOnly(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	page, err := s.CreatePage(ctx, Editor, store.CreatePageData{Title: "Flags Only", Content: "body"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	locked := true
	updated, err := s.UpdatePage(ctx, Editor, page.ID, store.UpdatePageData{IsLocked: &locked, Tags: []string{"ops"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != 1 {
		t.Fatalf("metadata-only update bumped version to %d", updated.Version)
	}
	if !updated.IsLocked {
		t.Fatal("isLocked not applied")
	}

	versions, err := s.GetPageVersions(ctx, page.ID)
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("metadata-only update appended a version record (%d records)", len(versions))
	}
}

func testDeleteCascades(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	page, err := s.CreatePage(ctx, Editor, store.CreatePageData{Title: "Doomed", Content: "v1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	next := "v2"
	if _, err := s.UpdatePage(ctx, Editor, page.ID, store.UpdatePageData{Content: &next}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := s.DeletePage(ctx, Editor, page.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.GetPage(ctx, page.ID); store.KindOf(err) != store.KindNotFound {
		t.Fatalf("get after delete err = %v, want not found", err)
	}
	if _, err := s.GetPageBySlug(ctx, page.Slug); store.KindOf(err) != store.KindNotFound {
		t.Fatalf("get by slug after delete err = %v, want not found", err)
	}
	if versions, err := s.GetPageVersions(ctx, page.ID); err == nil && len(versions) > 0 {
		t.Fatalf("version history survived delete: %d records", len(versions))
	}

	if err := s.DeletePage(ctx, Editor, page.ID); store.KindOf(err) != store.KindNotFound {
		t.Fatalf("second delete err = %v, want not found", err)
	}
}

func testListPagination(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		_, err := s.CreatePage(ctx, Editor, store.CreatePageData{
			Title:   fmt.Sprintf("Listing Page %02d", i),
			Content: fmt.Sprintf("body %d", i),
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	second, err := s.ListPages(ctx, store.Filters{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(second.Pages) != 10 {
		t.Fatalf("page 2 size = %d, want 10", len(second.Pages))
	}
	p := second.Pagination
	if !p.HasNext || !p.HasPrev || p.TotalCount != 25 || p.TotalPages != 3 || p.CurrentPage != 2 {
		t.Fatalf("page 2 pagination = %+v", p)
	}

	third, err := s.ListPages(ctx, store.Filters{Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("list page 3: %v", err)
	}
	if len(third.Pages) != 5 {
		t.Fatalf("page 3 size = %d, want 5", len(third.Pages))
	}
	if third.Pagination.HasNext || !third.Pagination.HasPrev {
		t.Fatalf("page 3 pagination = %+v", third.Pagination)
	}

	// Page below 1 floors to 1; oversized limits clamp to the max.
	floored, err := s.ListPages(ctx, store.Filters{Page: 0, Limit: 500})
	if err != nil {
		t.Fatalf("list floored: %v", err)
	}
	if floored.Pagination.CurrentPage != 1 {
		t.Fatalf("currentPage = %d, want 1", floored.Pagination.CurrentPage)
	}
	if len(floored.Pages) != 25 {
		t.Fatalf("clamped list size = %d, want 25", len(floored.Pages))
	}
}

func testListFallbackSort(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	for _, title := range []string{"Bravo", "Alpha", "Charlie"} {
		if _, err := s.CreatePage(ctx, Editor, store.CreatePageData{Title: title, Content: "x"}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}

	// Unknown sortBy must not error; it falls back to creation order.
	list, err := s.ListPages(ctx, store.Filters{SortBy: "definitely-not-a-column"})
	if err != nil {
		t.Fatalf("list with unknown sort: %v", err)
	}
	if len(list.Pages) != 3 {
		t.Fatalf("list size = %d", len(list.Pages))
	}

	byTitle, err := s.ListPages(ctx, store.Filters{SortBy: "title", SortOrder: "asc"})
	if err != nil {
		t.Fatalf("list by title: %v", err)
	}
	got := []string{byTitle.Pages[0].Title, byTitle.Pages[1].Title, byTitle.Pages[2].Title}
	if got[0] != "Alpha" || got[1] != "Bravo" || got[2] != "Charlie" {
		t.Fatalf("title sort order = %v", got)
	}
}

func testSearchRanking(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	_, err := s.CreatePage(ctx, Editor, store.CreatePageData{
		Title:   "Hello Handbook",
		Content: "An introduction.",
		Tags:    []string{"guide"},
	})
	if err != nil {
		t.Fatalf("create title match: %v", err)
	}
	_, err = s.CreatePage(ctx, Editor, store.CreatePageData{
		Title:   "Other Handbook",
		Content: "Start by saying hello to the team.",
		Tags:    []string{"guide"},
	})
	if err != nil {
		t.Fatalf("create excerpt match: %v", err)
	}

	results, err := s.SearchPages(ctx, "hello")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Page.Slug != "hello-handbook" {
		t.Fatalf("title match should rank first, got %q", results[0].Page.Slug)
	}
	if results[0].RelevanceScore <= results[1].RelevanceScore {
		t.Fatalf("scores not descending: %d vs %d", results[0].RelevanceScore, results[1].RelevanceScore)
	}
	if !strings.Contains(strings.ToLower(results[1].MatchedContent), "hello") {
		t.Fatalf("snippet %q lost the match", results[1].MatchedContent)
	}

	if none, err := s.SearchPages(ctx, "zzz-no-such-term"); err != nil || len(none) != 0 {
		t.Fatalf("no-match search = %v, %v", none, err)
	}
}

func testScenario(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	page, err := s.CreatePage(ctx, Editor, store.CreatePageData{Title: "Getting Started", Content: "Hello"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if page.Slug != "getting-started" || page.Version != 1 {
		t.Fatalf("created page = %+v", page)
	}

	next := "Hello world"
	page, err = s.UpdatePage(ctx, Editor, page.ID, store.UpdatePageData{Content: &next})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if page.Version != 2 {
		t.Fatalf("version = %d, want 2", page.Version)
	}

	versions, err := s.GetPageVersions(ctx, page.ID)
	if err != nil || len(versions) != 2 {
		t.Fatalf("versions = %d (%v), want 2", len(versions), err)
	}

	results, err := s.SearchPages(ctx, "hello")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("search should find the page")
	}
	if results[0].RelevanceScore <= 0 {
		t.Fatalf("score = %d", results[0].RelevanceScore)
	}
	if !strings.Contains(results[0].MatchedContent, "Hello world") {
		t.Fatalf("snippet = %q, want it to contain the updated content", results[0].MatchedContent)
	}
}

func testNotFound(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	if _, err := s.GetPageBySlug(ctx, "nope"); store.KindOf(err) != store.KindNotFound {
		t.Fatalf("get by slug err = %v", err)
	}

	ghost, err := s.CreatePage(ctx, Editor, store.CreatePageData{Title: "Ghost", Content: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.DeletePage(ctx, Editor, ghost.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.UpdatePage(ctx, Editor, ghost.ID, store.UpdatePageData{}); store.KindOf(err) != store.KindNotFound {
		t.Fatalf("update missing err = %v", err)
	}
}
