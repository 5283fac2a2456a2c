package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeFilters(t *testing.T) {
	tests := []struct {
		name string
		in   Filters
		want Filters
	}{
		{
			name: "defaults",
			in:   Filters{},
			want: Filters{Page: 1, Limit: DefaultPageLimit, SortBy: SortByCreatedAt, SortOrder: "desc"},
		},
		{
			name: "page floors at one",
			in:   Filters{Page: -3, Limit: 10},
			want: Filters{Page: 1, Limit: 10, SortBy: SortByCreatedAt, SortOrder: "desc"},
		},
		{
			name: "limit clamps to max",
			in:   Filters{Page: 2, Limit: 500},
			want: Filters{Page: 2, Limit: MaxPageLimit, SortBy: SortByCreatedAt, SortOrder: "desc"},
		},
		{
			name: "camelCase sort accepted",
			in:   Filters{Page: 1, Limit: 5, SortBy: "updatedAt", SortOrder: "ASC"},
			want: Filters{Page: 1, Limit: 5, SortBy: SortByUpdatedAt, SortOrder: "asc"},
		},
		{
			name: "unknown sort falls back",
			in:   Filters{Page: 1, Limit: 5, SortBy: "popularity"},
			want: Filters{Page: 1, Limit: 5, SortBy: SortByCreatedAt, SortOrder: "desc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeFilters(tt.in)
			if got.Page != tt.want.Page || got.Limit != tt.want.Limit ||
				got.SortBy != tt.want.SortBy || got.SortOrder != tt.want.SortOrder {
				t.Fatalf("NormalizeFilters(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSortColumn(t *testing.T) {
	cases := map[string]string{
		"title":      SortByTitle,
		"version":    SortByVersion,
		"createdAt":  SortByCreatedAt,
		"created_at": SortByCreatedAt,
		"updatedAt":  SortByUpdatedAt,
		"updated_at": SortByUpdatedAt,
		"":           SortByCreatedAt,
		"DROP TABLE": SortByCreatedAt,
	}
	for in, want := range cases {
		if got := SortColumn(in); got != want {
			t.Errorf("SortColumn(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMatches(t *testing.T) {
	catID := uuid.New()
	otherCat := uuid.New()
	published := true
	unpublished := false

	page := &Page{
		Title:       "Deployment Runbook",
		Content:     "How to ship safely",
		CategoryID:  &catID,
		AuthorID:    "user-1",
		IsPublished: true,
	}

	tests := []struct {
		name string
		f    Filters
		want bool
	}{
		{"no filters", Filters{}, true},
		{"category match", Filters{CategoryID: &catID}, true},
		{"category miss", Filters{CategoryID: &otherCat}, false},
		{"author match", Filters{AuthorID: "user-1"}, true},
		{"author miss", Filters{AuthorID: "user-2"}, false},
		{"published match", Filters{IsPublished: &published}, true},
		{"published miss", Filters{IsPublished: &unpublished}, false},
		{"search title", Filters{Search: "runbook"}, true},
		{"search content", Filters{Search: "SHIP"}, true},
		{"search miss", Filters{Search: "terraform"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(page, tt.f); got != tt.want {
				t.Fatalf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortPagesTieBreak(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pages := []*Page{
		{Slug: "charlie", CreatedAt: at},
		{Slug: "alpha", CreatedAt: at},
		{Slug: "bravo", CreatedAt: at},
	}

	SortPages(pages, SortByCreatedAt, "desc")

	want := []string{"alpha", "bravo", "charlie"}
	for i, slug := range want {
		if pages[i].Slug != slug {
			t.Fatalf("pages[%d].Slug = %q, want %q", i, pages[i].Slug, slug)
		}
	}
}

func TestPaginateSliceWindow(t *testing.T) {
	pages := make([]*Page, 0, 25)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		pages = append(pages, &Page{
			Slug:      string(rune('a'+i%26)) + "-page",
			Title:     "Page",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	list := PaginateSlice(pages, Filters{Page: 2, Limit: 10})
	if len(list.Pages) != 10 {
		t.Fatalf("window size = %d, want 10", len(list.Pages))
	}
	p := list.Pagination
	if p.CurrentPage != 2 || p.TotalPages != 3 || p.TotalCount != 25 || !p.HasNext || !p.HasPrev {
		t.Fatalf("pagination = %+v", p)
	}

	past := PaginateSlice(pages, Filters{Page: 9, Limit: 10})
	if len(past.Pages) != 0 {
		t.Fatalf("out-of-range window size = %d, want 0", len(past.Pages))
	}
	if past.Pagination.TotalCount != 25 {
		t.Fatalf("out-of-range total = %d", past.Pagination.TotalCount)
	}
}

func TestBuildPagination(t *testing.T) {
	tests := []struct {
		total, page, limit int
		totalPages         int
		hasNext, hasPrev   bool
	}{
		{25, 1, 10, 3, true, false},
		{25, 2, 10, 3, true, true},
		{25, 3, 10, 3, false, true},
		{0, 1, 10, 0, false, false},
		{10, 1, 10, 1, false, false},
	}
	for _, tt := range tests {
		got := BuildPagination(tt.total, tt.page, tt.limit)
		if got.TotalPages != tt.totalPages || got.HasNext != tt.hasNext || got.HasPrev != tt.hasPrev {
			t.Errorf("BuildPagination(%d, %d, %d) = %+v", tt.total, tt.page, tt.limit, got)
		}
	}
}

func TestEmptyPageList(t *testing.T) {
	list := EmptyPageList(Filters{Page: 4, Limit: 10})
	if list.Pages == nil || len(list.Pages) != 0 {
		t.Fatalf("Pages = %v, want empty non-nil slice", list.Pages)
	}
	if list.Pagination.CurrentPage != 4 || list.Pagination.TotalCount != 0 {
		t.Fatalf("pagination = %+v", list.Pagination)
	}
}
