package store

import (
	"sort"
	"strings"
)

// Canonical sort columns. Unknown sortBy values fall back to creation
// time instead of erroring.
const (
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
	SortByTitle     = "title"
	SortByVersion   = "version"
)

// NormalizeFilters applies the cross-backend defaults: page floors at 1,
// limit defaults and clamps to MaxPageLimit, sort fields collapse to their
// canonical forms.
func NormalizeFilters(f Filters) Filters {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	f.SortBy = SortColumn(f.SortBy)
	f.SortOrder = sortOrder(f.SortOrder)
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// SortColumn maps a caller-supplied sortBy value to its canonical column.
func SortColumn(sortBy string) string {
	switch strings.TrimSpace(sortBy) {
	case "title":
		return SortByTitle
	case "version":
		return SortByVersion
	case "updatedAt", "updated_at":
		return SortByUpdatedAt
	case "createdAt", "created_at":
		return SortByCreatedAt
	default:
		return SortByCreatedAt
	}
}

func sortOrder(order string) string {
	if strings.EqualFold(strings.TrimSpace(order), "asc") {
		return "asc"
	}
	return "desc"
}

// Matches reports whether the page passes the non-paging filters. Search
// is case-insensitive substring containment over title and content.
func Matches(p *Page, f Filters) bool {
	if f.CategoryID != nil {
		if p.CategoryID == nil || *p.CategoryID != *f.CategoryID {
			return false
		}
	}
	if f.AuthorID != "" && p.AuthorID != f.AuthorID {
		return false
	}
	if f.IsPublished != nil && p.IsPublished != *f.IsPublished {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Content), needle) {
			return false
		}
	}
	return true
}

// SortPages orders the slice in place by the normalized sort column and
// direction. Slug ascending breaks every tie so output is deterministic
// regardless of backend iteration order.
func SortPages(pages []*Page, sortBy, order string) {
	asc := order == "asc"
	sort.SliceStable(pages, func(i, j int) bool {
		a, b := pages[i], pages[j]
		var less, eq bool
		switch sortBy {
		case SortByTitle:
			less, eq = a.Title < b.Title, a.Title == b.Title
		case SortByVersion:
			less, eq = a.Version < b.Version, a.Version == b.Version
		case SortByUpdatedAt:
			less, eq = a.UpdatedAt.Before(b.UpdatedAt), a.UpdatedAt.Equal(b.UpdatedAt)
		default:
			less, eq = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		}
		if eq {
			return a.Slug < b.Slug
		}
		if asc {
			return less
		}
		return !less
	})
}

// PaginateSlice applies the normalized filters to an already assembled
// page set: filter, sort, then slice out the requested window.
func PaginateSlice(pages []*Page, f Filters) *PageList {
	f = NormalizeFilters(f)

	matched := make([]*Page, 0, len(pages))
	for _, p := range pages {
		if Matches(p, f) {
			matched = append(matched, p)
		}
	}
	SortPages(matched, f.SortBy, f.SortOrder)

	total := len(matched)
	start := (f.Page - 1) * f.Limit
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}

	return &PageList{
		Pages:      matched[start:end],
		Pagination: BuildPagination(total, f.Page, f.Limit),
	}
}

// BuildPagination computes the window descriptor for a listing.
func BuildPagination(total, page, limit int) Pagination {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	totalPages := (total + limit - 1) / limit
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1 && total > 0,
	}
}

// EmptyPageList is the degraded result for listing failures: zero totals,
// no pages, current window preserved.
func EmptyPageList(f Filters) *PageList {
	f = NormalizeFilters(f)
	return &PageList{
		Pages:      []*Page{},
		Pagination: BuildPagination(0, f.Page, f.Limit),
	}
}
