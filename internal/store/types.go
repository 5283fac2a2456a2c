package store

import (
	"time"

	"github.com/google/uuid"
)

// Page is the canonical wiki document shared by every backend. Author
// fields carry identity-provider IDs, which are opaque strings rather
// than UUIDs.
type Page struct {
	ID               uuid.UUID         `json:"id"`
	Slug             string            `json:"slug"`
	Title            string            `json:"title"`
	Content          string            `json:"content"`
	Excerpt          string            `json:"excerpt"`
	CategoryID       *uuid.UUID        `json:"categoryId"`
	AuthorID         string            `json:"authorId"`
	AuthorName       string            `json:"authorName"`
	LastEditedBy     string            `json:"lastEditedBy"`
	LastEditedByName string            `json:"lastEditedByName"`
	Version          int               `json:"version"`
	IsPublished      bool              `json:"isPublished"`
	IsLocked         bool              `json:"isLocked"`
	Tags             []string          `json:"tags"`
	Attachments      []string          `json:"attachments"`
	Metadata         map[string]string `json:"metadata"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// PageVersion is the write-once snapshot appended for every
// content-affecting write. The stored title/content reflect the
// post-update state of the page, not a diff.
type PageVersion struct {
	ID                uuid.UUID `json:"id"`
	PageID            uuid.UUID `json:"pageId"`
	Version           int       `json:"version"`
	Title             string    `json:"title"`
	Content           string    `json:"content"`
	AuthorID          string    `json:"authorId"`
	AuthorName        string    `json:"authorName"`
	ChangeDescription string    `json:"changeDescription"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Category groups pages for navigation and listing.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	Order       int       `json:"order"`
	IsActive    bool      `json:"isActive"`
	Moderators  []string  `json:"moderators"`
}

// SearchResult pairs a page with its relevance score and a bounded
// snippet around the first match.
type SearchResult struct {
	Page           *Page  `json:"page"`
	RelevanceScore int    `json:"relevanceScore"`
	MatchedContent string `json:"matchedContent"`
}

// CreatePageData is the payload accepted by CreatePage. IsPublished
// defaults to true when nil.
type CreatePageData struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	IsPublished *bool      `json:"isPublished,omitempty"`
}

// UpdatePageData is the partial patch accepted by UpdatePage. Nil fields
// leave the current value untouched.
type UpdatePageData struct {
	Title             *string    `json:"title,omitempty"`
	Content           *string    `json:"content,omitempty"`
	CategoryID        *uuid.UUID `json:"categoryId,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	IsPublished       *bool      `json:"isPublished,omitempty"`
	IsLocked          *bool      `json:"isLocked,omitempty"`
	ChangeDescription string     `json:"changeDescription,omitempty"`
}

// Filters narrows ListPages results. Page and Limit are normalized by
// NormalizeFilters before any backend consumes them.
type Filters struct {
	Page        int        `json:"page,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	AuthorID    string     `json:"authorId,omitempty"`
	IsPublished *bool      `json:"isPublished,omitempty"`
	Search      string     `json:"search,omitempty"`
	SortBy      string     `json:"sortBy,omitempty"`
	SortOrder   string     `json:"sortOrder,omitempty"`
}

// Pagination describes the window a PageList covers.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// PageList is the result shape of ListPages.
type PageList struct {
	Pages      []*Page    `json:"pages"`
	Pagination Pagination `json:"pagination"`
}

// Contributor is one entry of Stats.TopContributors.
type Contributor struct {
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName"`
	Count      int    `json:"count"`
}

// Stats aggregates store-wide counters for dashboards.
type Stats struct {
	TotalPages      int            `json:"totalPages"`
	TotalCategories int            `json:"totalCategories"`
	RecentPages     []*Page        `json:"recentPages"`
	TopContributors []*Contributor `json:"topContributors"`
}
