package revisionstore

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-wiki/internal/store"
)

// indexFile is the side document that lets listings avoid scanning the
// whole repository. One entry per live page, keyed by slug.
const indexFile = "index.json"

// categoriesFile holds the category set for this backend.
const categoriesFile = "categories.json"

type indexEntry struct {
	ID               uuid.UUID  `json:"id"`
	Slug             string     `json:"slug"`
	Title            string     `json:"title"`
	Excerpt          string     `json:"excerpt"`
	CategoryID       *uuid.UUID `json:"categoryId,omitempty"`
	AuthorID         string     `json:"authorId"`
	AuthorName       string     `json:"authorName"`
	LastEditedBy     string     `json:"lastEditedBy"`
	LastEditedByName string     `json:"lastEditedByName"`
	Version          int        `json:"version"`
	IsPublished      bool       `json:"isPublished"`
	IsLocked         bool       `json:"isLocked"`
	Tags             []string   `json:"tags"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type pageIndex struct {
	Pages map[string]indexEntry `json:"pages"`
}

func newPageIndex() pageIndex {
	return pageIndex{Pages: map[string]indexEntry{}}
}

func decodeIndex(data []byte) (pageIndex, error) {
	idx := newPageIndex()
	if len(data) == 0 {
		return idx, nil
	}
	if err := json.Unmarshal(data, &idx); err != nil {
		return idx, store.WrapFormat(err, "decode page index")
	}
	if idx.Pages == nil {
		idx.Pages = map[string]indexEntry{}
	}
	return idx, nil
}

func (idx pageIndex) encode() []byte {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return []byte(`{"pages":{}}`)
	}
	return append(data, '\n')
}

func (idx pageIndex) bySlug(slug string) (indexEntry, bool) {
	entry, ok := idx.Pages[slug]
	return entry, ok
}

func (idx pageIndex) byID(id uuid.UUID) (indexEntry, bool) {
	for _, entry := range idx.Pages {
		if entry.ID == id {
			return entry, true
		}
	}
	return indexEntry{}, false
}

func entryFromPage(p *store.Page) indexEntry {
	return indexEntry{
		ID:               p.ID,
		Slug:             p.Slug,
		Title:            p.Title,
		Excerpt:          p.Excerpt,
		CategoryID:       p.CategoryID,
		AuthorID:         p.AuthorID,
		AuthorName:       p.AuthorName,
		LastEditedBy:     p.LastEditedBy,
		LastEditedByName: p.LastEditedByName,
		Version:          p.Version,
		IsPublished:      p.IsPublished,
		IsLocked:         p.IsLocked,
		Tags:             p.Tags,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// toStub builds a page from the index entry alone; content requires the
// committed file.
func (e indexEntry) toStub() *store.Page {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return &store.Page{
		ID:               e.ID,
		Slug:             e.Slug,
		Title:            e.Title,
		Excerpt:          e.Excerpt,
		CategoryID:       e.CategoryID,
		AuthorID:         e.AuthorID,
		AuthorName:       e.AuthorName,
		LastEditedBy:     e.LastEditedBy,
		LastEditedByName: e.LastEditedByName,
		Version:          e.Version,
		IsPublished:      e.IsPublished,
		IsLocked:         e.IsLocked,
		Tags:             tags,
		Attachments:      []string{},
		Metadata:         map[string]string{},
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func decodeCategories(data []byte) ([]*store.Category, error) {
	if len(data) == 0 {
		return []*store.Category{}, nil
	}
	var categories []*store.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, store.WrapFormat(err, "decode categories")
	}
	return categories, nil
}

func encodeCategories(categories []*store.Category) []byte {
	data, err := json.MarshalIndent(categories, "", "  ")
	if err != nil {
		return []byte("[]")
	}
	return append(data, '\n')
}
