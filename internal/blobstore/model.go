package blobstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-wiki/internal/store"
)

// indexModel is the searchable half of the split representation. The
// page body and open metadata live in the blob the row points at.
type indexModel struct {
	bun.BaseModel `bun:"table:wiki_page_index,alias:wpi"`

	ID               uuid.UUID  `bun:",pk,type:uuid"`
	Slug             string     `bun:"slug,notnull,unique"`
	Title            string     `bun:"title,notnull"`
	Excerpt          string     `bun:"excerpt,notnull"`
	BlobKey          string     `bun:"blob_key,notnull"`
	CategoryID       *uuid.UUID `bun:"category_id,type:uuid,nullzero"`
	AuthorID         string     `bun:"author_id,notnull"`
	AuthorName       string     `bun:"author_name,notnull"`
	LastEditedBy     string     `bun:"last_edited_by,notnull"`
	LastEditedByName string     `bun:"last_edited_by_name,notnull"`
	Version          int        `bun:"version,notnull"`
	IsPublished      bool       `bun:"is_published,notnull"`
	IsLocked         bool       `bun:"is_locked,notnull"`
	Tags             string     `bun:"tags,notnull"`
	CreatedAt        time.Time  `bun:"created_at,notnull"`
	UpdatedAt        time.Time  `bun:"updated_at,notnull"`
}

type versionModel struct {
	bun.BaseModel `bun:"table:wiki_page_versions,alias:wpv"`

	ID                uuid.UUID `bun:",pk,type:uuid"`
	PageID            uuid.UUID `bun:"page_id,notnull,type:uuid"`
	Version           int       `bun:"version,notnull"`
	Title             string    `bun:"title,notnull"`
	Content           string    `bun:"content,notnull"`
	AuthorID          string    `bun:"author_id,notnull"`
	AuthorName        string    `bun:"author_name,notnull"`
	ChangeDescription string    `bun:"change_description,notnull"`
	CreatedAt         time.Time `bun:"created_at,notnull"`
}

func indexFromPage(p *store.Page, blobKey string) *indexModel {
	return &indexModel{
		ID:               p.ID,
		Slug:             p.Slug,
		Title:            p.Title,
		Excerpt:          p.Excerpt,
		BlobKey:          blobKey,
		CategoryID:       p.CategoryID,
		AuthorID:         p.AuthorID,
		AuthorName:       p.AuthorName,
		LastEditedBy:     p.LastEditedBy,
		LastEditedByName: p.LastEditedByName,
		Version:          p.Version,
		IsPublished:      p.IsPublished,
		IsLocked:         p.IsLocked,
		Tags:             strings.Join(p.Tags, ","),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// toStub builds a page from the index row alone. Content, attachments,
// and metadata require the blob; the stub carries everything needed for
// listings and search ranking.
func (m *indexModel) toStub() *store.Page {
	return &store.Page{
		ID:               m.ID,
		Slug:             m.Slug,
		Title:            m.Title,
		Excerpt:          m.Excerpt,
		CategoryID:       m.CategoryID,
		AuthorID:         m.AuthorID,
		AuthorName:       m.AuthorName,
		LastEditedBy:     m.LastEditedBy,
		LastEditedByName: m.LastEditedByName,
		Version:          m.Version,
		IsPublished:      m.IsPublished,
		IsLocked:         m.IsLocked,
		Tags:             splitCSV(m.Tags),
		Attachments:      []string{},
		Metadata:         map[string]string{},
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func versionToModel(v *store.PageVersion) *versionModel {
	return &versionModel{
		ID:                v.ID,
		PageID:            v.PageID,
		Version:           v.Version,
		Title:             v.Title,
		Content:           v.Content,
		AuthorID:          v.AuthorID,
		AuthorName:        v.AuthorName,
		ChangeDescription: v.ChangeDescription,
		CreatedAt:         v.CreatedAt,
	}
}

func (m *versionModel) toVersion() *store.PageVersion {
	return &store.PageVersion{
		ID:                m.ID,
		PageID:            m.PageID,
		Version:           m.Version,
		Title:             m.Title,
		Content:           m.Content,
		AuthorID:          m.AuthorID,
		AuthorName:        m.AuthorName,
		ChangeDescription: m.ChangeDescription,
		CreatedAt:         m.CreatedAt,
	}
}

// blobKeyFor derives the deterministic object key for a page revision.
// Keying by (id, version) makes a retried upload overwrite the same
// object instead of orphaning a new one.
func blobKeyFor(pageID uuid.UUID, version int) string {
	return fmt.Sprintf("pages/%s/v%d.md", pageID, version)
}

// encodePageBlob renders the full document stored in the object store.
func encodePageBlob(p *store.Page) []byte {
	return store.EncodePageDoc(p)
}

// decodePageBlob merges the blob document over an index stub. The index
// row stays authoritative for identity and listing columns; the blob
// supplies the body, attachments, and open metadata.
func decodePageBlob(stub *store.Page, data []byte) (*store.Page, error) {
	doc, err := store.DecodePageDoc(data)
	if err != nil {
		return nil, err
	}

	page := store.ClonePage(stub)
	page.Content = doc.Content
	page.Attachments = doc.Attachments
	page.Metadata = doc.Metadata
	return page, nil
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
