package tablestore

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-wiki/internal/store"
)

// pageModel is the single-row page representation: tags and attachments
// as CSV, metadata as a JSON text column, content inline.
type pageModel struct {
	bun.BaseModel `bun:"table:wiki_pages,alias:wp"`

	ID               uuid.UUID  `bun:",pk,type:uuid"`
	Slug             string     `bun:"slug,notnull,unique"`
	Title            string     `bun:"title,notnull"`
	Content          string     `bun:"content,notnull"`
	Excerpt          string     `bun:"excerpt,notnull"`
	CategoryID       *uuid.UUID `bun:"category_id,type:uuid,nullzero"`
	AuthorID         string     `bun:"author_id,notnull"`
	AuthorName       string     `bun:"author_name,notnull"`
	LastEditedBy     string     `bun:"last_edited_by,notnull"`
	LastEditedByName string     `bun:"last_edited_by_name,notnull"`
	Version          int        `bun:"version,notnull"`
	IsPublished      bool       `bun:"is_published,notnull"`
	IsLocked         bool       `bun:"is_locked,notnull"`
	Tags             string     `bun:"tags,notnull"`
	Attachments      string     `bun:"attachments,notnull"`
	Metadata         string     `bun:"metadata,notnull"`
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

type categoryModel struct {
	bun.BaseModel `bun:"table:wiki_categories,alias:wc"`

	ID          uuid.UUID `bun:",pk,type:uuid"`
	Slug        string    `bun:"slug,notnull,unique"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description,notnull"`
	Color       string    `bun:"color,notnull"`
	Icon        string    `bun:"icon,notnull"`
	Order       int       `bun:"sort_order,notnull"`
	IsActive    bool      `bun:"is_active,notnull"`
	Moderators  string    `bun:"moderators,notnull"`
}

func pageToModel(p *store.Page) *pageModel {
	return &pageModel{
		ID:               p.ID,
		Slug:             p.Slug,
		Title:            p.Title,
		Content:          p.Content,
		Excerpt:          p.Excerpt,
		CategoryID:       p.CategoryID,
		AuthorID:         p.AuthorID,
		AuthorName:       p.AuthorName,
		LastEditedBy:     p.LastEditedBy,
		LastEditedByName: p.LastEditedByName,
		Version:          p.Version,
		IsPublished:      p.IsPublished,
		IsLocked:         p.IsLocked,
		Tags:             joinCSV(p.Tags),
		Attachments:      joinCSV(p.Attachments),
		Metadata:         encodeMetadata(p.Metadata),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (m *pageModel) toPage() *store.Page {
	return &store.Page{
		ID:               m.ID,
		Slug:             m.Slug,
		Title:            m.Title,
		Content:          m.Content,
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
		Attachments:      splitCSV(m.Attachments),
		Metadata:         decodeMetadata(m.Metadata),
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

func categoryToModel(c *store.Category) *categoryModel {
	return &categoryModel{
		ID:          c.ID,
		Slug:        c.Slug,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		Order:       c.Order,
		IsActive:    c.IsActive,
		Moderators:  joinCSV(c.Moderators),
	}
}

func (m *categoryModel) toCategory() *store.Category {
	return &store.Category{
		ID:          m.ID,
		Slug:        m.Slug,
		Name:        m.Name,
		Description: m.Description,
		Color:       m.Color,
		Icon:        m.Icon,
		Order:       m.Order,
		IsActive:    m.IsActive,
		Moderators:  splitCSV(m.Moderators),
	}
}

func joinCSV(values []string) string {
	return strings.Join(values, ",")
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

func encodeMetadata(meta map[string]string) string {
	if len(meta) == 0 {
		return "{}"
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func decodeMetadata(raw string) map[string]string {
	meta := map[string]string{}
	if strings.TrimSpace(raw) == "" {
		return meta
	}
	_ = json.Unmarshal([]byte(raw), &meta)
	return meta
}
