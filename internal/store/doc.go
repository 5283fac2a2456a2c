package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-wiki/internal/frontmatter"
)

// EncodePageDoc renders the full page as a frontmatter document: a
// fixed-order header block followed by the raw content. Both the blob
// and revision backends store pages in this shape.
func EncodePageDoc(p *Page) []byte {
	fields := []frontmatter.Field{
		{Key: "title", Value: p.Title},
		{Key: "slug", Value: p.Slug},
		{Key: "version", Value: p.Version},
		{Key: "categoryId", Value: categoryValue(p.CategoryID)},
		{Key: "authorId", Value: p.AuthorID},
		{Key: "authorName", Value: p.AuthorName},
		{Key: "lastEditedBy", Value: p.LastEditedBy},
		{Key: "lastEditedByName", Value: p.LastEditedByName},
		{Key: "isPublished", Value: p.IsPublished},
		{Key: "isLocked", Value: p.IsLocked},
		{Key: "tags", Value: p.Tags},
		{Key: "attachments", Value: p.Attachments},
		{Key: "metadata", Value: encodeMetadataJSON(p.Metadata)},
		{Key: "createdAt", Value: p.CreatedAt.UTC().Format(time.RFC3339Nano)},
		{Key: "updatedAt", Value: p.UpdatedAt.UTC().Format(time.RFC3339Nano)},
	}
	return []byte(frontmatter.Encode(fields, p.Content))
}

// DecodePageDoc parses a document produced by EncodePageDoc back into a
// page. Malformed headers surface as a format error.
func DecodePageDoc(data []byte) (*Page, error) {
	meta, content, err := frontmatter.Decode(string(data))
	if err != nil {
		return nil, WrapFormat(err, "decode page document")
	}

	page := &Page{
		Content:     content,
		Tags:        []string{},
		Attachments: []string{},
		Metadata:    map[string]string{},
	}

	if v, ok := meta["title"].(string); ok {
		page.Title = v
	}
	if v, ok := meta["slug"].(string); ok {
		page.Slug = v
	}
	if v, ok := meta["version"].(int); ok {
		page.Version = v
	}
	if v, ok := meta["categoryId"].(string); ok {
		if id, err := uuid.Parse(v); err == nil {
			page.CategoryID = &id
		}
	}
	if v, ok := meta["authorId"].(string); ok {
		page.AuthorID = v
	}
	if v, ok := meta["authorName"].(string); ok {
		page.AuthorName = v
	}
	if v, ok := meta["lastEditedBy"].(string); ok {
		page.LastEditedBy = v
	}
	if v, ok := meta["lastEditedByName"].(string); ok {
		page.LastEditedByName = v
	}
	if v, ok := meta["isPublished"].(bool); ok {
		page.IsPublished = v
	}
	if v, ok := meta["isLocked"].(bool); ok {
		page.IsLocked = v
	}
	if v, ok := meta["tags"]; ok {
		if tags := frontmatter.StringSlice(v); tags != nil {
			page.Tags = tags
		}
	}
	if v, ok := meta["attachments"]; ok {
		if attachments := frontmatter.StringSlice(v); attachments != nil {
			page.Attachments = attachments
		}
	}
	if raw, ok := meta["metadata"].(string); ok && raw != "" {
		parsed := map[string]string{}
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			page.Metadata = parsed
		}
	}
	if v, ok := meta["createdAt"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			page.CreatedAt = t
		}
	}
	if v, ok := meta["updatedAt"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			page.UpdatedAt = t
		}
	}

	page.Excerpt = Excerpt(page.Content)
	return page, nil
}

func categoryValue(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func encodeMetadataJSON(meta map[string]string) string {
	if len(meta) == 0 {
		return "{}"
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	return string(data)
}
