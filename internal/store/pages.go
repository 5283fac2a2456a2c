package store

import (
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-wiki/internal/search"
	"github.com/goliatone/go-wiki/internal/slug"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// ValidateCreate checks the CreatePage payload before any storage work.
func ValidateCreate(data CreatePageData) error {
	errs := validation.Errors{}
	if isBlank(data.Title) {
		errs["title"] = validation.NewError("wiki.page.title_required", "title is required")
	}
	if isBlank(data.Content) {
		errs["content"] = validation.NewError("wiki.page.content_required", "content is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateUpdate checks an UpdatePage patch. Set fields must not blank
// out title or content.
func ValidateUpdate(patch UpdatePageData) error {
	errs := validation.Errors{}
	if patch.Title != nil && isBlank(*patch.Title) {
		errs["title"] = validation.NewError("wiki.page.title_required", "title cannot be empty")
	}
	if patch.Content != nil && isBlank(*patch.Content) {
		errs["content"] = validation.NewError("wiki.page.content_required", "content cannot be empty")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// NewPage assembles the initial page record for a create call: validated
// input, derived slug and excerpt, version 1, publish defaulting to true.
// The slug is fixed for the lifetime of the page; later title edits do
// not re-derive it.
func NewPage(actor interfaces.Identity, data CreatePageData, id uuid.UUID, now time.Time) (*Page, error) {
	if err := ValidateCreate(data); err != nil {
		return nil, err
	}

	pageSlug, err := slug.Make(data.Title)
	if err != nil {
		return nil, err
	}

	published := true
	if data.IsPublished != nil {
		published = *data.IsPublished
	}

	return &Page{
		ID:               id,
		Slug:             pageSlug,
		Title:            data.Title,
		Content:          data.Content,
		Excerpt:          Excerpt(data.Content),
		CategoryID:       data.CategoryID,
		AuthorID:         actor.ID,
		AuthorName:       actor.DisplayName,
		LastEditedBy:     actor.ID,
		LastEditedByName: actor.DisplayName,
		Version:          1,
		IsPublished:      published,
		IsLocked:         false,
		Tags:             cloneStrings(data.Tags),
		Attachments:      []string{},
		Metadata:         map[string]string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// ApplyPatch merges an update into the page in place. The version
// increments by exactly one when title or content changed; other field
// edits leave it untouched. Returns whether a version snapshot is due.
func ApplyPatch(p *Page, actor interfaces.Identity, patch UpdatePageData, now time.Time) (bool, error) {
	if err := ValidateUpdate(patch); err != nil {
		return false, err
	}

	contentChanged := false
	if patch.Title != nil && *patch.Title != p.Title {
		p.Title = *patch.Title
		contentChanged = true
	}
	if patch.Content != nil && *patch.Content != p.Content {
		p.Content = *patch.Content
		p.Excerpt = Excerpt(p.Content)
		contentChanged = true
	}
	if patch.CategoryID != nil {
		p.CategoryID = patch.CategoryID
	}
	if patch.Tags != nil {
		p.Tags = cloneStrings(patch.Tags)
	}
	if patch.IsPublished != nil {
		p.IsPublished = *patch.IsPublished
	}
	if patch.IsLocked != nil {
		p.IsLocked = *patch.IsLocked
	}

	if contentChanged {
		p.Version++
	}
	p.LastEditedBy = actor.ID
	p.LastEditedByName = actor.DisplayName
	p.UpdatedAt = now

	return contentChanged, nil
}

// NewVersion snapshots the page's current (post-write) state as a
// write-once version record.
func NewVersion(p *Page, changeDescription string, id uuid.UUID, now time.Time) *PageVersion {
	author := p.LastEditedBy
	authorName := p.LastEditedByName
	if author == "" {
		author = p.AuthorID
		authorName = p.AuthorName
	}
	return &PageVersion{
		ID:                id,
		PageID:            p.ID,
		Version:           p.Version,
		Title:             p.Title,
		Content:           p.Content,
		AuthorID:          author,
		AuthorName:        authorName,
		ChangeDescription: changeDescription,
		CreatedAt:         now,
	}
}

// Excerpt derives the bounded preview stored alongside the page.
func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= ExcerptLength {
		return content
	}
	return string(runes[:ExcerptLength])
}

// RankPages scores the supplied pages against query and returns matches
// ordered by descending relevance. Snippets come from the page content.
// Ties break by slug ascending so results are stable across backends.
func RankPages(pages []*Page, query string) []SearchResult {
	results := make([]SearchResult, 0)
	for _, p := range pages {
		score := search.Score(p.Title, p.Tags, p.Excerpt, query)
		if score <= 0 {
			continue
		}
		results = append(results, SearchResult{
			Page:           p,
			RelevanceScore: score,
			MatchedContent: search.Snippet(p.Content, query),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].RelevanceScore == results[j].RelevanceScore {
			return results[i].Page.Slug < results[j].Page.Slug
		}
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	return results
}

// TopContributors tallies version-record authors and returns the heaviest
// editors first, bounded by TopContributorCount.
func TopContributors(versions []*PageVersion) []*Contributor {
	byAuthor := map[string]*Contributor{}
	for _, v := range versions {
		if v.AuthorID == "" {
			continue
		}
		c, ok := byAuthor[v.AuthorID]
		if !ok {
			c = &Contributor{AuthorID: v.AuthorID, AuthorName: v.AuthorName}
			byAuthor[v.AuthorID] = c
		}
		c.Count++
	}

	out := make([]*Contributor, 0, len(byAuthor))
	for _, c := range byAuthor {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].AuthorID < out[j].AuthorID
		}
		return out[i].Count > out[j].Count
	})
	if len(out) > TopContributorCount {
		out = out[:TopContributorCount]
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
