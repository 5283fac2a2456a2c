package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	wiki "github.com/goliatone/go-wiki"
)

// Demo walkthrough: boot a wiki module, create and edit a few pages, then
// show search, listings, and version history. Configuration comes from the
// environment (WIKI_* variables) with an in-process SQLite default.
func main() {
	ctx := context.Background()

	cfg, err := wiki.ConfigFromEnv()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if _, err := wiki.Configure(ctx, cfg); err != nil {
		log.Fatalf("configure wiki: %v", err)
	}
	defer wiki.Reset()

	editor := wiki.Identity{
		ID:          "demo-editor",
		DisplayName: "Demo Editor",
		Roles:       []string{cfg.Security.EditorRole},
	}

	pages, err := wiki.Active()
	if err != nil {
		log.Fatalf("active store: %v", err)
	}

	welcome, err := pages.CreatePage(ctx, editor, wiki.CreatePageData{
		Title:   "Welcome",
		Content: "This wiki stores every page with full version history.",
		Tags:    []string{"intro"},
	})
	if err != nil {
		log.Fatalf("create welcome: %v", err)
	}

	if _, err := pages.CreatePage(ctx, editor, wiki.CreatePageData{
		Title:   "Editing Guide",
		Content: "Use updatePage to change a page. Title or content edits bump the version.",
		Tags:    []string{"intro", "howto"},
	}); err != nil {
		log.Fatalf("create guide: %v", err)
	}

	body := "This wiki stores every page with full version history. Start with the editing guide."
	if _, err := pages.UpdatePage(ctx, editor, welcome.ID, wiki.UpdatePageData{
		Content:           &body,
		ChangeDescription: "link the editing guide",
	}); err != nil {
		log.Fatalf("update welcome: %v", err)
	}

	results, err := pages.SearchPages(ctx, "editing")
	if err != nil {
		log.Fatalf("search: %v", err)
	}
	fmt.Printf("search %q matched %d page(s)\n", "editing", len(results))
	for _, hit := range results {
		fmt.Printf("  %-20s score=%d snippet=%q\n", hit.Page.Slug, hit.RelevanceScore, hit.MatchedContent)
	}

	versions, err := pages.GetPageVersions(ctx, welcome.ID)
	if err != nil {
		log.Fatalf("versions: %v", err)
	}
	fmt.Printf("welcome has %d version(s)\n", len(versions))

	stats, err := pages.GetStats(ctx)
	if err != nil {
		log.Fatalf("stats: %v", err)
	}
	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	if err := out.Encode(stats); err != nil {
		log.Fatalf("encode stats: %v", err)
	}
}
