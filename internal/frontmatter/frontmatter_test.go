package frontmatter_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-wiki/internal/frontmatter"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	fields := []frontmatter.Field{
		{Key: "title", Value: "Getting Started"},
		{Key: "slug", Value: "getting-started"},
		{Key: "version", Value: 3},
		{Key: "is_published", Value: true},
		{Key: "is_locked", Value: false},
		{Key: "tags", Value: []string{"intro", "guide"}},
		{Key: "category_id", Value: nil},
	}
	content := "# Getting Started\n\nHello world.\n\nSecond paragraph."

	blob := frontmatter.Encode(fields, content)
	meta, body, err := frontmatter.Decode(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got := meta["title"]; got != "Getting Started" {
		t.Fatalf("title = %#v", got)
	}
	if got := meta["slug"]; got != "getting-started" {
		t.Fatalf("slug = %#v", got)
	}
	if got := meta["version"]; got != 3 {
		t.Fatalf("version = %#v, want int 3", got)
	}
	if got := meta["is_published"]; got != true {
		t.Fatalf("is_published = %#v", got)
	}
	if got := meta["is_locked"]; got != false {
		t.Fatalf("is_locked = %#v", got)
	}
	tags := frontmatter.StringSlice(meta["tags"])
	if len(tags) != 2 || tags[0] != "intro" || tags[1] != "guide" {
		t.Fatalf("tags = %#v", tags)
	}
	if _, present := meta["category_id"]; present {
		t.Fatal("null field should decode as absent")
	}
	if body != content {
		t.Fatalf("body = %q, want %q", body, content)
	}
}

func TestEncodeShape(t *testing.T) {
	blob := frontmatter.Encode([]frontmatter.Field{
		{Key: "title", Value: "A"},
		{Key: "version", Value: 1},
	}, "body")

	want := "---\ntitle: \"A\"\nversion: 1\n---\n\nbody"
	if blob != want {
		t.Fatalf("encoded blob = %q, want %q", blob, want)
	}
}

func TestEncodeStable(t *testing.T) {
	fields := []frontmatter.Field{
		{Key: "title", Value: "Stable"},
		{Key: "tags", Value: []string{"a", "b"}},
	}
	first := frontmatter.Encode(fields, "content")
	second := frontmatter.Encode(fields, "content")
	if first != second {
		t.Fatal("encode is not byte-stable for identical input")
	}
}

func TestDecodeMissingSentinels(t *testing.T) {
	cases := []string{
		"no delimiters at all",
		"---\ntitle: \"only one delimiter\"\ncontent follows",
	}
	for _, input := range cases {
		if _, _, err := frontmatter.Decode(input); !errors.Is(err, frontmatter.ErrMissingSentinel) {
			t.Fatalf("Decode(%q) err = %v, want ErrMissingSentinel", input, err)
		}
	}
}

func TestDecodeTrimsBlankLines(t *testing.T) {
	input := "---\ntitle: \"T\"\n---\n\n\n\nactual content\n\n"
	_, body, err := frontmatter.Decode(input)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body != "actual content" {
		t.Fatalf("body = %q", body)
	}
}

func TestDecodeSplitsOnFirstColon(t *testing.T) {
	input := "---\ntitle: \"Docs: a field guide\"\n---\n\nbody"
	meta, _, err := frontmatter.Decode(input)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := meta["title"]; got != "Docs: a field guide" {
		t.Fatalf("title = %#v", got)
	}
}

func TestDecodeCoercion(t *testing.T) {
	input := strings.Join([]string{
		"---",
		`quoted: "text"`,
		"negative: -12",
		"flag: true",
		"bare: plain words",
		`list: ["x","y"]`,
		"nothing: null",
		"---",
		"",
		"body",
	}, "\n")

	meta, _, err := frontmatter.Decode(input)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meta["quoted"] != "text" {
		t.Fatalf("quoted = %#v", meta["quoted"])
	}
	if meta["negative"] != -12 {
		t.Fatalf("negative = %#v", meta["negative"])
	}
	if meta["flag"] != true {
		t.Fatalf("flag = %#v", meta["flag"])
	}
	if meta["bare"] != "plain words" {
		t.Fatalf("bare = %#v", meta["bare"])
	}
	if got := frontmatter.StringSlice(meta["list"]); len(got) != 2 || got[0] != "x" {
		t.Fatalf("list = %#v", got)
	}
	if _, ok := meta["nothing"]; ok {
		t.Fatal("null entry should be absent")
	}
}
