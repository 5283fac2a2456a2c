package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// versionSnapshotSchema guards version records before they are persisted.
// Append paths are best-effort, so a snapshot that fails validation is
// logged and dropped rather than corrupting history.
const versionSnapshotSchema = `{
	"type": "object",
	"required": ["pageId", "version", "title", "content", "authorId"],
	"properties": {
		"pageId": {"type": "string", "minLength": 1},
		"version": {"type": "integer", "minimum": 1},
		"title": {"type": "string", "minLength": 1},
		"content": {"type": "string"},
		"authorId": {"type": "string"},
		"authorName": {"type": "string"},
		"changeDescription": {"type": "string"}
	}
}`

var (
	snapshotSchemaOnce sync.Once
	snapshotSchema     *jsonschema.Schema
	snapshotSchemaErr  error
)

func compiledSnapshotSchema() (*jsonschema.Schema, error) {
	snapshotSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("version_snapshot.json", strings.NewReader(versionSnapshotSchema)); err != nil {
			snapshotSchemaErr = err
			return
		}
		snapshotSchema, snapshotSchemaErr = compiler.Compile("version_snapshot.json")
	})
	return snapshotSchema, snapshotSchemaErr
}

// ValidateVersionSnapshot checks a version record against the snapshot
// schema before it is appended to history.
func ValidateVersionSnapshot(v *PageVersion) error {
	if v == nil {
		return fmt.Errorf("version snapshot: nil record")
	}

	schema, err := compiledSnapshotSchema()
	if err != nil {
		return fmt.Errorf("version snapshot schema: %w", err)
	}

	payload := map[string]any{
		"pageId":            v.PageID.String(),
		"version":           v.Version,
		"title":             v.Title,
		"content":           v.Content,
		"authorId":          v.AuthorID,
		"authorName":        v.AuthorName,
		"changeDescription": v.ChangeDescription,
	}

	// jsonschema validates decoded JSON values, so round-trip through
	// encoding/json to normalize numeric types.
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("version snapshot marshal: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("version snapshot unmarshal: %w", err)
	}

	if err := schema.Validate(decoded); err != nil {
		return fmt.Errorf("version snapshot invalid: %w", err)
	}
	return nil
}
