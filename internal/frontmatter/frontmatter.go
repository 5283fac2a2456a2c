// Package frontmatter encodes structured page metadata as a plain-text
// header block followed by the document body. The format is deliberately
// narrow: a fixed-order key/value header between two sentinel lines, a
// blank separator line, then the raw content.
package frontmatter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel delimits the header block on its own line, before and after.
const Sentinel = "---"

// ErrMissingSentinel is returned by Decode when either delimiter line is
// absent from the input.
var ErrMissingSentinel = errors.New("frontmatter: missing sentinel line")

// Field is one header entry. Fields are emitted in the order supplied so
// encoded documents are byte-stable for identical input.
type Field struct {
	Key   string
	Value any
}

// Encode renders the header fields and content as a single textual blob.
// Strings are quoted, booleans and integers are bare literals, slices are
// emitted as inline JSON arrays, and nil values as the literal null.
func Encode(fields []Field, content string) string {
	var b strings.Builder
	b.WriteString(Sentinel)
	b.WriteByte('\n')
	for _, f := range fields {
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(renderValue(f.Value))
		b.WriteByte('\n')
	}
	b.WriteString(Sentinel)
	b.WriteString("\n\n")
	b.WriteString(content)
	return b.String()
}

// Decode splits a blob produced by Encode back into metadata and content.
// Header values are coerced by sniffing: quoted text becomes a string,
// true/false a bool, bare digits an int, [...] a JSON array; null entries
// are omitted from the returned map. The content keeps interior blank
// lines but is trimmed of leading and trailing ones.
func Decode(text string) (map[string]any, string, error) {
	lines := strings.Split(text, "\n")

	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == Sentinel {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, "", fmt.Errorf("%w: no opening delimiter", ErrMissingSentinel)
	}

	end := -1
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == Sentinel {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, "", fmt.Errorf("%w: no closing delimiter", ErrMissingSentinel)
	}

	meta := make(map[string]any)
	for _, line := range lines[start+1 : end] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, raw, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		value, ok := coerceValue(strings.TrimSpace(raw))
		if !ok {
			continue
		}
		meta[key] = value
	}

	content := strings.Join(lines[end+1:], "\n")
	content = strings.Trim(content, "\n")
	return meta, content, nil
}

func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case []string:
		encoded, err := json.Marshal(val)
		if err != nil {
			return "[]"
		}
		return string(encoded)
	case []any:
		encoded, err := json.Marshal(val)
		if err != nil {
			return "[]"
		}
		return string(encoded)
	default:
		return strconv.Quote(fmt.Sprintf("%v", val))
	}
}

// coerceValue sniffs the textual representation back into a typed value.
// The second return is false for null entries, which decode as absent.
func coerceValue(raw string) (any, bool) {
	switch {
	case raw == "null" || raw == "":
		return nil, false
	case raw == "true":
		return true, true
	case raw == "false":
		return false, true
	case strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) && len(raw) >= 2:
		if unquoted, err := strconv.Unquote(raw); err == nil {
			return unquoted, true
		}
		return strings.Trim(raw, `"`), true
	case strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]"):
		var arr []any
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			return arr, true
		}
		return raw, true
	case isBareInteger(raw):
		n, err := strconv.Atoi(raw)
		if err != nil {
			return raw, true
		}
		return n, true
	default:
		return raw, true
	}
}

func isBareInteger(raw string) bool {
	s := raw
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// StringSlice converts a decoded JSON array value back into []string,
// skipping non-string members.
func StringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
