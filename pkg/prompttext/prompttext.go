// Package prompttext turns upstream prompt/caption payloads into plain text.
// Generators are asked for a string but sometimes answer with an object or a
// list; the structure carries no meaning beyond its text.
package prompttext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Normalize returns a JSON string unchanged, an object as sorted
// "key: value" lines, an array as one line per element, and null or an
// empty payload as "". Nested values are flattened the same way.
func Normalize(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("prompt payload: %w", err)
	}
	return strings.TrimSpace(flatten(v)), nil
}

func flatten(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case []interface{}:
		lines := make([]string, 0, len(t))
		for _, e := range t {
			if s := flatten(e); s != "" {
				lines = append(lines, s)
			}
		}
		return strings.Join(lines, "\n")
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			s := flatten(t[k])
			if s == "" {
				continue
			}
			if strings.Contains(s, "\n") {
				lines = append(lines, k+":\n"+indent(s))
			} else {
				lines = append(lines, k+": "+s)
			}
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprint(t)
	}
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
