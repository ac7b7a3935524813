package item

import (
	"strings"
)

// Reserved keys of nested-attribute entries. Everything else is treated as
// data for the embed fragment or link target.
const (
	nestedKeyID       = "id"
	nestedKeyDestroy  = "_destroy"
	nestedKeyPosition = "position"
)

// Nested is one parsed nested-attribute entry. The destroy marker is decoded
// once here rather than re-checked ad hoc downstream.
type Nested struct {
	ID       string
	Destroy  bool
	Position *int
	Attrs    map[string]any
}

// ParseNestedList normalizes a client-supplied nested-attributes value into
// entries. Shape noise (non-map entries, wrong container types) is dropped
// rather than rejected; the resulting payload still has to pass JSON Schema
// validation, which is the real guard.
func ParseNestedList(value any) []Nested {
	switch v := value.(type) {
	case nil:
		return nil
	case []Nested:
		return v
	case Nested:
		return []Nested{v}
	case map[string]any:
		n, ok := parseNestedEntry(v)
		if !ok {
			return nil
		}
		return []Nested{n}
	case []map[string]any:
		out := make([]Nested, 0, len(v))
		for _, entry := range v {
			if n, ok := parseNestedEntry(entry); ok {
				out = append(out, n)
			}
		}
		return out
	case []any:
		out := make([]Nested, 0, len(v))
		for _, raw := range v {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if n, ok := parseNestedEntry(entry); ok {
				out = append(out, n)
			}
		}
		return out
	default:
		return nil
	}
}

func parseNestedEntry(entry map[string]any) (Nested, bool) {
	if entry == nil {
		return Nested{}, false
	}
	n := Nested{Attrs: map[string]any{}}
	for k, v := range entry {
		switch k {
		case nestedKeyID:
			if id, ok := v.(string); ok {
				n.ID = strings.TrimSpace(id)
			}
		case nestedKeyDestroy:
			n.Destroy = destroyFlag(v)
		case nestedKeyPosition:
			if p, ok := toInt(v); ok {
				n.Position = &p
			}
		default:
			n.Attrs[k] = v
		}
	}
	return n, true
}

// destroyFlag recognizes the canonical truthy markers; anything else means
// "not destroying".
func destroyFlag(v any) bool {
	switch marker := v.(type) {
	case bool:
		return marker
	case string:
		return marker == "1" || strings.EqualFold(marker, "true")
	default:
		return false
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
