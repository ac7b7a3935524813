package item

import (
	"github.com/google/uuid"

	"github.com/bytecrate/itemgraph/internal/schema"
)

// assignEmbedIDs idempotently ensures every embed fragment carries an "id".
// Runs before validation on every save; a second call with no intervening
// mutation changes nothing.
func (it *Item) assignEmbedIDs() {
	if it.src == nil {
		return
	}
	for name, def := range it.src.Embeds() {
		switch def.Cardinality {
		case schema.Many:
			for _, frag := range fragmentList(it.payload[name]) {
				ensureFragmentID(frag)
			}
		default:
			if frag, ok := it.payload[name].(map[string]any); ok {
				ensureFragmentID(frag)
			}
		}
	}
}

// readEmbed wraps stored fragments as Embed values. An absent cardinality-one
// fragment reads as untyped nil. The result is cached for the life of this
// in-memory item and invalidated by any embed write.
func (it *Item) readEmbed(name string, c schema.Cardinality) (any, error) {
	if cached, ok := it.embedRead[name]; ok {
		return cached, nil
	}
	var out any
	if c == schema.Many {
		frags := fragmentList(it.payload[name])
		embeds := make([]Embed, 0, len(frags))
		for _, frag := range frags {
			embeds = append(embeds, wrapEmbed(frag))
		}
		out = embeds
	} else if frag, ok := it.payload[name].(map[string]any); ok {
		e := wrapEmbed(frag)
		out = &e
	}
	if it.embedRead == nil {
		it.embedRead = map[string]any{}
	}
	it.embedRead[name] = out
	return out, nil
}

// writeEmbed replaces the stored fragments wholesale. Raw maps, Embed values
// and slices of either are accepted.
func (it *Item) writeEmbed(name string, c schema.Cardinality, value any) error {
	if c == schema.Many {
		frags := normalizeFragments(value)
		stored := make([]any, 0, len(frags))
		for _, frag := range frags {
			stored = append(stored, frag)
		}
		it.payload[name] = stored
	} else {
		frag := normalizeFragment(value)
		if frag == nil {
			it.payload[name] = nil
		} else {
			it.payload[name] = frag
		}
	}
	delete(it.embedRead, name)
	return nil
}

// applyNestedEmbeds reconciles a nested-attribute batch against the stored
// fragments: destroy by id, shallow-merge by id preserving unspecified keys,
// create with a provided id, or create with a fresh id. A destroy entry with
// no id is ignored.
func (it *Item) applyNestedEmbeds(name string, c schema.Cardinality, entries []Nested) error {
	if c == schema.Many {
		it.applyNestedEmbedsMany(name, entries)
	} else {
		it.applyNestedEmbedOne(name, entries)
	}
	delete(it.embedRead, name)
	return nil
}

func (it *Item) applyNestedEmbedsMany(name string, entries []Nested) {
	existing := fragmentList(it.payload[name])
	byID := make(map[string]map[string]any, len(existing))
	for _, frag := range existing {
		if id, ok := frag["id"].(string); ok && id != "" {
			byID[id] = frag
		}
	}

	result := make([]any, 0, len(existing)+len(entries))
	removed := map[string]bool{}
	appended := []map[string]any{}

	for _, n := range entries {
		switch {
		case n.Destroy:
			if n.ID != "" {
				removed[n.ID] = true
			}
		case n.ID != "":
			if frag, ok := byID[n.ID]; ok {
				for k, v := range n.Attrs {
					frag[k] = v
				}
			} else {
				frag := cloneAttrs(n.Attrs)
				frag["id"] = n.ID
				appended = append(appended, frag)
			}
		default:
			frag := cloneAttrs(n.Attrs)
			frag["id"] = uuid.NewString()
			appended = append(appended, frag)
		}
	}

	for _, frag := range existing {
		id, _ := frag["id"].(string)
		if removed[id] {
			continue
		}
		result = append(result, frag)
	}
	for _, frag := range appended {
		result = append(result, frag)
	}
	it.payload[name] = result
}

func (it *Item) applyNestedEmbedOne(name string, entries []Nested) {
	existing, _ := it.payload[name].(map[string]any)
	existingID := ""
	if existing != nil {
		existingID, _ = existing["id"].(string)
	}

	for _, n := range entries {
		switch {
		case n.Destroy:
			if n.ID != "" && n.ID == existingID {
				it.payload[name] = nil
				existing, existingID = nil, ""
			}
		case n.ID != "" && n.ID == existingID:
			for k, v := range n.Attrs {
				existing[k] = v
			}
		case n.ID != "":
			frag := cloneAttrs(n.Attrs)
			frag["id"] = n.ID
			it.payload[name] = frag
			existing, existingID = frag, n.ID
		default:
			frag := cloneAttrs(n.Attrs)
			frag["id"] = uuid.NewString()
			it.payload[name] = frag
			existing = frag
			existingID, _ = frag["id"].(string)
		}
	}
}

func ensureFragmentID(frag map[string]any) {
	if id, ok := frag["id"].(string); !ok || id == "" {
		frag["id"] = uuid.NewString()
	}
}

// fragmentList tolerates both decoded-JSON ([]any) and in-memory
// ([]map[string]any) shapes; non-map elements are dropped.
func fragmentList(value any) []map[string]any {
	switch v := value.(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, raw := range v {
			if frag, ok := raw.(map[string]any); ok {
				out = append(out, frag)
			}
		}
		return out
	default:
		return nil
	}
}

func normalizeFragments(value any) []map[string]any {
	switch v := value.(type) {
	case nil:
		return nil
	case []Embed:
		out := make([]map[string]any, 0, len(v))
		for _, e := range v {
			out = append(out, e.Fragment())
		}
		return out
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, raw := range v {
			if frag := normalizeFragment(raw); frag != nil {
				out = append(out, frag)
			}
		}
		return out
	case []map[string]any:
		return v
	default:
		if frag := normalizeFragment(value); frag != nil {
			return []map[string]any{frag}
		}
		return nil
	}
}

func normalizeFragment(value any) map[string]any {
	switch v := value.(type) {
	case nil:
		return nil
	case Embed:
		return v.Fragment()
	case *Embed:
		if v == nil {
			return nil
		}
		return v.Fragment()
	case map[string]any:
		return v
	default:
		return nil
	}
}

func cloneAttrs(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs)+1)
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
