package schema

// Draft2020URL is defaulted into any schema document that does not name its
// own dialect.
const Draft2020URL = "https://json-schema.org/draft/2020-12/schema"

// BuildJSONSchema materializes a draft 2020-12 document from field and embed
// definitions. Embed fragments stay free-form apart from their string id so
// reconciliation can manage identity without fighting the schema.
func BuildJSONSchema(fields map[string]FieldDef, embeds map[string]EmbedDef, required []string) map[string]any {
	properties := map[string]any{}

	for name, f := range fields {
		prop := map[string]any{}
		if f.Type != "" {
			prop["type"] = f.Type
		}
		for k, v := range f.Constraints {
			prop[k] = v
		}
		properties[name] = prop
	}

	for name, e := range embeds {
		fragment := map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id": map[string]any{"type": "string"},
			},
			"additionalProperties": true,
		}
		switch e.Cardinality {
		case Many:
			properties[name] = map[string]any{
				"type":  "array",
				"items": fragment,
			}
		default:
			properties[name] = map[string]any{
				"type":       []any{"object", "null"},
				"properties": fragment["properties"],
			}
		}
	}

	doc := map[string]any{
		"$schema":              Draft2020URL,
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": true,
	}
	if len(required) > 0 {
		req := make([]any, 0, len(required))
		for _, r := range required {
			req = append(req, r)
		}
		doc["required"] = req
	}
	return doc
}
