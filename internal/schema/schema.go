package schema

// Cardinality says whether an embed or link field holds a single value or an
// ordered collection.
type Cardinality string

const (
	One  Cardinality = "one"
	Many Cardinality = "many"
)

// FieldDef describes a plain payload field. Constraints are merged verbatim
// into the generated JSON Schema property (minLength, format, enum, ...).
type FieldDef struct {
	Type        string         `json:"type"`
	Constraints map[string]any `json:"constraints,omitempty"`
}

// EmbedDef describes an inline sub-document field.
type EmbedDef struct {
	Cardinality Cardinality `json:"cardinality"`
}

// LinkDef describes a named relation to other items. Target is the type slug
// used when link targets are created from nested attributes.
type LinkDef struct {
	Cardinality Cardinality `json:"cardinality"`
	Target      string      `json:"target,omitempty"`
}

// Source is the resolved definition of a record type. Both code-defined and
// database-stored schemas present this interface; the item engine never cares
// which one it got.
type Source interface {
	Slug() string
	Fields() map[string]FieldDef
	Embeds() map[string]EmbedDef
	Links() map[string]LinkDef
	JSONSchema() map[string]any
}
