package schema

import (
	"encoding/json"
	"fmt"

	"github.com/bytecrate/itemgraph/internal/domain"
)

// Stored adapts a tenant-defined item_schemas row to the Source interface.
type Stored struct {
	slug   string
	fields map[string]FieldDef
	embeds map[string]EmbedDef
	links  map[string]LinkDef
	doc    map[string]any
}

// NewStored decodes a schema row. Rows are format-validated before they are
// written, so a decode failure here means the row was corrupted out-of-band.
func NewStored(row *domain.ItemSchema) (*Stored, error) {
	if row == nil {
		return nil, fmt.Errorf("stored schema: nil row")
	}
	s := &Stored{
		slug:   row.Slug,
		fields: map[string]FieldDef{},
		embeds: map[string]EmbedDef{},
		links:  map[string]LinkDef{},
	}
	if err := json.Unmarshal(row.Schema, &s.doc); err != nil {
		return nil, fmt.Errorf("stored schema %q: decode document: %w", row.Slug, err)
	}
	if s.doc == nil {
		return nil, fmt.Errorf("stored schema %q: document is not an object", row.Slug)
	}
	if _, ok := s.doc["$schema"]; !ok {
		s.doc["$schema"] = Draft2020URL
	}
	if len(row.FieldDefs) > 0 {
		if err := json.Unmarshal(row.FieldDefs, &s.fields); err != nil {
			return nil, fmt.Errorf("stored schema %q: decode field defs: %w", row.Slug, err)
		}
	}
	if len(row.EmbedDefs) > 0 {
		if err := json.Unmarshal(row.EmbedDefs, &s.embeds); err != nil {
			return nil, fmt.Errorf("stored schema %q: decode embed defs: %w", row.Slug, err)
		}
	}
	if len(row.LinkDefs) > 0 {
		if err := json.Unmarshal(row.LinkDefs, &s.links); err != nil {
			return nil, fmt.Errorf("stored schema %q: decode link defs: %w", row.Slug, err)
		}
	}
	return s, nil
}

func (s *Stored) Slug() string { return s.slug }

func (s *Stored) Fields() map[string]FieldDef { return s.fields }

func (s *Stored) Embeds() map[string]EmbedDef { return s.embeds }

func (s *Stored) Links() map[string]LinkDef { return s.links }

func (s *Stored) JSONSchema() map[string]any { return s.doc }
