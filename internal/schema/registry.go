package schema

import (
	"fmt"
	"sync"
)

// Definition is a code-defined record type. Definitions are registered at
// startup and immutable afterwards, so the registry is safe for concurrent
// reads without locking on the hot path.
type Definition struct {
	TypeSlug  string
	FieldDefs map[string]FieldDef
	EmbedDefs map[string]EmbedDef
	LinkDefs  map[string]LinkDef
	Required  []string

	docOnce sync.Once
	doc     map[string]any
}

func (d *Definition) Slug() string { return d.TypeSlug }

func (d *Definition) Fields() map[string]FieldDef { return d.FieldDefs }

func (d *Definition) Embeds() map[string]EmbedDef { return d.EmbedDefs }

func (d *Definition) Links() map[string]LinkDef { return d.LinkDefs }

func (d *Definition) JSONSchema() map[string]any {
	d.docOnce.Do(func() {
		d.doc = BuildJSONSchema(d.FieldDefs, d.EmbedDefs, d.Required)
	})
	return d.doc
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*Definition{}
)

// Register adds a code-defined type. Registering the same slug twice is a
// programmer error.
func Register(def *Definition) {
	if def == nil || def.TypeSlug == "" {
		panic("schema: Register requires a definition with a slug")
	}
	if err := ValidateSlug(def.TypeSlug); err != nil {
		panic(fmt.Sprintf("schema: Register %q: %v", def.TypeSlug, err))
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[def.TypeSlug]; ok {
		panic(fmt.Sprintf("schema: type %q already registered", def.TypeSlug))
	}
	registry[def.TypeSlug] = def
}

// Lookup returns the code-defined type for slug, if any.
func Lookup(slug string) (*Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, ok := registry[slug]
	return def, ok
}
