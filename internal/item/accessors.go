package item

import (
	"strings"

	"github.com/bytecrate/itemgraph/internal/platform/dbctx"
	"github.com/bytecrate/itemgraph/internal/schema"
)

type getterFunc func(dbc dbctx.Context, it *Item) (any, error)
type setterFunc func(it *Item, value any) error

// accessors is the typed replacement for method_missing-style dispatch: one
// getter/setter table built per schema resolution, so the schema stays the
// single source of truth for which attributes exist at runtime.
type accessors struct {
	getters map[string]getterFunc
	setters map[string]setterFunc
}

func buildAccessors(src schema.Source) *accessors {
	a := &accessors{
		getters: map[string]getterFunc{},
		setters: map[string]setterFunc{},
	}

	for name := range src.Fields() {
		name := name
		a.getters[name] = func(_ dbctx.Context, it *Item) (any, error) {
			return it.payload[name], nil
		}
		a.setters[name] = func(it *Item, value any) error {
			it.payload[name] = value
			return nil
		}
	}

	for name, def := range src.Embeds() {
		name, def := name, def
		a.getters[name] = func(_ dbctx.Context, it *Item) (any, error) {
			return it.readEmbed(name, def.Cardinality)
		}
		a.setters[name] = func(it *Item, value any) error {
			return it.writeEmbed(name, def.Cardinality, value)
		}
		a.setters[name+"_attributes"] = func(it *Item, value any) error {
			return it.applyNestedEmbeds(name, def.Cardinality, ParseNestedList(value))
		}
		a.getters["build_"+name] = func(_ dbctx.Context, it *Item) (any, error) {
			return NewEmbed(nil), nil
		}
	}

	for name, def := range src.Links() {
		name, def := name, def
		if def.Cardinality == schema.One {
			a.getters[name+"_id"] = func(dbc dbctx.Context, it *Item) (any, error) {
				return it.linkIDRead(dbc, name)
			}
			a.setters[name+"_id"] = func(it *Item, value any) error {
				return it.stageLinkID(name, value)
			}
		} else {
			key := singularize(name) + "_ids"
			a.getters[key] = func(dbc dbctx.Context, it *Item) (any, error) {
				return it.linkIDsRead(dbc, name)
			}
			a.setters[key] = func(it *Item, value any) error {
				return it.stageLinkIDs(name, value)
			}
		}
		a.setters[name+"_attributes"] = func(it *Item, value any) error {
			return it.stageNestedLinks(name, def, ParseNestedList(value))
		}
	}

	return a
}

// singularize covers the naming conventions link relations actually use
// (notes to note_ids, companies to company_ids); it is not a general
// inflector.
func singularize(name string) string {
	switch {
	case strings.HasSuffix(name, "ies"):
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(name, "ses"):
		return name[:len(name)-2]
	case strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss"):
		return name[:len(name)-1]
	default:
		return name
	}
}
