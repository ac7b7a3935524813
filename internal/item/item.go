package item

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bytecrate/itemgraph/internal/domain"
	"github.com/bytecrate/itemgraph/internal/platform/dbctx"
	"github.com/bytecrate/itemgraph/internal/schema"
)

// Item is the in-memory aggregate around an items row: the decoded payload,
// the schema resolved for its type slug, per-instance embed caches and the
// staged link changes waiting for the next save. One Item value must only be
// mutated by a single goroutine at a time.
type Item struct {
	row       *domain.Item
	payload   map[string]any
	engine    *Engine
	src       schema.Source
	srcErr    error
	acc       *accessors
	embedRead map[string]any
	staged    *stagedLinks
	errs      ValidationErrors
	persisted bool
}

func (it *Item) ID() uuid.UUID { return it.row.ID }

func (it *Item) TenantID() uuid.UUID { return it.row.TenantID }

func (it *Item) TypeSlug() string { return it.row.TypeSlug }

func (it *Item) Row() *domain.Item { return it.row }

func (it *Item) Persisted() bool { return it.persisted }

// Errors returns the validation errors recorded by the last save attempt.
func (it *Item) Errors() ValidationErrors { return it.errs }

// Schema returns the source resolved for this item's type slug, or the
// resolution error when the slug is unknown.
func (it *Item) Schema() (schema.Source, error) {
	return it.src, it.srcErr
}

// Payload exposes the live decoded payload. Mutating it directly bypasses
// dispatch; prefer Set.
func (it *Item) Payload() map[string]any { return it.payload }

// Get routes an attribute read through the schema-built accessors: field
// names read the payload, embed names return wrapped fragments (nil when a
// single-fragment embed is absent), "<link>_id" and "<link>_ids" read the
// link table, "build_<embed>" constructs a fresh unattached embed.
func (it *Item) Get(ctx context.Context, name string) (any, error) {
	if it.acc == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoAttribute, name)
	}
	g, ok := it.acc.getters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoAttribute, name)
	}
	var tx *gorm.DB
	if it.engine != nil {
		tx = it.engine.db
	}
	return g(dbctx.Context{Ctx: ctx, Tx: tx}, it)
}

// Set routes an attribute write: field names write the payload, embed names
// replace fragments wholesale, "<name>_attributes" reconciles nested embeds
// or stages nested links, "<link>_id"/"<link>_ids" stage link replacements.
// Link writes only touch storage on save.
func (it *Item) Set(name string, value any) error {
	if it.acc == nil {
		return fmt.Errorf("%w: %s", ErrNoAttribute, name)
	}
	s, ok := it.acc.setters[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoAttribute, name)
	}
	return s(it, value)
}

// SetAttributes applies a bulk attribute map. Keys the schema does not
// declare fall through to plain payload writes; the payload is semi-
// structured by design and JSON Schema validation remains the guard.
func (it *Item) SetAttributes(attrs map[string]any) error {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		err := it.Set(k, attrs[k])
		if errors.Is(err, ErrNoAttribute) {
			it.payload[k] = attrs[k]
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
