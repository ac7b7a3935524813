package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bytecrate/itemgraph/internal/domain"
	"github.com/bytecrate/itemgraph/internal/platform/logger"
)

// ErrNotFound means a slug has neither a code-defined nor a stored schema.
var ErrNotFound = errors.New("schema not found")

// StoredLookup is the slice of the schema repo the resolver needs. A nil
// lookup disables stored resolution entirely (code-defined types only).
type StoredLookup interface {
	GetByTenantAndSlug(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, slug string) (*domain.ItemSchema, error)
}

type Resolver struct {
	store StoredLookup
	log   *logger.Logger
}

func NewResolver(store StoredLookup, baseLog *logger.Logger) *Resolver {
	var resolverLog *logger.Logger
	if baseLog != nil {
		resolverLog = baseLog.With("component", "SchemaResolver")
	}
	return &Resolver{store: store, log: resolverLog}
}

// Resolve returns the schema source for slug. Code-defined types win
// unconditionally over stored rows of the same slug. The result is stable for
// a given (tenant, slug) within one request, so callers cache it per item
// instance; it is never cached globally because stored rows are mutable.
func (r *Resolver) Resolve(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, slug string) (Source, error) {
	if def, ok := Lookup(slug); ok {
		return def, nil
	}
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	row, err := r.store.GetByTenantAndSlug(ctx, tx, tenantID, slug)
	if err != nil {
		return nil, fmt.Errorf("resolve schema %q: %w", slug, err)
	}
	if row == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	src, err := NewStored(row)
	if err != nil {
		if r.log != nil {
			r.log.Error("stored schema failed to decode", "slug", slug, "tenant_id", tenantID, "error", err)
		}
		return nil, err
	}
	return src, nil
}
