package item

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bytecrate/itemgraph/internal/domain"
	"github.com/bytecrate/itemgraph/internal/platform/dbctx"
	"github.com/bytecrate/itemgraph/internal/platform/logger"
	"github.com/bytecrate/itemgraph/internal/schema"
)

// Engine builds, validates and persists items. One save spans payload write,
// schema validation, row commit and staged-link flush inside a single
// transaction. The engine itself is stateless and safe to share; individual
// Item values are not.
type Engine struct {
	db       *gorm.DB
	resolver *schema.Resolver
	log      *logger.Logger
	runner   TxRunner
}

func NewEngine(db *gorm.DB, resolver *schema.Resolver, baseLog *logger.Logger) *Engine {
	var engineLog *logger.Logger
	if baseLog != nil {
		engineLog = baseLog.With("component", "ItemEngine")
	}
	return &Engine{
		db:       db,
		resolver: resolver,
		log:      engineLog,
		runner:   NewGormTxRunner(db),
	}
}

// New builds an unpersisted item of the given type in the given tenant. The
// schema is resolved eagerly; an unknown slug is tolerated here and surfaces
// as a type_slug validation error on save.
func (e *Engine) New(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, slug string) *Item {
	return e.newItem(dbctx.Context{Ctx: ctx, Tx: e.txOr(tx)}, tenantID, slug)
}

// Wrap builds the in-memory aggregate around an existing row.
func (e *Engine) Wrap(ctx context.Context, tx *gorm.DB, row *domain.Item) *Item {
	return e.wrapItem(dbctx.Context{Ctx: ctx, Tx: e.txOr(tx)}, row)
}

// Save validates and persists the item, then flushes staged link changes.
// With a nil tx the engine opens its own transaction; with a caller-supplied
// tx the whole save joins it. A validation failure returns ErrValidation and
// leaves the messages on item.Errors().
func (e *Engine) Save(ctx context.Context, tx *gorm.DB, it *Item) error {
	if tx != nil {
		return e.saveInTx(dbctx.Context{Ctx: ctx, Tx: tx}, it)
	}
	return e.runner.InTx(ctx, func(dbc dbctx.Context) error {
		return e.saveInTx(dbc, it)
	})
}

func (e *Engine) newItem(dbc dbctx.Context, tenantID uuid.UUID, slug string) *Item {
	row := &domain.Item{
		ID:       uuid.New(),
		TenantID: tenantID,
		TypeSlug: slug,
		Payload:  datatypes.JSON([]byte("{}")),
	}
	it := &Item{
		row:     row,
		payload: map[string]any{},
		engine:  e,
	}
	e.resolveInto(dbc, it)
	return it
}

func (e *Engine) wrapItem(dbc dbctx.Context, row *domain.Item) *Item {
	payload := map[string]any{}
	if len(row.Payload) > 0 {
		if err := json.Unmarshal(row.Payload, &payload); err != nil {
			e.warn("item payload failed to decode, starting empty",
				"item_id", row.ID, "error", err)
			payload = map[string]any{}
		}
	}
	it := &Item{
		row:       row,
		payload:   payload,
		engine:    e,
		persisted: true,
	}
	e.resolveInto(dbc, it)
	return it
}

func (e *Engine) resolveInto(dbc dbctx.Context, it *Item) {
	if e.resolver == nil {
		it.srcErr = fmt.Errorf("%w: %s", schema.ErrNotFound, it.TypeSlug())
		return
	}
	src, err := e.resolver.Resolve(dbc.Ctx, dbc.Tx, it.TenantID(), it.TypeSlug())
	if err != nil {
		it.srcErr = err
		return
	}
	it.src = src
	it.acc = buildAccessors(src)
}

func (e *Engine) saveInTx(dbc dbctx.Context, it *Item) error {
	if ok := e.validate(dbc, it); !ok {
		return fmt.Errorf("%w: %s", ErrValidation, it.errs.Error())
	}

	raw, err := json.Marshal(it.payload)
	if err != nil {
		return fmt.Errorf("item.encode_payload: %w", err)
	}
	it.row.Payload = datatypes.JSON(raw)

	tx := dbc.Tx.WithContext(dbc.Ctx)
	if it.persisted {
		if err := tx.Model(&domain.Item{}).
			Where("id = ?", it.ID()).
			Updates(map[string]any{"payload": it.row.Payload, "type_slug": it.TypeSlug()}).Error; err != nil {
			return MapError("item.update", err)
		}
	} else {
		if err := tx.Create(it.row).Error; err != nil {
			return MapError("item.create", err)
		}
		it.persisted = true
	}

	return e.applyStagedLinks(dbc, it)
}

func (e *Engine) txOr(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

func (e *Engine) warn(msg string, keysAndValues ...interface{}) {
	if e.log != nil {
		e.log.Warn(msg, keysAndValues...)
	}
}
