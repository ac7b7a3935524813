package item

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bytecrate/itemgraph/internal/domain"
	"github.com/bytecrate/itemgraph/internal/platform/dbctx"
	"github.com/bytecrate/itemgraph/internal/schema"
)

// Staged link state. Link writes are buffered per item instance and applied
// after the item's own row write, inside the same transaction: link rows need
// the source's primary key, and nested target creation must not be able to
// leave orphaned edges behind.
type stagedIDs struct {
	ids []uuid.UUID
}

type stagedNestedSet struct {
	entries []Nested
	def     schema.LinkDef
}

type stagedLinks struct {
	ids    map[string]*stagedIDs
	nested map[string]*stagedNestedSet
}

func (s *stagedLinks) empty() bool {
	return s == nil || (len(s.ids) == 0 && len(s.nested) == 0)
}

func (it *Item) ensureStaged() *stagedLinks {
	if it.staged == nil {
		it.staged = &stagedLinks{
			ids:    map[string]*stagedIDs{},
			nested: map[string]*stagedNestedSet{},
		}
	}
	return it.staged
}

// stageLinkID buffers the single target of a cardinality-one relation.
// nil (or an unparseable id) stages an unlink.
func (it *Item) stageLinkID(relation string, value any) error {
	st := &stagedIDs{}
	if id, ok := parseID(value); ok {
		st.ids = append(st.ids, id)
	}
	it.ensureStaged().ids[relation] = st
	return nil
}

// stageLinkIDs buffers the full replacement target set of a cardinality-many
// relation, preserving input order. Unparseable entries are dropped.
func (it *Item) stageLinkIDs(relation string, value any) error {
	st := &stagedIDs{}
	for _, raw := range idCandidates(value) {
		if id, ok := parseID(raw); ok {
			st.ids = append(st.ids, id)
		}
	}
	it.ensureStaged().ids[relation] = st
	return nil
}

// stageNestedLinks buffers nested-attribute payloads for reconciliation on
// flush.
func (it *Item) stageNestedLinks(relation string, def schema.LinkDef, entries []Nested) error {
	if def.Cardinality == schema.One && len(entries) > 1 {
		entries = entries[:1]
	}
	it.ensureStaged().nested[relation] = &stagedNestedSet{entries: entries, def: def}
	return nil
}

// linkIDsRead returns the ordered target ids of a relation. Staged ids win
// over stored rows so a caller reads its own unflushed writes.
func (it *Item) linkIDsRead(dbc dbctx.Context, relation string) ([]uuid.UUID, error) {
	if it.staged != nil {
		if st, ok := it.staged.ids[relation]; ok {
			out := make([]uuid.UUID, len(st.ids))
			copy(out, st.ids)
			return out, nil
		}
	}
	if dbc.Tx == nil || !it.persisted {
		return []uuid.UUID{}, nil
	}
	var rows []domain.ItemLink
	if err := dbc.Tx.WithContext(dbc.Ctx).
		Where("source_id = ? AND relation = ?", it.ID(), relation).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, MapError("item.link_ids", err)
	}
	out := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.TargetID)
	}
	return out, nil
}

func (it *Item) linkIDRead(dbc dbctx.Context, relation string) (*uuid.UUID, error) {
	ids, err := it.linkIDsRead(dbc, relation)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	id := ids[0]
	return &id, nil
}

// applyStagedLinks flushes all buffered link changes for it, then clears the
// staged state. Called exactly once per save, after the row write, inside the
// same transaction.
func (e *Engine) applyStagedLinks(dbc dbctx.Context, it *Item) error {
	if it.staged.empty() {
		it.staged = nil
		return nil
	}
	for _, relation := range sortedKeys(it.staged.ids) {
		if err := e.replaceLinkIDs(dbc, it, relation, it.staged.ids[relation]); err != nil {
			return err
		}
	}
	for _, relation := range sortedKeys(it.staged.nested) {
		if err := e.applyNestedLinks(dbc, it, relation, it.staged.nested[relation]); err != nil {
			return err
		}
	}
	it.staged = nil
	return nil
}

// replaceLinkIDs deletes every link of (source, relation) and recreates one
// row per surviving target in staged order. Targets that no longer exist are
// skipped, keeping id-array writes idempotent against deleted rows.
func (e *Engine) replaceLinkIDs(dbc dbctx.Context, it *Item, relation string, st *stagedIDs) error {
	tx := dbc.Tx.WithContext(dbc.Ctx)
	if err := tx.
		Where("source_id = ? AND relation = ?", it.ID(), relation).
		Delete(&domain.ItemLink{}).Error; err != nil {
		return MapError("item.unlink_relation", err)
	}

	pos := 0
	seen := map[uuid.UUID]bool{}
	for _, targetID := range st.ids {
		if seen[targetID] {
			continue
		}
		seen[targetID] = true

		var count int64
		if err := tx.Model(&domain.Item{}).
			Where("id = ? AND tenant_id = ?", targetID, it.TenantID()).
			Count(&count).Error; err != nil {
			return MapError("item.check_link_target", err)
		}
		if count == 0 {
			e.warn("link target does not exist, skipping",
				"source_id", it.ID(), "relation", relation, "target_id", targetID)
			continue
		}

		link := &domain.ItemLink{
			ID:       uuid.New(),
			SourceID: it.ID(),
			TargetID: targetID,
			Relation: relation,
			Position: pos,
		}
		if err := tx.Create(link).Error; err != nil {
			return MapError("item.create_link", err)
		}
		pos++
	}
	return nil
}

// applyNestedLinks reconciles nested-attribute entries against ItemLink +
// target item pairs: destroy removes only the edge, an id updates the target
// in place (recursing into its own embeds and links), no id creates a new
// target of the relation's target type in the same tenant.
func (e *Engine) applyNestedLinks(dbc dbctx.Context, it *Item, relation string, set *stagedNestedSet) error {
	tx := dbc.Tx.WithContext(dbc.Ctx)
	one := set.def.Cardinality == schema.One

	for i, n := range set.entries {
		if n.Destroy {
			if n.ID == "" {
				continue
			}
			targetID, err := uuid.Parse(n.ID)
			if err != nil {
				continue
			}
			if err := tx.
				Where("source_id = ? AND relation = ? AND target_id = ?", it.ID(), relation, targetID).
				Delete(&domain.ItemLink{}).Error; err != nil {
				return MapError("item.destroy_link", err)
			}
			continue
		}

		if n.ID != "" {
			targetID, err := uuid.Parse(n.ID)
			if err != nil {
				e.warn("nested link id is not a uuid, skipping",
					"source_id", it.ID(), "relation", relation, "id", n.ID)
				continue
			}
			var row domain.Item
			err = tx.Where("id = ? AND tenant_id = ?", targetID, it.TenantID()).First(&row).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				e.warn("nested link target does not exist, skipping",
					"source_id", it.ID(), "relation", relation, "target_id", targetID)
				continue
			}
			if err != nil {
				return MapError("item.load_link_target", err)
			}
			target := e.wrapItem(dbc, &row)
			if len(n.Attrs) > 0 {
				if err := target.SetAttributes(n.Attrs); err != nil {
					return err
				}
				if err := e.saveInTx(dbc, target); err != nil {
					return err
				}
			}
			if err := e.ensureLink(dbc, it, relation, targetID, n.Position, i, one); err != nil {
				return err
			}
			continue
		}

		targetSlug := set.def.Target
		if targetSlug == "" {
			e.warn("nested link relation has no target type, skipping",
				"source_id", it.ID(), "relation", relation)
			continue
		}
		target := e.newItem(dbc, it.TenantID(), targetSlug)
		if err := target.SetAttributes(n.Attrs); err != nil {
			return err
		}
		if err := e.saveInTx(dbc, target); err != nil {
			return err
		}
		if err := e.ensureLink(dbc, it, relation, target.ID(), n.Position, i, one); err != nil {
			return err
		}
	}
	return nil
}

// ensureLink upserts the (source, relation, target) edge. Cardinality one is
// guarded here by removing any other edge of the relation first; the storage
// layer only enforces edge uniqueness, not cardinality.
func (e *Engine) ensureLink(dbc dbctx.Context, it *Item, relation string, targetID uuid.UUID, posOverride *int, idx int, one bool) error {
	tx := dbc.Tx.WithContext(dbc.Ctx)
	if one {
		if err := tx.
			Where("source_id = ? AND relation = ? AND target_id <> ?", it.ID(), relation, targetID).
			Delete(&domain.ItemLink{}).Error; err != nil {
			return MapError("item.enforce_link_cardinality", err)
		}
	}

	pos := idx
	if posOverride != nil {
		pos = *posOverride
	}

	var link domain.ItemLink
	err := tx.
		Where("source_id = ? AND relation = ? AND target_id = ?", it.ID(), relation, targetID).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		link = domain.ItemLink{
			ID:       uuid.New(),
			SourceID: it.ID(),
			TargetID: targetID,
			Relation: relation,
			Position: pos,
		}
		if err := tx.Create(&link).Error; err != nil {
			return MapError("item.create_link", err)
		}
		return nil
	}
	if err != nil {
		return MapError("item.load_link", err)
	}
	if posOverride != nil && link.Position != pos {
		if err := tx.Model(&link).Update("position", pos).Error; err != nil {
			return MapError("item.update_link_position", err)
		}
	}
	return nil
}

func parseID(value any) (uuid.UUID, bool) {
	switch v := value.(type) {
	case uuid.UUID:
		return v, v != uuid.Nil
	case *uuid.UUID:
		if v == nil {
			return uuid.Nil, false
		}
		return *v, *v != uuid.Nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, false
		}
		return id, true
	default:
		return uuid.Nil, false
	}
}

func idCandidates(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []string:
		out := make([]any, 0, len(v))
		for _, s := range v {
			out = append(out, s)
		}
		return out
	case []uuid.UUID:
		out := make([]any, 0, len(v))
		for _, id := range v {
			out = append(out, id)
		}
		return out
	default:
		return []any{value}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
