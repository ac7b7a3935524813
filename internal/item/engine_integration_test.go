package item

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bytecrate/itemgraph/internal/data/repos/testutil"
	"github.com/bytecrate/itemgraph/internal/domain"
	"github.com/bytecrate/itemgraph/internal/schema"
)

func integrationEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	e := NewEngine(tx, schema.NewResolver(nil, testutil.Logger(t)), testutil.Logger(t))
	return e, tx
}

func TestEngineSaveRoundTrip(t *testing.T) {
	e, tx := integrationEngine(t)
	ctx := context.Background()
	tenant := uuid.New()

	it := e.New(ctx, tx, tenant, "contact")
	err := it.SetAttributes(map[string]any{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"phone_numbers_attributes": []any{
			map[string]any{"number": "555-0100", "label": "home"},
		},
		"mailing_address_attributes": map[string]any{"city": "London"},
	})
	if err != nil {
		t.Fatalf("SetAttributes: %v", err)
	}
	if err := e.Save(ctx, tx, it); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !it.Persisted() {
		t.Fatalf("not persisted after save")
	}

	var row domain.Item
	if err := tx.WithContext(ctx).Where("id = ?", it.ID()).First(&row).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	loaded := e.Wrap(ctx, tx, &row)
	got, err := loaded.Get(ctx, "first_name")
	if err != nil || got != "Ada" {
		t.Fatalf("first_name after reload: %v %v", got, err)
	}
	phones, err := loaded.Get(ctx, "phone_numbers")
	if err != nil {
		t.Fatalf("phone_numbers: %v", err)
	}
	embeds := phones.([]Embed)
	if len(embeds) != 1 || embeds[0].Get("number") != "555-0100" {
		t.Fatalf("embed after reload: %v", embeds)
	}
	if embeds[0].ID() == "" {
		t.Fatalf("embed lost its id across the round trip")
	}
	addr, err := loaded.Get(ctx, "mailing_address")
	if err != nil {
		t.Fatalf("mailing_address: %v", err)
	}
	one, ok := addr.(*Embed)
	if !ok || one == nil || one.Get("city") != "London" {
		t.Fatalf("one-embed after reload: %T %v", addr, addr)
	}
}

func TestEngineSaveValidationFailureWritesNothing(t *testing.T) {
	e, tx := integrationEngine(t)
	ctx := context.Background()

	it := e.New(ctx, tx, uuid.New(), "contact")
	it.payload["last_name"] = "Nameless"

	err := e.Save(ctx, tx, it)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(it.Errors().On("payload")) == 0 {
		t.Fatalf("no payload errors recorded")
	}

	var count int64
	if err := tx.Model(&domain.Item{}).Where("id = ?", it.ID()).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("row written despite validation failure")
	}
}

func TestEngineLinkFlush(t *testing.T) {
	e, tx := integrationEngine(t)
	ctx := context.Background()
	tenant := uuid.New()

	noteA := testutil.SeedItem(t, ctx, tx, tenant, "note", map[string]any{"body": "a"})
	noteB := testutil.SeedItem(t, ctx, tx, tenant, "note", map[string]any{"body": "b"})

	it := e.New(ctx, tx, tenant, "contact")
	if err := it.SetAttributes(map[string]any{
		"first_name": "Ada",
		"note_ids":   []any{noteB.ID.String(), noteA.ID.String()},
	}); err != nil {
		t.Fatalf("SetAttributes: %v", err)
	}

	// Nothing hits the link table before save.
	var count int64
	if err := tx.Model(&domain.ItemLink{}).Where("source_id = ?", it.ID()).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("links written before save")
	}

	if err := e.Save(ctx, tx, it); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var rows []domain.ItemLink
	if err := tx.Where("source_id = ? AND relation = ?", it.ID(), "notes").
		Order("position ASC").Find(&rows).Error; err != nil {
		t.Fatalf("load links: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 links, got %d", len(rows))
	}
	if rows[0].TargetID != noteB.ID || rows[1].TargetID != noteA.ID {
		t.Fatalf("staged order lost: %v then %v", rows[0].TargetID, rows[1].TargetID)
	}

	ids, err := it.Get(ctx, "note_ids")
	if err != nil {
		t.Fatalf("Get note_ids: %v", err)
	}
	got := ids.([]uuid.UUID)
	if len(got) != 2 || got[0] != noteB.ID {
		t.Fatalf("note_ids after flush: %v", got)
	}
}

func TestEngineUnlinkPreservesTargets(t *testing.T) {
	e, tx := integrationEngine(t)
	ctx := context.Background()
	tenant := uuid.New()

	note := testutil.SeedItem(t, ctx, tx, tenant, "note", map[string]any{"body": "keep me"})

	it := e.New(ctx, tx, tenant, "contact")
	if err := it.SetAttributes(map[string]any{
		"first_name": "Ada",
		"note_ids":   []any{note.ID.String()},
	}); err != nil {
		t.Fatalf("SetAttributes: %v", err)
	}
	if err := e.Save(ctx, tx, it); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := it.Set("note_ids", []any{}); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	if err := e.Save(ctx, tx, it); err != nil {
		t.Fatalf("Save after unlink: %v", err)
	}

	var count int64
	if err := tx.Model(&domain.ItemLink{}).Where("source_id = ?", it.ID()).Count(&count).Error; err != nil {
		t.Fatalf("count links: %v", err)
	}
	if count != 0 {
		t.Fatalf("links survived an empty-set write")
	}
	if err := tx.Model(&domain.Item{}).Where("id = ?", note.ID).Count(&count).Error; err != nil {
		t.Fatalf("count target: %v", err)
	}
	if count != 1 {
		t.Fatalf("unlink destroyed the target row")
	}
}

func TestEngineSkipsMissingLinkTargets(t *testing.T) {
	e, tx := integrationEngine(t)
	ctx := context.Background()
	tenant := uuid.New()

	note := testutil.SeedItem(t, ctx, tx, tenant, "note", map[string]any{"body": "here"})
	foreign := testutil.SeedItem(t, ctx, tx, uuid.New(), "note", map[string]any{"body": "other tenant"})

	it := e.New(ctx, tx, tenant, "contact")
	if err := it.SetAttributes(map[string]any{
		"first_name": "Ada",
		"note_ids":   []any{uuid.New().String(), foreign.ID.String(), note.ID.String()},
	}); err != nil {
		t.Fatalf("SetAttributes: %v", err)
	}
	if err := e.Save(ctx, tx, it); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var rows []domain.ItemLink
	if err := tx.Where("source_id = ?", it.ID()).Find(&rows).Error; err != nil {
		t.Fatalf("load links: %v", err)
	}
	if len(rows) != 1 || rows[0].TargetID != note.ID {
		t.Fatalf("missing/cross-tenant targets not skipped: %v", rows)
	}
	if rows[0].Position != 0 {
		t.Fatalf("surviving link should be repositioned: %d", rows[0].Position)
	}
}

func TestEngineCardinalityOne(t *testing.T) {
	e, tx := integrationEngine(t)
	ctx := context.Background()
	tenant := uuid.New()

	first := testutil.SeedItem(t, ctx, tx, tenant, "company", map[string]any{"name": "First Inc"})
	second := testutil.SeedItem(t, ctx, tx, tenant, "company", map[string]any{"name": "Second Inc"})

	it := e.New(ctx, tx, tenant, "contact")
	if err := it.SetAttributes(map[string]any{
		"first_name": "Ada",
		"company_id": first.ID.String(),
	}); err != nil {
		t.Fatalf("SetAttributes: %v", err)
	}
	if err := e.Save(ctx, tx, it); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := it.Set("company_id", second.ID.String()); err != nil {
		t.Fatalf("relink: %v", err)
	}
	if err := e.Save(ctx, tx, it); err != nil {
		t.Fatalf("Save relink: %v", err)
	}

	var rows []domain.ItemLink
	if err := tx.Where("source_id = ? AND relation = ?", it.ID(), "company").Find(&rows).Error; err != nil {
		t.Fatalf("load links: %v", err)
	}
	if len(rows) != 1 || rows[0].TargetID != second.ID {
		t.Fatalf("cardinality one violated: %v", rows)
	}

	got, err := it.Get(ctx, "company_id")
	if err != nil {
		t.Fatalf("Get company_id: %v", err)
	}
	id, ok := got.(*uuid.UUID)
	if !ok || id == nil || *id != second.ID {
		t.Fatalf("company_id after flush: %v", got)
	}
}

func TestEngineNestedLinkCreatesTarget(t *testing.T) {
	e, tx := integrationEngine(t)
	ctx := context.Background()
	tenant := uuid.New()

	it := e.New(ctx, tx, tenant, "contact")
	if err := it.SetAttributes(map[string]any{
		"first_name": "Ada",
		"company_attributes": map[string]any{
			"name":   "Analytical Engines Ltd",
			"domain": "ae.example",
		},
	}); err != nil {
		t.Fatalf("SetAttributes: %v", err)
	}
	if err := e.Save(ctx, tx, it); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var link domain.ItemLink
	if err := tx.Where("source_id = ? AND relation = ?", it.ID(), "company").First(&link).Error; err != nil {
		t.Fatalf("load link: %v", err)
	}
	var company domain.Item
	if err := tx.Where("id = ?", link.TargetID).First(&company).Error; err != nil {
		t.Fatalf("load target: %v", err)
	}
	if company.TypeSlug != "company" || company.TenantID != tenant {
		t.Fatalf("created target: %+v", company)
	}
	wrapped := e.Wrap(ctx, tx, &company)
	if got, err := wrapped.Get(ctx, "name"); err != nil || got != "Analytical Engines Ltd" {
		t.Fatalf("target payload: %v %v", got, err)
	}
}

func TestEngineNestedLinkUpdatesAndDestroys(t *testing.T) {
	e, tx := integrationEngine(t)
	ctx := context.Background()
	tenant := uuid.New()

	note := testutil.SeedItem(t, ctx, tx, tenant, "note", map[string]any{"body": "draft"})

	it := e.New(ctx, tx, tenant, "contact")
	if err := it.SetAttributes(map[string]any{
		"first_name": "Ada",
		"notes_attributes": []any{
			map[string]any{"id": note.ID.String(), "body": "final"},
		},
	}); err != nil {
		t.Fatalf("SetAttributes: %v", err)
	}
	if err := e.Save(ctx, tx, it); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var row domain.Item
	if err := tx.Where("id = ?", note.ID).First(&row).Error; err != nil {
		t.Fatalf("reload note: %v", err)
	}
	updated := e.Wrap(ctx, tx, &row)
	if got, err := updated.Get(ctx, "body"); err != nil || got != "final" {
		t.Fatalf("nested update: %v %v", got, err)
	}

	// Destroy removes only the edge.
	if err := it.Set("notes_attributes", []any{
		map[string]any{"id": note.ID.String(), "_destroy": true},
	}); err != nil {
		t.Fatalf("stage destroy: %v", err)
	}
	if err := e.Save(ctx, tx, it); err != nil {
		t.Fatalf("Save destroy: %v", err)
	}

	var count int64
	if err := tx.Model(&domain.ItemLink{}).Where("source_id = ?", it.ID()).Count(&count).Error; err != nil {
		t.Fatalf("count links: %v", err)
	}
	if count != 0 {
		t.Fatalf("edge survived destroy")
	}
	if err := tx.Model(&domain.Item{}).Where("id = ?", note.ID).Count(&count).Error; err != nil {
		t.Fatalf("count note: %v", err)
	}
	if count != 1 {
		t.Fatalf("destroy removed the target row")
	}
}
