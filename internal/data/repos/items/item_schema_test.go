package items

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/bytecrate/itemgraph/internal/data/repos/testutil"
	"github.com/bytecrate/itemgraph/internal/domain"
)

func TestItemSchemaRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewItemSchemaRepo(db, testutil.Logger(t))
	tenant := uuid.New()

	doc := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
		},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal doc: %v", err)
	}

	row, err := repo.Upsert(ctx, tx, &domain.ItemSchema{
		ID:       uuid.New(),
		TenantID: tenant,
		Slug:     "ticket",
		Schema:   datatypes.JSON(raw),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.GetByTenantAndSlug(ctx, tx, tenant, "ticket")
	if err != nil || got == nil || got.ID != row.ID {
		t.Fatalf("GetByTenantAndSlug: err=%v got=%v", err, got)
	}
	if got, err := repo.GetByTenantAndSlug(ctx, tx, uuid.New(), "ticket"); err != nil || got != nil {
		t.Fatalf("GetByTenantAndSlug cross-tenant: err=%v got=%v", err, got)
	}

	// Same (tenant, slug) replaces the definitions in place.
	doc["properties"].(map[string]any)["priority"] = map[string]any{"type": "integer"}
	raw2, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal doc: %v", err)
	}
	if _, err := repo.Upsert(ctx, tx, &domain.ItemSchema{
		ID:       uuid.New(),
		TenantID: tenant,
		Slug:     "ticket",
		Schema:   datatypes.JSON(raw2),
	}); err != nil {
		t.Fatalf("Upsert replace: %v", err)
	}

	rows, err := repo.GetByTenant(ctx, tx, tenant)
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByTenant after replace: err=%v len=%d", err, len(rows))
	}
	var decoded map[string]any
	if err := json.Unmarshal(rows[0].Schema, &decoded); err != nil {
		t.Fatalf("decode stored schema: %v", err)
	}
	props := decoded["properties"].(map[string]any)
	if _, ok := props["priority"]; !ok {
		t.Fatalf("Upsert did not replace schema doc: %v", props)
	}

	testutil.SeedSchema(t, ctx, tx, tenant, "asset", map[string]any{"type": "object"})
	rows, err = repo.GetByTenant(ctx, tx, tenant)
	if err != nil || len(rows) != 2 {
		t.Fatalf("GetByTenant: err=%v len=%d", err, len(rows))
	}
	if rows[0].Slug != "asset" || rows[1].Slug != "ticket" {
		t.Fatalf("GetByTenant order: %s then %s", rows[0].Slug, rows[1].Slug)
	}

	if err := repo.DeleteByIDs(ctx, tx, []uuid.UUID{rows[0].ID, rows[1].ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if rows, err := repo.GetByTenant(ctx, tx, tenant); err != nil || len(rows) != 0 {
		t.Fatalf("after DeleteByIDs: err=%v len=%d", err, len(rows))
	}
}
