package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bytecrate/itemgraph/internal/data/repos/items"
	"github.com/bytecrate/itemgraph/internal/data/repos/testutil"
	"github.com/bytecrate/itemgraph/internal/schema"
)

func schemaServiceForTest(t *testing.T) (SchemaService, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	return NewSchemaService(tx, log, items.NewItemSchemaRepo(tx, log)), tx
}

func TestSchemaServiceLifecycle(t *testing.T) {
	svc, _ := schemaServiceForTest(t)
	ctx := context.Background()
	tenant := uuid.New()

	in := SchemaInput{
		Slug: "ticket",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{"type": "string"},
			},
			"required": []any{"title"},
		},
		FieldDefs: map[string]schema.FieldDef{
			"title": {Type: "string"},
		},
		LinkDefs: map[string]schema.LinkDef{
			"assignee": {Cardinality: schema.One, Target: "contact"},
		},
	}
	saved, err := svc.PutSchema(ctx, tenant, in)
	if err != nil {
		t.Fatalf("PutSchema: %v", err)
	}

	got, err := svc.GetSchema(ctx, tenant, "ticket")
	if err != nil || got.ID != saved.ID {
		t.Fatalf("GetSchema: %v %v", got, err)
	}

	// The stored row decodes into a usable source.
	src, err := schema.NewStored(got)
	if err != nil {
		t.Fatalf("NewStored: %v", err)
	}
	if src.Links()["assignee"].Target != "contact" {
		t.Fatalf("link defs lost: %v", src.Links())
	}

	rows, err := svc.ListSchemas(ctx, tenant)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListSchemas: err=%v len=%d", err, len(rows))
	}

	if err := svc.DeleteSchema(ctx, tenant, "ticket"); err != nil {
		t.Fatalf("DeleteSchema: %v", err)
	}
	if _, err := svc.GetSchema(ctx, tenant, "ticket"); !errors.Is(err, schema.ErrNotFound) {
		t.Fatalf("deleted schema still loads: %v", err)
	}
	if err := svc.DeleteSchema(ctx, tenant, "ticket"); !errors.Is(err, schema.ErrNotFound) {
		t.Fatalf("double delete: %v", err)
	}
}

func TestSchemaServiceRejectsBadInput(t *testing.T) {
	svc, _ := schemaServiceForTest(t)
	ctx := context.Background()
	tenant := uuid.New()

	_, err := svc.PutSchema(ctx, tenant, SchemaInput{
		Slug:   "Bad-Slug",
		Schema: map[string]any{"type": "object"},
	})
	if !errors.Is(err, schema.ErrFormat) {
		t.Fatalf("bad slug: %v", err)
	}

	_, err = svc.PutSchema(ctx, tenant, SchemaInput{
		Slug:   "ticket",
		Schema: map[string]any{"properties": map[string]any{}},
	})
	if !errors.Is(err, schema.ErrFormat) {
		t.Fatalf("missing top-level type: %v", err)
	}
}

func TestSchemaServiceDrivesStoredResolution(t *testing.T) {
	svc, tx := schemaServiceForTest(t)
	ctx := context.Background()
	tenant := uuid.New()

	_, err := svc.PutSchema(ctx, tenant, SchemaInput{
		Slug: "ticket",
		Schema: map[string]any{
			"type":     "object",
			"required": []any{"title"},
			"properties": map[string]any{
				"title": map[string]any{"type": "string"},
			},
		},
		FieldDefs: map[string]schema.FieldDef{"title": {Type: "string"}},
	})
	if err != nil {
		t.Fatalf("PutSchema: %v", err)
	}

	log := testutil.Logger(t)
	resolver := schema.NewResolver(items.NewItemSchemaRepo(tx, log), log)
	src, err := resolver.Resolve(ctx, tx, tenant, "ticket")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src.Slug() != "ticket" || src.Fields()["title"].Type != "string" {
		t.Fatalf("stored source: %v", src)
	}

	// Another tenant does not see this schema.
	if _, err := resolver.Resolve(ctx, tx, uuid.New(), "ticket"); !errors.Is(err, schema.ErrNotFound) {
		t.Fatalf("cross-tenant resolution: %v", err)
	}
}
