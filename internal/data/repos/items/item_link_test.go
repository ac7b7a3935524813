package items

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/bytecrate/itemgraph/internal/data/repos/testutil"
	"github.com/bytecrate/itemgraph/internal/domain"
)

func TestItemLinkRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewItemLinkRepo(db, testutil.Logger(t))
	tenant := uuid.New()

	src := testutil.SeedItem(t, ctx, tx, tenant, "contact", map[string]any{"first_name": "Ada"})
	tgt1 := testutil.SeedItem(t, ctx, tx, tenant, "note", map[string]any{"body": "one"})
	tgt2 := testutil.SeedItem(t, ctx, tx, tenant, "note", map[string]any{"body": "two"})

	rows, err := repo.Create(ctx, tx, []*domain.ItemLink{
		{ID: uuid.New(), SourceID: src.ID, TargetID: tgt2.ID, Relation: "notes", Position: 1},
		{ID: uuid.New(), SourceID: src.ID, TargetID: tgt1.ID, Relation: "notes", Position: 0},
	})
	if err != nil || len(rows) != 2 {
		t.Fatalf("Create: err=%v len=%d", err, len(rows))
	}

	got, err := repo.GetBySourceAndRelation(ctx, tx, src.ID, "notes")
	if err != nil || len(got) != 2 {
		t.Fatalf("GetBySourceAndRelation: err=%v len=%d", err, len(got))
	}
	if got[0].TargetID != tgt1.ID || got[1].TargetID != tgt2.ID {
		t.Fatalf("position order: got %v then %v", got[0].TargetID, got[1].TargetID)
	}

	if got, err := repo.GetByTargetAndRelation(ctx, tx, tgt1.ID, "notes"); err != nil || len(got) != 1 || got[0].SourceID != src.ID {
		t.Fatalf("GetByTargetAndRelation: err=%v len=%d", err, len(got))
	}

	if err := repo.UpdatePosition(ctx, tx, got[0].ID, 5); err != nil {
		t.Fatalf("UpdatePosition: %v", err)
	}
	after, err := repo.GetBySourceAndRelation(ctx, tx, src.ID, "notes")
	if err != nil || len(after) != 2 {
		t.Fatalf("reload after UpdatePosition: err=%v len=%d", err, len(after))
	}
	if after[1].Position != 5 {
		t.Fatalf("UpdatePosition not applied: %d", after[1].Position)
	}

	// Same pair under a different relation is a distinct edge.
	if _, err := repo.Create(ctx, tx, []*domain.ItemLink{
		{ID: uuid.New(), SourceID: src.ID, TargetID: tgt1.ID, Relation: "pinned_notes", Position: 0},
	}); err != nil {
		t.Fatalf("different relation rejected: %v", err)
	}

	// The edge (source, target, relation) is unique.
	if _, err := repo.Create(ctx, tx, []*domain.ItemLink{
		{ID: uuid.New(), SourceID: src.ID, TargetID: tgt1.ID, Relation: "notes", Position: 9},
	}); err == nil {
		t.Fatalf("expected unique edge violation")
	}

	tx2 := testutil.Tx(t, db)
	src2 := testutil.SeedItem(t, ctx, tx2, tenant, "contact", map[string]any{"first_name": "Grace"})
	tgt3 := testutil.SeedItem(t, ctx, tx2, tenant, "note", map[string]any{"body": "three"})
	created, err := repo.Create(ctx, tx2, []*domain.ItemLink{
		{ID: uuid.New(), SourceID: src2.ID, TargetID: tgt3.ID, Relation: "notes", Position: 0},
	})
	if err != nil || len(created) != 1 {
		t.Fatalf("seed for deletes: err=%v", err)
	}
	if err := repo.DeleteByIDs(ctx, tx2, []uuid.UUID{created[0].ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if got, err := repo.GetBySourceAndRelation(ctx, tx2, src2.ID, "notes"); err != nil || len(got) != 0 {
		t.Fatalf("after DeleteByIDs: err=%v len=%d", err, len(got))
	}

	testutil.SeedLink(t, ctx, tx2, src2.ID, tgt3.ID, "notes", 0)
	if err := repo.DeleteBySourceAndRelation(ctx, tx2, src2.ID, "notes"); err != nil {
		t.Fatalf("DeleteBySourceAndRelation: %v", err)
	}
	if got, err := repo.GetBySourceAndRelation(ctx, tx2, src2.ID, "notes"); err != nil || len(got) != 0 {
		t.Fatalf("after DeleteBySourceAndRelation: err=%v len=%d", err, len(got))
	}
}
