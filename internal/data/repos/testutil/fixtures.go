package testutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bytecrate/itemgraph/internal/domain"
)

func SeedItem(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, typeSlug string, payload map[string]any) *domain.Item {
	tb.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		tb.Fatalf("seed item payload: %v", err)
	}
	it := &domain.Item{
		ID:       uuid.New(),
		TenantID: tenantID,
		TypeSlug: typeSlug,
		Payload:  datatypes.JSON(raw),
	}
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed item: %v", err)
	}
	return it
}

func SeedLink(tb testing.TB, ctx context.Context, tx *gorm.DB, sourceID, targetID uuid.UUID, relation string, position int) *domain.ItemLink {
	tb.Helper()
	l := &domain.ItemLink{
		ID:       uuid.New(),
		SourceID: sourceID,
		TargetID: targetID,
		Relation: relation,
		Position: position,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed link: %v", err)
	}
	return l
}

func SeedSchema(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, slug string, doc map[string]any) *domain.ItemSchema {
	tb.Helper()
	raw, err := json.Marshal(doc)
	if err != nil {
		tb.Fatalf("seed schema doc: %v", err)
	}
	s := &domain.ItemSchema{
		ID:       uuid.New(),
		TenantID: tenantID,
		Slug:     slug,
		Schema:   datatypes.JSON(raw),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed schema: %v", err)
	}
	return s
}
