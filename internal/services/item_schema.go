package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bytecrate/itemgraph/internal/data/repos/items"
	"github.com/bytecrate/itemgraph/internal/domain"
	"github.com/bytecrate/itemgraph/internal/item"
	"github.com/bytecrate/itemgraph/internal/platform/logger"
	"github.com/bytecrate/itemgraph/internal/schema"
)

// SchemaInput is a tenant-supplied record-type definition.
type SchemaInput struct {
	Slug      string                     `json:"slug"`
	Schema    map[string]any             `json:"schema"`
	FieldDefs map[string]schema.FieldDef `json:"field_defs,omitempty"`
	EmbedDefs map[string]schema.EmbedDef `json:"embed_defs,omitempty"`
	LinkDefs  map[string]schema.LinkDef  `json:"link_defs,omitempty"`
}

type SchemaService interface {
	PutSchema(ctx context.Context, tenantID uuid.UUID, in SchemaInput) (*domain.ItemSchema, error)
	GetSchema(ctx context.Context, tenantID uuid.UUID, slug string) (*domain.ItemSchema, error)
	ListSchemas(ctx context.Context, tenantID uuid.UUID) ([]*domain.ItemSchema, error)
	DeleteSchema(ctx context.Context, tenantID uuid.UUID, slug string) error
}

type schemaService struct {
	db         *gorm.DB
	log        *logger.Logger
	schemaRepo items.ItemSchemaRepo
}

func NewSchemaService(db *gorm.DB, baseLog *logger.Logger, schemaRepo items.ItemSchemaRepo) SchemaService {
	serviceLog := baseLog.With("service", "SchemaService")
	return &schemaService{db: db, log: serviceLog, schemaRepo: schemaRepo}
}

// PutSchema validates and upserts a stored schema definition. Structurally
// invalid documents are rejected here so item validation never sees one.
func (s *schemaService) PutSchema(ctx context.Context, tenantID uuid.UUID, in SchemaInput) (*domain.ItemSchema, error) {
	if err := schema.ValidateSlug(in.Slug); err != nil {
		return nil, err
	}
	if err := schema.ValidateDocument(in.Schema); err != nil {
		return nil, err
	}
	if _, ok := schema.Lookup(in.Slug); ok {
		// Legal, but the stored row will never resolve: code-defined wins.
		s.log.Warn("stored schema is shadowed by a code-defined type", "slug", in.Slug, "tenant_id", tenantID)
	}

	row := &domain.ItemSchema{
		ID:       uuid.New(),
		TenantID: tenantID,
		Slug:     in.Slug,
	}
	var err error
	if row.Schema, err = marshalJSONB(in.Schema); err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	if row.FieldDefs, err = marshalJSONB(in.FieldDefs); err != nil {
		return nil, fmt.Errorf("encode field defs: %w", err)
	}
	if row.EmbedDefs, err = marshalJSONB(in.EmbedDefs); err != nil {
		return nil, fmt.Errorf("encode embed defs: %w", err)
	}
	if row.LinkDefs, err = marshalJSONB(in.LinkDefs); err != nil {
		return nil, fmt.Errorf("encode link defs: %w", err)
	}

	saved, err := s.schemaRepo.Upsert(ctx, nil, row)
	if err != nil {
		return nil, item.MapError("schema.upsert", err)
	}
	return saved, nil
}

func (s *schemaService) GetSchema(ctx context.Context, tenantID uuid.UUID, slug string) (*domain.ItemSchema, error) {
	row, err := s.schemaRepo.GetByTenantAndSlug(ctx, nil, tenantID, slug)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%w: %s", schema.ErrNotFound, slug)
	}
	return row, nil
}

func (s *schemaService) ListSchemas(ctx context.Context, tenantID uuid.UUID) ([]*domain.ItemSchema, error) {
	return s.schemaRepo.GetByTenant(ctx, nil, tenantID)
}

func (s *schemaService) DeleteSchema(ctx context.Context, tenantID uuid.UUID, slug string) error {
	row, err := s.schemaRepo.GetByTenantAndSlug(ctx, nil, tenantID, slug)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("%w: %s", schema.ErrNotFound, slug)
	}
	return s.schemaRepo.DeleteByIDs(ctx, nil, []uuid.UUID{row.ID})
}

func marshalJSONB(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
