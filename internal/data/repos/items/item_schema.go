package items

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bytecrate/itemgraph/internal/domain"
	"github.com/bytecrate/itemgraph/internal/platform/logger"
)

type ItemSchemaRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *domain.ItemSchema) (*domain.ItemSchema, error)
	GetByTenantAndSlug(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, slug string) (*domain.ItemSchema, error)
	GetByTenant(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) ([]*domain.ItemSchema, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type itemSchemaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemSchemaRepo(db *gorm.DB, baseLog *logger.Logger) ItemSchemaRepo {
	repoLog := baseLog.With("repo", "ItemSchemaRepo")
	return &itemSchemaRepo{db: db, log: repoLog}
}

// Upsert writes the schema row, replacing definitions on (tenant_id, slug)
// conflict.
func (r *itemSchemaRepo) Upsert(ctx context.Context, tx *gorm.DB, row *domain.ItemSchema) (*domain.ItemSchema, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil, errors.New("nil schema row")
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"schema", "field_defs", "embed_defs", "link_defs", "updated_at",
			}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *itemSchemaRepo) GetByTenantAndSlug(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, slug string) (*domain.ItemSchema, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row domain.ItemSchema
	err := transaction.WithContext(ctx).
		Where("tenant_id = ? AND slug = ?", tenantID, slug).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *itemSchemaRepo) GetByTenant(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) ([]*domain.ItemSchema, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.ItemSchema
	if err := transaction.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("slug ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *itemSchemaRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&domain.ItemSchema{}).Error; err != nil {
		return err
	}
	return nil
}
