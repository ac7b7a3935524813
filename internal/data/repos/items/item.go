package items

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bytecrate/itemgraph/internal/domain"
	"github.com/bytecrate/itemgraph/internal/platform/logger"
)

type ItemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*domain.Item) ([]*domain.Item, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Item, error)
	GetByTenantAndID(ctx context.Context, tx *gorm.DB, tenantID, id uuid.UUID) (*domain.Item, error)
	GetByTenantAndIDUnscoped(ctx context.Context, tx *gorm.DB, tenantID, id uuid.UUID) (*domain.Item, error)
	GetByTenantAndType(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, typeSlug string) ([]*domain.Item, error)
	GetByPayloadKey(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, value any, keys ...string) ([]*domain.Item, error)
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	RestoreByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type itemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	repoLog := baseLog.With("repo", "ItemRepo")
	return &itemRepo{db: db, log: repoLog}
}

func (r *itemRepo) Create(ctx context.Context, tx *gorm.DB, rows []*domain.Item) ([]*domain.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*domain.Item{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *itemRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.Item
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *itemRepo) GetByTenantAndID(ctx context.Context, tx *gorm.DB, tenantID, id uuid.UUID) (*domain.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row domain.Item
	err := transaction.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByTenantAndIDUnscoped also sees soft-deleted rows; the restore path
// loads through here so a tenant can confirm a deleted item before
// restoring it.
func (r *itemRepo) GetByTenantAndIDUnscoped(ctx context.Context, tx *gorm.DB, tenantID, id uuid.UUID) (*domain.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row domain.Item
	err := transaction.WithContext(ctx).
		Unscoped().
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *itemRepo) GetByTenantAndType(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, typeSlug string) ([]*domain.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.Item
	if err := transaction.WithContext(ctx).
		Where("tenant_id = ? AND type_slug = ?", tenantID, typeSlug).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByPayloadKey runs a jsonb containment query against the payload column.
func (r *itemRepo) GetByPayloadKey(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, value any, keys ...string) ([]*domain.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.Item
	if err := transaction.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where(datatypes.JSONQuery("payload").Equals(value, keys...)).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *itemRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&domain.Item{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *itemRepo) RestoreByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Model(&domain.Item{}).
		Where("id IN ?", ids).
		Update("deleted_at", nil).Error; err != nil {
		return err
	}
	return nil
}

// FullDeleteByIDs removes the rows and every link touching them, in both
// directions. The items on the far side of those links are left alone.
func (r *itemRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("source_id IN ? OR target_id IN ?", ids, ids).
		Delete(&domain.ItemLink{}).Error; err != nil {
		return err
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("id IN ?", ids).
		Delete(&domain.Item{}).Error; err != nil {
		return err
	}
	return nil
}
