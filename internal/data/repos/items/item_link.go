package items

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bytecrate/itemgraph/internal/domain"
	"github.com/bytecrate/itemgraph/internal/platform/logger"
)

type ItemLinkRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*domain.ItemLink) ([]*domain.ItemLink, error)
	GetBySourceAndRelation(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, relation string) ([]*domain.ItemLink, error)
	GetByTargetAndRelation(ctx context.Context, tx *gorm.DB, targetID uuid.UUID, relation string) ([]*domain.ItemLink, error)
	DeleteBySourceAndRelation(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, relation string) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	UpdatePosition(ctx context.Context, tx *gorm.DB, id uuid.UUID, position int) error
}

type itemLinkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemLinkRepo(db *gorm.DB, baseLog *logger.Logger) ItemLinkRepo {
	repoLog := baseLog.With("repo", "ItemLinkRepo")
	return &itemLinkRepo{db: db, log: repoLog}
}

func (r *itemLinkRepo) Create(ctx context.Context, tx *gorm.DB, rows []*domain.ItemLink) ([]*domain.ItemLink, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*domain.ItemLink{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *itemLinkRepo) GetBySourceAndRelation(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, relation string) ([]*domain.ItemLink, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.ItemLink
	if err := transaction.WithContext(ctx).
		Where("source_id = ? AND relation = ?", sourceID, relation).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *itemLinkRepo) GetByTargetAndRelation(ctx context.Context, tx *gorm.DB, targetID uuid.UUID, relation string) ([]*domain.ItemLink, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.ItemLink
	if err := transaction.WithContext(ctx).
		Where("target_id = ? AND relation = ?", targetID, relation).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *itemLinkRepo) DeleteBySourceAndRelation(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, relation string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Where("source_id = ? AND relation = ?", sourceID, relation).
		Delete(&domain.ItemLink{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *itemLinkRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&domain.ItemLink{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *itemLinkRepo) UpdatePosition(ctx context.Context, tx *gorm.DB, id uuid.UUID, position int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Model(&domain.ItemLink{}).
		Where("id = ?", id).
		Update("position", position).Error; err != nil {
		return err
	}
	return nil
}
