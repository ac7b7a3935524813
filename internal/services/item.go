package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bytecrate/itemgraph/internal/data/repos/items"
	"github.com/bytecrate/itemgraph/internal/domain"
	"github.com/bytecrate/itemgraph/internal/item"
	"github.com/bytecrate/itemgraph/internal/platform/logger"
)

// ItemService is the collaborator-facing surface of the item engine: CMS,
// import and agent subsystems create and query items through it. Attribute
// maps are routed through the engine's accessor layer, so "*_attributes",
// "*_id" and "*_ids" keys behave exactly like direct engine calls.
type ItemService interface {
	CreateItem(ctx context.Context, tenantID uuid.UUID, typeSlug string, attrs map[string]any) (*item.Item, error)
	UpdateItem(ctx context.Context, tenantID, id uuid.UUID, attrs map[string]any) (*item.Item, error)
	GetItem(ctx context.Context, tenantID, id uuid.UUID) (*domain.Item, error)
	ListItems(ctx context.Context, tenantID uuid.UUID, typeSlug string) ([]*domain.Item, error)
	ListLinked(ctx context.Context, tenantID, id uuid.UUID, relation string) ([]*domain.Item, error)
	SoftDeleteItem(ctx context.Context, tenantID, id uuid.UUID) error
	RestoreItem(ctx context.Context, tenantID, id uuid.UUID) error
}

type itemService struct {
	db       *gorm.DB
	log      *logger.Logger
	engine   *item.Engine
	itemRepo items.ItemRepo
	linkRepo items.ItemLinkRepo
}

func NewItemService(
	db *gorm.DB,
	baseLog *logger.Logger,
	engine *item.Engine,
	itemRepo items.ItemRepo,
	linkRepo items.ItemLinkRepo,
) ItemService {
	serviceLog := baseLog.With("service", "ItemService")
	return &itemService{
		db:       db,
		log:      serviceLog,
		engine:   engine,
		itemRepo: itemRepo,
		linkRepo: linkRepo,
	}
}

// CreateItem builds and saves a new item. On validation failure the returned
// item still carries its error collection alongside ErrValidation.
func (s *itemService) CreateItem(ctx context.Context, tenantID uuid.UUID, typeSlug string, attrs map[string]any) (*item.Item, error) {
	it := s.engine.New(ctx, nil, tenantID, typeSlug)
	if err := it.SetAttributes(attrs); err != nil {
		return it, err
	}
	if err := s.engine.Save(ctx, nil, it); err != nil {
		return it, err
	}
	return it, nil
}

func (s *itemService) UpdateItem(ctx context.Context, tenantID, id uuid.UUID, attrs map[string]any) (*item.Item, error) {
	row, err := s.itemRepo.GetByTenantAndID(ctx, nil, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("load item: %w", err)
	}
	if row == nil {
		return nil, item.ErrNotFound
	}
	it := s.engine.Wrap(ctx, nil, row)
	if err := it.SetAttributes(attrs); err != nil {
		return it, err
	}
	if err := s.engine.Save(ctx, nil, it); err != nil {
		return it, err
	}
	return it, nil
}

func (s *itemService) GetItem(ctx context.Context, tenantID, id uuid.UUID) (*domain.Item, error) {
	row, err := s.itemRepo.GetByTenantAndID(ctx, nil, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("load item: %w", err)
	}
	if row == nil {
		return nil, item.ErrNotFound
	}
	return row, nil
}

func (s *itemService) ListItems(ctx context.Context, tenantID uuid.UUID, typeSlug string) ([]*domain.Item, error) {
	return s.itemRepo.GetByTenantAndType(ctx, nil, tenantID, typeSlug)
}

// ListLinked returns the target items of (id, relation) in link position
// order.
func (s *itemService) ListLinked(ctx context.Context, tenantID, id uuid.UUID, relation string) ([]*domain.Item, error) {
	source, err := s.itemRepo.GetByTenantAndID(ctx, nil, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("load item: %w", err)
	}
	if source == nil {
		return nil, item.ErrNotFound
	}

	links, err := s.linkRepo.GetBySourceAndRelation(ctx, nil, id, relation)
	if err != nil {
		return nil, fmt.Errorf("load links: %w", err)
	}
	targetIDs := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		targetIDs = append(targetIDs, l.TargetID)
	}

	rows, err := s.itemRepo.GetByIDs(ctx, nil, targetIDs)
	if err != nil {
		return nil, fmt.Errorf("load link targets: %w", err)
	}
	byID := make(map[uuid.UUID]*domain.Item, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	ordered := make([]*domain.Item, 0, len(links))
	for _, l := range links {
		if row, ok := byID[l.TargetID]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered, nil
}

func (s *itemService) SoftDeleteItem(ctx context.Context, tenantID, id uuid.UUID) error {
	row, err := s.itemRepo.GetByTenantAndID(ctx, nil, tenantID, id)
	if err != nil {
		return fmt.Errorf("load item: %w", err)
	}
	if row == nil {
		return item.ErrNotFound
	}
	return s.itemRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{id})
}

// RestoreItem clears the soft-delete mark. The row is located with an
// unscoped, tenant-filtered lookup first so a caller can only restore its
// own items.
func (s *itemService) RestoreItem(ctx context.Context, tenantID, id uuid.UUID) error {
	row, err := s.itemRepo.GetByTenantAndIDUnscoped(ctx, nil, tenantID, id)
	if err != nil {
		return fmt.Errorf("load item: %w", err)
	}
	if row == nil {
		return item.ErrNotFound
	}
	return s.itemRepo.RestoreByIDs(ctx, nil, []uuid.UUID{id})
}
