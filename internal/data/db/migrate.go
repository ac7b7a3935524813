package db

import (
	"gorm.io/gorm"

	"github.com/bytecrate/itemgraph/internal/domain"
)

func AutoMigrateAll(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&domain.Item{},
		&domain.ItemLink{},
		&domain.ItemSchema{},
	); err != nil {
		return err
	}

	// GIN index for payload containment queries; AutoMigrate only emits
	// btree indexes.
	return gdb.Exec(
		`CREATE INDEX IF NOT EXISTS idx_items_payload ON items USING gin (payload);`,
	).Error
}
