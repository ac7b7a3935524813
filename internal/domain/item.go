package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Item is a tenant-scoped, schema-typed JSON document record. The shape of
// Payload is dictated by the schema resolved for TypeSlug, not by this row.
type Item struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_items_tenant_type,priority:1" json:"tenant_id"`
	TypeSlug  string         `gorm:"column:type_slug;not null;index:idx_items_tenant_type,priority:2" json:"type_slug"`
	Payload   datatypes.JSON `gorm:"column:payload;type:jsonb;not null" json:"payload"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Item) TableName() string { return "items" }
