package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ItemSchema is a tenant-defined record type: its JSON Schema document plus
// the field/embed/link definitions the item engine dispatches on. Code-defined
// types with the same slug always shadow these rows.
type ItemSchema struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uniq_item_schemas_tenant_slug,priority:1" json:"tenant_id"`
	Slug      string         `gorm:"not null;uniqueIndex:uniq_item_schemas_tenant_slug,priority:2" json:"slug"`
	Schema    datatypes.JSON `gorm:"column:schema;type:jsonb;not null" json:"schema"`
	FieldDefs datatypes.JSON `gorm:"column:field_defs;type:jsonb" json:"field_defs"`
	EmbedDefs datatypes.JSON `gorm:"column:embed_defs;type:jsonb" json:"embed_defs"`
	LinkDefs  datatypes.JSON `gorm:"column:link_defs;type:jsonb" json:"link_defs"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ItemSchema) TableName() string { return "item_schemas" }
