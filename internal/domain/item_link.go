package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ItemLink is a named, directed edge between two items. A source may link a
// given target at most once per relation; Position orders the edges of a
// (source, relation) group.
type ItemLink struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SourceID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uniq_item_links_edge,priority:1;index:idx_item_links_source_relation,priority:1" json:"source_id"`
	TargetID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uniq_item_links_edge,priority:2;index:idx_item_links_target_relation,priority:1" json:"target_id"`
	Relation  string         `gorm:"not null;uniqueIndex:uniq_item_links_edge,priority:3;index:idx_item_links_source_relation,priority:2;index:idx_item_links_target_relation,priority:2" json:"relation"`
	Position  int            `gorm:"not null;default:0" json:"position"`
	Data      datatypes.JSON `gorm:"column:data;type:jsonb" json:"data"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ItemLink) TableName() string { return "item_links" }
