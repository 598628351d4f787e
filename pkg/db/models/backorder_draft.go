package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/swiftcart-dev/swiftcart-backend/pkg/enums"
)

// BackorderDraft aggregates demand that could not be fulfilled from stock.
// DraftNumber uses the BO- scheme so a reviewer can tell drafts from
// confirmed orders at a glance.
type BackorderDraft struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	DraftNumber string                `gorm:"column:draft_number;not null;uniqueIndex"`
	Status      enums.BackorderStatus `gorm:"column:status;not null;default:'pending_approval'"`
	Items       []BackorderItem       `gorm:"foreignKey:DraftID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
