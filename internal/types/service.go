package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is a maintenance record for one asset. It carries its own
// user_id because service records can be filed by a different user than
// the asset's owner.
type Service struct {
	ID          uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	AssetID     uuid.UUID            `gorm:"type:uuid;column:asset_id;not null;index" json:"asset_id"`
	Asset       *Asset               `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssetID;references:ID" json:"-"`
	UserID      uuid.UUID            `gorm:"type:uuid;column:user_id;not null;index" json:"user_id"`
	Description string               `gorm:"column:description" json:"description"`
	ServiceDate *time.Time           `gorm:"column:service_date" json:"service_date,omitempty"`
	Attachments []*ServiceAttachment `gorm:"foreignKey:ServiceID;references:ID" json:"attachments,omitempty"`
	CreatedAt   time.Time            `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time            `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt       `gorm:"index" json:"deleted_at,omitempty"`
}

func (Service) TableName() string { return "service" }
