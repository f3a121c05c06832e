package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Asset is a trackable physical item owned by one user. ImagePath, when
// set, is the on-disk path of the uploaded image under the asset's
// upload directory.
type Asset struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	AssetSN      string         `gorm:"column:asset_sn;not null;index" json:"asset_sn"`
	Description  string         `gorm:"column:description" json:"description"`
	AcquiredDate *time.Time     `gorm:"column:acquired_date" json:"acquired_date,omitempty"`
	ImagePath    string         `gorm:"column:image_path" json:"image_path"`
	Metadata     datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	UserID       uuid.UUID      `gorm:"type:uuid;column:user_id;not null;index" json:"user_id"`
	Services     []*Service     `gorm:"foreignKey:AssetID;references:ID" json:"services,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Asset) TableName() string { return "asset" }
