package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ServiceAttachment struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceID      uuid.UUID      `gorm:"type:uuid;column:service_id;not null;index" json:"service_id"`
	Service        *Service       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ServiceID;references:ID" json:"-"`
	AttachmentPath string         `gorm:"column:attachment_path;not null" json:"attachment_path"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ServiceAttachment) TableName() string { return "service_attachment" }
