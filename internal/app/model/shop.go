package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Shop struct {
	ID         string          `gorm:"primarykey;type:varchar(36)" json:"id"`
	Slug       string          `gorm:"uniqueIndex;not null" json:"slug"`
	Name       string          `gorm:"not null" json:"name"`
	Category   string          `gorm:"type:varchar(50)" json:"category"`
	IsActive   bool            `gorm:"default:true" json:"is_active"`
	OwnerID    uint            `gorm:"index" json:"owner_id"`
	Visibility VisibilityFlags `gorm:"type:jsonb" json:"visibility,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Products []Product  `gorm:"foreignKey:ShopID" json:"-"`
	Maps     []ImageMap `gorm:"foreignKey:ShopID" json:"-"`
}

func (Shop) TableName() string {
	return "shops"
}

func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
