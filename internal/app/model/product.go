package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Product struct {
	ID            string          `gorm:"primarykey;type:varchar(36)" json:"id"`
	ShopID        string          `gorm:"index;not null" json:"shop_id"`
	Name          string          `gorm:"not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         float64         `gorm:"not null" json:"price"`
	Stock         int             `gorm:"default:0" json:"stock"`
	Category      string          `gorm:"type:varchar(50)" json:"category"`
	Unit          string          `gorm:"type:varchar(20)" json:"unit,omitempty"`
	ImageURL      string          `json:"image_url,omitempty"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	Colors        pq.StringArray  `gorm:"type:text[]" json:"colors,omitempty"`
	PackOptions   PackOptionList  `gorm:"type:jsonb" json:"pack_options,omitempty"`
	Sizes         SizeVariantList `gorm:"type:jsonb" json:"sizes,omitempty"`
	FurnitureMeta *FurnitureMeta  `gorm:"type:jsonb" json:"furniture_meta,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Hotspots  []Hotspot  `gorm:"foreignKey:ProductID" json:"-"`
	CartLines []CartLine `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
