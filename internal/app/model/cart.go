package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartLine is one entry in a shopper's cart. Identity (LineID) and Quantity
// belong to the shopper; the display fields (Name, Price, Unit, ImageURL,
// FurnitureMeta) are refreshed from the catalog on every load by the
// reconciler and may drift from what was stored at add time.
type CartLine struct {
	LineID           string            `gorm:"primarykey;type:varchar(36)" json:"line_id"`
	UserID           uint              `gorm:"index;not null" json:"user_id"`
	ShopID           string            `gorm:"index;not null" json:"shop_id"`
	ProductID        string            `gorm:"index;not null" json:"product_id"`
	Name             string            `gorm:"not null" json:"name"`
	Price            float64           `gorm:"not null" json:"price"`
	Quantity         int               `gorm:"not null;default:1" json:"quantity"`
	Unit             string            `gorm:"type:varchar(20)" json:"unit,omitempty"`
	ImageURL         string            `json:"image_url,omitempty"`
	VariantSelection *VariantSelection `gorm:"type:jsonb" json:"variant_selection,omitempty"`
	FurnitureMeta    *FurnitureMeta    `gorm:"type:jsonb" json:"furniture_meta,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	DeletedAt        gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (CartLine) TableName() string {
	return "cart_lines"
}

func (l *CartLine) BeforeCreate(tx *gorm.DB) error {
	if l.LineID == "" {
		l.LineID = uuid.New().String()
	}
	return nil
}
