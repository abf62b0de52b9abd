package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImageMap is a merchant's annotated photograph of their physical store.
// At most one map per shop is active; inactive maps are retained as drafts.
// Shoppers never mutate a map.
type ImageMap struct {
	ID        string         `gorm:"primarykey;type:varchar(36)" json:"id"`
	ShopID    string         `gorm:"index;not null" json:"shop_id"`
	Title     *string        `json:"title,omitempty"`
	ImageURL  string         `json:"image_url"`
	Width     *int           `json:"width,omitempty"`
	Height    *int           `json:"height,omitempty"`
	IsActive  bool           `gorm:"default:false;index" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Sections []ImageSection `gorm:"foreignKey:MapID" json:"sections"`
	Hotspots []Hotspot      `gorm:"foreignKey:MapID" json:"hotspots"`
}

func (ImageMap) TableName() string {
	return "shop_image_maps"
}

func (m *ImageMap) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// ImageSection is an optional sub-photograph (one aisle, one wall) within a
// map. A map with hotspots but no sections is treated as a single implicit
// section backed by the map's own image.
type ImageSection struct {
	ID        string         `gorm:"primarykey;type:varchar(36)" json:"id"`
	MapID     string         `gorm:"index;not null" json:"map_id"`
	Name      string         `gorm:"not null" json:"name"`
	ImageURL  *string        `json:"image_url,omitempty"`
	Width     *int           `json:"width,omitempty"`
	Height    *int           `json:"height,omitempty"`
	SortOrder int            `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ImageSection) TableName() string {
	return "shop_image_sections"
}

func (s *ImageSection) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// Hotspot is a point annotation binding a location on the photograph to a
// catalog product. X and Y are percentages (0-100) of the owning image's
// natural size, so stored positions stay valid at any render size.
// A hotspot without a product renders as a label only.
type Hotspot struct {
	ID            string         `gorm:"primarykey;type:varchar(36)" json:"id"`
	MapID         string         `gorm:"index;not null" json:"map_id"`
	SectionID     *string        `gorm:"index" json:"section_id,omitempty"`
	ProductID     *string        `gorm:"index" json:"product_id,omitempty"`
	X             float64        `gorm:"not null" json:"x"`
	Y             float64        `gorm:"not null" json:"y"`
	Label         *string        `json:"label,omitempty"`
	SortOrder     int            `gorm:"default:0" json:"sort_order"`
	PriceOverride *float64       `json:"price_override,omitempty"`
	Confidence    *float64       `json:"confidence,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Product *Product      `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Section *ImageSection `gorm:"foreignKey:SectionID" json:"section,omitempty"`
}

func (Hotspot) TableName() string {
	return "shop_image_hotspots"
}

func (h *Hotspot) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return nil
}
