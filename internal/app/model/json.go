package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSON-backed column types. Postgres stores these as jsonb; the sqlite test
// database stores the same bytes as text. Scan accepts both.

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("unsupported type for JSON column")
	}
}

// PackOption is a fixed-quantity, fixed-price bundle alternative to the
// product's per-unit price.
type PackOption struct {
	ID    string  `json:"id"`
	Qty   float64 `json:"qty"`
	Unit  string  `json:"unit"`
	Price float64 `json:"price"`
	Label string  `json:"label,omitempty"`
}

type PackOptionList []PackOption

func (l PackOptionList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *PackOptionList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// FindByID returns the pack with the given id, or nil if the id no longer
// exists in the list (stale cart selections hit this path).
func (l PackOptionList) FindByID(id string) *PackOption {
	if id == "" {
		return nil
	}
	for i := range l {
		if l[i].ID == id {
			return &l[i]
		}
	}
	return nil
}

// SizeVariant is a price-bearing size choice on fashion products.
type SizeVariant struct {
	Label       string  `json:"label"`
	Price       float64 `json:"price"`
	CustomValue string  `json:"customValue,omitempty"`
}

// DisplayLabel resolves the "custom" sentinel to the merchant-entered value.
func (s SizeVariant) DisplayLabel() string {
	if s.Label == "custom" && s.CustomValue != "" {
		return s.CustomValue
	}
	return s.Label
}

type SizeVariantList []SizeVariant

// FindByLabel returns the size with the given label, or nil if the label
// no longer exists in the list (stale cart selections hit this path).
func (l SizeVariantList) FindByLabel(label string) *SizeVariant {
	if label == "" {
		return nil
	}
	for i := range l {
		if l[i].Label == label {
			return &l[i]
		}
	}
	return nil
}

func (l SizeVariantList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *SizeVariantList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// FurnitureMeta carries physical dimensions for furniture products.
type FurnitureMeta struct {
	LengthCm *float64 `json:"lengthCm,omitempty"`
	WidthCm  *float64 `json:"widthCm,omitempty"`
	HeightCm *float64 `json:"heightCm,omitempty"`
	Unit     string   `json:"unit,omitempty"`
}

func (m FurnitureMeta) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *FurnitureMeta) Scan(value interface{}) error {
	return scanJSON(value, m)
}

// Variant selection kinds
const (
	VariantKindPack    = "pack"
	VariantKindFashion = "fashion"
)

// VariantSelection is the shopper's concrete choice normalized into a
// stable record: prices can be recomputed from it after catalog changes,
// which transient UI state does not allow.
type VariantSelection struct {
	Kind      string   `json:"kind"`
	PackID    string   `json:"packId,omitempty"`
	Qty       *float64 `json:"qty,omitempty"`
	Unit      string   `json:"unit,omitempty"`
	Label     string   `json:"label,omitempty"`
	ColorName string   `json:"colorName,omitempty"`
	Size      string   `json:"size,omitempty"`
}

func (v VariantSelection) Value() (driver.Value, error) {
	return json.Marshal(v)
}

func (v *VariantSelection) Scan(value interface{}) error {
	return scanJSON(value, v)
}

// VisibilityFlags gates storefront affordances per shop. Keys follow the
// dashboard's capability names (productCardPrice, productCardStock,
// productCardAddToCart, productCardDescription, productCardReserve, ...).
type VisibilityFlags map[string]bool

// IsVisible reports whether an affordance should be shown. Unknown or
// missing keys default to visible.
func (f VisibilityFlags) IsVisible(key string) bool {
	if f == nil {
		return true
	}
	v, ok := f[key]
	if !ok {
		return true
	}
	return v
}

func (f VisibilityFlags) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

func (f *VisibilityFlags) Scan(value interface{}) error {
	return scanJSON(value, f)
}
