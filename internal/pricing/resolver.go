// Package pricing resolves the unit price of a product under a shopper's
// in-progress variant selection, and normalizes that selection into the
// stable record the cart persists.
package pricing

import (
	"fmt"
	"strings"

	"github.com/rayshop/shopmap-backend/internal/app/model"
)

// Selection is the shopper's in-progress choice as the UI holds it: a pack
// id for food-style products, or a color and size for fashion. Zero values
// mean "nothing picked".
type Selection struct {
	PackID string
	Color  string
	Size   *model.SizeVariant
}

// Quote is the outcome of price resolution: the unit price to charge and
// the normalized variant record the cart must persist (nil when the
// shopper picked nothing).
type Quote struct {
	UnitPrice float64
	Variant   *model.VariantSelection
}

// Resolve computes the unit price with this precedence, re-evaluated on
// every selection change:
//
//  1. a selected pack that still exists in the product's pack list;
//  2. else a selected size that still exists in the product's size list;
//  3. else the product's base price, overridden by the hotspot's price
//     override when one is set. The override never beats an explicit
//     pack or size price.
//
// A selected pack id or size label that no longer exists falls through to
// the next step; the stale selection is dropped rather than priced.
func Resolve(p *model.Product, sel Selection, priceOverride *float64) Quote {
	if p == nil {
		return Quote{}
	}

	if sel.PackID != "" {
		if pack := p.PackOptions.FindByID(sel.PackID); pack != nil {
			qty := pack.Qty
			return Quote{
				UnitPrice: pack.Price,
				Variant: &model.VariantSelection{
					Kind:   model.VariantKindPack,
					PackID: pack.ID,
					Qty:    &qty,
					Unit:   packUnit(pack, p),
					Label:  packLabel(pack, p),
				},
			}
		}
	}

	if sel.Size != nil {
		if size := p.Sizes.FindByLabel(sel.Size.Label); size != nil {
			return Quote{
				UnitPrice: size.Price,
				Variant:   fashionVariant(Selection{Color: sel.Color, Size: size}),
			}
		}
		// The merchant removed the size; price as if nothing was picked.
		sel.Size = nil
	}

	price := p.Price
	if priceOverride != nil {
		price = *priceOverride
	}
	return Quote{
		UnitPrice: price,
		Variant:   fashionVariant(sel),
	}
}

// fashionVariant emits a fashion record only when both a color and a size
// were picked; a lone color carries no pricing information worth keeping.
func fashionVariant(sel Selection) *model.VariantSelection {
	if sel.Color == "" || sel.Size == nil {
		return nil
	}
	return &model.VariantSelection{
		Kind:      model.VariantKindFashion,
		ColorName: sel.Color,
		Size:      sel.Size.DisplayLabel(),
	}
}

func packUnit(pack *model.PackOption, p *model.Product) string {
	if u := strings.TrimSpace(pack.Unit); u != "" {
		return u
	}
	return strings.TrimSpace(p.Unit)
}

func packLabel(pack *model.PackOption, p *model.Product) string {
	if l := strings.TrimSpace(pack.Label); l != "" {
		return l
	}
	if pack.Qty > 0 {
		return strings.TrimSpace(fmt.Sprintf("%g %s", pack.Qty, packUnit(pack, p)))
	}
	return "pack"
}
