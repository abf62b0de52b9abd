package canvas

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/internal/pricing"
)

var (
	ErrNoSections         = errors.New("map has no sections")
	ErrOverlayNotOpen     = errors.New("no detail overlay is open")
	ErrNotPurchasable     = errors.New("hotspot is not purchasable")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrActionHidden       = errors.New("action is hidden by shop configuration")
	ErrUnknownHotspot     = errors.New("hotspot not in current section")
	ErrViewerImageMissing = errors.New("section has no image")
)

// SectionView is one navigable page of the storefront: a photograph plus
// the hotspots that belong on it, ready for cover-fit layout. Hotspots
// whose product went inactive are dropped before the view is built, so a
// SectionView only ever carries label-only or purchasable entries.
type SectionView struct {
	ID       string
	Name     string
	ImageURL string
	Natural  Size
	Hotspots []model.Hotspot
}

// HotspotPlacement is a hotspot positioned in container pixels for one
// layout pass. Points cropped out by the pan window report Visible=false
// and are expected to be clipped, not dropped.
type HotspotPlacement struct {
	Hotspot model.Hotspot
	X       float64
	Y       float64
	Visible bool
}

// Overlay is the product detail sheet opened by selecting a hotspot. At
// most one is open per viewer; selector state lives here so the quoted
// price tracks the shopper's in-progress choice.
type Overlay struct {
	Hotspot   model.Hotspot
	Product   *model.Product
	Selection pricing.Selection
}

// Purchasable reports whether the sheet can produce a cart line at all:
// it needs a resolvable product with stock.
func (o *Overlay) Purchasable() bool {
	return o.Product != nil && pricing.StatusOf(o.Product.Stock) != pricing.OutOfStock
}

// Quote prices the current selection.
func (o *Overlay) Quote() pricing.Quote {
	return pricing.Resolve(o.Product, o.Selection, o.Hotspot.PriceOverride)
}

// StockStatus recomputes the stock badge on every read.
func (o *Overlay) StockStatus() pricing.StockStatus {
	if o.Product == nil {
		return pricing.OutOfStock
	}
	return pricing.StatusOf(o.Product.Stock)
}

// Viewer is the shopper-facing composition over an active map: section
// navigation with wraparound, cover-fit hotspot layout under a pan
// offset, and a single detail overlay that turns a selection into a cart
// line. It is read-only with respect to the map.
type Viewer struct {
	sections   []SectionView
	current    int
	visibility model.VisibilityFlags
	container  Size
	pan        *PanController
	overlay    *Overlay

	products map[string]*model.Product
}

// NewViewer builds the storefront view for an active map. A map with
// hotspots but no sections gets a single implicit section backed by the
// map's own image; hotspots without a section land in the first section.
// Hotspots whose product exists but is inactive are filtered out here;
// dangling product references stay and render as label-only.
func NewViewer(m *model.ImageMap, products []model.Product, visibility model.VisibilityFlags, container Size, frames FrameScheduler) *Viewer {
	v := &Viewer{
		visibility: visibility,
		container:  container,
		products:   make(map[string]*model.Product, len(products)),
	}
	for i := range products {
		v.products[products[i].ID] = &products[i]
	}
	if m != nil {
		v.sections = buildSectionViews(m, v.products)
	}
	v.pan = NewPanController(frames, func(p float64) float64 {
		return v.metrics(0).ClampPan(p)
	}, nil)
	return v
}

func buildSectionViews(m *model.ImageMap, products map[string]*model.Product) []SectionView {
	sections := make([]model.ImageSection, len(m.Sections))
	copy(sections, m.Sections)
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].SortOrder < sections[j].SortOrder
	})

	views := make([]SectionView, 0, len(sections)+1)
	if len(sections) == 0 {
		views = append(views, SectionView{
			ID:       m.ID,
			Name:     "",
			ImageURL: m.ImageURL,
			Natural:  naturalSize(m.Width, m.Height),
		})
	} else {
		for _, s := range sections {
			img := m.ImageURL
			if s.ImageURL != nil && *s.ImageURL != "" {
				img = *s.ImageURL
			}
			views = append(views, SectionView{
				ID:       s.ID,
				Name:     s.Name,
				ImageURL: img,
				Natural:  naturalSize(s.Width, s.Height),
			})
		}
	}

	byID := make(map[string]int, len(views))
	for i, sv := range views {
		byID[sv.ID] = i
	}

	hotspots := make([]model.Hotspot, len(m.Hotspots))
	copy(hotspots, m.Hotspots)
	sort.SliceStable(hotspots, func(i, j int) bool {
		return hotspots[i].SortOrder < hotspots[j].SortOrder
	})
	for _, h := range hotspots {
		if h.ProductID != nil {
			if p, ok := products[*h.ProductID]; ok && !p.IsActive {
				continue
			}
		}
		h.X = ClampPercent(h.X)
		h.Y = ClampPercent(h.Y)
		idx := 0
		if h.SectionID != nil {
			if i, ok := byID[*h.SectionID]; ok {
				idx = i
			}
		}
		views[idx].Hotspots = append(views[idx].Hotspots, h)
	}
	return views
}

func naturalSize(w, h *int) Size {
	var s Size
	if w != nil {
		s.W = float64(*w)
	}
	if h != nil {
		s.H = float64(*h)
	}
	return s
}

// Empty reports whether there is anything to render; callers show an
// explicit empty state instead of a blank canvas.
func (v *Viewer) Empty() bool {
	return len(v.sections) == 0
}

// Section returns the current section view.
func (v *Viewer) Section() (SectionView, error) {
	if len(v.sections) == 0 {
		return SectionView{}, ErrNoSections
	}
	return v.sections[v.current], nil
}

// SectionCount returns the number of navigable sections.
func (v *Viewer) SectionCount() int {
	return len(v.sections)
}

// Next advances to the next section with wraparound. Navigation closes
// the overlay and discards any in-flight pan.
func (v *Viewer) Next() {
	v.navigate(1)
}

// Prev steps back with wraparound.
func (v *Viewer) Prev() {
	v.navigate(-1)
}

func (v *Viewer) navigate(delta int) {
	if len(v.sections) < 2 {
		return
	}
	v.current = (v.current + delta + len(v.sections)) % len(v.sections)
	v.overlay = nil
	v.pan.Cancel()
}

// Pan exposes the gesture state machine driving the horizontal offset.
func (v *Viewer) Pan() *PanController {
	return v.pan
}

// SetContainer records a container resize; the current offset is
// re-clamped against the new overflow.
func (v *Viewer) SetContainer(c Size) {
	v.container = c
	v.pan.SetClamp(func(p float64) float64 {
		return v.metrics(0).ClampPan(p)
	})
}

func (v *Viewer) metrics(pan float64) CoverMetrics {
	var natural Size
	if len(v.sections) > 0 {
		natural = v.sections[v.current].Natural
	}
	return Cover(natural, v.container, pan)
}

// Layout positions the current section's hotspots in container pixels
// under the current pan offset.
func (v *Viewer) Layout() []HotspotPlacement {
	if len(v.sections) == 0 {
		return nil
	}
	m := v.metrics(v.pan.Offset())
	section := v.sections[v.current]
	out := make([]HotspotPlacement, 0, len(section.Hotspots))
	for _, h := range section.Hotspots {
		x, y := m.ToPixels(h.X, h.Y)
		out = append(out, HotspotPlacement{
			Hotspot: h,
			X:       x,
			Y:       y,
			Visible: m.Visible(x, y),
		})
	}
	return out
}

// Open opens the detail overlay for a hotspot in the current section,
// replacing any overlay already open. A hotspot whose product does not
// resolve opens as label-only.
func (v *Viewer) Open(hotspotID string) (*Overlay, error) {
	if len(v.sections) == 0 {
		return nil, ErrNoSections
	}
	for _, h := range v.sections[v.current].Hotspots {
		if h.ID != hotspotID {
			continue
		}
		o := &Overlay{Hotspot: h}
		if h.ProductID != nil {
			o.Product = v.products[*h.ProductID]
		}
		v.overlay = o
		return o, nil
	}
	return nil, ErrUnknownHotspot
}

// Overlay returns the open detail sheet, or nil.
func (v *Viewer) Overlay() *Overlay {
	return v.overlay
}

// Close dismisses the detail overlay.
func (v *Viewer) Close() {
	v.overlay = nil
}

// SelectPack updates the overlay's pack choice.
func (v *Viewer) SelectPack(packID string) error {
	if v.overlay == nil {
		return ErrOverlayNotOpen
	}
	v.overlay.Selection.PackID = packID
	return nil
}

// SelectColor updates the overlay's color choice.
func (v *Viewer) SelectColor(color string) error {
	if v.overlay == nil {
		return ErrOverlayNotOpen
	}
	v.overlay.Selection.Color = color
	return nil
}

// SelectSize updates the overlay's size choice.
func (v *Viewer) SelectSize(size *model.SizeVariant) error {
	if v.overlay == nil {
		return ErrOverlayNotOpen
	}
	v.overlay.Selection.Size = size
	return nil
}

// ShowPrice reports whether the shop's configuration exposes prices.
func (v *Viewer) ShowPrice() bool {
	return v.visibility.IsVisible("productCardPrice")
}

// ShowStock reports whether stock badges are exposed.
func (v *Viewer) ShowStock() bool {
	return v.visibility.IsVisible("productCardStock")
}

// ShowDescription reports whether the product description is exposed.
func (v *Viewer) ShowDescription() bool {
	return v.visibility.IsVisible("productCardDescription")
}

// CanAddToCart reports whether the add-to-cart action is exposed.
func (v *Viewer) CanAddToCart() bool {
	return v.visibility.IsVisible("productCardAddToCart")
}

// CanReserve reports whether the reserve action is exposed.
func (v *Viewer) CanReserve() bool {
	return v.visibility.IsVisible("productCardReserve")
}

// AddToCart resolves the overlay's current selection into a cart line.
// The action fails when the shop hides add-to-cart, when the hotspot has
// no resolvable product, or when the product is out of stock; it never
// writes the cart itself, the caller owns that.
func (v *Viewer) AddToCart(quantity int) (*model.CartLine, error) {
	if v.overlay == nil {
		return nil, ErrOverlayNotOpen
	}
	if !v.CanAddToCart() {
		return nil, ErrActionHidden
	}
	return v.buildLine(quantity)
}

// Reserve builds the same line as AddToCart behind the reserve flag.
func (v *Viewer) Reserve(quantity int) (*model.CartLine, error) {
	if v.overlay == nil {
		return nil, ErrOverlayNotOpen
	}
	if !v.CanReserve() {
		return nil, ErrActionHidden
	}
	return v.buildLine(quantity)
}

func (v *Viewer) buildLine(quantity int) (*model.CartLine, error) {
	o := v.overlay
	if o.Product == nil {
		return nil, ErrNotPurchasable
	}
	if pricing.StatusOf(o.Product.Stock) == pricing.OutOfStock {
		return nil, ErrOutOfStock
	}
	if quantity < 1 {
		quantity = 1
	}
	q := o.Quote()
	line := &model.CartLine{
		LineID:           uuid.New().String(),
		ShopID:           o.Product.ShopID,
		ProductID:        o.Product.ID,
		Name:             o.Product.Name,
		Price:            q.UnitPrice,
		Quantity:         quantity,
		Unit:             o.Product.Unit,
		ImageURL:         o.Product.ImageURL,
		VariantSelection: q.Variant,
		FurnitureMeta:    o.Product.FurnitureMeta,
	}
	return line, nil
}
