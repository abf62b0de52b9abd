package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayshop/shopmap-backend/internal/app/model"
)

func strPtr(s string) *string   { return &s }
func intPtr(v int) *int         { return &v }
func f64Ptr(v float64) *float64 { return &v }

func viewerFixtureMap() *model.ImageMap {
	return &model.ImageMap{
		ID:       "map-1",
		ShopID:   "shop-1",
		ImageURL: "https://cdn.example.com/store.jpg",
		Width:    intPtr(1600),
		Height:   intPtr(900),
		IsActive: true,
		Sections: []model.ImageSection{
			{ID: "sec-b", MapID: "map-1", Name: "Back wall", SortOrder: 1, ImageURL: strPtr("https://cdn.example.com/back.jpg"), Width: intPtr(1200), Height: intPtr(800)},
			{ID: "sec-a", MapID: "map-1", Name: "Front", SortOrder: 0},
		},
		Hotspots: []model.Hotspot{
			{ID: "h-active", MapID: "map-1", SectionID: strPtr("sec-a"), ProductID: strPtr("prod-active"), X: 50, Y: 50},
			{ID: "h-inactive", MapID: "map-1", SectionID: strPtr("sec-a"), ProductID: strPtr("prod-inactive"), X: 10, Y: 10},
			{ID: "h-dangling", MapID: "map-1", SectionID: strPtr("sec-a"), ProductID: strPtr("prod-deleted"), X: 20, Y: 20, Label: strPtr("Old shelf")},
			{ID: "h-unsectioned", MapID: "map-1", X: 60, Y: 60},
			{ID: "h-back", MapID: "map-1", SectionID: strPtr("sec-b"), X: 70, Y: 70},
		},
	}
}

func viewerFixtureProducts() []model.Product {
	return []model.Product{
		{
			ID: "prod-active", ShopID: "shop-1", Name: "Teapot", Price: 45, Stock: 10, IsActive: true, Unit: "ea",
			Sizes: model.SizeVariantList{{Label: "L", Price: 52}},
		},
		{ID: "prod-inactive", ShopID: "shop-1", Name: "Retired", Price: 10, Stock: 3, IsActive: false},
	}
}

func newTestViewer(t *testing.T, visibility model.VisibilityFlags) (*Viewer, *CoalescingScheduler) {
	t.Helper()
	frames := &CoalescingScheduler{}
	v := NewViewer(viewerFixtureMap(), viewerFixtureProducts(), visibility, Size{W: 800, H: 800}, frames)
	return v, frames
}

func TestNewViewer_SectionsSortedAndHotspotsAssigned(t *testing.T) {
	v, _ := newTestViewer(t, nil)

	require.Equal(t, 2, v.SectionCount())
	sec, err := v.Section()
	require.NoError(t, err)
	assert.Equal(t, "Front", sec.Name)

	ids := make([]string, 0, len(sec.Hotspots))
	for _, h := range sec.Hotspots {
		ids = append(ids, h.ID)
	}
	// The inactive product's hotspot is filtered; the dangling reference
	// stays as a label-only entry; the unsectioned hotspot lands in the
	// first section.
	assert.ElementsMatch(t, []string{"h-active", "h-dangling", "h-unsectioned"}, ids)
	assert.NotContains(t, ids, "h-inactive")
}

func TestNewViewer_ImplicitSectionFromMapImage(t *testing.T) {
	m := viewerFixtureMap()
	m.Sections = nil
	frames := &CoalescingScheduler{}
	v := NewViewer(m, viewerFixtureProducts(), nil, Size{W: 800, H: 800}, frames)

	require.Equal(t, 1, v.SectionCount())
	sec, err := v.Section()
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/store.jpg", sec.ImageURL)
	assert.Equal(t, Size{W: 1600, H: 900}, sec.Natural)
	// Every surviving hotspot lands in the implicit section.
	assert.Len(t, sec.Hotspots, 4)
}

func TestViewer_NavigationWrapsAndResetsState(t *testing.T) {
	v, frames := newTestViewer(t, nil)

	_, err := v.Open("h-active")
	require.NoError(t, err)
	require.NotNil(t, v.Overlay())

	v.Pan().Start(0)
	v.Pan().Move(200)
	frames.Flush()
	require.NotZero(t, v.Pan().Offset())

	v.Next()
	sec, _ := v.Section()
	assert.Equal(t, "Back wall", sec.Name)
	// Navigation closes the overlay and discards the pan.
	assert.Nil(t, v.Overlay())
	assert.Zero(t, v.Pan().Offset())

	v.Next()
	sec, _ = v.Section()
	assert.Equal(t, "Front", sec.Name)

	v.Prev()
	sec, _ = v.Section()
	assert.Equal(t, "Back wall", sec.Name)
}

func TestViewer_LayoutPositionsHotspots(t *testing.T) {
	v, _ := newTestViewer(t, nil)

	placements := v.Layout()
	require.Len(t, placements, 3)

	m := Cover(Size{W: 1600, H: 900}, Size{W: 800, H: 800}, 0)
	for _, p := range placements {
		wantX, wantY := m.ToPixels(p.Hotspot.X, p.Hotspot.Y)
		assert.InDelta(t, wantX, p.X, 1e-9)
		assert.InDelta(t, wantY, p.Y, 1e-9)
		assert.Equal(t, m.Visible(wantX, wantY), p.Visible)
	}
}

func TestViewer_OpenUnknownHotspot(t *testing.T) {
	v, _ := newTestViewer(t, nil)

	_, err := v.Open("h-back") // belongs to the other section
	assert.ErrorIs(t, err, ErrUnknownHotspot)

	_, err = v.Open("nope")
	assert.ErrorIs(t, err, ErrUnknownHotspot)
}

func TestViewer_OverlayQuoteTracksSelection(t *testing.T) {
	v, _ := newTestViewer(t, nil)

	o, err := v.Open("h-active")
	require.NoError(t, err)
	require.True(t, o.Purchasable())
	assert.Equal(t, 45.0, o.Quote().UnitPrice)

	require.NoError(t, v.SelectColor("navy"))
	require.NoError(t, v.SelectSize(&model.SizeVariant{Label: "L", Price: 52}))
	assert.Equal(t, 52.0, o.Quote().UnitPrice)
}

func TestViewer_AddToCartBuildsLine(t *testing.T) {
	v, _ := newTestViewer(t, nil)

	_, err := v.Open("h-active")
	require.NoError(t, err)

	line, err := v.AddToCart(3)
	require.NoError(t, err)
	assert.NotEmpty(t, line.LineID)
	assert.Equal(t, "shop-1", line.ShopID)
	assert.Equal(t, "prod-active", line.ProductID)
	assert.Equal(t, "Teapot", line.Name)
	assert.Equal(t, 45.0, line.Price)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, "ea", line.Unit)

	// A second add yields a distinct line identity.
	other, err := v.AddToCart(1)
	require.NoError(t, err)
	assert.NotEqual(t, line.LineID, other.LineID)
	assert.Equal(t, 1, other.Quantity)
}

func TestViewer_AddToCartDanglingProduct(t *testing.T) {
	v, _ := newTestViewer(t, nil)

	_, err := v.Open("h-dangling")
	require.NoError(t, err)

	_, err = v.AddToCart(1)
	assert.ErrorIs(t, err, ErrNotPurchasable)
}

func TestViewer_AddToCartOutOfStock(t *testing.T) {
	m := viewerFixtureMap()
	products := viewerFixtureProducts()
	products[0].Stock = 0
	frames := &CoalescingScheduler{}
	v := NewViewer(m, products, nil, Size{W: 800, H: 800}, frames)

	o, err := v.Open("h-active")
	require.NoError(t, err)
	assert.False(t, o.Purchasable())

	_, err = v.AddToCart(1)
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestViewer_VisibilityGatesActions(t *testing.T) {
	flags := model.VisibilityFlags{
		"productCardPrice":     false,
		"productCardAddToCart": false,
	}
	v, _ := newTestViewer(t, flags)

	assert.False(t, v.ShowPrice())
	assert.False(t, v.CanAddToCart())
	// Unset keys default to visible.
	assert.True(t, v.ShowStock())
	assert.True(t, v.CanReserve())

	_, err := v.Open("h-active")
	require.NoError(t, err)

	_, err = v.AddToCart(1)
	assert.ErrorIs(t, err, ErrActionHidden)

	// Reserve is still exposed and builds the same kind of line.
	line, err := v.Reserve(2)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
}

func TestViewer_ActionsRequireOpenOverlay(t *testing.T) {
	v, _ := newTestViewer(t, nil)

	_, err := v.AddToCart(1)
	assert.ErrorIs(t, err, ErrOverlayNotOpen)
	assert.ErrorIs(t, v.SelectPack("p1"), ErrOverlayNotOpen)
	assert.ErrorIs(t, v.SelectColor("navy"), ErrOverlayNotOpen)
}

func TestViewer_EmptyMap(t *testing.T) {
	frames := &CoalescingScheduler{}
	v := NewViewer(nil, nil, nil, Size{W: 800, H: 800}, frames)

	assert.True(t, v.Empty())
	_, err := v.Section()
	assert.ErrorIs(t, err, ErrNoSections)
	assert.Nil(t, v.Layout())

	// Navigation on an empty viewer is a no-op, not a panic.
	v.Next()
	v.Prev()
}

func TestViewer_PriceOverrideOnHotspot(t *testing.T) {
	m := viewerFixtureMap()
	m.Hotspots[0].PriceOverride = f64Ptr(30)
	frames := &CoalescingScheduler{}
	v := NewViewer(m, viewerFixtureProducts(), nil, Size{W: 800, H: 800}, frames)

	o, err := v.Open("h-active")
	require.NoError(t, err)
	assert.Equal(t, 30.0, o.Quote().UnitPrice)
}
