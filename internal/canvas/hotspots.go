package canvas

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rayshop/shopmap-backend/internal/app/model"
)

var (
	ErrNotAddingMode   = errors.New("hotspot placement requires adding mode")
	ErrHotspotNotFound = errors.New("hotspot not found")
)

// HotspotStore is the editing session's working copy of a map's hotspots:
// an ordered collection with a selection cursor and an adding-mode flag.
// It is driven from a single goroutine and persisted as a whole through
// the layout-save call; it never talks to the catalog, so product links
// are taken at face value here and validated at read time by the viewer
// and the cart reconciler.
type HotspotStore struct {
	hotspots []model.Hotspot
	selected string
	adding   bool
}

// NewHotspotStore starts an editing session over an existing layout.
// Incoming coordinates are clamped so a corrupt row cannot wedge the
// editor.
func NewHotspotStore(initial []model.Hotspot) *HotspotStore {
	hs := make([]model.Hotspot, len(initial))
	copy(hs, initial)
	for i := range hs {
		hs[i].X = ClampPercent(hs[i].X)
		hs[i].Y = ClampPercent(hs[i].Y)
	}
	return &HotspotStore{hotspots: hs}
}

// SetAddingMode arms or disarms one-shot placement.
func (s *HotspotStore) SetAddingMode(on bool) {
	s.adding = on
}

// AddingMode reports whether the next canvas click places a hotspot.
func (s *HotspotStore) AddingMode() bool {
	return s.adding
}

// Create places a new hotspot at a percentage position and selects it.
// Only legal in adding mode; placement turns adding mode off so each arm
// yields exactly one hotspot.
func (s *HotspotStore) Create(x, y float64) (string, error) {
	if !s.adding {
		return "", ErrNotAddingMode
	}
	h := model.Hotspot{
		ID:        uuid.New().String(),
		X:         ClampPercent(x),
		Y:         ClampPercent(y),
		SortOrder: len(s.hotspots),
	}
	s.hotspots = append(s.hotspots, h)
	s.adding = false
	s.selected = h.ID
	return h.ID, nil
}

// Move repositions a hotspot, clamping to the valid range.
func (s *HotspotStore) Move(id string, x, y float64) error {
	h := s.find(id)
	if h == nil {
		return ErrHotspotNotFound
	}
	h.X = ClampPercent(x)
	h.Y = ClampPercent(y)
	return nil
}

// Relabel sets the display label; an empty label clears it.
func (s *HotspotStore) Relabel(id, label string) error {
	h := s.find(id)
	if h == nil {
		return ErrHotspotNotFound
	}
	if label == "" {
		h.Label = nil
	} else {
		h.Label = &label
	}
	return nil
}

// Relink binds the hotspot to a catalog product, or unbinds it when
// productID is empty. Existence of the product is deliberately not
// checked: the catalog is edited independently and dangling links are
// resolved as label-only at read time.
func (s *HotspotStore) Relink(id, productID string) error {
	h := s.find(id)
	if h == nil {
		return ErrHotspotNotFound
	}
	if productID == "" {
		h.ProductID = nil
	} else {
		h.ProductID = &productID
	}
	return nil
}

// SetPriceOverride sets or clears the hotspot-level price override.
func (s *HotspotStore) SetPriceOverride(id string, price *float64) error {
	h := s.find(id)
	if h == nil {
		return ErrHotspotNotFound
	}
	h.PriceOverride = price
	return nil
}

// AssignSection moves the hotspot to another section (nil for the map's
// implicit section).
func (s *HotspotStore) AssignSection(id string, sectionID *string) error {
	h := s.find(id)
	if h == nil {
		return ErrHotspotNotFound
	}
	h.SectionID = sectionID
	return nil
}

// Delete removes a hotspot. Deleting the selected one clears the
// selection.
func (s *HotspotStore) Delete(id string) error {
	for i := range s.hotspots {
		if s.hotspots[i].ID == id {
			s.hotspots = append(s.hotspots[:i], s.hotspots[i+1:]...)
			if s.selected == id {
				s.selected = ""
			}
			return nil
		}
	}
	return ErrHotspotNotFound
}

// Select moves the editing cursor; an empty id clears it. At most one
// hotspot is selected at a time.
func (s *HotspotStore) Select(id string) error {
	if id == "" {
		s.selected = ""
		return nil
	}
	if s.find(id) == nil {
		return ErrHotspotNotFound
	}
	s.selected = id
	return nil
}

// Selected returns the selected hotspot id, or "".
func (s *HotspotStore) Selected() string {
	return s.selected
}

// Get returns a copy of a hotspot.
func (s *HotspotStore) Get(id string) (model.Hotspot, bool) {
	h := s.find(id)
	if h == nil {
		return model.Hotspot{}, false
	}
	return *h, true
}

// List returns the hotspots in order, as a copy safe to hand to the
// persistence layer.
func (s *HotspotStore) List() []model.Hotspot {
	out := make([]model.Hotspot, len(s.hotspots))
	copy(out, s.hotspots)
	return out
}

// Len returns the number of hotspots.
func (s *HotspotStore) Len() int {
	return len(s.hotspots)
}

func (s *HotspotStore) find(id string) *model.Hotspot {
	for i := range s.hotspots {
		if s.hotspots[i].ID == id {
			return &s.hotspots[i]
		}
	}
	return nil
}
