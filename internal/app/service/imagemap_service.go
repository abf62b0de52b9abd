package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/internal/app/repository"
	"github.com/rayshop/shopmap-backend/internal/canvas"
	"github.com/rayshop/shopmap-backend/pkg/logger"
	"github.com/rayshop/shopmap-backend/pkg/redis"
	"gorm.io/gorm"
)

var (
	ErrShopNotFound     = errors.New("shop not found")
	ErrShopInactive     = errors.New("shop is inactive")
	ErrMapNotFound      = errors.New("image map not found")
	ErrMapImageRequired = errors.New("image map requires an image")
	ErrSectionIndex     = errors.New("hotspot references an unknown section index")
)

const defaultSectionName = "Main"

func newID() string {
	return uuid.New().String()
}

// SectionInput is one section in a layout-save request. A nil ID means a
// new section; hotspots reference sections positionally.
type SectionInput struct {
	ID        *string `json:"id"`
	Name      string  `json:"name"`
	ImageURL  *string `json:"image_url"`
	Width     *int    `json:"width"`
	Height    *int    `json:"height"`
	SortOrder *int    `json:"sort_order"`
}

// HotspotInput is one hotspot in a layout-save request. SectionIndex
// points into the request's sections array; the service resolves it to a
// section id so the client never has to know ids of sections it just
// created.
type HotspotInput struct {
	ID            *string  `json:"id"`
	SectionIndex  *int     `json:"section_index"`
	ProductID     *string  `json:"product_id"`
	X             float64  `json:"x"`
	Y             float64  `json:"y"`
	Label         *string  `json:"label"`
	PriceOverride *float64 `json:"price_override"`
	Confidence    *float64 `json:"confidence"`
}

// LayoutInput is the full-replace payload for a map's sections and
// hotspots.
type LayoutInput struct {
	Sections []SectionInput `json:"sections"`
	Hotspots []HotspotInput `json:"hotspots"`
}

// StorefrontView is what the shopper-facing endpoint returns: the shop,
// its visibility flags, and the active map (nil when none exists, which
// the client renders as an explicit empty state).
type StorefrontView struct {
	Shop     *model.Shop           `json:"shop"`
	Map      *model.ImageMap       `json:"map"`
	Products []model.Product       `json:"products"`
	Flags    model.VisibilityFlags `json:"visibility"`
}

type ImageMapService interface {
	ListForManage(shopID string) ([]model.ImageMap, error)
	Get(shopID, mapID string) (*model.ImageMap, error)
	Create(shopID, imageURL string, title *string, width, height *int) (*model.ImageMap, error)
	Activate(shopID, mapID string) (*model.ImageMap, error)
	SaveLayout(shopID, mapID string, layout LayoutInput) (*model.ImageMap, error)
	Delete(shopID, mapID string) error
	Storefront(ctx context.Context, slugOrID string) (*StorefrontView, error)
	Maintain() error
}

type imageMapService struct {
	mapRepo     repository.ImageMapRepository
	shopRepo    repository.ShopRepository
	productRepo repository.ProductRepository
}

func NewImageMapService(
	mapRepo repository.ImageMapRepository,
	shopRepo repository.ShopRepository,
	productRepo repository.ProductRepository,
) ImageMapService {
	return &imageMapService{
		mapRepo:     mapRepo,
		shopRepo:    shopRepo,
		productRepo: productRepo,
	}
}

// ListForManage returns a shop's maps for the dashboard, active first.
// Listing doubles as a repair pass: maps damaged by older clients are
// healed before they are returned.
func (s *imageMapService) ListForManage(shopID string) ([]model.ImageMap, error) {
	logger.Debug("Listing image maps for manage view", map[string]interface{}{
		"shop_id": shopID,
	})

	maps, err := s.mapRepo.FindByShop(shopID)
	if err != nil {
		return nil, err
	}

	for i := range maps {
		if err := s.repair(&maps[i]); err != nil {
			logger.Warn("Failed to repair image map, returning as stored", map[string]interface{}{
				"map_id": maps[i].ID,
				"error":  err.Error(),
			})
		}
	}

	logger.Info("Image maps listed", map[string]interface{}{
		"shop_id": shopID,
		"count":   len(maps),
	})
	return maps, nil
}

func (s *imageMapService) Get(shopID, mapID string) (*model.ImageMap, error) {
	m, err := s.mapRepo.FindByID(mapID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMapNotFound
		}
		return nil, err
	}
	if m.ShopID != shopID {
		return nil, ErrMapNotFound
	}
	return m, nil
}

// Create adds a new draft map. Maps are born inactive; going live is a
// separate, explicit activation step.
func (s *imageMapService) Create(shopID, imageURL string, title *string, width, height *int) (*model.ImageMap, error) {
	logger.Info("Creating image map", map[string]interface{}{
		"shop_id": shopID,
	})

	if strings.TrimSpace(imageURL) == "" {
		return nil, ErrMapImageRequired
	}
	if _, err := s.shopRepo.FindByID(shopID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}

	m := &model.ImageMap{
		ShopID:   shopID,
		Title:    title,
		ImageURL: imageURL,
		Width:    width,
		Height:   height,
		IsActive: false,
	}
	if err := s.mapRepo.Create(m); err != nil {
		return nil, err
	}

	logger.Info("Image map created", map[string]interface{}{
		"map_id":  m.ID,
		"shop_id": shopID,
	})
	return m, nil
}

// Activate makes a map the shop's live one, deactivating all others in
// the same transaction, and drops the cached storefront.
func (s *imageMapService) Activate(shopID, mapID string) (*model.ImageMap, error) {
	logger.Info("Activating image map", map[string]interface{}{
		"shop_id": shopID,
		"map_id":  mapID,
	})

	if err := s.mapRepo.Activate(shopID, mapID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMapNotFound
		}
		return nil, err
	}

	s.invalidateCache(shopID)

	m, err := s.mapRepo.FindByID(mapID)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// SaveLayout is the full-replace write behind the editor's save button.
// Positions are clamped into the valid percentage range rather than
// rejected, so a client rounding error cannot lose a hotspot.
func (s *imageMapService) SaveLayout(shopID, mapID string, layout LayoutInput) (*model.ImageMap, error) {
	logger.Info("Saving image map layout", map[string]interface{}{
		"shop_id":  shopID,
		"map_id":   mapID,
		"sections": len(layout.Sections),
		"hotspots": len(layout.Hotspots),
	})

	m, err := s.Get(shopID, mapID)
	if err != nil {
		return nil, err
	}

	sections := make([]model.ImageSection, 0, len(layout.Sections))
	for i, in := range layout.Sections {
		sec := model.ImageSection{
			MapID:     m.ID,
			Name:      in.Name,
			ImageURL:  in.ImageURL,
			Width:     in.Width,
			Height:    in.Height,
			SortOrder: i,
		}
		if in.ID != nil && *in.ID != "" {
			sec.ID = *in.ID
		} else {
			sec.ID = newID()
		}
		if in.SortOrder != nil {
			sec.SortOrder = *in.SortOrder
		}
		sections = append(sections, sec)
	}

	hotspots := make([]model.Hotspot, 0, len(layout.Hotspots))
	for i, in := range layout.Hotspots {
		h := model.Hotspot{
			MapID:         m.ID,
			ProductID:     in.ProductID,
			X:             canvas.ClampPercent(in.X),
			Y:             canvas.ClampPercent(in.Y),
			Label:         in.Label,
			SortOrder:     i,
			PriceOverride: in.PriceOverride,
			Confidence:    in.Confidence,
		}
		if in.ID != nil && *in.ID != "" {
			h.ID = *in.ID
		} else {
			h.ID = newID()
		}
		if in.SectionIndex != nil {
			if *in.SectionIndex < 0 || *in.SectionIndex >= len(sections) {
				return nil, ErrSectionIndex
			}
			id := sections[*in.SectionIndex].ID
			h.SectionID = &id
		}
		hotspots = append(hotspots, h)
	}

	if err := s.mapRepo.ReplaceLayout(m.ID, sections, hotspots); err != nil {
		return nil, err
	}

	s.invalidateCache(shopID)

	saved, err := s.mapRepo.FindByID(m.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Image map layout saved", map[string]interface{}{
		"map_id":   saved.ID,
		"sections": len(saved.Sections),
		"hotspots": len(saved.Hotspots),
	})
	return saved, nil
}

func (s *imageMapService) Delete(shopID, mapID string) error {
	if _, err := s.Get(shopID, mapID); err != nil {
		return err
	}
	if err := s.mapRepo.Delete(mapID); err != nil {
		return err
	}
	s.invalidateCache(shopID)
	return nil
}

// Storefront resolves the shopper view for a shop: the active map with
// hotspots of inactive products filtered out, the products the remaining
// hotspots reference, and the shop's visibility flags. Served from the
// cache when it is warm.
func (s *imageMapService) Storefront(ctx context.Context, slugOrID string) (*StorefrontView, error) {
	shop, err := s.shopRepo.FindBySlugOrID(slugOrID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	if !shop.IsActive {
		return nil, ErrShopInactive
	}

	if cached, err := redis.GetCachedActiveMap(ctx, shop.Slug); err == nil && cached != nil {
		var view StorefrontView
		if err := json.Unmarshal(cached, &view); err == nil {
			logger.Debug("Storefront served from cache", map[string]interface{}{
				"slug": shop.Slug,
			})
			return &view, nil
		}
	}

	view := &StorefrontView{
		Shop:  shop,
		Flags: shop.Visibility,
	}

	m, err := s.mapRepo.FindActiveByShop(shop.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// No active map is a normal state: the client shows an empty
		// storefront, not an error.
	} else {
		if err := s.repair(m); err != nil {
			logger.Warn("Failed to repair active image map", map[string]interface{}{
				"map_id": m.ID,
				"error":  err.Error(),
			})
		}
		s.filterInactive(m)
		view.Map = m
		view.Products = collectProducts(m)
	}

	if payload, err := json.Marshal(view); err == nil {
		if err := redis.CacheActiveMap(ctx, shop.Slug, payload); err != nil {
			logger.Warn("Failed to cache storefront", map[string]interface{}{
				"slug":  shop.Slug,
				"error": err.Error(),
			})
		}
	}

	return view, nil
}

// Maintain runs the scheduled repair pass over every map: heal section
// layouts and purge inline image payloads left behind by abandoned
// drafts. Used by the cron scheduler.
func (s *imageMapService) Maintain() error {
	logger.Info("Running image map maintenance pass")

	maps, err := s.mapRepo.FindAll()
	if err != nil {
		return err
	}

	repaired := 0
	for i := range maps {
		before := len(maps[i].Sections)
		purged := maps[i].ImageURL
		if err := s.repair(&maps[i]); err != nil {
			logger.Warn("Maintenance repair failed for map", map[string]interface{}{
				"map_id": maps[i].ID,
				"error":  err.Error(),
			})
			continue
		}
		if len(maps[i].Sections) != before || maps[i].ImageURL != purged {
			repaired++
		}
	}

	logger.Info("Image map maintenance pass completed", map[string]interface{}{
		"maps":     len(maps),
		"repaired": repaired,
	})
	return nil
}

// repair applies two fixes older clients left behind:
//   - a map with an image and hotspots but no sections gets a default
//     section backed by the map image, so the viewer always has a page
//     to show;
//   - a map whose image is an inline data URL and which has no hotspots
//     is an abandoned draft holding megabytes of base64 in a text
//     column; the payload is dropped.
func (s *imageMapService) repair(m *model.ImageMap) error {
	if m.ImageURL != "" && len(m.Hotspots) > 0 && len(m.Sections) == 0 {
		logger.Info("Healing image map without sections", map[string]interface{}{
			"map_id":   m.ID,
			"hotspots": len(m.Hotspots),
		})
		sec := model.ImageSection{
			ID:    newID(),
			MapID: m.ID,
			Name:  defaultSectionName,
		}
		if m.Width != nil {
			sec.Width = m.Width
		}
		if m.Height != nil {
			sec.Height = m.Height
		}
		hotspots := make([]model.Hotspot, len(m.Hotspots))
		copy(hotspots, m.Hotspots)
		for i := range hotspots {
			id := sec.ID
			hotspots[i].SectionID = &id
		}
		if err := s.mapRepo.ReplaceLayout(m.ID, []model.ImageSection{sec}, hotspots); err != nil {
			return err
		}
		m.Sections = []model.ImageSection{sec}
		m.Hotspots = hotspots
	}

	if strings.HasPrefix(m.ImageURL, "data:") && len(m.Hotspots) == 0 {
		logger.Info("Purging inline image payload from empty map", map[string]interface{}{
			"map_id": m.ID,
			"bytes":  len(m.ImageURL),
		})
		m.ImageURL = ""
		if err := s.mapRepo.Update(m); err != nil {
			return err
		}
	}
	return nil
}

// filterInactive drops hotspots whose product exists but has been
// deactivated. Dangling references (product gone entirely) are kept and
// rendered label-only.
func (s *imageMapService) filterInactive(m *model.ImageMap) {
	kept := m.Hotspots[:0]
	for _, h := range m.Hotspots {
		if h.ProductID != nil && h.Product != nil && !h.Product.IsActive {
			continue
		}
		kept = append(kept, h)
	}
	m.Hotspots = kept
}

func (s *imageMapService) invalidateCache(shopID string) {
	shop, err := s.shopRepo.FindByID(shopID)
	if err != nil {
		return
	}
	if err := redis.InvalidateActiveMap(context.Background(), shop.Slug); err != nil {
		logger.Warn("Failed to invalidate storefront cache", map[string]interface{}{
			"slug":  shop.Slug,
			"error": err.Error(),
		})
	}
}

func collectProducts(m *model.ImageMap) []model.Product {
	seen := make(map[string]bool)
	var products []model.Product
	for _, h := range m.Hotspots {
		if h.Product == nil || seen[h.Product.ID] {
			continue
		}
		seen[h.Product.ID] = true
		products = append(products, *h.Product)
	}
	return products
}
