package repository

import (
	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/pkg/logger"
	"gorm.io/gorm"
)

type ImageMapRepository interface {
	Create(m *model.ImageMap) error
	Update(m *model.ImageMap) error
	Delete(id string) error
	FindByID(id string) (*model.ImageMap, error)
	FindAll() ([]model.ImageMap, error)
	FindByShop(shopID string) ([]model.ImageMap, error)
	FindActiveByShop(shopID string) (*model.ImageMap, error)
	Activate(shopID, mapID string) error
	ReplaceLayout(mapID string, sections []model.ImageSection, hotspots []model.Hotspot) error
}

type imageMapRepository struct {
	db *gorm.DB
}

func NewImageMapRepository(db *gorm.DB) ImageMapRepository {
	return &imageMapRepository{db: db}
}

func (r *imageMapRepository) Create(m *model.ImageMap) error {
	logger.Debug("Creating image map in database", map[string]interface{}{
		"shop_id": m.ShopID,
	})

	if err := r.db.Create(m).Error; err != nil {
		logger.Error("Failed to create image map in database", err, map[string]interface{}{
			"shop_id": m.ShopID,
		})
		return err
	}
	return nil
}

func (r *imageMapRepository) Update(m *model.ImageMap) error {
	logger.Debug("Updating image map in database", map[string]interface{}{
		"map_id": m.ID,
	})

	if err := r.db.Save(m).Error; err != nil {
		logger.Error("Failed to update image map in database", err, map[string]interface{}{
			"map_id": m.ID,
		})
		return err
	}
	return nil
}

func (r *imageMapRepository) Delete(id string) error {
	logger.Debug("Deleting image map from database", map[string]interface{}{
		"map_id": id,
	})

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Hotspot{}, "map_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.ImageSection{}, "map_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.ImageMap{}, "id = ?", id).Error
	})
}

func (r *imageMapRepository) FindByID(id string) (*model.ImageMap, error) {
	var m model.ImageMap
	err := r.db.
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Hotspots", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Hotspots.Product").
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindAll loads every map with its layout, for the maintenance pass.
func (r *imageMapRepository) FindAll() ([]model.ImageMap, error) {
	var maps []model.ImageMap
	err := r.db.
		Preload("Sections").
		Preload("Hotspots").
		Find(&maps).Error
	if err != nil {
		logger.Error("Failed to load image maps", err, nil)
		return nil, err
	}
	return maps, nil
}

// FindByShop lists a shop's maps for the dashboard, active first and
// then most recently edited.
func (r *imageMapRepository) FindByShop(shopID string) ([]model.ImageMap, error) {
	var maps []model.ImageMap
	err := r.db.
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Hotspots", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("shop_id = ?", shopID).
		Order("is_active DESC").
		Order("updated_at DESC").
		Find(&maps).Error
	if err != nil {
		logger.Error("Failed to find image maps for shop", err, map[string]interface{}{
			"shop_id": shopID,
		})
		return nil, err
	}
	return maps, nil
}

func (r *imageMapRepository) FindActiveByShop(shopID string) (*model.ImageMap, error) {
	var m model.ImageMap
	err := r.db.
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Hotspots", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Hotspots.Product").
		First(&m, "shop_id = ? AND is_active = ?", shopID, true).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Activate flips the single-active switch in one transaction: every
// other map of the shop is deactivated before the target is activated,
// so the one-active-map-per-shop invariant holds even if the caller
// races itself.
func (r *imageMapRepository) Activate(shopID, mapID string) error {
	logger.Debug("Activating image map", map[string]interface{}{
		"shop_id": shopID,
		"map_id":  mapID,
	})

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ImageMap{}).
			Where("shop_id = ? AND id <> ?", shopID, mapID).
			Update("is_active", false).Error; err != nil {
			return err
		}
		result := tx.Model(&model.ImageMap{}).
			Where("id = ? AND shop_id = ?", mapID, shopID).
			Update("is_active", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ReplaceLayout performs the full-replace save: within one transaction
// the map's sections and hotspots are deleted and the incoming layout is
// inserted in their place. Partial layouts never become visible.
func (r *imageMapRepository) ReplaceLayout(mapID string, sections []model.ImageSection, hotspots []model.Hotspot) error {
	logger.Debug("Replacing image map layout", map[string]interface{}{
		"map_id":   mapID,
		"sections": len(sections),
		"hotspots": len(hotspots),
	})

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&model.Hotspot{}, "map_id = ?", mapID).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&model.ImageSection{}, "map_id = ?", mapID).Error; err != nil {
			return err
		}
		if len(sections) > 0 {
			if err := tx.Create(&sections).Error; err != nil {
				return err
			}
		}
		if len(hotspots) > 0 {
			if err := tx.Create(&hotspots).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&model.ImageMap{}).Where("id = ?", mapID).
			Update("updated_at", tx.NowFunc()).Error; err != nil {
			return err
		}
		return nil
	})
}
