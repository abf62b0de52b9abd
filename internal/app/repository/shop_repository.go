package repository

import (
	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/pkg/logger"
	"gorm.io/gorm"
)

type ShopRepository interface {
	Create(shop *model.Shop) error
	Update(shop *model.Shop) error
	FindByID(id string) (*model.Shop, error)
	FindBySlug(slug string) (*model.Shop, error)
	FindBySlugOrID(slugOrID string) (*model.Shop, error)
	UpdateVisibility(id string, flags model.VisibilityFlags) error
}

type shopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

func (r *shopRepository) Create(shop *model.Shop) error {
	logger.Debug("Creating shop in database", map[string]interface{}{
		"name":     shop.Name,
		"slug":     shop.Slug,
		"owner_id": shop.OwnerID,
	})

	if err := r.db.Create(shop).Error; err != nil {
		logger.Error("Failed to create shop in database", err, map[string]interface{}{
			"name": shop.Name,
			"slug": shop.Slug,
		})
		return err
	}

	logger.Debug("Shop created in database", map[string]interface{}{
		"shop_id": shop.ID,
		"slug":    shop.Slug,
	})
	return nil
}

func (r *shopRepository) Update(shop *model.Shop) error {
	logger.Debug("Updating shop in database", map[string]interface{}{
		"shop_id": shop.ID,
		"slug":    shop.Slug,
	})

	if err := r.db.Save(shop).Error; err != nil {
		logger.Error("Failed to update shop in database", err, map[string]interface{}{
			"shop_id": shop.ID,
		})
		return err
	}
	return nil
}

func (r *shopRepository) FindByID(id string) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.First(&shop, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepository) FindBySlug(slug string) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.First(&shop, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// FindBySlugOrID resolves the storefront path parameter, which accepts
// either form.
func (r *shopRepository) FindBySlugOrID(slugOrID string) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.First(&shop, "slug = ? OR id = ?", slugOrID, slugOrID).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepository) UpdateVisibility(id string, flags model.VisibilityFlags) error {
	logger.Debug("Updating shop visibility flags", map[string]interface{}{
		"shop_id": id,
		"flags":   len(flags),
	})

	if err := r.db.Model(&model.Shop{}).Where("id = ?", id).
		Update("visibility", flags).Error; err != nil {
		logger.Error("Failed to update shop visibility flags", err, map[string]interface{}{
			"shop_id": id,
		})
		return err
	}
	return nil
}
