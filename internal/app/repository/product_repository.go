package repository

import (
	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductFilter struct {
	ShopID     string
	Category   string
	Search     string
	ActiveOnly bool
}

type ProductRepository interface {
	Create(product *model.Product) error
	Update(product *model.Product) error
	Delete(id string) error
	FindAll(filter ProductFilter) ([]model.Product, error)
	FindByID(id string) (*model.Product, error)
	FindByIDs(ids []string) ([]model.Product, error)
	FindByShop(shopID string) ([]model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":    product.Name,
		"shop_id": product.ShopID,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name":    product.Name,
			"shop_id": product.ShopID,
		})
		return err
	}
	return nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id string) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	if err := r.db.Delete(&model.Product{}, "id = ?", id).Error; err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}

func (r *productRepository) FindAll(filter ProductFilter) ([]model.Product, error) {
	query := r.db.Model(&model.Product{})
	if filter.ShopID != "" {
		query = query.Where("shop_id = ?", filter.ShopID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ?", like)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var products []model.Product
	if err := query.Order("name ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to find products", err, map[string]interface{}{
			"shop_id": filter.ShopID,
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindByID(id string) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads a batch of products in one query. Missing ids are
// simply absent from the result; the reconciler treats those as a
// catalog miss and leaves the cart line alone.
func (r *productRepository) FindByIDs(ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []model.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		logger.Error("Failed to find products by ids", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindByShop(shopID string) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.Where("shop_id = ?", shopID).Order("name ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to find products for shop", err, map[string]interface{}{
			"shop_id": shopID,
		})
		return nil, err
	}
	return products, nil
}
