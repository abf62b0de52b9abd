package service

import (
	"context"
	"errors"

	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/internal/app/repository"
	"github.com/rayshop/shopmap-backend/internal/pricing"
	"github.com/rayshop/shopmap-backend/pkg/logger"
	"github.com/rayshop/shopmap-backend/pkg/redis"
	"gorm.io/gorm"
)

var ErrInvalidPack = errors.New("pack option is invalid")

// ProductView is a product plus its derived stock status, which is
// recomputed on every read and never stored.
type ProductView struct {
	model.Product
	StockStatus pricing.StockStatus `json:"stock_status"`
}

type ProductService interface {
	List(filter repository.ProductFilter) ([]ProductView, error)
	Get(id string) (*ProductView, error)
	Create(product *model.Product) error
	Update(product *model.Product) error
	Delete(shopID, id string) error
}

type productService struct {
	productRepo repository.ProductRepository
	shopRepo    repository.ShopRepository
}

func NewProductService(productRepo repository.ProductRepository, shopRepo repository.ShopRepository) ProductService {
	return &productService{
		productRepo: productRepo,
		shopRepo:    shopRepo,
	}
}

func (s *productService) List(filter repository.ProductFilter) ([]ProductView, error) {
	products, err := s.productRepo.FindAll(filter)
	if err != nil {
		return nil, err
	}
	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = ProductView{Product: p, StockStatus: pricing.StatusOf(p.Stock)}
	}
	return views, nil
}

func (s *productService) Get(id string) (*ProductView, error) {
	p, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &ProductView{Product: *p, StockStatus: pricing.StatusOf(p.Stock)}, nil
}

func (s *productService) Create(product *model.Product) error {
	logger.Info("Creating product", map[string]interface{}{
		"name":    product.Name,
		"shop_id": product.ShopID,
	})

	if err := validatePacks(product.PackOptions); err != nil {
		return err
	}
	if err := s.productRepo.Create(product); err != nil {
		return err
	}
	s.invalidateCache(product.ShopID)
	return nil
}

func (s *productService) Update(product *model.Product) error {
	logger.Info("Updating product", map[string]interface{}{
		"product_id": product.ID,
	})

	existing, err := s.productRepo.FindByID(product.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if existing.ShopID != product.ShopID {
		return ErrProductNotFound
	}
	if err := validatePacks(product.PackOptions); err != nil {
		return err
	}
	if err := s.productRepo.Update(product); err != nil {
		return err
	}
	s.invalidateCache(product.ShopID)
	return nil
}

func (s *productService) Delete(shopID, id string) error {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if existing.ShopID != shopID {
		return ErrProductNotFound
	}
	if err := s.productRepo.Delete(id); err != nil {
		return err
	}
	s.invalidateCache(shopID)
	return nil
}

// invalidateCache drops the shop's cached storefront so catalog edits
// show up on the next request instead of after the cache TTL. Hotspots
// carry live product prices, so a product write is a storefront write.
func (s *productService) invalidateCache(shopID string) {
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

// validatePacks rejects pack options without an id or with a
// non-positive price; the resolver keys packs by id, so an id-less pack
// could never be selected or reconciled.
func validatePacks(packs model.PackOptionList) error {
	seen := make(map[string]bool, len(packs))
	for _, pack := range packs {
		if pack.ID == "" || pack.Price <= 0 || seen[pack.ID] {
			return ErrInvalidPack
		}
		seen[pack.ID] = true
	}
	return nil
}
