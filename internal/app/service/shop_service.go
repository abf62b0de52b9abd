package service

import (
	"context"
	"errors"

	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/internal/app/repository"
	"github.com/rayshop/shopmap-backend/pkg/logger"
	"github.com/rayshop/shopmap-backend/pkg/redis"
	"gorm.io/gorm"
)

type ShopService interface {
	Get(id string) (*model.Shop, error)
	GetBySlugOrID(slugOrID string) (*model.Shop, error)
	GetVisibility(id string) (model.VisibilityFlags, error)
	UpdateVisibility(id string, flags model.VisibilityFlags) (model.VisibilityFlags, error)
}

type shopService struct {
	shopRepo repository.ShopRepository
}

func NewShopService(shopRepo repository.ShopRepository) ShopService {
	return &shopService{shopRepo: shopRepo}
}

func (s *shopService) Get(id string) (*model.Shop, error) {
	shop, err := s.shopRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	return shop, nil
}

func (s *shopService) GetBySlugOrID(slugOrID string) (*model.Shop, error) {
	shop, err := s.shopRepo.FindBySlugOrID(slugOrID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	return shop, nil
}

func (s *shopService) GetVisibility(id string) (model.VisibilityFlags, error) {
	shop, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return shop.Visibility, nil
}

// UpdateVisibility replaces the shop's affordance flags. Keys absent
// from the stored map stay visible by default, so a merchant only ever
// stores the flags they turned off or explicitly pinned on.
func (s *shopService) UpdateVisibility(id string, flags model.VisibilityFlags) (model.VisibilityFlags, error) {
	shop, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	logger.Info("Updating shop visibility flags", map[string]interface{}{
		"shop_id": id,
		"flags":   len(flags),
	})

	if err := s.shopRepo.UpdateVisibility(id, flags); err != nil {
		return nil, err
	}

	if err := redis.InvalidateActiveMap(context.Background(), shop.Slug); err != nil {
		logger.Warn("Failed to invalidate storefront cache", map[string]interface{}{
			"slug":  shop.Slug,
			"error": err.Error(),
		})
	}
	return flags, nil
}
