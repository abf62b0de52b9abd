package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/internal/app/service"
	apperrors "github.com/rayshop/shopmap-backend/internal/errors"
	"github.com/rayshop/shopmap-backend/internal/middleware"
)

type ShopController struct {
	shopService service.ShopService
}

func NewShopController(shopService service.ShopService) *ShopController {
	return &ShopController{
		shopService: shopService,
	}
}

// GetShop returns a shop by slug or id
// GET /api/v1/shops/:slug
func (ctrl *ShopController) GetShop(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	slug := c.Param("slug")

	shop, err := ctrl.shopService.GetBySlugOrID(slug)
	if err != nil {
		if errors.Is(err, service.ErrShopNotFound) {
			apperrors.NotFound(c, apperrors.ShopNotFound, "Shop not found")
			return
		}
		log.Error("Failed to fetch shop", err, map[string]interface{}{
			"slug": slug,
		})
		apperrors.InternalError(c, "Failed to fetch shop")
		return
	}

	c.JSON(http.StatusOK, shop)
}

// GetVisibility returns the shop's affordance flags
// GET /api/v1/manage/shops/:shopId/visibility
func (ctrl *ShopController) GetVisibility(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	shopID := c.Param("shopId")

	flags, err := ctrl.shopService.GetVisibility(shopID)
	if err != nil {
		if errors.Is(err, service.ErrShopNotFound) {
			apperrors.NotFound(c, apperrors.ShopNotFound, "Shop not found")
			return
		}
		log.Error("Failed to fetch visibility flags", err, map[string]interface{}{
			"shop_id": shopID,
		})
		apperrors.InternalError(c, "Failed to fetch visibility flags")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"visibility": flags,
	})
}

// UpdateVisibility replaces the shop's affordance flags
// PUT /api/v1/manage/shops/:shopId/visibility
func (ctrl *ShopController) UpdateVisibility(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	shopID := c.Param("shopId")

	var flags model.VisibilityFlags
	if err := c.ShouldBindJSON(&flags); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid visibility data")
		return
	}

	updated, err := ctrl.shopService.UpdateVisibility(shopID, flags)
	if err != nil {
		if errors.Is(err, service.ErrShopNotFound) {
			apperrors.NotFound(c, apperrors.ShopNotFound, "Shop not found")
			return
		}
		log.Error("Failed to update visibility flags", err, map[string]interface{}{
			"shop_id": shopID,
		})
		apperrors.InternalError(c, "Failed to update visibility flags")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"visibility": updated,
	})
}
