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

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddLineRequest struct {
	ShopID           string                  `json:"shop_id" binding:"required"`
	ProductID        string                  `json:"product_id" binding:"required"`
	Name             string                  `json:"name" binding:"required"`
	Price            float64                 `json:"price" binding:"required,gt=0"`
	Quantity         int                     `json:"quantity" binding:"required,gt=0"`
	Unit             string                  `json:"unit"`
	ImageURL         string                  `json:"image_url"`
	VariantSelection *model.VariantSelection `json:"variant_selection"`
	FurnitureMeta    *model.FurnitureMeta    `json:"furniture_meta"`
}

type UpdateQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// GetCart returns the user's cart. When a shop_id query parameter is
// given, the shop's lines are reconciled against the catalog before
// they are returned, so the client always renders current prices
// GET /api/v1/cart?shop_id=...
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	shopID := c.Query("shop_id")

	var lines []model.CartLine
	var err error
	if shopID != "" {
		lines, err = ctrl.cartService.Reconcile(userID, shopID)
	} else {
		lines, err = ctrl.cartService.GetCart(userID)
	}
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
			"shop_id": shopID,
		})
		apperrors.InternalError(c, "Failed to fetch cart")
		return
	}

	var total float64
	for _, line := range lines {
		total += line.Price * float64(line.Quantity)
	}

	log.Info("Cart fetched successfully", map[string]interface{}{
		"user_id": userID,
		"count":   len(lines),
		"total":   total,
	})

	c.JSON(http.StatusOK, gin.H{
		"lines": lines,
		"count": len(lines),
		"total": total,
	})
}

// AddLine adds a resolved line to the cart
// POST /api/v1/cart
func (ctrl *CartController) AddLine(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	line := &model.CartLine{
		ShopID:           req.ShopID,
		ProductID:        req.ProductID,
		Name:             req.Name,
		Price:            req.Price,
		Quantity:         req.Quantity,
		Unit:             req.Unit,
		ImageURL:         req.ImageURL,
		VariantSelection: req.VariantSelection,
		FurnitureMeta:    req.FurnitureMeta,
	}

	if err := ctrl.cartService.AddLine(userID, line); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.CartInvalidQty, "Quantity must be at least 1")
		default:
			log.Error("Failed to add cart line", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": req.ProductID,
			})
			apperrors.InternalError(c, "Failed to add to cart")
		}
		return
	}

	c.JSON(http.StatusCreated, line)
}

// UpdateQuantity applies a delta to a line's quantity; reaching zero
// removes the line
// PATCH /api/v1/cart/:lineId
func (ctrl *CartController) UpdateQuantity(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	lineID := c.Param("lineId")

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	line, err := ctrl.cartService.UpdateQuantity(userID, lineID, req.Delta)
	if err != nil {
		if errors.Is(err, service.ErrCartLineNotFound) {
			apperrors.NotFound(c, apperrors.CartLineNotFound, "Cart line not found")
			return
		}
		log.Error("Failed to update cart quantity", err, map[string]interface{}{
			"user_id": userID,
			"line_id": lineID,
		})
		apperrors.InternalError(c, "Failed to update cart")
		return
	}

	if line == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Cart line removed",
		})
		return
	}
	c.JSON(http.StatusOK, line)
}

// RemoveLine deletes a line from the cart
// DELETE /api/v1/cart/:lineId
func (ctrl *CartController) RemoveLine(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	lineID := c.Param("lineId")

	if err := ctrl.cartService.RemoveLine(userID, lineID); err != nil {
		if errors.Is(err, service.ErrCartLineNotFound) {
			apperrors.NotFound(c, apperrors.CartLineNotFound, "Cart line not found")
			return
		}
		log.Error("Failed to remove cart line", err, map[string]interface{}{
			"user_id": userID,
			"line_id": lineID,
		})
		apperrors.InternalError(c, "Failed to remove cart line")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart line removed",
	})
}
