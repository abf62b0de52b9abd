package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/internal/app/repository"
	"github.com/rayshop/shopmap-backend/internal/app/service"
	apperrors "github.com/rayshop/shopmap-backend/internal/errors"
	"github.com/rayshop/shopmap-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type ProductRequest struct {
	Name          string                `json:"name" binding:"required"`
	Description   string                `json:"description"`
	Price         float64               `json:"price" binding:"required,gt=0"`
	Stock         int                   `json:"stock" binding:"gte=0"`
	Category      string                `json:"category"`
	Unit          string                `json:"unit"`
	ImageURL      string                `json:"image_url"`
	IsActive      *bool                 `json:"is_active"`
	Colors        []string              `json:"colors"`
	PackOptions   model.PackOptionList  `json:"pack_options"`
	Sizes         model.SizeVariantList `json:"sizes"`
	FurnitureMeta *model.FurnitureMeta  `json:"furniture_meta"`
}

// ListProducts lists products, filterable by shop, category, and search
// GET /api/v1/products?shop_id=...&category=...&search=...
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.ProductFilter{
		ShopID:     c.Query("shop_id"),
		Category:   c.Query("category"),
		Search:     c.Query("search"),
		ActiveOnly: c.Query("include_inactive") != "true",
	}

	products, err := ctrl.productService.List(filter)
	if err != nil {
		log.Error("Failed to list products", err, map[string]interface{}{
			"shop_id": filter.ShopID,
		})
		apperrors.InternalError(c, "Failed to list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns one product with its derived stock status
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	id := c.Param("id")

	product, err := ctrl.productService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct adds a product to the shop's catalog
// POST /api/v1/manage/shops/:shopId/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	shopID := c.Param("shopId")

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create product request", map[string]interface{}{
			"shop_id": shopID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	product := productFromRequest(&req)
	product.ShopID = shopID

	if err := ctrl.productService.Create(product); err != nil {
		if errors.Is(err, service.ErrInvalidPack) {
			apperrors.BadRequest(c, apperrors.ProductInvalidPack, "Pack options must have unique ids and positive prices")
			return
		}
		log.Error("Failed to create product", err, map[string]interface{}{
			"shop_id": shopID,
		})
		apperrors.InternalError(c, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct updates a product's catalog fields
// PUT /api/v1/manage/shops/:shopId/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	shopID := c.Param("shopId")
	id := c.Param("id")

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	product := productFromRequest(&req)
	product.ID = id
	product.ShopID = shopID

	if err := ctrl.productService.Update(product); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrInvalidPack):
			apperrors.BadRequest(c, apperrors.ProductInvalidPack, "Pack options must have unique ids and positive prices")
		default:
			log.Error("Failed to update product", err, map[string]interface{}{
				"product_id": id,
			})
			apperrors.InternalError(c, "Failed to update product")
		}
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product from the catalog. Hotspots that
// reference it stay and render label-only
// DELETE /api/v1/manage/shops/:shopId/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	shopID := c.Param("shopId")
	id := c.Param("id")

	if err := ctrl.productService.Delete(shopID, id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "Failed to delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted",
	})
}

func productFromRequest(req *ProductRequest) *model.Product {
	product := &model.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Stock:         req.Stock,
		Category:      req.Category,
		Unit:          req.Unit,
		ImageURL:      req.ImageURL,
		IsActive:      true,
		Colors:        pq.StringArray(req.Colors),
		PackOptions:   req.PackOptions,
		Sizes:         req.Sizes,
		FurnitureMeta: req.FurnitureMeta,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	return product
}
