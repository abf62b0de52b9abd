package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rayshop/shopmap-backend/internal/app/service"
	apperrors "github.com/rayshop/shopmap-backend/internal/errors"
	"github.com/rayshop/shopmap-backend/internal/middleware"
)

type ImageMapController struct {
	mapService    service.ImageMapService
	visionService service.VisionService
	exportService service.ExportService
}

func NewImageMapController(
	mapService service.ImageMapService,
	visionService service.VisionService,
	exportService service.ExportService,
) *ImageMapController {
	return &ImageMapController{
		mapService:    mapService,
		visionService: visionService,
		exportService: exportService,
	}
}

type CreateMapRequest struct {
	ImageURL string  `json:"image_url" binding:"required"`
	Title    *string `json:"title"`
	Width    *int    `json:"width"`
	Height   *int    `json:"height"`
}

type AnalyzeMapRequest struct {
	ImageURL string `json:"image_url" binding:"required"`
	Language string `json:"language"`
}

// Storefront returns the shopper view for a shop: active map, referenced
// products, and visibility flags
// GET /api/v1/shops/:slug/storefront
func (ctrl *ImageMapController) Storefront(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	slug := c.Param("slug")

	view, err := ctrl.mapService.Storefront(c.Request.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShopNotFound):
			apperrors.NotFound(c, apperrors.ShopNotFound, "Shop not found")
		case errors.Is(err, service.ErrShopInactive):
			apperrors.NotFound(c, apperrors.ShopInactive, "Shop is not open")
		default:
			log.Error("Failed to load storefront", err, map[string]interface{}{
				"slug": slug,
			})
			apperrors.InternalError(c, "Failed to load storefront")
		}
		return
	}

	log.Info("Storefront loaded", map[string]interface{}{
		"slug":    slug,
		"has_map": view.Map != nil,
	})
	c.JSON(http.StatusOK, view)
}

// ActiveMap returns just the shop and its live map. Lighter than the
// storefront payload; the map is null when no map is active
// GET /api/v1/shops/:slug/image-map
func (ctrl *ImageMapController) ActiveMap(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	slug := c.Param("slug")

	view, err := ctrl.mapService.Storefront(c.Request.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShopNotFound):
			apperrors.NotFound(c, apperrors.ShopNotFound, "Shop not found")
		case errors.Is(err, service.ErrShopInactive):
			apperrors.NotFound(c, apperrors.ShopInactive, "Shop is not open")
		default:
			log.Error("Failed to load active map", err, map[string]interface{}{
				"slug": slug,
			})
			apperrors.InternalError(c, "Failed to load active map")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shop": view.Shop,
		"map":  view.Map,
	})
}

// ListMaps lists a shop's maps for the dashboard
// GET /api/v1/manage/shops/:shopId/image-maps
func (ctrl *ImageMapController) ListMaps(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	shopID := c.Param("shopId")

	maps, err := ctrl.mapService.ListForManage(shopID)
	if err != nil {
		log.Error("Failed to list image maps", err, map[string]interface{}{
			"shop_id": shopID,
		})
		apperrors.InternalError(c, "Failed to list image maps")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"maps":  maps,
		"count": len(maps),
	})
}

// CreateMap creates a new draft map
// POST /api/v1/manage/shops/:shopId/image-maps
func (ctrl *ImageMapController) CreateMap(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	shopID := c.Param("shopId")

	var req CreateMapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create map request", map[string]interface{}{
			"shop_id": shopID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	m, err := ctrl.mapService.Create(shopID, req.ImageURL, req.Title, req.Width, req.Height)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMapImageRequired):
			apperrors.BadRequest(c, apperrors.MapImageRequired, "An image is required to create a map")
		case errors.Is(err, service.ErrShopNotFound):
			apperrors.NotFound(c, apperrors.ShopNotFound, "Shop not found")
		default:
			log.Error("Failed to create image map", err, map[string]interface{}{
				"shop_id": shopID,
			})
			apperrors.InternalError(c, "Failed to create image map")
		}
		return
	}

	c.JSON(http.StatusCreated, m)
}

// ActivateMap makes a map the shop's live one
// PATCH /api/v1/manage/shops/:shopId/image-maps/:mapId/activate
func (ctrl *ImageMapController) ActivateMap(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	shopID := c.Param("shopId")
	mapID := c.Param("mapId")

	m, err := ctrl.mapService.Activate(shopID, mapID)
	if err != nil {
		if errors.Is(err, service.ErrMapNotFound) {
			apperrors.NotFound(c, apperrors.MapNotFound, "Image map not found")
			return
		}
		log.Error("Failed to activate image map", err, map[string]interface{}{
			"shop_id": shopID,
			"map_id":  mapID,
		})
		apperrors.InternalError(c, "Failed to activate image map")
		return
	}

	c.JSON(http.StatusOK, m)
}

// SaveLayout replaces a map's sections and hotspots
// PATCH /api/v1/manage/shops/:shopId/image-maps/:mapId/layout
func (ctrl *ImageMapController) SaveLayout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	shopID := c.Param("shopId")
	mapID := c.Param("mapId")

	var layout service.LayoutInput
	if err := c.ShouldBindJSON(&layout); err != nil {
		log.Warn("Invalid layout payload", map[string]interface{}{
			"shop_id": shopID,
			"map_id":  mapID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid layout data")
		return
	}

	m, err := ctrl.mapService.SaveLayout(shopID, mapID, layout)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMapNotFound):
			apperrors.NotFound(c, apperrors.MapNotFound, "Image map not found")
		case errors.Is(err, service.ErrSectionIndex):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Hotspot references an unknown section")
		default:
			log.Error("Failed to save image map layout", err, map[string]interface{}{
				"shop_id": shopID,
				"map_id":  mapID,
			})
			apperrors.InternalError(c, "Failed to save layout")
		}
		return
	}

	c.JSON(http.StatusOK, m)
}

// DeleteMap removes a draft map
// DELETE /api/v1/manage/shops/:shopId/image-maps/:mapId
func (ctrl *ImageMapController) DeleteMap(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	shopID := c.Param("shopId")
	mapID := c.Param("mapId")

	if err := ctrl.mapService.Delete(shopID, mapID); err != nil {
		if errors.Is(err, service.ErrMapNotFound) {
			apperrors.NotFound(c, apperrors.MapNotFound, "Image map not found")
			return
		}
		log.Error("Failed to delete image map", err, map[string]interface{}{
			"shop_id": shopID,
			"map_id":  mapID,
		})
		apperrors.InternalError(c, "Failed to delete image map")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Image map deleted",
	})
}

// AnalyzeMap runs AI hotspot suggestion over an image. Results are
// suggestions the editor feeds through its normal placement flow; the
// server never writes them to a map directly
// POST /api/v1/manage/shops/:shopId/image-maps/analyze
func (ctrl *ImageMapController) AnalyzeMap(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	shopID := c.Param("shopId")

	var req AnalyzeMapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	result, err := ctrl.visionService.AnalyzeStoreImage(req.ImageURL, req.Language)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAnalysisNotConfigured):
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.AnalysisNotConfigured, "Image analysis is not available")
		default:
			log.Error("Image analysis failed", err, map[string]interface{}{
				"shop_id": shopID,
			})
			apperrors.BadGateway(c, apperrors.AnalysisFailed, "Image analysis failed, please try again")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportLayout downloads a map's layout as an XLSX workbook
// GET /api/v1/manage/shops/:shopId/image-maps/:mapId/export
func (ctrl *ImageMapController) ExportLayout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	shopID := c.Param("shopId")
	mapID := c.Param("mapId")

	m, err := ctrl.mapService.Get(shopID, mapID)
	if err != nil {
		if errors.Is(err, service.ErrMapNotFound) {
			apperrors.NotFound(c, apperrors.MapNotFound, "Image map not found")
			return
		}
		log.Error("Failed to load image map for export", err, map[string]interface{}{
			"shop_id": shopID,
			"map_id":  mapID,
		})
		apperrors.InternalError(c, "Failed to export layout")
		return
	}

	buf, filename, err := ctrl.exportService.ExportLayout(m)
	if err != nil {
		log.Error("Failed to export image map layout", err, map[string]interface{}{
			"map_id": mapID,
		})
		apperrors.InternalError(c, "Failed to export layout")
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
