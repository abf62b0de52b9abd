package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/internal/app/repository"
	"github.com/rayshop/shopmap-backend/config"
	"github.com/rayshop/shopmap-backend/internal/app/service"
	"github.com/rayshop/shopmap-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupImageMapControllerTest(t *testing.T) (*ImageMapController, *gin.Engine, *gorm.DB, *model.Shop) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	mapRepo := repository.NewImageMapRepository(testDB)
	shopRepo := repository.NewShopRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	mapService := service.NewImageMapService(mapRepo, shopRepo, productRepo)
	visionService := service.NewVisionService(&config.Config{})
	exportService := service.NewExportService()
	controller := NewImageMapController(mapService, visionService, exportService)

	shop := &model.Shop{Slug: "corner-market", Name: "Corner Market", IsActive: true}
	require.NoError(t, testDB.Create(shop).Error)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return controller, router, testDB, shop
}

func TestImageMapController_CreateMap(t *testing.T) {
	controller, router, _, shop := setupImageMapControllerTest(t)

	router.POST("/manage/shops/:shopId/image-maps", controller.CreateMap)

	body, _ := json.Marshal(CreateMapRequest{
		ImageURL: "https://cdn.example.com/store.jpg",
	})
	req := httptest.NewRequest(http.MethodPost, "/manage/shops/"+shop.ID+"/image-maps", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var m model.ImageMap
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.NotEmpty(t, m.ID)
	assert.False(t, m.IsActive)
}

func TestImageMapController_CreateMap_MissingImage(t *testing.T) {
	controller, router, _, shop := setupImageMapControllerTest(t)

	router.POST("/manage/shops/:shopId/image-maps", controller.CreateMap)

	req := httptest.NewRequest(http.MethodPost, "/manage/shops/"+shop.ID+"/image-maps", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImageMapController_ActivateAndStorefront(t *testing.T) {
	controller, router, testDB, shop := setupImageMapControllerTest(t)

	m := &model.ImageMap{ShopID: shop.ID, ImageURL: "https://cdn.example.com/store.jpg"}
	require.NoError(t, testDB.Create(m).Error)

	router.PATCH("/manage/shops/:shopId/image-maps/:mapId/activate", controller.ActivateMap)
	router.GET("/shops/:slug/storefront", controller.Storefront)

	req := httptest.NewRequest(http.MethodPatch, "/manage/shops/"+shop.ID+"/image-maps/"+m.ID+"/activate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/shops/"+shop.Slug+"/storefront", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var view service.StorefrontView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.NotNil(t, view.Map)
	assert.Equal(t, m.ID, view.Map.ID)
}

func TestImageMapController_ActiveMap(t *testing.T) {
	controller, router, testDB, shop := setupImageMapControllerTest(t)

	m := &model.ImageMap{ShopID: shop.ID, ImageURL: "https://cdn.example.com/store.jpg", IsActive: true}
	require.NoError(t, testDB.Create(m).Error)

	router.GET("/shops/:slug/image-map", controller.ActiveMap)

	req := httptest.NewRequest(http.MethodGet, "/shops/"+shop.Slug+"/image-map", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Shop *model.Shop     `json:"shop"`
		Map  *model.ImageMap `json:"map"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Map)
	assert.Equal(t, m.ID, resp.Map.ID)
	assert.Equal(t, shop.ID, resp.Shop.ID)
}

func TestImageMapController_ActiveMap_NoneActive(t *testing.T) {
	controller, router, _, shop := setupImageMapControllerTest(t)

	router.GET("/shops/:slug/image-map", controller.ActiveMap)

	req := httptest.NewRequest(http.MethodGet, "/shops/"+shop.Slug+"/image-map", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp["map"])
}

func TestImageMapController_Storefront_UnknownShop(t *testing.T) {
	controller, router, _, _ := setupImageMapControllerTest(t)

	router.GET("/shops/:slug/storefront", controller.Storefront)

	req := httptest.NewRequest(http.MethodGet, "/shops/no-such-shop/storefront", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImageMapController_SaveLayout(t *testing.T) {
	controller, router, testDB, shop := setupImageMapControllerTest(t)

	m := &model.ImageMap{ShopID: shop.ID, ImageURL: "https://cdn.example.com/store.jpg"}
	require.NoError(t, testDB.Create(m).Error)

	router.PATCH("/manage/shops/:shopId/image-maps/:mapId/layout", controller.SaveLayout)

	body := []byte(`{
		"sections": [{"name": "Front"}],
		"hotspots": [{"x": 25, "y": 75, "section_index": 0, "label": "Teapot shelf"}]
	}`)
	req := httptest.NewRequest(http.MethodPatch, "/manage/shops/"+shop.ID+"/image-maps/"+m.ID+"/layout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var saved model.ImageMap
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	require.Len(t, saved.Sections, 1)
	require.Len(t, saved.Hotspots, 1)
	assert.Equal(t, saved.Sections[0].ID, *saved.Hotspots[0].SectionID)
}

func TestImageMapController_SaveLayout_BadSectionIndex(t *testing.T) {
	controller, router, testDB, shop := setupImageMapControllerTest(t)

	m := &model.ImageMap{ShopID: shop.ID, ImageURL: "https://cdn.example.com/store.jpg"}
	require.NoError(t, testDB.Create(m).Error)

	router.PATCH("/manage/shops/:shopId/image-maps/:mapId/layout", controller.SaveLayout)

	body := []byte(`{"sections": [], "hotspots": [{"x": 10, "y": 10, "section_index": 2}]}`)
	req := httptest.NewRequest(http.MethodPatch, "/manage/shops/"+shop.ID+"/image-maps/"+m.ID+"/layout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImageMapController_AnalyzeMap_NotConfigured(t *testing.T) {
	controller, router, _, shop := setupImageMapControllerTest(t)

	router.POST("/manage/shops/:shopId/image-maps/analyze", controller.AnalyzeMap)

	body := []byte(`{"image_url": "https://cdn.example.com/store.jpg"}`)
	req := httptest.NewRequest(http.MethodPost, "/manage/shops/"+shop.ID+"/image-maps/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// No API key configured in tests.
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestImageMapController_ExportLayout(t *testing.T) {
	controller, router, testDB, shop := setupImageMapControllerTest(t)

	m := &model.ImageMap{ShopID: shop.ID, ImageURL: "https://cdn.example.com/store.jpg"}
	require.NoError(t, testDB.Create(m).Error)

	router.GET("/manage/shops/:shopId/image-maps/:mapId/export", controller.ExportLayout)

	req := httptest.NewRequest(http.MethodGet, "/manage/shops/"+shop.ID+"/image-maps/"+m.ID+"/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
}
