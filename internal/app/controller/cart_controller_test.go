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
	"github.com/rayshop/shopmap-backend/internal/app/service"
	"github.com/rayshop/shopmap-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartControllerTest(t *testing.T) (*CartController, *gin.Engine, *gorm.DB, *model.User, *model.Shop, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartService := service.NewCartService(cartRepo, productRepo)
	cartController := NewCartController(cartService)

	user := &model.User{
		Email:        "shopper@example.com",
		PasswordHash: "hash",
		Name:         "Shopper",
		Role:         model.RoleShopper,
	}
	require.NoError(t, testDB.Create(user).Error)

	shop := &model.Shop{Slug: "corner-market", Name: "Corner Market", IsActive: true}
	require.NoError(t, testDB.Create(shop).Error)

	product := &model.Product{
		ShopID:   shop.ID,
		Name:     "Teapot",
		Price:    45,
		Stock:    10,
		Unit:     "ea",
		IsActive: true,
	}
	require.NoError(t, testDB.Create(product).Error)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return cartController, router, testDB, user, shop, product
}

func setUserIDInContext(c *gin.Context, userID uint) {
	c.Set("user_id", userID)
}

func TestCartController_GetCart_Success(t *testing.T) {
	controller, router, testDB, user, shop, product := setupCartControllerTest(t)

	cartRepo := repository.NewCartRepository(testDB)
	require.NoError(t, cartRepo.Create(&model.CartLine{
		UserID:    user.ID,
		ShopID:    shop.ID,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     45,
		Quantity:  2,
	}))

	router.GET("/cart", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.GetCart(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, float64(1), response["count"])
	assert.Equal(t, float64(90), response["total"]) // 45 * 2
}

func TestCartController_GetCart_ReconcilesShopLines(t *testing.T) {
	controller, router, testDB, user, shop, product := setupCartControllerTest(t)

	cartRepo := repository.NewCartRepository(testDB)
	require.NoError(t, cartRepo.Create(&model.CartLine{
		UserID:    user.ID,
		ShopID:    shop.ID,
		ProductID: product.ID,
		Name:      "Stale Name",
		Price:     40,
		Quantity:  1,
	}))

	router.GET("/cart", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.GetCart(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/cart?shop_id="+shop.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Lines []model.CartLine `json:"lines"`
		Total float64          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Lines, 1)
	// Reconciled against the catalog: current name and price.
	assert.Equal(t, "Teapot", response.Lines[0].Name)
	assert.Equal(t, 45.0, response.Lines[0].Price)
	assert.Equal(t, 45.0, response.Total)
}

func TestCartController_AddLine_Success(t *testing.T) {
	controller, router, _, user, shop, product := setupCartControllerTest(t)

	router.POST("/cart", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.AddLine(c)
	})

	body, _ := json.Marshal(AddLineRequest{
		ShopID:    shop.ID,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     45,
		Quantity:  2,
		Unit:      "ea",
	})
	req := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var line model.CartLine
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &line))
	assert.NotEmpty(t, line.LineID)
	assert.Equal(t, user.ID, line.UserID)
}

func TestCartController_AddLine_UnknownProduct(t *testing.T) {
	controller, router, _, user, shop, _ := setupCartControllerTest(t)

	router.POST("/cart", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.AddLine(c)
	})

	body, _ := json.Marshal(AddLineRequest{
		ShopID:    shop.ID,
		ProductID: "no-such-product",
		Name:      "Ghost",
		Price:     1,
		Quantity:  1,
	})
	req := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartController_AddLine_InvalidBody(t *testing.T) {
	controller, router, _, user, _, _ := setupCartControllerTest(t)

	router.POST("/cart", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.AddLine(c)
	})

	req := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewReader([]byte(`{"quantity": -1}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartController_UpdateQuantity_RemovesAtZero(t *testing.T) {
	controller, router, testDB, user, shop, product := setupCartControllerTest(t)

	cartRepo := repository.NewCartRepository(testDB)
	line := &model.CartLine{
		UserID:    user.ID,
		ShopID:    shop.ID,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     45,
		Quantity:  1,
	}
	require.NoError(t, cartRepo.Create(line))

	router.PATCH("/cart/:lineId", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.UpdateQuantity(c)
	})

	body := []byte(`{"delta": -1}`)
	req := httptest.NewRequest(http.MethodPatch, "/cart/"+line.LineID, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cart line removed")

	_, err := cartRepo.FindByLineID(line.LineID)
	assert.Error(t, err)
}

func TestCartController_RemoveLine_NotFound(t *testing.T) {
	controller, router, _, user, _, _ := setupCartControllerTest(t)

	router.DELETE("/cart/:lineId", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.RemoveLine(c)
	})

	req := httptest.NewRequest(http.MethodDelete, "/cart/no-such-line", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
