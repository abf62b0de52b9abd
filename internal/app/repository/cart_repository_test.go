package repository

import (
	"testing"

	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartTest(t *testing.T) (*gorm.DB, CartRepository, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	user := &model.User{Email: "shopper@example.com", PasswordHash: "hashed", Name: "Shopper"}
	require.NoError(t, testDB.Create(user).Error)

	repo := NewCartRepository(testDB)
	return testDB, repo, user
}

func testLine(userID uint, shopID, productID string) *model.CartLine {
	return &model.CartLine{
		UserID:    userID,
		ShopID:    shopID,
		ProductID: productID,
		Name:      "Teapot",
		Price:     45,
		Quantity:  1,
	}
}

func TestCartRepository_Create(t *testing.T) {
	testDB, repo, user := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	line := testLine(user.ID, "shop-1", "prod-1")
	err := repo.Create(line)
	assert.NoError(t, err)
	assert.NotEmpty(t, line.LineID)
}

func TestCartRepository_FindByUserAndShop(t *testing.T) {
	testDB, repo, user := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Create(testLine(user.ID, "shop-1", "prod-1")))
	require.NoError(t, repo.Create(testLine(user.ID, "shop-1", "prod-2")))
	require.NoError(t, repo.Create(testLine(user.ID, "shop-2", "prod-3")))

	all, err := repo.FindByUser(user.ID)
	assert.NoError(t, err)
	assert.Len(t, all, 3)

	scoped, err := repo.FindByUserAndShop(user.ID, "shop-1")
	assert.NoError(t, err)
	assert.Len(t, scoped, 2)
}

func TestCartRepository_SaveAll(t *testing.T) {
	testDB, repo, user := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	a := testLine(user.ID, "shop-1", "prod-1")
	b := testLine(user.ID, "shop-1", "prod-2")
	require.NoError(t, repo.Create(a))
	require.NoError(t, repo.Create(b))

	a.Price = 50
	b.Name = "Renamed"
	require.NoError(t, repo.SaveAll([]model.CartLine{*a, *b}))

	got, err := repo.FindByLineID(a.LineID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.Price)

	got, err = repo.FindByLineID(b.LineID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
}

func TestCartRepository_Delete(t *testing.T) {
	testDB, repo, user := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	line := testLine(user.ID, "shop-1", "prod-1")
	require.NoError(t, repo.Create(line))

	require.NoError(t, repo.Delete(line.LineID))
	assert.ErrorIs(t, repo.Delete(line.LineID), gorm.ErrRecordNotFound)

	_, err := repo.FindByLineID(line.LineID)
	assert.Error(t, err)
}
