package repository

import (
	"testing"

	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*gorm.DB, UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewUserRepository(testDB)
	return testDB, repo
}

func TestUserRepository_Create(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{
		Email:        "merchant@example.com",
		PasswordHash: "hashed",
		Name:         "Merchant",
		Role:         model.RoleMerchant,
	}
	err := repo.Create(user)
	assert.NoError(t, err)
	assert.NotZero(t, user.ID)

	// Duplicate email violates the unique index.
	err = repo.Create(&model.User{Email: "merchant@example.com", PasswordHash: "x", Name: "Dup"})
	assert.Error(t, err)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{Email: "shopper@example.com", PasswordHash: "hashed", Name: "Shopper"}
	require.NoError(t, repo.Create(user))

	found, err := repo.FindByEmail("shopper@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail("nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_Update(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{Email: "merchant@example.com", PasswordHash: "hashed", Name: "Merchant", Role: model.RoleMerchant}
	require.NoError(t, repo.Create(user))

	shopID := "shop-1"
	user.ShopID = &shopID
	require.NoError(t, repo.Update(user))

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.ShopID)
	assert.Equal(t, "shop-1", *found.ShopID)
}
