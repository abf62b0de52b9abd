package repository

import (
	"testing"

	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupImageMapTest(t *testing.T) (*gorm.DB, ImageMapRepository, *model.Shop) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	shop := &model.Shop{Slug: "corner-market", Name: "Corner Market", IsActive: true}
	require.NoError(t, testDB.Create(shop).Error)

	repo := NewImageMapRepository(testDB)
	return testDB, repo, shop
}

func createMap(t *testing.T, repo ImageMapRepository, shopID string) *model.ImageMap {
	t.Helper()
	m := &model.ImageMap{ShopID: shopID, ImageURL: "https://example.com/store.jpg"}
	require.NoError(t, repo.Create(m))
	return m
}

func TestImageMapRepository_Activate(t *testing.T) {
	testDB, repo, shop := setupImageMapTest(t)
	defer db.CleanupTestDB(testDB)

	first := createMap(t, repo, shop.ID)
	second := createMap(t, repo, shop.ID)

	require.NoError(t, repo.Activate(shop.ID, first.ID))
	require.NoError(t, repo.Activate(shop.ID, second.ID))

	var active []model.ImageMap
	require.NoError(t, testDB.Where("shop_id = ? AND is_active = ?", shop.ID, true).Find(&active).Error)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)
}

func TestImageMapRepository_Activate_WrongShop(t *testing.T) {
	testDB, repo, shop := setupImageMapTest(t)
	defer db.CleanupTestDB(testDB)

	m := createMap(t, repo, shop.ID)

	err := repo.Activate("other-shop", m.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.Activate(shop.ID, "no-such-map")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestImageMapRepository_ReplaceLayout(t *testing.T) {
	testDB, repo, shop := setupImageMapTest(t)
	defer db.CleanupTestDB(testDB)

	m := createMap(t, repo, shop.ID)

	sections := []model.ImageSection{
		{ID: "sec-1", MapID: m.ID, Name: "Front", SortOrder: 0},
	}
	secID := "sec-1"
	hotspots := []model.Hotspot{
		{ID: "h-1", MapID: m.ID, SectionID: &secID, X: 10, Y: 10, SortOrder: 0},
		{ID: "h-2", MapID: m.ID, SectionID: &secID, X: 20, Y: 20, SortOrder: 1},
	}
	require.NoError(t, repo.ReplaceLayout(m.ID, sections, hotspots))

	found, err := repo.FindByID(m.ID)
	require.NoError(t, err)
	assert.Len(t, found.Sections, 1)
	assert.Len(t, found.Hotspots, 2)

	// Replacing with an empty layout clears everything.
	require.NoError(t, repo.ReplaceLayout(m.ID, nil, nil))

	found, err = repo.FindByID(m.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Sections)
	assert.Empty(t, found.Hotspots)
}

func TestImageMapRepository_Delete_CascadesLayout(t *testing.T) {
	testDB, repo, shop := setupImageMapTest(t)
	defer db.CleanupTestDB(testDB)

	m := createMap(t, repo, shop.ID)
	require.NoError(t, repo.ReplaceLayout(m.ID,
		[]model.ImageSection{{ID: "sec-1", MapID: m.ID, Name: "Front"}},
		[]model.Hotspot{{ID: "h-1", MapID: m.ID, X: 10, Y: 10}},
	))

	require.NoError(t, repo.Delete(m.ID))

	_, err := repo.FindByID(m.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, testDB.Model(&model.Hotspot{}).Where("map_id = ?", m.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestImageMapRepository_FindByShop_ActiveFirst(t *testing.T) {
	testDB, repo, shop := setupImageMapTest(t)
	defer db.CleanupTestDB(testDB)

	createMap(t, repo, shop.ID)
	second := createMap(t, repo, shop.ID)
	require.NoError(t, repo.Activate(shop.ID, second.ID))

	maps, err := repo.FindByShop(shop.ID)
	require.NoError(t, err)
	require.Len(t, maps, 2)
	assert.Equal(t, second.ID, maps[0].ID)
	assert.True(t, maps[0].IsActive)
}

func TestImageMapRepository_FindActiveByShop(t *testing.T) {
	testDB, repo, shop := setupImageMapTest(t)
	defer db.CleanupTestDB(testDB)

	m := createMap(t, repo, shop.ID)

	_, err := repo.FindActiveByShop(shop.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Activate(shop.ID, m.ID))

	active, err := repo.FindActiveByShop(shop.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, active.ID)
}
