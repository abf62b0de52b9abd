package repository

import (
	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	Create(line *model.CartLine) error
	Save(line *model.CartLine) error
	SaveAll(lines []model.CartLine) error
	Delete(lineID string) error
	FindByLineID(lineID string) (*model.CartLine, error)
	FindByUser(userID uint) ([]model.CartLine, error)
	FindByUserAndShop(userID uint, shopID string) ([]model.CartLine, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(line *model.CartLine) error {
	logger.Debug("Creating cart line in database", map[string]interface{}{
		"user_id":    line.UserID,
		"product_id": line.ProductID,
		"quantity":   line.Quantity,
	})

	if err := r.db.Create(line).Error; err != nil {
		logger.Error("Failed to create cart line in database", err, map[string]interface{}{
			"user_id":    line.UserID,
			"product_id": line.ProductID,
		})
		return err
	}
	return nil
}

// Save writes a line keyed by its LineID, never by position.
func (r *cartRepository) Save(line *model.CartLine) error {
	if err := r.db.Save(line).Error; err != nil {
		logger.Error("Failed to save cart line", err, map[string]interface{}{
			"line_id": line.LineID,
		})
		return err
	}
	return nil
}

// SaveAll writes a reconciled snapshot back in one transaction so a
// reader never observes a half-updated cart.
func (r *cartRepository) SaveAll(lines []model.CartLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := range lines {
			if err := tx.Save(&lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *cartRepository) Delete(lineID string) error {
	logger.Debug("Deleting cart line from database", map[string]interface{}{
		"line_id": lineID,
	})

	result := r.db.Delete(&model.CartLine{}, "line_id = ?", lineID)
	if result.Error != nil {
		logger.Error("Failed to delete cart line from database", result.Error, map[string]interface{}{
			"line_id": lineID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cartRepository) FindByLineID(lineID string) (*model.CartLine, error) {
	var line model.CartLine
	if err := r.db.First(&line, "line_id = ?", lineID).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *cartRepository) FindByUser(userID uint) ([]model.CartLine, error) {
	var lines []model.CartLine
	if err := r.db.Where("user_id = ?", userID).
		Order("created_at ASC").Find(&lines).Error; err != nil {
		logger.Error("Failed to find cart lines for user", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return lines, nil
}

func (r *cartRepository) FindByUserAndShop(userID uint, shopID string) ([]model.CartLine, error) {
	var lines []model.CartLine
	if err := r.db.Where("user_id = ? AND shop_id = ?", userID, shopID).
		Order("created_at ASC").Find(&lines).Error; err != nil {
		logger.Error("Failed to find cart lines for user and shop", err, map[string]interface{}{
			"user_id": userID,
			"shop_id": shopID,
		})
		return nil, err
	}
	return lines, nil
}
