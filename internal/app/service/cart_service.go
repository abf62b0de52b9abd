package service

import (
	"errors"
	"reflect"

	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/internal/app/repository"
	"github.com/rayshop/shopmap-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartLineNotFound = errors.New("cart line not found")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrProductNotFound  = errors.New("product not found")
)

type CartService interface {
	GetCart(userID uint) ([]model.CartLine, error)
	GetShopCart(userID uint, shopID string) ([]model.CartLine, error)
	AddLine(userID uint, line *model.CartLine) error
	UpdateQuantity(userID uint, lineID string, delta int) (*model.CartLine, error)
	RemoveLine(userID uint, lineID string) error
	Reconcile(userID uint, shopID string) ([]model.CartLine, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) GetCart(userID uint) ([]model.CartLine, error) {
	logger.Debug("Fetching cart", map[string]interface{}{
		"user_id": userID,
	})
	return s.cartRepo.FindByUser(userID)
}

func (s *cartService) GetShopCart(userID uint, shopID string) ([]model.CartLine, error) {
	return s.cartRepo.FindByUserAndShop(userID, shopID)
}

// AddLine stores a resolved cart line. The price is taken as given: it
// was already resolved against the variant selection, and reconciliation
// keeps it honest afterwards.
func (s *cartService) AddLine(userID uint, line *model.CartLine) error {
	logger.Info("Adding line to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": line.ProductID,
		"quantity":   line.Quantity,
	})

	if line.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if _, err := s.productRepo.FindByID(line.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	line.UserID = userID
	return s.cartRepo.Create(line)
}

// UpdateQuantity applies a delta to a line's quantity. Dropping to zero
// or below removes the line.
func (s *cartService) UpdateQuantity(userID uint, lineID string, delta int) (*model.CartLine, error) {
	line, err := s.ownedLine(userID, lineID)
	if err != nil {
		return nil, err
	}

	line.Quantity += delta
	if line.Quantity < 1 {
		logger.Info("Quantity dropped to zero, removing cart line", map[string]interface{}{
			"user_id": userID,
			"line_id": lineID,
		})
		if err := s.cartRepo.Delete(lineID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := s.cartRepo.Save(line); err != nil {
		return nil, err
	}
	return line, nil
}

func (s *cartService) RemoveLine(userID uint, lineID string) error {
	if _, err := s.ownedLine(userID, lineID); err != nil {
		return err
	}
	logger.Info("Removing cart line", map[string]interface{}{
		"user_id": userID,
		"line_id": lineID,
	})
	if err := s.cartRepo.Delete(lineID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartLineNotFound
		}
		return err
	}
	return nil
}

// Reconcile refreshes the display and pricing fields of a shop's cart
// lines from the current catalog. Identity and quantity are never
// touched; a line whose product cannot be found is left exactly as it
// was, a transient catalog miss must not eat a shopper's cart. The
// reconciled snapshot is written back atomically and the method is
// idempotent against an unchanged catalog.
func (s *cartService) Reconcile(userID uint, shopID string) ([]model.CartLine, error) {
	logger.Debug("Reconciling cart against catalog", map[string]interface{}{
		"user_id": userID,
		"shop_id": shopID,
	})

	lines, err := s.cartRepo.FindByUserAndShop(userID, shopID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return lines, nil
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	// Build a new snapshot rather than mutating in place, so a reader
	// racing the pass sees either the old cart or the new one.
	reconciled := make([]model.CartLine, len(lines))
	copy(reconciled, lines)
	changed := 0
	for i := range reconciled {
		p, ok := byID[reconciled[i].ProductID]
		if !ok {
			continue
		}
		before := reconciled[i]
		reconcileLine(&reconciled[i], p)
		if lineChanged(&before, &reconciled[i]) {
			changed++
		}
	}

	if changed > 0 {
		if err := s.cartRepo.SaveAll(reconciled); err != nil {
			return nil, err
		}
		logger.Info("Cart reconciled", map[string]interface{}{
			"user_id": userID,
			"shop_id": shopID,
			"lines":   len(reconciled),
			"changed": changed,
		})
	}
	return reconciled, nil
}

// reconcileLine refreshes one line from the catalog. Pack-priced lines
// re-resolve their pack by id; a pack that no longer exists falls back
// to the base price while keeping the stored selection, so the original
// intent survives a later catalog fix.
func reconcileLine(line *model.CartLine, p *model.Product) {
	line.Name = p.Name
	line.ImageURL = p.ImageURL
	line.Unit = p.Unit
	line.FurnitureMeta = p.FurnitureMeta

	if line.VariantSelection != nil && line.VariantSelection.Kind == model.VariantKindPack {
		if pack := p.PackOptions.FindByID(line.VariantSelection.PackID); pack != nil {
			line.Price = pack.Price
			return
		}
	}
	line.Price = p.Price
}

// lineChanged compares only the fields reconciliation may touch, by
// value, so an unchanged catalog yields zero writes.
func lineChanged(before, after *model.CartLine) bool {
	if before.Name != after.Name ||
		before.ImageURL != after.ImageURL ||
		before.Unit != after.Unit ||
		before.Price != after.Price {
		return true
	}
	return !reflect.DeepEqual(before.FurnitureMeta, after.FurnitureMeta)
}

func (s *cartService) ownedLine(userID uint, lineID string) (*model.CartLine, error) {
	line, err := s.cartRepo.FindByLineID(lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartLineNotFound
		}
		return nil, err
	}
	if line.UserID != userID {
		return nil, ErrCartLineNotFound
	}
	return line, nil
}
