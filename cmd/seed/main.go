package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/rayshop/shopmap-backend/config"
	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/internal/app/repository"
	"github.com/rayshop/shopmap-backend/internal/db"
	"github.com/rayshop/shopmap-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

// Seeds a demo merchant with a shop and imports its catalog from an
// XLSX workbook. Expected columns: name, description, price, stock,
// category, unit, image_url, colors (comma separated).
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	shopRepo := repository.NewShopRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())

	merchant, shop, err := seedMerchant(userRepo, shopRepo)
	if err != nil {
		log.Fatal("Failed to seed merchant:", err)
	}
	fmt.Printf("Merchant ready: %s (shop %s)\n", merchant.Email, shop.Slug)

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, err := readProductsFromXLSX(filePath, shop.ID)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	imported := 0
	for i := range products {
		if err := productRepo.Create(&products[i]); err != nil {
			fmt.Printf("Skipping %q: %v\n", products[i].Name, err)
			continue
		}
		imported++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", imported)
}

func seedMerchant(userRepo repository.UserRepository, shopRepo repository.ShopRepository) (*model.User, *model.Shop, error) {
	const email = "merchant@example.com"

	if existing, err := userRepo.FindByEmail(email); err == nil && existing.ShopID != nil {
		shop, err := shopRepo.FindByID(*existing.ShopID)
		if err != nil {
			return nil, nil, err
		}
		return existing, shop, nil
	}

	hash, err := util.HashPassword("changeme123")
	if err != nil {
		return nil, nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Demo Merchant",
		Role:         model.RoleMerchant,
	}
	if err := userRepo.Create(user); err != nil {
		return nil, nil, err
	}

	shop := &model.Shop{
		Slug:     "demo-shop",
		Name:     "Demo Shop",
		Category: "grocery",
		IsActive: true,
		OwnerID:  user.ID,
	}
	if err := shopRepo.Create(shop); err != nil {
		return nil, nil, err
	}

	user.ShopID = &shop.ID
	if err := userRepo.Update(user); err != nil {
		return nil, nil, err
	}
	return user, shop, nil
}

func readProductsFromXLSX(filePath, shopID string) ([]model.Product, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var products []model.Product
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < 4 {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		price, priceErr := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		stock, stockErr := strconv.Atoi(strings.TrimSpace(row[3]))
		if name == "" || priceErr != nil || price <= 0 || stockErr != nil {
			skipped++
			continue
		}

		p := model.Product{
			ShopID:      shopID,
			Name:        name,
			Description: strings.TrimSpace(row[1]),
			Price:       price,
			Stock:       stock,
			IsActive:    true,
		}
		if len(row) > 4 {
			p.Category = strings.TrimSpace(row[4])
		}
		if len(row) > 5 {
			p.Unit = strings.TrimSpace(row[5])
		}
		if len(row) > 6 {
			p.ImageURL = strings.TrimSpace(row[6])
		}
		if len(row) > 7 && strings.TrimSpace(row[7]) != "" {
			for _, color := range strings.Split(row[7], ",") {
				if c := strings.TrimSpace(color); c != "" {
					p.Colors = append(p.Colors, c)
				}
			}
		}
		products = append(products, p)
	}

	if skipped > 0 {
		fmt.Printf("Skipped %d invalid rows\n", skipped)
	}
	return products, nil
}
