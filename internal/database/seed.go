package database

import (
	"fmt"

	"kedai/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const demoProductName = "Classic Cotton Tee"

// Seed inserts demo catalog data and coupons. Running it twice is a no-op.
func Seed(db *gorm.DB, adminPassword string, log *zap.Logger) error {
	var count int64
	if err := db.Model(&models.Product{}).Where("name = ?", demoProductName).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check seed state: %w", err)
	}
	if count == 0 {
		productID := uuid.New().String()
		product := models.Product{
			ID:          productID,
			Name:        demoProductName,
			Description: "Plain crew neck t-shirt",
			Variants: []models.ProductVariant{
				{ID: uuid.New().String(), ProductID: productID, SKU: "TEE-S-BLK", Size: "S", Color: "Black",
					MRP: decimal.NewFromInt(1000), Price: decimal.NewFromInt(800), Stock: 25},
				{ID: uuid.New().String(), ProductID: productID, SKU: "TEE-M-BLK", Size: "M", Color: "Black",
					MRP: decimal.NewFromInt(1000), Price: decimal.NewFromInt(800), Stock: 25},
				{ID: uuid.New().String(), ProductID: productID, SKU: "TEE-L-WHT", Size: "L", Color: "White",
					MRP: decimal.NewFromInt(700), Price: decimal.NewFromInt(500), Stock: 10},
			},
		}
		if err := db.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to seed product: %w", err)
		}
		log.Info("Seeded demo product", zap.String("product_id", productID))
	}

	coupons := []models.Coupon{
		{Title: "Ten percent off", Code: "SAVE10", Type: models.CouponPercentage,
			Value: decimal.NewFromInt(10), MinOrderAmt: decimal.NewFromInt(1000), Active: true},
		{Title: "Flat 500", Code: "FLAT500", Type: models.CouponFixed,
			Value: decimal.NewFromInt(500), MinOrderAmt: decimal.NewFromInt(2000), IsOneTime: true, Active: true},
	}
	for i := range coupons {
		if err := db.Where(models.Coupon{Code: coupons[i].Code}).FirstOrCreate(&coupons[i]).Error; err != nil {
			return fmt.Errorf("failed to seed coupon %s: %w", coupons[i].Code, err)
		}
	}

	if adminPassword == "" {
		return nil
	}
	if err := db.Model(&models.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := models.User{
		ID:       uuid.New().String(),
		Username: "admin",
		Email:    "admin@kedai.local",
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	log.Info("Seeded admin user")
	return nil
}
