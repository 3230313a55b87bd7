// Package seed loads the default operators and the sample mall catalog.
package seed

import (
	"context"
	"fmt"

	"github.com/angelmondragon/mallbilling/internal/users"
	"github.com/angelmondragon/mallbilling/pkg/config"
	"github.com/angelmondragon/mallbilling/pkg/db"
	"github.com/angelmondragon/mallbilling/pkg/db/models"
	"github.com/angelmondragon/mallbilling/pkg/enums"
	"github.com/angelmondragon/mallbilling/pkg/security"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type account struct {
	username string
	password string
	role     enums.Role
}

type sampleProduct struct {
	name     string
	barcode  string
	price    string
	stock    int
	imageURL string
}

var defaultAccounts = []account{
	{username: "admin", password: "admin123", role: enums.RoleAdmin},
	{username: "cashier", password: "cashier123", role: enums.RoleCashier},
}

var sampleCatalog = []sampleProduct{
	{"Men's T-Shirt", "CLOTH001", "799.00", 120, "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=300&h=300&fit=crop"},
	{"Women's Handbag", "ACCS001", "2499.00", 60, "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=300&h=300&fit=crop"},
	{"Bluetooth Earbuds", "ELEC001", "1999.00", 80, "https://images.unsplash.com/photo-1606220945770-b5b6c2c55bf1?w=300&h=300&fit=crop"},
	{"Laptop 14", "ELEC002", "49999.00", 20, "https://images.unsplash.com/photo-1496181133206-80ce9b88a853?w=300&h=300&fit=crop"},
	{"Kids Sneakers", "CLOTH002", "1499.00", 50, "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=300&h=300&fit=crop"},
	{"Smartwatch", "ELEC003", "6999.00", 35, "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=300&h=300&fit=crop"},
	{"Saree Silk", "CLOTH003", "3999.00", 25, "https://images.unsplash.com/photo-1594633312681-425c7b97ccd1?w=300&h=300&fit=crop"},
}

// Result counts the rows written by Run.
type Result struct {
	Users    int
	Products int
}

// Run inserts the default accounts and sample products. Rows that already
// exist, matched by username or barcode, are left untouched, so Run can be
// repeated safely.
func Run(ctx context.Context, conn *gorm.DB, pwd config.PasswordConfig) (Result, error) {
	var res Result
	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := users.NewRepository(tx)
		for _, acct := range defaultAccounts {
			_, err := repo.FindByUsername(ctx, acct.username)
			if err == nil {
				continue
			}
			if !db.IsNotFound(err) {
				return fmt.Errorf("lookup user %s: %w", acct.username, err)
			}
			hash, err := security.HashPassword(acct.password, pwd)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", acct.username, err)
			}
			if _, err := repo.Create(ctx, users.CreateUserDTO{
				Username:     acct.username,
				PasswordHash: hash,
				Role:         acct.role,
			}); err != nil {
				return fmt.Errorf("create user %s: %w", acct.username, err)
			}
			res.Users++
		}

		for _, sample := range sampleCatalog {
			var existing int64
			if err := tx.Model(&models.Product{}).Where("barcode = ?", sample.barcode).Count(&existing).Error; err != nil {
				return fmt.Errorf("lookup product %s: %w", sample.barcode, err)
			}
			if existing > 0 {
				continue
			}
			imageURL := sample.imageURL
			product := models.Product{
				Name:     sample.name,
				Barcode:  sample.barcode,
				Price:    decimal.RequireFromString(sample.price),
				Stock:    sample.stock,
				ImageURL: &imageURL,
			}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("create product %s: %w", sample.barcode, err)
			}
			res.Products++
		}
		return nil
	})
	return res, err
}
