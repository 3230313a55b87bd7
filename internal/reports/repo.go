package reports

import (
	"context"
	"time"

	"github.com/angelmondragon/mallbilling/pkg/db/models"
	"github.com/angelmondragon/mallbilling/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// saleRow is the slice of an order the time series needs.
type saleRow struct {
	CreatedAt time.Time
	Total     decimal.Decimal
}

type methodCount struct {
	PaymentMethod enums.PaymentMethod
	Orders        int64
}

// Repository runs the read-only aggregate queries behind reports.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SalesSince returns created_at and total of every order at or after from.
// Bucketing happens in Go so sqlite and postgres agree on labels.
func (r *Repository) SalesSince(ctx context.Context, from time.Time) ([]saleRow, error) {
	var rows []saleRow
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("created_at, total").
		Where("created_at >= ?", from).
		Order("created_at ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}

func (r *Repository) CountLowStock(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("low_stock = ?", true).Count(&n).Error
	return n, err
}

func (r *Repository) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error
	return n, err
}

func (r *Repository) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.Order{}).Select("COALESCE(SUM(total), 0)").Row().Scan(&total)
	return total, err
}

func (r *Repository) CountByPaymentMethod(ctx context.Context) ([]methodCount, error) {
	var rows []methodCount
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("payment_method, COUNT(*) AS orders").
		Group("payment_method").
		Scan(&rows).Error
	return rows, err
}
