package models

import (
	"time"

	"github.com/angelmondragon/mallbilling/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is the immutable record of one completed checkout.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CashierID     *uuid.UUID          `gorm:"column:cashier_id;type:uuid"`
	CashierName   string              `gorm:"column:cashier_name;not null"`
	Subtotal      decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount      decimal.Decimal     `gorm:"column:discount;type:numeric(12,2);not null"`
	PromoCode     *string             `gorm:"column:promo_code"`
	Total         decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	AmountPaid    decimal.Decimal     `gorm:"column:amount_paid;type:numeric(12,2);not null"`
	ChangeDue     decimal.Decimal     `gorm:"column:change_due;type:numeric(12,2);not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime;index"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// Number is the short receipt reference printed for customers.
func (o Order) Number() string {
	return "ORD-" + o.ID.String()[:8]
}
