package models

import (
	"time"

	"github.com/angelmondragon/mallbilling/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PromoCode is an admin-managed discount redeemable at checkout.
type PromoCode struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Code      string             `gorm:"column:code;not null;uniqueIndex"`
	Kind      enums.DiscountKind `gorm:"column:discount_type;type:text;not null"`
	Value     decimal.Decimal    `gorm:"column:value;type:numeric(12,2);not null"`
	Active    bool               `gorm:"column:active;not null"`
	ExpiresAt *time.Time         `gorm:"column:expires_at"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *PromoCode) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// IsRedeemable reports whether the code may be applied at now.
func (p PromoCode) IsRedeemable(now time.Time) bool {
	if !p.Active {
		return false
	}
	return p.ExpiresAt == nil || !p.ExpiresAt.Before(now)
}
