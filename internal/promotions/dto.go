package promotions

import (
	"time"

	"github.com/angelmondragon/mallbilling/pkg/db/models"
	"github.com/angelmondragon/mallbilling/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PromoCodeDTO is the admin view of a promo code.
type PromoCodeDTO struct {
	ID        uuid.UUID          `json:"id"`
	Code      string             `json:"code"`
	Kind      enums.DiscountKind `json:"discount_type"`
	Value     decimal.Decimal    `json:"value"`
	Active    bool               `json:"active"`
	ExpiresAt *time.Time         `json:"expires_at,omitempty"`
	Expired   bool               `json:"expired"`
	CreatedAt time.Time          `json:"created_at"`
}

// CreatePromoInput carries the raw admin form. Expiry accepts RFC3339 or a
// bare YYYY-MM-DD date.
type CreatePromoInput struct {
	Code      string
	Kind      string
	Value     decimal.Decimal
	ExpiresAt string
	Active    *bool
}

func fromModel(p *models.PromoCode, now time.Time) *PromoCodeDTO {
	return &PromoCodeDTO{
		ID:        p.ID,
		Code:      p.Code,
		Kind:      p.Kind,
		Value:     p.Value,
		Active:    p.Active,
		ExpiresAt: p.ExpiresAt,
		Expired:   p.ExpiresAt != nil && p.ExpiresAt.Before(now),
		CreatedAt: p.CreatedAt,
	}
}
