package promotions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/mallbilling/pkg/db"
	"github.com/angelmondragon/mallbilling/pkg/db/models"
	"github.com/angelmondragon/mallbilling/pkg/enums"
	pkgerrors "github.com/angelmondragon/mallbilling/pkg/errors"
	"github.com/angelmondragon/mallbilling/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Service manages promo codes and prices them against a subtotal.
type Service interface {
	Create(ctx context.Context, input CreatePromoInput) (*PromoCodeDTO, error)
	Toggle(ctx context.Context, id uuid.UUID) (*PromoCodeDTO, error)
	List(ctx context.Context) ([]PromoCodeDTO, error)
	Evaluate(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error)
}

type repository interface {
	Create(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PromoCode, error)
	FindActiveByCode(ctx context.Context, code string) (*models.PromoCode, error)
	List(ctx context.Context) ([]models.PromoCode, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type service struct {
	repo repository
	now  func() time.Time
}

// NewService constructs a promotions service. A nil clock uses time.Now.
func NewService(repo repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promo repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) Create(ctx context.Context, input CreatePromoInput) (*PromoCodeDTO, error) {
	code := NormalizeCode(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	kind, err := enums.ParseDiscountKind(input.Kind)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount_type must be percent or fixed")
	}
	if input.Value.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "value must be non-negative")
	}
	if !money.HasCents(input.Value) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "value must have at most 2 decimal places")
	}
	expiresAt, err := ParseExpiry(input.ExpiresAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "expires_at must be YYYY-MM-DD or RFC3339")
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}

	promo, err := s.repo.Create(ctx, &models.PromoCode{
		Code:      code,
		Kind:      kind,
		Value:     input.Value,
		Active:    active,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "promo code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create promo code")
	}
	return fromModel(promo, s.now()), nil
}

func (s *service) Toggle(ctx context.Context, id uuid.UUID) (*PromoCodeDTO, error) {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promo code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load promo code")
	}
	promo.Active = !promo.Active
	if err := s.repo.SetActive(ctx, id, promo.Active); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "toggle promo code")
	}
	return fromModel(promo, s.now()), nil
}

func (s *service) List(ctx context.Context) ([]PromoCodeDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list promo codes")
	}
	now := s.now()
	out := make([]PromoCodeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *fromModel(&rows[i], now))
	}
	return out, nil
}

// Evaluate resolves code and returns the discount it grants on subtotal.
// Unknown, inactive and expired codes fail with INVALID_PROMO.
func (s *service) Evaluate(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	normalized := NormalizeCode(code)
	invalid := pkgerrors.New(pkgerrors.CodeInvalidPromo, "invalid or expired promo code").
		WithDetails(map[string]string{"code": normalized})
	if normalized == "" {
		return decimal.Zero, invalid
	}

	promo, err := s.repo.FindActiveByCode(ctx, normalized)
	if err != nil {
		if db.IsNotFound(err) {
			return decimal.Zero, invalid
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup promo code")
	}
	if !promo.IsRedeemable(s.now()) {
		return decimal.Zero, invalid
	}
	return Discount(promo.Kind, promo.Value, subtotal), nil
}

// Discount prices a promo against subtotal. The result is always within
// [0, subtotal].
func Discount(kind enums.DiscountKind, value, subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() || !value.IsPositive() {
		return decimal.Zero
	}
	var discount decimal.Decimal
	switch kind {
	case enums.DiscountKindPercent:
		discount = money.Percent(subtotal, value)
	case enums.DiscountKindFixed:
		discount = value
	default:
		return decimal.Zero
	}
	return money.Clamp(discount, decimal.Zero, subtotal)
}

// NormalizeCode trims and upper-cases a promo code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ParseExpiry accepts "", RFC3339 or YYYY-MM-DD. A bare date expires at the
// last instant of that day in UTC.
func ParseExpiry(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		utc := t.UTC()
		return &utc, nil
	}
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry %q", raw)
	}
	end := day.Add(24*time.Hour - time.Microsecond).UTC()
	return &end, nil
}
