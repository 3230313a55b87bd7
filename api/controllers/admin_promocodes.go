package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mallbilling/api/responses"
	"github.com/angelmondragon/mallbilling/api/validators"
	"github.com/angelmondragon/mallbilling/internal/promotions"
	"github.com/angelmondragon/mallbilling/pkg/logger"
)

type createPromoRequest struct {
	Code         string          `json:"code" validate:"required,max=32"`
	DiscountType string          `json:"discount_type" validate:"required,oneof=percent fixed"`
	Value        decimal.Decimal `json:"value"`
	ExpiresAt    string          `json:"expires_at,omitempty" validate:"omitempty,max=40"`
	Active       *bool           `json:"active,omitempty"`
}

func AdminListPromos(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promos, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, promos)
	}
}

func AdminCreatePromo(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createPromoRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promo, err := svc.Create(r.Context(), promotions.CreatePromoInput{
			Code:      body.Code,
			Kind:      body.DiscountType,
			Value:     body.Value,
			ExpiresAt: body.ExpiresAt,
			Active:    body.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, promo)
	}
}

// AdminTogglePromo flips the active flag.
func AdminTogglePromo(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promoID, err := validators.ParseUUIDParam(r, "promoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		promo, err := svc.Toggle(r.Context(), promoID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, promo)
	}
}
