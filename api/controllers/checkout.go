package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mallbilling/api/middleware"
	"github.com/angelmondragon/mallbilling/api/responses"
	"github.com/angelmondragon/mallbilling/api/validators"
	"github.com/angelmondragon/mallbilling/internal/cart"
	"github.com/angelmondragon/mallbilling/internal/checkout"
	pkgerrors "github.com/angelmondragon/mallbilling/pkg/errors"
	"github.com/angelmondragon/mallbilling/pkg/logger"
)

type checkoutRequest struct {
	PaymentMethod string           `json:"payment_method,omitempty" validate:"omitempty,max=16"`
	CashTendered  *decimal.Decimal `json:"cash_tendered,omitempty"`
	PromoCode     string           `json:"promo_code,omitempty" validate:"omitempty,max=32"`
}

// Checkout settles the operator's cart and returns the receipt-ready order.
func Checkout(svc checkout.Service, carts cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || carts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		owner, err := operatorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := carts.Load(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		operator := checkout.Operator{ID: owner, Username: middleware.UsernameFromContext(r.Context())}
		order, err := svc.Checkout(r.Context(), operator, c, checkout.Request{
			PaymentMethod: body.PaymentMethod,
			CashTendered:  body.CashTendered,
			PromoCode:     body.PromoCode,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
