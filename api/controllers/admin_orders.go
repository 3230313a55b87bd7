package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/mallbilling/api/responses"
	"github.com/angelmondragon/mallbilling/api/validators"
	"github.com/angelmondragon/mallbilling/internal/orders"
	"github.com/angelmondragon/mallbilling/pkg/logger"
	"github.com/angelmondragon/mallbilling/pkg/pagination"
)

// AdminListOrders pages through order history, newest first.
func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
