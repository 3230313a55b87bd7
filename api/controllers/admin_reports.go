package controllers

import (
	"net/http"

	"github.com/angelmondragon/mallbilling/api/responses"
	"github.com/angelmondragon/mallbilling/internal/reports"
	"github.com/angelmondragon/mallbilling/pkg/enums"
	"github.com/angelmondragon/mallbilling/pkg/logger"
)

func AdminDashboard(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dashboard, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard)
	}
}

// AdminSalesSummary returns the sales series; unknown ranges fall back to daily.
func AdminSalesSummary(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rng := enums.ParseReportRange(r.URL.Query().Get("range"))
		summary, err := svc.Summary(r.Context(), rng)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
