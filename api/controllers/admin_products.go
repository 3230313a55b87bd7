package controllers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mallbilling/api/responses"
	"github.com/angelmondragon/mallbilling/api/validators"
	"github.com/angelmondragon/mallbilling/internal/catalog"
	pkgerrors "github.com/angelmondragon/mallbilling/pkg/errors"
	"github.com/angelmondragon/mallbilling/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type productExporter interface {
	WriteXLSX(ctx context.Context, w io.Writer) error
}

type createProductRequest struct {
	Name     string          `json:"name" validate:"required,max=200"`
	Barcode  string          `json:"barcode" validate:"required,max=64"`
	Price    decimal.Decimal `json:"price"`
	Stock    *int            `json:"stock" validate:"required,gte=0"`
	LowStock bool            `json:"low_stock,omitempty"`
	ImageURL *string         `json:"image_url,omitempty" validate:"omitempty,max=500"`
}

func (r createProductRequest) toInput() catalog.CreateProductInput {
	return catalog.CreateProductInput{
		Name:     r.Name,
		Barcode:  r.Barcode,
		Price:    r.Price,
		Stock:    *r.Stock,
		LowStock: r.LowStock,
		ImageURL: r.ImageURL,
	}
}

type updateProductRequest struct {
	Name     *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Barcode  *string          `json:"barcode,omitempty" validate:"omitempty,min=1,max=64"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Stock    *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	LowStock *bool            `json:"low_stock,omitempty"`
	ImageURL *string          `json:"image_url,omitempty" validate:"omitempty,max=500"`
}

func (r updateProductRequest) toInput() catalog.UpdateProductInput {
	return catalog.UpdateProductInput{
		Name:     r.Name,
		Barcode:  r.Barcode,
		Price:    r.Price,
		Stock:    r.Stock,
		LowStock: r.LowStock,
		ImageURL: r.ImageURL,
	}
}

// AdminListProducts lists the whole catalog, optionally filtered by ?q=.
func AdminListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 1000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query := validators.SanitizeString(r.URL.Query().Get("q"), 64)

		products, err := svc.Search(r.Context(), query, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AdminGetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), productID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminDeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AdminExportProducts downloads the catalog as a spreadsheet.
func AdminExportProducts(exporter productExporter, now func() time.Time, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := exporter.WriteXLSX(r.Context(), &buf); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "export products"))
			return
		}
		filename := "products-" + now().UTC().Format("20060102") + ".xlsx"
		responses.WriteAttachment(w, xlsxContentType, filename, buf.Bytes())
	}
}
