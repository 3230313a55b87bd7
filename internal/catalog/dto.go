package catalog

import (
	"time"

	"github.com/angelmondragon/mallbilling/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the API shape of a catalog entry.
type ProductDTO struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Barcode   string          `json:"barcode"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	LowStock  bool            `json:"low_stock"`
	ImageURL  *string         `json:"image_url,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name     string
	Barcode  string
	Price    decimal.Decimal
	Stock    int
	LowStock bool
	ImageURL *string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name     *string
	Barcode  *string
	Price    *decimal.Decimal
	Stock    *int
	LowStock *bool
	ImageURL *string
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:        p.ID,
		Name:      p.Name,
		Barcode:   p.Barcode,
		Price:     p.Price,
		Stock:     p.Stock,
		LowStock:  p.LowStock,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func fromModels(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
