package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/mallbilling/pkg/db"
	"github.com/angelmondragon/mallbilling/pkg/db/models"
	pkgerrors "github.com/angelmondragon/mallbilling/pkg/errors"
	"github.com/angelmondragon/mallbilling/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuickAddLimit caps the product list shown on the POS screen.
const QuickAddLimit = 50

// Service exposes catalog management and lookup operations.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	GetByBarcode(ctx context.Context, barcode string) (*ProductDTO, error)
	Search(ctx context.Context, query string, limit int) ([]ProductDTO, error)
	SetLowStock(ctx context.Context, id uuid.UUID, low bool) error
}

type service struct {
	repo *Repository
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	barcode := strings.TrimSpace(input.Barcode)
	if err := validateProduct(name, barcode, input.Price, input.Stock); err != nil {
		return nil, err
	}
	product := &models.Product{
		Name:     name,
		Barcode:  barcode,
		Price:    money.Round(input.Price),
		Stock:    input.Stock,
		LowStock: input.LowStock,
		ImageURL: normalizeImage(input.ImageURL),
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, mapWriteError(err, "create product")
	}
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapReadError(err, "load product")
	}

	columns := map[string]any{}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
		columns["name"] = product.Name
	}
	if input.Barcode != nil {
		product.Barcode = strings.TrimSpace(*input.Barcode)
		columns["barcode"] = product.Barcode
	}
	if input.Price != nil {
		product.Price = money.Round(*input.Price)
		columns["price"] = product.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
		columns["stock"] = product.Stock
	}
	if input.LowStock != nil {
		product.LowStock = *input.LowStock
		columns["low_stock"] = product.LowStock
	}
	if input.ImageURL != nil {
		product.ImageURL = normalizeImage(input.ImageURL)
		columns["image_url"] = product.ImageURL
	}
	if err := validateProduct(product.Name, product.Barcode, product.Price, product.Stock); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, columns)
	if err != nil {
		return nil, mapWriteError(err, "update product")
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapReadError(err, "delete product")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapReadError(err, "load product")
	}
	return FromModel(product), nil
}

func (s *service) GetByBarcode(ctx context.Context, barcode string) (*ProductDTO, error) {
	code := strings.TrimSpace(barcode)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}
	product, err := s.repo.FindByBarcode(ctx, code)
	if err != nil {
		return nil, mapReadError(err, "lookup barcode")
	}
	return FromModel(product), nil
}

func (s *service) Search(ctx context.Context, query string, limit int) ([]ProductDTO, error) {
	rows, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search products")
	}
	return fromModels(rows), nil
}

func (s *service) SetLowStock(ctx context.Context, id uuid.UUID, low bool) error {
	if err := s.repo.SetLowStock(ctx, id, low); err != nil {
		return mapReadError(err, "flag low stock")
	}
	return nil
}

func validateProduct(name, barcode string, price decimal.Decimal, stock int) error {
	switch {
	case name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case barcode == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	case price.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	case stock < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative")
	}
	return nil
}

func normalizeImage(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func mapReadError(err error, action string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

func mapWriteError(err error, action string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if db.IsUniqueViolation(err, "barcode") {
		return pkgerrors.New(pkgerrors.CodeConflict, "barcode already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
