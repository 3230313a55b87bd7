package cart

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/angelmondragon/mallbilling/pkg/db"
	"github.com/angelmondragon/mallbilling/pkg/db/models"
	pkgerrors "github.com/angelmondragon/mallbilling/pkg/errors"
	"github.com/angelmondragon/mallbilling/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// View is the POS screen: current lines, subtotal and an optional promo
// preview.
type View struct {
	Items        []Line          `json:"items"`
	ItemCount    int             `json:"item_count"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	PromoCode    string          `json:"promo_code,omitempty"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	PromoWarning string          `json:"promo_warning,omitempty"`
}

// Service manages the operator's cart.
type Service interface {
	Load(ctx context.Context, owner uuid.UUID) (*Cart, error)
	Add(ctx context.Context, owner, productID uuid.UUID) (int, error)
	AddByBarcode(ctx context.Context, owner uuid.UUID, barcode string) (*models.Product, int, error)
	SetQuantity(ctx context.Context, owner, productID uuid.UUID, qty int) error
	Clear(ctx context.Context, owner uuid.UUID) error
	RemoveSold(ctx context.Context, owner uuid.UUID, sold *Cart) error
	Reset(ctx context.Context, owner uuid.UUID) error
	View(ctx context.Context, owner uuid.UUID, promoCode string) (*View, error)
}

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type promoEvaluator interface {
	Evaluate(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error)
}

type service struct {
	store    *Store
	products productReader
	promos   promoEvaluator
}

func NewService(store *Store, products productReader, promos promoEvaluator) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if promos == nil {
		return nil, fmt.Errorf("promo evaluator required")
	}
	return &service{store: store, products: products, promos: promos}, nil
}

func (s *service) Load(ctx context.Context, owner uuid.UUID) (*Cart, error) {
	c, err := s.store.Load(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return c, nil
}

func (s *service) Add(ctx context.Context, owner, productID uuid.UUID) (int, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return 0, productLookupError(err)
	}
	return s.increment(ctx, owner, productID)
}

func (s *service) AddByBarcode(ctx context.Context, owner uuid.UUID, barcode string) (*models.Product, int, error) {
	code := strings.TrimSpace(barcode)
	if code == "" {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}
	product, err := s.products.FindByBarcode(ctx, code)
	if err != nil {
		return nil, 0, productLookupError(err)
	}
	qty, err := s.increment(ctx, owner, product.ID)
	if err != nil {
		return nil, 0, err
	}
	return product, qty, nil
}

func (s *service) SetQuantity(ctx context.Context, owner, productID uuid.UUID, qty int) error {
	if err := s.store.Set(ctx, owner, productID, qty); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, owner uuid.UUID) error {
	if err := s.store.Clear(ctx, owner); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// RemoveSold deducts a completed sale from the operator's cart.
func (s *service) RemoveSold(ctx context.Context, owner uuid.UUID, sold *Cart) error {
	if sold == nil {
		return nil
	}
	if err := s.store.Deduct(ctx, owner, sold); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart")
	}
	return nil
}

// Reset discards the cart when the operator signs out.
func (s *service) Reset(ctx context.Context, owner uuid.UUID) error {
	return s.Clear(ctx, owner)
}

func (s *service) View(ctx context.Context, owner uuid.UUID, promoCode string) (*View, error) {
	c, err := s.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	products, err := s.products.FindByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart products")
	}

	view := &View{Items: []Line{}, Subtotal: decimal.Zero, Discount: decimal.Zero}
	for line := range c.Lines(products) {
		view.Items = append(view.Items, line)
		view.ItemCount += line.Quantity
		view.Subtotal = view.Subtotal.Add(line.LineTotal)
	}
	slices.SortStableFunc(view.Items, func(a, b Line) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})

	if code := strings.ToUpper(strings.TrimSpace(promoCode)); code != "" {
		view.PromoCode = code
		discount, err := s.promos.Evaluate(ctx, code, view.Subtotal)
		switch {
		case err == nil:
			view.Discount = discount
		case pkgerrors.IsCode(err, pkgerrors.CodeInvalidPromo):
			view.PromoWarning = pkgerrors.As(err).Message()
		default:
			return nil, err
		}
	}
	view.Total = decimal.Max(decimal.Zero, money.Round(view.Subtotal.Sub(view.Discount)))
	return view, nil
}

func (s *service) increment(ctx context.Context, owner, productID uuid.UUID) (int, error) {
	qty, err := s.store.Increment(ctx, owner, productID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart")
	}
	return qty, nil
}

func productLookupError(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
}
