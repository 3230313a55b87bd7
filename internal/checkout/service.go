package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/mallbilling/internal/cart"
	"github.com/angelmondragon/mallbilling/internal/catalog"
	"github.com/angelmondragon/mallbilling/internal/orders"
	"github.com/angelmondragon/mallbilling/pkg/db/models"
	"github.com/angelmondragon/mallbilling/pkg/enums"
	pkgerrors "github.com/angelmondragon/mallbilling/pkg/errors"
	"github.com/angelmondragon/mallbilling/pkg/logger"
	"github.com/angelmondragon/mallbilling/pkg/metrics"
	"github.com/angelmondragon/mallbilling/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Request is the checkout form. An empty payment method means cash.
type Request struct {
	PaymentMethod string
	CashTendered  *decimal.Decimal
	PromoCode     string
}

// Operator identifies the cashier ringing up the sale.
type Operator struct {
	ID       uuid.UUID
	Username string
}

// Service converts a cart into a persisted order.
type Service interface {
	Checkout(ctx context.Context, operator Operator, c *cart.Cart, req Request) (*orders.OrderDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type promoEvaluator interface {
	Evaluate(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error)
}

// cartSettler takes sold lines off the operator's cart once the order commits.
type cartSettler interface {
	RemoveSold(ctx context.Context, owner uuid.UUID, sold *cart.Cart) error
}

// ServiceParams bundles the dependencies required to build a checkout service.
type ServiceParams struct {
	TX       txRunner
	Products *catalog.Repository
	Orders   *orders.Repository
	Promos   promoEvaluator
	Carts    cartSettler
	Metrics  *metrics.CheckoutMetrics
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	tx       txRunner
	products *catalog.Repository
	orders   *orders.Repository
	promos   promoEvaluator
	carts    cartSettler
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.TX == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Products == nil:
		return nil, fmt.Errorf("product repository required")
	case params.Orders == nil:
		return nil, fmt.Errorf("orders repository required")
	case params.Promos == nil:
		return nil, fmt.Errorf("promo evaluator required")
	case params.Carts == nil:
		return nil, fmt.Errorf("cart settler required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tx:       params.TX,
		products: params.Products,
		orders:   params.Orders,
		promos:   params.Promos,
		carts:    params.Carts,
		metrics:  params.Metrics,
		logg:     logg,
		now:      now,
	}, nil
}

func (s *service) Checkout(ctx context.Context, operator Operator, c *cart.Cart, req Request) (*orders.OrderDTO, error) {
	started := s.now()
	order, err := s.checkout(ctx, operator, c, req)
	if err != nil {
		s.metrics.IncFailure(string(failureCode(err)))
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	if err := s.carts.RemoveSold(ctx, operator.ID, c); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "order committed but sold lines stayed in the cart")
	}
	total, _ := order.Total.Float64()
	s.metrics.ObserveOrder(order.PaymentMethod.String(), total, s.now().Sub(started))
	s.logg.Info(ctx, "checkout completed")
	return orders.FromModel(order), nil
}

func (s *service) checkout(ctx context.Context, operator Operator, c *cart.Cart, req Request) (*models.Order, error) {
	method, err := parseMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if c == nil || c.IsEmpty() {
		return nil, emptyCartError()
	}

	entries, err := s.resolve(ctx, c)
	if err != nil {
		return nil, err
	}
	subtotal, err := Subtotal(entries)
	if err != nil {
		return nil, err
	}

	discount := decimal.Zero
	var promoCode *string
	if code := strings.ToUpper(strings.TrimSpace(req.PromoCode)); code != "" {
		discount, err = s.promos.Evaluate(ctx, code, subtotal)
		if err != nil {
			return nil, err
		}
		promoCode = &code
	}

	totals, err := Settle(subtotal, discount, method, req.CashTendered)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		CashierName:   operator.Username,
		Subtotal:      money.Round(totals.Subtotal),
		Discount:      totals.Discount,
		PromoCode:     promoCode,
		Total:         totals.Total,
		AmountPaid:    money.Round(totals.AmountPaid),
		ChangeDue:     totals.ChangeDue,
		PaymentMethod: method,
		CreatedAt:     s.now().UTC(),
	}
	if operator.ID != uuid.Nil {
		id := operator.ID
		order.CashierID = &id
	}
	for _, entry := range entries {
		productID := entry.ProductID
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   &productID,
			ProductName: entry.Product.Name,
			Quantity:    entry.Quantity,
			UnitPrice:   entry.Product.Price,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)
		for _, entry := range entries {
			ok, err := products.DecrementStock(ctx, entry.ProductID, entry.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
			if !ok {
				return InsufficientStockError(entry.Product.Name)
			}
		}
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// resolve joins the cart with the catalog in cart order.
func (s *service) resolve(ctx context.Context, c *cart.Cart) ([]Entry, error) {
	ids := c.ProductIDs()
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart products")
	}
	entries := make([]Entry, 0, len(ids))
	for id, qty := range c.Entries() {
		entry := Entry{ProductID: id, Quantity: qty}
		if p, ok := products[id]; ok {
			entry.Product = &p
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseMethod(raw string) (enums.PaymentMethod, error) {
	if strings.TrimSpace(raw) == "" {
		return enums.PaymentMethodCash, nil
	}
	method, err := enums.ParsePaymentMethod(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment_method must be one of cash, card, upi, wallet")
	}
	return method, nil
}

func failureCode(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return pkgerrors.CodeInternal
}
