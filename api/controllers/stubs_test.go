package controllers

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mallbilling/internal/auth"
	"github.com/angelmondragon/mallbilling/internal/cart"
	"github.com/angelmondragon/mallbilling/internal/catalog"
	"github.com/angelmondragon/mallbilling/internal/checkout"
	"github.com/angelmondragon/mallbilling/internal/orders"
	"github.com/angelmondragon/mallbilling/internal/promotions"
	"github.com/angelmondragon/mallbilling/internal/reports"
	"github.com/angelmondragon/mallbilling/internal/users"
	"github.com/angelmondragon/mallbilling/pkg/db/models"
	"github.com/angelmondragon/mallbilling/pkg/enums"
	"github.com/angelmondragon/mallbilling/pkg/pagination"
)

type stubAuth struct {
	registered *auth.RegisterRequest
	refreshed  [2]string
	loggedOut  string
}

func (s *stubAuth) Login(_ context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{
		TokenPair: auth.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
		User:      &users.UserDTO{Username: req.Username},
	}, nil
}

func (s *stubAuth) Register(_ context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	s.registered = &req
	return &users.UserDTO{Username: req.Username, Role: enums.RoleOrCashier(req.Role)}, nil
}

func (s *stubAuth) Refresh(_ context.Context, accessToken, refreshToken string) (*auth.TokenPair, error) {
	s.refreshed = [2]string{accessToken, refreshToken}
	return &auth.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
}

func (s *stubAuth) Logout(_ context.Context, accessToken string) error {
	s.loggedOut = accessToken
	return nil
}

type stubCart struct {
	added      []uuid.UUID
	scanned    []string
	quantities map[uuid.UUID]int
	cleared    bool
	promoSeen  string
	addErr     error
	loaded     *cart.Cart
}

func newStubCart() *stubCart {
	return &stubCart{quantities: map[uuid.UUID]int{}}
}

func (s *stubCart) Load(_ context.Context, owner uuid.UUID) (*cart.Cart, error) {
	if s.loaded != nil {
		return s.loaded, nil
	}
	return cart.New(owner), nil
}

func (s *stubCart) Add(_ context.Context, _ uuid.UUID, productID uuid.UUID) (int, error) {
	if s.addErr != nil {
		return 0, s.addErr
	}
	s.added = append(s.added, productID)
	return 1, nil
}

func (s *stubCart) AddByBarcode(_ context.Context, _ uuid.UUID, barcode string) (*models.Product, int, error) {
	if s.addErr != nil {
		return nil, 0, s.addErr
	}
	s.scanned = append(s.scanned, barcode)
	return &models.Product{Barcode: barcode}, 1, nil
}

func (s *stubCart) SetQuantity(_ context.Context, _ uuid.UUID, productID uuid.UUID, qty int) error {
	s.quantities[productID] = qty
	return nil
}

func (s *stubCart) Clear(context.Context, uuid.UUID) error {
	s.cleared = true
	return nil
}

func (s *stubCart) RemoveSold(context.Context, uuid.UUID, *cart.Cart) error {
	return nil
}

func (s *stubCart) Reset(context.Context, uuid.UUID) error {
	return nil
}

func (s *stubCart) View(_ context.Context, _ uuid.UUID, promoCode string) (*cart.View, error) {
	s.promoSeen = promoCode
	return &cart.View{Items: []cart.Line{}, PromoCode: promoCode, Subtotal: decimal.Zero, Discount: decimal.Zero, Total: decimal.Zero}, nil
}

type stubCatalog struct {
	lastQuery string
	lastLimit int
	created   *catalog.CreateProductInput
	updated   *catalog.UpdateProductInput
	deleted   uuid.UUID
	lowStock  map[uuid.UUID]bool
	err       error
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{lowStock: map[uuid.UUID]bool{}}
}

func (s *stubCatalog) Create(_ context.Context, input catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = &input
	return &catalog.ProductDTO{ID: uuid.New(), Name: input.Name, Barcode: input.Barcode, Price: input.Price, Stock: input.Stock}, nil
}

func (s *stubCatalog) Update(_ context.Context, id uuid.UUID, input catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.updated = &input
	return &catalog.ProductDTO{ID: id}, nil
}

func (s *stubCatalog) Delete(_ context.Context, id uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = id
	return nil
}

func (s *stubCatalog) Get(_ context.Context, id uuid.UUID) (*catalog.ProductDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &catalog.ProductDTO{ID: id}, nil
}

func (s *stubCatalog) GetByBarcode(_ context.Context, barcode string) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{Barcode: barcode}, nil
}

func (s *stubCatalog) Search(_ context.Context, query string, limit int) ([]catalog.ProductDTO, error) {
	s.lastQuery, s.lastLimit = query, limit
	return []catalog.ProductDTO{}, nil
}

func (s *stubCatalog) SetLowStock(_ context.Context, id uuid.UUID, low bool) error {
	if s.err != nil {
		return s.err
	}
	s.lowStock[id] = low
	return nil
}

type stubCheckout struct {
	operator checkout.Operator
	cart     *cart.Cart
	request  checkout.Request
	err      error
}

func (s *stubCheckout) Checkout(_ context.Context, operator checkout.Operator, c *cart.Cart, req checkout.Request) (*orders.OrderDTO, error) {
	s.operator, s.cart, s.request = operator, c, req
	if s.err != nil {
		return nil, s.err
	}
	id := uuid.New()
	return &orders.OrderDTO{ID: id, Number: "ORD-" + id.String()[:8], Total: decimal.NewFromInt(90)}, nil
}

type stubOrders struct {
	params pagination.Params
	order  *orders.OrderDTO
	err    error
}

func (s *stubOrders) Get(_ context.Context, id uuid.UUID) (*orders.OrderDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.order != nil {
		return s.order, nil
	}
	return &orders.OrderDTO{ID: id, Number: "ORD-" + id.String()[:8]}, nil
}

func (s *stubOrders) List(_ context.Context, params pagination.Params) (*orders.OrderList, error) {
	s.params = params
	return &orders.OrderList{Items: []orders.OrderDTO{}, NextCursor: "next"}, nil
}

type stubPromos struct {
	created *promotions.CreatePromoInput
	toggled uuid.UUID
}

func (s *stubPromos) Create(_ context.Context, input promotions.CreatePromoInput) (*promotions.PromoCodeDTO, error) {
	s.created = &input
	return &promotions.PromoCodeDTO{ID: uuid.New(), Code: promotions.NormalizeCode(input.Code), Kind: enums.DiscountKind(input.Kind), Value: input.Value, Active: true}, nil
}

func (s *stubPromos) Toggle(_ context.Context, id uuid.UUID) (*promotions.PromoCodeDTO, error) {
	s.toggled = id
	return &promotions.PromoCodeDTO{ID: id}, nil
}

func (s *stubPromos) List(context.Context) ([]promotions.PromoCodeDTO, error) {
	return []promotions.PromoCodeDTO{}, nil
}

func (s *stubPromos) Evaluate(context.Context, string, decimal.Decimal) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type stubReports struct {
	lastRange enums.ReportRange
}

func (s *stubReports) Summary(_ context.Context, rng enums.ReportRange) (*reports.Summary, error) {
	s.lastRange = rng
	return &reports.Summary{Range: rng, Series: []reports.Bucket{}}, nil
}

func (s *stubReports) Daily(context.Context, int) ([]reports.Bucket, error) { return nil, nil }
func (s *stubReports) Weekly(context.Context) ([]reports.Bucket, error)     { return nil, nil }
func (s *stubReports) Monthly(context.Context) ([]reports.Bucket, error)    { return nil, nil }

func (s *stubReports) Dashboard(context.Context) (*reports.Dashboard, error) {
	return &reports.Dashboard{TotalProducts: 7, TotalSales: decimal.NewFromInt(100)}, nil
}

type stubRenderer struct{}

func (stubRenderer) Render(_ context.Context, id uuid.UUID, w io.Writer) (string, error) {
	_, err := w.Write([]byte("%PDF-1.3 stub"))
	return "ORD-" + id.String()[:8], err
}

type stubExporter struct{}

func (stubExporter) WriteXLSX(_ context.Context, w io.Writer) error {
	_, err := w.Write([]byte("PK"))
	return err
}
