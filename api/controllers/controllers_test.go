package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mallbilling/api/middleware"
	"github.com/angelmondragon/mallbilling/pkg/config"
	"github.com/angelmondragon/mallbilling/pkg/enums"
	pkgerrors "github.com/angelmondragon/mallbilling/pkg/errors"
	"github.com/angelmondragon/mallbilling/pkg/logger"
)

type request struct {
	method string
	path   string
	body   string
	user   uuid.UUID
	role   enums.Role
	params map[string]string
	header map[string]string
}

func serve(t *testing.T, h http.HandlerFunc, req request) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if req.body != "" {
		r = httptest.NewRequest(req.method, req.path, strings.NewReader(req.body))
	} else {
		r = httptest.NewRequest(req.method, req.path, nil)
	}
	for k, v := range req.header {
		r.Header.Set(k, v)
	}
	ctx := r.Context()
	if req.user != uuid.Nil {
		ctx = middleware.WithUserID(ctx, req.user.String())
		ctx = middleware.WithUsername(ctx, "till-1")
	}
	if req.role != "" {
		ctx = middleware.WithRole(ctx, string(req.role))
	}
	rc := chi.NewRouteContext()
	for k, v := range req.params {
		rc.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rc)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r.WithContext(ctx))
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code
}

func testLogger() *logger.Logger {
	return logger.Nop()
}

func TestAuthLogin(t *testing.T) {
	svc := &stubAuth{}
	rec := serve(t, AuthLogin(svc, testLogger()), request{method: http.MethodPost, path: "/api/v1/auth/login", body: `{"username":"cashier","password":"cashier123"}`})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AccessToken string `json:"access_token"`
		User        struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	decodeData(t, rec, &body)
	assert.Equal(t, "access", body.AccessToken)
	assert.Equal(t, "cashier", body.User.Username)

	rec = serve(t, AuthLogin(svc, testLogger()), request{method: http.MethodPost, path: "/api/v1/auth/login", body: `{"username":"cashier"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthRegisterRoleHandling(t *testing.T) {
	body := `{"username":"newbie","password":"secret1","role":"admin"}`

	t.Run("anonymous caller becomes cashier", func(t *testing.T) {
		svc := &stubAuth{}
		rec := serve(t, AuthRegister(svc, true, testLogger()), request{method: http.MethodPost, path: "/api/v1/auth/register", body: body})
		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, svc.registered)
		assert.Empty(t, svc.registered.Role)
	})

	t.Run("admin may choose the role", func(t *testing.T) {
		svc := &stubAuth{}
		rec := serve(t, AuthRegister(svc, false, testLogger()), request{method: http.MethodPost, path: "/api/v1/auth/register", body: body, user: uuid.New(), role: enums.RoleAdmin})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "admin", svc.registered.Role)
	})

	t.Run("closed registration rejects anonymous callers", func(t *testing.T) {
		svc := &stubAuth{}
		rec := serve(t, AuthRegister(svc, false, testLogger()), request{method: http.MethodPost, path: "/api/v1/auth/register", body: body})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Nil(t, svc.registered)
	})
}

func TestAuthRefreshAndLogout(t *testing.T) {
	svc := &stubAuth{}

	rec := serve(t, AuthRefresh(svc, testLogger()), request{method: http.MethodPost, path: "/api/v1/auth/refresh", body: `{"refresh_token":"r1"}`})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, AuthRefresh(svc, testLogger()), request{
		method: http.MethodPost, path: "/api/v1/auth/refresh", body: `{"refresh_token":"r1"}`,
		header: map[string]string{"Authorization": "Bearer expired-token"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [2]string{"expired-token", "r1"}, svc.refreshed)

	rec = serve(t, AuthLogout(svc, testLogger()), request{
		method: http.MethodPost, path: "/api/v1/auth/logout",
		header: map[string]string{"Authorization": "Bearer live-token"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "live-token", svc.loggedOut)
}

func TestPosCartRequiresOperator(t *testing.T) {
	rec := serve(t, PosCart(newStubCart(), testLogger()), request{method: http.MethodGet, path: "/api/v1/pos"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPosCartPassesPromoPreview(t *testing.T) {
	carts := newStubCart()
	rec := serve(t, PosCart(carts, testLogger()), request{method: http.MethodGet, path: "/api/v1/pos?promo=%20save10%20", user: uuid.New()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "save10", carts.promoSeen)
}

func TestPosAddItem(t *testing.T) {
	user := uuid.New()
	productID := uuid.New()

	t.Run("by product id", func(t *testing.T) {
		carts := newStubCart()
		rec := serve(t, PosAddItem(carts, testLogger()), request{method: http.MethodPost, path: "/api/v1/pos/items", body: `{"product_id":"` + productID.String() + `"}`, user: user})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []uuid.UUID{productID}, carts.added)
	})

	t.Run("by barcode", func(t *testing.T) {
		carts := newStubCart()
		rec := serve(t, PosAddItem(carts, testLogger()), request{method: http.MethodPost, path: "/api/v1/pos/items", body: `{"barcode":"8901234567890"}`, user: user})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"8901234567890"}, carts.scanned)
	})

	t.Run("needs id or barcode", func(t *testing.T) {
		rec := serve(t, PosAddItem(newStubCart(), testLogger()), request{method: http.MethodPost, path: "/api/v1/pos/items", body: `{}`, user: user})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		carts := newStubCart()
		carts.addErr = pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		rec := serve(t, PosAddItem(carts, testLogger()), request{method: http.MethodPost, path: "/api/v1/pos/items", body: `{"barcode":"missing"}`, user: user})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPosSetQuantityAndClear(t *testing.T) {
	user := uuid.New()
	productID := uuid.New()
	carts := newStubCart()

	rec := serve(t, PosSetQuantity(carts, testLogger()), request{
		method: http.MethodPut, path: "/api/v1/pos/items/" + productID.String(), body: `{"qty":3}`,
		user: user, params: map[string]string{"productId": productID.String()},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, carts.quantities[productID])

	rec = serve(t, PosSetQuantity(carts, testLogger()), request{
		method: http.MethodPut, path: "/api/v1/pos/items/" + productID.String(), body: `{}`,
		user: user, params: map[string]string{"productId": productID.String()},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, PosSetQuantity(carts, testLogger()), request{
		method: http.MethodPut, path: "/api/v1/pos/items/nope", body: `{"qty":1}`,
		user: user, params: map[string]string{"productId": "nope"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, PosClearCart(carts, testLogger()), request{method: http.MethodDelete, path: "/api/v1/pos", user: user})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, carts.cleared)
}

func TestPosProductsCapsQuickAddList(t *testing.T) {
	products := newStubCatalog()
	rec := serve(t, PosProducts(products, testLogger()), request{method: http.MethodGet, path: "/api/v1/pos/products?q=milk", user: uuid.New()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "milk", products.lastQuery)
	assert.Equal(t, 50, products.lastLimit)

	rec = serve(t, PosProducts(products, testLogger()), request{method: http.MethodGet, path: "/api/v1/pos/products?limit=500", user: uuid.New()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPosFlagLowStock(t *testing.T) {
	products := newStubCatalog()
	productID := uuid.New()
	params := map[string]string{"productId": productID.String()}

	rec := serve(t, PosFlagLowStock(products, true, testLogger()), request{method: http.MethodPost, path: "/", user: uuid.New(), params: params})
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, products.lowStock[productID])

	rec = serve(t, PosFlagLowStock(products, false, testLogger()), request{method: http.MethodDelete, path: "/", user: uuid.New(), params: params})
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, products.lowStock[productID])
}

func TestCheckoutController(t *testing.T) {
	user := uuid.New()

	t.Run("creates order from the loaded cart", func(t *testing.T) {
		svc := &stubCheckout{}
		carts := newStubCart()
		rec := serve(t, Checkout(svc, carts, testLogger()), request{
			method: http.MethodPost, path: "/api/v1/checkout",
			body: `{"payment_method":"cash","cash_tendered":"100.00","promo_code":"save10"}`,
			user: user,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, user, svc.operator.ID)
		assert.Equal(t, "till-1", svc.operator.Username)
		require.NotNil(t, svc.cart)
		assert.Equal(t, user, svc.cart.OwnerID)
		assert.Equal(t, "cash", svc.request.PaymentMethod)
		assert.Equal(t, "save10", svc.request.PromoCode)
		require.NotNil(t, svc.request.CashTendered)
		assert.True(t, svc.request.CashTendered.Equal(decimal.NewFromInt(100)))
	})

	t.Run("maps stock failures to conflict", func(t *testing.T) {
		svc := &stubCheckout{err: pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for Milk").WithDetails(map[string]any{"product": "Milk"})}
		rec := serve(t, Checkout(svc, newStubCart(), testLogger()), request{method: http.MethodPost, path: "/api/v1/checkout", body: `{"payment_method":"card"}`, user: user})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, string(pkgerrors.CodeInsufficientStock), errorCode(t, rec))
	})

	t.Run("maps empty carts to unprocessable", func(t *testing.T) {
		svc := &stubCheckout{err: pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")}
		rec := serve(t, Checkout(svc, newStubCart(), testLogger()), request{method: http.MethodPost, path: "/api/v1/checkout", body: `{}`, user: user})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestReceipts(t *testing.T) {
	orderID := uuid.New()
	params := map[string]string{"orderId": orderID.String()}

	rec := serve(t, Receipt(&stubOrders{}, testLogger()), request{method: http.MethodGet, path: "/", user: uuid.New(), params: params})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, Receipt(&stubOrders{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}, testLogger()), request{method: http.MethodGet, path: "/", user: uuid.New(), params: params})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, ReceiptPDF(stubRenderer{}, testLogger()), request{method: http.MethodGet, path: "/", user: uuid.New(), params: params})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "receipt-ORD-"+orderID.String()[:8]+".pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestAdminProducts(t *testing.T) {
	products := newStubCatalog()

	rec := serve(t, AdminCreateProduct(products, testLogger()), request{
		method: http.MethodPost, path: "/api/admin/v1/products",
		body: `{"name":"Milk 1L","barcode":"8901","price":"45.50","stock":20}`,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, products.created)
	assert.True(t, products.created.Price.Equal(decimal.RequireFromString("45.50")))
	assert.Equal(t, 20, products.created.Stock)

	rec = serve(t, AdminCreateProduct(products, testLogger()), request{
		method: http.MethodPost, path: "/api/admin/v1/products",
		body: `{"name":"Milk 1L","barcode":"8901","price":"45.50"}`,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	products.err = pkgerrors.New(pkgerrors.CodeConflict, "barcode already exists")
	rec = serve(t, AdminCreateProduct(products, testLogger()), request{
		method: http.MethodPost, path: "/api/admin/v1/products",
		body: `{"name":"Milk 1L","barcode":"8901","price":"45.50","stock":1}`,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	products.err = nil

	productID := uuid.New()
	params := map[string]string{"productId": productID.String()}
	rec = serve(t, AdminUpdateProduct(products, testLogger()), request{method: http.MethodPut, path: "/", body: `{"stock":5}`, params: params})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, products.updated.Stock)
	assert.Equal(t, 5, *products.updated.Stock)
	assert.Nil(t, products.updated.Name)

	rec = serve(t, AdminDeleteProduct(products, testLogger()), request{method: http.MethodDelete, path: "/", params: params})
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, productID, products.deleted)

	rec = serve(t, AdminListProducts(products, testLogger()), request{method: http.MethodGet, path: "/api/admin/v1/products"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, products.lastLimit)
}

func TestAdminExportProducts(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }
	rec := serve(t, AdminExportProducts(stubExporter{}, now, testLogger()), request{method: http.MethodGet, path: "/api/admin/v1/products/export"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="products-20261016.xlsx"`, rec.Header().Get("Content-Disposition"))
}

func TestAdminPromos(t *testing.T) {
	promos := &stubPromos{}
	rec := serve(t, AdminCreatePromo(promos, testLogger()), request{
		method: http.MethodPost, path: "/api/admin/v1/promocodes",
		body: `{"code":"save10","discount_type":"percent","value":10,"expires_at":"2026-12-31"}`,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, promos.created)
	assert.Equal(t, "percent", promos.created.Kind)
	assert.Equal(t, "2026-12-31", promos.created.ExpiresAt)

	rec = serve(t, AdminCreatePromo(promos, testLogger()), request{
		method: http.MethodPost, path: "/api/admin/v1/promocodes",
		body: `{"code":"bogus","discount_type":"bogo","value":1}`,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	promoID := uuid.New()
	rec = serve(t, AdminTogglePromo(promos, testLogger()), request{method: http.MethodPost, path: "/", params: map[string]string{"promoId": promoID.String()}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, promoID, promos.toggled)
}

func TestAdminOrdersAndReports(t *testing.T) {
	ordersSvc := &stubOrders{}
	rec := serve(t, AdminListOrders(ordersSvc, testLogger()), request{method: http.MethodGet, path: "/api/admin/v1/orders?limit=10&cursor=abc"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, ordersSvc.params.Limit)
	assert.Equal(t, "abc", ordersSvc.params.Cursor)

	reportSvc := &stubReports{}
	rec = serve(t, AdminSalesSummary(reportSvc, testLogger()), request{method: http.MethodGet, path: "/api/admin/v1/sales-summary?range=weekly"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, enums.ReportRangeWeekly, reportSvc.lastRange)

	rec = serve(t, AdminSalesSummary(reportSvc, testLogger()), request{method: http.MethodGet, path: "/api/admin/v1/sales-summary?range=hourly"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, enums.ReportRangeDaily, reportSvc.lastRange)

	rec = serve(t, AdminDashboard(reportSvc, testLogger()), request{method: http.MethodGet, path: "/api/admin/v1/dashboard"})
	require.Equal(t, http.StatusOK, rec.Code)
	var dash struct {
		TotalProducts int64 `json:"total_products"`
	}
	decodeData(t, rec, &dash)
	assert.Equal(t, int64(7), dash.TotalProducts)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	rec := serve(t, HealthReady(cfg, testLogger(), stubPinger{}, stubPinger{}), request{method: http.MethodGet, path: "/health/ready"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, HealthReady(cfg, testLogger(), stubPinger{}, stubPinger{err: context.DeadlineExceeded}), request{method: http.MethodGet, path: "/health/ready"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"down"`)

	rec = serve(t, HealthLive(cfg), request{method: http.MethodGet, path: "/health/live"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-MallBilling-Env"))
}
