package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fluxo-storefront/internal/domain"
	"fluxo-storefront/internal/notify"
	cartrepo "fluxo-storefront/internal/repository/cart"
	"fluxo-storefront/internal/repository/draft"
	productrepo "fluxo-storefront/internal/repository/product"
	"fluxo-storefront/internal/seed"
	authsvc "fluxo-storefront/internal/service/auth"
	cartsvc "fluxo-storefront/internal/service/cart"
	categorysvc "fluxo-storefront/internal/service/category"
	checkoutsvc "fluxo-storefront/internal/service/checkout"
	productsvc "fluxo-storefront/internal/service/product"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSession = "sess-http-1"

type apiFixture struct {
	router *gin.Engine
	token  string
}

func newAPI(t *testing.T, sample float64) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := productrepo.NewMemory(seed.Catalog()...)
	carts := cartsvc.New(cartrepo.NewMemory(), products)
	sim := checkoutsvc.NewSimulator(0, checkoutsvc.RandomFunc(func() float64 { return sample }))
	inbox := notify.NewInbox(50, 0, nil)
	checkout := checkoutsvc.New(checkoutsvc.NewStore(draft.NewMemory(), nil), carts, sim, inbox, nil, nil)

	router, err := buildRouter(nil, Deps{
		ProductSvc:    productsvc.New(products),
		CategorySvc:   categorysvc.New(products),
		CartSvc:       carts,
		AuthSvc:       authsvc.New("test-secret", 0, nil),
		CheckoutSvc:   checkout,
		Notifications: inbox,
	})
	require.NoError(t, err)
	return &apiFixture{router: router}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(sessionHeader, testSession)
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (f *apiFixture) login(t *testing.T) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/auth/login", gin.H{"email": "ana@ex.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	f.token = decode(t, rec)["token"].(string)
	require.NotEmpty(t, f.token)
}

func TestBuildRouter_RequiresServices(t *testing.T) {
	_, err := buildRouter(nil, Deps{})
	require.Error(t, err)
}

func TestHealthAndReady(t *testing.T) {
	f := newAPI(t, 0.5)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/readyz", nil).Code)
}

func TestReadyz_ReportsFailingCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/readyz", readyHandler([]ReadyCheck{{Name: "redis", Ping: func(ctx context.Context) error {
		return errors.New("down")
	}}}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis not reachable")
}

func TestProducts(t *testing.T) {
	f := newAPI(t, 0.5)

	rec := f.do(t, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 6, decode(t, rec)["total"])

	rec = f.do(t, http.MethodGet, "/products?category=accessories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["total"])

	rec = f.do(t, http.MethodGet, "/products/4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Laptop Backpack", decode(t, rec)["name"])

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/products/99", nil).Code)

	rec = f.do(t, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["results"], 2)
}

func TestCartLifecycle(t *testing.T) {
	f := newAPI(t, 0.5)

	rec := f.do(t, http.MethodPost, "/cart/items", gin.H{"productId": "1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, testSession, rec.Header().Get(sessionHeader))

	rec = f.do(t, http.MethodPost, "/cart/items", gin.H{"productId": "1", "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode(t, rec)
	assert.EqualValues(t, 3, cart["totalItems"])
	assert.Equal(t, "599.97", cart["subtotal"])

	rec = f.do(t, http.MethodPatch, "/cart/items/1", gin.H{"quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["totalItems"])

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/cart/items", gin.H{"productId": "99"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/cart/items", gin.H{"productId": "1", "quantity": 0}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPatch, "/cart/items/1", gin.H{}).Code)

	rec = f.do(t, http.MethodDelete, "/cart/items/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode(t, rec)["totalItems"])

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/cart", nil).Code)
}

func TestSessionMiddleware_IssuesAndValidatesID(t *testing.T) {
	f := newAPI(t, 0.5)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(sessionHeader))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(sessionHeader, "bad id!")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuth(t *testing.T) {
	f := newAPI(t, 0.5)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, "/auth/login", gin.H{"email": "ana@ex.com"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/auth/register", gin.H{"email": "ana@ex.com", "password": "x"}).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/auth/me", nil).Code)

	rec := f.do(t, http.MethodPost, "/auth/register", gin.H{"name": "Ana Silva", "email": "ana@ex.com", "password": "x"})
	require.Equal(t, http.StatusCreated, rec.Code)
	f.token = decode(t, rec)["token"].(string)

	rec = f.do(t, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "Ana Silva", user["name"])
}

func TestCheckout_RequiresAuth(t *testing.T) {
	f := newAPI(t, 0.5)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/checkout", nil).Code)

	f.token = "not-a-token"
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/checkout", nil).Code)
}

func TestCheckout_PixFlowEndsPaid(t *testing.T) {
	f := newAPI(t, 0.5)
	f.login(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/cart/items", gin.H{"productId": "1"}).Code)

	rec := f.do(t, http.MethodPatch, "/checkout/buyer", gin.H{
		"name": "Ana Silva", "email": "ana@ex.com", "postalCode": "01000000",
		"phone": "11988887777", "address": "Rua A, 1", "city": "São Paulo", "state": "sp",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	buyer := decode(t, rec)["buyerInfo"].(map[string]any)
	assert.Equal(t, "01000-000", buyer["postalCode"])
	assert.Equal(t, "(11) 98888-7777", buyer["phone"])

	rec = f.do(t, http.MethodPost, "/checkout/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 2, decode(t, rec)["step"])

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPut, "/checkout/method", gin.H{"paymentMethod": "cash"}).Code)
	rec = f.do(t, http.MethodPut, "/checkout/method", gin.H{"paymentMethod": "pix"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/checkout/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, decode(t, rec)["step"])

	rec = f.do(t, http.MethodPost, "/checkout/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode(t, rec)
	assert.Equal(t, "paid", view["status"])
	assert.NotEmpty(t, view["orderId"])

	rec = f.do(t, http.MethodGet, "/cart", nil)
	assert.EqualValues(t, 0, decode(t, rec)["totalItems"])

	rec = f.do(t, http.MethodGet, "/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["results"])
	rec = f.do(t, http.MethodGet, "/notifications", nil)
	assert.Empty(t, decode(t, rec)["results"])
}

func TestCheckout_ValidationFailureCarriesView(t *testing.T) {
	f := newAPI(t, 0.5)
	f.login(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/cart/items", gin.H{"productId": "2"}).Code)

	rec := f.do(t, http.MethodPatch, "/checkout/buyer", gin.H{"email": "not-an-email"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/checkout/advance", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "name", body["field"])
	checkout := body["checkout"].(map[string]any)
	assert.EqualValues(t, 1, checkout["step"])
}

func TestCheckout_ConflictStatuses(t *testing.T) {
	f := newAPI(t, 0.5)
	f.login(t)

	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/checkout/advance", nil).Code)
	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/checkout/retry", nil).Code)
	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/checkout/change-method", nil).Code)
}

func TestCheckout_FailedCardCanRetry(t *testing.T) {
	f := newAPI(t, 0.9)
	f.login(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/cart/items", gin.H{"productId": "3"}).Code)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPatch, "/checkout/buyer", gin.H{
		"name": "Ana Silva", "email": "ana@ex.com", "postalCode": "01000-000",
		"phone": "(11) 98888-7777", "address": "Rua A, 1", "city": "São Paulo", "state": "SP",
	}).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/checkout/advance", nil).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, "/checkout/method", gin.H{"paymentMethod": "credit_card"}).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPatch, "/checkout/card", gin.H{
		"number": "4111111111111111", "holder": "ANA SILVA", "expiry": "1230", "cvv": "123", "installments": "3",
	}).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/checkout/advance", nil).Code)

	rec := f.do(t, http.MethodPost, "/checkout/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode(t, rec)
	assert.Equal(t, "failed", view["status"])
	assert.NotEmpty(t, view["reason"])

	rec = f.do(t, http.MethodPost, "/checkout/retry", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode(t, rec)
	assert.Equal(t, "idle", view["status"])
	assert.EqualValues(t, 2, view["step"])

	rec = f.do(t, http.MethodPost, "/checkout/back", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["step"])
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		checkoutsvc.ErrNotIdle:       http.StatusConflict,
		checkoutsvc.ErrInvalidMethod: http.StatusBadRequest,
		authsvc.ErrInvalidToken:      http.StatusUnauthorized,
		domain.ErrInvalidQuantity:    http.StatusBadRequest,
		errors.New("boom"):           http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
}
