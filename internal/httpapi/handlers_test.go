package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"sergioimports/backend/internal/domain"
	"sergioimports/backend/internal/service"
	"sergioimports/backend/internal/store/memory"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testUser     = "operador"
	testPassword = "senha-forte-123"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestAuth(t *testing.T) *AuthManager {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	auth, err := NewAuthManager(testSecret, time.Hour, testUser, string(hash))
	require.NoError(t, err)
	return auth
}

func newTestAPI(t *testing.T) (*API, http.Handler) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	svc := service.New(memory.NewSeeded(), nil, logger, service.Options{StrictExchangeSaleRef: true})
	api := New(svc, newTestAuth(t), logger)
	return api, api.Handler()
}

func doJSON(t *testing.T, handler http.Handler, method string, path string, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload *bytes.Reader
	if body == nil {
		payload = bytes.NewReader(nil)
	} else if raw, ok := body.(string); ok {
		payload = bytes.NewReader([]byte(raw))
	} else {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, payload)
	req.RemoteAddr = "127.0.0.1:5000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

func login(t *testing.T, handler http.Handler) string {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", domain.LoginRequest{
		Username: testUser,
		Password: testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp domain.LoginResponse
	decodeBody(t, rec, &resp)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestHandleHealth(t *testing.T) {
	_, handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decodeBody(t, rec, &body)
	assert.Equal(t, true, body["ok"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	_, handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", domain.LoginRequest{
		Username: testUser,
		Password: "errada",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrInvalidCredentials.Error())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	_, handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/products", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckoutFlow(t *testing.T) {
	_, handler := newTestAPI(t)
	token := login(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", token, domain.CartAddRequest{ProductID: 1, Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var view domain.CartResponse
	decodeBody(t, rec, &view)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "5999.98", view.Subtotal.StringFixed(2))

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cart/totals", token, `{"discount_percent": 10}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var totals domain.TotalsResponse
	decodeBody(t, rec, &totals)
	assert.Equal(t, "600.00", totals.DiscountAmount.StringFixed(2))
	assert.Equal(t, "5399.98", totals.Total.StringFixed(2))

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/checkout", token,
		`{"discount_percent": 10, "payment": {"method": "cash", "cash_amount": "5400.00"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result domain.CheckoutResult
	decodeBody(t, rec, &result)
	assert.Equal(t, "5399.98", result.Sale.Total.StringFixed(2))
	require.NotNil(t, result.Sale.Payment.Change)
	assert.Equal(t, "0.02", result.Sale.Payment.Change.StringFixed(2))

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &view)
	assert.Empty(t, view.Items)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/sales/last/receipt", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var receipt domain.Receipt
	decodeBody(t, rec, &receipt)
	assert.Equal(t, result.Sale.ID, receipt.Sale.ID)
	assert.Equal(t, "Sérgio Imports", receipt.Company.Name)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/products/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var productBody struct {
		Product domain.Product `json:"product"`
	}
	decodeBody(t, rec, &productBody)
	assert.Equal(t, 13, productBody.Product.Stock)
}

func TestCheckoutInsufficientCash(t *testing.T) {
	_, handler := newTestAPI(t)
	token := login(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", token, domain.CartAddRequest{ProductID: 3, Quantity: 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/checkout", token,
		`{"payment": {"method": "cash", "cash_amount": 100}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/checkout", token,
		`{"payment": {"method": "boleto"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/cart", token, nil)
	var view domain.CartResponse
	decodeBody(t, rec, &view)
	assert.Len(t, view.Items, 1)
}

func TestCheckoutEmptyCart(t *testing.T) {
	_, handler := newTestAPI(t)
	token := login(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/checkout", token, `{"payment": {"method": "pix"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), service.ErrEmptyCart.Error())
}

func TestErrorMapping(t *testing.T) {
	_, handler := newTestAPI(t)
	token := login(t, handler)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/products/404", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/products/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/products", token, `{"name": "Fone", "price": 10, "color": "red"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodPatch, "/api/v1/cart/items/2", token, domain.CartQuantityRequest{Quantity: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/nowhere", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler, http.MethodPut, "/api/v1/dashboard", token, `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	var body map[string]any
	decodeBody(t, rec, &body)
	assert.NotEmpty(t, body["request_id"])
}

func TestProductCRUD(t *testing.T) {
	_, handler := newTestAPI(t)
	token := login(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/products", token,
		`{"name": "Carregador USB-C", "price": "79.90", "stock": 20, "min_stock": 5, "barcode": "7891234567890"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Product domain.Product `json:"product"`
	}
	decodeBody(t, rec, &created)
	assert.NotZero(t, created.Product.ID)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/products/barcode/7891234567890", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/products?q=carregador", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Products []domain.Product `json:"products"`
	}
	decodeBody(t, rec, &list)
	assert.Len(t, list.Products, 1)

	path := "/api/v1/products/" + strconv.FormatInt(created.Product.ID, 10)
	rec = doJSON(t, handler, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExchangeEndpoints(t *testing.T) {
	_, handler := newTestAPI(t)
	token := login(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/exchanges", token, domain.ExchangeCreateRequest{SaleID: 99, Reason: domain.ExchangeReasonDefect})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", token, domain.CartAddRequest{ProductID: 2, Quantity: 1})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/checkout", token, `{"payment": {"method": "credit", "installments": 3, "card_brand": "Visa"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var result domain.CheckoutResult
	decodeBody(t, rec, &result)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/exchanges", token, domain.ExchangeCreateRequest{
		SaleID:      result.Sale.ID,
		Reason:      domain.ExchangeReasonDefect,
		Description: "bateria estufada",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Exchange domain.Exchange `json:"exchange"`
	}
	decodeBody(t, rec, &created)
	assert.Equal(t, domain.ExchangeStatusPending, created.Exchange.Status)

	path := "/api/v1/exchanges/" + strconv.FormatInt(created.Exchange.ID, 10) + "/status"
	rec = doJSON(t, handler, http.MethodPatch, path, token, domain.ExchangeStatusRequest{Status: domain.ExchangeStatusCompleted})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodPatch, path, token, domain.ExchangeStatusRequest{Status: "archived"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/exchanges?status=completed", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Exchanges []domain.Exchange `json:"exchanges"`
	}
	decodeBody(t, rec, &list)
	assert.Len(t, list.Exchanges, 1)
}

func TestSettingsAndDashboard(t *testing.T) {
	_, handler := newTestAPI(t)
	token := login(t, handler)

	rec := doJSON(t, handler, http.MethodPut, "/api/v1/settings", token, `{"phone": "(11) 4000-1234"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "(11) 4000-1234")

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Dashboard domain.DashboardSummary `json:"dashboard"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, 3, body.Dashboard.TotalProducts)
	assert.Equal(t, 3, body.Dashboard.TotalClients)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/payment/card-brands", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Visa")
}
