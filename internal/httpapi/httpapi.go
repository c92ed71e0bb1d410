package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sergioimports/backend/internal/cart"
	"sergioimports/backend/internal/payment"
	"sergioimports/backend/internal/pricing"
	"sergioimports/backend/internal/service"
	"sergioimports/backend/internal/store"
	"sergioimports/backend/internal/xid"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 1 << 20
)

var errBodyTooLarge = errors.New("request body too large")

type API struct {
	service      *service.Service
	auth         *AuthManager
	logger       *zap.Logger
	loginLimiter *loginThrottle
}

func New(svc *service.Service, auth *AuthManager, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		service:      svc,
		auth:         auth,
		logger:       logger.Named("http"),
		loginLimiter: newLoginThrottle(5, time.Minute),
	}
}

func (a *API) Handler() http.Handler {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(a.requestID(), a.recovery(), a.securityHeaders(), a.requestLogger())
	router.NoRoute(func(c *gin.Context) {
		a.writeError(c, http.StatusNotFound, errors.New("route not found"))
	})
	router.NoMethod(func(c *gin.Context) {
		a.writeError(c, http.StatusMethodNotAllowed, errors.New("method not allowed"))
	})

	router.GET("/healthz", a.handleHealth)

	v1 := router.Group("/api/v1")
	v1.POST("/auth/login", a.handleLogin)

	authed := v1.Group("")
	authed.Use(a.requireAuth())

	authed.GET("/products", a.handleListProducts)
	authed.POST("/products", a.handleCreateProduct)
	authed.GET("/products/barcode/:barcode", a.handleProductByBarcode)
	authed.GET("/products/:id", a.handleGetProduct)
	authed.PUT("/products/:id", a.handleUpdateProduct)
	authed.DELETE("/products/:id", a.handleDeleteProduct)

	authed.GET("/clients", a.handleListClients)
	authed.POST("/clients", a.handleCreateClient)
	authed.GET("/clients/:id", a.handleGetClient)
	authed.PUT("/clients/:id", a.handleUpdateClient)
	authed.DELETE("/clients/:id", a.handleDeleteClient)

	authed.GET("/cart", a.handleGetCart)
	authed.DELETE("/cart", a.handleClearCart)
	authed.POST("/cart/items", a.handleAddCartItem)
	authed.PATCH("/cart/items/:productId", a.handleSetCartQuantity)
	authed.DELETE("/cart/items/:productId", a.handleRemoveCartItem)
	authed.POST("/cart/totals", a.handleCartTotals)
	authed.GET("/payment/card-brands", a.handleCardBrands)
	authed.POST("/checkout", a.handleCheckout)

	authed.GET("/sales", a.handleListSales)
	authed.GET("/sales/last/receipt", a.handleLastReceipt)
	authed.GET("/sales/:id", a.handleGetSale)
	authed.GET("/sales/:id/receipt", a.handleReceipt)

	authed.GET("/exchanges", a.handleListExchanges)
	authed.POST("/exchanges", a.handleCreateExchange)
	authed.PATCH("/exchanges/:id/status", a.handleSetExchangeStatus)

	authed.GET("/settings", a.handleGetSettings)
	authed.PUT("/settings", a.handleUpdateSettings)
	authed.GET("/dashboard", a.handleDashboard)

	return router
}

func (a *API) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authorization := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			a.writeError(c, http.StatusUnauthorized, errors.New("missing bearer token"))
			c.Abort()
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.auth.ParseToken(token)
		if err != nil {
			a.writeError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(service.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

func (a *API) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 64 {
			id = xid.New("req")
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (a *API) securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Cross-Origin-Opener-Policy", "same-origin")
		c.Header("Cache-Control", "no-store")

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		}
		c.Next()
	}
}

func (a *API) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startedAt := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(startedAt)),
			zap.String("request_id", c.GetString(requestIDKey)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			a.logger.Warn("request", fields...)
			return
		}
		a.logger.Info("request", fields...)
	}
}

func (a *API) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		a.writeError(c, http.StatusInternalServerError, fmt.Errorf("panic: %v", recovered))
		c.Abort()
	})
}

// statusFor maps domain errors to HTTP statuses. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, store.ErrNotFound), errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrCommitInProgress),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, store.ErrUnknownIndex):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrUnknownSale),
		errors.Is(err, cart.ErrStockExceeded),
		errors.Is(err, pricing.ErrInvalidDiscount),
		errors.Is(err, payment.ErrUnsupportedMethod),
		errors.Is(err, payment.ErrInvalidTotal),
		errors.Is(err, payment.ErrInvalidInstallments),
		errors.Is(err, payment.ErrCardBrandRequired),
		errors.Is(err, payment.ErrInsufficientPayment):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) fail(c *gin.Context, err error) {
	a.writeError(c, statusFor(err), err)
}

// writeError returns 4xx messages as-is. 5xx bodies never carry internal
// details; the full error is logged with the request id instead.
func (a *API) writeError(c *gin.Context, status int, err error) {
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		a.logger.Error("internal error",
			zap.Int("status", status),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		switch {
		case errors.Is(err, service.ErrReconciliationRequired):
			msg = service.ErrReconciliationRequired.Error()
		case errors.Is(err, service.ErrSaleProcessing):
			msg = service.ErrSaleProcessing.Error()
		default:
			msg = "internal server error"
		}
	}
	c.JSON(status, gin.H{
		"error":      msg,
		"request_id": c.GetString(requestIDKey),
	})
}

func decodeJSON(c *gin.Context, dest any) error {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	return nil
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", service.ErrInvalidInput, name)
	}
	return id, nil
}
