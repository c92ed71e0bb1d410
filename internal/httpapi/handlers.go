package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"sergioimports/backend/internal/domain"
	"sergioimports/backend/internal/payment"
	"sergioimports/backend/internal/service"
)

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(c *gin.Context) {
	key := clientKey(c.Request)
	if !a.loginLimiter.Allow(key) {
		a.writeError(c, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		a.fail(c, err)
		return
	}

	resp, err := a.auth.Login(req)
	if err != nil {
		a.writeError(c, http.StatusUnauthorized, err)
		return
	}
	a.loginLimiter.Reset(key)
	c.JSON(http.StatusOK, resp)
}

func (a *API) handleListProducts(c *gin.Context) {
	var (
		products []domain.Product
		err      error
	)
	if lowStock, _ := strconv.ParseBool(c.Query("low_stock")); lowStock {
		products, err = a.service.LowStockProducts(c.Request.Context())
	} else {
		products, err = a.service.SearchProducts(c.Request.Context(), c.Query("q"))
	}
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (a *API) handleGetProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		a.fail(c, err)
		return
	}
	product, err := a.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (a *API) handleProductByBarcode(c *gin.Context) {
	product, err := a.service.FindProductByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (a *API) handleCreateProduct(c *gin.Context) {
	var req domain.ProductRequest
	if err := decodeJSON(c, &req); err != nil {
		a.fail(c, err)
		return
	}
	product, err := a.service.CreateProduct(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

func (a *API) handleUpdateProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		a.fail(c, err)
		return
	}
	var req domain.ProductRequest
	if err := decodeJSON(c, &req); err != nil {
		a.fail(c, err)
		return
	}
	product, err := a.service.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (a *API) handleDeleteProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		a.fail(c, err)
		return
	}
	if err := a.service.DeleteProduct(c.Request.Context(), id); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) handleListClients(c *gin.Context) {
	clients, err := a.service.SearchClients(c.Request.Context(), c.Query("q"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

func (a *API) handleGetClient(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		a.fail(c, err)
		return
	}
	client, err := a.service.GetClient(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client})
}

func (a *API) handleCreateClient(c *gin.Context) {
	var req domain.ClientRequest
	if err := decodeJSON(c, &req); err != nil {
		a.fail(c, err)
		return
	}
	client, err := a.service.CreateClient(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"client": client})
}

func (a *API) handleUpdateClient(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		a.fail(c, err)
		return
	}
	var req domain.ClientRequest
	if err := decodeJSON(c, &req); err != nil {
		a.fail(c, err)
		return
	}
	client, err := a.service.UpdateClient(c.Request.Context(), id, req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client})
}

func (a *API) handleDeleteClient(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		a.fail(c, err)
		return
	}
	if err := a.service.DeleteClient(c.Request.Context(), id); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) handleGetCart(c *gin.Context) {
	c.JSON(http.StatusOK, a.service.Cart())
}

func (a *API) handleAddCartItem(c *gin.Context) {
	var req domain.CartAddRequest
	if err := decodeJSON(c, &req); err != nil {
		a.fail(c, err)
		return
	}
	view, err := a.service.AddToCart(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (a *API) handleSetCartQuantity(c *gin.Context) {
	productID, err := pathID(c, "productId")
	if err != nil {
		a.fail(c, err)
		return
	}
	var req domain.CartQuantityRequest
	if err := decodeJSON(c, &req); err != nil {
		a.fail(c, err)
		return
	}
	view, err := a.service.SetCartQuantity(productID, req.Quantity)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (a *API) handleRemoveCartItem(c *gin.Context) {
	productID, err := pathID(c, "productId")
	if err != nil {
		a.fail(c, err)
		return
	}
	view, err := a.service.RemoveFromCart(productID)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (a *API) handleClearCart(c *gin.Context) {
	view, err := a.service.ClearCart()
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (a *API) handleCartTotals(c *gin.Context) {
	req := domain.TotalsRequest{DiscountPercent: decimal.Zero}
	if c.Request.ContentLength != 0 {
		if err := decodeJSON(c, &req); err != nil {
			a.fail(c, err)
			return
		}
	}
	totals, err := a.service.CartTotals(req.DiscountPercent)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (a *API) handleCardBrands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"card_brands": payment.KnownCardBrands})
}

func (a *API) handleCheckout(c *gin.Context) {
	var req domain.CheckoutRequest
	if err := decodeJSON(c, &req); err != nil {
		a.fail(c, err)
		return
	}
	result, err := a.service.Checkout(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (a *API) handleListSales(c *gin.Context) {
	var (
		sales []domain.Sale
		err   error
	)
	if raw := strings.TrimSpace(c.Query("client_id")); raw != "" {
		clientID, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			a.fail(c, errors.Join(service.ErrInvalidInput, parseErr))
			return
		}
		sales, err = a.service.SalesByClient(c.Request.Context(), clientID)
	} else {
		sales, err = a.service.ListSales(c.Request.Context())
	}
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

func (a *API) handleGetSale(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		a.fail(c, err)
		return
	}
	sale, err := a.service.GetSale(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sale": sale})
}

func (a *API) handleReceipt(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		a.fail(c, err)
		return
	}
	receipt, err := a.service.Receipt(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (a *API) handleLastReceipt(c *gin.Context) {
	receipt, err := a.service.LastReceipt(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (a *API) handleListExchanges(c *gin.Context) {
	var (
		exchanges []domain.Exchange
		err       error
	)
	if raw := strings.TrimSpace(c.Query("sale_id")); raw != "" {
		saleID, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			a.fail(c, errors.Join(service.ErrInvalidInput, parseErr))
			return
		}
		exchanges, err = a.service.ExchangesForSale(c.Request.Context(), saleID)
	} else {
		exchanges, err = a.service.ListExchanges(c.Request.Context(), c.Query("status"))
	}
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exchanges": exchanges})
}

func (a *API) handleCreateExchange(c *gin.Context) {
	var req domain.ExchangeCreateRequest
	if err := decodeJSON(c, &req); err != nil {
		a.fail(c, err)
		return
	}
	exchange, err := a.service.CreateExchange(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"exchange": exchange})
}

func (a *API) handleSetExchangeStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		a.fail(c, err)
		return
	}
	var req domain.ExchangeStatusRequest
	if err := decodeJSON(c, &req); err != nil {
		a.fail(c, err)
		return
	}
	exchange, err := a.service.SetExchangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exchange": exchange})
}

func (a *API) handleGetSettings(c *gin.Context) {
	settings, err := a.service.Settings(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (a *API) handleUpdateSettings(c *gin.Context) {
	var values map[string]any
	if err := decodeJSON(c, &values); err != nil {
		a.fail(c, err)
		return
	}
	settings, err := a.service.UpdateSettings(c.Request.Context(), values)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (a *API) handleDashboard(c *gin.Context) {
	summary, err := a.service.Dashboard(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": summary})
}
