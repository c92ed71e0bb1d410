package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"min_stock"`
	Category    string          `json:"category"`
	Barcode     string          `json:"barcode"`
	Brand       string          `json:"brand"`
	Model       string          `json:"model"`
	Supplier    string          `json:"supplier"`
	Image       *string         `json:"image,omitempty"`
}

// LowStock reports whether the product reached its reorder threshold.
func (p Product) LowStock() bool {
	return p.Stock <= p.MinStock
}

type ProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"min_stock"`
	Category    string          `json:"category"`
	Barcode     string          `json:"barcode"`
	Brand       string          `json:"brand"`
	Model       string          `json:"model"`
	Supplier    string          `json:"supplier"`
	Image       *string         `json:"image,omitempty"`
}

type Client struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type ClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ClientRef is the client snapshot frozen into a sale.
type ClientRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CartItem struct {
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	StockCeiling int             `json:"stock_ceiling"`
}

func (c CartItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

type CartResponse struct {
	Items    []CartItem      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartAddRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type TotalsRequest struct {
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

type TotalsResponse struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

const (
	PaymentCredit = "credit"
	PaymentDebit  = "debit"
	PaymentPix    = "pix"
	PaymentCash   = "cash"
)

type PaymentDetail struct {
	Method           string           `json:"method"`
	Total            decimal.Decimal  `json:"total"`
	ClientID         *int64           `json:"client_id,omitempty"`
	Installments     int              `json:"installments,omitempty"`
	InstallmentValue *decimal.Decimal `json:"installment_value,omitempty"`
	CardBrand        string           `json:"card_brand,omitempty"`
	CashAmount       *decimal.Decimal `json:"cash_amount,omitempty"`
	Change           *decimal.Decimal `json:"change,omitempty"`
}

type PaymentRequest struct {
	Method       string          `json:"method"`
	ClientID     *int64          `json:"client_id,omitempty"`
	Installments int             `json:"installments,omitempty"`
	CardBrand    string          `json:"card_brand,omitempty"`
	CashAmount   decimal.Decimal `json:"cash_amount"`
}

type CheckoutRequest struct {
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Payment         PaymentRequest  `json:"payment"`
}

type SaleLine struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
}

// Sale is write-once: once stored it is only read or referenced by exchanges.
type Sale struct {
	ID              int64           `json:"id"`
	Date            time.Time       `json:"date"`
	Items           []SaleLine      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	PaymentMethod   string          `json:"payment_method"`
	Payment         PaymentDetail   `json:"payment"`
	Client          *ClientRef      `json:"client,omitempty"`
}

type CheckoutResult struct {
	Sale            Sale    `json:"sale"`
	SkippedProducts []int64 `json:"skipped_products,omitempty"`
}

const (
	ExchangeReasonDefect    = "defect"
	ExchangeReasonWrongSize = "wrong_size_model"
	ExchangeReasonNotLiked  = "not_liked"
	ExchangeReasonOther     = "other"
)

const (
	ExchangeStatusPending   = "pending"
	ExchangeStatusCompleted = "completed"
	ExchangeStatusCancelled = "cancelled"
)

type Exchange struct {
	ID          int64     `json:"id"`
	SaleID      int64     `json:"sale_id"`
	Reason      string    `json:"reason"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
}

type ExchangeCreateRequest struct {
	SaleID      int64  `json:"sale_id"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

type ExchangeStatusRequest struct {
	Status string `json:"status"`
}

// Setting is one persisted key/value pair; Settings is the merged view.
type Setting struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type Settings map[string]any

// String returns the value for key as text, or fallback when missing or empty.
func (s Settings) String(key string, fallback string) string {
	raw, ok := s[key]
	if !ok || raw == nil {
		return fallback
	}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return fallback
		}
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return decimal.NewFromFloat(v).String()
	case int:
		return decimal.NewFromInt(int64(v)).String()
	case int64:
		return decimal.NewFromInt(v).String()
	default:
		return fallback
	}
}

const (
	SettingCompanyName      = "companyName"
	SettingCompanyLegalName = "companyLegalName"
	SettingCNPJ             = "cnpj"
	SettingAddress          = "address"
	SettingCity             = "city"
	SettingPhone            = "phone"
	SettingEmail            = "email"
	SettingPixKey           = "pixKey"
	SettingPixQRCode        = "pixQrCode"
	SettingCompanyLogo      = "companyLogo"
	SettingExchangePolicy   = "exchangePolicy"
	SettingExchangeDeadline = "exchangeDeadline"
	SettingDataInitialized  = "isDataInitialized"
)

type CompanyInfo struct {
	Name      string `json:"name"`
	LegalName string `json:"legal_name,omitempty"`
	CNPJ      string `json:"cnpj"`
	Address   string `json:"address"`
	City      string `json:"city,omitempty"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	Logo      string `json:"logo,omitempty"`
}

type Receipt struct {
	Sale                 Sale        `json:"sale"`
	Company              CompanyInfo `json:"company"`
	ExchangePolicy       string      `json:"exchange_policy"`
	ExchangeDeadlineDays string      `json:"exchange_deadline_days"`
	PixQRCode            string      `json:"pix_qr_code,omitempty"`
}

type DashboardSummary struct {
	TotalProducts    int             `json:"total_products"`
	TotalClients     int             `json:"total_clients"`
	TotalSales       int             `json:"total_sales"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	SalesToday       int             `json:"sales_today"`
	LowStockProducts int             `json:"low_stock_products"`
	TopStock         []Product       `json:"top_stock"`
	RecentSales      []Sale          `json:"recent_sales"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
}
