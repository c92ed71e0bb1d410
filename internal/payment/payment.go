package payment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"sergioimports/backend/internal/domain"
)

var (
	ErrUnsupportedMethod   = errors.New("unsupported payment method")
	ErrInvalidTotal        = errors.New("payment total must not be negative")
	ErrInvalidInstallments = errors.New("installments must be between 1 and 12")
	ErrCardBrandRequired   = errors.New("card brand is required for credit payments")
	ErrInsufficientPayment = errors.New("cash amount is below the sale total")
)

const (
	MinInstallments = 1
	MaxInstallments = 12
)

// KnownCardBrands are the brands offered at the terminal. Any non-empty
// brand is accepted.
var KnownCardBrands = []string{"Visa", "Mastercard", "American Express", "Elo", "Hipercard"}

type Request struct {
	Method       string
	Total        decimal.Decimal
	ClientID     *int64
	Installments int
	CardBrand    string
	CashAmount   decimal.Decimal
}

// FromRequest pairs the payment part of a checkout request with the sale total.
func FromRequest(req domain.PaymentRequest, total decimal.Decimal) Request {
	return Request{
		Method:       req.Method,
		Total:        total,
		ClientID:     req.ClientID,
		Installments: req.Installments,
		CardBrand:    req.CardBrand,
		CashAmount:   req.CashAmount,
	}
}

// Resolve validates method specific input and builds the payment detail
// recorded on the sale. Nothing is charged.
func Resolve(req Request) (domain.PaymentDetail, error) {
	if req.Total.IsNegative() {
		return domain.PaymentDetail{}, ErrInvalidTotal
	}

	detail := domain.PaymentDetail{
		Method:   strings.ToLower(strings.TrimSpace(req.Method)),
		Total:    req.Total,
		ClientID: req.ClientID,
	}

	switch detail.Method {
	case domain.PaymentCredit:
		if req.Installments < MinInstallments || req.Installments > MaxInstallments {
			return domain.PaymentDetail{}, fmt.Errorf("%w: got %d", ErrInvalidInstallments, req.Installments)
		}
		brand := strings.TrimSpace(req.CardBrand)
		if brand == "" {
			return domain.PaymentDetail{}, ErrCardBrandRequired
		}
		// Stored as the exact quotient; receipts format it for display.
		value := req.Total.Div(decimal.NewFromInt(int64(req.Installments)))
		detail.Installments = req.Installments
		detail.InstallmentValue = &value
		detail.CardBrand = brand
	case domain.PaymentCash:
		if req.CashAmount.LessThan(req.Total) {
			return domain.PaymentDetail{}, fmt.Errorf("%w: tendered %s, due %s",
				ErrInsufficientPayment, req.CashAmount.StringFixed(2), req.Total.StringFixed(2))
		}
		cash := req.CashAmount
		change := req.CashAmount.Sub(req.Total)
		detail.CashAmount = &cash
		detail.Change = &change
	case domain.PaymentDebit, domain.PaymentPix:
	default:
		return domain.PaymentDetail{}, fmt.Errorf("%w: %q", ErrUnsupportedMethod, req.Method)
	}

	return detail, nil
}

func IsKnownCardBrand(brand string) bool {
	for _, known := range KnownCardBrands {
		if strings.EqualFold(known, strings.TrimSpace(brand)) {
			return true
		}
	}
	return false
}
