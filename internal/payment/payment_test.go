package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sergioimports/backend/internal/domain"
)

func d(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

func TestCreditInstallments(t *testing.T) {
	detail, err := Resolve(Request{Method: domain.PaymentCredit, Total: d("150.00"), Installments: 3, CardBrand: "Visa"})
	require.NoError(t, err)
	require.NotNil(t, detail.InstallmentValue)
	assert.True(t, d("50").Equal(*detail.InstallmentValue))
	assert.Equal(t, 3, detail.Installments)
	assert.Equal(t, "Visa", detail.CardBrand)
}

// The per-installment value is kept as the exact quotient, not rounded.
func TestCreditInstallmentValueIsUnroundedQuotient(t *testing.T) {
	detail, err := Resolve(Request{Method: domain.PaymentCredit, Total: d("150.00"), Installments: 4, CardBrand: "Elo"})
	require.NoError(t, err)
	assert.Equal(t, "37.5", detail.InstallmentValue.String())

	detail, err = Resolve(Request{Method: domain.PaymentCredit, Total: d("100.00"), Installments: 3, CardBrand: "Elo"})
	require.NoError(t, err)
	assert.True(t, detail.InstallmentValue.GreaterThan(d("33.33")))
	assert.True(t, detail.InstallmentValue.LessThan(d("33.34")))
}

func TestCreditValidation(t *testing.T) {
	_, err := Resolve(Request{Method: domain.PaymentCredit, Total: d("10"), Installments: 0, CardBrand: "Visa"})
	assert.ErrorIs(t, err, ErrInvalidInstallments)

	_, err = Resolve(Request{Method: domain.PaymentCredit, Total: d("10"), Installments: 13, CardBrand: "Visa"})
	assert.ErrorIs(t, err, ErrInvalidInstallments)

	_, err = Resolve(Request{Method: domain.PaymentCredit, Total: d("10"), Installments: 1, CardBrand: "  "})
	assert.ErrorIs(t, err, ErrCardBrandRequired)

	_, err = Resolve(Request{Method: domain.PaymentCredit, Total: d("10"), Installments: 12, CardBrand: "Bandeira Local"})
	assert.NoError(t, err)
}

func TestCashChange(t *testing.T) {
	detail, err := Resolve(Request{Method: domain.PaymentCash, Total: d("180.00"), CashAmount: d("200.00")})
	require.NoError(t, err)
	require.NotNil(t, detail.Change)
	assert.True(t, d("20").Equal(*detail.Change))
	assert.True(t, d("200").Equal(*detail.CashAmount))

	exact, err := Resolve(Request{Method: domain.PaymentCash, Total: d("180.00"), CashAmount: d("180.00")})
	require.NoError(t, err)
	assert.True(t, exact.Change.IsZero())
}

func TestCashBelowTotalIsRejected(t *testing.T) {
	_, err := Resolve(Request{Method: domain.PaymentCash, Total: d("180.00"), CashAmount: d("179.99")})
	assert.ErrorIs(t, err, ErrInsufficientPayment)
}

func TestPassThroughMethods(t *testing.T) {
	clientID := int64(2)
	for _, method := range []string{domain.PaymentDebit, domain.PaymentPix, "PIX"} {
		detail, err := Resolve(Request{Method: method, Total: d("99.90"), ClientID: &clientID, Installments: 5, CashAmount: d("1")})
		require.NoError(t, err, method)
		assert.Zero(t, detail.Installments)
		assert.Nil(t, detail.InstallmentValue)
		assert.Nil(t, detail.Change)
		require.NotNil(t, detail.ClientID)
		assert.Equal(t, int64(2), *detail.ClientID)
	}
}

func TestUnsupportedMethodAndNegativeTotal(t *testing.T) {
	_, err := Resolve(Request{Method: "boleto", Total: d("10")})
	assert.ErrorIs(t, err, ErrUnsupportedMethod)

	_, err = Resolve(Request{Method: domain.PaymentPix, Total: d("-1")})
	assert.ErrorIs(t, err, ErrInvalidTotal)
}

func TestKnownCardBrand(t *testing.T) {
	assert.True(t, IsKnownCardBrand("mastercard"))
	assert.False(t, IsKnownCardBrand("Diners"))
}
