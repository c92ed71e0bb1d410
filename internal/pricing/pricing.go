package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"sergioimports/backend/internal/domain"
	"sergioimports/backend/internal/money"
)

var ErrInvalidDiscount = errors.New("discount percent must be between 0 and 100")

var maxPercent = decimal.NewFromInt(100)

type Totals struct {
	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
}

// Compute prices the cart lines. Values are exact; see Rounded for persistence.
func Compute(lines []domain.CartItem, discountPercent decimal.Decimal) (Totals, error) {
	if discountPercent.IsNegative() || discountPercent.GreaterThan(maxPercent) {
		return Totals{}, ErrInvalidDiscount
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	discount := money.Percent(subtotal, discountPercent)

	return Totals{
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		Discount:        discount,
		Total:           subtotal.Sub(discount),
	}, nil
}

// Rounded applies the currency policy so that Total = Subtotal - Discount
// still holds on the rounded values.
func (t Totals) Rounded() Totals {
	subtotal := money.Round(t.Subtotal)
	discount := money.Round(t.Discount)
	return Totals{
		Subtotal:        subtotal,
		DiscountPercent: t.DiscountPercent,
		Discount:        discount,
		Total:           subtotal.Sub(discount),
	}
}

func (t Totals) Response() domain.TotalsResponse {
	return domain.TotalsResponse{
		Subtotal:       t.Subtotal,
		DiscountAmount: t.Discount,
		Total:          t.Total,
	}
}
