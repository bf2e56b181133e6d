package checkout

import (
	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Totals struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent int             `json:"discount_percent"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
}

// ComputeTotals applies discountPercent to the sum of all lines. The discount
// is rounded to two places so total stays a payable amount.
func ComputeTotals(items []domain.CartItem, discountPercent int) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	discount := decimal.Zero
	if discountPercent > 0 {
		discount = subtotal.Mul(decimal.NewFromInt(int64(discountPercent))).Div(hundred).Round(2)
	}

	return Totals{
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		Discount:        discount,
		Total:           subtotal.Sub(discount),
	}
}

// LineTotal is the discounted amount stored on a single booking row.
func LineTotal(item domain.CartItem, discountPercent int) decimal.Decimal {
	factor := hundred.Sub(decimal.NewFromInt(int64(discountPercent))).Div(hundred)
	return item.LineTotal().Mul(factor).Round(2)
}

func DiscountPercent(c *domain.AppliedCoupon) int {
	if c == nil {
		return 0
	}
	return c.DiscountPercent
}
