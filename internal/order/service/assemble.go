package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"po-service/internal/order/model"
)

// The discount and GST selections are enumerated, not free-form.
var (
	DiscountRates = []string{"0", "2.5", "3"}
	GSTRates      = []string{"0", "5", "12", "18", "28"}
)

func parseEnumRate(s string, allowed []string, kind string) (decimal.Decimal, error) {
	for _, a := range allowed {
		if s == a {
			return decimal.RequireFromString(a), nil
		}
	}
	return decimal.Zero, fmt.Errorf("%s rate %q not in %v", kind, s, allowed)
}

func ParseDiscountRate(s string) (decimal.Decimal, error) {
	return parseEnumRate(s, DiscountRates, "discount")
}

func ParseGSTRate(s string) (decimal.Decimal, error) {
	return parseEnumRate(s, GSTRates, "gst")
}

var hundred = decimal.NewFromInt(100)

// Recompute derives every line amount and the totals block from scratch.
// There is no incremental path: any edit to a quantity, price or
// warehouse re-runs the whole computation. Rates are percentages.
func Recompute(lines []*model.PurchaseOrderLine, discountRate, gstRate decimal.Decimal) model.Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		l.Amount = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		subtotal = subtotal.Add(l.Amount)
	}

	discount := subtotal.Mul(discountRate).Div(hundred)
	taxable := subtotal.Sub(discount)
	gst := taxable.Mul(gstRate).Div(hundred)

	return model.Totals{
		Subtotal:     subtotal,
		Discount:     discount,
		Taxable:      taxable,
		GST:          gst,
		Total:        taxable.Add(gst),
		DiscountRate: discountRate,
		GSTRate:      gstRate,
	}
}
