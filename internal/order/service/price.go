package service

import (
	"github.com/shopspring/decimal"

	"po-service/internal/order/model"
)

// ResolvePrice returns the unit price for an item. Precedence:
//
//  1. explicit override from the order line (zero is a real override)
//  2. the selected customer's most recent rate for the item
//  3. the most recent rate for the item across all customers
//  4. zero, found=false — caller shows the line as unpriced
//
// Catalog records are sorted by invoice date descending, so the first
// match in each pass is the most recent.
func ResolvePrice(cat *model.Catalog, itemCode string, override *decimal.Decimal, customer string) (decimal.Decimal, bool) {
	if override != nil {
		return *override, true
	}

	if customer != "" {
		for _, r := range cat.Records {
			if r.ItemCode == itemCode && r.Customer == customer {
				return r.Rate, true
			}
		}
	}
	for _, r := range cat.Records {
		if r.ItemCode == itemCode {
			return r.Rate, true
		}
	}
	return decimal.Zero, false
}
