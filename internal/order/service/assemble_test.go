package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"po-service/internal/order/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRecomputeTotals(t *testing.T) {
	lines := []*model.PurchaseOrderLine{
		{Quantity: 5, UnitPrice: dec("150")},
	}

	totals := Recompute(lines, dec("3"), dec("18"))

	if !lines[0].Amount.Equal(dec("750")) {
		t.Errorf("amount = %s, want 750", lines[0].Amount)
	}
	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"subtotal", totals.Subtotal, "750"},
		{"discount", totals.Discount, "22.50"},
		{"taxable", totals.Taxable, "727.50"},
		{"gst", totals.GST, "130.95"},
		{"total", totals.Total, "858.45"},
	}
	for _, c := range checks {
		if !c.got.Equal(dec(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
}

func TestRecomputeAfterEdit(t *testing.T) {
	line := &model.PurchaseOrderLine{Quantity: 5, UnitPrice: dec("100")}
	lines := []*model.PurchaseOrderLine{line}

	before := Recompute(lines, dec("0"), dec("0"))
	if !line.Amount.Equal(dec("500")) {
		t.Fatalf("amount = %s, want 500", line.Amount)
	}

	line.Quantity = 8
	after := Recompute(lines, dec("0"), dec("0"))
	if !line.Amount.Equal(dec("800")) {
		t.Errorf("amount = %s, want 800 after edit", line.Amount)
	}
	if !after.Total.Sub(before.Total).Equal(dec("300")) {
		t.Errorf("total moved by %s, want 300", after.Total.Sub(before.Total))
	}
}

func TestRecomputeAfterEditWithRates(t *testing.T) {
	line := &model.PurchaseOrderLine{Quantity: 5, UnitPrice: dec("100")}
	lines := []*model.PurchaseOrderLine{line}

	before := Recompute(lines, dec("2.5"), dec("18"))
	line.Quantity = 8
	after := Recompute(lines, dec("2.5"), dec("18"))

	// delta = 300 * (1 - 2.5%) * (1 + 18%)
	want := dec("300").Mul(dec("0.975")).Mul(dec("1.18"))
	if !after.Total.Sub(before.Total).Equal(want) {
		t.Errorf("total moved by %s, want %s", after.Total.Sub(before.Total), want)
	}
}

func TestRecomputeEmptyOrder(t *testing.T) {
	totals := Recompute(nil, dec("3"), dec("18"))
	if !totals.Total.IsZero() {
		t.Errorf("total = %s, want 0", totals.Total)
	}
}

func TestParseRates(t *testing.T) {
	for _, s := range DiscountRates {
		if _, err := ParseDiscountRate(s); err != nil {
			t.Errorf("ParseDiscountRate(%q): %v", s, err)
		}
	}
	for _, s := range GSTRates {
		if _, err := ParseGSTRate(s); err != nil {
			t.Errorf("ParseGSTRate(%q): %v", s, err)
		}
	}
	if _, err := ParseDiscountRate("7"); err == nil {
		t.Error("discount 7 must be rejected")
	}
	if _, err := ParseGSTRate("15"); err == nil {
		t.Error("gst 15 must be rejected")
	}
}
