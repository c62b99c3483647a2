package service

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"po-service/internal/order/model"
)

func TestTokenizeSingleNumber(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantQty int
		wantQ   string
	}{
		{"leading quantity", "5 abc123", 5, "abc123"},
		{"trailing quantity", "gasket ring 12", 12, "gasket ring"},
		{"digits inside code stay put", "10 BRG-6204ZZ", 10, "BRG-6204ZZ"},
		{"decimal quantity truncated", "2.0 filter", 2, "filter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := Tokenize(tt.raw, TokenizeOptions{})
			if err != nil {
				t.Fatalf("Tokenize(%q): %v", tt.raw, err)
			}
			if line.Quantity != tt.wantQty {
				t.Errorf("quantity = %d, want %d", line.Quantity, tt.wantQty)
			}
			if line.PriceOverride != nil {
				t.Errorf("price override = %v, want none", line.PriceOverride)
			}
			if line.Query != tt.wantQ {
				t.Errorf("query = %q, want %q", line.Query, tt.wantQ)
			}
		})
	}
}

func TestTokenizeNoNumber(t *testing.T) {
	line, err := Tokenize("oil seal rear", TokenizeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if line.Quantity != 1 {
		t.Errorf("quantity = %d, want default 1", line.Quantity)
	}
	if line.Query != "oil seal rear" {
		t.Errorf("query = %q", line.Query)
	}
	if len(line.Warnings) == 0 {
		t.Error("expected a warning for the missing quantity")
	}
}

func TestTokenizeTwoNumbers(t *testing.T) {
	// earliest is quantity, latest is price, regardless of magnitude
	tests := []struct {
		raw       string
		wantQty   int
		wantPrice string
		wantQuery string
	}{
		{"10 widget X 55", 10, "55", "widget X"},
		{"2 bolt @55.50", 2, "55.5", "bolt"},
		{"55 widget 10", 55, "10", "widget"},
	}
	for _, tt := range tests {
		line, err := Tokenize(tt.raw, TokenizeOptions{TwoNumberPolicy: PolicyQtyFirstPriceLast})
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", tt.raw, err)
		}
		if line.Quantity != tt.wantQty {
			t.Errorf("%q: quantity = %d, want %d", tt.raw, line.Quantity, tt.wantQty)
		}
		if line.PriceOverride == nil {
			t.Fatalf("%q: no price override", tt.raw)
		}
		if !line.PriceOverride.Equal(decimal.RequireFromString(tt.wantPrice)) {
			t.Errorf("%q: price = %s, want %s", tt.raw, line.PriceOverride, tt.wantPrice)
		}
		if line.Query != tt.wantQuery {
			t.Errorf("%q: query = %q, want %q", tt.raw, line.Query, tt.wantQuery)
		}
	}
}

func TestTokenizeAmbiguous(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		opt  TokenizeOptions
	}{
		{"three numbers", "10 bolt 55 20", TokenizeOptions{}},
		{"two numbers under confirm policy", "10 widget 55", TokenizeOptions{TwoNumberPolicy: PolicyConfirm}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := Tokenize(tt.raw, tt.opt)
			var ambErr *model.AmbiguousError
			if !errors.As(err, &ambErr) {
				t.Fatalf("expected AmbiguousError, got %v", err)
			}
			if line.Ambiguous == nil {
				t.Fatal("line.Ambiguous not set")
			}
			if got, want := len(line.Ambiguous.Tokens), len(ambErr.Ambiguity.Tokens); got != want {
				t.Errorf("token count mismatch: %d vs %d", got, want)
			}
		})
	}
}

func TestResolveAmbiguity(t *testing.T) {
	_, err := Tokenize("10 bolt 55 20", TokenizeOptions{})
	var ambErr *model.AmbiguousError
	if !errors.As(err, &ambErr) {
		t.Fatalf("expected ambiguity, got %v", err)
	}
	amb := ambErr.Ambiguity

	t.Run("qty price ignore", func(t *testing.T) {
		got, err := ResolveAmbiguity(amb, []model.TokenRole{model.RoleQuantity, model.RolePrice, model.RoleIgnore}, TokenizeOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if got.Quantity != 10 {
			t.Errorf("quantity = %d, want 10", got.Quantity)
		}
		if got.PriceOverride == nil || !got.PriceOverride.Equal(decimal.RequireFromString("55")) {
			t.Errorf("price = %v, want 55", got.PriceOverride)
		}
		// all numeric tokens leave the product text, whatever their role
		if got.Query != "bolt" {
			t.Errorf("query = %q, want %q", got.Query, "bolt")
		}
	})

	t.Run("no quantity defaults to 1", func(t *testing.T) {
		got, err := ResolveAmbiguity(amb, []model.TokenRole{model.RoleIgnore, model.RolePrice, model.RoleIgnore}, TokenizeOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if got.Quantity != 1 {
			t.Errorf("quantity = %d, want 1", got.Quantity)
		}
		if len(got.Warnings) == 0 {
			t.Error("expected a warning for the defaulted quantity")
		}
	})

	t.Run("two quantities rejected", func(t *testing.T) {
		_, err := ResolveAmbiguity(amb, []model.TokenRole{model.RoleQuantity, model.RoleQuantity, model.RoleIgnore}, TokenizeOptions{})
		if err == nil {
			t.Error("expected error")
		}
	})

	t.Run("two prices rejected", func(t *testing.T) {
		_, err := ResolveAmbiguity(amb, []model.TokenRole{model.RoleQuantity, model.RolePrice, model.RolePrice}, TokenizeOptions{})
		if err == nil {
			t.Error("expected error")
		}
	})

	t.Run("role count mismatch", func(t *testing.T) {
		_, err := ResolveAmbiguity(amb, []model.TokenRole{model.RoleQuantity}, TokenizeOptions{})
		if err == nil {
			t.Error("expected error")
		}
	})
}

func TestTokenizeStripUnits(t *testing.T) {
	line, err := Tokenize("5 pcs bearing box", TokenizeOptions{StripUnits: true})
	if err != nil {
		t.Fatal(err)
	}
	if line.Query != "bearing" {
		t.Errorf("query = %q, want %q", line.Query, "bearing")
	}
}

func TestTokenizeIdempotent(t *testing.T) {
	opt := TokenizeOptions{TwoNumberPolicy: PolicyQtyFirstPriceLast, StripUnits: true}
	a, err1 := Tokenize("10 widget X 55", opt)
	b, err2 := Tokenize("10 widget X 55", opt)
	if err1 != nil || err2 != nil {
		t.Fatal(err1, err2)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same line tokenized differently:\n%+v\n%+v", a, b)
	}
}
