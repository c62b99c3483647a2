package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecord is one row of the uploaded sales register, normalized to
// uppercase/trimmed text. Many records per item code and per customer.
type SalesRecord struct {
	ItemCode    string
	Product     string
	OEM         string
	Brand       string
	Category    string
	Customer    string
	Rate        decimal.Decimal
	InvoiceDate time.Time
}

// CatalogEntry is the deduplicated searchable row for one item code,
// carrying the fields of that item's most recent sale.
type CatalogEntry struct {
	ItemCode          string
	Product           string
	OEM               string
	Brand             string
	Category          string
	SearchText        string
	LatestRate        decimal.Decimal
	LatestInvoiceDate time.Time
}

// Catalog is the read-only session index built from the two uploads.
type Catalog struct {
	// Records sorted by invoice date descending; the price resolver
	// relies on this ordering.
	Records []SalesRecord
	// Entries hold one CatalogEntry per item code, in the order item
	// codes first appear in Records. Ranker tie-breaks follow this
	// insertion order.
	Entries   []CatalogEntry
	ByCode    map[string]int // item code -> index into Entries
	Customers []string

	StockByItem      map[string]decimal.Decimal
	WarehousesByItem map[string]map[string]struct{}
}

// NumberToken is one numeric token found in an order line, with its
// position in the raw text so it can be cut back out.
type NumberToken struct {
	Text  string          `json:"text"`
	Value decimal.Decimal `json:"value"`
	Start int             `json:"start"`
	End   int             `json:"end"`
}

// TokenRole is the user's answer for one NumberToken of an ambiguous line.
type TokenRole string

const (
	RoleQuantity TokenRole = "quantity"
	RolePrice    TokenRole = "price"
	RoleIgnore   TokenRole = "ignore"
)

// OrderLine is the tokenizer's output for one raw line. Candidates are
// filled by the ranker; Ambiguous is set instead when the line needs the
// confirmation protocol.
type OrderLine struct {
	Raw           string
	Quantity      int
	PriceOverride *decimal.Decimal // nil = no override; zero is a real override
	Query         string
	Candidates    []Candidate
	Ambiguous     *Ambiguity
	Warnings      []string
}

// Ambiguity carries a line the tokenizer could not auto-resolve.
type Ambiguity struct {
	Raw    string        `json:"raw"`
	Tokens []NumberToken `json:"tokens"`
}

// Candidate is one ranked catalog entry.
type Candidate struct {
	Entry CatalogEntry
	Score float64
}

// PurchaseOrderLine is a fully resolved, user-editable order row.
// Amount is derived and recomputed on every edit, never cached.
type PurchaseOrderLine struct {
	ItemCode      string
	OEM           string
	Product       string
	WarehouseCode string
	Stock         decimal.Decimal
	Quantity      int
	UnitPrice     decimal.Decimal
	Amount        decimal.Decimal

	NoPrice bool // price fell through all fallbacks; user should override
	NoStock bool // no warehouse holds the item; line incomplete until resolved
}

// Totals is the trailing money block of a purchase order.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Taxable  decimal.Decimal
	GST      decimal.Decimal
	Total    decimal.Decimal

	DiscountRate decimal.Decimal
	GSTRate      decimal.Decimal
}
