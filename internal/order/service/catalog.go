package service

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"po-service/internal/order/model"
	"po-service/internal/utils"
)

// Column names the uploads must carry. Alternatives are separated by "|"
// (stock reports disagree on what the quantity column is called).
const (
	colItemCode = "ITEM CODE"
	colProduct  = "PRODUCT"
	colRate     = "RATE"
	colDate     = "INVOICE DATE"
	colOEM      = "OEM"
	colBrand    = "BRAND"
	colCategory = "CATEGORY"
	colCustomer = "CUSTOMER NAME|CUSTOMER"
	colWhCode   = "WH CODE"
	colStockQty = "TOTAL QTY|QUANTITY|QTY"
)

var rxHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

func normHeaderKey(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = rxHeaderJunk.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// resolveKey finds the real header key for a wanted column name.
// Exact match first, then normalized match, then containment either way.
func resolveKey(rec map[string]string, want string) string {
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	for _, a := range alts {
		if _, ok := rec[a]; ok {
			return a
		}
	}

	var nWant []string
	for _, a := range alts {
		nWant = append(nWant, normHeaderKey(a))
	}

	bestKey := ""
	bestScore := 0
	for k := range rec {
		nk := normHeaderKey(k)
		for _, n := range nWant {
			if nk == n {
				return k
			}
		}
		score := 0
		for _, n := range nWant {
			if strings.Contains(nk, n) || strings.Contains(n, nk) {
				if len(n) > score {
					score = len(n)
				}
			}
		}
		if score > bestScore {
			bestScore, bestKey = score, k
		}
	}
	return bestKey
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02-01-2006",
	"02/01/2006",
	"02-Jan-2006",
	"02-Jan-06",
	"1/2/06",
	"01-02-06",
}

func parseInvoiceDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func cell(rec map[string]string, key string) string {
	if key == "" {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(rec[key]))
}

// BuildCatalog turns raw sales-register rows into the session catalog:
// records sorted by invoice date descending, one entry per item code
// (latest invoice wins) and a sorted unique customer list.
func BuildCatalog(rows []map[string]string) (*model.Catalog, error) {
	if len(rows) == 0 {
		return nil, &model.SchemaError{Source: "sales", Column: colItemCode}
	}

	probe := rows[0]
	codeKey := resolveKey(probe, colItemCode)
	prodKey := resolveKey(probe, colProduct)
	rateKey := resolveKey(probe, colRate)
	if codeKey == "" {
		return nil, &model.SchemaError{Source: "sales", Column: colItemCode}
	}
	if prodKey == "" {
		return nil, &model.SchemaError{Source: "sales", Column: colProduct}
	}
	if rateKey == "" {
		return nil, &model.SchemaError{Source: "sales", Column: colRate}
	}
	dateKey := resolveKey(probe, colDate)
	oemKey := resolveKey(probe, colOEM)
	brandKey := resolveKey(probe, colBrand)
	catKey := resolveKey(probe, colCategory)
	custKey := resolveKey(probe, colCustomer)

	records := make([]model.SalesRecord, 0, len(rows))
	customerSet := make(map[string]struct{})
	for _, rec := range rows {
		code := cell(rec, codeKey)
		if code == "" {
			continue
		}
		rate, _ := utils.ParseNumber(rec[rateKey])
		date, _ := parseInvoiceDate(rec[dateKey])
		r := model.SalesRecord{
			ItemCode:    code,
			Product:     cell(rec, prodKey),
			OEM:         cell(rec, oemKey),
			Brand:       cell(rec, brandKey),
			Category:    cell(rec, catKey),
			Customer:    cell(rec, custKey),
			Rate:        decimal.NewFromFloat(rate),
			InvoiceDate: date,
		}
		if r.Customer != "" {
			customerSet[r.Customer] = struct{}{}
		}
		records = append(records, r)
	}

	// date descending; stable so same-day rows keep file order
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].InvoiceDate.After(records[j].InvoiceDate)
	})

	cat := &model.Catalog{
		Records:          records,
		ByCode:           make(map[string]int),
		StockByItem:      make(map[string]decimal.Decimal),
		WarehousesByItem: make(map[string]map[string]struct{}),
	}
	for _, r := range records {
		if _, seen := cat.ByCode[r.ItemCode]; seen {
			continue
		}
		e := model.CatalogEntry{
			ItemCode:          r.ItemCode,
			Product:           r.Product,
			OEM:               r.OEM,
			Brand:             r.Brand,
			Category:          r.Category,
			SearchText:        searchText(r),
			LatestRate:        r.Rate,
			LatestInvoiceDate: r.InvoiceDate,
		}
		cat.ByCode[r.ItemCode] = len(cat.Entries)
		cat.Entries = append(cat.Entries, e)
	}

	for c := range customerSet {
		cat.Customers = append(cat.Customers, c)
	}
	sort.Strings(cat.Customers)

	return cat, nil
}

func searchText(r model.SalesRecord) string {
	return r.ItemCode + " " + r.OEM + " " + r.Product + " " + r.Brand + " " + r.Category
}

// BuildStock folds stock-report rows into the catalog: total on-hand
// quantity per item code and the distinct warehouse codes holding it.
func BuildStock(cat *model.Catalog, rows []map[string]string) error {
	if len(rows) == 0 {
		return &model.SchemaError{Source: "stock", Column: colItemCode}
	}

	probe := rows[0]
	codeKey := resolveKey(probe, colItemCode)
	whKey := resolveKey(probe, colWhCode)
	qtyKey := resolveKey(probe, colStockQty)
	if codeKey == "" {
		return &model.SchemaError{Source: "stock", Column: colItemCode}
	}
	if whKey == "" {
		return &model.SchemaError{Source: "stock", Column: colWhCode}
	}
	if qtyKey == "" {
		return &model.SchemaError{Source: "stock", Column: colStockQty}
	}

	for _, rec := range rows {
		code := cell(rec, codeKey)
		if code == "" {
			continue
		}
		qty, _ := utils.ParseNumber(rec[qtyKey])
		cat.StockByItem[code] = cat.StockByItem[code].Add(decimal.NewFromFloat(qty))

		wh := cell(rec, whKey)
		if wh == "" {
			continue
		}
		set, ok := cat.WarehousesByItem[code]
		if !ok {
			set = make(map[string]struct{})
			cat.WarehousesByItem[code] = set
		}
		set[wh] = struct{}{}
	}
	return nil
}
