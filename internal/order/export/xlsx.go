package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	excelize "github.com/xuri/excelize/v2"

	"po-service/internal/order/model"
)

var header = []string{"ITEM CODE", "PRODUCT", "WH CODE", "STOCK", "QUANTITY", "PRICE", "AMOUNT"}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// WriteXLSX serializes the purchase order: one row per line, then a
// trailing totals block with labels in the PRICE column and values in
// the AMOUNT column. Money is rounded to 2 places on export.
func WriteXLSX(w io.Writer, lines []*model.PurchaseOrderLine, totals model.Totals) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	set := func(row int, values []any) error {
		addr, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheet, addr, &values)
	}

	hdr := make([]any, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := set(1, hdr); err != nil {
		return err
	}

	row := 2
	for _, l := range lines {
		stock, _ := l.Stock.Float64()
		if err := set(row, []any{
			l.ItemCode, l.Product, l.WarehouseCode, stock,
			l.Quantity, round2(l.UnitPrice), round2(l.Amount),
		}); err != nil {
			return err
		}
		row++
	}

	for _, t := range []struct {
		label string
		value float64
	}{
		{"Subtotal", round2(totals.Subtotal)},
		{fmt.Sprintf("Discount (%s%%)", totals.DiscountRate), round2(totals.Discount)},
		{fmt.Sprintf("GST (%s%%)", totals.GSTRate), round2(totals.GST)},
		{"TOTAL", round2(totals.Total)},
	} {
		if err := set(row, []any{"", "", "", "", "", t.label, t.value}); err != nil {
			return err
		}
		row++
	}

	return f.Write(w)
}
