package fileio

import (
	"strings"
	"testing"
)

func TestReadAnyMapsCSV(t *testing.T) {
	csv := "ITEM CODE,PRODUCT,RATE\nABC123,WIDGET,150\n,,\nDEF456,GASKET,40\n"
	rows, err := ReadAnyMaps(strings.NewReader(csv), "sales.csv", 1)
	if err != nil {
		t.Fatal(err)
	}
	// the blank row is dropped
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["ITEM CODE"] != "ABC123" || rows[1]["RATE"] != "40" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestReadAnyMapsHeaderRow(t *testing.T) {
	csv := "Stock Report\nITEM CODE,WH CODE,TOTAL QTY\nABC123,BWD_MAIN,10\n"
	rows, err := ReadAnyMaps(strings.NewReader(csv), "stock.csv", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0]["WH CODE"] != "BWD_MAIN" {
		t.Errorf("unexpected row: %v", rows[0])
	}
}

func TestReadAnyMapsUnsupported(t *testing.T) {
	if _, err := ReadAnyMaps(strings.NewReader(""), "report.pdf", 1); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestPickHeaderFillsBlanks(t *testing.T) {
	h := pickHeader([][]string{{"A", "", "C"}}, 1)
	if h[1] != "Column 2" {
		t.Errorf("blank header = %q, want Column 2", h[1])
	}
}
