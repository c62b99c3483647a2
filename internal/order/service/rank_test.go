package service

import (
	"reflect"
	"testing"

	"po-service/internal/order/model"
)

func testCatalog(t *testing.T) *model.Catalog {
	t.Helper()
	rows := []map[string]string{
		salesRow("ABC123", "WIDGET X", "OEM-100", "ACME", "150", "2024-06-01"),
		salesRow("DEF456", "GASKET RING", "OEM-200", "ACME", "40", "2024-05-01"),
		salesRow("GHI789", "WIDGET Y", "OEM-300", "GLOBEX", "99", "2024-04-01"),
	}
	cat, err := BuildCatalog(rows)
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func TestRankExactCodeWins(t *testing.T) {
	cat := testCatalog(t)

	got := Rank("abc123", cat, RankOptions{})
	if len(got) == 0 {
		t.Fatal("no candidates")
	}
	if got[0].Entry.ItemCode != "ABC123" {
		t.Errorf("top candidate = %s, want ABC123", got[0].Entry.ItemCode)
	}
	// verbatim token + full fuzzy alignment
	if got[0].Score != 200 {
		t.Errorf("score = %v, want 200", got[0].Score)
	}
}

func TestRankTokenContainmentOutweighsFuzzy(t *testing.T) {
	cat := testCatalog(t)

	got := Rank("WIDGET X", cat, RankOptions{})
	if len(got) < 2 {
		t.Fatalf("candidates = %d, want at least 2", len(got))
	}
	if got[0].Entry.ItemCode != "ABC123" {
		t.Errorf("top = %s, want ABC123 (both tokens contained)", got[0].Entry.ItemCode)
	}
	if got[1].Entry.ItemCode != "GHI789" {
		t.Errorf("second = %s, want GHI789 (one token contained)", got[1].Entry.ItemCode)
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("scores not descending: %v vs %v", got[0].Score, got[1].Score)
	}
}

func TestRankNoMatchIsEmpty(t *testing.T) {
	cat := testCatalog(t)
	if got := Rank("ZZZZZZZZZZ", cat, RankOptions{}); len(got) != 0 {
		t.Errorf("expected empty result, got %d candidates", len(got))
	}
	if got := Rank("", cat, RankOptions{}); got != nil {
		t.Errorf("empty query must return nil, got %v", got)
	}
}

func TestRankDeterministic(t *testing.T) {
	cat := testCatalog(t)
	a := Rank("widget", cat, RankOptions{})
	b := Rank("widget", cat, RankOptions{})
	if !reflect.DeepEqual(a, b) {
		t.Error("repeated ranking of the same query diverged")
	}
}

func TestRankTiesKeepCatalogOrder(t *testing.T) {
	rows := []map[string]string{
		salesRow("TIE-B", "SAME PRODUCT", "", "", "10", "2024-06-02"),
		salesRow("TIE-A", "SAME PRODUCT", "", "", "10", "2024-06-01"),
	}
	cat, err := BuildCatalog(rows)
	if err != nil {
		t.Fatal(err)
	}

	got := Rank("SAME PRODUCT", cat, RankOptions{})
	if len(got) != 2 {
		t.Fatalf("candidates = %d, want 2", len(got))
	}
	if got[0].Score != got[1].Score {
		t.Fatalf("expected a tie, got %v vs %v", got[0].Score, got[1].Score)
	}
	// TIE-B sorts first in the catalog (later invoice date)
	if got[0].Entry.ItemCode != "TIE-B" || got[1].Entry.ItemCode != "TIE-A" {
		t.Errorf("tie broken out of catalog order: %s, %s", got[0].Entry.ItemCode, got[1].Entry.ItemCode)
	}
}

func TestRankCap(t *testing.T) {
	var rows []map[string]string
	for i := 0; i < 40; i++ {
		rows = append(rows, salesRow(
			// distinct codes, identical product text
			"CAP"+string(rune('A'+i%26))+string(rune('A'+i/26)),
			"COMMON WIDGET", "", "", "10", "2024-01-01"))
	}
	cat, err := BuildCatalog(rows)
	if err != nil {
		t.Fatal(err)
	}
	if got := Rank("COMMON WIDGET", cat, RankOptions{Limit: 30}); len(got) != 30 {
		t.Errorf("candidates = %d, want capped 30", len(got))
	}
	if got := Rank("COMMON WIDGET", cat, RankOptions{Limit: 5}); len(got) != 5 {
		t.Errorf("candidates = %d, want capped 5", len(got))
	}
}

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 100},
		{"", "ABC", 0},
		{"ABC", "", 0},
		{"ABC123", "ABC123 OEM WIDGET", 100}, // verbatim substring
		{"HELP", "HELLO", 75},                // best window "HELL", one edit in four
		{"AB", "BA", 50},                     // single transposition
	}
	for _, tt := range tests {
		if got := partialRatio(tt.a, tt.b); got != tt.want {
			t.Errorf("partialRatio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDamerauLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"ABC", "ABC", 0},
		{"ABC", "AXC", 1},
		{"ABC", "ACB", 1}, // transposition counts once
		{"KITTEN", "SITTING", 3},
	}
	for _, tt := range tests {
		if got := damerauLevenshtein([]rune(tt.a), []rune(tt.b)); got != tt.want {
			t.Errorf("damerauLevenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
