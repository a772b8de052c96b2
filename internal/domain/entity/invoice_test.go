package entity

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotalsWithoutTaxOrPromotion(t *testing.T) {
	items := []InvoiceItem{
		{Quantity: 3, UnitPrice: dec("2.50")},
		{Quantity: 1, UnitPrice: dec("10.00")},
	}

	got := ComputeTotals(items, decimal.Zero, decimal.Zero)

	if !got.Total.Equal(dec("17.50")) || !got.SubTotal.Equal(got.Total) {
		t.Errorf("unexpected totals %+v", got)
	}
}

func TestComputeTotalsDiscountBeforeTax(t *testing.T) {
	items := []InvoiceItem{{Quantity: 4, UnitPrice: dec("25.00")}}

	got := ComputeTotals(items, dec("16"), dec("10"))

	if !got.SubTotal.Equal(dec("100")) {
		t.Errorf("subtotal: %s", got.SubTotal)
	}
	if !got.DiscountAmount.Equal(dec("10")) {
		t.Errorf("discount: %s", got.DiscountAmount)
	}
	if !got.TaxAmount.Equal(dec("14.40")) {
		t.Errorf("tax: %s", got.TaxAmount)
	}
	if !got.Total.Equal(dec("104.40")) {
		t.Errorf("total: %s", got.Total)
	}
}

func TestSumQuantitiesMergesRepeatedProducts(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	items := []InvoiceItem{
		{ProductID: p1, Quantity: 2},
		{ProductID: p2, Quantity: 1},
		{ProductID: p1, Quantity: 5},
	}

	got := SumQuantities(items)

	if got[p1] != 7 || got[p2] != 1 || len(got) != 2 {
		t.Errorf("unexpected sums %v", got)
	}
}

func TestPromotionActiveAt(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)
	p := Promotion{IsActive: true, StartsAt: &start, EndsAt: &end}

	if !p.ActiveAt(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected active inside the window")
	}
	if p.ActiveAt(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected inactive after the window")
	}

	p.IsActive = false
	if p.ActiveAt(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Error("disabled promotion must not apply")
	}
}

func TestInvoiceItemJSONCarriesProductSummary(t *testing.T) {
	product := &Product{ID: uuid.New(), Name: "Blue pen", Code: "PEN-1", Cost: dec("1.20")}
	item := InvoiceItem{ID: uuid.New(), ProductID: product.ID, Quantity: 2, UnitPrice: dec("2.50"), Product: product}

	raw, err := json.Marshal(Invoice{Items: []InvoiceItem{item}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got struct {
		Items []struct {
			ProductID string          `json:"product_id"`
			Quantity  int             `json:"quantity"`
			Product   *ProductSummary `json:"product"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 || got.Items[0].ProductID != product.ID.String() {
		t.Fatalf("items = %+v", got.Items)
	}
	if p := got.Items[0].Product; p == nil || p.Name != "Blue pen" || p.Code != "PEN-1" {
		t.Errorf("product = %+v", p)
	}
	if strings.Contains(string(raw), "cost") {
		t.Errorf("summary leaks product cost: %s", raw)
	}

	bare, _ := json.Marshal(InvoiceItem{ProductID: product.ID})
	if strings.Contains(string(bare), `"product"`) {
		t.Errorf("unloaded product rendered: %s", bare)
	}
}
