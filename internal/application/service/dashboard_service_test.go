package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
)

func TestDashboardStats(t *testing.T) {
	store := newMemStore()

	customer := entity.Customer{ID: uuid.New(), Name: "Acme"}
	store.customers[customer.ID] = customer

	for _, p := range []entity.Product{
		{ID: uuid.New(), Name: "Pens", Code: "PEN", Quantity: 1, QuantityAlert: 5},
		{ID: uuid.New(), Name: "Ink", Code: "INK", Quantity: 10, QuantityAlert: 2},
	} {
		store.products[p.ID] = p
	}

	addInvoice := func(no string, at time.Time, total string, paid bool) entity.Invoice {
		inv := entity.Invoice{
			ID:         uuid.New(),
			InvoiceNo:  no,
			CustomerID: customer.ID,
			ExportedAt: at,
			Total:      dec(total),
			IsPaid:     paid,
		}
		store.invoices[inv.ID] = inv
		return inv
	}
	addInvoice("INV-1", time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC), "100.00", true)
	shipped := addInvoice("INV-2", time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC), "50.50", false)
	addInvoice("INV-3", time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC), "20.00", true)
	addInvoice("INV-4", time.Date(2026, 2, 27, 12, 0, 0, 0, time.UTC), "999.00", true)
	store.shipments[shipped.ID] = entity.Shipment{ID: uuid.New(), InvoiceID: shipped.ID, Status: enum.ShipmentStatusPending}

	store.stockIns[uuid.New()] = entity.StockIn{ReferenceNo: "STK-1", Status: enum.StockInStatusPending}
	store.stockIns[uuid.New()] = entity.StockIn{ReferenceNo: "STK-2", Status: enum.StockInStatusApproved}

	svc := NewDashboardService(memInvoiceRepo{store}, memProductRepo{store}, memCustomerRepo{store}, memStockInRepo{store})
	svc.now = func() time.Time { return fixedNow }

	stats, err := svc.GetDashboardStats(context.Background())
	if err != nil {
		t.Fatalf("GetDashboardStats: %v", err)
	}

	counts := map[string][2]int64{
		"customers": {stats.TotalCustomers, 1},
		"products":  {stats.TotalProducts, 2},
		"low stock": {stats.LowStockCount, 1},
		"invoices":  {stats.TotalInvoices, 4},
		"unpaid":    {stats.UnpaidInvoices, 1},
		"unshipped": {stats.UnshippedInvoices, 1},
		"stock-ins": {stats.PendingStockIns, 1},
	}
	for name, c := range counts {
		if c[0] != c[1] {
			t.Errorf("%s = %d, want %d", name, c[0], c[1])
		}
	}

	if !stats.MonthlyRevenue.Equal(dec("170.50")) {
		t.Errorf("monthly revenue = %s, want 170.50", stats.MonthlyRevenue)
	}

	if len(stats.DailySalesData) != dailySalesDays {
		t.Fatalf("daily points = %d, want %d", len(stats.DailySalesData), dailySalesDays)
	}
	first, last := stats.DailySalesData[0], stats.DailySalesData[dailySalesDays-1]
	if first.Date != "2026-03-08" || first.Invoices != 0 || !first.Revenue.IsZero() {
		t.Errorf("first point = %+v", first)
	}
	if last.Date != "2026-03-14" || last.Invoices != 2 || !last.Revenue.Equal(dec("150.50")) {
		t.Errorf("last point = %+v", last)
	}
}
