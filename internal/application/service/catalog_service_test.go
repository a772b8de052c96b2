package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/sangkips/salesdesk-api/internal/domain/repository"
	"github.com/sangkips/salesdesk-api/pkg/apperror"
	"github.com/sangkips/salesdesk-api/pkg/pagination"
	"github.com/xuri/excelize/v2"
)

func TestCreateProductGeneratesCodeAndRejectsDuplicates(t *testing.T) {
	store := newMemStore()
	svc := NewProductService(memProductRepo{store})
	ctx := context.Background()

	generated, err := svc.CreateProduct(ctx, &CreateProductInput{Name: "Stapler", Quantity: 5, Price: dec("4.20")})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if !strings.HasPrefix(generated.Code, "PROD-") {
		t.Errorf("generated code = %q", generated.Code)
	}

	if _, err := svc.CreateProduct(ctx, &CreateProductInput{Name: "Other", Code: generated.Code}); err == nil {
		t.Fatal("duplicate code accepted")
	} else {
		assertKind(t, err, apperror.KindConflict)
	}

	_, err = svc.CreateProduct(ctx, &CreateProductInput{Name: " ", Quantity: -1, Price: dec("-1")})
	assertKind(t, err, apperror.KindValidationFailed)
	if fields := apperror.GetAppError(err).Errors; len(fields) != 3 {
		t.Errorf("expected name, quantity and price errors, got %+v", fields)
	}
}

func TestUpdateProductKeepsStockAndChecksCode(t *testing.T) {
	store := newMemStore()
	svc := NewProductService(memProductRepo{store})
	ctx := context.Background()

	a, _ := svc.CreateProduct(ctx, &CreateProductInput{Name: "A", Code: "A-1", Quantity: 9})
	b, _ := svc.CreateProduct(ctx, &CreateProductInput{Name: "B", Code: "B-1"})

	taken := "A-1"
	_, err := svc.UpdateProduct(ctx, &UpdateProductInput{ID: b.ID, Code: &taken})
	assertKind(t, err, apperror.KindConflict)

	price := dec("12.00")
	updated, err := svc.UpdateProduct(ctx, &UpdateProductInput{ID: a.ID, Price: &price})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if !updated.Price.Equal(price) || updated.Quantity != 9 {
		t.Errorf("unexpected product %+v", updated)
	}

	_, err = svc.UpdateProduct(ctx, &UpdateProductInput{ID: uuid.New(), Price: &price})
	assertKind(t, err, apperror.KindNotFound)
}

func TestDeleteProductReferencedByInvoice(t *testing.T) {
	f := newInvoiceFixture(t)
	pen := f.addProduct("Pen", 10, "1.00")
	if _, err := f.svc.CreateInvoice(context.Background(), f.input(line(pen, 1))); err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	svc := NewProductService(memProductRepo{f.store})
	assertKind(t, svc.DeleteProduct(context.Background(), pen.ID), apperror.KindForeignKeyConstraint)
	if _, ok := f.store.products[pen.ID]; !ok {
		t.Error("referenced product was deleted")
	}

	spare := f.addProduct("Spare", 1, "1.00")
	if err := svc.DeleteProduct(context.Background(), spare.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	assertKind(t, svc.DeleteProduct(context.Background(), spare.ID), apperror.KindNotFound)
}

func TestListProductsLowStock(t *testing.T) {
	store := newMemStore()
	for _, p := range []entity.Product{
		{ID: uuid.New(), Name: "Low", Code: "L", Quantity: 1, QuantityAlert: 5},
		{ID: uuid.New(), Name: "Plenty", Code: "P", Quantity: 50, QuantityAlert: 5},
	} {
		store.products[p.ID] = p
	}
	svc := NewProductService(memProductRepo{store})

	low, err := svc.GetLowStockProducts(context.Background())
	if err != nil {
		t.Fatalf("GetLowStockProducts: %v", err)
	}
	if len(low) != 1 || low[0].Name != "Low" {
		t.Errorf("low stock = %+v", low)
	}

	page, err := svc.ListProducts(context.Background(), &repository.ProductFilterParams{})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if page.Pagination.Total != 2 || page.Pagination.PerPage != 15 {
		t.Errorf("unexpected pagination %+v", page.Pagination)
	}
}

func TestImportProductsReportsRowErrors(t *testing.T) {
	store := newMemStore()
	svc := NewProductService(memProductRepo{store})
	existing := entity.Product{ID: uuid.New(), Name: "Existing", Code: "EX-1"}
	store.products[existing.ID] = existing

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Name", "Code", "Quantity", "Price"},
		{"Pencil", "PC-1", "10", "0.50"},
		{"Eraser", "", "4", "0.25"},
		{"", "NO-NAME", "1", "1"},
		{"Ruler", "PC-1", "1", "1"},
		{"Glue", "GL-1", "lots", "1"},
		{"Clash", "EX-1", "1", "1"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	result, err := svc.ImportProducts(context.Background(), buf)
	if err != nil {
		t.Fatalf("ImportProducts: %v", err)
	}

	if result.TotalRows != 6 || result.Successful != 2 || result.Failed != 4 {
		t.Fatalf("unexpected result %+v", result)
	}
	want := map[int]string{4: "name", 5: "code", 6: "quantity", 7: "code"}
	for _, rowErr := range result.Errors {
		if want[rowErr.Row] != rowErr.Field {
			t.Errorf("row %d: field %q, want %q", rowErr.Row, rowErr.Field, want[rowErr.Row])
		}
	}
	if len(store.products) != 3 {
		t.Errorf("products = %d, want 3", len(store.products))
	}
}

func TestImportProductsRejectsNonWorkbook(t *testing.T) {
	svc := NewProductService(memProductRepo{newMemStore()})
	_, err := svc.ImportProducts(context.Background(), strings.NewReader("name,code\nx,y\n"))
	if apperror.GetAppError(err).Code != 400 {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestPromotionLifecycle(t *testing.T) {
	f := newInvoiceFixture(t)
	svc := NewPromotionService(memPromotionRepo{f.store})
	ctx := context.Background()

	start := fixedNow
	end := fixedNow.Add(-time.Hour)
	_, err := svc.CreatePromotion(ctx, &CreatePromotionInput{Name: "Bad", Code: "bad", DiscountPercent: dec("120"), StartsAt: &start, EndsAt: &end})
	assertKind(t, err, apperror.KindValidationFailed)
	if fields := apperror.GetAppError(err).Errors; len(fields) != 2 {
		t.Errorf("expected discount and window errors, got %+v", fields)
	}

	promo, err := svc.CreatePromotion(ctx, &CreatePromotionInput{Name: "Spring", Code: "spring", DiscountPercent: dec("10")})
	if err != nil {
		t.Fatalf("CreatePromotion: %v", err)
	}
	if promo.Code != "SPRING" || !promo.IsActive {
		t.Errorf("unexpected promotion %+v", promo)
	}

	_, err = svc.CreatePromotion(ctx, &CreatePromotionInput{Name: "Dup", Code: "Spring", DiscountPercent: dec("5")})
	assertKind(t, err, apperror.KindConflict)

	pen := f.addProduct("Pen", 5, "10")
	in := f.input(line(pen, 1))
	in.PromotionID = &promo.ID
	if _, err := f.svc.CreateInvoice(ctx, in); err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	assertKind(t, svc.DeletePromotion(ctx, promo.ID), apperror.KindForeignKeyConstraint)

	off := false
	updated, err := svc.UpdatePromotion(ctx, &UpdatePromotionInput{ID: promo.ID, IsActive: &off})
	if err != nil {
		t.Fatalf("UpdatePromotion: %v", err)
	}
	if updated.IsActive {
		t.Error("promotion still active")
	}

	active, err := svc.ListPromotions(ctx, pagination.DefaultPagination(), true)
	if err != nil {
		t.Fatalf("ListPromotions: %v", err)
	}
	if len(active.Items) != 0 {
		t.Errorf("active promotions = %+v", active.Items)
	}
}

type stockInFixture struct {
	store    *memStore
	svc      *StockInService
	supplier entity.Supplier
	product  entity.Product
}

func newStockInFixture() *stockInFixture {
	store := newMemStore()
	supplier := entity.Supplier{ID: uuid.New(), Name: "Wholesale Co", Type: enum.SupplierTypeWholesaler}
	store.suppliers[supplier.ID] = supplier
	product := entity.Product{ID: uuid.New(), Name: "Paper", Code: "PAPER", Quantity: 2}
	store.products[product.ID] = product

	svc := NewStockInService(memTransactor{store: store}, memStockInRepo{store}, memProductRepo{store}, memSupplierRepo{store})
	svc.now = func() time.Time { return fixedNow }
	return &stockInFixture{store: store, svc: svc, supplier: supplier, product: product}
}

func (f *stockInFixture) create(t *testing.T) *entity.StockIn {
	t.Helper()
	stockIn, err := f.svc.CreateStockIn(context.Background(), &CreateStockInInput{
		UserID:     uuid.New(),
		SupplierID: f.supplier.ID,
		Items: []StockInItemInput{
			{ProductID: f.product.ID, Quantity: 3, UnitCost: dec("1.10")},
			{ProductID: f.product.ID, Quantity: 5, UnitCost: dec("1.00")},
		},
	})
	if err != nil {
		t.Fatalf("CreateStockIn: %v", err)
	}
	return stockIn
}

func TestApproveStockInAddsStockOnce(t *testing.T) {
	f := newStockInFixture()
	ctx := context.Background()
	stockIn := f.create(t)

	if !stockIn.IsPending() || !stockIn.TotalAmount.Equal(dec("8.30")) || !strings.HasPrefix(stockIn.ReferenceNo, "STK-") {
		t.Fatalf("unexpected stock-in %+v", stockIn)
	}
	if got := f.store.stock(f.product.ID); got != 2 {
		t.Fatalf("pending stock-in moved stock to %d", got)
	}

	approver := uuid.New()
	approved, err := f.svc.ApproveStockIn(ctx, approver, stockIn.ID)
	if err != nil {
		t.Fatalf("ApproveStockIn: %v", err)
	}
	if approved.Status != enum.StockInStatusApproved || *approved.ApprovedByID != approver || !approved.ApprovedAt.Equal(fixedNow) {
		t.Errorf("unexpected approval %+v", approved)
	}
	if got := f.store.stock(f.product.ID); got != 10 {
		t.Errorf("stock = %d, want 10", got)
	}

	_, err = f.svc.ApproveStockIn(ctx, approver, stockIn.ID)
	assertKind(t, err, apperror.KindConflict)
	if got := f.store.stock(f.product.ID); got != 10 {
		t.Errorf("second approval moved stock to %d", got)
	}

	assertKind(t, f.svc.DeleteStockIn(ctx, stockIn.ID), apperror.KindConflict)
}

func TestApproveStockInRollsBackOnMissingProduct(t *testing.T) {
	f := newStockInFixture()
	stockIn := f.create(t)
	delete(f.store.products, f.product.ID)

	_, err := f.svc.ApproveStockIn(context.Background(), uuid.New(), stockIn.ID)
	assertKind(t, err, apperror.KindProductNotFound)
	if !f.store.stockIns[stockIn.ID].IsPending() {
		t.Error("failed approval changed the status")
	}
}

func TestCreateStockInErrors(t *testing.T) {
	f := newStockInFixture()
	ctx := context.Background()

	_, err := f.svc.CreateStockIn(ctx, &CreateStockInInput{SupplierID: f.supplier.ID})
	assertKind(t, err, apperror.KindValidationFailed)

	_, err = f.svc.CreateStockIn(ctx, &CreateStockInInput{
		SupplierID: uuid.New(),
		Items:      []StockInItemInput{{ProductID: f.product.ID, Quantity: 1}},
	})
	assertKind(t, err, apperror.KindNotFound)

	_, err = f.svc.CreateStockIn(ctx, &CreateStockInInput{
		SupplierID: f.supplier.ID,
		Items:      []StockInItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	assertKind(t, err, apperror.KindProductNotFound)
}

func TestDeletePendingStockInAndSupplierReference(t *testing.T) {
	f := newStockInFixture()
	ctx := context.Background()
	stockIn := f.create(t)

	suppliers := NewSupplierService(memSupplierRepo{f.store}, "KE")
	assertKind(t, suppliers.DeleteSupplier(ctx, f.supplier.ID), apperror.KindForeignKeyConstraint)

	if err := f.svc.DeleteStockIn(ctx, stockIn.ID); err != nil {
		t.Fatalf("DeleteStockIn: %v", err)
	}
	assertKind(t, f.svc.DeleteStockIn(ctx, stockIn.ID), apperror.KindNotFound)

	if err := suppliers.DeleteSupplier(ctx, f.supplier.ID); err != nil {
		t.Fatalf("DeleteSupplier: %v", err)
	}
}

func TestUpdateShipmentStatusMovesForward(t *testing.T) {
	store := newMemStore()
	shipment := entity.Shipment{ID: uuid.New(), InvoiceID: uuid.New(), RecipientName: "Ann", Status: enum.ShipmentStatusPending}
	store.shipments[shipment.InvoiceID] = shipment

	svc := NewShipmentService(memShipmentRepo{store})
	svc.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	delivered, err := svc.UpdateShipmentStatus(ctx, shipment.ID, enum.ShipmentStatusDelivered)
	if err != nil {
		t.Fatalf("UpdateShipmentStatus: %v", err)
	}
	if delivered.ShippedAt == nil || delivered.DeliveredAt == nil || !delivered.DeliveredAt.Equal(fixedNow) {
		t.Errorf("timestamps not stamped: %+v", delivered)
	}

	_, err = svc.UpdateShipmentStatus(ctx, shipment.ID, enum.ShipmentStatusShipped)
	assertKind(t, err, apperror.KindValidationFailed)

	_, err = svc.UpdateShipmentStatus(ctx, uuid.New(), enum.ShipmentStatusShipped)
	assertKind(t, err, apperror.KindNotFound)

	status := enum.ShipmentStatusDelivered
	page, err := svc.ListShipments(ctx, &repository.ShipmentFilterParams{Status: &status})
	if err != nil {
		t.Fatalf("ListShipments: %v", err)
	}
	if len(page.Items) != 1 {
		t.Errorf("delivered shipments = %d, want 1", len(page.Items))
	}
}
