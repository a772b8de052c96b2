package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/database"
	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testDB connects to TEST_DATABASE_DSN. TEST_DATABASE_DRIVER selects mysql; postgres is the default.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	dialector := postgres.Open(dsn)
	if os.Getenv("TEST_DATABASE_DRIVER") == "mysql" {
		dialector = mysql.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createProduct(t *testing.T, db *gorm.DB, quantity int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		Name:     "Integration product",
		Code:     "IT-" + uuid.NewString()[:8],
		Quantity: quantity,
		Price:    decimal.NewFromInt(10),
	}
	if err := NewProductRepository(db).Create(context.Background(), p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	t.Cleanup(func() { db.Delete(&entity.Product{}, "id = ?", p.ID) })
	return p
}

func TestDecrementStockHonoursFloor(t *testing.T) {
	db := testDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()
	p := createProduct(t, db, 3)

	ok, err := repo.DecrementStock(ctx, p.ID, 5)
	if err != nil || ok {
		t.Fatalf("oversell: ok=%v err=%v", ok, err)
	}
	ok, err = repo.DecrementStock(ctx, p.ID, 3)
	if err != nil || !ok {
		t.Fatalf("exact decrement: ok=%v err=%v", ok, err)
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil || got.Quantity != 0 {
		t.Fatalf("quantity = %v, %v", got, err)
	}
}

func TestTransactorRollsBack(t *testing.T) {
	db := testDB(t)
	repo := NewProductRepository(db)
	tx := NewTransactor(db)
	ctx := context.Background()
	p := createProduct(t, db, 4)

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := repo.IncrementStock(ctx, p.ID, 10); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	got, _ := repo.GetByID(ctx, p.ID)
	if got.Quantity != 4 {
		t.Errorf("quantity after rollback = %d, want 4", got.Quantity)
	}
}

func TestDailySalesGroupsByDay(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// far in the past so other rows in a shared database do not interfere
	day := time.Date(2001, 1, 2, 0, 0, 0, 0, time.UTC)
	rows, err := NewInvoiceRepository(db).DailySales(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("DailySales: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %+v, want none", rows)
	}
}

func TestIdempotencyReserveIsExclusive(t *testing.T) {
	db := testDB(t)
	repo := NewIdempotencyRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	key := "it-" + uuid.NewString()
	t.Cleanup(func() { db.Where("user_id = ?", userID).Delete(&entity.IdempotencyKey{}) })

	reserve := func() bool {
		ok, err := repo.Reserve(ctx, &entity.IdempotencyKey{
			Key: key, UserID: userID, Endpoint: "POST /api/v1/invoices", ExpiresAt: time.Now().Add(time.Minute),
		})
		if err != nil {
			t.Fatalf("Reserve: %v", err)
		}
		return ok
	}
	if !reserve() {
		t.Fatal("first reservation refused")
	}
	if reserve() {
		t.Fatal("second reservation of the same key succeeded")
	}

	done := &entity.IdempotencyKey{Key: key, UserID: userID, ResponseCode: 201, ResponseBody: `{"ok":true}`, ExpiresAt: time.Now().Add(time.Hour)}
	if err := repo.Complete(ctx, done); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	// a completed key is kept for replay
	if err := repo.Release(ctx, key, userID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	got, err := repo.GetByKey(ctx, key, userID)
	if err != nil || got == nil || got.ResponseCode != 201 || got.IsPending() {
		t.Fatalf("stored key = %+v, %v", got, err)
	}
}
