package service

import (
	"context"
	"time"

	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/sangkips/salesdesk-api/internal/domain/repository"
	"github.com/sangkips/salesdesk-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

const dailySalesDays = 7

// DashboardService provides dashboard statistics
type DashboardService struct {
	invoiceRepo  repository.InvoiceRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	stockInRepo  repository.StockInRepository
	now          func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	stockInRepo repository.StockInRepository,
) *DashboardService {
	return &DashboardService{
		invoiceRepo:  invoiceRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		stockInRepo:  stockInRepo,
		now:          time.Now,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalCustomers    int64             `json:"total_customers"`
	TotalProducts     int64             `json:"total_products"`
	LowStockCount     int64             `json:"low_stock_count"`
	TotalInvoices     int64             `json:"total_invoices"`
	UnpaidInvoices    int64             `json:"unpaid_invoices"`
	UnshippedInvoices int64             `json:"unshipped_invoices"`
	PendingStockIns   int64             `json:"pending_stock_ins"`
	MonthlyRevenue    decimal.Decimal   `json:"monthly_revenue"`
	DailySalesData    []DailySalesPoint `json:"daily_sales_data"`
}

// DailySalesPoint represents a daily sales data point
type DailySalesPoint struct {
	Date     string          `json:"date"`
	Invoices int64           `json:"invoices"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// GetDashboardStats returns counts, this month's revenue and the last week of sales
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if _, stats.TotalCustomers, err = s.customerRepo.List(ctx, countOnly(), ""); err != nil {
		return nil, err
	}
	if _, stats.TotalProducts, err = s.productRepo.List(ctx, &repository.ProductFilterParams{Pagination: countOnly()}); err != nil {
		return nil, err
	}

	lowStock, err := s.productRepo.GetLowStock(ctx)
	if err != nil {
		return nil, err
	}
	stats.LowStockCount = int64(len(lowStock))

	if _, stats.TotalInvoices, err = s.invoiceRepo.List(ctx, &repository.InvoiceFilterParams{Pagination: countOnly()}); err != nil {
		return nil, err
	}
	unpaid := false
	if _, stats.UnpaidInvoices, err = s.invoiceRepo.List(ctx, &repository.InvoiceFilterParams{Pagination: countOnly(), IsPaid: &unpaid}); err != nil {
		return nil, err
	}
	if _, stats.UnshippedInvoices, err = s.invoiceRepo.List(ctx, &repository.InvoiceFilterParams{Pagination: countOnly(), UnshippedOnly: true}); err != nil {
		return nil, err
	}

	pending := enum.StockInStatusPending
	if _, stats.PendingStockIns, err = s.stockInRepo.List(ctx, &repository.StockInFilterParams{Pagination: countOnly(), Status: &pending}); err != nil {
		return nil, err
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	tomorrow := today.AddDate(0, 0, 1)
	startOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	weekStart := today.AddDate(0, 0, -(dailySalesDays - 1))

	from := startOfMonth
	if weekStart.Before(from) {
		from = weekStart
	}

	rows, err := s.invoiceRepo.DailySales(ctx, from, tomorrow)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]repository.DailySales, len(rows))
	stats.MonthlyRevenue = decimal.Zero
	for _, row := range rows {
		byDay[row.Day.Format(time.DateOnly)] = row
		if !row.Day.Before(startOfMonth) {
			stats.MonthlyRevenue = stats.MonthlyRevenue.Add(row.Revenue)
		}
	}

	stats.DailySalesData = make([]DailySalesPoint, 0, dailySalesDays)
	for day := weekStart; day.Before(tomorrow); day = day.AddDate(0, 0, 1) {
		key := day.Format(time.DateOnly)
		point := DailySalesPoint{Date: key, Revenue: decimal.Zero}
		if row, ok := byDay[key]; ok {
			point.Invoices = row.Invoices
			point.Revenue = row.Revenue
		}
		stats.DailySalesData = append(stats.DailySalesData, point)
	}

	return stats, nil
}

func countOnly() *pagination.PaginationParams {
	return &pagination.PaginationParams{Page: 1, PerPage: 1}
}
