package service

import (
	"context"
	"fmt"
	"io"

	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/repository"
	"github.com/sangkips/salesdesk-api/pkg/pagination"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet    = "Invoices"
	exportPageSize = 100
	// MaxExportRows caps a single spreadsheet export
	MaxExportRows = 10000
)

var exportHeadings = []string{
	"Invoice No", "Exported At", "Customer", "Creator", "Payment Method",
	"Sub Total", "Discount", "Tax", "Total", "Paid", "Delivery", "Shipment Status",
}

// ExportInvoices writes the invoices matching params to w as an XLSX workbook.
// Pagination in params is ignored; every matching row up to MaxExportRows is exported.
func (s *InvoiceService) ExportInvoices(ctx context.Context, params *repository.InvoiceFilterParams, w io.Writer) error {
	ctx, span := s.tracer.Start(ctx, "InvoiceService.ExportInvoices")
	defer span.End()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return endSpan(span, err)
	}
	for i, h := range exportHeadings {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return endSpan(span, err)
		}
	}

	filter := *params
	row := 2
	for page := 1; row-2 < MaxExportRows; page++ {
		filter.Pagination = &pagination.PaginationParams{Page: page, PerPage: exportPageSize}
		result, err := s.ListInvoices(ctx, &filter)
		if err != nil {
			return endSpan(span, err)
		}

		for i := range result.Items {
			if row-2 >= MaxExportRows {
				break
			}
			if err := writeInvoiceRow(f, row, &result.Items[i]); err != nil {
				return endSpan(span, err)
			}
			row++
		}

		if page >= result.Pagination.TotalPages {
			break
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return endSpan(span, err)
	}

	if err := f.Write(w); err != nil {
		return endSpan(span, fmt.Errorf("write workbook: %w", err))
	}
	return nil
}

func writeInvoiceRow(f *excelize.File, row int, inv *entity.Invoice) error {
	customer := ""
	if inv.Customer != nil {
		customer = inv.Customer.Name
	}
	creator := ""
	if inv.Creator != nil {
		creator = inv.Creator.FullName()
	}
	shipmentStatus := ""
	if inv.Shipment != nil {
		shipmentStatus = string(inv.Shipment.Status)
	}

	values := []interface{}{
		inv.InvoiceNo,
		inv.ExportedAt.Format("2006-01-02 15:04"),
		customer,
		creator,
		string(inv.PaymentMethod),
		inv.SubTotal.InexactFloat64(),
		inv.DiscountAmount.InexactFloat64(),
		inv.TaxAmount.InexactFloat64(),
		inv.Total.InexactFloat64(),
		inv.IsPaid,
		inv.IsDelivery,
		shipmentStatus,
	}

	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(exportSheet, cell, &values)
}
