package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/repository"
	"github.com/sangkips/salesdesk-api/pkg/apperror"
	"github.com/sangkips/salesdesk-api/pkg/pagination"
	"github.com/sangkips/salesdesk-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ProductService handles product-related operations. Stock only moves through
// invoices and stock-ins once a product exists.
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Name          string
	Code          string
	Quantity      int
	QuantityAlert int
	Price         decimal.Decimal
	Cost          decimal.Decimal
	Description   *string
}

// CreateProduct creates a new product with its opening stock
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	if errs := validateProductInput(input); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	// Auto-generate code if not provided
	code := strings.TrimSpace(input.Code)
	if code == "" {
		code = utils.GenerateProductCode()
	}

	existingProduct, err := s.productRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existingProduct != nil {
		return nil, apperror.NewConflictError("Product code already exists")
	}

	product := &entity.Product{
		Name:          strings.TrimSpace(input.Name),
		Code:          code,
		Quantity:      input.Quantity,
		QuantityAlert: input.QuantityAlert,
		Price:         input.Price,
		Cost:          input.Cost,
		Description:   input.Description,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProductInput represents the update product input
type UpdateProductInput struct {
	ID            uuid.UUID
	Name          *string
	Code          *string
	QuantityAlert *int
	Price         *decimal.Decimal
	Cost          *decimal.Decimal
	Description   *string
}

// UpdateProduct updates the catalogue fields of a product
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	// Check if new code is unique
	if input.Code != nil && *input.Code != product.Code {
		existingProduct, err := s.productRepo.GetByCode(ctx, *input.Code)
		if err != nil {
			return nil, err
		}
		if existingProduct != nil && existingProduct.ID != product.ID {
			return nil, apperror.NewConflictError("Product code already exists")
		}
		product.Code = *input.Code
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.QuantityAlert != nil {
		product.QuantityAlert = *input.QuantityAlert
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Cost != nil {
		product.Cost = *input.Cost
	}
	if input.Description != nil {
		product.Description = input.Description
	}

	if errs := validateProductInput(&CreateProductInput{
		Name: product.Name, Quantity: product.Quantity, QuantityAlert: product.QuantityAlert,
		Price: product.Price, Cost: product.Cost,
	}); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// DeleteProduct deletes a product that no invoice or stock-in line references
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return apperror.NewNotFoundError("Product")
	}

	return translateDeleteError(s.productRepo.Delete(ctx, product.ID), "Product")
}

// GetLowStockProducts returns products at or below their alert quantity
func (s *ProductService) GetLowStockProducts(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.GetLowStock(ctx)
}

// ImportResult contains the result of a product import operation
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError describes an error for a specific row during import
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// importColumns is the expected header of an import sheet
var importColumns = []string{"name", "code", "quantity", "quantity_alert", "price", "cost", "description"}

// ImportProducts creates products from the first sheet of an XLSX workbook.
// Invalid rows are reported and skipped; the rest are created.
func (s *ProductService) ImportProducts(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperror.NewBadRequestError("File is not a valid XLSX workbook")
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, apperror.NewBadRequestError("Could not read the first sheet")
	}
	if len(rows) == 0 {
		return &ImportResult{}, nil
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := header["name"]; !ok {
		return nil, apperror.NewBadRequestError("Missing column 'name'; expected " + strings.Join(importColumns, ", "))
	}

	cell := func(row []string, column string) string {
		idx, ok := header[column]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	result := &ImportResult{TotalRows: len(rows) - 1}
	// codes seen in this file, mapped to their row number
	seenCodes := make(map[string]int)

	for i, row := range rows[1:] {
		rowNum := i + 2

		input, rowErr := parseImportRow(cell, row, rowNum)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}

		if input.Code != "" {
			if prev, dup := seenCodes[input.Code]; dup {
				result.Errors = append(result.Errors, ImportRowError{
					Row: rowNum, Field: "code",
					Message: fmt.Sprintf("Duplicate code '%s' (same as row %d)", input.Code, prev),
				})
				continue
			}
			seenCodes[input.Code] = rowNum
		}

		if _, err := s.CreateProduct(ctx, input); err != nil {
			appErr := apperror.GetAppError(err)
			if appErr == apperror.ErrInternalServer {
				return nil, err
			}
			field := "row"
			if len(appErr.Errors) > 0 {
				field = appErr.Errors[0].Field
			} else if appErr.Kind == apperror.KindConflict {
				field = "code"
			}
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Field: field, Message: appErr.Message})
			continue
		}
		result.Successful++
	}

	result.Failed = len(result.Errors)
	return result, nil
}

func parseImportRow(cell func([]string, string) string, row []string, rowNum int) (*CreateProductInput, *ImportRowError) {
	input := &CreateProductInput{
		Name: cell(row, "name"),
		Code: cell(row, "code"),
	}
	if input.Name == "" {
		return nil, &ImportRowError{Row: rowNum, Field: "name", Message: "Name is required"}
	}

	for _, col := range []struct {
		name string
		dst  *int
	}{{"quantity", &input.Quantity}, {"quantity_alert", &input.QuantityAlert}} {
		raw := cell(row, col.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &ImportRowError{Row: rowNum, Field: col.name, Message: "must be a whole number"}
		}
		*col.dst = n
	}

	for _, col := range []struct {
		name string
		dst  *decimal.Decimal
	}{{"price", &input.Price}, {"cost", &input.Cost}} {
		raw := cell(row, col.name)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, &ImportRowError{Row: rowNum, Field: col.name, Message: "must be a number"}
		}
		*col.dst = d
	}

	if desc := cell(row, "description"); desc != "" {
		input.Description = &desc
	}
	return input, nil
}

func validateProductInput(input *CreateProductInput) []apperror.FieldError {
	var errs []apperror.FieldError
	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "is required"})
	}
	if input.Quantity < 0 {
		errs = append(errs, apperror.FieldError{Field: "quantity", Message: "must not be negative"})
	}
	if input.QuantityAlert < 0 {
		errs = append(errs, apperror.FieldError{Field: "quantity_alert", Message: "must not be negative"})
	}
	if input.Price.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "price", Message: "must not be negative"})
	}
	if input.Cost.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "cost", Message: "must not be negative"})
	}
	return errs
}
