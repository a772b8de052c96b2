package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/sangkips/salesdesk-api/internal/domain/repository"
	"github.com/sangkips/salesdesk-api/pkg/apperror"
	"github.com/sangkips/salesdesk-api/pkg/pagination"
)

// CustomerService handles customer-related operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
	phoneRegion  string
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository, phoneRegion string) *CustomerService {
	return &CustomerService{customerRepo: customerRepo, phoneRegion: phoneRegion}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	Name    string
	Email   *string
	Phone   *string
	Address *string
	TaxPin  *string
}

// CreateCustomer creates a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldValidationError("name", "is required")
	}

	phone, err := normalizeOptionalPhone(input.Phone, s.phoneRegion, "phone")
	if err != nil {
		return nil, err
	}

	customer := &entity.Customer{
		Name:    name,
		Email:   input.Email,
		Phone:   phone,
		Address: input.Address,
		TaxPin:  input.TaxPin,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists customers matching search
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	params.Validate()

	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}

// UpdateCustomerInput represents the update customer input
type UpdateCustomerInput struct {
	ID      uuid.UUID
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	TaxPin  *string
}

// UpdateCustomer updates a customer
func (s *CustomerService) UpdateCustomer(ctx context.Context, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewFieldValidationError("name", "must not be empty")
		}
		customer.Name = name
	}
	if input.Email != nil {
		customer.Email = input.Email
	}
	if input.Phone != nil {
		if customer.Phone, err = normalizeOptionalPhone(input.Phone, s.phoneRegion, "phone"); err != nil {
			return nil, err
		}
	}
	if input.Address != nil {
		customer.Address = input.Address
	}
	if input.TaxPin != nil {
		customer.TaxPin = input.TaxPin
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// DeleteCustomer deletes a customer that no invoice references
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if customer == nil {
		return apperror.NewNotFoundError("Customer")
	}

	return translateDeleteError(s.customerRepo.Delete(ctx, id), "Customer")
}

// SupplierService handles supplier-related operations
type SupplierService struct {
	supplierRepo repository.SupplierRepository
	phoneRegion  string
}

// NewSupplierService creates a new supplier service
func NewSupplierService(supplierRepo repository.SupplierRepository, phoneRegion string) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo, phoneRegion: phoneRegion}
}

// CreateSupplierInput represents the create supplier input
type CreateSupplierInput struct {
	Name          string
	Email         *string
	Phone         *string
	Address       *string
	ShopName      *string
	Type          enum.SupplierType
	BankName      *string
	AccountNumber *string
}

// CreateSupplier creates a new supplier
func (s *SupplierService) CreateSupplier(ctx context.Context, input *CreateSupplierInput) (*entity.Supplier, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldValidationError("name", "is required")
	}

	supplierType := input.Type
	if supplierType == "" {
		supplierType = enum.SupplierTypeDistributor
	}
	if !supplierType.IsValid() {
		return nil, apperror.NewFieldValidationError("type", "must be distributor, wholesaler or producer")
	}

	phone, err := normalizeOptionalPhone(input.Phone, s.phoneRegion, "phone")
	if err != nil {
		return nil, err
	}

	supplier := &entity.Supplier{
		Name:          name,
		Email:         input.Email,
		Phone:         phone,
		Address:       input.Address,
		ShopName:      input.ShopName,
		Type:          supplierType,
		BankName:      input.BankName,
		AccountNumber: input.AccountNumber,
	}

	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}

	return supplier, nil
}

// GetSupplier retrieves a supplier by ID
func (s *SupplierService) GetSupplier(ctx context.Context, id uuid.UUID) (*entity.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperror.NewNotFoundError("Supplier")
	}
	return supplier, nil
}

// ListSuppliers lists suppliers matching search
func (s *SupplierService) ListSuppliers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Supplier], error) {
	params.Validate()

	suppliers, total, err := s.supplierRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(suppliers, pag), nil
}

// UpdateSupplierInput represents the update supplier input
type UpdateSupplierInput struct {
	ID            uuid.UUID
	Name          *string
	Email         *string
	Phone         *string
	Address       *string
	ShopName      *string
	Type          *enum.SupplierType
	BankName      *string
	AccountNumber *string
}

// UpdateSupplier updates a supplier
func (s *SupplierService) UpdateSupplier(ctx context.Context, input *UpdateSupplierInput) (*entity.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperror.NewNotFoundError("Supplier")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewFieldValidationError("name", "must not be empty")
		}
		supplier.Name = name
	}
	if input.Email != nil {
		supplier.Email = input.Email
	}
	if input.Phone != nil {
		if supplier.Phone, err = normalizeOptionalPhone(input.Phone, s.phoneRegion, "phone"); err != nil {
			return nil, err
		}
	}
	if input.Address != nil {
		supplier.Address = input.Address
	}
	if input.ShopName != nil {
		supplier.ShopName = input.ShopName
	}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return nil, apperror.NewFieldValidationError("type", "must be distributor, wholesaler or producer")
		}
		supplier.Type = *input.Type
	}
	if input.BankName != nil {
		supplier.BankName = input.BankName
	}
	if input.AccountNumber != nil {
		supplier.AccountNumber = input.AccountNumber
	}

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, err
	}

	return supplier, nil
}

// DeleteSupplier deletes a supplier that no stock-in references
func (s *SupplierService) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if supplier == nil {
		return apperror.NewNotFoundError("Supplier")
	}

	return translateDeleteError(s.supplierRepo.Delete(ctx, id), "Supplier")
}

func translateDeleteError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrStillReferenced):
		return apperror.NewForeignKeyError(resource)
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NewNotFoundError(resource)
	}
	return err
}
