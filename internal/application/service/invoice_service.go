package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/config"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/sangkips/salesdesk-api/internal/domain/repository"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/lock"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/messaging"
	"github.com/sangkips/salesdesk-api/pkg/apperror"
	"github.com/sangkips/salesdesk-api/pkg/logger"
	"github.com/sangkips/salesdesk-api/pkg/pagination"
	"github.com/sangkips/salesdesk-api/pkg/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/sangkips/salesdesk-api/internal/application/service"

// InvoiceServiceDeps groups the collaborators of the invoice service
type InvoiceServiceDeps struct {
	Transactor     repository.Transactor
	Invoices       repository.InvoiceRepository
	Items          repository.InvoiceItemRepository
	Shipments      repository.ShipmentRepository
	Products       repository.ProductRepository
	Customers      repository.CustomerRepository
	Promotions     repository.PromotionRepository
	Users          repository.UserRepository
	Locker         lock.Locker
	Publisher      messaging.Publisher
	Config         config.InvoiceConfig
	PhoneRegion    string
	TracerProvider trace.TracerProvider
}

// InvoiceService creates, edits and deletes invoices while keeping product stock
// and the invoice's shipment consistent with its items and delivery flag.
type InvoiceService struct {
	tx           repository.Transactor
	invoiceRepo  repository.InvoiceRepository
	itemRepo     repository.InvoiceItemRepository
	shipRepo     repository.ShipmentRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	promoRepo    repository.PromotionRepository
	userRepo     repository.UserRepository
	locker       lock.Locker
	publisher    messaging.Publisher
	txTimeout    time.Duration
	phoneRegion  string
	tracer       trace.Tracer
	now          func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(deps InvoiceServiceDeps) *InvoiceService {
	tp := deps.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	locker := deps.Locker
	if locker == nil {
		locker = lock.NewNoopLocker()
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = messaging.NewNoopPublisher()
	}
	timeout := deps.Config.TxTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &InvoiceService{
		tx:           deps.Transactor,
		invoiceRepo:  deps.Invoices,
		itemRepo:     deps.Items,
		shipRepo:     deps.Shipments,
		productRepo:  deps.Products,
		customerRepo: deps.Customers,
		promoRepo:    deps.Promotions,
		userRepo:     deps.Users,
		locker:       locker,
		publisher:    publisher,
		txTimeout:    timeout,
		phoneRegion:  deps.PhoneRegion,
		tracer:       tp.Tracer(tracerName),
		now:          time.Now,
	}
}

// InvoiceItemInput represents a line of an invoice request
type InvoiceItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// ShipmentInput holds the recipient of a delivery invoice
type ShipmentInput struct {
	RecipientName  string
	RecipientPhone string
	Address        string
	Note           *string
}

// CreateInvoiceInput represents the create invoice input
type CreateInvoiceInput struct {
	CustomerID uuid.UUID
	// CreatorID is the authenticated user. CreatorName is only consulted when it is empty.
	CreatorID     uuid.UUID
	CreatorName   string
	PromotionID   *uuid.UUID
	ExportedAt    *time.Time
	PaymentMethod enum.PaymentMethod
	TaxRate       decimal.Decimal
	IsPaid        bool
	IsDelivery    bool
	Shipment      *ShipmentInput
	Items         []InvoiceItemInput
}

// CreateInvoice records a sale: the invoice, its shipment when delivered, its items
// and the stock they consume are written in one transaction.
func (s *InvoiceService) CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*entity.Invoice, error) {
	ctx, span := s.tracer.Start(ctx, "InvoiceService.CreateInvoice")
	defer span.End()

	if err := s.validateCreateInput(input); err != nil {
		return nil, endSpan(span, err)
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var created *entity.Invoice
	var stockChanges map[uuid.UUID]int

	err := s.tx.WithinTransaction(txCtx, func(ctx context.Context) error {
		creatorID, err := s.resolveCreator(ctx, input.CreatorID, input.CreatorName)
		if err != nil {
			return err
		}
		if err := s.ensureCustomer(ctx, input.CustomerID); err != nil {
			return err
		}

		exportedAt := s.now()
		if input.ExportedAt != nil {
			exportedAt = *input.ExportedAt
		}

		discount := decimal.Zero
		if input.PromotionID != nil {
			promo, err := s.activePromotion(ctx, *input.PromotionID, exportedAt)
			if err != nil {
				return err
			}
			discount = promo.DiscountPercent
		}

		invoice := &entity.Invoice{
			ID:            uuid.New(),
			InvoiceNo:     utils.GenerateInvoiceNo(),
			CustomerID:    input.CustomerID,
			CreatorID:     creatorID,
			PromotionID:   input.PromotionID,
			ExportedAt:    exportedAt,
			PaymentMethod: input.PaymentMethod,
			TaxRate:       input.TaxRate,
			IsPaid:        input.IsPaid,
			IsDelivery:    input.IsDelivery,
		}
		items := buildInvoiceItems(invoice.ID, input.Items)
		invoice.ApplyTotals(entity.ComputeTotals(items, invoice.TaxRate, discount))

		requested := entity.SumQuantities(items)
		products, err := s.lockProducts(ctx, requested)
		if err != nil {
			return err
		}
		for _, id := range sortedIDs(requested) {
			product := products[id]
			if requested[id] > product.Quantity {
				return apperror.NewInsufficientStockError(id, product.Name, product.Quantity, requested[id])
			}
		}

		if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
			return err
		}

		if input.IsDelivery {
			shipment := &entity.Shipment{
				InvoiceID:      invoice.ID,
				RecipientName:  input.Shipment.RecipientName,
				RecipientPhone: input.Shipment.RecipientPhone,
				Address:        input.Shipment.Address,
				Note:           input.Shipment.Note,
				Status:         enum.ShipmentStatusPending,
			}
			if err := s.shipRepo.Create(ctx, shipment); err != nil {
				return err
			}
		}

		if err := s.itemRepo.CreateBatch(ctx, items); err != nil {
			return err
		}

		if err := s.consumeStock(ctx, items, products, requested, nil); err != nil {
			return err
		}

		stockChanges = negate(requested)

		created, err = s.invoiceRepo.GetByID(ctx, invoice.ID)
		return err
	})
	if err = s.translateTxError(txCtx, err); err != nil {
		return nil, endSpan(span, err)
	}

	span.SetAttributes(attribute.String("invoice.id", created.ID.String()))
	s.publish(ctx, "CreateInvoice", messaging.InvoiceCreated, created, input.CreatorID, stockChanges)

	return created, nil
}

// UpdateInvoice applies a partial update. When items are supplied they replace the old
// lines, and the stock held by the old lines is returned before the new lines consume it.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id, actorID uuid.UUID, patch *InvoicePatch) (*entity.Invoice, error) {
	ctx, span := s.tracer.Start(ctx, "InvoiceService.UpdateInvoice",
		trace.WithAttributes(attribute.String("invoice.id", id.String())))
	defer span.End()

	if err := s.validatePatch(patch); err != nil {
		return nil, endSpan(span, err)
	}

	release, err := s.obtainEditLock(ctx, id)
	if err != nil {
		return nil, endSpan(span, err)
	}
	defer release()

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var updated *entity.Invoice
	var stockChanges map[uuid.UUID]int

	err = s.tx.WithinTransaction(txCtx, func(ctx context.Context) error {
		current, err := s.lockInvoice(ctx, id)
		if err != nil {
			return err
		}

		if patch.CustomerID != nil && *patch.CustomerID != current.CustomerID {
			if err := s.ensureCustomer(ctx, *patch.CustomerID); err != nil {
				return err
			}
		}

		discount, err := s.patchedDiscount(ctx, current, patch)
		if err != nil {
			return err
		}

		result, err := ApplyInvoicePatch(current, patch, discount)
		if err != nil {
			return err
		}

		if result.ItemsReplaced {
			stockChanges, err = s.replaceItems(ctx, current, result.Invoice.Items)
			if err != nil {
				return err
			}
		}

		if err := s.invoiceRepo.UpdateHeader(ctx, &result.Invoice); err != nil {
			return err
		}

		switch result.ShipmentAction {
		case ShipmentUpsert:
			if current.Shipment == nil {
				err = s.shipRepo.Create(ctx, result.Shipment)
			} else {
				err = s.shipRepo.Update(ctx, result.Shipment)
			}
		case ShipmentDelete:
			err = s.shipRepo.DeleteByInvoiceID(ctx, id)
		}
		if err != nil {
			return err
		}

		updated, err = s.invoiceRepo.GetByID(ctx, id)
		return err
	})
	if err = s.translateTxError(txCtx, err); err != nil {
		return nil, endSpan(span, err)
	}

	s.publish(ctx, "UpdateInvoice", messaging.InvoiceUpdated, updated, actorID, stockChanges)

	return updated, nil
}

// lockInvoice locks the invoice row and loads the items and shipment it owns
func (s *InvoiceService) lockInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	current, err := s.invoiceRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}

	if current.Items, err = s.itemRepo.GetByInvoiceID(ctx, id); err != nil {
		return nil, err
	}
	if current.Shipment, err = s.shipRepo.GetByInvoiceID(ctx, id); err != nil {
		return nil, err
	}
	return current, nil
}

// DeleteInvoice returns every line's quantity to stock and removes the invoice,
// its items and its shipment.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id, actorID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "InvoiceService.DeleteInvoice",
		trace.WithAttributes(attribute.String("invoice.id", id.String())))
	defer span.End()

	release, err := s.obtainEditLock(ctx, id)
	if err != nil {
		return endSpan(span, err)
	}
	defer release()

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var deleted *entity.Invoice

	err = s.tx.WithinTransaction(txCtx, func(ctx context.Context) error {
		current, err := s.lockInvoice(ctx, id)
		if err != nil {
			return err
		}

		for _, item := range current.Items {
			if err := s.productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return apperror.NewProductNotFoundError(item.ProductID)
				}
				return err
			}
		}

		if err := s.shipRepo.DeleteByInvoiceID(ctx, id); err != nil {
			return err
		}
		if err := s.itemRepo.DeleteByInvoiceID(ctx, id); err != nil {
			return err
		}
		if err := s.invoiceRepo.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperror.NewNotFoundError("Invoice")
			}
			return err
		}

		deleted = current
		return nil
	})
	if err = s.translateTxError(txCtx, err); err != nil {
		return endSpan(span, err)
	}

	s.publish(ctx, "DeleteInvoice", messaging.InvoiceDeleted, deleted, actorID, deleted.QuantitiesByProduct())

	return nil
}

// GetInvoice retrieves an invoice with its customer, creator, promotion, items and shipment
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoices retrieves invoices with pagination and filtering
func (s *InvoiceService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	if params.Pagination == nil {
		params.Pagination = &pagination.PaginationParams{}
	}
	params.Pagination.Validate()

	if params.StartDate != nil && params.EndDate != nil && params.EndDate.Before(*params.StartDate) {
		return nil, apperror.NewFieldValidationError("end_date", "must not be before start_date")
	}
	if params.PaymentMethod != nil && !params.PaymentMethod.IsValid() {
		return nil, apperror.NewFieldValidationError("payment_method", "is not a supported payment method")
	}

	invoices, total, err := s.invoiceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	p := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, p), nil
}

// replaceItems swaps the invoice lines and moves stock from the old lines to the new ones.
// It returns the net stock change per product.
func (s *InvoiceService) replaceItems(ctx context.Context, current *entity.Invoice, newItems []entity.InvoiceItem) (map[uuid.UUID]int, error) {
	oldQty := current.QuantitiesByProduct()
	newQty := entity.SumQuantities(newItems)

	involved := make(map[uuid.UUID]int, len(oldQty)+len(newQty))
	for id := range oldQty {
		involved[id] = 0
	}
	for id := range newQty {
		involved[id] = 0
	}
	products, err := s.lockProducts(ctx, involved)
	if err != nil {
		return nil, err
	}

	// stock held by this invoice counts as available for its own edit
	available := make(map[uuid.UUID]int, len(newQty))
	for _, id := range sortedIDs(newQty) {
		product := products[id]
		available[id] = product.Quantity + oldQty[id]
		if newQty[id] > available[id] {
			return nil, apperror.NewInsufficientStockError(id, product.Name, available[id], newQty[id])
		}
	}

	if err := s.itemRepo.DeleteByInvoiceID(ctx, current.ID); err != nil {
		return nil, err
	}
	if err := s.itemRepo.CreateBatch(ctx, newItems); err != nil {
		return nil, err
	}

	for _, item := range current.Items {
		if err := s.productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
	}

	if err := s.consumeStock(ctx, newItems, products, newQty, available); err != nil {
		return nil, err
	}

	changes := make(map[uuid.UUID]int, len(involved))
	for id := range involved {
		if delta := oldQty[id] - newQty[id]; delta != 0 {
			changes[id] = delta
		}
	}
	return changes, nil
}

// lockProducts row-locks every product in ids for the rest of the transaction.
// A missing product is reported as ProductNotFound.
func (s *InvoiceService) lockProducts(ctx context.Context, ids map[uuid.UUID]int) (map[uuid.UUID]*entity.Product, error) {
	sorted := sortedIDs(ids)
	products, err := s.productRepo.GetByIDsForUpdate(ctx, sorted)
	if err != nil {
		return nil, err
	}

	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}
	for _, id := range sorted {
		if _, ok := productMap[id]; !ok {
			return nil, apperror.NewProductNotFoundError(id)
		}
	}
	return productMap, nil
}

// consumeStock decrements stock line by line with the floor-checked update.
// available overrides the locked quantity when reporting a shortage.
func (s *InvoiceService) consumeStock(ctx context.Context, items []entity.InvoiceItem, products map[uuid.UUID]*entity.Product, requested, available map[uuid.UUID]int) error {
	for _, item := range items {
		ok, err := s.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			product := products[item.ProductID]
			have := product.Quantity
			if available != nil {
				have = available[item.ProductID]
			}
			return apperror.NewInsufficientStockError(item.ProductID, product.Name, have, requested[item.ProductID])
		}
	}
	return nil
}

// resolveCreator returns the creating user. A name is accepted only when no ID is known
// and must match exactly one active user.
func (s *InvoiceService) resolveCreator(ctx context.Context, id uuid.UUID, name string) (uuid.UUID, error) {
	if id != uuid.Nil {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		if user == nil {
			return uuid.Nil, apperror.NewCreatorNotFoundError(id.String())
		}
		return user.ID, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, apperror.NewFieldValidationError("creator", "is required")
	}

	users, err := s.userRepo.FindByFullName(ctx, name)
	if err != nil {
		return uuid.Nil, err
	}
	switch len(users) {
	case 0:
		return uuid.Nil, apperror.NewCreatorNotFoundError(name)
	case 1:
		return users[0].ID, nil
	default:
		return uuid.Nil, apperror.NewFieldValidationError("creator_name", "ambiguous creator name")
	}
}

func (s *InvoiceService) ensureCustomer(ctx context.Context, id uuid.UUID) error {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if customer == nil {
		return apperror.NewNotFoundError("Customer")
	}
	return nil
}

func (s *InvoiceService) activePromotion(ctx context.Context, id uuid.UUID, at time.Time) (*entity.Promotion, error) {
	promo, err := s.promoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, apperror.NewNotFoundError("Promotion")
	}
	if !promo.ActiveAt(at) {
		return nil, apperror.NewFieldValidationError("promotion_id", "promotion is not active at the invoice date")
	}
	return promo, nil
}

// patchedDiscount resolves the discount percent of the promotion the invoice will carry
func (s *InvoiceService) patchedDiscount(ctx context.Context, current *entity.Invoice, patch *InvoicePatch) (decimal.Decimal, error) {
	exportedAt := current.ExportedAt
	if patch.ExportedAt != nil {
		exportedAt = *patch.ExportedAt
	}

	switch patch.Promotion.Action {
	case PromotionClear:
		return decimal.Zero, nil
	case PromotionSet:
		promo, err := s.activePromotion(ctx, patch.Promotion.ID, exportedAt)
		if err != nil {
			return decimal.Zero, err
		}
		return promo.DiscountPercent, nil
	}

	if current.PromotionID == nil {
		return decimal.Zero, nil
	}
	promo, err := s.promoRepo.GetByID(ctx, *current.PromotionID)
	if err != nil {
		return decimal.Zero, err
	}
	if promo == nil {
		return decimal.Zero, nil
	}
	return promo.DiscountPercent, nil
}

func (s *InvoiceService) obtainEditLock(ctx context.Context, id uuid.UUID) (func(), error) {
	lk, err := s.locker.Obtain(ctx, "invoice:"+id.String())
	if errors.Is(err, lock.ErrNotObtained) {
		return nil, apperror.NewConflictError("Invoice is being edited by another request, please retry")
	}
	if err != nil {
		return nil, err
	}
	return func() {
		if err := lk.Release(context.WithoutCancel(ctx)); err != nil {
			logger.LogError("invoice", "obtainEditLock", "release edit lock", map[string]string{"invoice_id": id.String()}, err)
		}
	}, nil
}

// translateTxError maps storage failures of a finished transaction to application errors
func (s *InvoiceService) translateTxError(txCtx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(txCtx.Err(), context.DeadlineExceeded) {
		return apperror.ErrTransactionTimeout
	}
	if errors.Is(err, repository.ErrStillReferenced) {
		return apperror.NewForeignKeyError("Invoice")
	}
	return err
}

// publish emits the event for a committed change. Delivery failures are logged only.
func (s *InvoiceService) publish(ctx context.Context, funcName string, eventType messaging.EventType, invoice *entity.Invoice, actorID uuid.UUID, stockChanges map[uuid.UUID]int) {
	event := messaging.InvoiceEvent{
		Type:         eventType,
		InvoiceID:    invoice.ID,
		InvoiceNo:    invoice.InvoiceNo,
		CustomerID:   invoice.CustomerID,
		ActorID:      actorID,
		Total:        invoice.Total,
		IsDelivery:   invoice.IsDelivery,
		StockChanges: stockChanges,
		OccurredAt:   s.now().UTC(),
	}
	if event.ActorID == uuid.Nil {
		event.ActorID = invoice.CreatorID
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.LogError("invoice", funcName, "publish invoice event", map[string]string{
			"invoice_id": invoice.ID.String(),
			"event":      string(eventType),
		}, err)
	}
}

func (s *InvoiceService) validateCreateInput(input *CreateInvoiceInput) error {
	var errs []apperror.FieldError

	if input.CustomerID == uuid.Nil {
		errs = append(errs, apperror.FieldError{Field: "customer_id", Message: "is required"})
	}
	if !input.PaymentMethod.IsValid() {
		errs = append(errs, apperror.FieldError{Field: "payment_method", Message: "is not a supported payment method"})
	}
	errs = append(errs, validateTaxRate(input.TaxRate)...)
	errs = append(errs, validateItemInputs(input.Items)...)

	if input.IsDelivery {
		if input.Shipment == nil {
			input.Shipment = &ShipmentInput{}
		}
		input.Shipment.RecipientName = strings.TrimSpace(input.Shipment.RecipientName)
		input.Shipment.Address = strings.TrimSpace(input.Shipment.Address)
		phone, err := utils.NormalizePhone(input.Shipment.RecipientPhone, s.phoneRegion)
		if err != nil {
			errs = append(errs, apperror.FieldError{Field: "recipient_phone", Message: "is not a valid phone number"})
		}
		input.Shipment.RecipientPhone = phone
		if err == nil {
			errs = append(errs, validateRecipient(input.Shipment.RecipientName, phone, input.Shipment.Address)...)
		}
	}

	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

func (s *InvoiceService) validatePatch(patch *InvoicePatch) error {
	var errs []apperror.FieldError

	if patch.CustomerID != nil && *patch.CustomerID == uuid.Nil {
		errs = append(errs, apperror.FieldError{Field: "customer_id", Message: "must not be empty"})
	}
	if patch.PaymentMethod != nil && !patch.PaymentMethod.IsValid() {
		errs = append(errs, apperror.FieldError{Field: "payment_method", Message: "is not a supported payment method"})
	}
	if patch.TaxRate != nil {
		errs = append(errs, validateTaxRate(*patch.TaxRate)...)
	}
	if patch.Total != nil && patch.Total.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "total", Message: "must not be negative"})
	}
	if patch.Promotion.Action == PromotionSet && patch.Promotion.ID == uuid.Nil {
		errs = append(errs, apperror.FieldError{Field: "promotion_id", Message: "must not be empty"})
	}
	if patch.Items != nil {
		errs = append(errs, validateItemInputs(*patch.Items)...)
	}
	if patch.Shipment != nil && patch.Shipment.RecipientPhone != nil {
		phone, err := utils.NormalizePhone(*patch.Shipment.RecipientPhone, s.phoneRegion)
		if err != nil {
			errs = append(errs, apperror.FieldError{Field: "recipient_phone", Message: "is not a valid phone number"})
		} else {
			patch.Shipment.RecipientPhone = &phone
		}
	}

	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

func validateTaxRate(rate decimal.Decimal) []apperror.FieldError {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return []apperror.FieldError{{Field: "tax_rate", Message: "must be between 0 and 100"}}
	}
	return nil
}

func validateItemInputs(items []InvoiceItemInput) []apperror.FieldError {
	if len(items) == 0 {
		return []apperror.FieldError{{Field: "items", Message: "at least one item is required"}}
	}
	var errs []apperror.FieldError
	for i, item := range items {
		field := "items[" + strconv.Itoa(i) + "]"
		if item.ProductID == uuid.Nil {
			errs = append(errs, apperror.FieldError{Field: field + ".product_id", Message: "is required"})
		}
		if item.Quantity <= 0 {
			errs = append(errs, apperror.FieldError{Field: field + ".quantity", Message: "must be greater than zero"})
		}
		if item.UnitPrice.IsNegative() {
			errs = append(errs, apperror.FieldError{Field: field + ".unit_price", Message: "must not be negative"})
		}
	}
	return errs
}

func sortedIDs(m map[uuid.UUID]int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func negate(m map[uuid.UUID]int) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(m))
	for id, qty := range m {
		out[id] = -qty
	}
	return out
}

func endSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
