package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/application/service"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/sangkips/salesdesk-api/internal/domain/repository"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/database"
	"github.com/sangkips/salesdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salesdesk-api/internal/presentation/http/dto/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// List handles listing invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	params, ok := h.filterParams(c)
	if !ok {
		return
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Invoices retrieved successfully", result)
}

// Export streams the filtered invoice list as an XLSX workbook
func (h *InvoiceHandler) Export(c *gin.Context) {
	params, ok := h.filterParams(c)
	if !ok {
		return
	}

	// buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.invoiceService.ExportInvoices(c.Request.Context(), params, &buf); err != nil {
		response.Error(c, err)
		return
	}

	filename := "invoices-" + time.Now().UTC().Format("20060102-150405") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *InvoiceHandler) filterParams(c *gin.Context) (*repository.InvoiceFilterParams, bool) {
	var filter request.InvoiceFilterRequest
	if !bindQuery(c, &filter) {
		return nil, false
	}

	params := &repository.InvoiceFilterParams{
		Pagination:    pageParams(filter.Page, filter.PerPage, filter.Limit),
		Search:        filter.Search,
		IsPaid:        filter.IsPaid,
		UnshippedOnly: filter.UnshippedOnly,
	}

	var err error
	if params.CustomerID, err = parseOptionalID("customer_id", filter.CustomerID); err != nil {
		response.Error(c, err)
		return nil, false
	}
	if params.StartDate, err = parseDate("start_date", filter.StartDate, false); err != nil {
		response.Error(c, err)
		return nil, false
	}
	if params.EndDate, err = parseDate("end_date", filter.EndDate, true); err != nil {
		response.Error(c, err)
		return nil, false
	}
	if filter.PaymentMethod != "" {
		method := enum.PaymentMethod(filter.PaymentMethod)
		params.PaymentMethod = &method
	}

	return params, true
}

// Create handles creating an invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CreateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.CreateInvoiceInput{
		CustomerID:    req.CustomerID,
		CreatorID:     userID,
		PromotionID:   req.PromotionID,
		ExportedAt:    req.ExportedAt,
		PaymentMethod: req.PaymentMethod,
		TaxRate:       req.TaxRate,
		IsPaid:        req.IsPaid,
		IsDelivery:    req.IsDelivery,
		Items:         itemInputs(req.Items),
	}

	// Back-office imports may attribute an invoice to another employee by name
	if req.CreatorName != "" && HasPermission(c, database.PermManageUsers) {
		input.CreatorID = uuid.Nil
		input.CreatorName = req.CreatorName
	}

	if req.Recipient != nil {
		input.Shipment = &service.ShipmentInput{
			RecipientName:  deref(req.Recipient.Name),
			RecipientPhone: deref(req.Recipient.Phone),
			Address:        deref(req.Recipient.Address),
			Note:           req.Recipient.Note,
		}
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// Get handles getting an invoice by ID
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Update handles a partial invoice update
func (h *InvoiceHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req request.UpdateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	patch := &service.InvoicePatch{
		CustomerID:    req.CustomerID,
		ExportedAt:    req.ExportedAt,
		PaymentMethod: req.PaymentMethod,
		TaxRate:       req.TaxRate,
		Total:         req.Total,
		IsPaid:        req.IsPaid,
		IsDelivery:    req.IsDelivery,
	}

	switch {
	case !req.PromotionID.Set:
		patch.Promotion = service.PromotionPatch{Action: service.PromotionKeep}
	case req.PromotionID.Value == nil:
		patch.Promotion = service.PromotionPatch{Action: service.PromotionClear}
	default:
		patch.Promotion = service.PromotionPatch{Action: service.PromotionSet, ID: *req.PromotionID.Value}
	}

	if req.Recipient != nil {
		patch.Shipment = &service.ShipmentPatch{
			RecipientName:  req.Recipient.Name,
			RecipientPhone: req.Recipient.Phone,
			Address:        req.Recipient.Address,
			Note:           req.Recipient.Note,
		}
	}
	if req.Items != nil {
		items := itemInputs(*req.Items)
		patch.Items = &items
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), id, userID, patch)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice updated successfully", invoice)
}

// Delete handles deleting an invoice and returning its stock
func (h *InvoiceHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), id, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func itemInputs(items []request.InvoiceItemRequest) []service.InvoiceItemInput {
	out := make([]service.InvoiceItemInput, len(items))
	for i, item := range items {
		out[i] = service.InvoiceItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
