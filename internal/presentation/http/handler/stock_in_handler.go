package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salesdesk-api/internal/application/service"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/sangkips/salesdesk-api/internal/domain/repository"
	"github.com/sangkips/salesdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salesdesk-api/internal/presentation/http/dto/response"
)

// StockInHandler handles supplier delivery requests
type StockInHandler struct {
	stockInService *service.StockInService
}

// NewStockInHandler creates a new stock-in handler
func NewStockInHandler(stockInService *service.StockInService) *StockInHandler {
	return &StockInHandler{stockInService: stockInService}
}

// List handles listing stock-ins
func (h *StockInHandler) List(c *gin.Context) {
	var filter request.StockInFilterRequest
	if !bindQuery(c, &filter) {
		return
	}

	params := &repository.StockInFilterParams{
		Pagination: pageParams(filter.Page, filter.PerPage, filter.Limit),
	}

	var err error
	if params.SupplierID, err = parseOptionalID("supplier_id", filter.SupplierID); err != nil {
		response.Error(c, err)
		return
	}
	if params.StartDate, err = parseDate("start_date", filter.StartDate, false); err != nil {
		response.Error(c, err)
		return
	}
	if params.EndDate, err = parseDate("end_date", filter.EndDate, true); err != nil {
		response.Error(c, err)
		return
	}
	if filter.Status != "" {
		// the binding already restricts the value to a known status
		status, _ := enum.ParseStockInStatus(filter.Status)
		params.Status = &status
	}

	result, err := h.stockInService.ListStockIns(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Stock-ins retrieved successfully", result)
}

// Create handles recording a pending stock-in
func (h *StockInHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CreateStockInRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]service.StockInItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.StockInItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
		}
	}

	stockIn, err := h.stockInService.CreateStockIn(c.Request.Context(), &service.CreateStockInInput{
		UserID:     userID,
		SupplierID: req.SupplierID,
		Date:       req.Date,
		Note:       req.Note,
		Items:      items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Stock-in created successfully", stockIn)
}

// Get handles getting a stock-in by ID
func (h *StockInHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	stockIn, err := h.stockInService.GetStockIn(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stock-in retrieved successfully", stockIn)
}

// Approve handles approving a stock-in, which adds its quantities to stock
func (h *StockInHandler) Approve(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	stockIn, err := h.stockInService.ApproveStockIn(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stock-in approved successfully", stockIn)
}

// Delete handles deleting a pending stock-in
func (h *StockInHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.stockInService.DeleteStockIn(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
