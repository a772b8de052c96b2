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

// ShipmentHandler handles shipment tracking requests
type ShipmentHandler struct {
	shipmentService *service.ShipmentService
}

// NewShipmentHandler creates a new shipment handler
func NewShipmentHandler(shipmentService *service.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{shipmentService: shipmentService}
}

// List handles listing shipments
func (h *ShipmentHandler) List(c *gin.Context) {
	var filter request.ShipmentFilterRequest
	if !bindQuery(c, &filter) {
		return
	}

	params := &repository.ShipmentFilterParams{
		Pagination: pageParams(filter.Page, filter.PerPage, filter.Limit),
	}
	if filter.Status != "" {
		status := enum.ShipmentStatus(filter.Status)
		params.Status = &status
	}

	result, err := h.shipmentService.ListShipments(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Shipments retrieved successfully", result)
}

// Get handles getting a shipment by ID
func (h *ShipmentHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	shipment, err := h.shipmentService.GetShipment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Shipment retrieved successfully", shipment)
}

// UpdateStatus handles moving a shipment to its next status
func (h *ShipmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req request.UpdateShipmentStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	shipment, err := h.shipmentService.UpdateShipmentStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Shipment status updated successfully", shipment)
}
