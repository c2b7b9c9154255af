package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/tablekit/backoffice/internal/application/order"
	"github.com/tablekit/backoffice/internal/interfaces/http/dto"
)

// DateLayout is the format of the ?date= filter
const DateLayout = "2006-01-02"

// OrderHandler serves /orders
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.Service
	location     *time.Location
}

// NewOrderHandler creates a new OrderHandler. Date filters are read in loc.
func NewOrderHandler(orderService *orderapp.Service, loc *time.Location) *OrderHandler {
	if loc == nil {
		loc = time.Local
	}
	return &OrderHandler{orderService: orderService, location: loc}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req orderapp.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// ListOrdersQuery is the query string of GET /orders
type ListOrdersQuery struct {
	Date    string `form:"date"`
	Status  string `form:"status" binding:"omitempty,oneof=pending preparing ready paid cancelled"`
	TableID string `form:"table_id"`
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	var q ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.Error(c, dto.ErrCodeValidation, "Invalid query parameters")
		return
	}

	query := orderapp.ListOrdersQuery{Status: q.Status}
	if q.Date != "" {
		day, err := time.ParseInLocation(DateLayout, q.Date, h.location)
		if err != nil {
			h.Error(c, dto.ErrCodeValidation, "date must be YYYY-MM-DD")
			return
		}
		query.Date = day
	}
	if q.TableID != "" {
		id, err := uuid.Parse(q.TableID)
		if err != nil {
			h.Error(c, dto.ErrCodeValidation, "Invalid table_id format")
			return
		}
		query.TableID = &id
	}

	orders, err := h.orderService.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// GetByID handles GET /orders/:id
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateStatus handles PUT /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req orderapp.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// DeletedOrder is the response of DELETE /orders/:id
type DeletedOrder struct {
	ID uuid.UUID `json:"id"`
}

// Delete handles DELETE /orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.orderService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, DeletedOrder{ID: id})
}
