package handler

import (
	"github.com/gin-gonic/gin"
	tableapp "github.com/tablekit/backoffice/internal/application/table"
	"github.com/tablekit/backoffice/internal/interfaces/http/dto"
)

// TableHandler serves /tables
type TableHandler struct {
	BaseHandler
	tableService *tableapp.Service
}

// NewTableHandler creates a new TableHandler
func NewTableHandler(tableService *tableapp.Service) *TableHandler {
	return &TableHandler{tableService: tableService}
}

// Create handles POST /tables
func (h *TableHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req tableapp.CreateTableRequest
	if !h.bindJSON(c, &req) {
		return
	}
	table, err := h.tableService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, table)
}

// List handles GET /tables?status=
func (h *TableHandler) List(c *gin.Context) {
	var q struct {
		Status string `form:"status" binding:"omitempty,oneof=available occupied reserved maintenance"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		h.Error(c, dto.ErrCodeValidation, "Invalid status filter")
		return
	}
	tables, err := h.tableService.List(c.Request.Context(), q.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tables)
}

// GetByID handles GET /tables/:id
func (h *TableHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	table, err := h.tableService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, table)
}

// Occupy handles POST /tables/:id/occupy. The body is optional.
func (h *TableHandler) Occupy(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req tableapp.OccupyTableRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	table, err := h.tableService.Occupy(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, table)
}

// Release handles POST /tables/:id/release
func (h *TableHandler) Release(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	table, err := h.tableService.Release(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, table)
}

// SetStatus handles PUT /tables/:id/status
func (h *TableHandler) SetStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req tableapp.SetStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	table, err := h.tableService.SetStatus(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, table)
}
