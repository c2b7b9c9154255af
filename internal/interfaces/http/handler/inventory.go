package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	inventoryapp "github.com/tablekit/backoffice/internal/application/inventory"
	csvimport "github.com/tablekit/backoffice/internal/infrastructure/import"
	"github.com/tablekit/backoffice/internal/interfaces/http/dto"
	"github.com/tablekit/backoffice/internal/interfaces/http/middleware"
)

const importFormField = "file"

// InventoryHandler serves /inventory
type InventoryHandler struct {
	BaseHandler
	inventoryService *inventoryapp.Service
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *inventoryapp.Service) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// Create handles POST /inventory
func (h *InventoryHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req inventoryapp.CreateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.inventoryService.CreateItem(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// List handles GET /inventory
func (h *InventoryHandler) List(c *gin.Context) {
	items, err := h.inventoryService.ListItems(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// GetByID handles GET /inventory/:id
func (h *InventoryHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	item, err := h.inventoryService.GetItem(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Update handles PUT /inventory/:id
func (h *InventoryHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req inventoryapp.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.inventoryService.UpdateItem(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// RecordTransaction handles POST /inventory/:id/transactions
func (h *InventoryHandler) RecordTransaction(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req inventoryapp.RecordTransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tx, err := h.inventoryService.RecordTransaction(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// VerifyLedger handles GET /inventory/:id/ledger
func (h *InventoryHandler) VerifyLedger(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	check, err := h.inventoryService.VerifyLedger(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, check)
}

// Import handles POST /inventory/import. The stock sheet arrives either as
// a multipart "file" field or as a raw text/csv body. Nothing is stored
// unless every row is valid.
func (h *InventoryHandler) Import(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	body, err := h.stockSheetBody(c)
	if err != nil {
		h.Error(c, dto.ErrCodeBadRequest, err.Error())
		return
	}
	defer body.Close()

	sheet, err := csvimport.ParseStockSheet(body, csvimport.StockSheetOptions{
		Delimiter: delimiterParam(c.Query("delimiter")),
	})
	if err != nil {
		h.handleSheetError(c, err)
		return
	}
	if sheet.HasErrors() {
		details := make([]dto.ValidationDetail, 0, len(sheet.Errors))
		for _, rowErr := range sheet.Errors {
			details = append(details, rowErrorDetail(rowErr))
		}
		message := fmt.Sprintf("Stock sheet has %d invalid entries", sheet.ErrorCount)
		c.JSON(http.StatusBadRequest,
			dto.NewValidationErrorResponse(message, middleware.GetRequestID(c), details))
		return
	}

	items, err := h.inventoryService.ImportItems(c.Request.Context(), actor, sheet.Items)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, items)
}

func (h *InventoryHandler) stockSheetBody(c *gin.Context) (io.ReadCloser, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile(importFormField)
		if err != nil {
			return nil, fmt.Errorf("multipart field %q is required", importFormField)
		}
		return header.Open()
	}
	if c.Request.Body == nil {
		return nil, errors.New("request body is empty")
	}
	return c.Request.Body, nil
}

func (h *InventoryHandler) handleSheetError(c *gin.Context, err error) {
	var missing *csvimport.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		details := make([]dto.ValidationDetail, 0, len(missing.Columns))
		for _, col := range missing.Columns {
			details = append(details, dto.ValidationDetail{Field: col, Message: "column is required"})
		}
		c.JSON(http.StatusBadRequest,
			dto.NewValidationErrorResponse(err.Error(), middleware.GetRequestID(c), details))
	case errors.Is(err, csvimport.ErrEmptyFile),
		errors.Is(err, csvimport.ErrInvalidEncoding),
		errors.Is(err, csvimport.ErrMissingHeader),
		errors.Is(err, csvimport.ErrNoDataRows),
		errors.Is(err, csvimport.ErrTooManyRows):
		h.Error(c, dto.ErrCodeValidation, err.Error())
	default:
		h.Error(c, dto.ErrCodeBadRequest, "Unreadable stock sheet")
	}
}

func rowErrorDetail(e csvimport.RowError) dto.ValidationDetail {
	field := fmt.Sprintf("row[%d]", e.Row)
	if e.Column != "" {
		field += "." + e.Column
	}
	return dto.ValidationDetail{Field: field, Message: e.Message}
}

func delimiterParam(v string) rune {
	switch v {
	case "semicolon", ";":
		return ';'
	case "tab", "\\t":
		return '\t'
	default:
		return 0
	}
}
