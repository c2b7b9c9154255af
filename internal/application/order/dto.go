package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tablekit/backoffice/internal/domain/order"
)

// CreateOrderRequest represents a request to open an order on a table
type CreateOrderRequest struct {
	TableID    uuid.UUID          `json:"table_id" binding:"required"`
	CustomerID *uuid.UUID         `json:"customer_id"`
	Items      []CreateOrderInput `json:"items" binding:"required,min=1,dive"`
}

// CreateOrderInput is one requested line
type CreateOrderInput struct {
	MenuItemID uuid.UUID        `json:"menu_item_id" binding:"required"`
	Quantity   int              `json:"quantity" binding:"required,gt=0"`
	UnitPrice  *decimal.Decimal `json:"unit_price" binding:"required"`
	Notes      string           `json:"notes" binding:"max=500"`
}

// UpdateStatusRequest represents a status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending preparing ready paid cancelled"`
}

// ListOrdersQuery filters the order list. A zero Date means today.
type ListOrdersQuery struct {
	Date    time.Time
	Status  string
	TableID *uuid.UUID
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID          uuid.UUID           `json:"id"`
	OrderNumber string              `json:"order_number"`
	TableID     uuid.UUID           `json:"table_id"`
	CustomerID  *uuid.UUID          `json:"customer_id,omitempty"`
	StaffID     uuid.UUID           `json:"staff_id"`
	Status      string              `json:"status"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	ItemCount   int                 `json:"item_count"`
	Items       []OrderLineResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Version     int                 `json:"version"`
}

// OrderLineResponse represents an order line in API responses
type OrderLineResponse struct {
	ID         uuid.UUID       `json:"id"`
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      string          `json:"notes,omitempty"`
}

// ToOrderResponse converts a domain order to its response
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		items[i] = OrderLineResponse{
			ID:         l.ID,
			MenuItemID: l.MenuItemID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			Amount:     l.Amount(),
			Notes:      l.Notes,
		}
	}
	return OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		TableID:     o.TableID,
		CustomerID:  o.CustomerID,
		StaffID:     o.StaffID,
		Status:      o.Status.String(),
		TotalAmount: o.TotalAmount,
		ItemCount:   len(o.Lines),
		Items:       items,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Version:     o.Version,
	}
}

// ToOrderResponses converts a list of orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}
