package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tablekit/backoffice/internal/domain/shared"
)

// AggregateTypeInventoryItem is the aggregate type for inventory events
const AggregateTypeInventoryItem = "InventoryItem"

// Event type constants
const (
	EventTypeStockChanged = "inventory.stock_changed"
	EventTypeLowStock     = "inventory.low_stock"
)

// StockChangedEvent is raised for every ledger entry
type StockChangedEvent struct {
	shared.BaseDomainEvent
	ItemID          uuid.UUID       `json:"item_id"`
	ItemName        string          `json:"item_name"`
	TransactionID   uuid.UUID       `json:"transaction_id"`
	TransactionType TransactionType `json:"transaction_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	Unit            string          `json:"unit"`
}

// NewStockChangedEvent creates a new StockChangedEvent
func NewStockChangedEvent(item *InventoryItem, tx *InventoryTransaction) *StockChangedEvent {
	return &StockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockChanged, AggregateTypeInventoryItem, item.ID),
		ItemID:          item.ID,
		ItemName:        item.Name,
		TransactionID:   tx.ID,
		TransactionType: tx.Type,
		Quantity:        tx.Quantity,
		BalanceAfter:    tx.BalanceAfter,
		Unit:            item.Unit,
	}
}

// EventType returns the event type name
func (e *StockChangedEvent) EventType() string {
	return EventTypeStockChanged
}

// LowStockEvent is raised when an item falls to or below its minimum stock
type LowStockEvent struct {
	shared.BaseDomainEvent
	ItemID       uuid.UUID       `json:"item_id"`
	ItemName     string          `json:"item_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	Unit         string          `json:"unit"`
}

// NewLowStockEvent creates a new LowStockEvent
func NewLowStockEvent(item *InventoryItem) *LowStockEvent {
	return &LowStockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStock, AggregateTypeInventoryItem, item.ID),
		ItemID:          item.ID,
		ItemName:        item.Name,
		Quantity:        item.Quantity,
		MinimumStock:    item.MinimumStock,
		Unit:            item.Unit,
	}
}

// EventType returns the event type name
func (e *LowStockEvent) EventType() string {
	return EventTypeLowStock
}
