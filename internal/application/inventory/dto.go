package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tablekit/backoffice/internal/domain/inventory"
)

// RecentTransactionLimit is the number of ledger entries returned with an item
const RecentTransactionLimit = 10

// CreateItemRequest creates an item with its opening stock
type CreateItemRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Description  string          `json:"description" binding:"max=2000"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit" binding:"required,min=1,max=20"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
}

// UpdateItemRequest edits the attributes outside the ledger
type UpdateItemRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Description  string          `json:"description" binding:"max=2000"`
	Unit         string          `json:"unit" binding:"required,min=1,max=20"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
}

// RecordTransactionRequest is a stock movement. Quantity is a positive
// magnitude for in and out, and a signed value for adjustment.
type RecordTransactionRequest struct {
	Type      string          `json:"type" binding:"required,oneof=in out adjustment"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reference string          `json:"reference" binding:"max=100"`
	Notes     string          `json:"notes" binding:"max=2000"`
}

// ItemResponse represents an inventory item in API responses
type ItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	LowStock     bool            `json:"low_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// ItemDetailResponse is an item with its most recent ledger entries
type ItemDetailResponse struct {
	ItemResponse
	RecentTransactions []TransactionResponse `json:"recent_transactions"`
}

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	InventoryItemID uuid.UUID       `json:"inventory_item_id"`
	Type            string          `json:"type"`
	Quantity        decimal.Decimal `json:"quantity"`
	BalanceBefore   decimal.Decimal `json:"balance_before"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	Reference       string          `json:"reference,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedBy       uuid.UUID       `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

// LedgerCheckResponse reports whether the cached quantity matches the ledger
type LedgerCheckResponse struct {
	ItemID           uuid.UUID       `json:"item_id"`
	CachedQuantity   decimal.Decimal `json:"cached_quantity"`
	LedgerQuantity   decimal.Decimal `json:"ledger_quantity"`
	Drift            decimal.Decimal `json:"drift"`
	TransactionCount int64           `json:"transaction_count"`
	Consistent       bool            `json:"consistent"`
}

func (r CreateItemRequest) details() inventory.ItemDetails {
	return inventory.ItemDetails{
		Name:         r.Name,
		Description:  r.Description,
		Unit:         r.Unit,
		MinimumStock: r.MinimumStock,
		UnitCost:     r.UnitCost,
	}
}

func (r UpdateItemRequest) details() inventory.ItemDetails {
	return inventory.ItemDetails{
		Name:         r.Name,
		Description:  r.Description,
		Unit:         r.Unit,
		MinimumStock: r.MinimumStock,
		UnitCost:     r.UnitCost,
	}
}

// ToItemResponse converts a domain item to its response
func ToItemResponse(item *inventory.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:           item.ID,
		Name:         item.Name,
		Description:  item.Description,
		Quantity:     item.Quantity,
		Unit:         item.Unit,
		MinimumStock: item.MinimumStock,
		UnitCost:     item.UnitCost,
		LowStock:     item.IsLowStock(),
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
		Version:      item.Version,
	}
}

// ToTransactionResponse converts a ledger entry to its response
func ToTransactionResponse(tx *inventory.InventoryTransaction) TransactionResponse {
	return TransactionResponse{
		ID:              tx.ID,
		InventoryItemID: tx.InventoryItemID,
		Type:            tx.Type.String(),
		Quantity:        tx.Quantity,
		BalanceBefore:   tx.BalanceBefore,
		BalanceAfter:    tx.BalanceAfter,
		Reference:       tx.Reference,
		Notes:           tx.Notes,
		CreatedBy:       tx.CreatedBy,
		CreatedAt:       tx.CreatedAt,
	}
}

// ToLedgerCheckResponse converts a ledger check to its response
func ToLedgerCheckResponse(c inventory.LedgerCheck) LedgerCheckResponse {
	return LedgerCheckResponse{
		ItemID:           c.ItemID,
		CachedQuantity:   c.CachedQuantity,
		LedgerQuantity:   c.LedgerQuantity,
		Drift:            c.Drift(),
		TransactionCount: c.TransactionCount,
		Consistent:       c.Consistent(),
	}
}
