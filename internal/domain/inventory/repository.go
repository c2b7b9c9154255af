package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItemRepository defines the persistence contract for inventory items
type InventoryItemRepository interface {
	// FindByID finds an item by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)

	// FindByIDForUpdate finds an item and locks its row for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*InventoryItem, error)

	// FindAll lists items ordered by name
	FindAll(ctx context.Context) ([]InventoryItem, error)

	// Create inserts a new item
	Create(ctx context.Context, item *InventoryItem) error

	// SaveWithLock persists changes, failing with a conflict when the
	// stored version is not item.Version-1
	SaveWithLock(ctx context.Context, item *InventoryItem) error
}

// InventoryTransactionRepository is the append-only ledger
type InventoryTransactionRepository interface {
	// Create appends a ledger entry
	Create(ctx context.Context, tx *InventoryTransaction) error

	// FindRecent returns the newest limit entries for an item, newest first
	FindRecent(ctx context.Context, itemID uuid.UUID, limit int) ([]InventoryTransaction, error)

	// SumByItem returns the sum of deltas and the entry count for an item
	SumByItem(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, int64, error)
}
