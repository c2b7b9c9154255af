package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tablekit/backoffice/internal/domain/inventory"
)

// InventoryItemModel is the persistence model for the InventoryItem aggregate root
type InventoryItemModel struct {
	AggregateModel
	Name         string          `gorm:"type:varchar(200);not null;index"`
	Description  string          `gorm:"type:text"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	Unit         string          `gorm:"type:varchar(20);not null"`
	MinimumStock decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory"
}

// ToDomain converts the persistence model to a domain InventoryItem
func (m *InventoryItemModel) ToDomain() *inventory.InventoryItem {
	return &inventory.InventoryItem{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		Quantity:          m.Quantity,
		Unit:              m.Unit,
		MinimumStock:      m.MinimumStock,
		UnitCost:          m.UnitCost,
	}
}

// InventoryItemModelFromDomain creates a persistence model from a domain InventoryItem
func InventoryItemModelFromDomain(i *inventory.InventoryItem) *InventoryItemModel {
	m := &InventoryItemModel{
		Name:         i.Name,
		Description:  i.Description,
		Quantity:     i.Quantity,
		Unit:         i.Unit,
		MinimumStock: i.MinimumStock,
		UnitCost:     i.UnitCost,
	}
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	return m
}

// InventoryTransactionModel is the persistence model for a ledger entry.
// Rows are only ever inserted.
type InventoryTransactionModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InventoryItemID uuid.UUID       `gorm:"type:uuid;not null;index:idx_inventory_tx_item_created,priority:1"`
	Type            string          `gorm:"type:varchar(20);not null"`
	Quantity        decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	BalanceBefore   decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Reference       string          `gorm:"type:varchar(100)"`
	Notes           string          `gorm:"type:text"`
	CreatedBy       uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt       time.Time       `gorm:"not null;index:idx_inventory_tx_item_created,priority:2"`
}

// TableName returns the table name for GORM
func (InventoryTransactionModel) TableName() string {
	return "inventory_transactions"
}

// ToDomain converts the persistence model to a domain InventoryTransaction
func (m *InventoryTransactionModel) ToDomain() *inventory.InventoryTransaction {
	return &inventory.InventoryTransaction{
		ID:              m.ID,
		InventoryItemID: m.InventoryItemID,
		Type:            inventory.TransactionType(m.Type),
		Quantity:        m.Quantity,
		BalanceBefore:   m.BalanceBefore,
		BalanceAfter:    m.BalanceAfter,
		Reference:       m.Reference,
		Notes:           m.Notes,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
	}
}

// InventoryTransactionModelFromDomain creates a persistence model from a domain InventoryTransaction
func InventoryTransactionModelFromDomain(tx *inventory.InventoryTransaction) *InventoryTransactionModel {
	return &InventoryTransactionModel{
		ID:              tx.ID,
		InventoryItemID: tx.InventoryItemID,
		Type:            string(tx.Type),
		Quantity:        tx.Quantity,
		BalanceBefore:   tx.BalanceBefore,
		BalanceAfter:    tx.BalanceAfter,
		Reference:       tx.Reference,
		Notes:           tx.Notes,
		CreatedBy:       tx.CreatedBy,
		CreatedAt:       tx.CreatedAt,
	}
}
