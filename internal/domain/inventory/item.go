package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tablekit/backoffice/internal/domain/shared"
)

// InventoryItem is a stocked ingredient or supply. Quantity is a cached
// value: it always equals the sum of the item's transaction deltas.
type InventoryItem struct {
	shared.BaseAggregateRoot
	Name         string
	Description  string
	Quantity     decimal.Decimal
	Unit         string
	MinimumStock decimal.Decimal
	UnitCost     decimal.Decimal
}

// ItemDetails are the ledger-exempt attributes of an item
type ItemDetails struct {
	Name         string
	Description  string
	Unit         string
	MinimumStock decimal.Decimal
	UnitCost     decimal.Decimal
}

func (d ItemDetails) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return shared.NewValidationError("Name is required")
	}
	if strings.TrimSpace(d.Unit) == "" {
		return shared.NewValidationError("Unit is required")
	}
	if d.MinimumStock.IsNegative() {
		return shared.NewValidationError("Minimum stock cannot be negative")
	}
	if d.UnitCost.IsNegative() {
		return shared.NewValidationError("Unit cost cannot be negative")
	}
	return nil
}

// NewInventoryItem creates an item and its initial stock transaction.
// The transaction is returned so both can be stored in one unit of work.
func NewInventoryItem(details ItemDetails, initialQuantity decimal.Decimal, createdBy uuid.UUID) (*InventoryItem, *InventoryTransaction, error) {
	if err := details.validate(); err != nil {
		return nil, nil, err
	}
	if initialQuantity.IsNegative() {
		return nil, nil, shared.NewValidationError("Quantity cannot be negative")
	}
	if createdBy == uuid.Nil {
		return nil, nil, shared.NewValidationError("Staff member is required")
	}

	item := &InventoryItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Quantity:          decimal.Zero,
	}
	item.setDetails(details)

	tx := item.apply(TransactionTypeIn, initialQuantity, InitialStockReference, InitialStockNotes, createdBy, false)
	return item, tx, nil
}

// RecordTransaction applies a stock movement and returns the ledger entry.
// The resulting quantity may never be negative.
func (i *InventoryItem) RecordTransaction(txType TransactionType, quantity decimal.Decimal, reference, notes string, createdBy uuid.UUID) (*InventoryTransaction, error) {
	if createdBy == uuid.Nil {
		return nil, shared.NewValidationError("Staff member is required")
	}
	delta, err := txType.Delta(quantity)
	if err != nil {
		return nil, err
	}
	if i.Quantity.Add(delta).IsNegative() {
		return nil, shared.NewValidationError(
			"Insufficient stock for %s: have %s %s, change %s",
			i.Name, i.Quantity.String(), i.Unit, delta.String())
	}

	tx := i.apply(txType, delta, reference, notes, createdBy, i.IsLowStock())
	i.IncrementVersion()
	return tx, nil
}

// UpdateDetails edits the attributes that are not part of the ledger
func (i *InventoryItem) UpdateDetails(details ItemDetails) error {
	if err := details.validate(); err != nil {
		return err
	}
	wasLow := i.IsLowStock()
	i.setDetails(details)
	i.Touch()
	i.IncrementVersion()
	if !wasLow && i.IsLowStock() {
		i.AddDomainEvent(NewLowStockEvent(i))
	}
	return nil
}

// IsLowStock reports whether quantity is at or below the minimum stock
func (i *InventoryItem) IsLowStock() bool {
	return i.Quantity.LessThanOrEqual(i.MinimumStock)
}

func (i *InventoryItem) setDetails(d ItemDetails) {
	i.Name = strings.TrimSpace(d.Name)
	i.Description = strings.TrimSpace(d.Description)
	i.Unit = strings.TrimSpace(d.Unit)
	i.MinimumStock = d.MinimumStock
	i.UnitCost = d.UnitCost
}

// apply moves the cached quantity and builds the ledger entry. wasLow is the
// low-stock state before the change; a crossing raises LowStockEvent.
func (i *InventoryItem) apply(txType TransactionType, delta decimal.Decimal, reference, notes string, createdBy uuid.UUID, wasLow bool) *InventoryTransaction {
	before := i.Quantity
	i.Quantity = before.Add(delta)
	i.Touch()

	tx := &InventoryTransaction{
		ID:              uuid.New(),
		InventoryItemID: i.ID,
		Type:            txType,
		Quantity:        delta,
		BalanceBefore:   before,
		BalanceAfter:    i.Quantity,
		Reference:       strings.TrimSpace(reference),
		Notes:           strings.TrimSpace(notes),
		CreatedBy:       createdBy,
		CreatedAt:       time.Now(),
	}

	i.AddDomainEvent(NewStockChangedEvent(i, tx))
	if !wasLow && i.IsLowStock() {
		i.AddDomainEvent(NewLowStockEvent(i))
	}
	return tx
}

// LedgerCheck compares the cached quantity with the sum of the ledger
type LedgerCheck struct {
	ItemID           uuid.UUID
	CachedQuantity   decimal.Decimal
	LedgerQuantity   decimal.Decimal
	TransactionCount int64
}

// Consistent reports whether the cached quantity matches the ledger
func (c LedgerCheck) Consistent() bool {
	return c.CachedQuantity.Equal(c.LedgerQuantity)
}

// Drift returns cached minus ledger quantity
func (c LedgerCheck) Drift() decimal.Decimal {
	return c.CachedQuantity.Sub(c.LedgerQuantity)
}
