package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tablekit/backoffice/internal/domain/shared"
)

// TransactionType represents the type of inventory transaction
type TransactionType string

const (
	// TransactionTypeIn is stock received (deliveries, initial stock)
	TransactionTypeIn TransactionType = "in"
	// TransactionTypeOut is stock consumed or discarded
	TransactionTypeOut TransactionType = "out"
	// TransactionTypeAdjustment is a signed correction after a count
	TransactionTypeAdjustment TransactionType = "adjustment"
)

// Labels written on the transaction created together with an item
const (
	InitialStockReference = "Initial Stock"
	InitialStockNotes     = "Initial inventory setup"
)

// ParseTransactionType parses a transaction type name
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", shared.NewValidationError("Unknown transaction type %q", s)
	}
	return t, nil
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIn, TransactionTypeOut, TransactionTypeAdjustment:
		return true
	}
	return false
}

// Delta converts a requested quantity into the signed change it applies.
// in and out take a positive magnitude; adjustment takes a non-zero signed value.
func (t TransactionType) Delta(quantity decimal.Decimal) (decimal.Decimal, error) {
	switch t {
	case TransactionTypeIn:
		if !quantity.IsPositive() {
			return decimal.Zero, shared.NewValidationError("Stock in quantity must be positive")
		}
		return quantity, nil
	case TransactionTypeOut:
		if !quantity.IsPositive() {
			return decimal.Zero, shared.NewValidationError("Stock out quantity must be positive")
		}
		return quantity.Neg(), nil
	case TransactionTypeAdjustment:
		if quantity.IsZero() {
			return decimal.Zero, shared.NewValidationError("Adjustment quantity cannot be zero")
		}
		return quantity, nil
	}
	return decimal.Zero, shared.NewValidationError("Unknown transaction type %q", string(t))
}

// InventoryTransaction is an immutable record of a stock movement.
// Quantity is the signed delta; corrections are made with new transactions.
type InventoryTransaction struct {
	ID              uuid.UUID
	InventoryItemID uuid.UUID
	Type            TransactionType
	Quantity        decimal.Decimal
	BalanceBefore   decimal.Decimal
	BalanceAfter    decimal.Decimal
	Reference       string
	Notes           string
	CreatedBy       uuid.UUID
	CreatedAt       time.Time
}

// IsIncrease reports whether the transaction added stock
func (t *InventoryTransaction) IsIncrease() bool {
	return t.Quantity.IsPositive()
}
