package table

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/tablekit/backoffice/internal/domain/shared"
)

// TableStatus represents the availability of a dining table
type TableStatus string

const (
	StatusAvailable   TableStatus = "available"
	StatusOccupied    TableStatus = "occupied"
	StatusReserved    TableStatus = "reserved"
	StatusMaintenance TableStatus = "maintenance"
)

// ParseStatus parses a table status name
func ParseStatus(s string) (TableStatus, error) {
	status := TableStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", shared.NewValidationError("Unknown table status %q", s)
	}
	return status, nil
}

// IsValid checks if the status is a valid TableStatus
func (s TableStatus) IsValid() bool {
	switch s {
	case StatusAvailable, StatusOccupied, StatusReserved, StatusMaintenance:
		return true
	}
	return false
}

// String returns the string representation of TableStatus
func (s TableStatus) String() string {
	return string(s)
}

// Table is a physical dining table. CurrentOrderID is the open order
// holding the table, if any.
type Table struct {
	shared.BaseAggregateRoot
	Number         int
	Capacity       int
	Location       string
	Status         TableStatus
	CurrentOrderID *uuid.UUID
}

// NewTable creates an available table
func NewTable(number, capacity int, location string) (*Table, error) {
	if number <= 0 {
		return nil, shared.NewValidationError("Table number must be positive")
	}
	if capacity <= 0 {
		return nil, shared.NewValidationError("Capacity must be positive")
	}
	return &Table{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Capacity:          capacity,
		Location:          strings.TrimSpace(location),
		Status:            StatusAvailable,
	}, nil
}

// Occupy seats guests at the table. orderID may be nil for a walk-in
// without an order yet.
//
// It returns changed=false when the table was already occupied by the same
// order (or by no order), and a conflict when another order holds it.
func (t *Table) Occupy(orderID *uuid.UUID) (changed bool, err error) {
	switch t.Status {
	case StatusMaintenance:
		return false, shared.NewInvalidTransitionError(t.label(), string(t.Status), string(StatusOccupied))
	case StatusOccupied:
		if t.CurrentOrderID == nil {
			if orderID == nil {
				return false, nil
			}
			t.attach(orderID)
			return true, nil
		}
		if orderID == nil || *t.CurrentOrderID == *orderID {
			return false, nil
		}
		return false, shared.NewConflictError(
			t.label() + " is already occupied by order " + t.CurrentOrderID.String())
	}

	from := t.Status
	t.Status = StatusOccupied
	t.attach(orderID)
	t.AddDomainEvent(NewTableOccupiedEvent(t, from))
	return true, nil
}

// Release frees the table. Releasing an available table is a no-op.
func (t *Table) Release() (changed bool, err error) {
	switch t.Status {
	case StatusAvailable:
		return false, nil
	case StatusMaintenance:
		return false, shared.NewInvalidTransitionError(t.label(), string(t.Status), string(StatusAvailable))
	}

	from := t.Status
	t.Status = StatusAvailable
	t.CurrentOrderID = nil
	t.Touch()
	t.IncrementVersion()
	t.AddDomainEvent(NewTableReleasedEvent(t, from))
	return true, nil
}

// ReleaseFor frees the table only when the given order holds it
func (t *Table) ReleaseFor(orderID uuid.UUID) (bool, error) {
	if t.Status != StatusOccupied || t.CurrentOrderID == nil || *t.CurrentOrderID != orderID {
		return false, nil
	}
	return t.Release()
}

// SetStatus applies a manual status change (reservations and maintenance).
// An occupied table must be released through Release first.
func (t *Table) SetStatus(target TableStatus) (bool, error) {
	if !target.IsValid() {
		return false, shared.NewValidationError("Unknown table status %q", string(target))
	}
	if target == t.Status {
		return false, nil
	}
	switch target {
	case StatusOccupied:
		return t.Occupy(nil)
	case StatusAvailable:
		if t.Status == StatusMaintenance {
			t.Status = StatusAvailable
			t.Touch()
			t.IncrementVersion()
			t.AddDomainEvent(NewTableReleasedEvent(t, StatusMaintenance))
			return true, nil
		}
		return t.Release()
	}
	if t.Status == StatusOccupied {
		return false, shared.NewInvalidTransitionError(t.label(), string(t.Status), string(target))
	}

	from := t.Status
	t.Status = target
	t.Touch()
	t.IncrementVersion()
	t.AddDomainEvent(NewTableStatusChangedEvent(t, from))
	return true, nil
}

// IsHeldBy reports whether the given order currently holds the table
func (t *Table) IsHeldBy(orderID uuid.UUID) bool {
	return t.CurrentOrderID != nil && *t.CurrentOrderID == orderID
}

func (t *Table) attach(orderID *uuid.UUID) {
	if orderID != nil {
		id := *orderID
		t.CurrentOrderID = &id
	}
	t.Touch()
	t.IncrementVersion()
}

func (t *Table) label() string {
	return "table " + strconv.Itoa(t.Number)
}
