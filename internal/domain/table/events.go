package table

import (
	"github.com/google/uuid"
	"github.com/tablekit/backoffice/internal/domain/shared"
)

// AggregateTypeTable is the aggregate type for table events
const AggregateTypeTable = "Table"

// Event type constants
const (
	EventTypeTableOccupied      = "table.occupied"
	EventTypeTableReleased      = "table.released"
	EventTypeTableStatusChanged = "table.status_changed"
)

// TableOccupiedEvent is raised when a table becomes occupied
type TableOccupiedEvent struct {
	shared.BaseDomainEvent
	TableID uuid.UUID   `json:"table_id"`
	Number  int         `json:"number"`
	From    TableStatus `json:"from"`
	OrderID *uuid.UUID  `json:"order_id,omitempty"`
}

// NewTableOccupiedEvent creates a new TableOccupiedEvent
func NewTableOccupiedEvent(t *Table, from TableStatus) *TableOccupiedEvent {
	return &TableOccupiedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTableOccupied, AggregateTypeTable, t.ID),
		TableID:         t.ID,
		Number:          t.Number,
		From:            from,
		OrderID:         t.CurrentOrderID,
	}
}

// EventType returns the event type name
func (e *TableOccupiedEvent) EventType() string {
	return EventTypeTableOccupied
}

// TableReleasedEvent is raised when a table becomes available again
type TableReleasedEvent struct {
	shared.BaseDomainEvent
	TableID uuid.UUID   `json:"table_id"`
	Number  int         `json:"number"`
	From    TableStatus `json:"from"`
}

// NewTableReleasedEvent creates a new TableReleasedEvent
func NewTableReleasedEvent(t *Table, from TableStatus) *TableReleasedEvent {
	return &TableReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTableReleased, AggregateTypeTable, t.ID),
		TableID:         t.ID,
		Number:          t.Number,
		From:            from,
	}
}

// EventType returns the event type name
func (e *TableReleasedEvent) EventType() string {
	return EventTypeTableReleased
}

// TableStatusChangedEvent is raised on manual reserve/maintenance changes
type TableStatusChangedEvent struct {
	shared.BaseDomainEvent
	TableID uuid.UUID   `json:"table_id"`
	Number  int         `json:"number"`
	From    TableStatus `json:"from"`
	To      TableStatus `json:"to"`
}

// NewTableStatusChangedEvent creates a new TableStatusChangedEvent
func NewTableStatusChangedEvent(t *Table, from TableStatus) *TableStatusChangedEvent {
	return &TableStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTableStatusChanged, AggregateTypeTable, t.ID),
		TableID:         t.ID,
		Number:          t.Number,
		From:            from,
		To:              t.Status,
	}
}

// EventType returns the event type name
func (e *TableStatusChangedEvent) EventType() string {
	return EventTypeTableStatusChanged
}
