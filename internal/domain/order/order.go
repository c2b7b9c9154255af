package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tablekit/backoffice/internal/domain/shared"
)

// OrderStatus represents the status of a dine-in order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusPaid      OrderStatus = "paid"
	StatusCancelled OrderStatus = "cancelled"
)

// ParseStatus parses a status name. Unknown names are a validation error.
func ParseStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", shared.NewValidationError("Unknown order status %q", s)
	}
	return status, nil
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsOpen reports whether an order in this status still holds its table
func (s OrderStatus) IsOpen() bool {
	return s == StatusPending || s == StatusPreparing || s == StatusReady
}

// IsTerminal reports whether no further transitions are possible
func (s OrderStatus) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case StatusPending:
		return target == StatusPreparing || target == StatusCancelled
	case StatusPreparing:
		return target == StatusReady || target == StatusCancelled
	case StatusReady:
		return target == StatusPaid || target == StatusCancelled
	case StatusPaid, StatusCancelled:
		return false
	}
	return false
}

// PriceScale is the number of decimal places kept for prices and totals
const PriceScale = 2

// OrderLine is one menu item within an order. UnitPrice is the menu price
// captured when the order was placed.
type OrderLine struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	Quantity   int
	UnitPrice  decimal.Decimal
	Notes      string
	CreatedAt  time.Time
}

// NewOrderLine creates a validated order line
func NewOrderLine(menuItemID uuid.UUID, quantity int, unitPrice decimal.Decimal, notes string) (*OrderLine, error) {
	if menuItemID == uuid.Nil {
		return nil, shared.NewValidationError("Menu item is required")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("Unit price cannot be negative")
	}
	if !unitPrice.Equal(unitPrice.Round(PriceScale)) {
		return nil, shared.NewValidationError("Unit price cannot have more than %d decimal places", PriceScale)
	}
	return &OrderLine{
		ID:         uuid.New(),
		MenuItemID: menuItemID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		Notes:      strings.TrimSpace(notes),
		CreatedAt:  time.Now(),
	}, nil
}

// Amount returns UnitPrice × Quantity
func (l OrderLine) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is the aggregate root for a table's order and its lines
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber string
	TableID     uuid.UUID
	CustomerID  *uuid.UUID
	Status      OrderStatus
	TotalAmount decimal.Decimal
	StaffID     uuid.UUID
	Lines       []OrderLine
}

// NewOrder creates a pending order. The total is computed from the lines
// and never re-derived afterwards.
func NewOrder(orderNumber string, tableID uuid.UUID, customerID *uuid.UUID, staffID uuid.UUID, lines []OrderLine) (*Order, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, shared.NewValidationError("Order number is required")
	}
	if tableID == uuid.Nil {
		return nil, shared.NewValidationError("Table is required")
	}
	if staffID == uuid.Nil {
		return nil, shared.NewValidationError("Staff member is required")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("Order must contain at least one item")
	}
	if customerID != nil && *customerID == uuid.Nil {
		customerID = nil
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		TableID:           tableID,
		CustomerID:        customerID,
		Status:            StatusPending,
		StaffID:           staffID,
		Lines:             make([]OrderLine, len(lines)),
	}
	copy(o.Lines, lines)
	for i := range o.Lines {
		o.Lines[i].OrderID = o.ID
	}
	o.TotalAmount = CalculateTotal(o.Lines)

	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return o, nil
}

// CalculateTotal sums line amounts, rounded to cents
func CalculateTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount())
	}
	return total.Round(PriceScale)
}

// ChangeStatus moves the order along its state machine
func (o *Order) ChangeStatus(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewValidationError("Unknown order status %q", string(target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewInvalidTransitionError("order "+o.OrderNumber, string(o.Status), string(target))
	}

	from := o.Status
	o.Status = target
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	return nil
}

// MarkDeleted records that the order is being removed by staffID. The
// version is left alone so the delete can match the stored row.
func (o *Order) MarkDeleted(staffID uuid.UUID) {
	o.AddDomainEvent(NewOrderDeletedEvent(o, staffID))
}

// ItemCount returns the number of lines on the order
func (o *Order) ItemCount() int {
	return len(o.Lines)
}
