package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows ListOrders results
type ListFilter struct {
	// From and To bound created_at as [From, To)
	From    time.Time
	To      time.Time
	Status  *OrderStatus
	TableID *uuid.UUID
}

// OrderRepository defines the persistence contract for orders
type OrderRepository interface {
	// FindByID finds an order with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForUpdate finds an order and locks its row for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll lists orders matching the filter, newest first, with their lines
	FindAll(ctx context.Context, filter ListFilter) ([]Order, error)

	// Create inserts the order header and all of its lines
	Create(ctx context.Context, o *Order) error

	// SaveWithLock persists a status change, failing with a conflict when
	// the stored version is not o.Version-1
	SaveWithLock(ctx context.Context, o *Order) error

	// Delete removes the order header and its lines, failing with a
	// conflict when the stored version is not o.Version
	Delete(ctx context.Context, o *Order) error
}

// NumberGenerator issues unique human-readable order numbers
type NumberGenerator interface {
	Next(ctx context.Context, at time.Time) (string, error)
}
