package table

import (
	"context"

	"github.com/google/uuid"
)

// TableRepository defines the persistence contract for tables
type TableRepository interface {
	// FindByID finds a table by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Table, error)

	// FindByIDForUpdate finds a table and locks its row for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Table, error)

	// FindByNumber finds a table by its number
	FindByNumber(ctx context.Context, number int) (*Table, error)

	// FindAll lists tables ordered by number, optionally by status
	FindAll(ctx context.Context, status *TableStatus) ([]Table, error)

	// Create inserts a new table; a duplicate number is a conflict
	Create(ctx context.Context, t *Table) error

	// SaveWithLock persists a state change, failing with a conflict when
	// the stored version is not t.Version-1
	SaveWithLock(ctx context.Context, t *Table) error
}
