package shared

import (
	"context"

	"github.com/tablekit/backoffice/internal/domain/inventory"
	"github.com/tablekit/backoffice/internal/domain/order"
	"github.com/tablekit/backoffice/internal/domain/table"
)

// TransactionScope runs a unit of work in one database transaction.
// If fn returns an error the transaction is rolled back, otherwise committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories bound to the
// current transaction. Order creation and closure touch both the order and
// its table, so both live in the same scope.
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.OrderRepository
	// TableRepo returns the table repository scoped to the current transaction
	TableRepo() table.TableRepository
	// InventoryRepo returns the inventory item repository scoped to the current transaction
	InventoryRepo() inventory.InventoryItemRepository
	// TransactionRepo returns the inventory ledger repository scoped to the current transaction
	TransactionRepo() inventory.InventoryTransactionRepository
}

// NoOpTransactionScope runs the function against plain repositories without
// a transaction. Used by unit tests.
type NoOpTransactionScope struct {
	orderRepo       order.OrderRepository
	tableRepo       table.TableRepository
	inventoryRepo   inventory.InventoryItemRepository
	transactionRepo inventory.InventoryTransactionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
// Any of them may be nil when the caller does not need it.
func NewNoOpTransactionScope(
	orderRepo order.OrderRepository,
	tableRepo table.TableRepository,
	inventoryRepo inventory.InventoryItemRepository,
	transactionRepo inventory.InventoryTransactionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:       orderRepo,
		tableRepo:       tableRepo,
		inventoryRepo:   inventoryRepo,
		transactionRepo: transactionRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() order.OrderRepository {
	return s.orderRepo
}

// TableRepo returns the table repository.
func (s *NoOpTransactionScope) TableRepo() table.TableRepository {
	return s.tableRepo
}

// InventoryRepo returns the inventory item repository.
func (s *NoOpTransactionScope) InventoryRepo() inventory.InventoryItemRepository {
	return s.inventoryRepo
}

// TransactionRepo returns the inventory ledger repository.
func (s *NoOpTransactionScope) TransactionRepo() inventory.InventoryTransactionRepository {
	return s.transactionRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
