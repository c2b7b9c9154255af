package table

import (
	"context"
	"errors"

	"github.com/google/uuid"
	appshared "github.com/tablekit/backoffice/internal/application/shared"
	"github.com/tablekit/backoffice/internal/domain/shared"
	"github.com/tablekit/backoffice/internal/domain/table"
	"go.uber.org/zap"
)

// Service tracks the occupancy state of dining tables
type Service struct {
	scope     appshared.TransactionScope
	tableRepo table.TableRepository
	events    *appshared.EventDispatcher
	logger    *zap.Logger
}

// NewService creates a new table Service
func NewService(scope appshared.TransactionScope, tableRepo table.TableRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scope:     scope,
		tableRepo: tableRepo,
		events:    appshared.NewEventDispatcher(nil, logger),
		logger:    logger.Named("table"),
	}
}

// SetEventPublisher sets the publisher used after each committed change
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.events.SetPublisher(publisher)
}

// Create registers a new table. Table numbers are unique.
func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreateTableRequest) (*TableResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	t, err := table.NewTable(req.Number, req.Capacity, req.Location)
	if err != nil {
		return nil, err
	}
	if err := s.tableRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("table registered",
		zap.String("table_id", t.ID.String()),
		zap.Int("table_number", t.Number),
		zap.Int("capacity", t.Capacity),
	)
	response := ToTableResponse(t)
	return &response, nil
}

// GetByID returns a table
func (s *Service) GetByID(ctx context.Context, tableID uuid.UUID) (*TableResponse, error) {
	t, err := s.tableRepo.FindByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	response := ToTableResponse(t)
	return &response, nil
}

// List returns tables ordered by number. An empty status lists all.
func (s *Service) List(ctx context.Context, status string) ([]TableResponse, error) {
	var filter *table.TableStatus
	if status != "" {
		st, err := table.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &st
	}
	tables, err := s.tableRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToTableResponses(tables), nil
}

// Occupy seats guests at a table. When an order is named it must be an
// open order placed on this table.
func (s *Service) Occupy(ctx context.Context, actor shared.Actor, tableID uuid.UUID, req OccupyTableRequest) (*TableResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tableID, "table occupied", func(repos appshared.TransactionalRepositories, t *table.Table) (bool, error) {
		if req.OrderID != nil {
			if err := checkHoldingOrder(ctx, repos, tableID, *req.OrderID); err != nil {
				return false, err
			}
		}
		return t.Occupy(req.OrderID)
	})
}

// Release frees a table. A table still held by an open order can only be
// released by paying or cancelling that order.
func (s *Service) Release(ctx context.Context, actor shared.Actor, tableID uuid.UUID) (*TableResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tableID, "table released", func(repos appshared.TransactionalRepositories, t *table.Table) (bool, error) {
		if err := ensureNoOpenHolder(ctx, repos, t); err != nil {
			return false, err
		}
		return t.Release()
	})
}

// SetStatus applies a manual status change such as reserved or maintenance
func (s *Service) SetStatus(ctx context.Context, actor shared.Actor, tableID uuid.UUID, req SetStatusRequest) (*TableResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	target, err := table.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, tableID, "table status set", func(repos appshared.TransactionalRepositories, t *table.Table) (bool, error) {
		if target == table.StatusAvailable {
			if err := ensureNoOpenHolder(ctx, repos, t); err != nil {
				return false, err
			}
		}
		return t.SetStatus(target)
	})
}

// checkHoldingOrder verifies that orderID names an open order on tableID
func checkHoldingOrder(ctx context.Context, repos appshared.TransactionalRepositories, tableID, orderID uuid.UUID) error {
	o, err := repos.OrderRepo().FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.TableID != tableID {
		return shared.NewValidationError("Order %s belongs to another table", o.OrderNumber)
	}
	if !o.Status.IsOpen() {
		return shared.NewValidationError("Order %s is %s and cannot hold a table", o.OrderNumber, o.Status)
	}
	return nil
}

// ensureNoOpenHolder rejects freeing a table while its holding order is
// still open. A holder that no longer exists or is already closed does
// not block the release.
func ensureNoOpenHolder(ctx context.Context, repos appshared.TransactionalRepositories, t *table.Table) error {
	if t.CurrentOrderID == nil {
		return nil
	}
	o, err := repos.OrderRepo().FindByID(ctx, *t.CurrentOrderID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !o.Status.IsOpen() {
		return nil
	}
	return shared.NewConflictError(
		"Table is held by order " + o.OrderNumber + "; close the order to release it")
}

// mutate loads the table under a row lock, applies fn and saves the table
// when fn reports a change.
func (s *Service) mutate(
	ctx context.Context,
	tableID uuid.UUID,
	msg string,
	fn func(appshared.TransactionalRepositories, *table.Table) (bool, error),
) (*TableResponse, error) {
	var (
		result  *table.Table
		changed bool
	)
	err := s.scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		t, err := repos.TableRepo().FindByIDForUpdate(ctx, tableID)
		if err != nil {
			return err
		}
		changed, err = fn(repos, t)
		if err != nil {
			return err
		}
		if changed {
			if err := repos.TableRepo().SaveWithLock(ctx, t); err != nil {
				return err
			}
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info(msg,
			zap.String("table_id", result.ID.String()),
			zap.Int("table_number", result.Number),
			zap.String("status", result.Status.String()),
		)
		s.events.Dispatch(ctx, result)
	}
	response := ToTableResponse(result)
	return &response, nil
}
