package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	appshared "github.com/tablekit/backoffice/internal/application/shared"
	"github.com/tablekit/backoffice/internal/domain/order"
	"github.com/tablekit/backoffice/internal/domain/shared"
	"github.com/tablekit/backoffice/internal/domain/table"
	"github.com/tablekit/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Service drives the order lifecycle and its table coupling
type Service struct {
	scope     appshared.TransactionScope
	orderRepo order.OrderRepository
	numbers   order.NumberGenerator
	events    *appshared.EventDispatcher
	metrics   *telemetry.BusinessMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new order Service
func NewService(
	scope appshared.TransactionScope,
	orderRepo order.OrderRepository,
	numbers order.NumberGenerator,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scope:     scope,
		orderRepo: orderRepo,
		numbers:   numbers,
		events:    appshared.NewEventDispatcher(nil, logger),
		metrics:   telemetry.NopBusinessMetrics(),
		logger:    logger.Named("order"),
		now:       time.Now,
	}
}

// SetEventPublisher sets the publisher used after each committed change
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.events.SetPublisher(publisher)
}

// SetMetrics sets the business metrics recorder
func (s *Service) SetMetrics(metrics *telemetry.BusinessMetrics) {
	if metrics != nil {
		s.metrics = metrics
	}
}

// SetClock overrides the time source
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create opens an order on a table. The order, its lines and the table
// occupation are written in one transaction.
func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreateOrderRequest) (_ *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create")
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTableID, req.TableID.String(),
		telemetry.SpanAttrStaffID, actor.StaffID.String(),
	)

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if req.TableID == uuid.Nil {
		return nil, shared.NewValidationError("Table is required")
	}
	if len(req.Items) == 0 {
		return nil, shared.NewValidationError("Order must contain at least one item")
	}

	lines := make([]order.OrderLine, 0, len(req.Items))
	for i, in := range req.Items {
		if in.UnitPrice == nil {
			return nil, shared.NewValidationError("Item %d: unit price is required", i+1)
		}
		line, err := order.NewOrderLine(in.MenuItemID, in.Quantity, *in.UnitPrice, in.Notes)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}

	number, err := s.numbers.Next(ctx, s.now())
	if err != nil {
		return nil, err
	}

	var (
		created *order.Order
		tbl     *table.Table
	)
	err = s.scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		t, err := repos.TableRepo().FindByIDForUpdate(ctx, req.TableID)
		if err != nil {
			return err
		}

		o, err := order.NewOrder(number, t.ID, req.CustomerID, actor.StaffID, lines)
		if err != nil {
			return err
		}

		changed, err := t.Occupy(&o.ID)
		if err != nil {
			return err
		}

		if err := repos.OrderRepo().Create(ctx, o); err != nil {
			return err
		}
		if changed {
			if err := repos.TableRepo().SaveWithLock(ctx, t); err != nil {
				return err
			}
		}

		created, tbl = o, t
		return nil
	})
	if err != nil {
		s.logger.Warn("order creation failed",
			zap.String("table_id", req.TableID.String()),
			zap.String("order_number", number),
			zap.String("code", shared.ErrorCode(err)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", created.ID.String()),
		zap.String("order_number", created.OrderNumber),
		zap.Int("table_number", tbl.Number),
		zap.String("total", created.TotalAmount.StringFixed(2)),
		zap.String("staff_id", actor.StaffID.String()),
	)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, created.ID.String(),
		telemetry.SpanAttrOrderNumber, created.OrderNumber,
	)
	s.metrics.RecordOrderWithAmount(ctx, created.TotalAmount)
	s.events.Dispatch(ctx, created, tbl)

	response := ToOrderResponse(created)
	return &response, nil
}

// UpdateStatus moves an order along its state machine. Paying or
// cancelling releases the table held by the order in the same transaction.
func (s *Service) UpdateStatus(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req UpdateStatusRequest) (_ *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "update_status",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrOrderStatus, req.Status),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	target, err := order.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var (
		updated  *order.Order
		from     order.OrderStatus
		released *table.Table
	)
	err = s.scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		from = o.Status
		if err := o.ChangeStatus(target); err != nil {
			return err
		}
		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}
		updated = o

		if !target.IsTerminal() {
			return nil
		}
		t, err := repos.TableRepo().FindByIDForUpdate(ctx, o.TableID)
		if err != nil {
			return err
		}
		changed, err := t.ReleaseFor(o.ID)
		if err != nil {
			return err
		}
		if changed {
			if err := repos.TableRepo().SaveWithLock(ctx, t); err != nil {
				return err
			}
			released = t
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status changed",
		zap.String("order_number", updated.OrderNumber),
		zap.String("status", updated.Status.String()),
		zap.Bool("table_released", released != nil),
		zap.String("staff_id", actor.StaffID.String()),
	)
	s.metrics.RecordOrderStatusChange(ctx, from.String(), updated.Status.String())
	if released != nil {
		telemetry.AddEvent(span, "table_released", telemetry.SpanAttrTableID, released.ID.String())
		s.events.Dispatch(ctx, updated, released)
	} else {
		s.events.Dispatch(ctx, updated)
	}

	response := ToOrderResponse(updated)
	return &response, nil
}

// Delete removes an order and its lines. A table still held by the order
// is released in the same transaction. Only managers may delete orders.
func (s *Service) Delete(ctx context.Context, actor shared.Actor, orderID uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "delete",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := actor.Validate(); err != nil {
		return err
	}
	if !actor.IsManager() {
		return shared.ErrForbidden
	}

	var (
		deleted  *order.Order
		released *table.Table
	)
	err = s.scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		t, err := repos.TableRepo().FindByIDForUpdate(ctx, o.TableID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if t != nil {
			changed, err := t.ReleaseFor(o.ID)
			if err != nil {
				return err
			}
			if changed {
				if err := repos.TableRepo().SaveWithLock(ctx, t); err != nil {
					return err
				}
				released = t
			}
		}

		if err := repos.OrderRepo().Delete(ctx, o); err != nil {
			return err
		}
		o.MarkDeleted(actor.StaffID)
		deleted = o
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("order deleted",
		zap.String("order_number", deleted.OrderNumber),
		zap.String("status", deleted.Status.String()),
		zap.Bool("table_released", released != nil),
		zap.String("staff_id", actor.StaffID.String()),
	)
	s.metrics.RecordOrderDeleted(ctx, deleted.Status.String())
	if released != nil {
		telemetry.AddEvent(span, "table_released", telemetry.SpanAttrTableID, released.ID.String())
		s.events.Dispatch(ctx, deleted, released)
	} else {
		s.events.Dispatch(ctx, deleted)
	}
	return nil
}

// GetByID returns an order with its lines
func (s *Service) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// List returns the orders created on a calendar day, newest first
func (s *Service) List(ctx context.Context, query ListOrdersQuery) ([]OrderResponse, error) {
	day := query.Date
	if day.IsZero() {
		day = s.now()
	}
	from, to := shared.DayRange(day)

	filter := order.ListFilter{From: from, To: to, TableID: query.TableID}
	if query.Status != "" {
		status, err := order.ParseStatus(query.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}
