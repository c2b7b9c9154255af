package inventory

import (
	"context"

	"github.com/google/uuid"
	appshared "github.com/tablekit/backoffice/internal/application/shared"
	"github.com/tablekit/backoffice/internal/domain/inventory"
	"github.com/tablekit/backoffice/internal/domain/shared"
	"github.com/tablekit/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Service maintains inventory items and their append-only ledger
type Service struct {
	scope           appshared.TransactionScope
	itemRepo        inventory.InventoryItemRepository
	transactionRepo inventory.InventoryTransactionRepository
	events          *appshared.EventDispatcher
	metrics         *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewService creates a new inventory Service
func NewService(
	scope appshared.TransactionScope,
	itemRepo inventory.InventoryItemRepository,
	transactionRepo inventory.InventoryTransactionRepository,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scope:           scope,
		itemRepo:        itemRepo,
		transactionRepo: transactionRepo,
		events:          appshared.NewEventDispatcher(nil, logger),
		metrics:         telemetry.NopBusinessMetrics(),
		logger:          logger.Named("inventory"),
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

// CreateItem stores a new item together with its initial stock entry
func (s *Service) CreateItem(ctx context.Context, actor shared.Actor, req CreateItemRequest) (*ItemResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	item, tx, err := inventory.NewInventoryItem(req.details(), req.Quantity, actor.StaffID)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if err := repos.InventoryRepo().Create(ctx, item); err != nil {
			return err
		}
		return repos.TransactionRepo().Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inventory item created",
		zap.String("item_id", item.ID.String()),
		zap.String("name", item.Name),
		zap.String("quantity", item.Quantity.String()),
		zap.String("unit", item.Unit),
	)
	s.events.Dispatch(ctx, item)

	response := ToItemResponse(item)
	return &response, nil
}

// ImportItems creates several items and their initial stock entries in a
// single transaction. Nothing is stored when any item is rejected.
func (s *Service) ImportItems(ctx context.Context, actor shared.Actor, reqs []CreateItemRequest) ([]ItemResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, shared.NewValidationError("At least one item is required")
	}

	items := make([]*inventory.InventoryItem, len(reqs))
	entries := make([]*inventory.InventoryTransaction, len(reqs))
	for i, req := range reqs {
		item, tx, err := inventory.NewInventoryItem(req.details(), req.Quantity, actor.StaffID)
		if err != nil {
			return nil, shared.NewValidationError("Item %d (%s): %s", i+1, req.Name, err.Error())
		}
		items[i], entries[i] = item, tx
	}

	err := s.scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		for i := range items {
			if err := repos.InventoryRepo().Create(ctx, items[i]); err != nil {
				return err
			}
			if err := repos.TransactionRepo().Create(ctx, entries[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inventory items imported", zap.Int("count", len(items)))
	out := make([]ItemResponse, len(items))
	for i, item := range items {
		s.events.Dispatch(ctx, item)
		out[i] = ToItemResponse(item)
	}
	return out, nil
}

// RecordTransaction applies a stock movement. The item's quantity and the
// new ledger entry are written in one transaction.
func (s *Service) RecordTransaction(ctx context.Context, actor shared.Actor, itemID uuid.UUID, req RecordTransactionRequest) (_ *TransactionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "record_transaction",
		telemetry.WithAttribute(telemetry.SpanAttrItemID, itemID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrTxType, req.Type),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, req.Quantity.String()),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	txType, err := inventory.ParseTransactionType(req.Type)
	if err != nil {
		return nil, err
	}
	if _, err := txType.Delta(req.Quantity); err != nil {
		return nil, err
	}

	var (
		item  *inventory.InventoryItem
		entry *inventory.InventoryTransaction
	)
	err = s.scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		it, err := repos.InventoryRepo().FindByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		tx, err := it.RecordTransaction(txType, req.Quantity, req.Reference, req.Notes, actor.StaffID)
		if err != nil {
			return err
		}
		if err := repos.InventoryRepo().SaveWithLock(ctx, it); err != nil {
			return err
		}
		if err := repos.TransactionRepo().Create(ctx, tx); err != nil {
			return err
		}
		item, entry = it, tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inventory transaction recorded",
		zap.String("item_id", item.ID.String()),
		zap.String("type", entry.Type.String()),
		zap.String("delta", entry.Quantity.String()),
		zap.String("balance", entry.BalanceAfter.String()),
		zap.String("staff_id", actor.StaffID.String()),
	)
	if item.IsLowStock() {
		s.logger.Warn("inventory item at or below minimum stock",
			zap.String("item_id", item.ID.String()),
			zap.String("name", item.Name),
			zap.String("quantity", item.Quantity.String()),
			zap.String("minimum_stock", item.MinimumStock.String()),
		)
		s.metrics.RecordLowStock(ctx, entry.Type.String())
	}
	s.events.Dispatch(ctx, item)

	response := ToTransactionResponse(entry)
	return &response, nil
}

// GetItem returns an item with its most recent ledger entries, newest first
func (s *Service) GetItem(ctx context.Context, itemID uuid.UUID) (*ItemDetailResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	recent, err := s.transactionRepo.FindRecent(ctx, itemID, RecentTransactionLimit)
	if err != nil {
		return nil, err
	}

	txs := make([]TransactionResponse, len(recent))
	for i := range recent {
		txs[i] = ToTransactionResponse(&recent[i])
	}
	return &ItemDetailResponse{
		ItemResponse:       ToItemResponse(item),
		RecentTransactions: txs,
	}, nil
}

// ListItems returns all items ordered by name
func (s *Service) ListItems(ctx context.Context) ([]ItemResponse, error) {
	items, err := s.itemRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ItemResponse, len(items))
	for i := range items {
		out[i] = ToItemResponse(&items[i])
	}
	return out, nil
}

// UpdateItem edits name, unit, description, minimum stock and unit cost.
// Quantity only changes through transactions.
func (s *Service) UpdateItem(ctx context.Context, actor shared.Actor, itemID uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var item *inventory.InventoryItem
	err := s.scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		it, err := repos.InventoryRepo().FindByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if err := it.UpdateDetails(req.details()); err != nil {
			return err
		}
		if err := repos.InventoryRepo().SaveWithLock(ctx, it); err != nil {
			return err
		}
		item = it
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inventory item updated",
		zap.String("item_id", item.ID.String()),
		zap.String("name", item.Name),
	)
	s.events.Dispatch(ctx, item)

	response := ToItemResponse(item)
	return &response, nil
}

// VerifyLedger recomputes the sum of an item's ledger and compares it with
// the cached quantity
func (s *Service) VerifyLedger(ctx context.Context, itemID uuid.UUID) (*LedgerCheckResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	sum, count, err := s.transactionRepo.SumByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	check := inventory.LedgerCheck{
		ItemID:           item.ID,
		CachedQuantity:   item.Quantity,
		LedgerQuantity:   sum,
		TransactionCount: count,
	}
	if !check.Consistent() {
		s.logger.Error("inventory ledger drift detected",
			zap.String("item_id", item.ID.String()),
			zap.String("cached", check.CachedQuantity.String()),
			zap.String("ledger", check.LedgerQuantity.String()),
			zap.Int64("transactions", count),
		)
	}
	response := ToLedgerCheckResponse(check)
	return &response, nil
}
