package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	appshared "github.com/tablekit/backoffice/internal/application/shared"
	"github.com/tablekit/backoffice/internal/domain/inventory"
	"github.com/tablekit/backoffice/internal/domain/shared"
	"github.com/tablekit/backoffice/internal/infrastructure/telemetry"
	"github.com/tablekit/backoffice/internal/infrastructure/telemetry/telemetrytest"
)

// MockItemRepository is a mock implementation of inventory.InventoryItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryItem), args.Error(1)
}

func (m *MockItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryItem), args.Error(1)
}

func (m *MockItemRepository) FindAll(ctx context.Context) ([]inventory.InventoryItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.InventoryItem), args.Error(1)
}

func (m *MockItemRepository) Create(ctx context.Context, item *inventory.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) SaveWithLock(ctx context.Context, item *inventory.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of inventory.InventoryTransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *inventory.InventoryTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindRecent(ctx context.Context, itemID uuid.UUID, limit int) ([]inventory.InventoryTransaction, error) {
	args := m.Called(ctx, itemID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.InventoryTransaction), args.Error(1)
}

func (m *MockTransactionRepository) SumByItem(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, int64, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(decimal.Decimal), args.Get(1).(int64), args.Error(2)
}

type capturePublisher struct {
	types []string
}

func (p *capturePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		p.types = append(p.types, e.EventType())
	}
	return nil
}

type fixture struct {
	svc       *Service
	items     *MockItemRepository
	txs       *MockTransactionRepository
	publisher *capturePublisher
}

func newFixture() *fixture {
	items := new(MockItemRepository)
	txs := new(MockTransactionRepository)
	publisher := &capturePublisher{}
	svc := NewService(appshared.NewNoOpTransactionScope(nil, nil, items, txs), items, txs, nil)
	svc.SetEventPublisher(publisher)
	return &fixture{svc: svc, items: items, txs: txs, publisher: publisher}
}

func manager() shared.Actor {
	return shared.NewActor(uuid.New(), "lee", shared.RoleManager)
}

func flour(t *testing.T, qty, minimum int64) *inventory.InventoryItem {
	t.Helper()
	item, _, err := inventory.NewInventoryItem(inventory.ItemDetails{
		Name:         "Flour",
		Unit:         "kg",
		MinimumStock: decimal.NewFromInt(minimum),
		UnitCost:     decimal.RequireFromString("1.20"),
	}, decimal.NewFromInt(qty), uuid.New())
	require.NoError(t, err)
	item.ClearDomainEvents()
	return item
}

func TestService_CreateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("writes item and initial stock entry", func(t *testing.T) {
		f := newFixture()
		actor := manager()
		var stored *inventory.InventoryTransaction
		f.items.On("Create", mock.Anything, mock.AnythingOfType("*inventory.InventoryItem")).Return(nil)
		f.txs.On("Create", mock.Anything, mock.AnythingOfType("*inventory.InventoryTransaction")).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*inventory.InventoryTransaction) }).
			Return(nil)

		resp, err := f.svc.CreateItem(ctx, actor, CreateItemRequest{
			Name:     "Flour",
			Quantity: decimal.NewFromInt(50),
			Unit:     "kg",
		})
		require.NoError(t, err)

		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(50)))
		require.NotNil(t, stored)
		assert.Equal(t, inventory.TransactionTypeIn, stored.Type)
		assert.True(t, stored.Quantity.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, inventory.InitialStockReference, stored.Reference)
		assert.Equal(t, inventory.InitialStockNotes, stored.Notes)
		assert.Equal(t, actor.StaffID, stored.CreatedBy)
		assert.Equal(t, resp.ID, stored.InventoryItemID)
		assert.Contains(t, f.publisher.types, inventory.EventTypeStockChanged)
	})

	t.Run("negative quantity", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.CreateItem(ctx, manager(), CreateItemRequest{
			Name: "Flour", Unit: "kg", Quantity: decimal.NewFromInt(-1),
		})
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
		f.items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("blank unit", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.CreateItem(ctx, manager(), CreateItemRequest{Name: "Flour", Unit: " "})
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
	})

	t.Run("ledger insert failure surfaces", func(t *testing.T) {
		f := newFixture()
		f.items.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.txs.On("Create", mock.Anything, mock.Anything).Return(shared.NewPersistenceError("create inventory transaction", errors.New("disk full")))

		_, err := f.svc.CreateItem(ctx, manager(), CreateItemRequest{Name: "Salt", Unit: "kg", Quantity: decimal.NewFromInt(3)})
		assert.Equal(t, shared.CodePersistence, shared.ErrorCode(err))
		assert.Empty(t, f.publisher.types)
	})
}

func TestService_ImportItems(t *testing.T) {
	ctx := context.Background()

	t.Run("stores every item with its opening entry", func(t *testing.T) {
		f := newFixture()
		f.items.On("Create", mock.Anything, mock.AnythingOfType("*inventory.InventoryItem")).Return(nil).Twice()
		f.txs.On("Create", mock.Anything, mock.AnythingOfType("*inventory.InventoryTransaction")).Return(nil).Twice()

		out, err := f.svc.ImportItems(ctx, manager(), []CreateItemRequest{
			{Name: "Flour", Unit: "kg", Quantity: decimal.NewFromInt(25)},
			{Name: "Olive oil", Unit: "l", Quantity: decimal.RequireFromString("4.75")},
		})
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "Olive oil", out[1].Name)
		assert.True(t, out[1].Quantity.Equal(decimal.RequireFromString("4.75")))
		f.items.AssertNumberOfCalls(t, "Create", 2)
		f.txs.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("one invalid row rejects the batch", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.ImportItems(ctx, manager(), []CreateItemRequest{
			{Name: "Flour", Unit: "kg", Quantity: decimal.NewFromInt(25)},
			{Name: "Salt", Unit: "kg", Quantity: decimal.NewFromInt(-2)},
		})
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
		assert.Contains(t, err.Error(), "Item 2 (Salt)")
		f.items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("empty batch", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.ImportItems(ctx, manager(), nil)
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
	})
}

func TestService_RecordTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("stock out updates balance", func(t *testing.T) {
		f := newFixture()
		item := flour(t, 50, 5)
		f.items.On("FindByIDForUpdate", mock.Anything, item.ID).Return(item, nil)
		f.items.On("SaveWithLock", mock.Anything, item).Return(nil)
		f.txs.On("Create", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.svc.RecordTransaction(ctx, manager(), item.ID, RecordTransactionRequest{
			Type: "out", Quantity: decimal.NewFromInt(20), Reference: "Dinner service",
		})
		require.NoError(t, err)

		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(-20)))
		assert.True(t, resp.BalanceBefore.Equal(decimal.NewFromInt(50)))
		assert.True(t, resp.BalanceAfter.Equal(decimal.NewFromInt(30)))
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(30)))
		assert.Equal(t, []string{inventory.EventTypeStockChanged}, f.publisher.types)
	})

	t.Run("crossing minimum raises low stock", func(t *testing.T) {
		f := newFixture()
		item := flour(t, 10, 5)
		f.items.On("FindByIDForUpdate", mock.Anything, item.ID).Return(item, nil)
		f.items.On("SaveWithLock", mock.Anything, item).Return(nil)
		f.txs.On("Create", mock.Anything, mock.Anything).Return(nil)

		rec := telemetrytest.NewRecorder(t)
		f.svc.SetMetrics(rec.Metrics)

		_, err := f.svc.RecordTransaction(ctx, manager(), item.ID, RecordTransactionRequest{
			Type: "adjustment", Quantity: decimal.NewFromInt(-6),
		})
		require.NoError(t, err)
		assert.Contains(t, f.publisher.types, inventory.EventTypeLowStock)
		assert.Equal(t, int64(1), rec.Counter("backoffice_inventory_low_stock_total",
			telemetry.AttrTxType.String("adjustment")))
	})

	t.Run("insufficient stock", func(t *testing.T) {
		f := newFixture()
		item := flour(t, 5, 0)
		f.items.On("FindByIDForUpdate", mock.Anything, item.ID).Return(item, nil)

		_, err := f.svc.RecordTransaction(ctx, manager(), item.ID, RecordTransactionRequest{
			Type: "out", Quantity: decimal.NewFromInt(6),
		})
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
		f.items.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		f.txs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("zero adjustment rejected before loading", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.RecordTransaction(ctx, manager(), uuid.New(), RecordTransactionRequest{
			Type: "adjustment", Quantity: decimal.Zero,
		})
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
		f.items.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("negative stock in rejected", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.RecordTransaction(ctx, manager(), uuid.New(), RecordTransactionRequest{
			Type: "in", Quantity: decimal.NewFromInt(-3),
		})
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
	})

	t.Run("unknown type", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.RecordTransaction(ctx, manager(), uuid.New(), RecordTransactionRequest{
			Type: "transfer", Quantity: decimal.NewFromInt(1),
		})
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
	})

	t.Run("unknown item", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.items.On("FindByIDForUpdate", mock.Anything, id).Return(nil, shared.NewNotFoundError("Inventory item"))

		_, err := f.svc.RecordTransaction(ctx, manager(), id, RecordTransactionRequest{
			Type: "in", Quantity: decimal.NewFromInt(1),
		})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("concurrent writer conflict", func(t *testing.T) {
		f := newFixture()
		item := flour(t, 50, 5)
		f.items.On("FindByIDForUpdate", mock.Anything, item.ID).Return(item, nil)
		f.items.On("SaveWithLock", mock.Anything, item).Return(shared.NewConflictError("Inventory item was modified by another transaction"))

		_, err := f.svc.RecordTransaction(ctx, manager(), item.ID, RecordTransactionRequest{
			Type: "in", Quantity: decimal.NewFromInt(5),
		})
		assert.True(t, errors.Is(err, shared.ErrConflict))
		f.txs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_GetItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	item := flour(t, 50, 5)
	history := []inventory.InventoryTransaction{
		{ID: uuid.New(), InventoryItemID: item.ID, Type: inventory.TransactionTypeOut, Quantity: decimal.NewFromInt(-2)},
		{ID: uuid.New(), InventoryItemID: item.ID, Type: inventory.TransactionTypeIn, Quantity: decimal.NewFromInt(52)},
	}
	f.items.On("FindByID", mock.Anything, item.ID).Return(item, nil)
	f.txs.On("FindRecent", mock.Anything, item.ID, RecentTransactionLimit).Return(history, nil)

	resp, err := f.svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flour", resp.Name)
	require.Len(t, resp.RecentTransactions, 2)
	assert.Equal(t, "out", resp.RecentTransactions[0].Type)
}

func TestService_ListItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	low := flour(t, 2, 5)
	ok := flour(t, 50, 5)
	f.items.On("FindAll", ctx).Return([]inventory.InventoryItem{*low, *ok}, nil)

	resp, err := f.svc.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.True(t, resp[0].LowStock)
	assert.False(t, resp[1].LowStock)
}

func TestService_UpdateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("quantity is untouched", func(t *testing.T) {
		f := newFixture()
		item := flour(t, 50, 5)
		f.items.On("FindByIDForUpdate", mock.Anything, item.ID).Return(item, nil)
		f.items.On("SaveWithLock", mock.Anything, item).Return(nil)

		resp, err := f.svc.UpdateItem(ctx, manager(), item.ID, UpdateItemRequest{
			Name: "Bread flour", Unit: "kg", MinimumStock: decimal.NewFromInt(10),
		})
		require.NoError(t, err)
		assert.Equal(t, "Bread flour", resp.Name)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(50)))
		f.txs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("raising minimum above quantity raises low stock", func(t *testing.T) {
		f := newFixture()
		item := flour(t, 8, 5)
		f.items.On("FindByIDForUpdate", mock.Anything, item.ID).Return(item, nil)
		f.items.On("SaveWithLock", mock.Anything, item).Return(nil)

		_, err := f.svc.UpdateItem(ctx, manager(), item.ID, UpdateItemRequest{
			Name: "Flour", Unit: "kg", MinimumStock: decimal.NewFromInt(10),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{inventory.EventTypeLowStock}, f.publisher.types)
	})
}

func TestService_VerifyLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("consistent", func(t *testing.T) {
		f := newFixture()
		item := flour(t, 50, 5)
		f.items.On("FindByID", mock.Anything, item.ID).Return(item, nil)
		f.txs.On("SumByItem", mock.Anything, item.ID).Return(decimal.NewFromInt(50), int64(1), nil)

		resp, err := f.svc.VerifyLedger(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, resp.Consistent)
		assert.True(t, resp.Drift.IsZero())
	})

	t.Run("drift", func(t *testing.T) {
		f := newFixture()
		item := flour(t, 50, 5)
		f.items.On("FindByID", mock.Anything, item.ID).Return(item, nil)
		f.txs.On("SumByItem", mock.Anything, item.ID).Return(decimal.NewFromInt(45), int64(3), nil)

		resp, err := f.svc.VerifyLedger(ctx, item.ID)
		require.NoError(t, err)
		assert.False(t, resp.Consistent)
		assert.True(t, resp.Drift.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, int64(3), resp.TransactionCount)
	})
}
