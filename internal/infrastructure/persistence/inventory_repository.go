package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tablekit/backoffice/internal/domain/inventory"
	"github.com/tablekit/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryItemRepository implements InventoryItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

// FindByID finds an inventory item by its ID
func (r *GormInventoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	var model models.InventoryItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Inventory item", "load inventory item")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an item and locks its row until the transaction ends
func (r *GormInventoryItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	var model models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Inventory item", "lock inventory item")
	}
	return model.ToDomain(), nil
}

// FindAll lists items ordered by name
func (r *GormInventoryItemRepository) FindAll(ctx context.Context) ([]inventory.InventoryItem, error) {
	var rows []models.InventoryItemModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err, "Inventory item", "list inventory items")
	}
	items := make([]inventory.InventoryItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, nil
}

// Create inserts a new item
func (r *GormInventoryItemRepository) Create(ctx context.Context, item *inventory.InventoryItem) error {
	if err := r.db.WithContext(ctx).Create(models.InventoryItemModelFromDomain(item)).Error; err != nil {
		return translateError(err, "Inventory item", "create inventory item")
	}
	return nil
}

// SaveWithLock saves the item with an optimistic version check
func (r *GormInventoryItemRepository) SaveWithLock(ctx context.Context, item *inventory.InventoryItem) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Where("id = ? AND version = ?", item.ID, item.Version-1).
		Updates(map[string]any{
			"name":          item.Name,
			"description":   item.Description,
			"quantity":      item.Quantity,
			"unit":          item.Unit,
			"minimum_stock": item.MinimumStock,
			"unit_cost":     item.UnitCost,
			"version":       item.Version,
			"updated_at":    item.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "Inventory item", "save inventory item")
	}
	if result.RowsAffected == 0 {
		return staleVersion("Inventory item")
	}
	return nil
}

// GormInventoryTransactionRepository implements the append-only ledger using GORM
type GormInventoryTransactionRepository struct {
	db *gorm.DB
}

// NewGormInventoryTransactionRepository creates a new GormInventoryTransactionRepository
func NewGormInventoryTransactionRepository(db *gorm.DB) *GormInventoryTransactionRepository {
	return &GormInventoryTransactionRepository{db: db}
}

// Create appends a ledger entry
func (r *GormInventoryTransactionRepository) Create(ctx context.Context, tx *inventory.InventoryTransaction) error {
	if err := r.db.WithContext(ctx).Create(models.InventoryTransactionModelFromDomain(tx)).Error; err != nil {
		return translateError(err, "Inventory transaction", "record inventory transaction")
	}
	return nil
}

// FindRecent returns the newest entries for an item, newest first
func (r *GormInventoryTransactionRepository) FindRecent(ctx context.Context, itemID uuid.UUID, limit int) ([]inventory.InventoryTransaction, error) {
	var rows []models.InventoryTransactionModel
	if err := r.db.WithContext(ctx).
		Where("inventory_item_id = ?", itemID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, translateError(err, "Inventory transaction", "list inventory transactions")
	}
	txs := make([]inventory.InventoryTransaction, len(rows))
	for i := range rows {
		txs[i] = *rows[i].ToDomain()
	}
	return txs, nil
}

// SumByItem adds up every delta recorded for an item. The sum is done with
// decimal arithmetic so it is exact regardless of the driver's numeric type.
func (r *GormInventoryTransactionRepository) SumByItem(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, int64, error) {
	var deltas []decimal.Decimal
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryTransactionModel{}).
		Where("inventory_item_id = ?", itemID).
		Pluck("quantity", &deltas).Error; err != nil {
		return decimal.Zero, 0, translateError(err, "Inventory transaction", "sum inventory ledger")
	}
	sum := decimal.Zero
	for _, d := range deltas {
		sum = sum.Add(d)
	}
	return sum, int64(len(deltas)), nil
}

var (
	_ inventory.InventoryItemRepository        = (*GormInventoryItemRepository)(nil)
	_ inventory.InventoryTransactionRepository = (*GormInventoryTransactionRepository)(nil)
)
