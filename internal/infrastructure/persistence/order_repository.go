package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tablekit/backoffice/internal/domain/order"
	"github.com/tablekit/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// FindByID finds an order with its lines
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Order", "load order")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an order with its lines and locks the header row
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Order", "lock order")
	}
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Order("created_at ASC, id ASC").
		Find(&model.Items).Error; err != nil {
		return nil, translateError(err, "Order", "load order lines")
	}
	return model.ToDomain(), nil
}

// FindAll lists orders created in [From, To), newest first
func (r *GormOrderRepository) FindAll(ctx context.Context, filter order.ListFilter) ([]order.Order, error) {
	query := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Preload("Items", preloadItems).
		Order("created_at DESC, order_number DESC")

	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at < ?", filter.To)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.TableID != nil {
		query = query.Where("table_id = ?", *filter.TableID)
	}

	var rows []models.OrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError(err, "Order", "list orders")
	}
	orders := make([]order.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// Create inserts the order header followed by its lines
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	db := r.db.WithContext(ctx)

	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return translateError(err, "Order number", "create order")
	}
	if len(model.Items) > 0 {
		if err := db.Create(&model.Items).Error; err != nil {
			return translateError(err, "Order line", "create order lines")
		}
	}
	return nil
}

// SaveWithLock saves the order's status with an optimistic version check.
// Lines and totals are immutable after creation.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", o.ID, o.Version-1).
		Updates(map[string]any{
			"status":     string(o.Status),
			"version":    o.Version,
			"updated_at": o.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "Order", "save order")
	}
	if result.RowsAffected == 0 {
		return staleVersion("Order")
	}
	return nil
}

// Delete removes the lines and then the header. Lines are deleted
// explicitly so the result does not depend on the driver enforcing the
// cascade.
func (r *GormOrderRepository) Delete(ctx context.Context, o *order.Order) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", o.ID).Delete(&models.OrderItemModel{}).Error; err != nil {
		return translateError(err, "Order line", "delete order lines")
	}
	result := db.Where("id = ? AND version = ?", o.ID, o.Version).Delete(&models.OrderModel{})
	if result.Error != nil {
		return translateError(result.Error, "Order", "delete order")
	}
	if result.RowsAffected == 0 {
		return staleVersion("Order")
	}
	return nil
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)
