package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tablekit/backoffice/internal/domain/table"
	"github.com/tablekit/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTableRepository implements TableRepository using GORM
type GormTableRepository struct {
	db *gorm.DB
}

// NewGormTableRepository creates a new GormTableRepository
func NewGormTableRepository(db *gorm.DB) *GormTableRepository {
	return &GormTableRepository{db: db}
}

// FindByID finds a table by its ID
func (r *GormTableRepository) FindByID(ctx context.Context, id uuid.UUID) (*table.Table, error) {
	var model models.TableModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Table", "load table")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a table and locks its row until the transaction ends
func (r *GormTableRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*table.Table, error) {
	var model models.TableModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Table", "lock table")
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a table by its number
func (r *GormTableRepository) FindByNumber(ctx context.Context, number int) (*table.Table, error) {
	var model models.TableModel
	if err := r.db.WithContext(ctx).First(&model, "number = ?", number).Error; err != nil {
		return nil, translateError(err, "Table", "load table")
	}
	return model.ToDomain(), nil
}

// FindAll lists tables ordered by number
func (r *GormTableRepository) FindAll(ctx context.Context, status *table.TableStatus) ([]table.Table, error) {
	query := r.db.WithContext(ctx).Model(&models.TableModel{}).Order("number ASC")
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var rows []models.TableModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError(err, "Table", "list tables")
	}
	tables := make([]table.Table, len(rows))
	for i := range rows {
		tables[i] = *rows[i].ToDomain()
	}
	return tables, nil
}

// Create inserts a new table
func (r *GormTableRepository) Create(ctx context.Context, t *table.Table) error {
	if err := r.db.WithContext(ctx).Create(models.TableModelFromDomain(t)).Error; err != nil {
		return translateError(err, "Table number", "create table")
	}
	return nil
}

// SaveWithLock saves the table's state with an optimistic version check
func (r *GormTableRepository) SaveWithLock(ctx context.Context, t *table.Table) error {
	result := r.db.WithContext(ctx).
		Model(&models.TableModel{}).
		Where("id = ? AND version = ?", t.ID, t.Version-1).
		Updates(map[string]any{
			"status":           string(t.Status),
			"current_order_id": t.CurrentOrderID,
			"capacity":         t.Capacity,
			"location":         t.Location,
			"version":          t.Version,
			"updated_at":       t.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "Table", "save table")
	}
	if result.RowsAffected == 0 {
		return staleVersion("Table")
	}
	return nil
}

var _ table.TableRepository = (*GormTableRepository)(nil)
