package models

import (
	"github.com/google/uuid"
	"github.com/tablekit/backoffice/internal/domain/table"
)

// TableModel is the persistence model for the Table aggregate root
type TableModel struct {
	AggregateModel
	Number         int        `gorm:"not null;uniqueIndex:idx_tables_number"`
	Capacity       int        `gorm:"not null"`
	Location       string     `gorm:"type:varchar(100)"`
	Status         string     `gorm:"type:varchar(20);not null;default:'available';index"`
	CurrentOrderID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (TableModel) TableName() string {
	return "tables"
}

// ToDomain converts the persistence model to a domain Table
func (m *TableModel) ToDomain() *table.Table {
	return &table.Table{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		Capacity:          m.Capacity,
		Location:          m.Location,
		Status:            table.TableStatus(m.Status),
		CurrentOrderID:    m.CurrentOrderID,
	}
}

// TableModelFromDomain creates a persistence model from a domain Table
func TableModelFromDomain(t *table.Table) *TableModel {
	m := &TableModel{
		Number:         t.Number,
		Capacity:       t.Capacity,
		Location:       t.Location,
		Status:         string(t.Status),
		CurrentOrderID: t.CurrentOrderID,
	}
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	return m
}
