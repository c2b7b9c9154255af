package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tablekit/backoffice/internal/domain/order"
)

// OrderModel is the persistence model for the Order aggregate root
type OrderModel struct {
	AggregateModel
	OrderNumber string           `gorm:"type:varchar(30);not null;uniqueIndex:idx_orders_order_number"`
	TableID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	CustomerID  *uuid.UUID       `gorm:"type:uuid"`
	Status      string           `gorm:"type:varchar(20);not null;default:'pending';index"`
	TotalAmount decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	StaffID     uuid.UUID        `gorm:"type:uuid;not null"`
	Items       []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the persistence model for an order line
type OrderItemModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	MenuItemID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Notes      string          `gorm:"type:text"`
	CreatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	lines := make([]order.OrderLine, len(m.Items))
	for i, item := range m.Items {
		lines[i] = order.OrderLine{
			ID:         item.ID,
			OrderID:    item.OrderID,
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Notes:      item.Notes,
			CreatedAt:  item.CreatedAt,
		}
	}
	return &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		TableID:           m.TableID,
		CustomerID:        m.CustomerID,
		Status:            order.OrderStatus(m.Status),
		TotalAmount:       m.TotalAmount,
		StaffID:           m.StaffID,
		Lines:             lines,
	}
}

// OrderModelFromDomain creates a persistence model, lines included, from a domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		OrderNumber: o.OrderNumber,
		TableID:     o.TableID,
		CustomerID:  o.CustomerID,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount,
		StaffID:     o.StaffID,
		Items:       make([]OrderItemModel, len(o.Lines)),
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	for i, l := range o.Lines {
		m.Items[i] = OrderItemModel{
			ID:         l.ID,
			OrderID:    o.ID,
			MenuItemID: l.MenuItemID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			Notes:      l.Notes,
			CreatedAt:  l.CreatedAt,
		}
	}
	return m
}
