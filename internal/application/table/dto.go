package table

import (
	"time"

	"github.com/google/uuid"
	"github.com/tablekit/backoffice/internal/domain/table"
)

// CreateTableRequest registers a dining table
type CreateTableRequest struct {
	Number   int    `json:"number" binding:"required,gt=0"`
	Capacity int    `json:"capacity" binding:"required,gt=0"`
	Location string `json:"location" binding:"max=100"`
}

// OccupyTableRequest seats guests, optionally for an existing order
type OccupyTableRequest struct {
	OrderID *uuid.UUID `json:"order_id"`
}

// SetStatusRequest is a manual status override
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available occupied reserved maintenance"`
}

// TableResponse represents a table in API responses
type TableResponse struct {
	ID             uuid.UUID  `json:"id"`
	Number         int        `json:"number"`
	Capacity       int        `json:"capacity"`
	Location       string     `json:"location,omitempty"`
	Status         string     `json:"status"`
	CurrentOrderID *uuid.UUID `json:"current_order_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Version        int        `json:"version"`
}

// ToTableResponse converts a domain table to its response
func ToTableResponse(t *table.Table) TableResponse {
	return TableResponse{
		ID:             t.ID,
		Number:         t.Number,
		Capacity:       t.Capacity,
		Location:       t.Location,
		Status:         t.Status.String(),
		CurrentOrderID: t.CurrentOrderID,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		Version:        t.Version,
	}
}

// ToTableResponses converts a list of tables
func ToTableResponses(tables []table.Table) []TableResponse {
	out := make([]TableResponse, len(tables))
	for i := range tables {
		out[i] = ToTableResponse(&tables[i])
	}
	return out
}
