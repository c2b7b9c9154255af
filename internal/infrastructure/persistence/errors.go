package persistence

import (
	"errors"

	"github.com/tablekit/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps store errors onto domain errors. resource names the
// missing entity and op describes the failed operation.
func translateError(err error, resource, op string) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewNotFoundError(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewConflictError(resource + " already exists")
	}
	return shared.NewPersistenceError(op, err)
}

// staleVersion is returned when an optimistic save matched no row
func staleVersion(resource string) error {
	return shared.NewConflictError(resource + " was modified by another transaction")
}
