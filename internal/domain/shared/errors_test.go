package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewNotFoundError("Order")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "Order not found", err.Error())
}

func TestDomainError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("create order: %w", NewConflictError("Table is busy"))

	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, CodeConflict, ErrorCode(err))
}

func TestNewPersistenceError_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistenceError("save order", cause)

	assert.Equal(t, "Failed to save order", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestErrorCode_NonDomainError(t *testing.T) {
	assert.Equal(t, "", ErrorCode(errors.New("boom")))
	assert.Equal(t, "", ErrorCode(nil))
}

func TestNewInvalidTransitionError(t *testing.T) {
	err := NewInvalidTransitionError("order", "paid", "pending")

	assert.Equal(t, CodeInvalidTransition, err.Code)
	assert.Equal(t, "Cannot move order from paid to pending", err.Message)
}
