package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConfirmation struct {
	acked bool
	err   error
	block bool
}

func (f fakeConfirmation) WaitContext(ctx context.Context) (bool, error) {
	if f.block {
		<-ctx.Done()
		return false, ctx.Err()
	}
	return f.acked, f.err
}

func TestAwaitConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("ack", func(t *testing.T) {
		assert.NoError(t, awaitConfirm(ctx, fakeConfirmation{acked: true}, "orders_topic", "kitchen.pending"))
	})

	t.Run("nack", func(t *testing.T) {
		err := awaitConfirm(ctx, fakeConfirmation{acked: false}, "orders_topic", "kitchen.pending")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rejected")
		assert.Contains(t, err.Error(), "orders_topic/kitchen.pending")
	})

	t.Run("deadline before confirm", func(t *testing.T) {
		timeout, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()

		err := awaitConfirm(timeout, fakeConfirmation{block: true}, "orders_topic", "kitchen.ready")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
