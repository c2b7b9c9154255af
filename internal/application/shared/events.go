package shared

import (
	"context"

	domain "github.com/tablekit/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// EventDispatcher publishes aggregate events once their transaction has
// committed. A nil publisher drops events.
type EventDispatcher struct {
	publisher domain.EventPublisher
	logger    *zap.Logger
}

// NewEventDispatcher creates an EventDispatcher
func NewEventDispatcher(publisher domain.EventPublisher, logger *zap.Logger) *EventDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventDispatcher{publisher: publisher, logger: logger}
}

// SetPublisher replaces the publisher
func (d *EventDispatcher) SetPublisher(publisher domain.EventPublisher) {
	d.publisher = publisher
}

// Dispatch publishes and clears the pending events of each aggregate.
// Publishing failures are logged; the committed state change stands.
func (d *EventDispatcher) Dispatch(ctx context.Context, aggregates ...domain.AggregateRoot) {
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		events := agg.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		if d.publisher != nil {
			if err := d.publisher.Publish(ctx, events...); err != nil {
				d.logger.Error("failed to publish domain events",
					zap.Int("count", len(events)),
					zap.Error(err),
				)
			}
		}
		agg.ClearDomainEvents()
	}
}
