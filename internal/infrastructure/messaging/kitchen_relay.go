package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/tablekit/backoffice/internal/domain/order"
	"github.com/tablekit/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// KitchenRoutingKeyPrefix starts every kitchen routing key, e.g. kitchen.preparing
const KitchenRoutingKeyPrefix = "kitchen."

const publishTimeout = 5 * time.Second

// KitchenTicket is the message body sent to the kitchen display
type KitchenTicket struct {
	EventID     uuid.UUID         `json:"event_id"`
	EventType   string            `json:"event_type"`
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	TableID     uuid.UUID         `json:"table_id"`
	Status      string            `json:"status"`
	From        string            `json:"from,omitempty"`
	TotalAmount *decimal.Decimal  `json:"total_amount,omitempty"`
	Items       []KitchenLineItem `json:"items,omitempty"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

// KitchenLineItem is a line on a new ticket
type KitchenLineItem struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
	Notes      string    `json:"notes,omitempty"`
}

// KitchenRelay forwards order events to the kitchen over RabbitMQ
type KitchenRelay struct {
	publisher Publisher
	exchange  string
	logger    *zap.Logger
}

// NewKitchenRelay creates a relay publishing to exchange
func NewKitchenRelay(publisher Publisher, exchange string, logger *zap.Logger) *KitchenRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KitchenRelay{
		publisher: publisher,
		exchange:  exchange,
		logger:    logger.Named("kitchen_relay"),
	}
}

// EventTypes returns the order events the kitchen cares about
func (r *KitchenRelay) EventTypes() []string {
	return []string{order.EventTypeOrderCreated, order.EventTypeOrderStatusChanged}
}

// Handle publishes a ticket for an order event
func (r *KitchenRelay) Handle(ctx context.Context, event shared.DomainEvent) error {
	ticket, ok := ticketFor(event)
	if !ok {
		return nil
	}

	body, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("failed to encode kitchen ticket: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	routingKey := KitchenRoutingKeyPrefix + ticket.Status
	err = r.publisher.Publish(ctx, r.exchange, routingKey, amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		MessageId:     ticket.EventID.String(),
		CorrelationId: ticket.OrderNumber,
		Timestamp:     ticket.OccurredAt.UTC(),
		Type:          ticket.EventType,
		Body:          body,
	})
	if err != nil {
		return err
	}

	r.logger.Debug("kitchen ticket published",
		zap.String("routing_key", routingKey),
		zap.String("order_number", ticket.OrderNumber),
	)
	return nil
}

func ticketFor(event shared.DomainEvent) (KitchenTicket, bool) {
	switch e := event.(type) {
	case *order.OrderCreatedEvent:
		items := make([]KitchenLineItem, len(e.Lines))
		for i, l := range e.Lines {
			items[i] = KitchenLineItem{MenuItemID: l.MenuItemID, Quantity: l.Quantity, Notes: l.Notes}
		}
		total := e.TotalAmount
		return KitchenTicket{
			EventID:     e.EventID(),
			EventType:   e.EventType(),
			OrderID:     e.OrderID,
			OrderNumber: e.OrderNumber,
			TableID:     e.TableID,
			Status:      order.StatusPending.String(),
			TotalAmount: &total,
			Items:       items,
			OccurredAt:  e.OccurredAt(),
		}, true
	case *order.OrderStatusChangedEvent:
		return KitchenTicket{
			EventID:     e.EventID(),
			EventType:   e.EventType(),
			OrderID:     e.OrderID,
			OrderNumber: e.OrderNumber,
			TableID:     e.TableID,
			Status:      e.To.String(),
			From:        e.From.String(),
			OccurredAt:  e.OccurredAt(),
		}, true
	}
	return KitchenTicket{}, false
}

var _ shared.EventHandler = (*KitchenRelay)(nil)
