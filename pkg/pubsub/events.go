// pkg/pubsub/events.go
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/arkanlabs/shopgate/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventTypeOrderCreated is the attribute value stamped on order creation events.
const EventTypeOrderCreated = "order.created"

// OrderCreatedEvent is the payload published after an order is committed.
type OrderCreatedEvent struct {
	Version     int             `json:"version"`
	EventID     string          `json:"eventId"`
	OccurredAt  time.Time       `json:"occurredAt"`
	OrderID     string          `json:"orderId"`
	UserID      string          `json:"userId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	LineCount   int             `json:"lineCount"`
}

// OrderEvents publishes order lifecycle events to the order events topic.
type OrderEvents struct {
	pub  *pubsub.Publisher
	logg *logger.Logger
}

// NewOrderEvents wires the order events publisher from an initialized client.
func NewOrderEvents(client *Client, logg *logger.Logger) (*OrderEvents, error) {
	if client == nil {
		return nil, errors.New("pubsub client is required")
	}
	pub := client.OrderEventsPublisher()
	if pub == nil {
		return nil, errNoTopic
	}
	return &OrderEvents{pub: pub, logg: logg}, nil
}

// OrderCreated publishes an order.created event and waits for the server ack.
func (p *OrderEvents) OrderCreated(ctx context.Context, orderID, userID string, total decimal.Decimal, lineCount int) error {
	evt := OrderCreatedEvent{
		Version:     1,
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		OrderID:     orderID,
		UserID:      userID,
		TotalAmount: total,
		LineCount:   lineCount,
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encoding order created event: %w", err)
	}

	res := p.pub.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"eventType": EventTypeOrderCreated,
		},
	})

	id, err := res.Get(ctx)
	if err != nil {
		return fmt.Errorf("publishing order created event: %w", err)
	}

	if p.logg != nil {
		p.logg.Info(p.logg.WithFields(ctx, map[string]any{
			"messageId": id,
			"orderId":   orderID,
		}), "order created event published")
	}
	return nil
}
