package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/threadkart/threadkart-backend/pkg/config"
	"github.com/threadkart/threadkart-backend/pkg/logger"
	"github.com/threadkart/threadkart-backend/pkg/pubsub"
	"go.uber.org/multierr"
)

// Publisher emits domain events after the owning transaction has committed.
// Publish failures must never affect the committed state; implementations log
// and move on.
type Publisher interface {
	OrderCreated(ctx context.Context, payload OrderCreated)
	ItemStatusUpdated(ctx context.Context, payload ItemStatusUpdated)
	Close() error
}

// PubSubPublisher publishes envelopes to the configured Pub/Sub topics.
type PubSubPublisher struct {
	orderCreated      *gcppubsub.Publisher
	itemStatusUpdated *gcppubsub.Publisher
	timeout           time.Duration
	logg              *logger.Logger
}

// NewPubSubPublisher wires topic publishers from the shared Pub/Sub client.
func NewPubSubPublisher(client *pubsub.Client, cfg config.PubSubConfig, logg *logger.Logger) (*PubSubPublisher, error) {
	orderCreated := client.OrderCreatedPublisher()
	if orderCreated == nil {
		return nil, fmt.Errorf("order created topic %q not configured", cfg.OrderCreatedTopic)
	}
	itemStatus := client.ItemStatusUpdatedPublisher()
	if itemStatus == nil {
		return nil, fmt.Errorf("item status topic %q not configured", cfg.ItemStatusUpdatedTopic)
	}

	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &PubSubPublisher{
		orderCreated:      orderCreated,
		itemStatusUpdated: itemStatus,
		timeout:           timeout,
		logg:              logg,
	}, nil
}

// OrderCreated publishes a checkout announcement. Errors are logged, not returned.
func (p *PubSubPublisher) OrderCreated(ctx context.Context, payload OrderCreated) {
	p.publish(ctx, p.orderCreated, TypeOrderCreated, payload)
}

// ItemStatusUpdated publishes a fulfillment transition. Errors are logged, not returned.
func (p *PubSubPublisher) ItemStatusUpdated(ctx context.Context, payload ItemStatusUpdated) {
	p.publish(ctx, p.itemStatusUpdated, TypeItemStatusUpdated, payload)
}

func (p *PubSubPublisher) publish(ctx context.Context, topic *gcppubsub.Publisher, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logg.Error(ctx, fmt.Sprintf("marshaling %s payload", eventType), err)
		return
	}

	envelope := Envelope{
		Version:    1,
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		p.logg.Error(ctx, fmt.Sprintf("marshaling %s envelope", eventType), err)
		return
	}

	// Detach from the request context so an already-finished request cannot
	// cancel the publish, but still bound the wait.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	result := topic.Publish(pubCtx, &gcppubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"eventType": eventType,
			"eventId":   envelope.EventID,
		},
	})
	if _, err := result.Get(pubCtx); err != nil {
		p.logg.Error(ctx, fmt.Sprintf("publishing %s event", eventType), err)
	}
}

// Close flushes both topic publishers.
func (p *PubSubPublisher) Close() error {
	var err error
	for _, topic := range []*gcppubsub.Publisher{p.orderCreated, p.itemStatusUpdated} {
		if topic == nil {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = multierr.Append(err, fmt.Errorf("stopping publisher: %v", r))
				}
			}()
			topic.Stop()
		}()
	}
	return err
}

// LogPublisher writes events to the log only. Used in dev when Pub/Sub is off.
type LogPublisher struct {
	logg *logger.Logger
}

// NewLogPublisher returns a publisher that records events in the service log.
func NewLogPublisher(logg *logger.Logger) *LogPublisher {
	return &LogPublisher{logg: logg}
}

func (p *LogPublisher) OrderCreated(ctx context.Context, payload OrderCreated) {
	p.logg.Info(ctx, fmt.Sprintf("event %s order=%s sellers=%d", TypeOrderCreated, payload.OrderID, len(payload.SellerOrders)))
}

func (p *LogPublisher) ItemStatusUpdated(ctx context.Context, payload ItemStatusUpdated) {
	p.logg.Info(ctx, fmt.Sprintf("event %s item=%s %s->%s", TypeItemStatusUpdated, payload.OrderItemID, payload.PreviousStatus, payload.NewStatus))
}

func (p *LogPublisher) Close() error { return nil }
