package service

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/shop_api/internal/events"
	"github.com/Skotchmaster/shop_api/internal/logging"
	"github.com/Skotchmaster/shop_api/internal/metrics"
)

var ErrValidation = errors.New("validation")

// publishTimeout bounds the time a request spends handing an event to the
// publisher. The kafka producer only enqueues, so this is rarely reached.
const publishTimeout = time.Second

// Notifier publishes domain events after a commit. Failures are logged and
// counted but never fail the operation.
type Notifier struct {
	Events  events.Publisher
	Metrics *metrics.Metrics
}

func (n Notifier) publish(ctx context.Context, topic, key string, ev events.Event) {
	if n.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := n.Events.Publish(ctx, topic, key, ev); err != nil {
		n.Metrics.EventPublishFailed(topic)
		logging.FromContext(ctx).Error("event_publish_failed", "topic", topic, "type", ev.Type, "error", err)
	}
}
