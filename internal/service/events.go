package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/ecommerce_api/pkg/events"
	"github.com/Skotchmaster/ecommerce_api/pkg/logging"
)

const publishTimeout = 5 * time.Second

// publish sends ev after the change is committed. Failures are logged only.
func publish(ctx context.Context, pub events.Publisher, topic, key string, ev events.Event) {
	if pub == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := pub.Publish(pctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "topic", topic, "type", ev.Type, "error", err)
	}
}
