package notify

import (
	"context"
	"fmt"
	"log/slog"

	evbus "github.com/asaskevich/EventBus"

	"pledge-escrow/internal/core/domain"
)

// Sink consumes committed escrow events.
type Sink interface {
	Name() string
	Handle(ctx context.Context, e domain.Event)
}

// allTopics carries every event for async sinks. EventBus orders async
// deliveries per subscription only, so an async sink holds a single one.
const allTopics = "escrow.*"

// Bus implements port.Notifier on top of an EventBus. Every event is
// published under its topic and under allTopics.
type Bus struct {
	bus    evbus.Bus
	logger *slog.Logger
}

// NewBus returns a bus without sinks.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{bus: evbus.New(), logger: logger}
}

// Subscribe attaches sink to every escrow topic. Async sinks receive events
// in publish order on their own goroutine. Delivery is serialized per sink,
// so a Publish waits while the sink is still handling the previous event.
func (b *Bus) Subscribe(sink Sink, async bool) error {
	if async {
		if err := b.bus.SubscribeAsync(allTopics, sink.Handle, true); err != nil {
			return fmt.Errorf("subscribe %s: %w", sink.Name(), err)
		}
	} else {
		for _, topic := range domain.Topics {
			if err := b.bus.Subscribe(topic, sink.Handle); err != nil {
				return fmt.Errorf("subscribe %s to %s: %w", sink.Name(), topic, err)
			}
		}
	}
	b.logger.Debug("sink subscribed", slog.String("sink", sink.Name()), slog.Bool("async", async))
	return nil
}

// Publish implements port.Notifier. The request context is detached from
// its cancellation so async sinks can finish after the request returns.
func (b *Bus) Publish(ctx context.Context, e domain.Event) {
	ctx = context.WithoutCancel(ctx)
	for _, topic := range []string{e.Topic(), allTopics} {
		if b.bus.HasCallback(topic) {
			b.bus.Publish(topic, ctx, e)
		}
	}
}

// Close waits for async sinks to drain.
func (b *Bus) Close() {
	b.bus.WaitAsync()
}
