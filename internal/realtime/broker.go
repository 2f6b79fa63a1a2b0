package realtime

import "context"

// FeedTopic is the per-ticket channel carrying committed message inserts.
func FeedTopic(ticketID string) string {
	return "ticket:feed:" + ticketID
}

// TypingTopic is the per-ticket channel carrying ephemeral typing signals.
func TypingTopic(ticketID string) string {
	return "ticket:typing:" + ticketID
}

// Broker is a narrow publish/subscribe transport: topic-keyed, payload
// opaque, no durability and no delivery guarantee. The change feed and the
// presence channel share it so a transport swap never touches message
// persistence logic.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}

// Subscription is a live attachment to one topic. Close is idempotent and
// safe to call during teardown even while a receive is in flight.
type Subscription interface {
	// Events yields payloads published after the subscription was
	// established. The channel is closed when the subscription ends.
	Events() <-chan []byte
	Close() error
}
