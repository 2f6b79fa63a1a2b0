package realtime

import (
	"context"
	"sync"
)

// memoryBroker is an in-process broker used by tests and single-node runs.
// Delivery is in publish order per topic; subscribers that fall behind past
// their buffer drop events, matching the best-effort contract.
type memoryBroker struct {
	mu     sync.RWMutex
	topics map[string][]*memorySubscription
}

// NewMemoryBroker creates an in-process Broker.
func NewMemoryBroker() Broker {
	return &memoryBroker{topics: make(map[string][]*memorySubscription)}
}

const subscriptionBuffer = 64

type memorySubscription struct {
	broker *memoryBroker
	topic  string

	mu     sync.Mutex
	events chan []byte
	closed bool
}

func (b *memoryBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	subs := append([]*memorySubscription{}, b.topics[topic]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.deliver(payload)
	}
	return nil
}

func (b *memoryBroker) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	sub := &memorySubscription{
		broker: b,
		topic:  topic,
		events: make(chan []byte, subscriptionBuffer),
	}
	b.mu.Lock()
	b.topics[topic] = append(b.topics[topic], sub)
	b.mu.Unlock()
	return sub, nil
}

func (b *memoryBroker) remove(sub *memorySubscription) {
	b.mu.Lock()
	subs := b.topics[sub.topic]
	for i, candidate := range subs {
		if candidate == sub {
			b.topics[sub.topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	b.mu.Unlock()
}

// deliver hands the payload to the subscriber. Sending and closing both
// happen under the subscription mutex, so a publish racing Close never
// reaches a closed channel.
func (s *memorySubscription) deliver(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- payload:
	default:
		// subscriber is not draining; drop rather than block the publisher
	}
}

func (s *memorySubscription) Events() <-chan []byte {
	return s.events
}

func (s *memorySubscription) Close() error {
	s.broker.remove(s)

	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	s.mu.Unlock()
	return nil
}
