package realtime

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// redisBroker carries feed and typing topics over Redis Pub/Sub so every
// connected process sees inserts committed by any of them.
type redisBroker struct {
	client *redis.Client
}

// NewRedisBroker wraps an existing go-redis client as a Broker.
func NewRedisBroker(client *redis.Client) Broker {
	return &redisBroker{client: client}
}

func (b *redisBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.client.Publish(ctx, topic, payload).Err()
}

func (b *redisBroker) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	pubsub := b.client.Subscribe(ctx, topic)
	// Receive forces the SUBSCRIBE round trip so events published after this
	// call returns are guaranteed to be delivered.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		events: make(chan []byte, subscriptionBuffer),
	}
	go sub.pump()
	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	events chan []byte
	once   sync.Once
}

func (s *redisSubscription) pump() {
	defer close(s.events)
	for msg := range s.pubsub.Channel() {
		s.events <- []byte(msg.Payload)
	}
}

func (s *redisSubscription) Events() <-chan []byte {
	return s.events
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		err = s.pubsub.Close()
	})
	return err
}
