package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hivemind/support-engine/internal/domain"
	"github.com/hivemind/support-engine/internal/realtime"
	apperrors "github.com/hivemind/support-engine/pkg/util/errorutil"
)

// Publish announces a committed message on its ticket's feed topic. Called
// after the insert transaction commits, so subscribers only ever see durable
// rows.
func Publish(ctx context.Context, broker realtime.Broker, msg domain.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return broker.Publish(ctx, realtime.FeedTopic(msg.TicketID), payload)
}

// Options configures one ticket subscription.
type Options struct {
	// OnInsert receives each committed message published after the
	// subscription was established. Delivery is at-least-once; consumers
	// de-duplicate by message id and re-sort by (created_at, id).
	OnInsert func(domain.Message)
	// OnReset fires after the subscription recovers from a drop. Events may
	// have been missed during the gap, so the consumer must refetch the
	// authoritative message list.
	OnReset func()
	// OnError fires once when reconnect retries are exhausted.
	OnError func(error)
}

// Subscriber maintains live per-ticket subscriptions over the broker.
type Subscriber struct {
	broker     realtime.Broker
	logger     *zap.Logger
	maxRetries int
	backoff    time.Duration
}

// NewSubscriber builds a Subscriber with default reconnect policy.
func NewSubscriber(broker realtime.Broker, logger *zap.Logger) *Subscriber {
	return &Subscriber{
		broker:     broker,
		logger:     logger,
		maxRetries: 5,
		backoff:    200 * time.Millisecond,
	}
}

// Subscription is a handle for one live ticket feed.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Unsubscribe releases the connection. Idempotent and safe during teardown
// even if the subscribe loop is still establishing.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
	})
}

// Done is closed once the subscription loop has fully stopped.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Subscribe attaches to a ticket's change feed. Messages inserted before
// establishment are not backfilled; the caller fetches the existing list via
// MessageLog first.
func (s *Subscriber) Subscribe(ctx context.Context, ticketID string, opts Options) (*Subscription, error) {
	topic := realtime.FeedTopic(ticketID)
	inner, err := s.broker.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go s.run(runCtx, topic, inner, opts, sub.done)
	return sub, nil
}

func (s *Subscriber) run(ctx context.Context, topic string, inner realtime.Subscription, opts Options, done chan struct{}) {
	defer close(done)
	defer func() { _ = inner.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-inner.Events():
			if !ok {
				// channel dropped; silent reconnect, then force a refetch
				replacement, err := s.reconnect(ctx, topic)
				if err != nil {
					if opts.OnError != nil && ctx.Err() == nil {
						opts.OnError(apperrors.NewChannelDisrupted(err))
					}
					return
				}
				_ = inner.Close()
				inner = replacement
				if opts.OnReset != nil {
					opts.OnReset()
				}
				continue
			}
			var msg domain.Message
			if err := json.Unmarshal(payload, &msg); err != nil {
				s.logger.Warn("feed payload unreadable", zap.String("topic", topic), zap.Error(err))
				continue
			}
			if opts.OnInsert != nil {
				opts.OnInsert(msg)
			}
		}
	}
}

func (s *Subscriber) reconnect(ctx context.Context, topic string) (realtime.Subscription, error) {
	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.backoff * time.Duration(attempt+1)):
		}
		sub, err := s.broker.Subscribe(ctx, topic)
		if err == nil {
			s.logger.Info("feed resubscribed", zap.String("topic", topic), zap.Int("attempt", attempt+1))
			return sub, nil
		}
		lastErr = err
		s.logger.Warn("feed resubscribe failed", zap.String("topic", topic), zap.Error(err))
	}
	return nil, lastErr
}
