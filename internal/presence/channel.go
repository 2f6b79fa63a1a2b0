package presence

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hivemind/support-engine/internal/domain"
	"github.com/hivemind/support-engine/internal/realtime"
)

// Channel broadcasts and consumes ephemeral typing signals for tickets.
// Nothing is persisted and nothing is guaranteed: a dropped event only makes
// the remote indicator go dark a little early.
type Channel struct {
	broker realtime.Broker
	ttl    time.Duration
	logger *zap.Logger
}

// NewChannel builds a presence channel over the given broker. ttl is the
// deployment's typing-indicator expiry; zero or negative uses
// DefaultTypingTTL.
func NewChannel(broker realtime.Broker, ttl time.Duration, logger *zap.Logger) *Channel {
	if ttl <= 0 {
		ttl = DefaultTypingTTL
	}
	return &Channel{broker: broker, ttl: ttl, logger: logger}
}

// IndicatorTTL returns the expiry indicators built from this channel use.
func (c *Channel) IndicatorTTL() time.Duration {
	return c.ttl
}

// NewIndicator builds a remote typing indicator with the channel's TTL.
func (c *Channel) NewIndicator(onChange func(bool)) *Indicator {
	return NewIndicator(c.ttl, onChange)
}

// Typing broadcasts a typing signal for the sender on the ticket's topic.
// Emitted on every compose-field edit; not debounced at the send layer.
func (c *Channel) Typing(ctx context.Context, ticketID, senderID string) error {
	payload, err := json.Marshal(domain.TypingEvent{TicketID: ticketID, SenderID: senderID})
	if err != nil {
		return err
	}
	return c.broker.Publish(ctx, realtime.TypingTopic(ticketID), payload)
}

// Handle is a live attachment to one ticket's typing topic.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Unsubscribe detaches. Idempotent and safe during teardown.
func (h *Handle) Unsubscribe() {
	h.once.Do(func() {
		h.cancel()
	})
}

// Done is closed once the consume loop has stopped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Subscribe feeds remote typing events for the ticket into the indicator.
// Events carrying selfID are the viewer's own broadcasts and are ignored.
func (c *Channel) Subscribe(ctx context.Context, ticketID, selfID string, indicator *Indicator) (*Handle, error) {
	sub, err := c.broker.Subscribe(ctx, realtime.TypingTopic(ticketID))
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	handle := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(handle.done)
		defer sub.Close()
		for {
			select {
			case <-runCtx.Done():
				return
			case payload, ok := <-sub.Events():
				if !ok {
					// best-effort channel; no reconnect dance for presence
					return
				}
				var event domain.TypingEvent
				if err := json.Unmarshal(payload, &event); err != nil {
					c.logger.Debug("typing payload unreadable", zap.Error(err))
					continue
				}
				if event.SenderID == selfID {
					continue
				}
				indicator.Note(event.SenderID)
			}
		}
	}()

	return handle, nil
}
