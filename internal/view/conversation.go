package view

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hivemind/support-engine/internal/domain"
	"github.com/hivemind/support-engine/internal/feed"
	"github.com/hivemind/support-engine/internal/presence"
	"github.com/hivemind/support-engine/internal/readstate"
	apperrors "github.com/hivemind/support-engine/pkg/util/errorutil"
)

const (
	refetchAttempts = 3
	refetchBackoff  = 150 * time.Millisecond
)

// MessageLister is the authoritative point-in-time fetch backing a
// conversation. The live feed is supplementary to it, never a substitute.
type MessageLister interface {
	ListForTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.Message, error)
}

// Options configures one open conversation.
type Options struct {
	TicketID        string
	ViewerID        string
	IncludeInternal bool

	Lister   MessageLister
	Feed     *feed.Subscriber
	Presence *presence.Channel
	Tracker  *readstate.Tracker
	Logger   *zap.Logger

	// TypingTTL overrides the remote indicator expiry; zero uses the
	// presence channel's configured TTL.
	TypingTTL time.Duration
	// OnUpdate receives a snapshot of the ordered message list after every
	// change. May be nil.
	OnUpdate func([]domain.Message)
	// OnTyping receives remote typing transitions. May be nil.
	OnTyping func(bool)
	// OnDisruption fires when the feed cannot recover; the view shows a
	// retry affordance. May be nil.
	OnDisruption func(error)
}

// Conversation is an open ticket view: the initial fetch, the live change
// feed, the typing indicator, and the read watermark, kept consistent under
// arbitrary completion order.
type Conversation struct {
	opts      Options
	indicator *presence.Indicator

	mu       sync.Mutex
	ready    bool
	pending  []domain.Message
	seen     map[string]struct{}
	messages []domain.Message

	sub    *feed.Subscription
	typing *presence.Handle

	closeOnce sync.Once
}

// Open attaches to the ticket's feed and presence topics, then performs the
// authoritative fetch. Feed events arriving before the fetch resolves are
// buffered and merged, not dropped. Events committed before the
// subscription was established are only visible through the fetch; the feed
// does not backfill.
func Open(ctx context.Context, opts Options) (*Conversation, error) {
	c := &Conversation{
		opts: opts,
		seen: make(map[string]struct{}),
	}
	ttl := opts.TypingTTL
	if ttl == 0 && opts.Presence != nil {
		ttl = opts.Presence.IndicatorTTL()
	}
	c.indicator = presence.NewIndicator(ttl, opts.OnTyping)

	sub, err := opts.Feed.Subscribe(ctx, opts.TicketID, feed.Options{
		OnInsert: c.handleInsert,
		OnReset:  func() { c.refetch(ctx) },
		OnError:  c.handleDisruption,
	})
	if err != nil {
		return nil, err
	}
	c.sub = sub

	if opts.Presence != nil {
		typing, err := opts.Presence.Subscribe(ctx, opts.TicketID, opts.ViewerID, c.indicator)
		if err != nil {
			sub.Unsubscribe()
			return nil, err
		}
		c.typing = typing
	}

	if err := c.fetch(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.markRead()
	return c, nil
}

// Messages returns a copy of the current ordered message list.
func (c *Conversation) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// RemoteTyping reports whether a remote participant appears to be typing.
func (c *Conversation) RemoteTyping() bool {
	return c.indicator.Typing()
}

// Typing broadcasts the viewer's own typing signal. Called on every
// compose-field edit.
func (c *Conversation) Typing(ctx context.Context) error {
	if c.opts.Presence == nil {
		return nil
	}
	return c.opts.Presence.Typing(ctx, c.opts.TicketID, c.opts.ViewerID)
}

// Close tears the view down. Idempotent; safe while subscriptions are still
// establishing. Detached external calls are not cancelled — their results
// are simply discarded.
func (c *Conversation) Close() {
	c.closeOnce.Do(func() {
		if c.sub != nil {
			c.sub.Unsubscribe()
		}
		if c.typing != nil {
			c.typing.Unsubscribe()
		}
		c.indicator.Stop()
	})
}

func (c *Conversation) fetch(ctx context.Context) error {
	msgs, err := c.opts.Lister.ListForTicket(ctx, c.opts.TicketID, c.opts.IncludeInternal)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.messages = c.messages[:0]
	c.seen = make(map[string]struct{}, len(msgs))
	for _, msg := range msgs {
		c.appendLocked(msg)
	}
	// merge events that raced ahead of the fetch
	for _, msg := range c.pending {
		c.appendLocked(msg)
	}
	c.pending = nil
	c.ready = true
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snapshot)
	return nil
}

// refetch restores consistency after a feed gap: the subscription gives no
// replay, so the authoritative list is fetched again, with bounded retries.
// If every attempt fails, messages committed during the gap stay missing;
// live delivery resumes and OnDisruption fires so the view can offer a
// retry.
func (c *Conversation) refetch(ctx context.Context) {
	c.mu.Lock()
	c.ready = false
	c.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < refetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(refetchBackoff):
			}
		}
		if err := c.fetch(ctx); err != nil {
			lastErr = err
			c.opts.Logger.Warn("refetch after feed reset failed",
				zap.String("ticket_id", c.opts.TicketID),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}
		return
	}

	c.mu.Lock()
	for _, msg := range c.pending {
		c.appendLocked(msg)
	}
	c.pending = nil
	c.ready = true
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)

	c.handleDisruption(apperrors.NewChannelDisrupted(lastErr))
}

func (c *Conversation) handleInsert(msg domain.Message) {
	if msg.IsInternal && !c.opts.IncludeInternal {
		return
	}

	c.mu.Lock()
	if !c.ready {
		c.pending = append(c.pending, msg)
		c.mu.Unlock()
		return
	}
	added := c.appendLocked(msg)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	if !added {
		return
	}
	// a real send supersedes the sender's typing signal
	c.indicator.NoteMessage(msg.SenderID)
	c.markRead()
	c.notify(snapshot)
}

// appendLocked de-duplicates by id and keeps the canonical order. Returns
// false for duplicates.
func (c *Conversation) appendLocked(msg domain.Message) bool {
	if _, dup := c.seen[msg.ID]; dup {
		return false
	}
	c.seen[msg.ID] = struct{}{}
	c.messages = append(c.messages, msg)
	if n := len(c.messages); n > 1 && c.messages[n-1].Less(c.messages[n-2]) {
		domain.SortMessages(c.messages)
	}
	return true
}

func (c *Conversation) snapshotLocked() []domain.Message {
	out := make([]domain.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) markRead() {
	if c.opts.Tracker != nil {
		c.opts.Tracker.MarkRead(c.opts.ViewerID, c.opts.TicketID, time.Now())
	}
}

func (c *Conversation) notify(snapshot []domain.Message) {
	if c.opts.OnUpdate != nil {
		c.opts.OnUpdate(snapshot)
	}
}

func (c *Conversation) handleDisruption(err error) {
	c.opts.Logger.Warn("feed disrupted",
		zap.String("ticket_id", c.opts.TicketID),
		zap.Error(err))
	if c.opts.OnDisruption != nil {
		c.opts.OnDisruption(err)
	}
}
