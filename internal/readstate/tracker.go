package readstate

import (
	"time"

	"github.com/hivemind/support-engine/internal/domain"
)

// Tracker keeps per-(viewer,ticket) read watermarks on the viewing device.
// A watermark records "last viewed", not a merged high-water mark: MarkRead
// overwrites unconditionally, and watermarks are never synchronized across
// devices.
type Tracker struct {
	store KV
}

// NewTracker builds a tracker over the injected KV store.
func NewTracker(store KV) *Tracker {
	return &Tracker{store: store}
}

func watermarkKey(viewerID, ticketID string) string {
	return "last_read:" + viewerID + ":" + ticketID
}

// MarkRead overwrites the watermark with at. Called on every ticket-view
// mount and on every inbound message while that ticket is the active view.
// An earlier time than the existing watermark is allowed.
func (t *Tracker) MarkRead(viewerID, ticketID string, at time.Time) {
	t.store.Set(watermarkKey(viewerID, ticketID), at.UTC().Format(time.RFC3339Nano))
}

// Watermark returns the stored watermark, if any.
func (t *Tracker) Watermark(viewerID, ticketID string) (time.Time, bool) {
	raw, ok := t.store.Get(watermarkKey(viewerID, ticketID))
	if !ok {
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		// unreadable watermark is treated as absent
		t.store.Remove(watermarkKey(viewerID, ticketID))
		return time.Time{}, false
	}
	return at, true
}

// IsUnread reports whether lastMessage makes the ticket unread for the
// viewer: the message is from someone else and is newer than the watermark
// (or no watermark exists).
func (t *Tracker) IsUnread(viewerID, ticketID string, lastMessage *domain.Message) bool {
	if lastMessage == nil || lastMessage.SenderID == viewerID {
		return false
	}
	watermark, ok := t.Watermark(viewerID, ticketID)
	if !ok {
		return true
	}
	return lastMessage.CreatedAt.After(watermark)
}

// Forget removes the watermark for a ticket.
func (t *Tracker) Forget(viewerID, ticketID string) {
	t.store.Remove(watermarkKey(viewerID, ticketID))
}
