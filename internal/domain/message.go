package domain

import (
	"sort"
	"time"
)

// GroupGap is the largest timestamp gap between two adjacent messages from
// the same sender that still places them in the same visual group.
const GroupGap = 2 * time.Minute

// Message is one immutable entry in a ticket's ordered conversation log.
// Once committed a message is never mutated or deleted.
type Message struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	SenderID    string    `json:"sender_id"`
	Content     string    `json:"content"`
	Attachments []string  `json:"attachments,omitempty"`
	IsInternal  bool      `json:"is_internal"`
	CreatedAt   time.Time `json:"created_at"`
}

// Less reports whether m precedes other in the canonical conversation order.
// The ordering key is (created_at, id) ascending; the id tiebreak gives a
// deterministic total order when two messages share a timestamp.
func (m Message) Less(other Message) bool {
	if m.CreatedAt.Equal(other.CreatedAt) {
		return m.ID < other.ID
	}
	return m.CreatedAt.Before(other.CreatedAt)
}

// SameGroup reports whether two adjacent messages belong to the same visual
// group: same sender and less than GroupGap between their timestamps. Group
// boundaries only affect presentation and unread boundaries, never ordering
// or persistence.
func SameGroup(a, b Message) bool {
	if a.SenderID != b.SenderID {
		return false
	}
	gap := b.CreatedAt.Sub(a.CreatedAt)
	if gap < 0 {
		gap = -gap
	}
	return gap < GroupGap
}

// SortMessages orders msgs in place by the canonical (created_at, id) key.
// Consumers re-sort after any feed gap or reconnect.
func SortMessages(msgs []Message) {
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].Less(msgs[j])
	})
}
