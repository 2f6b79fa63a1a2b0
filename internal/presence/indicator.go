package presence

import (
	"sync"
	"time"
)

// DefaultTypingTTL is how long the remote indicator stays lit without a
// fresh typing event.
const DefaultTypingTTL = 3 * time.Second

// Indicator is the per-viewer, per-ticket remote typing state machine:
// idle → typing on each received event, typing → idle when the TTL elapses
// without another event or when the typing sender commits a real message.
type Indicator struct {
	mu       sync.Mutex
	ttl      time.Duration
	timer    *time.Timer
	gen      uint64
	typing   bool
	sender   string
	onChange func(bool)
}

// NewIndicator builds an indicator. onChange may be nil; when set it is
// invoked on every idle/typing transition (not on restarts of the timer).
func NewIndicator(ttl time.Duration, onChange func(bool)) *Indicator {
	if ttl <= 0 {
		ttl = DefaultTypingTTL
	}
	return &Indicator{ttl: ttl, onChange: onChange}
}

// Note records a typing event from a remote sender: transitions to typing
// and restarts the expiry timer.
func (i *Indicator) Note(senderID string) {
	i.mu.Lock()
	i.sender = senderID
	wasTyping := i.typing
	i.typing = true
	if i.timer != nil {
		i.timer.Stop()
	}
	// A stopped timer may already have fired and be blocked on the mutex;
	// the generation lets that stale expiry recognize it was superseded.
	i.gen++
	gen := i.gen
	i.timer = time.AfterFunc(i.ttl, func() { i.expire(gen) })
	i.mu.Unlock()

	if !wasTyping && i.onChange != nil {
		i.onChange(true)
	}
}

// NoteMessage records a committed message. A real send from the sender who
// was typing supersedes the typing signal and forces idle immediately.
func (i *Indicator) NoteMessage(senderID string) {
	i.mu.Lock()
	if !i.typing || i.sender != senderID {
		i.mu.Unlock()
		return
	}
	i.setIdleLocked()
	i.mu.Unlock()

	if i.onChange != nil {
		i.onChange(false)
	}
}

// Typing reports the current remote indicator state.
func (i *Indicator) Typing() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.typing
}

// Stop halts the expiry timer during teardown.
func (i *Indicator) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
}

func (i *Indicator) expire(gen uint64) {
	i.mu.Lock()
	if !i.typing || gen != i.gen {
		i.mu.Unlock()
		return
	}
	i.setIdleLocked()
	i.mu.Unlock()

	if i.onChange != nil {
		i.onChange(false)
	}
}

func (i *Indicator) setIdleLocked() {
	i.typing = false
	i.sender = ""
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
}
