package domain

// TypingEvent is the ephemeral presence signal broadcast while a viewer
// edits the compose field. Never persisted; consumed once by each live
// subscriber and expired client-side after a fixed timeout.
type TypingEvent struct {
	TicketID string `json:"ticket_id"`
	SenderID string `json:"sender_id"`
}
