package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusResolved TicketStatus = "resolved"
	TicketStatusClosed   TicketStatus = "closed"
)

// TicketPriority enumerates triage urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketSentiment is assigned asynchronously by the triage pipeline.
// A nil pointer on Ticket means the ticket has not been classified yet.
type TicketSentiment string

const (
	SentimentPositive TicketSentiment = "positive"
	SentimentNeutral  TicketSentiment = "neutral"
	SentimentNegative TicketSentiment = "negative"
)

// Ticket is the aggregate for support conversations.
type Ticket struct {
	ID         string           `json:"id"`
	CustomerID string           `json:"customer_id"`
	Subject    string           `json:"subject"`
	Status     TicketStatus     `json:"status"`
	Priority   TicketPriority   `json:"priority"`
	Sentiment  *TicketSentiment `json:"sentiment"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// ValidStatus reports whether s is one of the enumerated statuses.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the enumerated priorities.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// ValidSentiment reports whether s is one of the enumerated sentiments.
func ValidSentiment(s TicketSentiment) bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}
