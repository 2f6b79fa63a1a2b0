package dto

import (
	"time"

	"github.com/hivemind/support-engine/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// TicketResponse is the wire shape of a ticket.
type TicketResponse struct {
	ID         string                  `json:"id"`
	CustomerID string                  `json:"customer_id"`
	Subject    string                  `json:"subject"`
	Status     domain.TicketStatus     `json:"status"`
	Priority   domain.TicketPriority   `json:"priority"`
	Sentiment  *domain.TicketSentiment `json:"sentiment"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// TicketFromDomain maps a ticket.
func TicketFromDomain(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:         t.ID,
		CustomerID: t.CustomerID,
		Subject:    t.Subject,
		Status:     t.Status,
		Priority:   t.Priority,
		Sentiment:  t.Sentiment,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Content     string   `json:"content"`
	Attachments []string `json:"attachments"`
	IsInternal  bool     `json:"is_internal"`
}

// MessageResponse is the wire shape of a message.
type MessageResponse struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	SenderID    string    `json:"sender_id"`
	Content     string    `json:"content"`
	Attachments []string  `json:"attachments,omitempty"`
	IsInternal  bool      `json:"is_internal"`
	CreatedAt   time.Time `json:"created_at"`
}

// MessageFromDomain maps a message.
func MessageFromDomain(m *domain.Message) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		TicketID:    m.TicketID,
		SenderID:    m.SenderID,
		Content:     m.Content,
		Attachments: m.Attachments,
		IsInternal:  m.IsInternal,
		CreatedAt:   m.CreatedAt,
	}
}

// TicketDetailResponse bundles a ticket with its conversation.
type TicketDetailResponse struct {
	Ticket   TicketResponse    `json:"ticket"`
	Messages []MessageResponse `json:"messages"`
}
