package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hivemind/support-engine/internal/domain"
	"github.com/hivemind/support-engine/internal/feed"
	"github.com/hivemind/support-engine/internal/realtime"
	"github.com/hivemind/support-engine/internal/repository"
	apperrors "github.com/hivemind/support-engine/pkg/util/errorutil"
)

// MessageService is the append-only conversation log.
type MessageService struct {
	messages repository.MessageRepository
	broker   realtime.Broker
	logger   *zap.Logger
}

// NewMessageService constructs the service.
func NewMessageService(messages repository.MessageRepository, broker realtime.Broker, logger *zap.Logger) *MessageService {
	return &MessageService{messages: messages, broker: broker, logger: logger}
}

// AppendInput describes a message append.
type AppendInput struct {
	SenderID    string
	Content     string
	Attachments []string
	IsInternal  bool
}

// Append commits a message against the caller-held ticket snapshot. The
// closed check uses that snapshot, not an atomic re-read: if the status
// flips to closed between the caller's read and this write, the append goes
// through. That race is accepted.
func (s *MessageService) Append(ctx context.Context, snapshot *domain.Ticket, input AppendInput) (*domain.Message, error) {
	if snapshot == nil {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	if snapshot.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewTicketClosed(snapshot.ID)
	}
	content := strings.TrimSpace(input.Content)
	if content == "" && len(input.Attachments) == 0 {
		return nil, apperrors.NewValidationError("message content required", nil)
	}

	msg := &domain.Message{
		TicketID:    snapshot.ID,
		SenderID:    input.SenderID,
		Content:     content,
		Attachments: input.Attachments,
		IsInternal:  input.IsInternal,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.broker != nil {
		if err := feed.Publish(ctx, s.broker, *msg); err != nil {
			s.logger.Warn("feed publish failed",
				zap.String("ticket_id", msg.TicketID),
				zap.Error(err))
		}
	}
	return msg, nil
}

// ListForTicket returns the ticket's messages ascending by (created_at, id).
// Internal notes are stripped unless includeInternal is set; they are
// reserved for agent views and never surfaced to customers.
func (s *MessageService) ListForTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.Message, error) {
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if includeInternal {
		return msgs, nil
	}
	visible := make([]domain.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.IsInternal {
			continue
		}
		visible = append(visible, msg)
	}
	return visible, nil
}
