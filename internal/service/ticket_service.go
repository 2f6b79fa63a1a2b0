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

// TriageDispatcher submits a newly created ticket for asynchronous
// classification. Implementations must not block and must swallow failures:
// ticket creation has already succeeded.
type TriageDispatcher interface {
	Dispatch(ticket domain.Ticket, firstMessage string)
}

// TicketService coordinates ticket lifecycle workflows.
type TicketService struct {
	tickets repository.TicketRepository
	broker  realtime.Broker
	triage  TriageDispatcher
	logger  *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Broker     realtime.Broker
	Triage     TriageDispatcher
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets: deps.TicketRepo,
		broker:  deps.Broker,
		triage:  deps.Triage,
		logger:  deps.Logger,
	}
}

// CreateTicket inserts the ticket and its first message as one logical unit,
// then hands the ticket to the triage pipeline. Triage failure never fails
// creation.
func (s *TicketService) CreateTicket(ctx context.Context, customerID, subject, firstMessage string) (*domain.Ticket, *domain.Message, error) {
	if customerID == "" {
		return nil, nil, apperrors.NewUnauthorized("authenticated identity required")
	}
	subject = strings.TrimSpace(subject)
	firstMessage = strings.TrimSpace(firstMessage)
	if subject == "" {
		return nil, nil, apperrors.NewValidationError("subject required", nil)
	}
	if firstMessage == "" {
		return nil, nil, apperrors.NewValidationError("message required", nil)
	}

	ticket := &domain.Ticket{
		CustomerID: customerID,
		Subject:    subject,
		Status:     domain.TicketStatusOpen,
		Priority:   domain.TicketPriorityMedium,
	}
	first := &domain.Message{
		SenderID: customerID,
		Content:  firstMessage,
	}

	if err := s.tickets.CreateWithFirstMessage(ctx, ticket, first); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	s.publishInsert(ctx, *first)

	if s.triage != nil {
		s.triage.Dispatch(*ticket, firstMessage)
	}
	return ticket, first, nil
}

// GetTicket fetches a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// UpdateStatus sets the ticket status. Any enumerated value is accepted in
// any current state; reopening a closed ticket is allowed at this layer.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !domain.ValidStatus(status) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}
	ticket, err := s.tickets.UpdateStatus(ctx, ticketID, status)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// UpdatePriority sets the ticket priority, similarly unrestricted.
func (s *TicketService) UpdatePriority(ctx context.Context, ticketID string, priority domain.TicketPriority) (*domain.Ticket, error) {
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}
	ticket, err := s.tickets.UpdatePriority(ctx, ticketID, priority)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListForCustomer returns the customer's tickets, most recently updated
// first.
func (s *TicketService) ListForCustomer(ctx context.Context, customerID string, limit, offset int) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListForCustomer(ctx, customerID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListAll returns tickets matching the agent-view filter.
func (s *TicketService) ListAll(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *TicketService) publishInsert(ctx context.Context, msg domain.Message) {
	if s.broker == nil {
		return
	}
	if err := feed.Publish(ctx, s.broker, msg); err != nil {
		s.logger.Warn("feed publish failed",
			zap.String("ticket_id", msg.TicketID),
			zap.Error(err))
	}
}
