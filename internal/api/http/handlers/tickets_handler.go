package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/hivemind/support-engine/internal/api/dto"
	"github.com/hivemind/support-engine/internal/auth"
	"github.com/hivemind/support-engine/internal/domain"
	"github.com/hivemind/support-engine/internal/presence"
	"github.com/hivemind/support-engine/internal/service"
	"github.com/hivemind/support-engine/internal/storage"
	apperrors "github.com/hivemind/support-engine/pkg/util/errorutil"
)

// TicketsHandler manages ticket and conversation endpoints.
type TicketsHandler struct {
	tickets  *service.TicketService
	messages *service.MessageService
	presence *presence.Channel
	uploader *storage.Uploader
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, messages *service.MessageService, presenceChannel *presence.Channel, uploader *storage.Uploader) *TicketsHandler {
	return &TicketsHandler{
		tickets:  tickets,
		messages: messages,
		presence: presenceChannel,
		uploader: uploader,
	}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, first, err := h.tickets.CreateTicket(c.Context(), principal.Profile.ID, req.Subject, req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.TicketDetailResponse{
		Ticket:   dto.TicketFromDomain(ticket),
		Messages: []dto.MessageResponse{dto.MessageFromDomain(first)},
	}})
}

// ListTickets GET /tickets returns the caller's tickets, most recently
// updated first.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	tickets, err := h.tickets.ListForCustomer(c.Context(), principal.Profile.ID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.TicketFromDomain(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id returns the ticket and its conversation.
// Internal notes appear for admins only.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ticket, err := h.loadTicket(c)
	if err != nil {
		return err
	}
	msgs, err := h.messages.ListForTicket(c.Context(), ticket.ID, principal.IsAdmin())
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, dto.MessageFromDomain(&msgs[i]))
	}
	return c.JSON(fiber.Map{"data": dto.TicketDetailResponse{
		Ticket:   dto.TicketFromDomain(ticket),
		Messages: items,
	}})
}

// AddMessage POST /tickets/:id/messages appends to the conversation. The
// closed check runs against the snapshot fetched here, not atomically with
// the insert.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	principal, ticket, err := h.loadTicket(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.IsInternal && !principal.IsAdmin() {
		return apperrors.NewForbidden("internal notes are agent-only")
	}

	msg, err := h.messages.Append(c.Context(), ticket, service.AppendInput{
		SenderID:    principal.Profile.ID,
		Content:     req.Content,
		Attachments: req.Attachments,
		IsInternal:  req.IsInternal,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.MessageFromDomain(msg)})
}

// Typing POST /tickets/:id/typing broadcasts the caller's typing signal.
func (h *TicketsHandler) Typing(c *fiber.Ctx) error {
	principal, ticket, err := h.loadTicket(c)
	if err != nil {
		return err
	}
	if err := h.presence.Typing(c.Context(), ticket.ID, principal.Profile.ID); err != nil {
		// best-effort signal; losing one only delays the remote indicator
		return c.SendStatus(http.StatusAccepted)
	}
	return c.SendStatus(http.StatusAccepted)
}

// UploadAttachment POST /tickets/:id/attachments validates and stores a
// blob, returning the reference URL to include in a message.
func (h *TicketsHandler) UploadAttachment(c *fiber.Ctx) error {
	_, ticket, err := h.loadTicket(c)
	if err != nil {
		return err
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file required", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.MapError(err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return apperrors.MapError(err)
	}

	url, err := h.uploader.Upload(c.Context(), ticket.ID, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"url": url}})
}

// loadTicket resolves the principal and the ticket, enforcing ownership for
// non-admin callers.
func (h *TicketsHandler) loadTicket(c *fiber.Ctx) (*auth.Principal, *domain.Ticket, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, nil, apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.tickets.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return nil, nil, err
	}
	if !principal.IsAdmin() && ticket.CustomerID != principal.Profile.ID {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	return principal, ticket, nil
}
