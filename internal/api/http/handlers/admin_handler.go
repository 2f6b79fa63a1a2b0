package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hivemind/support-engine/internal/api/dto"
	"github.com/hivemind/support-engine/internal/domain"
	"github.com/hivemind/support-engine/internal/repository"
	"github.com/hivemind/support-engine/internal/service"
	apperrors "github.com/hivemind/support-engine/pkg/util/errorutil"
)

// AdminHandler exposes the agent dashboard endpoints. Routes mount behind
// the admin role guard.
type AdminHandler struct {
	tickets *service.TicketService
	ai      *service.AIService
	stats   *service.StatsService
}

func NewAdminHandler(tickets *service.TicketService, ai *service.AIService, stats *service.StatsService) *AdminHandler {
	return &AdminHandler{tickets: tickets, ai: ai, stats: stats}
}

// ListTickets GET /admin/tickets with optional status, priority and search
// filters. status and priority accept comma separated values.
func (h *AdminHandler) ListTickets(c *fiber.Ctx) error {
	filter := repository.TicketFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	for _, raw := range splitParam(c.Query("status")) {
		status := domain.TicketStatus(raw)
		if !domain.ValidStatus(status) {
			return apperrors.NewValidationError("invalid status filter", map[string]any{"status": raw})
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, raw := range splitParam(c.Query("priority")) {
		priority := domain.TicketPriority(raw)
		if !domain.ValidPriority(priority) {
			return apperrors.NewValidationError("invalid priority filter", map[string]any{"priority": raw})
		}
		filter.Priorities = append(filter.Priorities, priority)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}

	tickets, err := h.tickets.ListAll(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.TicketFromDomain(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateStatus PATCH /admin/tickets/:id/status.
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdateStatus(c.Context(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// UpdatePriority PATCH /admin/tickets/:id/priority.
func (h *AdminHandler) UpdatePriority(c *fiber.Ctx) error {
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdatePriority(c.Context(), c.Params("id"), req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Stats GET /admin/stats returns dashboard counters.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.stats.Dashboard(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// DraftReply POST /admin/tickets/:id/reply-draft generates a suggested
// agent reply from the recent conversation.
func (h *AdminHandler) DraftReply(c *fiber.Ctx) error {
	reply, err := h.ai.DraftReply(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reply": reply}})
}

func splitParam(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
