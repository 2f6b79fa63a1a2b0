package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hivemind/support-engine/internal/api/dto"
	"github.com/hivemind/support-engine/internal/service"
	apperrors "github.com/hivemind/support-engine/pkg/util/errorutil"
)

// AIHandler serves the classification endpoints. These are the service-side
// targets of the async triage pipeline and of the agent reply-draft button,
// so their request and response shapes stay stable independently of the
// ticket API.
type AIHandler struct {
	ai *service.AIService
}

func NewAIHandler(ai *service.AIService) *AIHandler {
	return &AIHandler{ai: ai}
}

// Triage POST /ai-triage classifies a ticket and applies the result.
func (h *AIHandler) Triage(c *fiber.Ctx) error {
	var req dto.TriageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	analysis, err := h.ai.Triage(c.Context(), req.TicketID, req.Subject, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(dto.TriageResponse{
		Success: true,
		Analysis: dto.TriageAnalysisResponse{
			Priority:  string(analysis.Priority),
			Sentiment: string(analysis.Sentiment),
		},
	})
}

// DraftReply POST /ai-reply drafts a suggested agent response.
func (h *AIHandler) DraftReply(c *fiber.Ctx) error {
	var req dto.ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	reply, err := h.ai.DraftReply(c.Context(), req.TicketID)
	if err != nil {
		return err
	}
	return c.JSON(dto.ReplyResponse{Reply: reply})
}
