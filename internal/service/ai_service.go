package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hivemind/support-engine/internal/domain"
	"github.com/hivemind/support-engine/internal/llm"
	"github.com/hivemind/support-engine/internal/repository"
	apperrors "github.com/hivemind/support-engine/pkg/util/errorutil"
)

const triageSystemPrompt = `You are an AI triage assistant. Analyze the ticket and return a JSON object ` +
	`with "priority" (low, medium, high, urgent) and "sentiment" (positive, neutral, negative).`

const replySystemPrompt = "You are a helpful customer support AI."

const replyHistoryWindow = 10

// AIService backs the /ai-triage and /ai-reply endpoints: ticket
// classification and reply drafting via the completions API. Triage performs
// a privileged ticket update; reply drafting performs no writes.
type AIService struct {
	tickets  repository.TicketRepository
	messages repository.MessageRepository
	llm      *llm.Client
	logger   *zap.Logger
}

// NewAIService constructs the service.
func NewAIService(tickets repository.TicketRepository, messages repository.MessageRepository, client *llm.Client, logger *zap.Logger) *AIService {
	return &AIService{tickets: tickets, messages: messages, llm: client, logger: logger}
}

// TriageAnalysis is the classification result applied to the ticket.
type TriageAnalysis struct {
	Priority  domain.TicketPriority  `json:"priority"`
	Sentiment domain.TicketSentiment `json:"sentiment"`
}

// Triage classifies the ticket and applies priority/sentiment with elevated
// privileges. The model response may arrive wrapped in code fences; stray
// markers are stripped before parsing.
func (s *AIService) Triage(ctx context.Context, ticketID, subject, content string) (*TriageAnalysis, error) {
	if ticketID == "" {
		return nil, apperrors.NewValidationError("ticket_id required", nil)
	}

	user := fmt.Sprintf("Subject: %s\nMessage: %s", subject, content)
	raw, err := s.llm.Complete(ctx, triageSystemPrompt, user, llm.Options{JSONObject: true})
	if err != nil {
		return nil, apperrors.NewClassificationFailed(err)
	}

	analysis, err := parseTriageAnalysis(raw)
	if err != nil {
		return nil, apperrors.NewClassificationFailed(err)
	}

	if _, err := s.tickets.ApplyTriage(ctx, ticketID, analysis.Priority, analysis.Sentiment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("ticket triaged",
		zap.String("ticket_id", ticketID),
		zap.String("priority", string(analysis.Priority)),
		zap.String("sentiment", string(analysis.Sentiment)))
	return analysis, nil
}

func parseTriageAnalysis(raw string) (*TriageAnalysis, error) {
	cleaned := raw
	if strings.Contains(cleaned, "```") {
		cleaned = strings.ReplaceAll(cleaned, "```json", "")
		cleaned = strings.ReplaceAll(cleaned, "```", "")
	}

	var parsed struct {
		Priority  string `json:"priority"`
		Sentiment string `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(cleaned)), &parsed); err != nil {
		return nil, fmt.Errorf("parse analysis: %w", err)
	}

	analysis := &TriageAnalysis{
		Priority:  domain.TicketPriority(strings.ToLower(strings.TrimSpace(parsed.Priority))),
		Sentiment: domain.TicketSentiment(strings.ToLower(strings.TrimSpace(parsed.Sentiment))),
	}
	if !domain.ValidPriority(analysis.Priority) {
		return nil, fmt.Errorf("analysis returned unknown priority %q", parsed.Priority)
	}
	if !domain.ValidSentiment(analysis.Sentiment) {
		return nil, fmt.Errorf("analysis returned unknown sentiment %q", parsed.Sentiment)
	}
	return analysis, nil
}

// DraftReply reconstructs the last messages of the conversation and asks the
// model for a single drafted reply. The caller decides whether to use it.
func (s *AIService) DraftReply(ctx context.Context, ticketID string) (string, error) {
	if ticketID == "" {
		return "", apperrors.NewValidationError("ticket_id required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return "", apperrors.MapError(err)
	}

	recent, err := s.messages.ListRecent(ctx, ticketID, replyHistoryWindow)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	// fetched newest-first; flip to chronological for the prompt
	lines := make([]string, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		msg := recent[i]
		role := "Support Agent"
		if msg.SenderID == ticket.CustomerID {
			role = "Customer"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, msg.Content))
	}

	temperature := 0.7
	prompt := fmt.Sprintf(`
You are an expert customer support agent for "HiveMind".
Your goal is to draft a polite, professional, and helpful reply to the customer based on the conversation history.

Context:
Subject: %s

Conversation History:
%s

Draft a response that:
1. Acknowledges the customer's last message.
2. Provides a helpful solution or asks clarifying questions if needed.
3. Maintains a friendly and professional tone.
4. Is concise (under 150 words).

Return ONLY the response text. Do not include "Subject:" or any other metadata.
`, ticket.Subject, strings.Join(lines, "\n"))

	reply, err := s.llm.Complete(ctx, replySystemPrompt, prompt, llm.Options{Temperature: &temperature})
	if err != nil {
		return "", apperrors.NewClassificationFailed(err)
	}
	return reply, nil
}
