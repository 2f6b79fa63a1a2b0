package dto

// TriageRequest payload for POST /ai-triage.
type TriageRequest struct {
	TicketID string `json:"ticket_id"`
	Subject  string `json:"subject"`
	Content  string `json:"content"`
}

// TriageAnalysisResponse mirrors the applied classification.
type TriageAnalysisResponse struct {
	Priority  string `json:"priority"`
	Sentiment string `json:"sentiment"`
}

// TriageResponse payload.
type TriageResponse struct {
	Success  bool                   `json:"success"`
	Analysis TriageAnalysisResponse `json:"analysis"`
}

// ReplyRequest payload for POST /ai-reply.
type ReplyRequest struct {
	TicketID string `json:"ticket_id"`
}

// ReplyResponse payload.
type ReplyResponse struct {
	Reply string `json:"reply"`
}
