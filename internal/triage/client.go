package triage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hivemind/support-engine/internal/config"
	"github.com/hivemind/support-engine/internal/domain"
)

// Client talks to the classification service endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client from triage configuration.
func NewClient(cfg config.TriageConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout()},
	}
}

// NewClientWithBase is used by tests to point at a stub server.
func NewClientWithBase(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: http.DefaultClient}
}

// Request carries the fields submitted for classification.
type Request struct {
	TicketID string `json:"ticket_id"`
	Subject  string `json:"subject"`
	Content  string `json:"content"`
}

// Analysis mirrors the classification response payload.
type Analysis struct {
	Priority  domain.TicketPriority  `json:"priority"`
	Sentiment domain.TicketSentiment `json:"sentiment"`
}

type triageResponse struct {
	Success  bool      `json:"success"`
	Analysis *Analysis `json:"analysis"`
	Error    string    `json:"error"`
}

// Triage submits the ticket for classification. On success the service has
// already updated the ticket row with elevated privileges.
func (c *Client) Triage(ctx context.Context, req Request) (*Analysis, error) {
	var resp triageResponse
	if err := c.post(ctx, "/ai-triage", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Analysis == nil {
		if resp.Error != "" {
			return nil, fmt.Errorf("triage: %s", resp.Error)
		}
		return nil, fmt.Errorf("triage: malformed response")
	}
	return resp.Analysis, nil
}

type replyRequest struct {
	TicketID string `json:"ticket_id"`
}

type replyResponse struct {
	Reply string `json:"reply"`
	Error string `json:"error"`
}

// DraftReply asks the service for a drafted reply. Read-only: the caller
// decides whether and how to use the draft.
func (c *Client) DraftReply(ctx context.Context, ticketID string) (string, error) {
	var resp replyResponse
	if err := c.post(ctx, "/ai-reply", replyRequest{TicketID: ticketID}, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("reply draft: %s", resp.Error)
	}
	return resp.Reply, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response (status %d): %w", path, resp.StatusCode, err)
	}
	return nil
}
