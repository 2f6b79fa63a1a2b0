package triage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hivemind/support-engine/internal/domain"
)

// Pipeline fires classification requests for newly created tickets. Calls
// are detached tasks: the creating request never waits on them, failures
// are logged and otherwise silent, and an in-flight call is allowed to
// complete even after the view that triggered it is gone.
type Pipeline struct {
	client  *Client
	logger  *zap.Logger
	timeout time.Duration
}

// NewPipeline constructs the pipeline.
func NewPipeline(client *Client, logger *zap.Logger, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Pipeline{client: client, logger: logger, timeout: timeout}
}

// Dispatch submits the ticket for classification without blocking. The
// spawned task uses a background context so teardown of the caller never
// cancels it.
func (p *Pipeline) Dispatch(ticket domain.Ticket, firstMessage string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		analysis, err := p.client.Triage(ctx, Request{
			TicketID: ticket.ID,
			Subject:  ticket.Subject,
			Content:  firstMessage,
		})
		if err != nil {
			p.logger.Warn("triage dispatch failed",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
			return
		}
		p.logger.Info("triage completed",
			zap.String("ticket_id", ticket.ID),
			zap.String("priority", string(analysis.Priority)),
			zap.String("sentiment", string(analysis.Sentiment)))
	}()
}
