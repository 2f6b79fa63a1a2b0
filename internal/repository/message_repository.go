package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivemind/support-engine/internal/domain"
)

// MessageRepository manages the append-only conversation log.
type MessageRepository interface {
	// Create appends the message and refreshes the parent ticket's
	// updated_at in the same transaction.
	Create(ctx context.Context, msg *domain.Message) error
	// ListByTicket returns all messages for a ticket ascending by
	// (created_at, id).
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error)
	// ListRecent returns up to limit newest messages, newest first.
	ListRecent(ctx context.Context, ticketID string, limit int) ([]domain.Message, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

const messageColumns = `id, ticket_id, sender_id, content, attachments, is_internal, created_at`

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insert = `
        INSERT INTO messages (ticket_id, sender_id, content, attachments, is_internal)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insert,
		msg.TicketID,
		msg.SenderID,
		msg.Content,
		msg.Attachments,
		msg.IsInternal,
	).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return err
	}

	const touch = `UPDATE tickets SET updated_at=NOW() WHERE id=$1`
	if _, err := tx.Exec(ctx, touch, msg.TicketID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *messageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	query := `
        SELECT ` + messageColumns + `
        FROM messages WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *messageRepository) ListRecent(ctx context.Context, ticketID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
        SELECT ` + messageColumns + `
        FROM messages WHERE ticket_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, ticketID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func scanMessages(rows pgx.Rows) ([]domain.Message, error) {
	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.SenderID,
			&msg.Content,
			&msg.Attachments,
			&msg.IsInternal,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
