package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivemind/support-engine/internal/domain"
)

// TicketFilter captures agent-view search parameters. SearchTerm matches
// subject, requester email, and id substrings.
type TicketFilter struct {
	CustomerID *string
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	SearchTerm *string
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	// CreateWithFirstMessage inserts the ticket row and its first message as
	// one logical unit.
	CreateWithFirstMessage(ctx context.Context, ticket *domain.Ticket, first *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error)
	UpdatePriority(ctx context.Context, id string, priority domain.TicketPriority) (*domain.Ticket, error)
	// ApplyTriage is the privileged update performed on behalf of the
	// classification service.
	ApplyTriage(ctx context.Context, id string, priority domain.TicketPriority, sentiment domain.TicketSentiment) (*domain.Ticket, error)
	ListForCustomer(ctx context.Context, customerID string, limit, offset int) ([]domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, customer_id, subject, status, priority, sentiment, created_at, updated_at`

func (r *ticketRepository) CreateWithFirstMessage(ctx context.Context, ticket *domain.Ticket, first *domain.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertTicket = `
        INSERT INTO tickets (customer_id, subject, status, priority, sentiment)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertTicket,
		ticket.CustomerID,
		ticket.Subject,
		ticket.Status,
		ticket.Priority,
		ticket.Sentiment,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	first.TicketID = ticket.ID
	const insertMessage = `
        INSERT INTO messages (ticket_id, sender_id, content, attachments, is_internal)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insertMessage,
		first.TicketID,
		first.SenderID,
		first.Content,
		first.Attachments,
		first.IsInternal,
	).Scan(&first.ID, &first.CreatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	query := fmt.Sprintf(`
        UPDATE tickets SET status=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING %s`, ticketColumns)
	return r.fetchSingle(ctx, query, status, id)
}

func (r *ticketRepository) UpdatePriority(ctx context.Context, id string, priority domain.TicketPriority) (*domain.Ticket, error) {
	query := fmt.Sprintf(`
        UPDATE tickets SET priority=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING %s`, ticketColumns)
	return r.fetchSingle(ctx, query, priority, id)
}

func (r *ticketRepository) ApplyTriage(ctx context.Context, id string, priority domain.TicketPriority, sentiment domain.TicketSentiment) (*domain.Ticket, error) {
	query := fmt.Sprintf(`
        UPDATE tickets SET priority=$1, sentiment=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING %s`, ticketColumns)
	return r.fetchSingle(ctx, query, priority, sentiment, id)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&ticket.ID,
		&ticket.CustomerID,
		&ticket.Subject,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Sentiment,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListForCustomer(ctx context.Context, customerID string, limit, offset int) ([]domain.Ticket, error) {
	filter := TicketFilter{
		CustomerID: &customerID,
		Limit:      limit,
		Offset:     offset,
	}
	return r.ListWithFilter(ctx, filter)
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT t.id, t.customer_id, t.subject, t.status, t.priority, t.sentiment, t.created_at, t.updated_at
             FROM tickets t
             LEFT JOIN profiles p ON p.id = t.customer_id`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("t.customer_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(t.subject) LIKE %s OR LOWER(p.email) LIKE %s OR LOWER(t.id::text) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.CustomerID,
			&ticket.Subject,
			&ticket.Status,
			&ticket.Priority,
			&ticket.Sentiment,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
