package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivemind/support-engine/internal/domain"
)

// DashboardStats is the aggregate consumed by the admin dashboard.
type DashboardStats struct {
	TotalTickets   int64                           `json:"total_tickets"`
	ActiveUsers    int64                           `json:"active_users"`
	StatusCounts   map[domain.TicketStatus]int64   `json:"status_counts"`
	PriorityCounts map[domain.TicketPriority]int64 `json:"priority_counts"`
}

// StatsRepository computes dashboard aggregates.
type StatsRepository interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository instantiates repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		StatusCounts: map[domain.TicketStatus]int64{
			domain.TicketStatusOpen:     0,
			domain.TicketStatusResolved: 0,
			domain.TicketStatusClosed:   0,
		},
		PriorityCounts: map[domain.TicketPriority]int64{
			domain.TicketPriorityHigh:   0,
			domain.TicketPriorityMedium: 0,
			domain.TicketPriorityLow:    0,
		},
	}

	const totals = `
        SELECT
            (SELECT COUNT(*) FROM tickets),
            (SELECT COUNT(DISTINCT customer_id) FROM tickets)`
	if err := r.pool.QueryRow(ctx, totals).Scan(&stats.TotalTickets, &stats.ActiveUsers); err != nil {
		return nil, err
	}

	const byStatus = `SELECT status, COUNT(*) FROM tickets GROUP BY status`
	rows, err := r.pool.Query(ctx, byStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status domain.TicketStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.StatusCounts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const byPriority = `SELECT priority, COUNT(*) FROM tickets GROUP BY priority`
	prows, err := r.pool.Query(ctx, byPriority)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var priority domain.TicketPriority
		var count int64
		if err := prows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		stats.PriorityCounts[priority] = count
	}
	return stats, prows.Err()
}
