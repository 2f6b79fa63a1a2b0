package service

import (
	"context"

	"github.com/hivemind/support-engine/internal/repository"
	apperrors "github.com/hivemind/support-engine/pkg/util/errorutil"
)

// StatsService backs the read-only dashboard aggregate endpoint.
type StatsService struct {
	stats repository.StatsRepository
}

// NewStatsService constructs the service.
func NewStatsService(stats repository.StatsRepository) *StatsService {
	return &StatsService{stats: stats}
}

// Dashboard returns ticket and user aggregates.
func (s *StatsService) Dashboard(ctx context.Context) (*repository.DashboardStats, error) {
	stats, err := s.stats.Dashboard(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return stats, nil
}
