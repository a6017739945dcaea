package service

import (
	"context"

	"askbot/internal/repository"

	"go.uber.org/zap"
)

// StatsService serves aggregate numbers for the status page
type StatsService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(userRepo repository.UserRepository, logger *zap.Logger) *StatsService {
	return &StatsService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// UserCount returns the number of registered users
func (s *StatsService) UserCount(ctx context.Context) (int, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count users", zap.Error(err))
		return 0, err
	}
	return count, nil
}
