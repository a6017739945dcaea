package service

import (
	"context"
	"sync/atomic"

	"askbot/internal/metrics"
	"askbot/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Report summarizes one broadcast run
type Report struct {
	RunID     string
	Total     int
	Delivered int
	Failed    int
}

// BroadcastService copies a message to every registered user
type BroadcastService struct {
	userRepo    repository.UserRepository
	messenger   Messenger
	concurrency int
	logger      *zap.Logger
}

// NewBroadcastService creates a new broadcast service. concurrency below 1 means sequential delivery.
func NewBroadcastService(userRepo repository.UserRepository, messenger Messenger, concurrency int, logger *zap.Logger) *BroadcastService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BroadcastService{
		userRepo:    userRepo,
		messenger:   messenger,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Broadcast copies message messageID of chat fromChatID to all users.
// A failed delivery is logged and counted; it never stops the run.
func (s *BroadcastService) Broadcast(ctx context.Context, fromChatID int64, messageID int) (Report, error) {
	ids, err := s.userRepo.ListIDs(ctx)
	if err != nil {
		return Report{}, newError(ErrorInternal, "list recipients", err)
	}

	report := Report{RunID: uuid.NewString(), Total: len(ids)}
	logger := s.logger.With(zap.String("broadcast_id", report.RunID))
	logger.Info("Starting broadcast",
		zap.Int("recipients", report.Total),
		zap.Int("concurrency", s.concurrency))

	var delivered, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := s.messenger.Copy(ctx, id, fromChatID, messageID); err != nil {
				failed.Add(1)
				logger.Warn("Failed to deliver broadcast",
					zap.Int64("user_id", id),
					zap.Error(newError(ErrorUpstream, "copy message", err)))
				return nil
			}
			delivered.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	report.Delivered = int(delivered.Load())
	report.Failed = int(failed.Load())
	metrics.AddBroadcastDeliveries(report.Delivered, report.Failed)

	logger.Info("Broadcast finished",
		zap.Int("delivered", report.Delivered),
		zap.Int("failed", report.Failed))
	return report, nil
}
