package user

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"logipro/internal/logger"
)

// ScheduleTokenCleanup registers the expired refresh token sweep on c.
func (s *Service) ScheduleTokenCleanup(c *cron.Cron, schedule string, retention time.Duration) (cron.EntryID, error) {
	id, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.CleanupExpiredTokens(ctx, retention)
	})
	if err != nil {
		return 0, fmt.Errorf("invalid token cleanup schedule %q: %w", schedule, err)
	}

	logger.Info("Token cleanup job scheduled",
		zap.String("schedule", schedule),
		zap.Duration("retention", retention),
	)
	return id, nil
}

func (s *Service) CleanupExpiredTokens(ctx context.Context, olderThan time.Duration) {
	deleted, err := s.refreshTokenRepo.DeleteExpired(ctx, olderThan)
	if err != nil {
		logger.Error("Failed to delete expired tokens", zap.Error(err))
		return
	}

	logger.Debug("Expired tokens cleaned up",
		zap.Int64("deleted", deleted),
		zap.Duration("older_than", olderThan),
	)
}
