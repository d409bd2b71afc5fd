package arena

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Cleanup evicts rooms nobody is seated in.
func (s *Service) Cleanup(ctx context.Context) []string {
	removed := s.reg.RemoveEmptyRooms()
	if len(removed) == 0 {
		return nil
	}
	s.logger.Info("rooms_evicted", zap.Int("count", len(removed)), zap.Strings("room_ids", removed))
	s.forget(ctx, removed)
	return removed
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *Service) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Cleanup(ctx)
		}
	}
}
