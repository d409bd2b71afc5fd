package arena

import (
	"context"

	"github.com/park285/checkers-arena/internal/archive"
	"github.com/park285/checkers-arena/internal/checkers"
	"github.com/park285/checkers-arena/internal/events"
	"github.com/park285/checkers-arena/internal/lobby"
	"github.com/park285/checkers-arena/internal/room"
	"go.uber.org/zap"
)

// sync mirrors snap and publishes evs. Failures are logged and swallowed.
func (s *Service) sync(ctx context.Context, snap room.Snapshot, evs ...events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if s.mirror != nil {
		if err := s.mirror.Publish(ctx, lobby.MetaFromSnapshot(snap)); err != nil {
			s.logger.Warn("lobby_sync_failed", zap.String("room_id", snap.RoomID), zap.Error(err))
		}
	}
	if len(evs) > 0 {
		if err := s.events.Publish(ctx, evs...); err != nil {
			s.logger.Warn("event_publish_failed",
				zap.String("room_id", snap.RoomID),
				zap.String("type", string(evs[0].Type)),
				zap.Error(err),
			)
		}
	}
}

// finish archives a terminal snapshot once per room.
func (s *Service) finish(ctx context.Context, snap room.Snapshot) {
	s.mu.Lock()
	_, done := s.finalized[snap.RoomID]
	if !done {
		s.finalized[snap.RoomID] = struct{}{}
	}
	s.mu.Unlock()

	if done {
		s.sync(ctx, snap)
		return
	}

	g := snap.Game
	evType := events.GameFinished
	if g.Status == checkers.StatusAbandoned {
		evType = events.GameAbandoned
		s.logger.Info("game_abandoned", zap.String("room_id", snap.RoomID), zap.Uint64("version", g.Version()))
	} else {
		w, _ := g.Winner()
		s.logger.Info("game_finished",
			zap.String("room_id", snap.RoomID),
			zap.String("winner", w.Nickname),
			zap.String("winner_color", w.Color.String()),
			zap.Int("moves", len(g.History())),
		)
	}
	s.sync(ctx, snap, events.FromSnapshot(evType, snap))

	rec, ok := archive.FromSnapshot(snap)
	if !ok {
		return
	}
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.archive.SaveResult(actx, rec); err != nil {
		s.logger.Warn("archive_save_failed", zap.String("room_id", snap.RoomID), zap.Error(err))
	}
}

// forget drops mirrored state for removed rooms.
func (s *Service) forget(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	evs := make([]events.Event, 0, len(ids))
	s.mu.Lock()
	for _, id := range ids {
		delete(s.finalized, id)
		evs = append(evs, events.FromSnapshot(events.RoomRemoved, room.Snapshot{RoomID: id}))
	}
	s.mu.Unlock()

	if s.mirror != nil {
		for _, id := range ids {
			if err := s.mirror.Remove(ctx, id); err != nil {
				s.logger.Warn("lobby_remove_failed", zap.String("room_id", id), zap.Error(err))
			}
		}
	}
	if err := s.events.Publish(ctx, evs...); err != nil {
		s.logger.Warn("event_publish_failed", zap.String("type", string(events.RoomRemoved)), zap.Error(err))
	}
}
