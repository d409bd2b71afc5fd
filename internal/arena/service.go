package arena

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/park285/checkers-arena/internal/archive"
	"github.com/park285/checkers-arena/internal/checkers"
	"github.com/park285/checkers-arena/internal/events"
	"github.com/park285/checkers-arena/internal/lobby"
	"github.com/park285/checkers-arena/internal/msgcat"
	"github.com/park285/checkers-arena/internal/render"
	"github.com/park285/checkers-arena/internal/room"
	"go.uber.org/zap"
)

const (
	maxNicknameRunes  = 24
	maxRoomNameRunes  = 48
	sideEffectTimeout = 3 * time.Second
)

type Config struct {
	RecentLimit int
}

// Deps are the collaborators of a Service. Only Registry is required.
type Deps struct {
	Registry *room.Registry
	Mirror   *lobby.Mirror
	Archive  archive.Repository
	Events   events.Publisher
	Catalog  *msgcat.Catalog
	Renderer render.BoardRenderer
	Logger   *zap.Logger
}

// Service is the entry point for transports. Game state lives in the registry;
// the mirror, archive and event stream are kept in step on a best-effort basis.
type Service struct {
	reg      *room.Registry
	mirror   *lobby.Mirror
	archive  archive.Repository
	events   events.Publisher
	catalog  *msgcat.Catalog
	renderer render.BoardRenderer
	logger   *zap.Logger
	cfg      Config

	mu        sync.Mutex
	finalized map[string]struct{}
}

func NewService(d Deps, cfg Config) *Service {
	if d.Registry == nil {
		d.Registry = room.NewRegistry()
	}
	if d.Archive == nil {
		d.Archive = archive.NewMemoryRepository()
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Catalog == nil {
		d.Catalog = msgcat.MustDefault()
	}
	if d.Renderer == nil {
		d.Renderer = render.NewBoardRenderer()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 20
	}
	return &Service{
		reg:       d.Registry,
		mirror:    d.Mirror,
		archive:   d.Archive,
		events:    d.Events,
		catalog:   d.Catalog,
		renderer:  d.Renderer,
		logger:    d.Logger,
		cfg:       cfg,
		finalized: make(map[string]struct{}),
	}
}

// JoinResult describes the outcome of a successful Join.
type JoinResult struct {
	Player   checkers.Player
	Snapshot room.Snapshot
	Rejoined bool
}

// Create registers a room with the caller seated as LIGHT.
func (s *Service) Create(ctx context.Context, name, nickname, connectionRef string) (checkers.Player, room.Snapshot, error) {
	nickname, ok := cleanText(nickname, maxNicknameRunes)
	if !ok {
		return checkers.Player{}, room.Snapshot{}, ErrInvalidArguments
	}
	name, _ = cleanText(name, maxRoomNameRunes)
	if name == "" {
		name = nickname
	}

	p, err := s.reg.NewPlayer(nickname, connectionRef)
	if err != nil {
		return checkers.Player{}, room.Snapshot{}, err
	}
	rm, seated, err := s.reg.CreateRoom(name, p)
	if err != nil {
		s.logger.Warn("room_create_failed", zap.String("name", name), zap.Error(err))
		return checkers.Player{}, room.Snapshot{}, translate(err)
	}
	snap := rm.Snapshot()
	s.logger.Info("room_create",
		zap.String("room_id", snap.RoomID),
		zap.String("name", snap.Name),
		zap.String("player_id", seated.ID),
	)
	s.sync(ctx, snap,
		events.FromSnapshot(events.RoomCreated, snap),
		events.FromSnapshot(events.PlayerJoined, snap).WithPlayer(seated),
	)
	return seated, snap, nil
}

// Reserve registers a room with both seats open.
func (s *Service) Reserve(ctx context.Context, name, nickname string) (room.Snapshot, string, error) {
	nickname, ok := cleanText(nickname, maxNicknameRunes)
	if !ok {
		return room.Snapshot{}, "", ErrInvalidArguments
	}
	name, _ = cleanText(name, maxRoomNameRunes)
	if name == "" {
		name = nickname
	}
	creator, err := s.reg.NewPlayer(nickname, "")
	if err != nil {
		return room.Snapshot{}, "", err
	}
	rm, err := s.reg.ReserveRoom(name, creator.ID)
	if err != nil {
		s.logger.Warn("room_create_failed", zap.String("name", name), zap.Error(err))
		return room.Snapshot{}, "", translate(err)
	}
	snap := rm.Snapshot()
	s.logger.Info("room_create",
		zap.String("room_id", snap.RoomID),
		zap.String("name", snap.Name),
		zap.Bool("reserved", true),
	)
	s.sync(ctx, snap, events.FromSnapshot(events.RoomCreated, snap))
	return snap, creator.ID, nil
}

// Join seats the caller, or reports a rejoin when the connection already holds a seat.
func (s *Service) Join(ctx context.Context, roomID, nickname, connectionRef string) (JoinResult, error) {
	roomID = room.NormalizeID(roomID)
	rm, ok := s.reg.GetRoom(roomID)
	if !ok {
		return JoinResult{}, ErrRoomNotFound
	}
	// fast path: a seated connection rejoins whatever nickname it sends
	if p, seated := rm.PlayerByConnection(connectionRef); seated {
		return s.rejoined(roomID, p, rm.Snapshot()), nil
	}

	nickname, valid := cleanText(nickname, maxNicknameRunes)
	if !valid {
		return JoinResult{}, ErrInvalidArguments
	}
	p, err := s.reg.NewPlayer(nickname, connectionRef)
	if err != nil {
		return JoinResult{}, err
	}
	seated, snap, rejoined, err := s.reg.Join(roomID, p)
	if err != nil {
		s.logger.Info("room_join_rejected", zap.String("room_id", roomID), zap.Error(err))
		return JoinResult{}, translate(err)
	}
	if rejoined {
		return s.rejoined(roomID, seated, snap), nil
	}
	s.logger.Info("room_join",
		zap.String("room_id", roomID),
		zap.String("player_id", seated.ID),
		zap.String("color", seated.Color.String()),
		zap.Int("players", snap.PlayerCount()),
	)
	evs := []events.Event{events.FromSnapshot(events.PlayerJoined, snap).WithPlayer(seated)}
	if snap.Game.Status == checkers.StatusInProgress {
		evs = append(evs, events.FromSnapshot(events.GameStarted, snap))
	}
	s.sync(ctx, snap, evs...)
	return JoinResult{Player: seated, Snapshot: snap}, nil
}

func (s *Service) rejoined(roomID string, p checkers.Player, snap room.Snapshot) JoinResult {
	s.logger.Info("room_rejoin", zap.String("room_id", roomID), zap.String("player_id", p.ID))
	return JoinResult{Player: p, Snapshot: snap, Rejoined: true}
}

// Move applies m for the player seated under connectionRef.
func (s *Service) Move(ctx context.Context, roomID, connectionRef string, m checkers.Move) (checkers.Move, room.Snapshot, error) {
	roomID = room.NormalizeID(roomID)
	rm, ok := s.reg.GetRoom(roomID)
	if !ok {
		return checkers.Move{}, room.Snapshot{}, ErrRoomNotFound
	}
	applied, snap, err := rm.Play(connectionRef, m)
	if err != nil {
		s.logger.Info("move_rejected",
			zap.String("room_id", roomID),
			zap.Int("from_row", m.FromRow), zap.Int("from_col", m.FromCol),
			zap.Int("to_row", m.ToRow), zap.Int("to_col", m.ToCol),
			zap.Error(err),
		)
		return checkers.Move{}, room.Snapshot{}, translate(err)
	}
	s.logger.Debug("move_applied",
		zap.String("room_id", roomID),
		zap.String("move", checkers.Notation(applied)),
		zap.String("turn", snap.Game.Turn.String()),
		zap.Uint64("version", snap.Game.Version()),
	)
	if snap.Game.Status.Terminal() {
		s.finish(ctx, snap)
	} else {
		s.sync(ctx, snap)
	}
	return applied, snap, nil
}

// Disconnect abandons every game the connection is playing and returns the changed rooms.
func (s *Service) Disconnect(ctx context.Context, connectionRef string) []room.Snapshot {
	changed := s.reg.OnConnectionLost(connectionRef)
	for _, snap := range changed {
		s.finish(ctx, snap)
	}
	return changed
}

// RemoveRoom deletes a room regardless of state.
func (s *Service) RemoveRoom(ctx context.Context, roomID string) error {
	roomID = room.NormalizeID(roomID)
	if !s.reg.RemoveRoom(roomID) {
		return ErrRoomNotFound
	}
	s.forget(ctx, []string{roomID})
	return nil
}

// Room returns a snapshot of one room.
func (s *Service) Room(roomID string) (room.Snapshot, error) {
	rm, ok := s.reg.GetRoom(roomID)
	if !ok {
		return room.Snapshot{}, ErrRoomNotFound
	}
	return rm.Snapshot(), nil
}

func (s *Service) Exists(roomID string) bool { return s.reg.RoomExists(roomID) }

// Rooms returns snapshots of every room, or only those with a free seat.
func (s *Service) Rooms(availableOnly bool) []room.Snapshot {
	var rooms []*room.Room
	if availableOnly {
		rooms = s.reg.AvailableRooms()
	} else {
		rooms = s.reg.Rooms()
	}
	out := make([]room.Snapshot, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, rm.Snapshot())
	}
	return out
}

// Lobby lists open rooms across processes when Redis is configured, else the local ones.
func (s *Service) Lobby(ctx context.Context) ([]*lobby.RoomMeta, error) {
	if s.mirror != nil {
		return s.mirror.List(ctx)
	}
	var out []*lobby.RoomMeta
	for _, snap := range s.Rooms(true) {
		if meta := lobby.MetaFromSnapshot(snap); meta.Open() {
			out = append(out, meta)
		}
	}
	return out, nil
}

// RecentGames lists archived results, newest first.
func (s *Service) RecentGames(ctx context.Context, limit int) ([]archive.Record, error) {
	if limit <= 0 || limit > 100 {
		limit = s.cfg.RecentLimit
	}
	return s.archive.Recent(ctx, limit)
}

// RenderBoard draws the current position of a room.
func (s *Service) RenderBoard(ctx context.Context, roomID string) ([]byte, error) {
	snap, err := s.Room(roomID)
	if err != nil {
		return nil, err
	}
	g := snap.Game
	opts := render.Options{
		Header:  snap.RoomID + "  " + headerPlayers(g),
		Turn:    s.StateMessage(g),
		Numbers: true,
	}
	if h := g.History(); len(h) > 0 {
		last := h[len(h)-1]
		opts.LastMove = &last
	}
	return s.renderer.RenderPNG(ctx, g.Board, opts)
}

func headerPlayers(g *checkers.Game) string {
	light, dark := g.Seat(checkers.Light).Nickname(), g.Seat(checkers.Dark).Nickname()
	if light == "" {
		light = "?"
	}
	if dark == "" {
		dark = "?"
	}
	return light + " vs " + dark
}

func cleanText(s string, maxRunes int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if r := []rune(s); len(r) > maxRunes {
		s = string(r[:maxRunes])
	}
	return s, true
}
