package room

import (
	"sync"
	"time"

	"github.com/park285/checkers-arena/internal/checkers"
)

// MaxPlayers is the seat count of every room.
const MaxPlayers = 2

// Room wraps one game session. All access to the session goes through the room's
// exclusive section.
type Room struct {
	ID        string
	Name      string
	CreatorID string
	CreatedAt time.Time

	mu   sync.Mutex
	game *checkers.Game
}

func newRoom(id, name, creatorID string, now time.Time) *Room {
	return &Room{
		ID:        id,
		Name:      name,
		CreatorID: creatorID,
		CreatedAt: now,
		game:      checkers.NewGame(id, now),
	}
}

// Do runs fn with exclusive access to the session.
func (r *Room) Do(fn func(g *checkers.Game)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.game)
}

// Snapshot is a consistent copy of a room taken inside its exclusive section.
type Snapshot struct {
	RoomID    string
	Name      string
	CreatorID string
	CreatedAt time.Time
	Game      *checkers.Game
}

func (s Snapshot) PlayerCount() int { return s.Game.SeatedCount() }
func (s Snapshot) Full() bool       { return s.Game.Full() }

func (r *Room) snapshotLocked() Snapshot {
	return Snapshot{
		RoomID:    r.ID,
		Name:      r.Name,
		CreatorID: r.CreatorID,
		CreatedAt: r.CreatedAt,
		Game:      r.game.Clone(),
	}
}

// Snapshot copies the room's current state.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// PlayerCount returns the number of seated players.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.SeatedCount()
}

func (r *Room) Full() bool { return r.PlayerCount() >= MaxPlayers }

// PlayerByConnection resolves a transport identity to the seated player.
func (r *Room) PlayerByConnection(ref string) (checkers.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.PlayerByConnection(ref)
}

// Play applies m on behalf of the player seated under connection ref. The returned
// snapshot reflects the state right after this call's mutation.
func (r *Room) Play(ref string, m checkers.Move) (checkers.Move, Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.game.PlayerByConnection(ref)
	if !ok {
		return checkers.Move{}, Snapshot{}, ErrNotSeated
	}
	if r.game.Status != checkers.StatusInProgress {
		return checkers.Move{}, Snapshot{}, ErrNotInProgress
	}
	if !r.game.IsPlayerTurn(p) {
		return checkers.Move{}, Snapshot{}, ErrNotYourTurn
	}
	applied, ok := r.game.ApplyMove(m)
	if !ok {
		return checkers.Move{}, Snapshot{}, ErrIllegalMove
	}
	return applied, r.snapshotLocked(), nil
}

func (r *Room) abandonIfSeated(ref string) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, seated := r.game.PlayerByConnection(ref); !seated || !r.game.Abandon() {
		return Snapshot{}, false
	}
	return r.snapshotLocked(), true
}

// Errors
var (
	ErrRoomNotFound     = errf("room not found")
	ErrRoomFull         = errf("room is full")
	ErrNotSeated        = errf("connection is not seated in this room")
	ErrNotYourTurn      = errf("not your turn")
	ErrIllegalMove      = errf("illegal move")
	ErrNotInProgress    = errf("game is not in progress")
	ErrCodeAllocation   = errf("failed to allocate room code")
	ErrInvalidArguments = errf("invalid arguments")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error         { return staticErr(s) }
