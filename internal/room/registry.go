package room

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/park285/checkers-arena/internal/checkers"
)

const defaultCodeAttempts = 5

// Registry is the process-wide directory of rooms. Lock order is registry, then room.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	roomIDs   IDGenerator
	playerIDs IDGenerator
	attempts  int
	now       func() time.Time
}

type Option func(*Registry)

// WithRoomIDs replaces the room code generator.
func WithRoomIDs(g IDGenerator) Option {
	return func(r *Registry) {
		if g != nil {
			r.roomIDs = g
		}
	}
}

// WithPlayerIDs replaces the player id generator.
func WithPlayerIDs(g IDGenerator) Option {
	return func(r *Registry) {
		if g != nil {
			r.playerIDs = g
		}
	}
}

// WithCodeAttempts bounds regeneration on room code collision.
func WithCodeAttempts(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.attempts = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		rooms:     make(map[string]*Room),
		roomIDs:   RandomCode,
		playerIDs: UUIDs,
		attempts:  defaultCodeAttempts,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewPlayer builds an unseated player with a generated id.
func (r *Registry) NewPlayer(nickname, connectionRef string) (checkers.Player, error) {
	id, err := r.playerIDs()
	if err != nil {
		return checkers.Player{}, fmt.Errorf("player id: %w", err)
	}
	return checkers.Player{ID: id, Nickname: strings.TrimSpace(nickname), ConnectionRef: connectionRef}, nil
}

// CreateRoom registers a new room with creator already seated as LIGHT.
func (r *Registry) CreateRoom(name string, creator checkers.Player) (*Room, checkers.Player, error) {
	return r.insert(name, creator.ID, &creator)
}

// ReserveRoom registers a room with both seats open. The creator claims a seat by joining.
func (r *Registry) ReserveRoom(name, creatorID string) (*Room, error) {
	rm, _, err := r.insert(name, creatorID, nil)
	return rm, err
}

// insert never overwrites: a taken code is regenerated up to the attempt limit.
// The creator is seated before the room becomes visible.
func (r *Registry) insert(name, creatorID string, creator *checkers.Player) (*Room, checkers.Player, error) {
	for i := 0; i < r.attempts; i++ {
		raw, err := r.roomIDs()
		if err != nil {
			return nil, checkers.Player{}, fmt.Errorf("room id: %w", err)
		}
		id := NormalizeID(raw)
		if id == "" {
			continue
		}
		rm := newRoom(id, strings.TrimSpace(name), creatorID, r.now())
		var seated checkers.Player
		if creator != nil {
			seated, _ = rm.game.SeatPlayer(*creator)
		}
		if r.publish(rm) {
			return rm, seated, nil
		}
	}
	return nil, checkers.Player{}, ErrCodeAllocation
}

func (r *Registry) publish(rm *Room) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.rooms[rm.ID]; taken {
		return false
	}
	r.rooms[rm.ID] = rm
	return true
}

// Join seats p in the first open seat of the room. Of concurrent joins racing for the last
// seat exactly one succeeds; the rest observe ErrRoomFull. When p's connection already holds
// a seat, the existing player is returned with rejoined set and nothing is claimed.
func (r *Registry) Join(roomID string, p checkers.Player) (seated checkers.Player, snap Snapshot, rejoined bool, err error) {
	// the read lock keeps eviction from orphaning a room mid-join
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[NormalizeID(roomID)]
	if !ok {
		return checkers.Player{}, Snapshot{}, false, ErrRoomNotFound
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if p.ConnectionRef != "" {
		if existing, ok := rm.game.PlayerByConnection(p.ConnectionRef); ok {
			return existing, rm.snapshotLocked(), true, nil
		}
	}
	seated, ok = rm.game.SeatPlayer(p)
	if !ok {
		return checkers.Player{}, Snapshot{}, false, ErrRoomFull
	}
	return seated, rm.snapshotLocked(), false, nil
}

// JoinRoom is Join reduced to its outcome.
func (r *Registry) JoinRoom(roomID string, p checkers.Player) bool {
	_, _, _, err := r.Join(roomID, p)
	return err == nil
}

func (r *Registry) RoomExists(roomID string) bool {
	_, ok := r.GetRoom(roomID)
	return ok
}

func (r *Registry) GetRoom(roomID string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[NormalizeID(roomID)]
	return rm, ok
}

// Rooms lists every room, oldest first.
func (r *Registry) Rooms() []*Room {
	r.mu.RLock()
	out := make([]*Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, rm)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// AvailableRooms lists rooms with an open seat. The result may be stale by the time it is read.
func (r *Registry) AvailableRooms() []*Room {
	var out []*Room
	for _, rm := range r.Rooms() {
		if !rm.Full() {
			out = append(out, rm)
		}
	}
	return out
}

// PlayerByConnection resolves a transport identity to the player seated in roomID.
func (r *Registry) PlayerByConnection(roomID, connectionRef string) (checkers.Player, bool) {
	rm, ok := r.GetRoom(roomID)
	if !ok {
		return checkers.Player{}, false
	}
	return rm.PlayerByConnection(connectionRef)
}

// RemoveEmptyRooms evicts rooms with no seated player and returns their ids.
func (r *Registry) RemoveEmptyRooms() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []string
	for id, rm := range r.rooms {
		if rm.PlayerCount() == 0 {
			delete(r.rooms, id)
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	return removed
}

// RemoveRoom deletes a room regardless of its state.
func (r *Registry) RemoveRoom(roomID string) bool {
	id := NormalizeID(roomID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; !ok {
		return false
	}
	delete(r.rooms, id)
	return true
}

// OnConnectionLost marks every IN_PROGRESS room where connectionRef is seated as ABANDONED
// and returns snapshots of the rooms it changed.
func (r *Registry) OnConnectionLost(connectionRef string) []Snapshot {
	if connectionRef == "" {
		return nil
	}
	var changed []Snapshot
	for _, rm := range r.Rooms() {
		if snap, ok := rm.abandonIfSeated(connectionRef); ok {
			changed = append(changed, snap)
		}
	}
	return changed
}

// Len returns the number of registered rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
