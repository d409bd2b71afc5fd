package events

import (
    "context"
    "encoding/json"
    "time"

    "github.com/park285/checkers-arena/internal/checkers"
    "github.com/park285/checkers-arena/internal/room"
)

// Type names a room lifecycle event.
type Type string

const (
    RoomCreated   Type = "room_created"
    PlayerJoined  Type = "player_joined"
    GameStarted   Type = "game_started"
    GameFinished  Type = "game_finished"
    GameAbandoned Type = "game_abandoned"
    RoomRemoved   Type = "room_removed"
)

// Event is the payload written to the rooms topic, keyed by RoomID.
type Event struct {
    Type      Type      `json:"type"`
    RoomID    string    `json:"roomId"`
    Status    string    `json:"status,omitempty"`
    PlayerID  string    `json:"playerId,omitempty"`
    Nickname  string    `json:"nickname,omitempty"`
    Color     string    `json:"color,omitempty"`
    Winner    string    `json:"winner,omitempty"`
    Version   uint64    `json:"version,omitempty"`
    Timestamp time.Time `json:"ts"`
}

// Publisher delivers lifecycle events. Implementations must be safe for concurrent use.
type Publisher interface {
    Publish(ctx context.Context, evs ...Event) error
    Close() error
}

// FromSnapshot fills room-level fields from s.
func FromSnapshot(t Type, s room.Snapshot) Event {
    ev := Event{Type: t, RoomID: s.RoomID, Timestamp: time.Now().UTC()}
    if g := s.Game; g != nil {
        ev.Status = string(g.Status)
        ev.Version = g.Version()
        if w, ok := g.Winner(); ok { ev.Winner = w.Color.String() }
    }
    return ev
}

// WithPlayer attaches the player fields.
func (e Event) WithPlayer(p checkers.Player) Event {
    e.PlayerID = p.ID
    e.Nickname = p.Nickname
    if p.Color != checkers.NoColor { e.Color = p.Color.String() }
    return e
}

func encode(ev Event) ([]byte, error) { return json.Marshal(ev) }

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, ...Event) error { return nil }
func (Nop) Close() error                            { return nil }
