package lobby

import "time"

// State mirrors the session status of a room.
type State string

const (
    StateWaiting    State = "WAITING"
    StateInProgress State = "IN_PROGRESS"
    StateFinished   State = "FINISHED"
    StateAbandoned  State = "ABANDONED"
)

// RoomMeta is stored as JSON in Redis under lobby:room:<code>.
type RoomMeta struct {
    ID        string    `json:"id"`
    Name      string    `json:"name"`
    State     State     `json:"state"`
    CreatedAt time.Time `json:"created_at"`
    UpdatedAt time.Time `json:"updated_at"`

    CreatorID string `json:"creator_id,omitempty"`
    LightName string `json:"light_name,omitempty"`
    DarkName  string `json:"dark_name,omitempty"`
    Players   int    `json:"players"`
    Version   uint64 `json:"version"`
}

// Open reports whether the room belongs in the lobby index.
func (m *RoomMeta) Open() bool {
    return m != nil && m.State == StateWaiting && m.Players < 2
}

// Errors
var (
    ErrInvalidArgs = errf("invalid arguments")
    ErrCodeTaken   = errf("no free room code after retries")
)

type staticErr string
func (e staticErr) Error() string { return string(e) }
func errf(s string) error { return staticErr(s) }
