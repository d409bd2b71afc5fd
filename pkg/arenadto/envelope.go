package arenadto

import "encoding/json"

// Client actions.
const (
	ActionCreate = "create"
	ActionJoin   = "join"
	ActionMove   = "move"
	ActionWatch  = "watch"
)

// Server frame types.
const (
	ActionRoomCreated  = "room_created"
	ActionPlayerJoined = "player_joined"
	ActionGameState    = "game_state"
	ActionError        = "error"
)

// Envelope is the frame shape in both directions.
type Envelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func NewEnvelope(action string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Action: action, Data: raw}, nil
}
