package arenadto

type CreateRoomRequest struct {
	RoomName       string `json:"roomName" validate:"omitempty,max=48"`
	PlayerNickname string `json:"playerNickname" validate:"required,nickname"`
}

type CreateRoomResponse struct {
	RoomID    string `json:"roomId"`
	RoomName  string `json:"roomName"`
	CreatorID string `json:"creatorId,omitempty"`
	PlayerID  string `json:"playerId,omitempty"`
	Color     string `json:"color,omitempty"`
	Message   string `json:"message"`
}

type JoinRoomRequest struct {
	RoomID         string `json:"roomId" validate:"required,roomcode"`
	PlayerNickname string `json:"playerNickname" validate:"required,nickname"`
}

// WatchRoomRequest subscribes to a room without taking a seat.
type WatchRoomRequest struct {
	RoomID string `json:"roomId" validate:"required,roomcode"`
}

type MoveRequest struct {
	RoomID string `json:"roomId" validate:"required,roomcode"`
	Move   Move   `json:"move"`
}

type Move struct {
	FromRow int  `json:"fromRow"`
	FromCol int  `json:"fromCol"`
	ToRow   int  `json:"toRow"`
	ToCol   int  `json:"toCol"`
	Capture bool `json:"capture,omitempty"`
}
