package arenadto

import "time"

type RoomInfo struct {
	RoomID         string    `json:"roomId"`
	RoomName       string    `json:"roomName"`
	CurrentPlayers int       `json:"currentPlayers"`
	MaxPlayers     int       `json:"maxPlayers"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

type PlayerJoined struct {
	RoomID         string `json:"roomId"`
	PlayerNickname string `json:"playerNickname"`
	Color          string `json:"color"`
	PlayerCount    int    `json:"playerCount"`
	GameStarted    bool   `json:"gameStarted"`
	Message        string `json:"message"`
}

type LobbyRoom struct {
	RoomID    string    `json:"roomId"`
	RoomName  string    `json:"roomName"`
	Status    string    `json:"status"`
	Players   int       `json:"players"`
	LightName string    `json:"lightName,omitempty"`
	DarkName  string    `json:"darkName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type GameRecord struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"roomId"`
	LightName  string    `json:"lightName"`
	DarkName   string    `json:"darkName"`
	Result     string    `json:"result"`
	MoveCount  int       `json:"moveCount"`
	PDN        string    `json:"pdn"`
	StartedAt  time.Time `json:"startedAt"`
	EndedAt    time.Time `json:"endedAt"`
	DurationMS int64     `json:"durationMs"`
}
