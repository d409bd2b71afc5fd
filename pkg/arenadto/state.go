package arenadto

type Piece struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Color string `json:"color"`
	King  bool   `json:"king"`
}

// GameState is broadcast after every change. Clients drop frames whose Version
// is not greater than the last one applied.
type GameState struct {
	RoomID              string   `json:"roomId"`
	Pieces              []Piece  `json:"pieces"`
	CurrentTurn         string   `json:"currentTurn"`
	Status              string   `json:"status"`
	LightPlayerNickname string   `json:"lightPlayerNickname,omitempty"`
	DarkPlayerNickname  string   `json:"darkPlayerNickname,omitempty"`
	WinnerNickname      string   `json:"winnerNickname,omitempty"`
	Message             string   `json:"message"`
	Version             uint64   `json:"version"`
	Moves               []string `json:"moves,omitempty"`
	LastMove            *Move    `json:"lastMove,omitempty"`
}
