package checkers

import (
	"fmt"
	"strings"
)

// BoardSize is the number of rows and columns on the board.
const BoardSize = 8

// Color identifies a side. The zero value is NoColor and never appears on a placed piece.
type Color uint8

const (
	NoColor Color = iota
	Light
	Dark
)

func (c Color) String() string {
	switch c {
	case Light:
		return "LIGHT"
	case Dark:
		return "DARK"
	default:
		return ""
	}
}

// Opponent returns the other side.
func (c Color) Opponent() Color {
	switch c {
	case Light:
		return Dark
	case Dark:
		return Light
	default:
		return NoColor
	}
}

// forward is the row delta of a non-king step. Light moves toward row 0.
func (c Color) forward() int {
	if c == Light {
		return -1
	}
	return 1
}

// promotionRow is the farthest row from the side's starting rows.
func (c Color) promotionRow() int {
	if c == Light {
		return 0
	}
	return BoardSize - 1
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	parsed, ok := ParseColor(string(b))
	if !ok {
		return fmt.Errorf("unknown color %q", string(b))
	}
	*c = parsed
	return nil
}

// ParseColor accepts LIGHT/DARK (and the WHITE/BLACK aliases) in any case.
func ParseColor(s string) (Color, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LIGHT", "WHITE":
		return Light, true
	case "DARK", "BLACK":
		return Dark, true
	case "":
		return NoColor, true
	default:
		return NoColor, false
	}
}

// Kind is the rank of a piece.
type Kind uint8

const (
	Man Kind = iota
	King
)

func (k Kind) String() string {
	if k == King {
		return "KING"
	}
	return "MAN"
}

// Piece is a color-tagged man or king. Row and Col mirror the cell the piece occupies.
type Piece struct {
	Row   int   `json:"row"`
	Col   int   `json:"col"`
	Color Color `json:"color"`
	Kind  Kind  `json:"-"`
}

func (p Piece) IsKing() bool { return p.Kind == King }

// Position is a board coordinate.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

// Move is a request before validation and a record after it.
// Capture and Captured are only trusted on moves returned by ValidateMove.
type Move struct {
	FromRow  int       `json:"fromRow"`
	FromCol  int       `json:"fromCol"`
	ToRow    int       `json:"toRow"`
	ToCol    int       `json:"toCol"`
	Capture  bool      `json:"capture"`
	Captured *Position `json:"capturedPosition,omitempty"`
}

func (m Move) From() Position { return Position{Row: m.FromRow, Col: m.FromCol} }
func (m Move) To() Position   { return Position{Row: m.ToRow, Col: m.ToCol} }

// Step builds an unvalidated move request.
func Step(fromRow, fromCol, toRow, toCol int) Move {
	return Move{FromRow: fromRow, FromCol: fromCol, ToRow: toRow, ToCol: toCol}
}

// Status is the lifecycle state of a game session.
type Status string

const (
	StatusWaiting    Status = "WAITING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinished   Status = "FINISHED"
	StatusAbandoned  Status = "ABANDONED"
)

// Terminal reports whether no further transition can leave this status.
func (s Status) Terminal() bool { return s == StatusFinished || s == StatusAbandoned }

// Player is a participant. Color is assigned when the player is seated.
type Player struct {
	ID            string `json:"id"`
	Nickname      string `json:"nickname"`
	Color         Color  `json:"color"`
	ConnectionRef string `json:"-"`
}

// Seat is one color slot of a session; the zero value is an empty seat.
type Seat struct {
	player   Player
	occupied bool
}

func seatWith(p Player) Seat { return Seat{player: p, occupied: true} }

// Player returns the seated player, if any.
func (s Seat) Player() (Player, bool) { return s.player, s.occupied }

func (s Seat) Occupied() bool { return s.occupied }

// Nickname returns the seated player's nickname or "".
func (s Seat) Nickname() string {
	if !s.occupied {
		return ""
	}
	return s.player.Nickname
}
