package checkers

import "time"

// Game is one session: board, two seats, turn and lifecycle status.
// It is not safe for concurrent use; callers serialize access per room.
type Game struct {
	ID         string
	Board      *Board
	Turn       Color
	Status     Status
	CreatedAt  time.Time
	LastMoveAt time.Time

	light   Seat
	dark    Seat
	winner  Seat
	version uint64
	history []Move
	chain   *Position // piece that must keep jumping, nil outside a chain
}

// NewGame returns a WAITING session on the starting position with LIGHT to move.
func NewGame(id string, createdAt time.Time) *Game {
	return &Game{
		ID:        id,
		Board:     NewBoard(),
		Turn:      Light,
		Status:    StatusWaiting,
		CreatedAt: createdAt,
	}
}

// Seat returns the seat of color c.
func (g *Game) Seat(c Color) Seat {
	switch c {
	case Light:
		return g.light
	case Dark:
		return g.dark
	default:
		return Seat{}
	}
}

// Winner returns the winning player; set only once the game is FINISHED.
func (g *Game) Winner() (Player, bool) { return g.winner.Player() }

// Chain returns the square of the piece that must continue a capture chain.
func (g *Game) Chain() (Position, bool) {
	if g.chain == nil {
		return Position{}, false
	}
	return *g.chain, true
}

// Version increases by one on every mutation.
func (g *Game) Version() uint64 { return g.version }

// History returns the applied moves in order.
func (g *Game) History() []Move {
	out := make([]Move, len(g.history))
	copy(out, g.history)
	return out
}

// SeatedCount is the number of occupied seats.
func (g *Game) SeatedCount() int {
	n := 0
	if g.light.Occupied() {
		n++
	}
	if g.dark.Occupied() {
		n++
	}
	return n
}

func (g *Game) Full() bool { return g.SeatedCount() == 2 }

// SeatPlayer places p in the first open seat (LIGHT, then DARK) and returns p with its color assigned.
// Filling the second seat moves a WAITING session to IN_PROGRESS.
func (g *Game) SeatPlayer(p Player) (Player, bool) {
	switch {
	case !g.light.Occupied():
		p.Color = Light
		g.light = seatWith(p)
	case !g.dark.Occupied():
		p.Color = Dark
		g.dark = seatWith(p)
	default:
		return Player{}, false
	}
	if g.Full() && g.Status == StatusWaiting {
		g.Status = StatusInProgress
	}
	g.version++
	return p, true
}

// PlayerByConnection resolves a transport identity to a seated player.
func (g *Game) PlayerByConnection(ref string) (Player, bool) {
	if ref == "" {
		return Player{}, false
	}
	for _, s := range []Seat{g.light, g.dark} {
		if p, ok := s.Player(); ok && p.ConnectionRef == ref {
			return p, true
		}
	}
	return Player{}, false
}

// IsPlayerTurn reports whether p holds the turn.
func (g *Game) IsPlayerTurn(p Player) bool {
	return p.Color != NoColor && p.Color == g.Turn
}

// Abandon moves an IN_PROGRESS session to ABANDONED. Seats are kept.
func (g *Game) Abandon() bool {
	if g.Status != StatusInProgress {
		return false
	}
	g.Status = StatusAbandoned
	g.version++
	return true
}

// ApplyMove validates m against the piece on its origin square and, if legal, applies it.
// It returns the enriched move record. A rejected move leaves the session unchanged.
func (g *Game) ApplyMove(m Move) (Move, bool) {
	if g.Status != StatusInProgress {
		return Move{}, false
	}
	p, ok := g.Board.At(m.FromRow, m.FromCol)
	if !ok || p.Color != g.Turn {
		return Move{}, false
	}
	applied, ok := ValidateMove(g.Board, p, m)
	if !ok {
		return Move{}, false
	}
	if g.chain != nil && (applied.From() != *g.chain || !applied.Capture) {
		return Move{}, false
	}

	g.Board.relocate(applied.FromRow, applied.FromCol, applied.ToRow, applied.ToCol)
	if applied.Capture {
		g.Board.Remove(applied.Captured.Row, applied.Captured.Col)
	}
	moved, _ := g.Board.At(applied.ToRow, applied.ToCol)

	// a capture keeps the turn while the same piece can jump again
	if !applied.Capture || len(CapturesForPiece(g.Board, moved)) == 0 {
		if shouldPromote(moved) {
			g.Board.crown(moved.Row, moved.Col)
		}
		g.Turn = g.Turn.Opponent()
		g.chain = nil
	} else {
		to := applied.To()
		g.chain = &to
	}

	g.history = append(g.history, applied)
	g.LastMoveAt = time.Now()
	g.version++
	g.checkWinCondition()
	return applied, true
}

// checkWinCondition runs against the side that now holds the turn.
func (g *Game) checkWinCondition() {
	if g.Board.Count(g.Turn) > 0 && HasAnyValidMove(g.Board, g.Turn) {
		return
	}
	g.Status = StatusFinished
	g.winner = g.Seat(g.Turn.Opponent())
}

// Clone returns a deep copy suitable for reading outside the room's exclusive section.
func (g *Game) Clone() *Game {
	cp := *g
	cp.Board = g.Board.Clone()
	cp.history = g.History()
	if g.chain != nil {
		at := *g.chain
		cp.chain = &at
	}
	return &cp
}
