package arena

import (
	"github.com/park285/checkers-arena/internal/checkers"
	"github.com/park285/checkers-arena/internal/room"
)

// StateMessage is the status line shown with a game state.
func (s *Service) StateMessage(g *checkers.Game) string {
	if g == nil {
		return ""
	}
	switch g.Status {
	case checkers.StatusInProgress:
		if g.Turn == checkers.Dark {
			return s.catalog.Text("state.turn_dark", nil)
		}
		return s.catalog.Text("state.turn_light", nil)
	case checkers.StatusFinished:
		w, _ := g.Winner()
		return s.catalog.Text("state.finished", map[string]any{"Winner": w.Nickname})
	case checkers.StatusAbandoned:
		return s.catalog.Text("state.abandoned", nil)
	default:
		return ""
	}
}

// JoinedMessage announces a newly seated player.
func (s *Service) JoinedMessage(p checkers.Player) string {
	return s.catalog.Text("room.joined", map[string]any{"Nickname": p.Nickname, "Color": p.Color.String()})
}

// ReconnectedMessage is sent on a rejoin to a room that is still waiting.
func (s *Service) ReconnectedMessage() string { return s.catalog.Text("room.reconnected", nil) }

// CreatedMessage confirms a new room.
func (s *Service) CreatedMessage(snap room.Snapshot) string {
	return s.catalog.Text("room.created", map[string]any{"RoomID": snap.RoomID})
}

// Text renders an arbitrary catalog key.
func (s *Service) Text(key string, data any) string { return s.catalog.Text(key, data) }
