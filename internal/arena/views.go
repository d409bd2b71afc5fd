package arena

import (
	"github.com/park285/checkers-arena/internal/archive"
	"github.com/park285/checkers-arena/internal/checkers"
	"github.com/park285/checkers-arena/internal/lobby"
	"github.com/park285/checkers-arena/internal/room"
	"github.com/park285/checkers-arena/pkg/arenadto"
)

func (s *Service) GameStateView(snap room.Snapshot) arenadto.GameState {
	g := snap.Game
	st := arenadto.GameState{
		RoomID:              snap.RoomID,
		CurrentTurn:         g.Turn.String(),
		Status:              string(g.Status),
		LightPlayerNickname: g.Seat(checkers.Light).Nickname(),
		DarkPlayerNickname:  g.Seat(checkers.Dark).Nickname(),
		Message:             s.StateMessage(g),
		Version:             g.Version(),
	}
	if w, ok := g.Winner(); ok {
		st.WinnerNickname = w.Nickname
	}
	for _, c := range []checkers.Color{checkers.Light, checkers.Dark} {
		for _, p := range g.Board.Pieces(c) {
			st.Pieces = append(st.Pieces, arenadto.Piece{Row: p.Row, Col: p.Col, Color: p.Color.String(), King: p.IsKing()})
		}
	}
	history := g.History()
	st.Moves = checkers.NotationList(history)
	if n := len(history); n > 0 {
		mv := MoveView(history[n-1])
		st.LastMove = &mv
	}
	return st
}

func RoomInfoView(snap room.Snapshot) arenadto.RoomInfo {
	return arenadto.RoomInfo{
		RoomID:         snap.RoomID,
		RoomName:       snap.Name,
		CurrentPlayers: snap.PlayerCount(),
		MaxPlayers:     room.MaxPlayers,
		Status:         string(snap.Game.Status),
		CreatedAt:      snap.CreatedAt,
	}
}

func (s *Service) PlayerJoinedView(snap room.Snapshot, p checkers.Player) arenadto.PlayerJoined {
	return arenadto.PlayerJoined{
		RoomID:         snap.RoomID,
		PlayerNickname: p.Nickname,
		Color:          p.Color.String(),
		PlayerCount:    snap.PlayerCount(),
		GameStarted:    snap.Full(),
		Message:        s.JoinedMessage(p),
	}
}

// RoomUpdateView is a PlayerJoined frame without a player, used for rejoins.
func (s *Service) RoomUpdateView(snap room.Snapshot, message string) arenadto.PlayerJoined {
	return arenadto.PlayerJoined{
		RoomID:      snap.RoomID,
		PlayerCount: snap.PlayerCount(),
		GameStarted: snap.Full(),
		Message:     message,
	}
}

func LobbyView(meta *lobby.RoomMeta) arenadto.LobbyRoom {
	return arenadto.LobbyRoom{
		RoomID:    meta.ID,
		RoomName:  meta.Name,
		Status:    string(meta.State),
		Players:   meta.Players,
		LightName: meta.LightName,
		DarkName:  meta.DarkName,
		CreatedAt: meta.CreatedAt,
	}
}

func RecordView(rec archive.Record) arenadto.GameRecord {
	return arenadto.GameRecord{
		ID:         rec.ID,
		RoomID:     rec.RoomID,
		LightName:  rec.LightName,
		DarkName:   rec.DarkName,
		Result:     rec.Result,
		MoveCount:  len(rec.Moves),
		PDN:        rec.PDN,
		StartedAt:  rec.StartedAt,
		EndedAt:    rec.EndedAt,
		DurationMS: rec.DurationMS,
	}
}

func MoveView(m checkers.Move) arenadto.Move {
	return arenadto.Move{FromRow: m.FromRow, FromCol: m.FromCol, ToRow: m.ToRow, ToCol: m.ToCol, Capture: m.Capture}
}

// MoveFromDTO builds an unvalidated move request. The capture flag is not trusted.
func MoveFromDTO(m arenadto.Move) checkers.Move {
	return checkers.Step(m.FromRow, m.FromCol, m.ToRow, m.ToCol)
}
