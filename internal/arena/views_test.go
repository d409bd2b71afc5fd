package arena

import (
	"context"
	"testing"

	"github.com/park285/checkers-arena/internal/checkers"
	"github.com/park285/checkers-arena/pkg/arenadto"
)

func TestGameStateView(t *testing.T) {
	f := newFixture(t, "ABC234")
	snap := f.startGame(t)
	_, after, err := f.svc.Move(context.Background(), snap.RoomID, "c1", MoveFromDTO(arenadto.Move{FromRow: 5, FromCol: 0, ToRow: 4, ToCol: 1, Capture: true}))
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	st := f.svc.GameStateView(after)
	if st.CurrentTurn != "DARK" || st.Status != "IN_PROGRESS" || st.Message != "Turn of dark" {
		t.Fatalf("state = %+v", st)
	}
	if st.LightPlayerNickname != "alice" || st.DarkPlayerNickname != "bob" || st.WinnerNickname != "" {
		t.Fatalf("players = %+v", st)
	}
	if len(st.Pieces) != 24 || st.Version != 3 {
		t.Fatalf("pieces = %d version = %d", len(st.Pieces), st.Version)
	}
	if len(st.Moves) != 1 || st.Moves[0] != "21-17" || st.LastMove == nil || st.LastMove.Capture {
		t.Fatalf("moves = %v last = %+v", st.Moves, st.LastMove)
	}

	info := RoomInfoView(after)
	if info.CurrentPlayers != 2 || info.MaxPlayers != 2 || info.Status != "IN_PROGRESS" {
		t.Fatalf("info = %+v", info)
	}
	joined := f.svc.PlayerJoinedView(after, checkers.Player{Nickname: "bob", Color: checkers.Dark})
	if !joined.GameStarted || joined.Color != "DARK" || joined.Message != "bob joined as DARK" {
		t.Fatalf("joined = %+v", joined)
	}
}
