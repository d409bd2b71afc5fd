package archive

import (
    "context"
    "strings"
    "testing"
    "time"

    "github.com/park285/checkers-arena/internal/checkers"
    "github.com/park285/checkers-arena/internal/room"
)

func finishedSnapshot(t *testing.T) room.Snapshot {
    t.Helper()
    g := checkers.NewGame("ROOM01", time.Now().Add(-time.Minute))
    if _, ok := g.SeatPlayer(checkers.Player{ID: "p1", Nickname: "alice", ConnectionRef: "c1"}); !ok {
        t.Fatalf("seat light")
    }
    if _, ok := g.SeatPlayer(checkers.Player{ID: "p2", Nickname: "bob \"the\" dark", ConnectionRef: "c2"}); !ok {
        t.Fatalf("seat dark")
    }
    b := checkers.EmptyBoard()
    b.Place(checkers.Piece{Color: checkers.Light}, 5, 2)
    b.Place(checkers.Piece{Color: checkers.Dark}, 4, 3)
    g.Board = b
    if _, ok := g.ApplyMove(checkers.Step(5, 2, 3, 4)); !ok {
        t.Fatalf("capture rejected")
    }
    if g.Status != checkers.StatusFinished {
        t.Fatalf("status = %s", g.Status)
    }
    return room.Snapshot{RoomID: "ROOM01", Name: "table", Game: g}
}

func TestFromSnapshotFinished(t *testing.T) {
    rec, ok := FromSnapshot(finishedSnapshot(t))
    if !ok { t.Fatalf("expected record") }
    if rec.Result != ResultLight || rec.LightName != "alice" || rec.DarkID != "p2" {
        t.Fatalf("record = %+v", rec)
    }
    if len(rec.Moves) != 1 || rec.Moves[0] != "22x15" {
        t.Fatalf("moves = %v", rec.Moves)
    }
    if !strings.Contains(rec.PDN, `[Black "bob 'the' dark"]`) || !strings.HasSuffix(rec.PDN, "1. 22x15 2-0") {
        t.Fatalf("pdn = %q", rec.PDN)
    }
    if rec.DurationMS <= 0 { t.Fatalf("duration = %d", rec.DurationMS) }
}

func TestFromSnapshotRejectsLiveGames(t *testing.T) {
    g := checkers.NewGame("ROOM02", time.Now())
    if _, ok := FromSnapshot(room.Snapshot{RoomID: "ROOM02", Game: g}); ok {
        t.Fatalf("waiting game produced a record")
    }
}

func TestAbandonedRecord(t *testing.T) {
    g := checkers.NewGame("ROOM03", time.Now())
    g.SeatPlayer(checkers.Player{ID: "p1", Nickname: "alice"})
    g.SeatPlayer(checkers.Player{ID: "p2", Nickname: "bob"})
    if !g.Abandon() { t.Fatalf("abandon") }
    rec, ok := FromSnapshot(room.Snapshot{RoomID: "ROOM03", Game: g})
    if !ok || rec.Result != ResultAbandoned {
        t.Fatalf("record = %+v", rec)
    }
    if !strings.Contains(rec.PDN, `[Termination "abandoned"]`) || !strings.HasSuffix(rec.PDN, "*") {
        t.Fatalf("pdn = %q", rec.PDN)
    }
}

func TestMemoryRepositoryUpsertsPerRoom(t *testing.T) {
    repo := NewMemoryRepository()
    ctx := context.Background()
    now := time.Now()

    _ = repo.SaveResult(ctx, &Record{ID: "a", RoomID: "R1", Result: ResultLight, EndedAt: now})
    _ = repo.SaveResult(ctx, &Record{ID: "b", RoomID: "R2", Result: ResultDark, EndedAt: now.Add(time.Second)})
    _ = repo.SaveResult(ctx, &Record{ID: "c", RoomID: "R1", Result: ResultAbandoned, EndedAt: now.Add(-time.Second)})

    got, err := repo.Recent(ctx, 10)
    if err != nil { t.Fatalf("Recent: %v", err) }
    if len(got) != 2 { t.Fatalf("len = %d", len(got)) }
    if got[0].RoomID != "R2" || got[1].ID != "a" || got[1].Result != ResultAbandoned {
        t.Fatalf("recent = %+v", got)
    }
    if one, _ := repo.Recent(ctx, 1); len(one) != 1 {
        t.Fatalf("limit not applied")
    }
}

func TestSQLRepositoryRequiresURL(t *testing.T) {
    if _, err := NewSQLRepository("  "); err == nil {
        t.Fatalf("expected error for empty DATABASE_URL")
    }
}
