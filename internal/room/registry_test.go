package room

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/park285/checkers-arena/internal/checkers"
)

func newTestRegistry(t *testing.T, ids ...string) *Registry {
	t.Helper()
	var n atomic.Int64
	players := func() (string, error) { return fmt.Sprintf("player-%d", n.Add(1)), nil }
	opts := []Option{WithPlayerIDs(players)}
	if len(ids) > 0 {
		opts = append(opts, WithRoomIDs(Sequence(ids...)))
	}
	return NewRegistry(opts...)
}

func mustPlayer(t *testing.T, r *Registry, nickname, ref string) checkers.Player {
	t.Helper()
	p, err := r.NewPlayer(nickname, ref)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	return p
}

// finishedRoom plays a full room to a LIGHT win with a single capture.
func finishedRoom(t *testing.T, r *Registry) *Room {
	t.Helper()
	rm := fullRoom(t, r)
	rm.Do(func(g *checkers.Game) {
		b := checkers.EmptyBoard()
		b.Place(checkers.Piece{Color: checkers.Light}, 5, 2)
		b.Place(checkers.Piece{Color: checkers.Dark}, 4, 3)
		g.Board = b
		g.Turn = checkers.Light
	})
	_, snap, err := rm.Play("c1", checkers.Step(5, 2, 3, 4))
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if snap.Game.Status != checkers.StatusFinished {
		t.Fatalf("status = %s, want FINISHED", snap.Game.Status)
	}
	return rm
}

func fullRoom(t *testing.T, r *Registry) *Room {
	t.Helper()
	rm, _, err := r.CreateRoom("table", mustPlayer(t, r, "alice", "c1"))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if !r.JoinRoom(rm.ID, mustPlayer(t, r, "bob", "c2")) {
		t.Fatalf("JoinRoom failed")
	}
	return rm
}

func TestCreateRoomSeatsCreatorAsLight(t *testing.T) {
	r := newTestRegistry(t, "abc234")
	rm, seated, err := r.CreateRoom("table", mustPlayer(t, r, "alice", "c1"))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if rm.ID != "ABC234" {
		t.Fatalf("room id = %q, want normalized ABC234", rm.ID)
	}
	if seated.Color != checkers.Light || seated.ID != "player-1" {
		t.Fatalf("seated = %+v", seated)
	}
	snap := rm.Snapshot()
	if snap.Game.Status != checkers.StatusWaiting || snap.PlayerCount() != 1 {
		t.Fatalf("status=%s players=%d", snap.Game.Status, snap.PlayerCount())
	}
	if rm.CreatorID != seated.ID {
		t.Fatalf("creator id = %q", rm.CreatorID)
	}
	if !r.RoomExists("abc234") {
		t.Fatalf("lookup is not case-insensitive")
	}
}

func TestCreateRoomRegeneratesOnCollision(t *testing.T) {
	r := newTestRegistry(t, "AAAAAA", "AAAAAA", "BBBBBB")
	first, _, err := r.CreateRoom("one", mustPlayer(t, r, "a", "c1"))
	if err != nil {
		t.Fatalf("first CreateRoom: %v", err)
	}
	second, _, err := r.CreateRoom("two", mustPlayer(t, r, "b", "c2"))
	if err != nil {
		t.Fatalf("second CreateRoom: %v", err)
	}
	if first.ID != "AAAAAA" || second.ID != "BBBBBB" {
		t.Fatalf("ids = %q, %q", first.ID, second.ID)
	}
	if _, _, err := r.CreateRoom("three", mustPlayer(t, r, "c", "c3")); !errors.Is(err, ErrCodeAllocation) {
		t.Fatalf("expected ErrCodeAllocation, got %v", err)
	}
	got, _ := r.GetRoom("AAAAAA")
	if got != first || got.Name != "one" {
		t.Fatalf("existing room overwritten")
	}
	if r.Len() != 2 {
		t.Fatalf("rooms = %d", r.Len())
	}
}

func TestRandomCodeAlphabet(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := RandomCode()
		if err != nil {
			t.Fatalf("RandomCode: %v", err)
		}
		if len(code) != CodeLength {
			t.Fatalf("len(%q) = %d", code, len(code))
		}
		for _, ch := range code {
			if !containsRune(codeAlphabet, ch) {
				t.Fatalf("code %q has %q outside alphabet", code, ch)
			}
		}
	}
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}

func TestJoinRoom(t *testing.T) {
	r := newTestRegistry(t)
	rm, _, err := r.CreateRoom("table", mustPlayer(t, r, "alice", "c1"))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if r.JoinRoom("NOPE99", mustPlayer(t, r, "x", "cx")) {
		t.Fatalf("joined a missing room")
	}
	seated, snap, rejoined, err := r.Join(rm.ID, mustPlayer(t, r, "bob", "c2"))
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if rejoined {
		t.Fatalf("first join reported as rejoin")
	}
	if seated.Color != checkers.Dark {
		t.Fatalf("second player color = %s", seated.Color)
	}
	if snap.Game.Status != checkers.StatusInProgress || !snap.Full() {
		t.Fatalf("snapshot status=%s full=%v", snap.Game.Status, snap.Full())
	}
	if _, _, _, err := r.Join(rm.ID, mustPlayer(t, r, "carol", "c3")); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	if p, _ := rm.Snapshot().Game.Seat(checkers.Dark).Player(); p.Nickname != "bob" {
		t.Fatalf("dark seat overwritten by %q", p.Nickname)
	}
}

func TestConcurrentJoinForLastSeat(t *testing.T) {
	for round := 0; round < 20; round++ {
		r := newTestRegistry(t)
		rm, _, err := r.CreateRoom("table", mustPlayer(t, r, "alice", "c0"))
		if err != nil {
			t.Fatalf("CreateRoom: %v", err)
		}

		const joiners = 16
		var (
			wg      sync.WaitGroup
			wins    atomic.Int32
			started atomic.Int32
		)
		for i := 0; i < joiners; i++ {
			p := mustPlayer(t, r, fmt.Sprintf("p%d", i), fmt.Sprintf("c%d", i+1))
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, snap, _, err := r.Join(rm.ID, p)
				if err == nil {
					wins.Add(1)
					if snap.Game.Status == checkers.StatusInProgress {
						started.Add(1)
					}
				} else if !errors.Is(err, ErrRoomFull) {
					t.Errorf("unexpected join error: %v", err)
				}
			}()
		}
		wg.Wait()

		if wins.Load() != 1 {
			t.Fatalf("round %d: %d joins succeeded, want 1", round, wins.Load())
		}
		if started.Load() != 1 {
			t.Fatalf("round %d: IN_PROGRESS observed %d times", round, started.Load())
		}
		snap := rm.Snapshot()
		if snap.PlayerCount() != 2 || snap.Game.Version() != 2 {
			t.Fatalf("players=%d version=%d", snap.PlayerCount(), snap.Game.Version())
		}
	}
}

func TestJoinSameConnectionClaimsOneSeat(t *testing.T) {
	for round := 0; round < 20; round++ {
		r := newTestRegistry(t)
		rm, err := r.ReserveRoom("table", "owner")
		if err != nil {
			t.Fatalf("ReserveRoom: %v", err)
		}

		const callers = 8
		var (
			wg       sync.WaitGroup
			fresh    atomic.Int32
			rejoins  atomic.Int32
			seatedID sync.Map
		)
		for i := 0; i < callers; i++ {
			p := mustPlayer(t, r, fmt.Sprintf("tab%d", i), "c1")
			wg.Add(1)
			go func() {
				defer wg.Done()
				seated, _, rejoined, err := r.Join(rm.ID, p)
				if err != nil {
					t.Errorf("Join: %v", err)
					return
				}
				seatedID.Store(seated.ID, struct{}{})
				if rejoined {
					rejoins.Add(1)
				} else {
					fresh.Add(1)
				}
			}()
		}
		wg.Wait()

		if fresh.Load() != 1 || rejoins.Load() != callers-1 {
			t.Fatalf("round %d: fresh=%d rejoins=%d", round, fresh.Load(), rejoins.Load())
		}
		ids := 0
		seatedID.Range(func(any, any) bool { ids++; return true })
		if ids != 1 {
			t.Fatalf("round %d: %d distinct players returned, want 1", round, ids)
		}
		if n := rm.PlayerCount(); n != 1 {
			t.Fatalf("round %d: one connection holds %d seats", round, n)
		}
	}
}

func TestSequenceIsSafeForConcurrentUse(t *testing.T) {
	gen := Sequence("A", "B", "C", "D")
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[string]int{}
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := gen()
			if err != nil {
				t.Errorf("Sequence: %v", err)
				return
			}
			mu.Lock()
			seen[id]++
			mu.Unlock()
		}()
	}
	wg.Wait()
	for _, id := range []string{"A", "B", "C"} {
		if seen[id] != 1 {
			t.Fatalf("%s yielded %d times, want 1 (%v)", id, seen[id], seen)
		}
	}
	if seen["D"] != 13 {
		t.Fatalf("last id yielded %d times, want 13", seen["D"])
	}
}

func TestConcurrentCreatesAreIndependent(t *testing.T) {
	r := NewRegistry()
	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := r.NewPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("c%d", i))
			if err != nil {
				t.Errorf("NewPlayer: %v", err)
				return
			}
			if _, _, err := r.CreateRoom("table", p); err != nil {
				t.Errorf("CreateRoom: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if r.Len() != n {
		t.Fatalf("rooms = %d, want %d", r.Len(), n)
	}
}

func TestAvailableRooms(t *testing.T) {
	r := newTestRegistry(t, "AAAAAA", "BBBBBB", "CCCCCC")
	full := fullRoom(t, r)
	open, _, err := r.CreateRoom("open", mustPlayer(t, r, "carol", "c3"))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	reserved, err := r.ReserveRoom("reserved", "owner")
	if err != nil {
		t.Fatalf("ReserveRoom: %v", err)
	}
	got := r.AvailableRooms()
	if len(got) != 2 {
		t.Fatalf("available = %d, want 2", len(got))
	}
	for _, rm := range got {
		if rm == full {
			t.Fatalf("full room listed as available")
		}
	}
	if got[0] != open && got[1] != open || got[0] != reserved && got[1] != reserved {
		t.Fatalf("unexpected available rooms")
	}
}

func TestPlayerByConnection(t *testing.T) {
	r := newTestRegistry(t)
	rm := fullRoom(t, r)
	p, ok := r.PlayerByConnection(rm.ID, "c2")
	if !ok || p.Nickname != "bob" || p.Color != checkers.Dark {
		t.Fatalf("PlayerByConnection = %+v ok=%v", p, ok)
	}
	if _, ok := r.PlayerByConnection(rm.ID, "c9"); ok {
		t.Fatalf("unknown connection resolved")
	}
	if _, ok := r.PlayerByConnection("ZZZZZZ", "c1"); ok {
		t.Fatalf("resolved in missing room")
	}
}

func TestRemoveEmptyRooms(t *testing.T) {
	r := newTestRegistry(t, "AAAAAA", "BBBBBB", "CCCCCC", "DDDDDD", "EEEEEE")
	full := fullRoom(t, r)
	single, _, err := r.CreateRoom("single", mustPlayer(t, r, "carol", "c3"))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	empty, err := r.ReserveRoom("empty", "owner")
	if err != nil {
		t.Fatalf("ReserveRoom: %v", err)
	}
	abandoned := fullRoom(t, r)
	finished := finishedRoom(t, r)
	// every fullRoom table seats c1/c2, so one disconnect abandons the live ones
	r.OnConnectionLost("c1")

	removed := r.RemoveEmptyRooms()
	if len(removed) != 1 || removed[0] != empty.ID {
		t.Fatalf("removed = %v, want [%s]", removed, empty.ID)
	}
	for _, rm := range []*Room{full, single, abandoned, finished} {
		if !r.RoomExists(rm.ID) {
			t.Fatalf("room %s with seated players evicted", rm.ID)
		}
	}
	if st := finished.Snapshot().Game.Status; st != checkers.StatusFinished {
		t.Fatalf("finished room status = %s after disconnect and sweep", st)
	}
	if got := r.RemoveEmptyRooms(); len(got) != 0 {
		t.Fatalf("second sweep removed %v", got)
	}
}

func TestRemoveRoom(t *testing.T) {
	r := newTestRegistry(t)
	rm := fullRoom(t, r)
	if !r.RemoveRoom(rm.ID) {
		t.Fatalf("RemoveRoom returned false")
	}
	if r.RoomExists(rm.ID) {
		t.Fatalf("room still registered")
	}
	if r.RemoveRoom(rm.ID) {
		t.Fatalf("second RemoveRoom returned true")
	}
}

func TestOnConnectionLost(t *testing.T) {
	r := newTestRegistry(t, "AAAAAA", "BBBBBB")
	playing := fullRoom(t, r)
	waiting, _, err := r.CreateRoom("waiting", mustPlayer(t, r, "carol", "c3"))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	if got := r.OnConnectionLost("unknown"); len(got) != 0 {
		t.Fatalf("unknown connection changed %d rooms", len(got))
	}
	if got := r.OnConnectionLost("c3"); len(got) != 0 {
		t.Fatalf("waiting room changed")
	}
	if s := waiting.Snapshot(); s.Game.Status != checkers.StatusWaiting {
		t.Fatalf("waiting room status = %s", s.Game.Status)
	}

	changed := r.OnConnectionLost("c2")
	if len(changed) != 1 || changed[0].RoomID != playing.ID {
		t.Fatalf("changed = %+v", changed)
	}
	snap := playing.Snapshot()
	if snap.Game.Status != checkers.StatusAbandoned {
		t.Fatalf("status = %s, want ABANDONED", snap.Game.Status)
	}
	if _, ok := snap.Game.Winner(); ok {
		t.Fatalf("abandon set a winner")
	}
	if snap.PlayerCount() != 2 {
		t.Fatalf("abandon vacated a seat")
	}
}

func TestRoomPlay(t *testing.T) {
	r := newTestRegistry(t)
	rm, _, err := r.CreateRoom("table", mustPlayer(t, r, "alice", "c1"))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if _, _, err := rm.Play("c1", checkers.Step(5, 0, 4, 1)); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress, got %v", err)
	}
	if !r.JoinRoom(rm.ID, mustPlayer(t, r, "bob", "c2")) {
		t.Fatalf("JoinRoom failed")
	}

	if _, _, err := rm.Play("c9", checkers.Step(5, 0, 4, 1)); !errors.Is(err, ErrNotSeated) {
		t.Fatalf("expected ErrNotSeated, got %v", err)
	}
	if _, _, err := rm.Play("c2", checkers.Step(2, 1, 3, 0)); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if _, _, err := rm.Play("c1", checkers.Step(5, 0, 3, 2)); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}

	applied, snap, err := rm.Play("c1", checkers.Step(5, 0, 4, 1))
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if applied.ToRow != 4 || applied.ToCol != 1 {
		t.Fatalf("applied = %+v", applied)
	}
	if snap.Game.Turn != checkers.Dark || !snap.Game.Board.Occupied(4, 1) {
		t.Fatalf("snapshot does not reflect the move")
	}
}

func TestConcurrentPlaySerializesPerRoom(t *testing.T) {
	r := newTestRegistry(t)
	rm := fullRoom(t, r)

	// both requests target LIGHT's opening; only one can land
	var (
		wg sync.WaitGroup
		ok atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := rm.Play("c1", checkers.Step(5, 2, 4, 3)); err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()
	if ok.Load() != 1 {
		t.Fatalf("%d moves applied, want 1", ok.Load())
	}
	if got := len(rm.Snapshot().Game.History()); got != 1 {
		t.Fatalf("history = %d", got)
	}
}
