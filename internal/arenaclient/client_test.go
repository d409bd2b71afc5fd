package arenaclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/park285/checkers-arena/internal/api/httpapi"
	"github.com/park285/checkers-arena/internal/api/ws"
	"github.com/park285/checkers-arena/internal/arena"
	"github.com/park285/checkers-arena/internal/room"
	"github.com/park285/checkers-arena/pkg/arenadto"
)

func newArenaServer(t *testing.T, ids ...string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := room.NewRegistry(room.WithRoomIDs(room.Sequence(ids...)))
	svc := arena.NewService(arena.Deps{Registry: reg}, arena.Config{})
	srv := httptest.NewServer(httpapi.NewRouter(svc, ws.NewHub(svc, ws.Options{}, nil), nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientRoomLifecycle(t *testing.T) {
	srv := newArenaServer(t, "ABC234")
	c := NewClient(srv.URL + "/")
	ctx := context.Background()

	created, err := c.CreateRoom(ctx, "table", "alice")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if created.RoomID != "ABC234" || created.CreatorID == "" {
		t.Fatalf("created = %+v", created)
	}

	rooms, err := c.ListRooms(ctx)
	if err != nil || len(rooms) != 1 {
		t.Fatalf("ListRooms = %+v, %v", rooms, err)
	}
	ok, err := c.RoomExists(ctx, "abc234")
	if err != nil || !ok {
		t.Fatalf("RoomExists = %v, %v", ok, err)
	}
	st, err := c.RoomState(ctx, "ABC234")
	if err != nil || st.Status != "WAITING" {
		t.Fatalf("RoomState = %+v, %v", st, err)
	}
	recent, err := c.RecentGames(ctx, 5)
	if err != nil || len(recent) != 0 {
		t.Fatalf("RecentGames = %+v, %v", recent, err)
	}
}

func TestClientDecodesAPIError(t *testing.T) {
	srv := newArenaServer(t)
	c := NewClient(srv.URL)

	_, err := c.Room(context.Background(), "NOPE42")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Body.Code != arenadto.CodeNotFound {
		t.Fatalf("apiErr = %+v", apiErr)
	}

	_, err = c.CreateRoom(context.Background(), "", "")
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("validation error = %v", err)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetry(3), WithTimeout(2*time.Second))
	if _, err := c.ListRooms(context.Background()); err != nil {
		t.Fatalf("ListRooms: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d", calls.Load())
	}

	calls.Store(0)
	if _, err := c.CreateRoom(context.Background(), "t", "alice"); err == nil {
		t.Fatalf("expected unretried failure")
	}
	if calls.Load() != 1 {
		t.Fatalf("create retried: %d calls", calls.Load())
	}
}

func TestObserverWatchesRoom(t *testing.T) {
	srv := newArenaServer(t, "ABC234")
	c := NewClient(srv.URL)
	ctx := context.Background()
	if _, err := c.CreateRoom(ctx, "table", "alice"); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	var mu sync.Mutex
	var frames []arenadto.Envelope
	got := make(chan struct{}, 4)
	obs := NewObserver(WebSocketURL(srv.URL), func(env arenadto.Envelope) {
		mu.Lock()
		frames = append(frames, env)
		mu.Unlock()
		got <- struct{}{}
	})
	if err := obs.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer func() { _ = obs.Close(context.Background()) }()

	if err := obs.Watch(ctx, "ABC234"); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatalf("no frame received")
	}
	mu.Lock()
	defer mu.Unlock()
	if frames[0].Action != arenadto.ActionGameState {
		t.Fatalf("first frame = %s", frames[0].Action)
	}
}

func TestWebSocketURL(t *testing.T) {
	cases := map[string]string{
		"http://localhost:8080":  "ws://localhost:8080/ws",
		"https://arena.example/": "wss://arena.example/ws",
	}
	for in, want := range cases {
		if got := WebSocketURL(in); got != want {
			t.Fatalf("WebSocketURL(%q) = %q, want %q", in, got, want)
		}
	}
}
