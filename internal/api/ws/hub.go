package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/park285/checkers-arena/internal/arena"
	"github.com/park285/checkers-arena/internal/room"
	"github.com/park285/checkers-arena/pkg/arenadto"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	readLimit    = 16 << 10
	sendBuffer   = 32
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
)

type Options struct {
	OriginPatterns []string // empty accepts any origin
	MessageRate    float64
	MessageBurst   int
}

// Hub accepts WebSocket connections, dispatches their actions to the arena service
// and fans room updates out to every subscribed connection.
type Hub struct {
	svc    *arena.Service
	logger *zap.Logger
	opts   Options

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

func NewHub(svc *arena.Service, opts Options, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MessageRate <= 0 {
		opts.MessageRate = 10
	}
	if opts.MessageBurst <= 0 {
		opts.MessageBurst = 20
	}
	return &Hub{svc: svc, logger: logger, opts: opts, rooms: make(map[string]map[*client]struct{})}
}

type client struct {
	ref     string
	conn    *websocket.Conn
	send    chan arenadto.Envelope
	limiter *rate.Limiter

	mu    sync.Mutex
	rooms map[string]struct{}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:     h.opts.OriginPatterns,
		InsecureSkipVerify: len(h.opts.OriginPatterns) == 0,
		CompressionMode:    websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		h.logger.Warn("ws_accept_failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	conn.SetReadLimit(readLimit)

	c := &client{
		ref:     uuid.NewString(),
		conn:    conn,
		send:    make(chan arenadto.Envelope, sendBuffer),
		limiter: rate.NewLimiter(rate.Limit(h.opts.MessageRate), h.opts.MessageBurst),
		rooms:   make(map[string]struct{}),
	}
	h.logger.Info("ws_connect", zap.String("conn", c.ref), zap.String("remote", r.RemoteAddr))

	ctx, cancel := context.WithCancel(r.Context())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		h.writeLoop(ctx, c)
	}()
	go func() {
		defer wg.Done()
		h.pingLoop(ctx, c)
	}()

	err = h.readLoop(ctx, c)
	cancel()
	wg.Wait()
	h.disconnect(c, err)
}

func (h *Hub) readLoop(ctx context.Context, c *client) error {
	for {
		var env arenadto.Envelope
		if err := wsjson.Read(ctx, c.conn, &env); err != nil {
			return err
		}
		if !c.limiter.Allow() {
			h.sendError(c, arenadto.CodeRateLimited, h.svc.Text("errors.rate_limited", nil))
			continue
		}
		h.dispatch(ctx, c, env)
	}
}

func (h *Hub) writeLoop(ctx context.Context, c *client) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c.conn, env)
			cancel()
			if err != nil {
				_ = c.conn.Close(websocket.StatusInternalError, "write failed")
				return
			}
		}
	}
}

func (h *Hub) pingLoop(ctx context.Context, c *client) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				_ = c.conn.Close(websocket.StatusGoingAway, "ping failure")
				return
			}
		}
	}
}

// disconnect unsubscribes c and abandons the games it was playing.
func (h *Hub) disconnect(c *client, cause error) {
	h.unsubscribeAll(c)
	changed := h.svc.Disconnect(context.Background(), c.ref)
	for _, snap := range changed {
		h.broadcastState(snap)
	}
	status := websocket.CloseStatus(cause)
	fields := []zap.Field{zap.String("conn", c.ref), zap.Int("abandoned", len(changed))}
	if status == -1 && cause != nil && !errors.Is(cause, context.Canceled) {
		fields = append(fields, zap.Error(cause))
	}
	h.logger.Info("ws_disconnect", fields...)
	_ = c.conn.Close(websocket.StatusNormalClosure, "")
}

func (h *Hub) subscribe(c *client, roomID string) {
	h.mu.Lock()
	subs, ok := h.rooms[roomID]
	if !ok {
		subs = make(map[*client]struct{})
		h.rooms[roomID] = subs
	}
	subs[c] = struct{}{}
	h.mu.Unlock()

	c.mu.Lock()
	c.rooms[roomID] = struct{}{}
	c.mu.Unlock()
}

func (h *Hub) unsubscribeAll(c *client) {
	c.mu.Lock()
	ids := make([]string, 0, len(c.rooms))
	for id := range c.rooms {
		ids = append(ids, id)
	}
	c.rooms = map[string]struct{}{}
	c.mu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, id := range ids {
		if subs, ok := h.rooms[id]; ok {
			delete(subs, c)
			if len(subs) == 0 {
				delete(h.rooms, id)
			}
		}
	}
}

// Subscribers returns the number of connections following roomID.
func (h *Hub) Subscribers(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room.NormalizeID(roomID)])
}

func (h *Hub) broadcast(roomID, action string, data any) {
	env, err := arenadto.NewEnvelope(action, data)
	if err != nil {
		h.logger.Error("ws_encode_failed", zap.String("action", action), zap.Error(err))
		return
	}
	h.mu.RLock()
	targets := make([]*client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	for _, c := range targets {
		h.enqueue(c, env)
	}
}

func (h *Hub) broadcastState(snap room.Snapshot) {
	h.broadcast(snap.RoomID, arenadto.ActionGameState, h.svc.GameStateView(snap))
}

func (h *Hub) reply(c *client, action string, data any) {
	env, err := arenadto.NewEnvelope(action, data)
	if err != nil {
		h.logger.Error("ws_encode_failed", zap.String("action", action), zap.Error(err))
		return
	}
	h.enqueue(c, env)
}

func (h *Hub) enqueue(c *client, env arenadto.Envelope) {
	select {
	case c.send <- env:
	default:
		h.logger.Warn("ws_slow_consumer", zap.String("conn", c.ref), zap.String("action", env.Action))
	}
}

func (h *Hub) sendError(c *client, code, msg string) {
	h.reply(c, arenadto.ActionError, arenadto.Error{Code: code, Message: msg})
}
