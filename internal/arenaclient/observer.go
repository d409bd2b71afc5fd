package arenaclient

import (
    "context"
    "errors"
    "strings"
    "sync"
    "time"

    "github.com/park285/checkers-arena/pkg/arenadto"
    "nhooyr.io/websocket"
    "nhooyr.io/websocket/wsjson"
)

// FrameCallback receives every server frame in arrival order.
type FrameCallback func(arenadto.Envelope)

// Observer is a WebSocket connection to the arena hub. It can send any client
// action but is mostly used to watch rooms.
type Observer struct {
    wsURL string

    conn   *websocket.Conn
    connM  sync.Mutex
    writeM sync.Mutex

    onFrame      FrameCallback
    pingInterval time.Duration

    stopCh   chan struct{}
    stopOnce sync.Once
    wg       sync.WaitGroup

    rootCtx    context.Context
    rootCancel context.CancelFunc

    errM    sync.Mutex
    lastErr error
}

// WebSocketURL maps an http(s) base URL to the hub endpoint.
func WebSocketURL(baseURL string) string {
    u := strings.TrimRight(baseURL, "/")
    switch {
    case strings.HasPrefix(u, "https://"):
        u = "wss://" + strings.TrimPrefix(u, "https://")
    case strings.HasPrefix(u, "http://"):
        u = "ws://" + strings.TrimPrefix(u, "http://")
    }
    return u + "/ws"
}

func NewObserver(wsURL string, onFrame FrameCallback) *Observer {
    return &Observer{
        wsURL:        wsURL,
        onFrame:      onFrame,
        pingInterval: 30 * time.Second,
        stopCh:       make(chan struct{}),
    }
}

func (o *Observer) Connect(ctx context.Context) error {
    o.connM.Lock()
    defer o.connM.Unlock()
    if o.conn != nil {
        return nil
    }

    dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
    defer cancel()
    conn, _, err := websocket.Dial(dialCtx, o.wsURL, &websocket.DialOptions{
        CompressionMode: websocket.CompressionNoContextTakeover,
    })
    if err != nil {
        return err
    }

    o.rootCtx, o.rootCancel = context.WithCancel(context.Background())
    o.conn = conn
    o.wg.Add(2)
    go o.listen(conn)
    go o.pingLoop(conn)
    return nil
}

// Send writes one action frame.
func (o *Observer) Send(ctx context.Context, action string, data any) error {
    env, err := arenadto.NewEnvelope(action, data)
    if err != nil {
        return err
    }
    o.connM.Lock()
    conn := o.conn
    o.connM.Unlock()
    if conn == nil {
        return errors.New("observer not connected")
    }
    if _, ok := ctx.Deadline(); !ok {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
        defer cancel()
    }
    o.writeM.Lock()
    defer o.writeM.Unlock()
    return wsjson.Write(ctx, conn, env)
}

// Watch subscribes to roomID; the server answers with a game_state frame.
func (o *Observer) Watch(ctx context.Context, roomID string) error {
    return o.Send(ctx, arenadto.ActionWatch, arenadto.WatchRoomRequest{RoomID: roomID})
}

// Done is closed once Close has been called.
func (o *Observer) Done() <-chan struct{} { return o.stopCh }

// Err returns the error that ended the read loop, if any.
func (o *Observer) Err() error {
    o.errM.Lock()
    defer o.errM.Unlock()
    return o.lastErr
}

func (o *Observer) listen(conn *websocket.Conn) {
    defer o.wg.Done()
    for {
        var env arenadto.Envelope
        if err := wsjson.Read(o.rootCtx, conn, &env); err != nil {
            if !o.isStopping() {
                o.errM.Lock()
                o.lastErr = err
                o.errM.Unlock()
            }
            return
        }
        if o.onFrame != nil {
            o.onFrame(env)
        }
    }
}

func (o *Observer) pingLoop(conn *websocket.Conn) {
    defer o.wg.Done()
    t := time.NewTicker(o.pingInterval)
    defer t.Stop()
    failures := 0
    for {
        select {
        case <-o.stopCh:
            return
        case <-o.rootCtx.Done():
            return
        case <-t.C:
            ctx, cancel := context.WithTimeout(o.rootCtx, 3*time.Second)
            err := conn.Ping(ctx)
            cancel()
            if err == nil {
                failures = 0
                continue
            }
            failures++
            if failures >= 2 {
                _ = conn.Close(websocket.StatusGoingAway, "ping failure")
                return
            }
        }
    }
}

func (o *Observer) Close(ctx context.Context) error {
    o.stopOnce.Do(func() { close(o.stopCh) })
    o.connM.Lock()
    conn := o.conn
    o.conn = nil
    o.connM.Unlock()
    if conn == nil {
        return nil
    }
    _ = conn.Close(websocket.StatusNormalClosure, "close")

    done := make(chan struct{})
    go func() {
        o.wg.Wait()
        close(done)
    }()
    defer o.rootCancel()
    select {
    case <-ctx.Done():
        return ctx.Err()
    case <-done:
        return nil
    }
}

func (o *Observer) isStopping() bool {
    select {
    case <-o.stopCh:
        return true
    default:
        return false
    }
}
