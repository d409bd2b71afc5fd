package lobby

import (
    "context"
    "encoding/json"
    "errors"
    "strings"
    "time"

    "github.com/park285/checkers-arena/internal/checkers"
    "github.com/park285/checkers-arena/internal/obslog"
    "github.com/park285/checkers-arena/internal/room"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"
)

// Mirror keeps a Redis copy of the in-memory registry's rooms so other processes
// can list open tables and avoid handing out the same code.
type Mirror struct {
    rdb   *redis.Client
    store *Store
}

func NewMirror(rdb *redis.Client) *Mirror {
    return &Mirror{rdb: rdb, store: NewStore(rdb)}
}

func (m *Mirror) Close() error {
    if m == nil || m.rdb == nil { return nil }
    return m.rdb.Close()
}

// Publish writes meta unless Redis already holds a newer version of the room.
func (m *Mirror) Publish(ctx context.Context, meta *RoomMeta) error {
    if meta == nil || strings.TrimSpace(meta.ID) == "" { return ErrInvalidArgs }
    key := m.store.keyMeta(meta.ID)
    err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
        raw, err := tx.Get(ctx, key).Bytes()
        if err != nil && !errors.Is(err, redis.Nil) { return err }
        if err == nil {
            var cur RoomMeta
            if json.Unmarshal(raw, &cur) == nil && cur.Version > meta.Version {
                return nil
            }
        }
        payload, err := json.Marshal(meta)
        if err != nil { return err }
        pipe := tx.TxPipeline()
        pipe.Set(ctx, key, payload, ttlRoom)
        if meta.Open() {
            pipe.SAdd(ctx, m.store.keyOpen(), meta.ID)
            pipe.Expire(ctx, m.store.keyOpen(), ttlRoom)
        } else {
            pipe.SRem(ctx, m.store.keyOpen(), meta.ID)
        }
        pipe.Expire(ctx, m.store.keyCode(meta.ID), ttlRoom)
        _, pErr := pipe.Exec(ctx)
        return pErr
    }, key)
    if err != nil {
        obslog.L().Warn("lobby_publish_error", zap.String("code", meta.ID), zap.Error(err))
        return err
    }
    return nil
}

// Remove forgets a room entirely.
func (m *Mirror) Remove(ctx context.Context, code string) error {
    return m.store.Delete(ctx, code)
}

func (m *Mirror) Load(ctx context.Context, code string) (*RoomMeta, error) {
    return m.store.LoadMeta(ctx, code)
}

// List returns the open rooms of every process sharing this Redis.
func (m *Mirror) List(ctx context.Context) ([]*RoomMeta, error) { return m.store.ListLobby(ctx) }

// CodeGenerator wraps base so that every code it hands out is reserved in Redis first.
func (m *Mirror) CodeGenerator(base room.IDGenerator, attempts int, timeout time.Duration) room.IDGenerator {
    if base == nil { base = room.RandomCode }
    if attempts <= 0 { attempts = 5 }
    if timeout <= 0 { timeout = 2 * time.Second }
    return func() (string, error) {
        ctx, cancel := context.WithTimeout(context.Background(), timeout)
        defer cancel()
        for i := 0; i < attempts; i++ {
            c, err := base()
            if err != nil { return "", err }
            c = room.NormalizeID(c)
            ok, err := m.store.ReserveCode(ctx, c)
            if err != nil { return "", err }
            if ok { return c, nil }
            obslog.L().Debug("lobby_code_taken", zap.String("code", c))
        }
        return "", ErrCodeTaken
    }
}

// MetaFromSnapshot converts a registry snapshot into its mirrored form.
func MetaFromSnapshot(s room.Snapshot) *RoomMeta {
    g := s.Game
    return &RoomMeta{
        ID:        s.RoomID,
        Name:      s.Name,
        State:     State(g.Status),
        CreatedAt: s.CreatedAt,
        UpdatedAt: time.Now(),
        CreatorID: s.CreatorID,
        LightName: g.Seat(checkers.Light).Nickname(),
        DarkName:  g.Seat(checkers.Dark).Nickname(),
        Players:   g.SeatedCount(),
        Version:   g.Version(),
    }
}
