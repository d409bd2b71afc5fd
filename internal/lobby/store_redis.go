package lobby

import (
    "context"
    "encoding/json"
    "errors"
    "sort"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

const (
    ttlRoom = 24 * time.Hour
)

type Store struct{ rdb *redis.Client }

func NewStore(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

func (s *Store) keyMeta(code string) string { return "lobby:room:" + strings.TrimSpace(code) }
func (s *Store) keyCode(code string) string { return "lobby:code:" + strings.TrimSpace(code) }
func (s *Store) keyOpen() string            { return "lobby:open" }

// ReserveCode claims code across processes. It reports false when another process holds it.
func (s *Store) ReserveCode(ctx context.Context, code string) (bool, error) {
    if strings.TrimSpace(code) == "" { return false, ErrInvalidArgs }
    return s.rdb.SetNX(ctx, s.keyCode(code), time.Now().Unix(), ttlRoom).Result()
}

func (s *Store) LoadMeta(ctx context.Context, code string) (*RoomMeta, error) {
    raw, err := s.rdb.Get(ctx, s.keyMeta(code)).Bytes()
    if errors.Is(err, redis.Nil) { return nil, nil }
    if err != nil { return nil, err }
    var m RoomMeta
    if err := json.Unmarshal(raw, &m); err != nil { return nil, err }
    return &m, nil
}

// Delete drops the room's metadata, index entry and code reservation.
func (s *Store) Delete(ctx context.Context, code string) error {
    pipe := s.rdb.TxPipeline()
    pipe.Del(ctx, s.keyMeta(code), s.keyCode(code))
    pipe.SRem(ctx, s.keyOpen(), code)
    _, err := pipe.Exec(ctx)
    return err
}

func (s *Store) RemoveLobby(ctx context.Context, code string) error {
    if strings.TrimSpace(code) == "" { return nil }
    return s.rdb.SRem(ctx, s.keyOpen(), code).Err()
}

// ListLobby returns open rooms, oldest first. Index entries whose metadata expired are pruned.
func (s *Store) ListLobby(ctx context.Context) ([]*RoomMeta, error) {
    codes, err := s.rdb.SMembers(ctx, s.keyOpen()).Result()
    if err != nil { return nil, err }
    out := make([]*RoomMeta, 0, len(codes))
    for _, c := range codes {
        m, err := s.LoadMeta(ctx, c)
        if err != nil { return nil, err }
        if m == nil {
            _ = s.RemoveLobby(ctx, c)
            continue
        }
        if !m.Open() { continue }
        out = append(out, m)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
    return out, nil
}
