package archive

import (
    "context"
    "database/sql"
    "encoding/json"
    "fmt"
    "strings"
    "time"

    _ "github.com/lib/pq"
)

const schema = `CREATE TABLE IF NOT EXISTS checkers_games (
    game_id     TEXT PRIMARY KEY,
    room_id     TEXT NOT NULL UNIQUE,
    room_name   TEXT NOT NULL DEFAULT '',
    light_id    TEXT NOT NULL DEFAULT '',
    light_name  TEXT NOT NULL DEFAULT '',
    dark_id     TEXT NOT NULL DEFAULT '',
    dark_name   TEXT NOT NULL DEFAULT '',
    result      TEXT NOT NULL,
    moves       JSONB NOT NULL DEFAULT '[]',
    pdn         TEXT NOT NULL DEFAULT '',
    started_at  TIMESTAMPTZ NOT NULL,
    ended_at    TIMESTAMPTZ NOT NULL,
    duration_ms BIGINT NOT NULL DEFAULT 0
)`

type SQLRepository struct {
    db *sql.DB
}

func NewSQLRepository(databaseURL string) (*SQLRepository, error) {
    if strings.TrimSpace(databaseURL) == "" {
        return nil, fmt.Errorf("DATABASE_URL is required")
    }
    db, err := sql.Open("postgres", databaseURL)
    if err != nil {
        return nil, err
    }
    db.SetMaxOpenConns(16)
    db.SetMaxIdleConns(8)
    db.SetConnMaxLifetime(30 * time.Minute)
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := db.PingContext(ctx); err != nil {
        _ = db.Close()
        return nil, err
    }
    if _, err := db.ExecContext(ctx, schema); err != nil {
        _ = db.Close()
        return nil, fmt.Errorf("ensure schema: %w", err)
    }
    return &SQLRepository{db: db}, nil
}

func (r *SQLRepository) Close() error {
    if r == nil || r.db == nil { return nil }
    return r.db.Close()
}

// SaveResult upserts on room_id so a room is archived at most once.
func (r *SQLRepository) SaveResult(ctx context.Context, rec *Record) error {
    if r == nil || r.db == nil || rec == nil {
        return nil
    }
    movesRaw, err := json.Marshal(rec.Moves)
    if err != nil { return err }

    q := `INSERT INTO checkers_games (
        game_id, room_id, room_name, light_id, light_name, dark_id, dark_name,
        result, moves, pdn, started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
      ) ON CONFLICT (room_id) DO UPDATE SET
        room_name=EXCLUDED.room_name,
        light_id=EXCLUDED.light_id,
        light_name=EXCLUDED.light_name,
        dark_id=EXCLUDED.dark_id,
        dark_name=EXCLUDED.dark_name,
        result=EXCLUDED.result,
        moves=EXCLUDED.moves,
        pdn=EXCLUDED.pdn,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

    _, err = r.db.ExecContext(ctx, q,
        rec.ID, rec.RoomID, rec.RoomName,
        rec.LightID, rec.LightName,
        rec.DarkID, rec.DarkName,
        rec.Result, string(movesRaw), rec.PDN,
        rec.StartedAt, rec.EndedAt, rec.DurationMS,
    )
    return err
}

func (r *SQLRepository) Recent(ctx context.Context, limit int) ([]Record, error) {
    if r == nil || r.db == nil { return nil, nil }
    if limit <= 0 { limit = 20 }
    rows, err := r.db.QueryContext(ctx, `SELECT game_id, room_id, room_name, light_id, light_name,
        dark_id, dark_name, result, moves, pdn, started_at, ended_at, duration_ms
        FROM checkers_games ORDER BY ended_at DESC LIMIT $1`, limit)
    if err != nil { return nil, err }
    defer rows.Close()

    var out []Record
    for rows.Next() {
        var rec Record
        var movesRaw []byte
        if err := rows.Scan(&rec.ID, &rec.RoomID, &rec.RoomName, &rec.LightID, &rec.LightName,
            &rec.DarkID, &rec.DarkName, &rec.Result, &movesRaw, &rec.PDN,
            &rec.StartedAt, &rec.EndedAt, &rec.DurationMS); err != nil {
            return nil, err
        }
        if len(movesRaw) > 0 {
            if err := json.Unmarshal(movesRaw, &rec.Moves); err != nil {
                return nil, fmt.Errorf("decode moves for %s: %w", rec.RoomID, err)
            }
        }
        out = append(out, rec)
    }
    return out, rows.Err()
}
