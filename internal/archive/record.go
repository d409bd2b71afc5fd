package archive

import (
    "context"
    "fmt"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/park285/checkers-arena/internal/checkers"
    "github.com/park285/checkers-arena/internal/room"
)

const (
    ResultLight     = "light"
    ResultDark      = "dark"
    ResultAbandoned = "abandoned"
)

// Record is one finished or abandoned game.
type Record struct {
    ID         string    `json:"id"`
    RoomID     string    `json:"roomId"`
    RoomName   string    `json:"roomName"`
    LightID    string    `json:"lightId"`
    LightName  string    `json:"lightName"`
    DarkID     string    `json:"darkId"`
    DarkName   string    `json:"darkName"`
    Result     string    `json:"result"`
    Moves      []string  `json:"moves"`
    PDN        string    `json:"pdn"`
    StartedAt  time.Time `json:"startedAt"`
    EndedAt    time.Time `json:"endedAt"`
    DurationMS int64     `json:"durationMs"`
}

// Repository persists final results. SaveResult must be idempotent per room.
type Repository interface {
    SaveResult(ctx context.Context, rec *Record) error
    Recent(ctx context.Context, limit int) ([]Record, error)
    Close() error
}

// FromSnapshot builds a record from a terminal snapshot; ok is false otherwise.
func FromSnapshot(s room.Snapshot) (*Record, bool) {
    g := s.Game
    if g == nil || !g.Status.Terminal() { return nil, false }

    rec := &Record{
        ID:        uuid.NewString(),
        RoomID:    s.RoomID,
        RoomName:  s.Name,
        StartedAt: g.CreatedAt,
        EndedAt:   g.LastMoveAt,
    }
    if p, ok := g.Seat(checkers.Light).Player(); ok { rec.LightID, rec.LightName = p.ID, p.Nickname }
    if p, ok := g.Seat(checkers.Dark).Player(); ok { rec.DarkID, rec.DarkName = p.ID, p.Nickname }

    switch g.Status {
    case checkers.StatusAbandoned:
        rec.Result = ResultAbandoned
        rec.EndedAt = time.Now()
    default:
        if w, ok := g.Winner(); ok && w.Color == checkers.Dark {
            rec.Result = ResultDark
        } else {
            rec.Result = ResultLight
        }
    }
    if rec.EndedAt.IsZero() { rec.EndedAt = time.Now() }
    rec.DurationMS = rec.EndedAt.Sub(rec.StartedAt).Milliseconds()
    if rec.DurationMS < 0 { rec.DurationMS = 0 }

    rec.Moves = checkers.NotationList(g.History())
    rec.PDN = BuildPDN(rec)
    return rec, true
}

func mapResultToPDN(result string) string {
    switch strings.ToLower(strings.TrimSpace(result)) {
    case ResultLight:
        return "2-0"
    case ResultDark:
        return "0-2"
    default:
        return "*"
    }
}

// BuildPDN renders headers and numbered moves. DARK is listed as "Black" and LIGHT as "White".
func BuildPDN(rec *Record) string {
    if rec == nil { return "" }
    var b strings.Builder
    date := rec.EndedAt
    if date.IsZero() { date = time.Now() }
    result := mapResultToPDN(rec.Result)

    b.WriteString("[Event \"Checkers Arena\"]\n")
    b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
    b.WriteString(fmt.Sprintf("[White \"%s\"]\n", sanitizePDN(rec.LightName)))
    b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", sanitizePDN(rec.DarkName)))
    if rec.Result == ResultAbandoned {
        b.WriteString("[Termination \"abandoned\"]\n")
    }
    b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", result))

    if moves := checkers.FormatPDN(rec.Moves); moves != "" {
        b.WriteString(moves)
        b.WriteString(" ")
    }
    b.WriteString(result)
    return b.String()
}

func sanitizePDN(s string) string {
    s = strings.ReplaceAll(s, "\\", " ")
    s = strings.ReplaceAll(s, "\"", "'")
    return strings.TrimSpace(s)
}
