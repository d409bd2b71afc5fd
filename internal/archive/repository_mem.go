package archive

import (
    "context"
    "sort"
    "sync"
)

// MemoryRepository keeps results in process; used when DATABASE_URL is unset.
type MemoryRepository struct {
    mu     sync.RWMutex
    byRoom map[string]Record
}

func NewMemoryRepository() *MemoryRepository {
    return &MemoryRepository{byRoom: make(map[string]Record)}
}

func (m *MemoryRepository) SaveResult(_ context.Context, rec *Record) error {
    if rec == nil { return nil }
    cp := *rec
    cp.Moves = append([]string(nil), rec.Moves...)
    m.mu.Lock()
    defer m.mu.Unlock()
    if prev, ok := m.byRoom[rec.RoomID]; ok {
        cp.ID = prev.ID
        cp.StartedAt = prev.StartedAt
    }
    m.byRoom[rec.RoomID] = cp
    return nil
}

func (m *MemoryRepository) Recent(_ context.Context, limit int) ([]Record, error) {
    m.mu.RLock()
    out := make([]Record, 0, len(m.byRoom))
    for _, r := range m.byRoom {
        out = append(out, r)
    }
    m.mu.RUnlock()
    sort.Slice(out, func(i, j int) bool {
        if out[i].EndedAt.Equal(out[j].EndedAt) { return out[i].RoomID < out[j].RoomID }
        return out[i].EndedAt.After(out[j].EndedAt)
    })
    if limit > 0 && len(out) > limit { out = out[:limit] }
    return out, nil
}

func (m *MemoryRepository) Close() error { return nil }
