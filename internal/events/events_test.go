package events

import (
    "context"
    "encoding/json"
    "errors"
    "testing"
    "time"

    "github.com/park285/checkers-arena/internal/checkers"
    "github.com/park285/checkers-arena/internal/room"
    "github.com/segmentio/kafka-go"
)

type fakeWriter struct {
    msgs   []kafka.Message
    err    error
    closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
    if f.err != nil { return f.err }
    if _, ok := ctx.Deadline(); !ok { return errors.New("missing deadline") }
    f.msgs = append(f.msgs, msgs...)
    return nil
}

func (f *fakeWriter) Close() error { f.closed = true; return nil }

func TestKafkaPublisherKeysByRoom(t *testing.T) {
    fw := &fakeWriter{}
    p := &KafkaPublisher{w: fw, timeout: time.Second}

    g := checkers.NewGame("ABC234", time.Now())
    alice, _ := g.SeatPlayer(checkers.Player{ID: "p1", Nickname: "alice"})
    s := room.Snapshot{RoomID: "ABC234", Game: g}

    err := p.Publish(context.Background(),
        FromSnapshot(RoomCreated, s),
        FromSnapshot(PlayerJoined, s).WithPlayer(alice),
    )
    if err != nil { t.Fatalf("Publish: %v", err) }
    if len(fw.msgs) != 2 { t.Fatalf("messages = %d", len(fw.msgs)) }
    if string(fw.msgs[1].Key) != "ABC234" { t.Fatalf("key = %q", fw.msgs[1].Key) }

    var ev Event
    if err := json.Unmarshal(fw.msgs[1].Value, &ev); err != nil { t.Fatalf("decode: %v", err) }
    if ev.Type != PlayerJoined || ev.Color != "LIGHT" || ev.Status != "WAITING" || ev.Version != 1 {
        t.Fatalf("event = %+v", ev)
    }

    if err := p.Close(); err != nil || !fw.closed { t.Fatalf("Close: %v", err) }
}

func TestKafkaPublisherPropagatesErrors(t *testing.T) {
    p := &KafkaPublisher{w: &fakeWriter{err: errors.New("broker down")}, timeout: time.Second}
    if err := p.Publish(context.Background(), Event{Type: RoomRemoved, RoomID: "X"}); err == nil {
        t.Fatalf("expected error")
    }
}

func TestNewKafkaPublisherValidates(t *testing.T) {
    if _, err := NewKafkaPublisher(nil, "t"); err == nil { t.Fatalf("expected broker error") }
    if _, err := NewKafkaPublisher([]string{"localhost:9092"}, ""); err == nil { t.Fatalf("expected topic error") }
}
