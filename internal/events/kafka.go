package events

import (
    "context"
    "fmt"
    "time"

    "github.com/segmentio/kafka-go"
)

type messageWriter interface {
    WriteMessages(ctx context.Context, msgs ...kafka.Message) error
    Close() error
}

// KafkaPublisher writes events to one topic. Keys are room IDs so a room's events stay ordered.
type KafkaPublisher struct {
    w       messageWriter
    timeout time.Duration
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
    if len(brokers) == 0 {
        return nil, fmt.Errorf("kafka: no brokers configured")
    }
    if topic == "" {
        return nil, fmt.Errorf("kafka: topic is required")
    }
    w := &kafka.Writer{
        Addr:                   kafka.TCP(brokers...),
        Topic:                  topic,
        Balancer:               &kafka.Hash{},
        RequiredAcks:           kafka.RequireOne,
        BatchTimeout:           50 * time.Millisecond,
        AllowAutoTopicCreation: true,
    }
    return &KafkaPublisher{w: w, timeout: 5 * time.Second}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, evs ...Event) error {
    if p == nil || p.w == nil || len(evs) == 0 { return nil }
    msgs := make([]kafka.Message, 0, len(evs))
    for _, ev := range evs {
        val, err := encode(ev)
        if err != nil { return fmt.Errorf("encode %s: %w", ev.Type, err) }
        msgs = append(msgs, kafka.Message{Key: []byte(ev.RoomID), Value: val, Time: ev.Timestamp})
    }
    if p.timeout > 0 {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, p.timeout)
        defer cancel()
    }
    return p.w.WriteMessages(ctx, msgs...)
}

func (p *KafkaPublisher) Close() error {
    if p == nil || p.w == nil { return nil }
    return p.w.Close()
}
