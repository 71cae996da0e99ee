package events

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Publisher is the emission surface the registrar service depends on.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// stamp fills in id, timestamp and the next sequence number. Sequence
// numbers are strictly increasing per publisher.
func stamp(event Event, seq *atomic.Uint64) Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Sequence = seq.Add(1)
	return event
}

// SinkPublisher delivers events synchronously to a sink.
type SinkPublisher struct {
	sink Sink
	seq  atomic.Uint64
}

func NewPublisher(sink Sink) *SinkPublisher {
	return &SinkPublisher{sink: sink}
}

func (p *SinkPublisher) Emit(ctx context.Context, event Event) error {
	return p.sink.Append(ctx, stamp(event, &p.seq))
}

// ChannelPublisher decouples emission from delivery: Emit enqueues and a
// Worker drains. Used when the sink is a remote broker so registrar commits
// never block on broker round-trips.
type ChannelPublisher struct {
	inbox chan<- Event
	seq   atomic.Uint64
}

func NewChannelPublisher(inbox chan<- Event) *ChannelPublisher {
	return &ChannelPublisher{inbox: inbox}
}

func (p *ChannelPublisher) Emit(ctx context.Context, event Event) error {
	select {
	case p.inbox <- stamp(event, &p.seq):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
