package events

import (
	"context"
	"log/slog"
)

// Worker consumes events from a channel and delivers them to a sink. It
// keeps background delivery testable without wiring a broker.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run drains the inbox until the context is cancelled. Delivery failures are
// logged and dropped: registrar state is already committed by the time an
// event reaches the worker, so there is nothing to unwind.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "event delivery failed",
					"event_id", event.ID,
					"type", string(event.Type),
					"error", err.Error(),
				)
			}
		}
	}
}
