package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrQueueFull is returned by Worker.Emit when the buffer has no room left.
var ErrQueueFull = errors.New("audit queue full")

// Sink receives events forwarded by the worker.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// Worker decouples request handling from slow sinks such as Kafka. Emit
// enqueues; Run forwards queued events until its context is cancelled and
// then drains what is left.
type Worker struct {
	sink   Sink
	inbox  chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, buffer int, logger *slog.Logger) *Worker {
	if buffer <= 0 {
		buffer = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{sink: sink, inbox: make(chan Event, buffer), logger: logger}
}

func (w *Worker) Emit(_ context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case w.inbox <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain(context.WithoutCancel(ctx))
			return nil
		case event := <-w.inbox:
			w.forward(ctx, event)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case event := <-w.inbox:
			w.forward(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) forward(ctx context.Context, event Event) {
	if err := w.sink.Emit(ctx, event); err != nil {
		w.logger.WarnContext(ctx, "audit sink rejected event",
			"action", event.Action,
			"user_id", event.UserID,
			"error", err,
		)
	}
}
