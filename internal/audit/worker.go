package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from a channel and writes them to a sink until
// the channel is closed or ctx is cancelled. Sink failures are logged and the
// worker moves on; audit delivery never blocks a download.
type Worker struct {
	sink    Sink
	inbox   <-chan Event
	logger  *slog.Logger
	metrics *Metrics
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger, metrics *Metrics) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger, metrics: metrics}
}

func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.inbox:
			if !ok {
				return
			}
			if err := w.sink.Write(ctx, event); err != nil {
				w.metrics.incFailures()
				w.logger.ErrorContext(ctx, "failed to write audit event",
					"action", event.Action,
					"request_id", event.RequestID,
					"error", err,
				)
				continue
			}
			w.metrics.incPublished()
		}
	}
}
