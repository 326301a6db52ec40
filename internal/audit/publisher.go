package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrBufferFull is returned by Emit when the async buffer cannot take more events.
var ErrBufferFull = errors.New("audit buffer full")

// Sink persists or forwards audit events.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

// Publisher hands audit events to a sink, either synchronously or through a
// bounded buffer drained by a background worker.
type Publisher struct {
	sink    Sink
	logger  *slog.Logger
	metrics *Metrics

	bufferSize int
	inbox      chan Event
	done       chan struct{}
	closeOnce  sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous delivery with a buffer of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// NewPublisher creates a publisher writing to sink.
func NewPublisher(sink Sink, opts ...Option) *Publisher {
	p := &Publisher{
		sink:   sink,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.inbox = make(chan Event, p.bufferSize)
		p.done = make(chan struct{})
		w := NewWorker(sink, p.inbox, p.logger, p.metrics)
		go func() {
			defer close(p.done)
			w.Run(context.Background())
		}()
	}
	return p
}

// Emit records event. In async mode it never blocks: a full buffer drops the
// event and returns ErrBufferFull.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if p.inbox == nil {
		if err := p.sink.Write(ctx, event); err != nil {
			p.metrics.incFailures()
			return err
		}
		p.metrics.incPublished()
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		p.metrics.incDropped()
		p.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", event.Action,
			"request_id", event.RequestID,
		)
		return ErrBufferFull
	}
}

// Close stops accepting events and waits until buffered events are written.
// Emit must not be called after Close.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.inbox == nil {
			return
		}
		close(p.inbox)
		<-p.done
	})
}
