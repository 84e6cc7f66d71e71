package audit

import (
	"context"
	"log/slog"
	"time"
)

// Publisher fans audit events out to an inbox channel consumed by a
// background worker. Emission is fire-and-forget: a full inbox drops the
// event and logs, it never blocks the governance path.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for drop reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithBuffer sets the inbox capacity (default 256).
func WithBuffer(n int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan Event, n)
	}
}

func NewPublisher(opts ...Option) *Publisher {
	p := &Publisher{
		inbox: make(chan Event, 256),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Inbox exposes the receive side for the worker.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }

// Emit enqueues an event for background persistence. Never returns an error
// and never blocks; governance operations must not fail on audit delivery.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = CategoryOf(AuditEvent(event.Action))
	}
	select {
	case p.inbox <- event:
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit inbox full, event dropped",
				"action", event.Action,
				"query_id", event.QueryID,
			)
		}
	}
	return nil
}
