// Package ledger is the core of the settle-up system: it records expenses with
// their splits, walks splits through their payment lifecycle and derives
// balances from the current split state.
//
// Storage is the only shared state. Every balance is recomputed from splits on
// each call; nothing derived is cached.
package ledger

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/money"
)

var tracer = otel.Tracer("github.com/mmynk/settleup/internal/ledger")

// Option configures the ledger components.
type Option func(*options)

type options struct {
	publisher events.Publisher
	metrics   *metrics.Metrics
	epsilon   money.Money
	now       func() time.Time
}

func newOptions(opts []Option) *options {
	o := &options{
		publisher: events.NopPublisher{},
		epsilon:   money.DefaultEpsilon,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithPublisher sets where integration events go. Defaults to events.NopPublisher.
func WithPublisher(p events.Publisher) Option {
	return func(o *options) {
		if p != nil {
			o.publisher = p
		}
	}
}

// WithMetrics enables Prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithEpsilon sets the tolerance for CUSTOM split sums and percentage totals.
func WithEpsilon(eps money.Money) Option {
	return func(o *options) { o.epsilon = eps }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// publish delivers an event after the change it describes is committed.
// Failures are logged and counted, never returned.
func (o *options) publish(ctx context.Context, e events.Event) {
	if err := o.publisher.Publish(ctx, e); err != nil {
		slog.WarnContext(ctx, "Failed to publish event", "type", e.Type, "error", err)
		o.metrics.PublishFailed(string(e.Type))
	}
}

func spanError(span trace.Span, msg string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
}
