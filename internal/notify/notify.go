// Package notify delivers order lifecycle events to best-effort sinks.
package notify

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/example/afparfum/internal/models"
)

// Event kinds.
const (
	KindOrderCreated     = "order-created"
	KindPaymentConfirmed = "payment-confirmed"
	KindOrderCancelled   = "order-cancelled"
)

// Event is a notification about one order.
type Event struct {
	Kind       string       `json:"kind"`
	Order      models.Order `json:"order"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// Key identifies the event for de-duplication by consumers.
func (e Event) Key() string {
	return e.Order.ID.String() + ":" + e.Kind
}

// Sink accepts events. Delivery is at-least-once and best effort.
type Sink interface {
	Notify(ctx context.Context, event Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, event Event) error

func (f SinkFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Nop discards every event.
var Nop Sink = SinkFunc(func(context.Context, Event) error { return nil })

type namedSink struct {
	name string
	sink Sink
}

// Multi fans events out to several sinks. Every sink is attempted even if
// an earlier one fails; the failures are logged and joined.
type Multi struct {
	sinks   []namedSink
	metrics *Metrics
}

// NewMulti creates an empty fan-out. metrics may be nil.
func NewMulti(metrics *Metrics) *Multi {
	return &Multi{metrics: metrics}
}

// Add registers a sink under name.
func (m *Multi) Add(name string, sink Sink) *Multi {
	m.sinks = append(m.sinks, namedSink{name: name, sink: sink})
	return m
}

// Len returns the number of registered sinks.
func (m *Multi) Len() int {
	return len(m.sinks)
}

func (m *Multi) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.sink.Notify(ctx, event); err != nil {
			log.Printf("[Notify] %s failed for %s (order %s): %v", s.name, event.Kind, event.Order.OrderNumber, err)
			m.metrics.observe(s.name, err)
			errs = append(errs, err)
			continue
		}
		m.metrics.observe(s.name, nil)
	}
	return errors.Join(errs...)
}
