package reconcile

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/notify"
	"github.com/example/afparfum/internal/orders"
)

// Outcome is the user-visible result of a reconciliation attempt.
type Outcome string

const (
	OutcomeConfirmed        Outcome = "confirmed"
	OutcomeAlreadyConfirmed Outcome = "already_confirmed"
	OutcomeNoMatch          Outcome = "no_match"
	OutcomeMatched          Outcome = "matched"
)

// Dispatcher confirms orders and emits payment notifications.
type Dispatcher struct {
	store orders.Store
	sink  notify.Sink
	now   func() time.Time
}

// NewDispatcher builds a Dispatcher. A nil sink discards notifications.
func NewDispatcher(store orders.Store, sink notify.Sink) *Dispatcher {
	if sink == nil {
		sink = notify.Nop
	}
	return &Dispatcher{store: store, sink: sink, now: time.Now}
}

// Confirm transitions order to confirmed. Confirming an order that is
// already confirmed, including one confirmed concurrently, is a no-op that
// emits nothing. Notification failures are logged and never undo the
// transition.
func (d *Dispatcher) Confirm(ctx context.Context, order *models.Order) (*models.Order, Outcome, error) {
	if order.Status == models.StatusConfirmed {
		return order, OutcomeAlreadyConfirmed, nil
	}

	updated, found, err := d.store.UpdateStatus(ctx, order.ID, models.StatusConfirmed)
	if err != nil {
		if errors.Is(err, orders.ErrInvalidTransition) && updated != nil && updated.Status == models.StatusConfirmed {
			log.Printf("[Reconcile] order %s was confirmed concurrently", updated.OrderNumber)
			return updated, OutcomeAlreadyConfirmed, nil
		}
		return nil, "", err
	}
	if !found {
		return nil, "", orders.ErrOrderNotFound
	}

	log.Printf("[Reconcile] order %s confirmed (%s %s)", updated.OrderNumber, updated.GrandTotal.StringFixed(2), updated.PaymentMethod)

	event := notify.Event{Kind: notify.KindPaymentConfirmed, Order: *updated, OccurredAt: d.now()}
	if err := d.sink.Notify(ctx, event); err != nil {
		log.Printf("[Reconcile] notification for order %s failed: %v", updated.OrderNumber, err)
	}

	return updated, OutcomeConfirmed, nil
}
