package reconcile

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/notify"
	"github.com/example/afparfum/internal/orders"
)

// Result describes how a signal or override was settled.
type Result struct {
	Outcome  Outcome       `json:"outcome"`
	Order    *models.Order `json:"order,omitempty"`
	Strategy string        `json:"strategy,omitempty"`
}

// Service wires the resolver and dispatcher together for the HTTP and CLI
// entry points.
type Service struct {
	store      orders.Store
	resolver   *Resolver
	dispatcher *Dispatcher
	sink       notify.Sink
	metrics    *Metrics
	now        func() time.Time
}

// NewService builds a Service. sink and metrics may be nil.
func NewService(store orders.Store, sink notify.Sink, metrics *Metrics) *Service {
	if sink == nil {
		sink = notify.Nop
	}
	return &Service{
		store:      store,
		resolver:   NewResolver(store),
		dispatcher: NewDispatcher(store, sink),
		sink:       sink,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Reconcile resolves sig and confirms the matched order. A signal that
// names an order which is already confirmed, with a compatible amount,
// reports OutcomeAlreadyConfirmed so repeated webhooks succeed.
func (s *Service) Reconcile(ctx context.Context, sig Signal) (res Result, err error) {
	started := time.Now()
	defer func() { s.metrics.observe(sig.Source, res, err, started) }()

	match, ok, err := s.resolver.Resolve(ctx, sig)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		settled, found, err := s.alreadySettled(ctx, sig)
		if err != nil {
			return Result{}, err
		}
		if found {
			return Result{Outcome: OutcomeAlreadyConfirmed, Order: settled}, nil
		}
		log.Printf("[Reconcile] %s signal matched no pending order", sig.Source)
		return Result{Outcome: OutcomeNoMatch}, nil
	}

	order, outcome, err := s.dispatcher.Confirm(ctx, match.Order)
	if err != nil {
		return Result{}, err
	}
	return Result{Outcome: outcome, Order: order, Strategy: match.Strategy}, nil
}

// Preview resolves sig without confirming anything.
func (s *Service) Preview(ctx context.Context, sig Signal) (Result, error) {
	match, ok, err := s.resolver.Resolve(ctx, sig)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Outcome: OutcomeNoMatch}, nil
	}
	return Result{Outcome: OutcomeMatched, Order: match.Order, Strategy: match.Strategy}, nil
}

// ConfirmByID confirms a specific order, skipping the resolver. It is the
// trusted path for operators who verified a payment out of band.
func (s *Service) ConfirmByID(ctx context.Context, id uuid.UUID) (res Result, err error) {
	started := time.Now()
	defer func() { s.metrics.observe("manual", res, err, started) }()

	order, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{}, orders.ErrOrderNotFound
	}

	confirmed, outcome, err := s.dispatcher.Confirm(ctx, order)
	if err != nil {
		return Result{}, err
	}
	log.Printf("[Reconcile] manual confirmation of order %s: %s", confirmed.OrderNumber, outcome)
	return Result{Outcome: outcome, Order: confirmed}, nil
}

// CancelByID cancels a pending order. Cancelling an already cancelled order
// is a no-op.
func (s *Service) CancelByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, orders.ErrOrderNotFound
	}
	if order.Status == models.StatusCancelled {
		return order, nil
	}

	cancelled, found, err := s.store.UpdateStatus(ctx, id, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, orders.ErrOrderNotFound
	}

	log.Printf("[Reconcile] order %s cancelled", cancelled.OrderNumber)
	event := notify.Event{Kind: notify.KindOrderCancelled, Order: *cancelled, OccurredAt: s.now()}
	if err := s.sink.Notify(ctx, event); err != nil {
		log.Printf("[Reconcile] notification for order %s failed: %v", cancelled.OrderNumber, err)
	}
	return cancelled, nil
}

func (s *Service) alreadySettled(ctx context.Context, sig Signal) (*models.Order, bool, error) {
	var (
		order *models.Order
		found bool
		err   error
	)
	if id, ok := sig.OrderID.Get(); ok {
		order, found, err = s.store.FindByID(ctx, id)
	} else if number, ok := sig.OrderNumber.Get(); ok {
		order, found, err = s.store.FindByOrderNumber(ctx, number)
	}
	if err != nil || !found {
		return nil, false, err
	}
	if order.Status != models.StatusConfirmed || !sig.amountCompatible(order) {
		return nil, false, nil
	}
	return order, true, nil
}
