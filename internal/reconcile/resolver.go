package reconcile

import (
	"context"
	"log"

	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/opt"
	"github.com/example/afparfum/internal/orders"
)

var pendingOnly = opt.Some(models.StatusPending)

// Match is the order a signal resolved to and the strategy that found it.
type Match struct {
	Order    *models.Order
	Strategy string
}

// Resolver tries each strategy in order and stops at the first match.
type Resolver struct {
	store      orders.Store
	strategies []Strategy
}

// NewResolver builds a Resolver. Without explicit strategies it uses
// DefaultStrategies.
func NewResolver(store orders.Store, strategies ...Strategy) *Resolver {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Resolver{store: store, strategies: strategies}
}

// Strategies returns the strategy names in precedence order.
func (r *Resolver) Strategies() []string {
	names := make([]string, 0, len(r.strategies))
	for _, s := range r.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Resolve selects at most one pending order for sig. Finding nothing is
// reported through the bool result, not as an error.
func (r *Resolver) Resolve(ctx context.Context, sig Signal) (Match, bool, error) {
	candidates := newCandidates(r.store, sig)
	for _, strategy := range r.strategies {
		order, ok, err := strategy.Match(ctx, sig, candidates)
		if err != nil {
			return Match{}, false, err
		}
		if ok {
			log.Printf("[Reconcile] %s signal matched order %s via %s", sig.Source, order.OrderNumber, strategy.Name())
			return Match{Order: order, Strategy: strategy.Name()}, true, nil
		}
	}
	return Match{}, false, nil
}
