package reconcile

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/orders"
)

// Strategy names, in precedence order.
const (
	StrategyOrderID     = "order-id"
	StrategyOrderNumber = "order-number"
	StrategyAmount      = "amount"
	StrategyEmail       = "email"
	StrategyPhone       = "phone"
	StrategyReference   = "reference"
)

// Strategy is one way of picking a pending order for a signal. Match
// returns false when the strategy does not apply or finds nothing.
type Strategy interface {
	Name() string
	Match(ctx context.Context, sig Signal, c *Candidates) (*models.Order, bool, error)
}

// DefaultStrategies returns the matching strategies in precedence order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		orderIDStrategy{},
		orderNumberStrategy{},
		amountStrategy{},
		emailStrategy{},
		phoneStrategy{},
		referenceStrategy{},
	}
}

// Candidates gives strategies access to the store and a lazily loaded
// snapshot of the pending orders relevant to a signal.
type Candidates struct {
	store   orders.Store
	methods []models.PaymentMethod
	loaded  bool
	pending []models.Order
}

func newCandidates(store orders.Store, sig Signal) *Candidates {
	methods := models.DeferredPaymentMethods
	if m, ok := sig.PaymentMethod.Get(); ok {
		methods = []models.PaymentMethod{m}
	}
	return &Candidates{store: store, methods: methods}
}

// Store returns the backing order store.
func (c *Candidates) Store() orders.Store {
	return c.store
}

// Pending returns pending orders for the signal's methods, newest first.
// The snapshot is taken once per resolution.
func (c *Candidates) Pending(ctx context.Context) ([]models.Order, error) {
	if c.loaded {
		return c.pending, nil
	}

	var all []models.Order
	for _, method := range c.methods {
		list, err := c.store.FindPendingByPaymentMethod(ctx, method)
		if err != nil {
			return nil, err
		}
		all = append(all, list...)
	}
	if len(c.methods) > 1 {
		sort.SliceStable(all, func(i, j int) bool {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		})
	}

	c.pending = all
	c.loaded = true
	return all, nil
}

type orderIDStrategy struct{}

func (orderIDStrategy) Name() string { return StrategyOrderID }

func (orderIDStrategy) Match(ctx context.Context, sig Signal, c *Candidates) (*models.Order, bool, error) {
	id, ok := sig.OrderID.Get()
	if !ok {
		return nil, false, nil
	}
	order, found, err := c.Store().FindByID(ctx, id)
	if err != nil || !found {
		return nil, false, err
	}
	if order.Status != models.StatusPending || !sig.amountCompatible(order) {
		return nil, false, nil
	}
	return order, true, nil
}

type orderNumberStrategy struct{}

func (orderNumberStrategy) Name() string { return StrategyOrderNumber }

func (orderNumberStrategy) Match(ctx context.Context, sig Signal, c *Candidates) (*models.Order, bool, error) {
	number, ok := sig.OrderNumber.Get()
	if !ok {
		return nil, false, nil
	}
	order, found, err := c.Store().FindByOrderNumber(ctx, number)
	if err != nil || !found {
		return nil, false, err
	}
	if order.Status != models.StatusPending || !sig.amountCompatible(order) {
		return nil, false, nil
	}
	return order, true, nil
}

// amountStrategy only applies when the signal carries no order number.
type amountStrategy struct{}

func (amountStrategy) Name() string { return StrategyAmount }

func (amountStrategy) Match(ctx context.Context, sig Signal, c *Candidates) (*models.Order, bool, error) {
	amount, ok := sig.Amount.Get()
	if !ok || sig.OrderNumber.Present() {
		return nil, false, nil
	}

	pending, err := c.Pending(ctx)
	if err != nil {
		return nil, false, err
	}

	var matches []models.Order
	for _, o := range pending {
		if AmountMatches(o.GrandTotal, amount) {
			matches = append(matches, o)
		}
	}

	switch {
	case len(matches) == 0:
		return nil, false, nil
	case len(matches) == 1:
		return &matches[0], true, nil
	}

	hint, ok := sig.TimestampHint.Get()
	if !ok {
		return &matches[0], true, nil
	}
	return closestTo(matches, hint), true, nil
}

// closestTo returns the order created nearest to hint. matches is newest
// first, so ties keep the newer order.
func closestTo(matches []models.Order, hint time.Time) *models.Order {
	best := 0
	bestDiff := absDuration(matches[0].CreatedAt.Sub(hint))
	for i := 1; i < len(matches); i++ {
		if d := absDuration(matches[i].CreatedAt.Sub(hint)); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return &matches[best]
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

type emailStrategy struct{}

func (emailStrategy) Name() string { return StrategyEmail }

func (emailStrategy) Match(ctx context.Context, sig Signal, c *Candidates) (*models.Order, bool, error) {
	email, ok := sig.Email.Get()
	if !ok {
		return nil, false, nil
	}
	return c.Store().FindMostRecentByEmailAndStatus(ctx, email, pendingOnly)
}

type phoneStrategy struct{}

func (phoneStrategy) Name() string { return StrategyPhone }

func (phoneStrategy) Match(ctx context.Context, sig Signal, c *Candidates) (*models.Order, bool, error) {
	phone, ok := sig.Phone.Get()
	if !ok {
		return nil, false, nil
	}
	return firstPending(ctx, c, func(o models.Order) bool {
		return o.Billing.Phone == phone
	})
}

type referenceStrategy struct{}

func (referenceStrategy) Name() string { return StrategyReference }

func (referenceStrategy) Match(ctx context.Context, sig Signal, c *Candidates) (*models.Order, bool, error) {
	var refs []string
	for _, v := range []string{sig.Reference.OrElse(""), sig.TransactionID.OrElse("")} {
		if v = strings.ToUpper(strings.TrimSpace(v)); v != "" {
			refs = append(refs, v)
		}
	}
	if len(refs) == 0 {
		return nil, false, nil
	}
	return firstPending(ctx, c, func(o models.Order) bool {
		number := strings.ToUpper(o.OrderNumber)
		for _, ref := range refs {
			if strings.Contains(number, ref) {
				return true
			}
		}
		return false
	})
}

func firstPending(ctx context.Context, c *Candidates, keep func(models.Order) bool) (*models.Order, bool, error) {
	pending, err := c.Pending(ctx)
	if err != nil {
		return nil, false, err
	}
	for i := range pending {
		if keep(pending[i]) {
			return &pending[i], true, nil
		}
	}
	return nil, false, nil
}
