package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/notify"
	"github.com/example/afparfum/internal/opt"
	"github.com/example/afparfum/internal/reconcile"
)

type kindCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (k *kindCounter) Notify(_ context.Context, e notify.Event) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.counts == nil {
		k.counts = map[string]int{}
	}
	k.counts[e.Kind]++
	return nil
}

func (k *kindCounter) Count(kind string) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.counts[kind]
}

func TestOrderStore_ConcurrentReconcileConfirmsOnce(t *testing.T) {
	store, _ := newTestStore(t, nil)
	ctx := context.Background()

	created, err := store.Create(ctx, draft(models.PaymentMBWay, "rita@example.com", "+351900000031", "64.90"))
	require.NoError(t, err)

	sink := &kindCounter{}
	svc := reconcile.NewService(store, sink, reconcile.NewMetrics(prometheus.NewRegistry()))
	sig := reconcile.Signal{
		Source:        "webhook:MBWay",
		OrderNumber:   opt.Some(created.OrderNumber),
		Amount:        opt.Some(decimal.RequireFromString("64.90")),
		PaymentMethod: opt.Some(models.PaymentMBWay),
	}

	const callers = 20
	outcomes := make([]reconcile.Outcome, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.Reconcile(ctx, sig)
			outcomes[i], errs[i] = res.Outcome, err
		}(i)
	}
	wg.Wait()

	confirmed := 0
	for i := range outcomes {
		require.NoError(t, errs[i])
		switch outcomes[i] {
		case reconcile.OutcomeConfirmed:
			confirmed++
		default:
			assert.Equal(t, reconcile.OutcomeAlreadyConfirmed, outcomes[i])
		}
	}
	assert.Equal(t, 1, confirmed)
	assert.Equal(t, 1, sink.Count(notify.KindPaymentConfirmed))

	final, found, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.StatusConfirmed, final.Status)
}
