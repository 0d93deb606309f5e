package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/opt"
	"github.com/example/afparfum/internal/orders"
)

func amount(s string) opt.Value[decimal.Decimal] {
	return opt.Some(decimal.RequireFromString(s))
}

func TestAmountMatches_StrictTolerance(t *testing.T) {
	d := decimal.RequireFromString

	assert.True(t, AmountMatches(d("20.00"), d("20.00")))
	assert.True(t, AmountMatches(d("20.00"), d("20.009")))
	assert.False(t, AmountMatches(d("20.01"), d("20.00")))
	assert.False(t, AmountMatches(d("19.99"), d("20.00")))
}

func TestResolver_DefaultPrecedence(t *testing.T) {
	r := NewResolver(newTestStore())

	assert.Equal(t, []string{
		StrategyOrderID, StrategyOrderNumber, StrategyAmount,
		StrategyEmail, StrategyPhone, StrategyReference,
	}, r.Strategies())
}

// ============================================
// Order number
// ============================================

func TestResolve_OrderNumberBeatsAmount(t *testing.T) {
	store := newTestStore()
	older := seed(store, fixture{number: "AF-1-OLDER1", total: "50.00", created: at(0)})
	seed(store, fixture{number: "AF-2-NEWER2", total: "50.00", created: at(10)})

	match, ok, err := NewResolver(store).Resolve(context.Background(), Signal{
		OrderNumber: opt.Some("AF-1-OLDER1"),
		Amount:      amount("50.00"),
	})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, older.ID, match.Order.ID)
	assert.Equal(t, StrategyOrderNumber, match.Strategy)
}

func TestResolve_OrderNumberAmountMismatch(t *testing.T) {
	store := newTestStore()
	seed(store, fixture{number: "AF-1-AAAAAA", total: "50.00", created: at(0)})
	seed(store, fixture{number: "AF-2-BBBBBB", total: "35.00", created: at(5)})

	_, ok, err := NewResolver(store).Resolve(context.Background(), Signal{
		OrderNumber: opt.Some("AF-1-AAAAAA"),
		Amount:      amount("35.00"),
	})

	require.NoError(t, err)
	assert.False(t, ok, "amount strategy must not run when an order number was given")
}

func TestResolve_OrderNumberNotPending(t *testing.T) {
	store := newTestStore()
	seed(store, fixture{number: "AF-1-AAAAAA", total: "50.00", status: models.StatusConfirmed, created: at(0)})

	_, ok, err := NewResolver(store).Resolve(context.Background(), Signal{OrderNumber: opt.Some("AF-1-AAAAAA")})

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolve_OrderNumberWithinTolerance(t *testing.T) {
	store := newTestStore()
	order := seed(store, fixture{number: "AF-1-AAAAAA", total: "42.10", created: at(0)})

	match, ok, err := NewResolver(store).Resolve(context.Background(), Signal{
		OrderNumber: opt.Some("AF-1-AAAAAA"),
		Amount:      amount("42.105"),
	})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, order.ID, match.Order.ID)
}

func TestResolve_OrderID(t *testing.T) {
	store := newTestStore()
	order := seed(store, fixture{number: "AF-1-AAAAAA", total: "42.10", created: at(0)})
	seed(store, fixture{number: "AF-2-BBBBBB", total: "42.10", created: at(1)})

	match, ok, err := NewResolver(store).Resolve(context.Background(), Signal{
		OrderID: opt.Some(order.ID),
		Amount:  amount("42.10"),
	})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, order.ID, match.Order.ID)
	assert.Equal(t, StrategyOrderID, match.Strategy)
}

func TestResolve_UnknownOrderIDFallsThrough(t *testing.T) {
	store := newTestStore()
	order := seed(store, fixture{number: "AF-1-AAAAAA", total: "42.10", created: at(0)})

	match, ok, err := NewResolver(store).Resolve(context.Background(), Signal{
		OrderID: opt.Some(uuid.New()),
		Amount:  amount("42.10"),
	})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, order.ID, match.Order.ID)
	assert.Equal(t, StrategyAmount, match.Strategy)
}

// ============================================
// Amount
// ============================================

func TestResolve_AmountDoesNotOverMatchAdjacentTotals(t *testing.T) {
	store := newTestStore()
	exact := seed(store, fixture{number: "AF-1-AAAAAA", total: "20.00", created: at(0)})
	seed(store, fixture{number: "AF-2-BBBBBB", total: "19.99", created: at(1)})
	seed(store, fixture{number: "AF-3-CCCCCC", total: "20.01", created: at(2)})

	match, ok, err := NewResolver(store).Resolve(context.Background(), Signal{Amount: amount("20.00")})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, exact.ID, match.Order.ID)
	assert.Equal(t, StrategyAmount, match.Strategy)
}

func TestResolve_AmountBoundaryDoesNotMatch(t *testing.T) {
	store := newTestStore()
	seed(store, fixture{number: "AF-3-CCCCCC", total: "20.01", created: at(2)})

	_, ok, err := NewResolver(store).Resolve(context.Background(), Signal{Amount: amount("20.00")})

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolve_AmountTieNoHintPicksNewest(t *testing.T) {
	store := newTestStore()
	seed(store, fixture{number: "AF-1-T1T1T1", total: "50.00", created: at(0)})
	newer := seed(store, fixture{number: "AF-2-T2T2T2", total: "50.00", created: at(30)})

	match, ok, err := NewResolver(store).Resolve(context.Background(), Signal{Amount: amount("50.00")})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, newer.ID, match.Order.ID)
}

func TestResolve_AmountTieHintPicksClosest(t *testing.T) {
	store := newTestStore()
	older := seed(store, fixture{number: "AF-1-T1T1T1", total: "50.00", created: at(0)})
	seed(store, fixture{number: "AF-2-T2T2T2", total: "50.00", created: at(30)})

	match, ok, err := NewResolver(store).Resolve(context.Background(), Signal{
		Amount:        amount("50.00"),
		TimestampHint: opt.Some(at(0)),
	})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, older.ID, match.Order.ID)
}

func TestResolve_AmountHintEquidistantPicksNewest(t *testing.T) {
	store := newTestStore()
	seed(store, fixture{number: "AF-1-T1T1T1", total: "50.00", created: at(0)})
	newer := seed(store, fixture{number: "AF-2-T2T2T2", total: "50.00", created: at(30)})

	match, ok, err := NewResolver(store).Resolve(context.Background(), Signal{
		Amount:        amount("50.00"),
		TimestampHint: opt.Some(at(15)),
	})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, newer.ID, match.Order.ID)
}

func TestResolve_AmountScopedToPaymentMethod(t *testing.T) {
	store := newTestStore()
	iban := seed(store, fixture{number: "AF-1-IBAN01", total: "75.00", method: models.PaymentIBAN, created: at(0)})
	seed(store, fixture{number: "AF-2-MBWAY1", total: "75.00", method: models.PaymentMBWay, created: at(10)})

	match, ok, err := NewResolver(store).Resolve(context.Background(), Signal{
		Amount:        amount("75.00"),
		PaymentMethod: opt.Some(models.PaymentIBAN),
	})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, iban.ID, match.Order.ID)
}

func TestResolve_AmountAcrossDeferredMethodsNewestFirst(t *testing.T) {
	store := newTestStore()
	seed(store, fixture{number: "AF-1-IBAN01", total: "75.00", method: models.PaymentIBAN, created: at(0)})
	mbway := seed(store, fixture{number: "AF-2-MBWAY1", total: "75.00", method: models.PaymentMBWay, created: at(10)})

	match, ok, err := NewResolver(store).Resolve(context.Background(), Signal{Amount: amount("75.00")})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, mbway.ID, match.Order.ID)
}

func TestResolve_AmountIgnoresNonPending(t *testing.T) {
	store := newTestStore()
	seed(store, fixture{number: "AF-1-AAAAAA", total: "20.00", status: models.StatusConfirmed, created: at(0)})
	seed(store, fixture{number: "AF-2-BBBBBB", total: "20.00", status: models.StatusCancelled, created: at(1)})

	_, ok, err := NewResolver(store).Resolve(context.Background(), Signal{Amount: amount("20.00")})

	require.NoError(t, err)
	assert.False(t, ok)
}

// ============================================
// Fallback strategies
// ============================================

func TestResolve_EmailMostRecentPendingRegardlessOfAmount(t *testing.T) {
	store := newTestStore()
	seed(store, fixture{number: "AF-1-AAAAAA", total: "10.00", email: "jo@example.com", created: at(0)})
	latest := seed(store, fixture{number: "AF-2-BBBBBB", total: "99.00", email: "jo@example.com", created: at(5)})
	seed(store, fixture{number: "AF-3-CCCCCC", total: "10.00", email: "jo@example.com", status: models.StatusConfirmed, created: at(9)})

	match, ok, err := NewResolver(store).Resolve(context.Background(), Signal{
		Email:  opt.Some("Jo@Example.com"),
		Amount: amount("1.00"),
	})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, latest.ID, match.Order.ID)
	assert.Equal(t, StrategyEmail, match.Strategy)
}

func TestResolve_PhoneExact(t *testing.T) {
	store := newTestStore()
	seed(store, fixture{number: "AF-1-AAAAAA", total: "10.00", phone: "+351911111111", created: at(0)})
	target := seed(store, fixture{number: "AF-2-BBBBBB", total: "12.00", phone: "+351922222222", created: at(1)})

	match, ok, err := NewResolver(store).Resolve(context.Background(), Signal{Phone: opt.Some("+351922222222")})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, target.ID, match.Order.ID)
	assert.Equal(t, StrategyPhone, match.Strategy)

	_, ok, err = NewResolver(store).Resolve(context.Background(), Signal{Phone: opt.Some("922222222")})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolve_ReferenceSubstring(t *testing.T) {
	store := newTestStore()
	target := seed(store, fixture{number: "AF-1767225600000-K3ZQ9P", total: "10.00", created: at(0)})
	seed(store, fixture{number: "AF-1767225600500-AB12CD", total: "10.00", created: at(1)})

	match, ok, err := NewResolver(store).Resolve(context.Background(), Signal{Reference: opt.Some("k3zq9p")})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, target.ID, match.Order.ID)
	assert.Equal(t, StrategyReference, match.Strategy)
}

func TestResolve_TransactionIDSubstring(t *testing.T) {
	store := newTestStore()
	target := seed(store, fixture{number: "AF-1767225600000-K3ZQ9P", total: "10.00", created: at(0)})

	match, ok, err := NewResolver(store).Resolve(context.Background(), Signal{TransactionID: opt.Some("1767225600000")})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, target.ID, match.Order.ID)
}

func TestResolve_ZeroAmountCandidatesFallsThroughToPhone(t *testing.T) {
	store := newTestStore()
	target := seed(store, fixture{number: "AF-1-AAAAAA", total: "10.00", phone: "+351933333333", created: at(0)})

	match, ok, err := NewResolver(store).Resolve(context.Background(), Signal{
		Amount: amount("99.99"),
		Phone:  opt.Some("+351933333333"),
	})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, target.ID, match.Order.ID)
	assert.Equal(t, StrategyPhone, match.Strategy)
}

// ============================================
// No match and failures
// ============================================

func TestResolve_NoMatch(t *testing.T) {
	store := newTestStore()
	seed(store, fixture{number: "AF-1-AAAAAA", total: "10.00", created: at(0)})

	match, ok, err := NewResolver(store).Resolve(context.Background(), Signal{
		OrderNumber: opt.Some("AF-9-ZZZZZZ"),
		Phone:       opt.Some("+000"),
		Reference:   opt.Some("nothing"),
	})

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, match.Order)
}

func TestResolve_EmptySignal(t *testing.T) {
	store := newTestStore()
	seed(store, fixture{number: "AF-1-AAAAAA", total: "10.00", created: at(0)})

	_, ok, err := NewResolver(store).Resolve(context.Background(), Signal{})

	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, Signal{}.Empty())
}

func TestResolve_StorageFailure(t *testing.T) {
	store := newTestStore()
	store.Err = errors.New("connection reset")

	_, ok, err := NewResolver(store).Resolve(context.Background(), Signal{Amount: amount("10.00")})

	assert.False(t, ok)
	assert.ErrorIs(t, err, orders.ErrStorage)
}
