package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/notify"
	"github.com/example/afparfum/internal/repository/mocks"
)

var baseTime = time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return baseTime.Add(time.Duration(minutes) * time.Minute)
}

type fixture struct {
	number  string
	total   string
	method  models.PaymentMethod
	status  models.Status
	email   string
	phone   string
	created time.Time
}

func seed(store *mocks.MockOrderStore, f fixture) models.Order {
	if f.method == "" {
		f.method = models.PaymentMBWay
	}
	if f.status == "" {
		f.status = models.StatusPending
	}
	if f.email == "" {
		f.email = "buyer@example.com"
	}
	if f.phone == "" {
		f.phone = "+351910000000"
	}
	total := decimal.RequireFromString(f.total)
	order := models.Order{
		BaseModel:   models.BaseModel{ID: uuid.New(), CreatedAt: f.created, UpdatedAt: f.created},
		OrderNumber: f.number,
		Billing: models.BillingInfo{
			FullName:   "Test Buyer",
			Email:      f.email,
			Phone:      f.phone,
			Address:    "Rua 1",
			City:       "Porto",
			PostalCode: "4000-001",
			Country:    "PT",
		},
		Subtotal:      total,
		Shipping:      decimal.Zero,
		Tax:           decimal.Zero,
		GrandTotal:    total,
		PaymentMethod: f.method,
		Status:        f.status,
	}
	if f.status == models.StatusConfirmed {
		confirmedAt := f.created
		order.ConfirmedAt = &confirmedAt
	}
	return store.Seed(order)
}

func newTestStore() *mocks.MockOrderStore {
	store := mocks.NewMockOrderStore()
	store.Now = func() time.Time { return at(600) }
	return store
}

// recordingSink captures events and optionally fails every delivery.
type recordingSink struct {
	mu     sync.Mutex
	events []notify.Event
	fail   bool
}

func (s *recordingSink) Notify(_ context.Context, e notify.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	if s.fail {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (s *recordingSink) Events() []notify.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Event(nil), s.events...)
}
