package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/opt"
	"github.com/example/afparfum/internal/orders"
)

// MockOrderStore is an in-memory orders.Store for tests and dry runs.
type MockOrderStore struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]models.Order
	byNumber map[string]uuid.UUID

	Numbers orders.NumberGenerator
	Now     func() time.Time
	// Err, when set, is returned from every operation as a storage failure.
	Err error

	CreateCalls       int
	UpdateStatusCalls []UpdateStatusCall
}

// UpdateStatusCall records parameters passed to UpdateStatus
type UpdateStatusCall struct {
	ID     uuid.UUID
	Status models.Status
}

var _ orders.Store = (*MockOrderStore)(nil)

// NewMockOrderStore creates an empty MockOrderStore.
func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{
		byID:     make(map[uuid.UUID]models.Order),
		byNumber: make(map[string]uuid.UUID),
		Numbers:  orders.NewGenerator(nil, nil),
		Now:      time.Now,
	}
}

// Seed stores an order as-is, assigning an id if it has none.
func (m *MockOrderStore) Seed(order models.Order) models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	m.byID[order.ID] = clone(order)
	m.byNumber[order.OrderNumber] = order.ID
	return order
}

// Count returns the number of stored orders.
func (m *MockOrderStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

func (m *MockOrderStore) Create(ctx context.Context, draft orders.Draft) (*models.Order, error) {
	m.mu.Lock()
	m.CreateCalls++
	m.mu.Unlock()

	if err := m.failure("create"); err != nil {
		return nil, err
	}
	return orders.Place(ctx, draft, m.Now(), m.Numbers, m.insert)
}

func (m *MockOrderStore) insert(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byNumber[order.OrderNumber]; taken {
		return orders.ErrDuplicateOrderNumber
	}
	m.byID[order.ID] = clone(*order)
	m.byNumber[order.OrderNumber] = order.ID
	return nil
}

func (m *MockOrderStore) FindByID(_ context.Context, id uuid.UUID) (*models.Order, bool, error) {
	if err := m.failure("find by id"); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, ok := m.byID[id]
	if !ok {
		return nil, false, nil
	}
	out := clone(order)
	return &out, true, nil
}

func (m *MockOrderStore) FindByOrderNumber(ctx context.Context, number string) (*models.Order, bool, error) {
	if err := m.failure("find by order number"); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	id, ok := m.byNumber[strings.TrimSpace(number)]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return m.FindByID(ctx, id)
}

func (m *MockOrderStore) FindPendingByPaymentMethod(_ context.Context, method models.PaymentMethod) ([]models.Order, error) {
	if err := m.failure("find pending"); err != nil {
		return nil, err
	}
	return m.filter(func(o models.Order) bool {
		return o.Status == models.StatusPending && o.PaymentMethod == method
	}), nil
}

func (m *MockOrderStore) FindMostRecentByEmailAndStatus(_ context.Context, email string, status opt.Value[models.Status]) (*models.Order, bool, error) {
	if err := m.failure("find by email"); err != nil {
		return nil, false, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	matches := m.filter(func(o models.Order) bool {
		if o.Billing.Email != email {
			return false
		}
		st, ok := status.Get()
		return !ok || o.Status == st
	})
	if len(matches) == 0 {
		return nil, false, nil
	}
	return &matches[0], true, nil
}

func (m *MockOrderStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.Status) (*models.Order, bool, error) {
	m.mu.Lock()
	m.UpdateStatusCalls = append(m.UpdateStatusCalls, UpdateStatusCall{ID: id, Status: status})
	m.mu.Unlock()

	if err := m.failure("update status"); err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.byID[id]
	if !ok {
		return nil, false, nil
	}
	if err := orders.Transition(&order, status, m.Now()); err != nil {
		out := clone(order)
		return &out, true, err
	}
	order.UpdatedAt = m.Now()
	m.byID[id] = order
	out := clone(order)
	return &out, true, nil
}

func (m *MockOrderStore) List(_ context.Context, filter orders.ListFilter) ([]models.Order, int64, error) {
	if err := m.failure("list"); err != nil {
		return nil, 0, err
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	all := m.filter(func(o models.Order) bool {
		if st, ok := filter.Status.Get(); ok && o.Status != st {
			return false
		}
		if method, ok := filter.PaymentMethod.Get(); ok && o.PaymentMethod != method {
			return false
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(o.OrderNumber), search) &&
			!strings.Contains(o.Billing.Email, search) &&
			!strings.Contains(o.Billing.Phone, search) {
			return false
		}
		return true
	})

	total := int64(len(all))
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if filter.Offset >= len(all) {
		return []models.Order{}, total, nil
	}
	end := filter.Offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[filter.Offset:end], total, nil
}

// filter returns matching orders, newest first.
func (m *MockOrderStore) filter(keep func(models.Order) bool) []models.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Order, 0)
	for _, o := range m.byID {
		if keep(o) {
			out = append(out, clone(o))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *MockOrderStore) failure(op string) error {
	if m.Err == nil {
		return nil
	}
	return &orders.StorageError{Op: op, Err: m.Err}
}

func clone(o models.Order) models.Order {
	if o.Items != nil {
		o.Items = append([]models.OrderItem(nil), o.Items...)
	}
	if o.ConfirmedAt != nil {
		t := *o.ConfirmedAt
		o.ConfirmedAt = &t
	}
	if o.CancelledAt != nil {
		t := *o.CancelledAt
		o.CancelledAt = &t
	}
	return o
}
