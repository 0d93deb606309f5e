package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/opt"
	"github.com/example/afparfum/internal/orders"
)

const uniqueViolation = "23505"

// OrderStore implements orders.Store on top of gorm.
type OrderStore struct {
	db      *gorm.DB
	numbers orders.NumberGenerator
	now     func() time.Time
}

var _ orders.Store = (*OrderStore)(nil)

// NewOrderStore constructs an OrderStore. A nil clock means time.Now.
func NewOrderStore(db *gorm.DB, numbers orders.NumberGenerator, now func() time.Time) *OrderStore {
	if now == nil {
		now = time.Now
	}
	if numbers == nil {
		numbers = orders.NewGenerator(now, nil)
	}
	return &OrderStore{db: db, numbers: numbers, now: now}
}

// Create validates the draft and persists a new order with a fresh number.
func (s *OrderStore) Create(ctx context.Context, draft orders.Draft) (*models.Order, error) {
	return orders.Place(ctx, draft, s.now(), s.numbers, s.insert)
}

func (s *OrderStore) insert(ctx context.Context, order *models.Order) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return orders.ErrDuplicateOrderNumber
	}
	return &orders.StorageError{Op: "create", Err: err}
}

// FindByID looks an order up by its id.
func (s *OrderStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, bool, error) {
	return s.first(s.withItems(ctx).Where("id = ?", id), "find by id")
}

// FindByOrderNumber looks an order up by its human-readable number.
func (s *OrderStore) FindByOrderNumber(ctx context.Context, number string) (*models.Order, bool, error) {
	return s.first(s.withItems(ctx).Where("order_number = ?", strings.TrimSpace(number)), "find by order number")
}

// FindPendingByPaymentMethod returns pending orders for method, newest first.
func (s *OrderStore) FindPendingByPaymentMethod(ctx context.Context, method models.PaymentMethod) ([]models.Order, error) {
	var list []models.Order
	if err := s.withItems(ctx).
		Where("status = ? AND payment_method = ?", models.StatusPending, method).
		Order("created_at desc").
		Find(&list).Error; err != nil {
		return nil, &orders.StorageError{Op: "find pending", Err: err}
	}
	return list, nil
}

// FindMostRecentByEmailAndStatus returns the newest order for email,
// restricted to status when one is given.
func (s *OrderStore) FindMostRecentByEmailAndStatus(ctx context.Context, email string, status opt.Value[models.Status]) (*models.Order, bool, error) {
	query := s.withItems(ctx).Where("billing_email = ?", strings.ToLower(strings.TrimSpace(email)))
	if st, ok := status.Get(); ok {
		query = query.Where("status = ?", st)
	}
	return s.first(query.Order("created_at desc"), "find by email")
}

// UpdateStatus moves the order to status only if its stored status still
// allows it. On a lost race the current row is returned with a
// *orders.TransitionError.
func (s *OrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Order, bool, error) {
	sources := orders.SourcesFor(status)
	if len(sources) > 0 {
		now := s.now()
		updates := map[string]any{
			"status":     status,
			"updated_at": now,
		}
		switch status {
		case models.StatusConfirmed:
			updates["confirmed_at"] = now
		case models.StatusCancelled:
			updates["cancelled_at"] = now
		}

		res := s.db.WithContext(ctx).
			Model(&models.Order{}).
			Where("id = ? AND status IN ?", id, sources).
			Updates(updates)
		if res.Error != nil {
			return nil, false, &orders.StorageError{Op: "update status", Err: res.Error}
		}
		if res.RowsAffected == 1 {
			return s.FindByID(ctx, id)
		}
	}

	current, found, err := s.FindByID(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}
	return current, true, &orders.TransitionError{From: current.Status, To: status}
}

// List returns a filtered page of orders, newest first, and the total count.
func (s *OrderStore) List(ctx context.Context, filter orders.ListFilter) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})

	if st, ok := filter.Status.Get(); ok {
		query = query.Where("status = ?", st)
	}
	if method, ok := filter.PaymentMethod.Get(); ok {
		query = query.Where("payment_method = ?", method)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"LOWER(order_number) LIKE ? OR billing_email LIKE ? OR billing_phone LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, &orders.StorageError{Op: "count", Err: err}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	var list []models.Order
	if err := query.Preload("Items", orderItemsByPosition).
		Order("created_at desc").
		Limit(limit).Offset(filter.Offset).
		Find(&list).Error; err != nil {
		return nil, 0, &orders.StorageError{Op: "list", Err: err}
	}
	return list, total, nil
}

func (s *OrderStore) withItems(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Items", orderItemsByPosition)
}

func (s *OrderStore) first(query *gorm.DB, op string) (*models.Order, bool, error) {
	var order models.Order
	if err := query.Take(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, &orders.StorageError{Op: op, Err: err}
	}
	return &order, true, nil
}

func orderItemsByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
