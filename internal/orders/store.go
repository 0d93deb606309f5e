package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/opt"
)

// ListFilter narrows an administrative order listing.
type ListFilter struct {
	Status        opt.Value[models.Status]
	PaymentMethod opt.Value[models.PaymentMethod]
	Search        string
	Limit         int
	Offset        int
}

// Store is the persistence contract for orders. Lookups report absence
// through the bool result; only storage failures are errors.
type Store interface {
	Create(ctx context.Context, draft Draft) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, bool, error)
	FindByOrderNumber(ctx context.Context, number string) (*models.Order, bool, error)
	// FindPendingByPaymentMethod returns a snapshot ordered newest first.
	FindPendingByPaymentMethod(ctx context.Context, method models.PaymentMethod) ([]models.Order, error)
	FindMostRecentByEmailAndStatus(ctx context.Context, email string, status opt.Value[models.Status]) (*models.Order, bool, error)
	// UpdateStatus applies a compare-and-set transition. A row whose stored
	// status does not allow the move yields a *TransitionError.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Order, bool, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error)
}
