package orders

import (
	"time"

	"github.com/example/afparfum/internal/models"
)

// validTransitions defines allowed state transitions
var validTransitions = map[models.Status][]models.Status{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {}, // terminal state
	models.StatusCancelled: {}, // terminal state
}

// CanTransition checks if an order in from may move to to.
func CanTransition(from, to models.Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SourcesFor returns the states from which target is reachable.
func SourcesFor(target models.Status) []models.Status {
	var sources []models.Status
	for _, from := range []models.Status{models.StatusPending, models.StatusConfirmed, models.StatusCancelled} {
		if CanTransition(from, target) {
			sources = append(sources, from)
		}
	}
	return sources
}

// InitialStatus returns the state an order starts in for the given method.
func InitialStatus(method models.PaymentMethod) models.Status {
	if method.Deferred() {
		return models.StatusPending
	}
	return models.StatusConfirmed
}

// Transition moves o to target and stamps the matching timestamp.
func Transition(o *models.Order, target models.Status, now time.Time) error {
	if !CanTransition(o.Status, target) {
		return &TransitionError{From: o.Status, To: target}
	}

	o.Status = target
	switch target {
	case models.StatusConfirmed:
		o.ConfirmedAt = &now
	case models.StatusCancelled:
		o.CancelledAt = &now
	}
	return nil
}
