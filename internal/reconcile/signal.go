// Package reconcile matches asynchronous payment signals to pending orders
// and confirms them.
package reconcile

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/opt"
)

// Tolerance is the largest absolute difference, exclusive, at which a paid
// amount still matches an order's grand total.
var Tolerance = decimal.New(1, -2)

// Signal is a partially populated description of a payment event.
type Signal struct {
	// Source names the caller, e.g. "webhook:MBWay" or "admin".
	Source string

	OrderID       opt.Value[uuid.UUID]
	OrderNumber   opt.Value[string]
	Amount        opt.Value[decimal.Decimal]
	Phone         opt.Value[string]
	TimestampHint opt.Value[time.Time]
	Reference     opt.Value[string]
	TransactionID opt.Value[string]
	Email         opt.Value[string]
	// PaymentMethod is the rail that produced the signal. When absent every
	// deferred-settlement method is considered.
	PaymentMethod opt.Value[models.PaymentMethod]
}

// Empty reports whether the signal carries no identifying field at all.
func (s Signal) Empty() bool {
	return !s.OrderID.Present() &&
		!s.OrderNumber.Present() &&
		!s.Amount.Present() &&
		!s.Phone.Present() &&
		!s.Reference.Present() &&
		!s.TransactionID.Present() &&
		!s.Email.Present()
}

// amountCompatible reports whether o satisfies the signal's amount, if any.
func (s Signal) amountCompatible(o *models.Order) bool {
	amount, ok := s.Amount.Get()
	return !ok || AmountMatches(o.GrandTotal, amount)
}

// AmountMatches reports |total - paid| < Tolerance.
func AmountMatches(total, paid decimal.Decimal) bool {
	return total.Sub(paid).Abs().LessThan(Tolerance)
}
