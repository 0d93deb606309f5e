package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/opt"
)

// ProductRef identifies the product a line item was priced from.
type ProductRef struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	ImageRef  string
}

// LineItem is one requested product at checkout.
type LineItem struct {
	Product  ProductRef
	Size     string
	Quantity int
}

// Subtotal returns unit price times quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Product.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Draft is the checkout input from which an order is created.
type Draft struct {
	Billing       models.BillingInfo
	Items         []LineItem
	Subtotal      opt.Value[decimal.Decimal]
	Shipping      decimal.Decimal
	Tax           decimal.Decimal
	PaymentMethod models.PaymentMethod
}

// Normalize trims billing fields and lower-cases the email.
func (d Draft) Normalize() Draft {
	b := d.Billing
	b.FullName = strings.TrimSpace(b.FullName)
	b.Email = strings.ToLower(strings.TrimSpace(b.Email))
	b.Phone = strings.TrimSpace(b.Phone)
	b.Address = strings.TrimSpace(b.Address)
	b.City = strings.TrimSpace(b.City)
	b.PostalCode = strings.TrimSpace(b.PostalCode)
	b.Country = strings.TrimSpace(b.Country)
	b.Notes = strings.TrimSpace(b.Notes)
	d.Billing = b
	return d
}

// Validate checks creation-time requirements. Call Normalize first.
func (d Draft) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"billing.full_name", d.Billing.FullName},
		{"billing.email", d.Billing.Email},
		{"billing.phone", d.Billing.Phone},
		{"billing.address", d.Billing.Address},
		{"billing.city", d.Billing.City},
		{"billing.postal_code", d.Billing.PostalCode},
		{"billing.country", d.Billing.Country},
	}
	for _, r := range required {
		if r.value == "" {
			return &ValidationError{Field: r.field, Reason: "is required"}
		}
	}
	if addr, err := mail.ParseAddress(d.Billing.Email); err != nil || addr.Address != d.Billing.Email {
		return &ValidationError{Field: "billing.email", Reason: "is not a valid address"}
	}

	if !d.PaymentMethod.Valid() {
		return &ValidationError{Field: "payment_method", Reason: fmt.Sprintf("unsupported method %q", d.PaymentMethod)}
	}

	if len(d.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "must contain at least one item"}
	}
	for i, item := range d.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.Product.ID) == "" || strings.TrimSpace(item.Product.Name) == "" {
			return &ValidationError{Field: field + ".product", Reason: "id and name are required"}
		}
		if item.Quantity < 1 {
			return &ValidationError{Field: field + ".quantity", Reason: "must be at least 1"}
		}
		if err := checkAmount(field+".unit_price", item.Product.UnitPrice); err != nil {
			return err
		}
	}

	if err := checkAmount("shipping", d.Shipping); err != nil {
		return err
	}
	if err := checkAmount("tax", d.Tax); err != nil {
		return err
	}

	if supplied, ok := d.Subtotal.Get(); ok && !supplied.Equal(d.derivedSubtotal()) {
		return &ValidationError{Field: "subtotal", Reason: "does not match line items"}
	}
	return nil
}

func checkAmount(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return &ValidationError{Field: field, Reason: "must not be negative"}
	}
	if !v.Equal(v.Round(2)) {
		return &ValidationError{Field: field, Reason: "must have at most two decimal places"}
	}
	return nil
}

func (d Draft) derivedSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range d.Items {
		sum = sum.Add(item.Subtotal())
	}
	return sum
}

// Build turns a validated draft into an order without an order number.
func (d Draft) Build(now time.Time) *models.Order {
	subtotal := d.derivedSubtotal()

	order := &models.Order{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Billing:       d.Billing,
		Subtotal:      subtotal,
		Shipping:      d.Shipping,
		Tax:           d.Tax,
		GrandTotal:    subtotal.Add(d.Shipping).Add(d.Tax),
		PaymentMethod: d.PaymentMethod,
		Status:        InitialStatus(d.PaymentMethod),
	}
	if order.Status == models.StatusConfirmed {
		confirmedAt := now
		order.ConfirmedAt = &confirmedAt
	}

	order.Items = make([]models.OrderItem, 0, len(d.Items))
	for i, item := range d.Items {
		order.Items = append(order.Items, models.OrderItem{
			OrderID:      order.ID,
			Position:     i,
			ProductID:    strings.TrimSpace(item.Product.ID),
			ProductName:  strings.TrimSpace(item.Product.Name),
			UnitPrice:    item.Product.UnitPrice,
			ImageRef:     item.Product.ImageRef,
			Size:         strings.TrimSpace(item.Size),
			Quantity:     item.Quantity,
			LineSubtotal: item.Subtotal(),
		})
	}
	return order
}

// InsertFunc persists a built order. It must return an error matching
// ErrDuplicateOrderNumber when the order number is already taken.
type InsertFunc func(ctx context.Context, order *models.Order) error

// Place validates the draft, numbers the order and inserts it, regenerating
// the number once on collision.
func Place(ctx context.Context, draft Draft, now time.Time, numbers NumberGenerator, insert InsertFunc) (*models.Order, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	order := draft.Build(now)

	const attempts = 2
	for attempt := 1; attempt <= attempts; attempt++ {
		order.OrderNumber = numbers.Generate()
		err := insert(ctx, order)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, ErrDuplicateOrderNumber) {
			return nil, err
		}
		log.Printf("[Orders] order number %s already taken (attempt %d/%d)", order.OrderNumber, attempt, attempts)
	}
	return nil, fmt.Errorf("%w: gave up after %d attempts", ErrDuplicateOrderNumber, attempts)
}
