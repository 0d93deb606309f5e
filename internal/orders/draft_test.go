package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/opt"
)

func validDraft(method models.PaymentMethod) Draft {
	return Draft{
		Billing: models.BillingInfo{
			FullName:   "Ana Sousa",
			Email:      "  Ana@Example.com ",
			Phone:      "+351912345678",
			Address:    "Rua das Flores 10",
			City:       "Lisboa",
			PostalCode: "1200-192",
			Country:    "PT",
		},
		Items: []LineItem{
			{Product: ProductRef{ID: "p-1", Name: "Oud Royal", UnitPrice: decimal.RequireFromString("45.50")}, Size: "50ml", Quantity: 2},
			{Product: ProductRef{ID: "p-2", Name: "Rose Noir", UnitPrice: decimal.RequireFromString("19.90")}, Size: "30ml", Quantity: 1},
		},
		Shipping:      decimal.RequireFromString("4.99"),
		Tax:           decimal.RequireFromString("2.10"),
		PaymentMethod: method,
	}
}

type scriptedNumbers struct {
	numbers []string
	calls   int
}

func (s *scriptedNumbers) Generate() string {
	n := s.numbers[s.calls%len(s.numbers)]
	s.calls++
	return n
}

// ============================================
// Validation
// ============================================

func TestDraft_Validate_RequiredBillingFields(t *testing.T) {
	fields := map[string]func(*models.BillingInfo){
		"billing.full_name":   func(b *models.BillingInfo) { b.FullName = " " },
		"billing.email":       func(b *models.BillingInfo) { b.Email = "" },
		"billing.phone":       func(b *models.BillingInfo) { b.Phone = "" },
		"billing.address":     func(b *models.BillingInfo) { b.Address = "" },
		"billing.city":        func(b *models.BillingInfo) { b.City = "" },
		"billing.postal_code": func(b *models.BillingInfo) { b.PostalCode = "" },
		"billing.country":     func(b *models.BillingInfo) { b.Country = "" },
	}

	for field, mutate := range fields {
		t.Run(field, func(t *testing.T) {
			d := validDraft(models.PaymentMBWay)
			mutate(&d.Billing)

			err := d.Normalize().Validate()

			assert.ErrorIs(t, err, ErrValidation)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, field, ve.Field)
		})
	}
}

func TestDraft_Validate_EmailMustBeBareAddress(t *testing.T) {
	for _, email := range []string{"Ana <ana@example.com>", "<ana@example.com>", "ana@example.com (Ana)", "not-an-email"} {
		d := validDraft(models.PaymentMBWay)
		d.Billing.Email = email

		var ve *ValidationError
		require.ErrorAs(t, d.Normalize().Validate(), &ve, email)
		assert.Equal(t, "billing.email", ve.Field, email)
	}
}

func TestDraft_Validate_NotesOptional(t *testing.T) {
	d := validDraft(models.PaymentIBAN)
	d.Billing.Notes = ""

	assert.NoError(t, d.Normalize().Validate())
}

func TestDraft_Validate_EmptyItems(t *testing.T) {
	d := validDraft(models.PaymentIBAN)
	d.Items = nil

	assert.ErrorIs(t, d.Normalize().Validate(), ErrValidation)
}

func TestDraft_Validate_ZeroQuantity(t *testing.T) {
	d := validDraft(models.PaymentIBAN)
	d.Items[1].Quantity = 0

	var ve *ValidationError
	require.ErrorAs(t, d.Normalize().Validate(), &ve)
	assert.Equal(t, "items[1].quantity", ve.Field)
}

func TestDraft_Validate_UnknownPaymentMethod(t *testing.T) {
	d := validDraft("Cash")

	var ve *ValidationError
	require.ErrorAs(t, d.Normalize().Validate(), &ve)
	assert.Equal(t, "payment_method", ve.Field)
}

func TestDraft_Validate_SubtotalMismatch(t *testing.T) {
	d := validDraft(models.PaymentMBWay)
	d.Subtotal = opt.Some(decimal.RequireFromString("100.00"))

	var ve *ValidationError
	require.ErrorAs(t, d.Normalize().Validate(), &ve)
	assert.Equal(t, "subtotal", ve.Field)
}

func TestDraft_Validate_SubPennyPrice(t *testing.T) {
	d := validDraft(models.PaymentMBWay)
	d.Items[0].Product.UnitPrice = decimal.RequireFromString("1.005")

	assert.ErrorIs(t, d.Normalize().Validate(), ErrValidation)
}

// ============================================
// Build
// ============================================

func TestDraft_Build_Totals(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	d := validDraft(models.PaymentMBWay)
	d.Subtotal = opt.Some(decimal.RequireFromString("110.90"))
	d = d.Normalize()
	require.NoError(t, d.Validate())

	order := d.Build(now)

	assert.True(t, decimal.RequireFromString("110.90").Equal(order.Subtotal))
	assert.True(t, decimal.RequireFromString("117.99").Equal(order.GrandTotal), order.GrandTotal.String())
	assert.Equal(t, "ana@example.com", order.Billing.Email)
	assert.Equal(t, now, order.CreatedAt)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Oud Royal", order.Items[0].ProductName)
	assert.True(t, decimal.RequireFromString("91.00").Equal(order.Items[0].LineSubtotal))
	assert.Equal(t, 1, order.Items[1].Position)
}

func TestDraft_Build_InitialStatusByMethod(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	for _, method := range models.PaymentMethods {
		t.Run(string(method), func(t *testing.T) {
			order := validDraft(method).Normalize().Build(now)

			if method.Deferred() {
				assert.Equal(t, models.StatusPending, order.Status)
				assert.Nil(t, order.ConfirmedAt)
			} else {
				assert.Equal(t, models.StatusConfirmed, order.Status)
				require.NotNil(t, order.ConfirmedAt)
				assert.Equal(t, now, *order.ConfirmedAt)
			}
		})
	}
}

// ============================================
// Place
// ============================================

func TestPlace_RetriesOnceOnCollision(t *testing.T) {
	numbers := &scriptedNumbers{numbers: []string{"AF-1-AAAAAA", "AF-2-BBBBBB"}}
	taken := map[string]bool{"AF-1-AAAAAA": true}
	inserts := 0
	insert := func(_ context.Context, o *models.Order) error {
		inserts++
		if taken[o.OrderNumber] {
			return ErrDuplicateOrderNumber
		}
		taken[o.OrderNumber] = true
		return nil
	}

	order, err := Place(context.Background(), validDraft(models.PaymentMBWay), time.Now(), numbers, insert)

	require.NoError(t, err)
	assert.Equal(t, "AF-2-BBBBBB", order.OrderNumber)
	assert.Equal(t, 2, inserts)
}

func TestPlace_SecondCollisionIsFatal(t *testing.T) {
	numbers := &scriptedNumbers{numbers: []string{"AF-1-AAAAAA"}}
	insert := func(context.Context, *models.Order) error { return ErrDuplicateOrderNumber }

	order, err := Place(context.Background(), validDraft(models.PaymentMBWay), time.Now(), numbers, insert)

	assert.ErrorIs(t, err, ErrDuplicateOrderNumber)
	assert.Nil(t, order)
	assert.Equal(t, 2, numbers.calls)
}

func TestPlace_ValidationFailsBeforeInsert(t *testing.T) {
	called := false
	insert := func(context.Context, *models.Order) error { called = true; return nil }
	d := validDraft(models.PaymentMBWay)
	d.Items = nil

	_, err := Place(context.Background(), d, time.Now(), NewGenerator(nil, nil), insert)

	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, called)
}

func TestPlace_StorageErrorNotRetried(t *testing.T) {
	numbers := &scriptedNumbers{numbers: []string{"AF-1-AAAAAA", "AF-2-BBBBBB"}}
	boom := &StorageError{Op: "create", Err: errors.New("connection refused")}
	insert := func(context.Context, *models.Order) error { return boom }

	_, err := Place(context.Background(), validDraft(models.PaymentIBAN), time.Now(), numbers, insert)

	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, 1, numbers.calls)
}
