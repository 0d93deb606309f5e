package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// PaymentMethod is the closed set of payment rails accepted at checkout.
type PaymentMethod string

const (
	PaymentCard  PaymentMethod = "Card"
	PaymentMBWay PaymentMethod = "MBWay"
	PaymentIBAN  PaymentMethod = "IBAN"
)

// PaymentMethods lists every accepted method.
var PaymentMethods = []PaymentMethod{PaymentCard, PaymentMBWay, PaymentIBAN}

// DeferredPaymentMethods lists methods settled asynchronously after checkout.
var DeferredPaymentMethods = []PaymentMethod{PaymentMBWay, PaymentIBAN}

// Valid reports whether m is an accepted payment method.
func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// ParsePaymentMethod matches s against the known methods, ignoring case.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	for _, known := range PaymentMethods {
		if strings.EqualFold(strings.TrimSpace(s), string(known)) {
			return known, true
		}
	}
	return "", false
}

// Deferred reports whether m settles after order creation.
func (m PaymentMethod) Deferred() bool {
	for _, d := range DeferredPaymentMethods {
		if m == d {
			return true
		}
	}
	return false
}

// BillingInfo is the customer contact and address block of an order.
type BillingInfo struct {
	FullName   string `json:"full_name"`
	Email      string `gorm:"index" json:"email"`
	Phone      string `gorm:"index" json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Notes      string `json:"notes,omitempty"`
}

// Order is a placed storefront order.
type Order struct {
	BaseModel
	OrderNumber   string          `gorm:"uniqueIndex;size:40;not null" json:"order_number"`
	Billing       BillingInfo     `gorm:"embedded;embeddedPrefix:billing_" json:"billing"`
	Items         []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Shipping      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping"`
	Tax           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	GrandTotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"grand_total"`
	PaymentMethod PaymentMethod   `gorm:"size:16;index;not null" json:"payment_method"`
	Status        Status          `gorm:"size:16;index;not null" json:"status"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
}

// OrderItem is one line of an order. Position keeps the checkout ordering.
type OrderItem struct {
	BaseModel
	OrderID      uuid.UUID       `gorm:"type:uuid;index" json:"-"`
	Position     int             `json:"position"`
	ProductID    string          `gorm:"size:64" json:"product_id"`
	ProductName  string          `json:"product_name"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	ImageRef     string          `json:"image_ref,omitempty"`
	Size         string          `gorm:"size:32" json:"size"`
	Quantity     int             `json:"quantity"`
	LineSubtotal decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_subtotal"`
}
