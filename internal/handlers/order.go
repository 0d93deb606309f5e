package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/notify"
	"github.com/example/afparfum/internal/opt"
	"github.com/example/afparfum/internal/orders"
)

// OrderHandler manages checkout endpoints.
type OrderHandler struct {
	store orders.Store
	sink  notify.Sink
}

// NewOrderHandler constructs OrderHandler. A nil sink discards notifications.
func NewOrderHandler(store orders.Store, sink notify.Sink) *OrderHandler {
	if sink == nil {
		sink = notify.Nop
	}
	return &OrderHandler{store: store, sink: sink}
}

type billingRequest struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Notes      string `json:"notes"`
}

type orderItemRequest struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ImageRef    string          `json:"image_ref"`
	Size        string          `json:"size"`
	Quantity    int             `json:"quantity"`
}

type createOrderRequest struct {
	Billing       billingRequest     `json:"billing"`
	Items         []orderItemRequest `json:"items"`
	Subtotal      *decimal.Decimal   `json:"subtotal"`
	Shipping      decimal.Decimal    `json:"shipping"`
	Tax           decimal.Decimal    `json:"tax"`
	PaymentMethod string             `json:"payment_method"`
}

func (r createOrderRequest) draft() orders.Draft {
	items := make([]orders.LineItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, orders.LineItem{
			Product: orders.ProductRef{
				ID:        it.ProductID,
				Name:      it.ProductName,
				UnitPrice: it.UnitPrice,
				ImageRef:  it.ImageRef,
			},
			Size:     it.Size,
			Quantity: it.Quantity,
		})
	}

	method, _ := models.ParsePaymentMethod(r.PaymentMethod)
	if method == "" {
		method = models.PaymentMethod(r.PaymentMethod)
	}

	return orders.Draft{
		Billing: models.BillingInfo{
			FullName:   r.Billing.FullName,
			Email:      r.Billing.Email,
			Phone:      r.Billing.Phone,
			Address:    r.Billing.Address,
			City:       r.Billing.City,
			PostalCode: r.Billing.PostalCode,
			Country:    r.Billing.Country,
			Notes:      r.Billing.Notes,
		},
		Items:         items,
		Subtotal:      opt.FromPtr(r.Subtotal),
		Shipping:      r.Shipping,
		Tax:           r.Tax,
		PaymentMethod: method,
	}
}

// CreateOrder places an order from checkout data.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.store.Create(c.UserContext(), req.draft())
	if err != nil {
		return err
	}

	event := notify.Event{Kind: notify.KindOrderCreated, Order: *order, OccurredAt: time.Now()}
	if err := h.sink.Notify(c.UserContext(), event); err != nil {
		log.Printf("[Order] notification for order %s failed: %v", order.OrderNumber, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    orderSummary(order),
	})
}

// GetOrderByNumber returns the public status of an order.
func (h *OrderHandler) GetOrderByNumber(c *fiber.Ctx) error {
	order, found, err := h.store.FindByOrderNumber(c.UserContext(), c.Params("number"))
	if err != nil {
		return err
	}
	if !found {
		return orders.ErrOrderNotFound
	}

	summary := orderSummary(order)
	summary["payment_method"] = order.PaymentMethod
	summary["created_at"] = order.CreatedAt
	summary["confirmed_at"] = order.ConfirmedAt
	return c.JSON(fiber.Map{"success": true, "data": summary})
}

func orderSummary(o *models.Order) fiber.Map {
	return fiber.Map{
		"id":           o.ID,
		"order_number": o.OrderNumber,
		"status":       o.Status,
		"grand_total":  o.GrandTotal.StringFixed(2),
	}
}
