package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/afparfum/internal/middleware"
	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/opt"
	"github.com/example/afparfum/internal/orders"
	"github.com/example/afparfum/internal/reconcile"
	"github.com/example/afparfum/internal/utils"
)

// AdminHandler exposes operator endpoints.
type AdminHandler struct {
	store orders.Store
	svc   *reconcile.Service
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(store orders.Store, svc *reconcile.Service) *AdminHandler {
	return &AdminHandler{store: store, svc: svc}
}

type verifyPaymentRequest struct {
	OrderID          *string          `json:"orderId"`
	OrderNumber      *string          `json:"orderNumber"`
	Email            *string          `json:"email"`
	Phone            *string          `json:"phone"`
	Amount           *decimal.Decimal `json:"amount"`
	PaymentReference *string          `json:"paymentReference"`
	PaymentMethod    *string          `json:"paymentMethod"`
	Timestamp        *string          `json:"timestamp"`
	DryRun           bool             `json:"dryRun"`
}

func (r verifyPaymentRequest) signal() (reconcile.Signal, error) {
	sig := reconcile.Signal{
		Source:        "admin",
		OrderNumber:   opt.NonBlank(r.OrderNumber),
		Email:         opt.NonBlank(r.Email),
		Phone:         opt.NonBlank(r.Phone),
		Amount:        opt.FromPtr(r.Amount),
		Reference:     opt.NonBlank(r.PaymentReference),
		TimestampHint: parseTimestamp(r.Timestamp),
	}
	if raw, ok := opt.NonBlank(r.OrderID).Get(); ok {
		id, err := uuid.Parse(raw)
		if err != nil {
			return sig, fiber.NewError(fiber.StatusBadRequest, "invalid orderId")
		}
		sig.OrderID = opt.Some(id)
	}
	if raw, ok := opt.NonBlank(r.PaymentMethod).Get(); ok {
		method, known := models.ParsePaymentMethod(raw)
		if !known {
			return sig, fiber.NewError(fiber.StatusBadRequest, "invalid paymentMethod")
		}
		sig.PaymentMethod = opt.Some(method)
	}
	if sig.Empty() {
		return sig, fiber.NewError(fiber.StatusBadRequest, "at least one identifying field is required")
	}
	return sig, nil
}

// VerifyPayment resolves an operator-supplied payment description and,
// unless dryRun is set, confirms the matched order.
func (h *AdminHandler) VerifyPayment(c *fiber.Ctx) error {
	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	sig, err := req.signal()
	if err != nil {
		return err
	}

	operator, _ := middleware.GetOperator(c)
	sig.Source = "admin:" + operator

	var res reconcile.Result
	if req.DryRun {
		res, err = h.svc.Preview(c.UserContext(), sig)
	} else {
		res, err = h.svc.Reconcile(c.UserContext(), sig)
	}
	if err != nil {
		return err
	}
	return writeResult(c, res)
}

// ConfirmOrder marks an order paid without matching.
func (h *AdminHandler) ConfirmOrder(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	res, err := h.svc.ConfirmByID(c.UserContext(), id)
	if err != nil {
		return err
	}

	operator, _ := middleware.GetOperator(c)
	log.Printf("[Admin] %s confirmed order %s (%s)", operator, res.Order.OrderNumber, res.Outcome)
	return c.JSON(fiber.Map{"success": true, "outcome": res.Outcome, "data": res.Order})
}

// CancelOrder cancels a pending order.
func (h *AdminHandler) CancelOrder(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	order, err := h.svc.CancelByID(c.UserContext(), id)
	if err != nil {
		return err
	}

	operator, _ := middleware.GetOperator(c)
	log.Printf("[Admin] %s cancelled order %s", operator, order.OrderNumber)
	return c.JSON(fiber.Map{"success": true, "data": order})
}

// ListOrders returns orders with pagination and filtering.
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	filter := orders.ListFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Limit:  pg.Limit,
		Offset: pg.Offset,
	}

	if raw := c.Query("status"); raw != "" {
		status := models.Status(strings.ToLower(raw))
		if !status.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status")
		}
		filter.Status = opt.Some(status)
	}
	if raw := c.Query("payment_method"); raw != "" {
		method, ok := models.ParsePaymentMethod(raw)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payment_method")
		}
		filter.PaymentMethod = opt.Some(method)
	}

	list, total, err := h.store.List(c.UserContext(), filter)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    list,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
			"total_pages":    pg.Pages(total),
		},
	})
}

// GetOrder returns a single order with its items.
func (h *AdminHandler) GetOrder(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	order, found, err := h.store.FindByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if !found {
		return orders.ErrOrderNotFound
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}
