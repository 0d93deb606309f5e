package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/opt"
	"github.com/example/afparfum/internal/reconcile"
)

// PaymentHandler receives asynchronous payment notifications.
type PaymentHandler struct {
	svc *reconcile.Service
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(svc *reconcile.Service) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type webhookRequest struct {
	OrderNumber   *string          `json:"orderNumber"`
	Amount        *decimal.Decimal `json:"amount"`
	Phone         *string          `json:"phone"`
	Email         *string          `json:"email"`
	Reference     *string          `json:"reference"`
	TransactionID *string          `json:"transactionId"`
	Timestamp     *string          `json:"timestamp"`
}

func (r webhookRequest) signal(method models.PaymentMethod) reconcile.Signal {
	return reconcile.Signal{
		Source:        "webhook:" + string(method),
		OrderNumber:   opt.NonBlank(r.OrderNumber),
		Amount:        opt.FromPtr(r.Amount),
		Phone:         opt.NonBlank(r.Phone),
		Email:         opt.NonBlank(r.Email),
		Reference:     opt.NonBlank(r.Reference),
		TransactionID: opt.NonBlank(r.TransactionID),
		TimestampHint: parseTimestamp(r.Timestamp),
		PaymentMethod: opt.Some(method),
	}
}

// Webhook reconciles a provider callback against pending orders. Repeated
// callbacks for the same payment succeed without side effects.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	method, ok := models.ParsePaymentMethod(c.Params("method"))
	if !ok || !method.Deferred() {
		return fiber.NewError(fiber.StatusNotFound, "unknown payment method")
	}

	var req webhookRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	res, err := h.svc.Reconcile(c.UserContext(), req.signal(method))
	if err != nil {
		return err
	}
	return writeResult(c, res)
}

func writeResult(c *fiber.Ctx, res reconcile.Result) error {
	if res.Outcome == reconcile.OutcomeNoMatch {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"outcome": res.Outcome,
		})
	}

	body := fiber.Map{
		"success": true,
		"outcome": res.Outcome,
		"data":    orderSummary(res.Order),
	}
	if res.Strategy != "" {
		body["strategy"] = res.Strategy
	}
	return c.JSON(body)
}
