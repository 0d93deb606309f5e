package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/afparfum/internal/config"
	"github.com/example/afparfum/internal/handlers"
	"github.com/example/afparfum/internal/middleware"
	"github.com/example/afparfum/internal/notify"
	"github.com/example/afparfum/internal/orders"
	"github.com/example/afparfum/internal/reconcile"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Config   *config.Config
	Store    orders.Store
	Service  *reconcile.Service
	Sink     notify.Sink
	Gatherer prometheus.Gatherer
	Ping     handlers.Pinger
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, d Deps) {
	authHandler := handlers.NewAuthHandler(d.Config)
	orderHandler := handlers.NewOrderHandler(d.Store, d.Sink)
	paymentHandler := handlers.NewPaymentHandler(d.Service)
	adminHandler := handlers.NewAdminHandler(d.Store, d.Service)

	app.Get("/healthz", handlers.Health(d.Ping))
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api", middleware.RequestTimeout(d.Config.RequestTimeout))

	// Auth routes
	api.Post("/auth/login", authHandler.Login)

	// Checkout
	api.Post("/orders", orderHandler.CreateOrder)
	api.Get("/orders/:number", orderHandler.GetOrderByNumber)

	// Payment provider callbacks
	api.Post("/payments/:method/webhook",
		middleware.WebhookAuth(d.Config.WebhookUsername, d.Config.WebhookSecret),
		paymentHandler.Webhook)

	// Protected routes
	admin := api.Group("/admin", middleware.AdminAuth(d.Config.JWTSecret))
	admin.Post("/payments/verify", adminHandler.VerifyPayment)
	admin.Get("/orders", adminHandler.ListOrders)
	admin.Get("/orders/:id", adminHandler.GetOrder)
	admin.Post("/orders/:id/confirm", adminHandler.ConfirmOrder)
	admin.Post("/orders/:id/cancel", adminHandler.CancelOrder)
}
