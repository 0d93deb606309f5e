package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/example/afparfum/internal/config"
	"github.com/example/afparfum/internal/database"
	"github.com/example/afparfum/internal/handlers"
	"github.com/example/afparfum/internal/notify"
	"github.com/example/afparfum/internal/orders"
	"github.com/example/afparfum/internal/reconcile"
	"github.com/example/afparfum/internal/repository"
	"github.com/example/afparfum/internal/routes"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[Server] database: %v", err)
	}
	defer database.Close(db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sinks, closeSinks := notify.FromConfig(cfg, notify.NewMetrics(reg))
	defer closeSinks()
	log.Printf("[Server] %d notification sink(s) configured", sinks.Len())

	store := repository.NewOrderStore(db, orders.NewGenerator(nil, nil), time.Now)
	svc := reconcile.NewService(store, sinks, reconcile.NewMetrics(reg))

	app := fiber.New(fiber.Config{
		AppName:      "AF Parfum Orders",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, routes.Deps{
		Config:   cfg,
		Store:    store,
		Service:  svc,
		Sink:     sinks,
		Gatherer: reg,
		Ping:     database.Ping(db),
	})

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("[Server] Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("[Server] shutdown: %v", err)
		}
	}()

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
