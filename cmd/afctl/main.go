package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/example/afparfum/internal/config"
	"github.com/example/afparfum/internal/database"
	"github.com/example/afparfum/internal/notify"
	"github.com/example/afparfum/internal/orders"
	"github.com/example/afparfum/internal/reconcile"
	"github.com/example/afparfum/internal/repository"
)

var Version = "dev"

// backend is what commands operate on.
type backend struct {
	store orders.Store
	svc   *reconcile.Service
	close func()
}

type opener func(ctx context.Context) (*backend, error)

func main() {
	if err := newRootCmd(os.Stdout, openFromEnv).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer, open opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "afctl",
		Short:         "afctl - operator tool for AF Parfum orders",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.AddCommand(ordersCmd(open))
	rootCmd.AddCommand(resolveCmd(open))
	rootCmd.AddCommand(hashPasswordCmd())

	return rootCmd
}

func openFromEnv(context.Context) (*backend, error) {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	sinks, closeSinks := notify.FromConfig(cfg, nil)
	store := repository.NewOrderStore(db, orders.NewGenerator(nil, nil), time.Now)

	return &backend{
		store: store,
		svc:   reconcile.NewService(store, sinks, nil),
		close: func() {
			closeSinks()
			database.Close(db)
		},
	}, nil
}

// withBackend opens the backend for the duration of fn.
func withBackend(cmd *cobra.Command, open opener, fn func(ctx context.Context, b *backend) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := open(ctx)
	if err != nil {
		return err
	}
	if b.close != nil {
		defer b.close()
	}
	return fn(ctx, b)
}
