package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/opt"
	"github.com/example/afparfum/internal/reconcile"
)

func resolveCmd(open opener) *cobra.Command {
	var (
		orderNumber string
		amount      string
		email       string
		phone       string
		reference   string
		method      string
		at          string
		confirm     bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Find the pending order a payment belongs to",
		Long: `Run the payment matcher against pending orders.

By default nothing is changed. Pass --confirm to confirm the matched order
and send the payment notifications.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sig := reconcile.Signal{
				Source:      "cli",
				OrderNumber: opt.NonBlank(&orderNumber),
				Email:       opt.NonBlank(&email),
				Phone:       opt.NonBlank(&phone),
				Reference:   opt.NonBlank(&reference),
			}
			if amount != "" {
				d, err := decimal.NewFromString(amount)
				if err != nil {
					return fmt.Errorf("invalid amount %q", amount)
				}
				sig.Amount = opt.Some(d)
			}
			if method != "" {
				m, ok := models.ParsePaymentMethod(method)
				if !ok {
					return fmt.Errorf("unknown payment method %q", method)
				}
				sig.PaymentMethod = opt.Some(m)
			}
			if at != "" {
				ts, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at, want RFC3339: %w", err)
				}
				sig.TimestampHint = opt.Some(ts)
			}
			if sig.Empty() {
				return fmt.Errorf("at least one of --order-number, --amount, --email, --phone, --reference is required")
			}

			return withBackend(cmd, open, func(ctx context.Context, b *backend) error {
				var (
					res reconcile.Result
					err error
				)
				if confirm {
					res, err = b.svc.Reconcile(ctx, sig)
				} else {
					res, err = b.svc.Preview(ctx, sig)
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if res.Order == nil {
					fmt.Fprintln(out, "No pending order matches.")
					return nil
				}
				fmt.Fprintf(out, "Outcome:  %s\n", res.Outcome)
				if res.Strategy != "" {
					fmt.Fprintf(out, "Strategy: %s\n", res.Strategy)
				}
				fmt.Fprintf(out, "Order:    %s (%s)\n", res.Order.OrderNumber, res.Order.ID)
				fmt.Fprintf(out, "Total:    %s %s\n", res.Order.GrandTotal.StringFixed(2), res.Order.PaymentMethod)
				fmt.Fprintf(out, "Customer: %s <%s>\n", res.Order.Billing.FullName, res.Order.Billing.Email)
				fmt.Fprintf(out, "Status:   %s\n", res.Order.Status)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&orderNumber, "order-number", "", "Order number quoted by the customer")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount received, e.g. 49.90")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Customer email")
	cmd.Flags().StringVarP(&phone, "phone", "p", "", "Payer phone number")
	cmd.Flags().StringVarP(&reference, "reference", "r", "", "Free-text payment reference")
	cmd.Flags().StringVarP(&method, "method", "m", "", "Restrict to one payment method")
	cmd.Flags().StringVar(&at, "at", "", "When the payment was made (RFC3339)")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm the matched order")

	return cmd
}
