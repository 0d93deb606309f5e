package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/afparfum/internal/models"
	"github.com/example/afparfum/internal/opt"
	"github.com/example/afparfum/internal/orders"
)

func ordersCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and administer orders",
	}

	cmd.AddCommand(ordersListCmd(open))
	cmd.AddCommand(ordersShowCmd(open))
	cmd.AddCommand(ordersConfirmCmd(open))
	cmd.AddCommand(ordersCancelCmd(open))

	return cmd
}

func ordersListCmd(open opener) *cobra.Command {
	var (
		status string
		method string
		search string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := orders.ListFilter{Search: search, Limit: limit}
			if status != "" {
				st := models.Status(status)
				if !st.Valid() {
					return fmt.Errorf("unknown status %q", status)
				}
				filter.Status = opt.Some(st)
			}
			if method != "" {
				m, ok := models.ParsePaymentMethod(method)
				if !ok {
					return fmt.Errorf("unknown payment method %q", method)
				}
				filter.PaymentMethod = opt.Some(m)
			}

			return withBackend(cmd, open, func(ctx context.Context, b *backend) error {
				list, total, err := b.store.List(ctx, filter)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"orders": list, "total": total})
				}
				printOrders(cmd.OutOrStdout(), list)
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d order(s)\n", len(list), total)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (pending, confirmed, cancelled)")
	cmd.Flags().StringVarP(&method, "method", "m", "", "Filter by payment method (Card, MBWay, IBAN)")
	cmd.Flags().StringVarP(&search, "search", "q", "", "Search order number, email or phone")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum results")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")

	return cmd
}

func ordersShowCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one order with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			return withBackend(cmd, open, func(ctx context.Context, b *backend) error {
				order, found, err := b.store.FindByID(ctx, id)
				if err != nil {
					return err
				}
				if !found {
					return orders.ErrOrderNotFound
				}
				return writeJSON(cmd.OutOrStdout(), order)
			})
		},
	}
}

func ordersConfirmCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm [id]",
		Short: "Mark an order as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			return withBackend(cmd, open, func(ctx context.Context, b *backend) error {
				res, err := b.svc.ConfirmByID(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", res.Order.OrderNumber, res.Outcome)
				return nil
			})
		},
	}
}

func ordersCancelCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [id]",
		Short: "Cancel a pending order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			return withBackend(cmd, open, func(ctx context.Context, b *backend) error {
				order, err := b.svc.CancelByID(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", order.OrderNumber, order.Status)
				return nil
			})
		},
	}
}

func printOrders(w io.Writer, list []models.Order) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tSTATUS\tMETHOD\tTOTAL\tEMAIL\tCREATED")
	for _, o := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			o.OrderNumber,
			o.Status,
			o.PaymentMethod,
			o.GrandTotal.StringFixed(2),
			o.Billing.Email,
			o.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
