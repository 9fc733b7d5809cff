package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/orderaction"
)

type orderView struct {
	OrderID   string         `json:"orderId"`
	Status    string         `json:"status"`
	Items     map[string]int `json:"items"`
	Customer  string         `json:"customer,omitempty"`
	Notes     string         `json:"notes,omitempty"`
	UpdatedAt string         `json:"updatedAt,omitempty"`
}

func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Inspect, complete or cancel orders",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <order-id>",
		Short: "Show an order's current status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				return showOrder(ctx, a, args[0])
			})
		},
	})
	cmd.AddCommand(newOrderActionCommand(rootOpts, "complete", entity.ActionComplete, "Mark a pending order as completed"))
	cmd.AddCommand(newOrderActionCommand(rootOpts, "cancel", entity.ActionCancel, "Cancel a pending order"))

	return cmd
}

func newOrderActionCommand(rootOpts *RootOptions, use string, action entity.OrderAction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <order-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				orderID := args[0]
				actions := orderaction.NewController(a.client, a.logger)
				actions.Mount(orderID)
				defer actions.Unmount(orderID)

				if err := actions.Trigger(ctx, orderID, action); err != nil {
					return err
				}
				// The server decides the resulting status.
				return showOrder(ctx, a, orderID)
			})
		},
	}
}

func showOrder(ctx context.Context, a *app, orderID string) error {
	o, err := a.client.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	view := orderView{
		OrderID:   o.ID,
		Status:    o.Status,
		Items:     make(map[string]int, len(o.Items)),
		Customer:  o.Customer.Name,
		Notes:     o.Notes,
		UpdatedAt: o.UpdatedAt,
	}
	for _, l := range o.Items {
		view.Items[l.ProductID] += l.Quantity
	}

	return a.out.Success(view, func(w io.Writer) {
		fprintf(w, "Order %s is %s\n", o.ID, o.Status)
		for _, l := range o.Items {
			fprintf(w, "  %s x %d\n", l.ProductID, l.Quantity)
		}
		if o.Customer.Name != "" {
			fprintf(w, "Customer: %s\n", o.Customer.Name)
		}
		if o.Notes != "" {
			fprintf(w, "Notes: %s\n", o.Notes)
		}
	})
}
