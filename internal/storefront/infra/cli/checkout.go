package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

// Conflict policies for --on-conflict.
const (
	OnConflictPrompt = "prompt"
	OnConflictAccept = "accept"
	OnConflictAbort  = "abort"
)

type CheckoutOptions struct {
	Name       string
	Phone      string
	Address    string
	Notes      string
	OnConflict string
}

type conflictView struct {
	ProductID         string `json:"productId"`
	ProductName       string `json:"productName"`
	RequestedQuantity int    `json:"requestedQuantity"`
	AvailableQuantity int    `json:"availableQuantity"`
	Unit              string `json:"unit"`
}

type checkoutView struct {
	CheckoutID string         `json:"checkoutId"`
	State      string         `json:"state"`
	OrderID    string         `json:"orderId,omitempty"`
	Items      map[string]int `json:"items,omitempty"`
	Conflicts  []conflictView `json:"conflicts,omitempty"`
}

func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckoutOptions{}

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Submit the cart as an order",
		Long: `Submit the session cart as an order.

If stock changed since the cart was built the conflicting lines are shown
and, depending on --on-conflict, the reduced cart is ordered or the order
is abandoned with the cart left as it was. The reduced cart is resubmitted
at most once.

If the previous checkout got no answer from the server, that same order is
sent again first so it cannot be placed twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.OnConflict {
			case OnConflictPrompt, OnConflictAccept, OnConflictAbort:
			default:
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid --on-conflict %q", opts.OnConflict))
			}
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				return runCheckout(ctx, a, opts, cmd.InOrStdin(), cmd.ErrOrStderr())
			})
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "customer name")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "customer phone")
	cmd.Flags().StringVar(&opts.Address, "address", "", "delivery address")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "notes for the order")
	cmd.Flags().StringVar(&opts.OnConflict, "on-conflict", OnConflictPrompt, "what to do on a stock conflict (prompt|accept|abort)")

	return cmd
}

func runCheckout(ctx context.Context, a *app, opts *CheckoutOptions, in io.Reader, prompt io.Writer) error {
	gate := a.gate(ctx)
	store, err := a.cartStore(ctx, gate.CheckOrdering)
	if err != nil {
		return err
	}

	co, err := checkout.Open(ctx, store, gate, a.client,
		checkout.WithTransitionLog(a.db.Transitions()),
		checkout.WithPendingStore(a.db.Carts(), a.cfg.Storage.Session),
		checkout.WithLogger(a.logger),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot load pending order", err)
	}
	defer co.Close()

	if co.HasPending() {
		fprintf(prompt, "Resending the previous order, which got no answer from the server.\n")
	}

	out, err := co.Submit(ctx, checkout.Details{
		Customer: entity.Contact{Name: opts.Name, Phone: opts.Phone, Address: opts.Address},
		Notes:    opts.Notes,
	})
	if err != nil {
		return err
	}

	if out.State == checkout.StateConflict {
		accept, err := decideConflict(opts.OnConflict, out.Conflicts, in, prompt)
		if err != nil {
			return err
		}
		if out, err = co.Resolve(ctx, accept); err != nil {
			return err
		}
	}

	view := checkoutView{
		CheckoutID: co.ID(),
		State:      string(out.State),
		OrderID:    out.OrderID,
		Items:      out.Items,
		Conflicts:  conflictViews(out.Conflicts),
	}
	if err := a.out.Success(view, func(w io.Writer) { renderCheckout(w, view) }); err != nil {
		return err
	}
	if !out.State.Succeeded() {
		return &ExitError{Code: ExitFailure, Message: "order not placed", Reported: true}
	}
	return nil
}

// decideConflict applies the conflict policy. In prompt mode anything but
// an explicit yes declines.
func decideConflict(policy string, conflicts []entity.Conflict, in io.Reader, prompt io.Writer) (bool, error) {
	switch policy {
	case OnConflictAccept:
		return true, nil
	case OnConflictAbort:
		return false, nil
	}

	fprintf(prompt, "Some items are no longer available in the quantities requested:\n")
	renderConflicts(prompt, conflicts)
	fprintf(prompt, "Order the reduced quantities instead? [y/N] ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return false, nil
		}
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func conflictViews(in []entity.Conflict) []conflictView {
	out := make([]conflictView, len(in))
	for i, c := range in {
		out[i] = conflictView(c)
	}
	return out
}

func renderConflicts(w io.Writer, conflicts []entity.Conflict) {
	for _, c := range conflicts {
		fprintf(w, "  %s: requested %d %s, available %d %s\n",
			c.ProductName, c.RequestedQuantity, c.Unit, c.AvailableQuantity, c.Unit)
	}
}

func renderCheckout(w io.Writer, v checkoutView) {
	switch checkout.State(v.State) {
	case checkout.StateConfirmed:
		fprintf(w, "Order %s placed\n", v.OrderID)
	case checkout.StateAcceptedReduced:
		fprintf(w, "Order %s placed with reduced quantities\n", v.OrderID)
	case checkout.StateAborted:
		fprintf(w, "Order not placed; your cart was kept\n")
	default:
		fprintf(w, "Checkout ended in %s\n", v.State)
	}
	fprintf(w, "Checkout id: %s\n", v.CheckoutID)
}
