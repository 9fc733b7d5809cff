package cli

import (
	"context"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/cart"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

type cartLineView struct {
	ProductID string `json:"productId"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	Unit      string `json:"unit,omitempty"`
}

type cartView struct {
	Session string         `json:"session"`
	Lines   []cartLineView `json:"lines"`
	Units   int            `json:"units"`
}

func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and edit the session cart",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <product-id> <delta>",
		Short: "Change a line by delta, clamped to the product's limits",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				delta, err := parseQuantity(args[1])
				if err != nil {
					return err
				}
				return mutateCart(ctx, a, args[0], func(s *cart.Store, p entity.Product) (cart.Cart, error) {
					return s.Add(ctx, p.ID, delta, boundsFor(p))
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set a line's quantity, clamped to the product's limits; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				q, err := parseQuantity(args[1])
				if err != nil {
					return err
				}
				return mutateCart(ctx, a, args[0], func(s *cart.Store, p entity.Product) (cart.Cart, error) {
					return s.SetQuantity(ctx, p.ID, q, boundsFor(p))
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				store, err := a.cartStore(ctx, nil)
				if err != nil {
					return err
				}
				c, err := store.Remove(ctx, args[0])
				if err != nil {
					return err
				}
				return renderCart(a, c, nil)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				store, err := a.cartStore(ctx, nil)
				if err != nil {
					return err
				}
				// Names are cosmetic; show ids if the catalog is unreachable.
				index, err := catalogIndex(ctx, a)
				if err != nil {
					a.logger.DebugContext(ctx, "catalog unavailable for cart view", "error", err)
				}
				return renderCart(a, store.Snapshot(), index)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				store, err := a.cartStore(ctx, nil)
				if err != nil {
					return err
				}
				c, err := store.Clear(ctx)
				if err != nil {
					return err
				}
				return renderCart(a, c, nil)
			})
		},
	})

	return cmd
}

// mutateCart applies a growing mutation behind the site gate.
func mutateCart(ctx context.Context, a *app, productID string, fn func(*cart.Store, entity.Product) (cart.Cart, error)) error {
	index, err := catalogIndex(ctx, a)
	if err != nil {
		return err
	}
	p, err := lookupProduct(index, productID)
	if err != nil {
		return err
	}

	gate := a.gate(ctx)
	store, err := a.cartStore(ctx, gate.CheckOrdering)
	if err != nil {
		return err
	}
	c, err := fn(store, p)
	if err != nil {
		return err
	}
	return renderCart(a, c, index)
}

func renderCart(a *app, c cart.Cart, index map[string]entity.Product) error {
	view := cartView{Session: a.cfg.Storage.Session, Lines: []cartLineView{}, Units: c.TotalUnits()}
	for _, l := range c.Lines() {
		p := index[l.ProductID]
		view.Lines = append(view.Lines, cartLineView{ProductID: l.ProductID, Name: p.Name, Quantity: l.Quantity, Unit: p.Unit})
	}

	return a.out.Success(view, func(w io.Writer) {
		if len(view.Lines) == 0 {
			fprintf(w, "Cart %q is empty\n", view.Session)
			return
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fprintf(tw, "PRODUCT\tNAME\tQUANTITY\n")
		for _, l := range view.Lines {
			fprintf(tw, "%s\t%s\t%d %s\n", l.ProductID, l.Name, l.Quantity, l.Unit)
		}
		_ = tw.Flush()
	})
}
