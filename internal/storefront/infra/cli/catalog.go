package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/quantity"
)

type productView struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Price    float64 `json:"price"`
	MinOrder int     `json:"minOrder"`
	MaxOrder *int    `json:"maxOrder,omitempty"`
}

func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List orderable products and their quantity limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, runCatalog)
		},
	}
}

func runCatalog(ctx context.Context, a *app) error {
	products, err := a.client.ListProducts(ctx)
	if err != nil {
		return err
	}

	views := make([]productView, len(products))
	for i, p := range products {
		views[i] = productView(p)
	}
	return a.out.Success(views, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fprintf(tw, "ID\tNAME\tPRICE\tUNIT\tLIMITS\n")
		for _, p := range products {
			fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\n", p.ID, p.Name, p.Price, p.Unit, describeBounds(boundsFor(p)))
		}
		_ = tw.Flush()
	})
}

// catalogIndex fetches the catalog keyed by product id.
func catalogIndex(ctx context.Context, a *app) (map[string]entity.Product, error) {
	products, err := a.client.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]entity.Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return index, nil
}

func lookupProduct(index map[string]entity.Product, productID string) (entity.Product, error) {
	p, ok := index[productID]
	if !ok {
		return entity.Product{}, NewExitError(ExitCommandError, fmt.Sprintf("unknown product %q", productID))
	}
	return p, nil
}

// boundsFor treats a missing minimum as one unit.
func boundsFor(p entity.Product) quantity.Bounds {
	return quantity.Bounds{Min: max(p.MinOrder, 1), Max: p.MaxOrder}
}

func describeBounds(b quantity.Bounds) string {
	if b.Max == nil {
		return fmt.Sprintf("%d+", b.Min)
	}
	return fmt.Sprintf("%d-%d", b.Min, *b.Max)
}

func parseQuantity(s string) (int, error) {
	q, err := strconv.Atoi(s)
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("quantity %q is not a whole number", s))
	}
	return q, nil
}
