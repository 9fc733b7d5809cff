// Package reconcile compares a cart against reported stock.
//
// The comparison is pure, so the same code runs against a client-side
// estimate and against the server's authoritative snapshot.
package reconcile

import (
	"sort"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/cart"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

// Describer supplies the display name and unit of a product.
type Describer interface {
	Describe(productID string) (name, unit string)
}

// Result is Ok when Conflicts is empty.
type Result struct {
	Conflicts []entity.Conflict
}

func (r Result) Ok() bool {
	return len(r.Conflicts) == 0
}

// Reconcile returns one conflict per line whose quantity exceeds the
// snapshot. Products missing from the snapshot count as zero available.
// Conflicts are ordered by product id. d may be nil.
func Reconcile(c cart.Cart, snap entity.StockSnapshot, d Describer) Result {
	var conflicts []entity.Conflict
	for _, line := range c.Lines() {
		available := snap.Available(line.ProductID)
		if line.Quantity <= available {
			continue
		}
		name, unit := line.ProductID, ""
		if d != nil {
			if n, u := d.Describe(line.ProductID); n != "" {
				name, unit = n, u
			} else {
				unit = u
			}
		}
		conflicts = append(conflicts, entity.Conflict{
			ProductID:         line.ProductID,
			ProductName:       name,
			RequestedQuantity: line.Quantity,
			AvailableQuantity: max(available, 0),
			Unit:              unit,
		})
	}
	return Result{Conflicts: conflicts}
}

// Reduce clamps every conflicting line to its available quantity and drops
// lines that reach zero. c is not modified.
func Reduce(c cart.Cart, conflicts []entity.Conflict) cart.Cart {
	out := c.Clone()
	for _, cf := range conflicts {
		q, ok := out[cf.ProductID]
		if !ok {
			continue
		}
		if cf.AvailableQuantity <= 0 {
			delete(out, cf.ProductID)
			continue
		}
		if q > cf.AvailableQuantity {
			out[cf.ProductID] = cf.AvailableQuantity
		}
	}
	return out
}

// ConflictDescriber describes products using the names and units carried by
// a server conflict payload.
type ConflictDescriber map[string]entity.Conflict

// DescribeConflicts indexes conflicts by product id.
func DescribeConflicts(conflicts []entity.Conflict) ConflictDescriber {
	d := make(ConflictDescriber, len(conflicts))
	for _, c := range conflicts {
		d[c.ProductID] = c
	}
	return d
}

func (d ConflictDescriber) Describe(productID string) (string, string) {
	c, ok := d[productID]
	if !ok {
		return "", ""
	}
	return c.ProductName, c.Unit
}

// CatalogDescriber describes products from a catalog listing.
type CatalogDescriber map[string]entity.Product

func DescribeCatalog(products []entity.Product) CatalogDescriber {
	d := make(CatalogDescriber, len(products))
	for _, p := range products {
		d[p.ID] = p
	}
	return d
}

func (d CatalogDescriber) Describe(productID string) (string, string) {
	p, ok := d[productID]
	if !ok {
		return "", ""
	}
	return p.Name, p.Unit
}

// SortConflicts orders conflicts by product id for stable display.
func SortConflicts(conflicts []entity.Conflict) {
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].ProductID < conflicts[j].ProductID })
}
