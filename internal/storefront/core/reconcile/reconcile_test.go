package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/cart"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

func TestReconcile_Ok(t *testing.T) {
	res := Reconcile(cart.Cart{"A": 2, "B": 5}, entity.StockSnapshot{"A": 2, "B": 9}, nil)
	assert.True(t, res.Ok())
	assert.Empty(t, res.Conflicts)
}

func TestReconcile_MissingProductIsZero(t *testing.T) {
	res := Reconcile(cart.Cart{"A": 1}, entity.StockSnapshot{}, nil)
	require.False(t, res.Ok())
	assert.Equal(t, []entity.Conflict{{
		ProductID:         "A",
		ProductName:       "A",
		RequestedQuantity: 1,
		AvailableQuantity: 0,
	}}, res.Conflicts)
}

func TestReconcile_OnlyOverRequestedLines(t *testing.T) {
	c := cart.Cart{"A": 5, "B": 1, "C": 4, "D": 2}
	snap := entity.StockSnapshot{"A": 3, "B": 1, "C": 10}
	catalog := DescribeCatalog([]entity.Product{
		{ID: "A", Name: "Apples", Unit: "kg"},
		{ID: "D", Name: "Dates", Unit: "box"},
	})

	res := Reconcile(c, snap, catalog)

	assert.Equal(t, []entity.Conflict{
		{ProductID: "A", ProductName: "Apples", RequestedQuantity: 5, AvailableQuantity: 3, Unit: "kg"},
		{ProductID: "D", ProductName: "Dates", RequestedQuantity: 2, AvailableQuantity: 0, Unit: "box"},
	}, res.Conflicts)
}

func TestReconcile_Completeness(t *testing.T) {
	carts := []cart.Cart{{}, {"A": 1}, {"A": 3, "B": 2}, {"A": 7, "B": 7, "C": 7}}
	snaps := []entity.StockSnapshot{nil, {"A": 1}, {"A": 3, "B": 1}, {"A": 10, "B": 10, "C": 0}}

	for _, c := range carts {
		for _, s := range snaps {
			res := Reconcile(c, s, nil)

			over := map[string]bool{}
			for id, q := range c {
				if q > s.Available(id) {
					over[id] = true
				}
			}
			assert.Equal(t, len(over) == 0, res.Ok())
			require.Len(t, res.Conflicts, len(over))
			for _, cf := range res.Conflicts {
				assert.True(t, over[cf.ProductID])
				assert.Equal(t, c[cf.ProductID], cf.RequestedQuantity)
				assert.Equal(t, s.Available(cf.ProductID), cf.AvailableQuantity)
			}
		}
	}
}

func TestReduce(t *testing.T) {
	c := cart.Cart{"A": 5, "B": 2, "C": 1}
	conflicts := []entity.Conflict{
		{ProductID: "A", RequestedQuantity: 5, AvailableQuantity: 3},
		{ProductID: "B", RequestedQuantity: 2, AvailableQuantity: 0},
		{ProductID: "Z", RequestedQuantity: 1, AvailableQuantity: 0},
	}

	reduced := Reduce(c, conflicts)

	assert.Equal(t, cart.Cart{"A": 3, "C": 1}, reduced)
	assert.Equal(t, cart.Cart{"A": 5, "B": 2, "C": 1}, c, "input untouched")
	assert.True(t, Reconcile(reduced, entity.StockSnapshot{"A": 3, "C": 1}, nil).Ok())
}

func TestConflictDescriber(t *testing.T) {
	d := DescribeConflicts([]entity.Conflict{{ProductID: "A", ProductName: "Apples", Unit: "kg"}})
	name, unit := d.Describe("A")
	assert.Equal(t, "Apples", name)
	assert.Equal(t, "kg", unit)

	res := Reconcile(cart.Cart{"B": 1}, nil, d)
	assert.Equal(t, "B", res.Conflicts[0].ProductName, "unknown products fall back to their id")
}
