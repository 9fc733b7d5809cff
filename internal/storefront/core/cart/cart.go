// Package cart holds the customer's pending order lines.
//
// Reduce is a pure function over (Cart, Action); Store layers ownership,
// locking and persistence hooks on top of it.
package cart

import (
	"sort"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/quantity"
)

// Cart maps a product id to its requested quantity. Quantities are always
// positive; a product with no line is simply absent.
type Cart map[string]int

// Clone returns an independent copy.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for id, q := range c {
		out[id] = q
	}
	return out
}

// Lines returns the cart as lines ordered by product id.
func (c Cart) Lines() []entity.Line {
	lines := make([]entity.Line, 0, len(c))
	for id, q := range c {
		lines = append(lines, entity.Line{ProductID: id, Quantity: q})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines
}

func (c Cart) Empty() bool {
	return len(c) == 0
}

// TotalUnits is the sum of all quantities.
func (c Cart) TotalUnits() int {
	total := 0
	for _, q := range c {
		total += q
	}
	return total
}

// ActionKind identifies a cart mutation.
type ActionKind int

const (
	ActionAdd ActionKind = iota
	ActionSetQuantity
	ActionRemove
	ActionClear
	ActionRestore
)

// Action is one replayable cart mutation.
type Action struct {
	Kind      ActionKind
	ProductID string
	Quantity  int
	Bounds    quantity.Bounds
	Snapshot  Cart
}

func Add(productID string, delta int, b quantity.Bounds) Action {
	return Action{Kind: ActionAdd, ProductID: productID, Quantity: delta, Bounds: b}
}

func SetQuantity(productID string, q int, b quantity.Bounds) Action {
	return Action{Kind: ActionSetQuantity, ProductID: productID, Quantity: q, Bounds: b}
}

func Remove(productID string) Action {
	return Action{Kind: ActionRemove, ProductID: productID}
}

func Clear() Action {
	return Action{Kind: ActionClear}
}

// Restore replaces the cart with a persisted snapshot. Non-positive lines in
// the snapshot are dropped.
func Restore(snapshot Cart) Action {
	return Action{Kind: ActionRestore, Snapshot: snapshot}
}

// Reduce applies a to c and returns the resulting cart. c is never modified.
func Reduce(c Cart, a Action) Cart {
	next := c.Clone()

	switch a.Kind {
	case ActionAdd:
		setLine(next, a.ProductID, next[a.ProductID]+a.Quantity, a.Bounds)
	case ActionSetQuantity:
		setLine(next, a.ProductID, a.Quantity, a.Bounds)
	case ActionRemove:
		delete(next, a.ProductID)
	case ActionClear:
		return Cart{}
	case ActionRestore:
		next = Cart{}
		for id, q := range a.Snapshot {
			if id != "" && q > 0 {
				next[id] = q
			}
		}
	}

	return next
}

// Subtract returns c without the quantities in basis. Lines that reach zero
// are dropped.
func Subtract(c, basis Cart) Cart {
	out := Cart{}
	for id, q := range c {
		if rest := q - basis[id]; rest > 0 {
			out[id] = rest
		}
	}
	return out
}

// Replay folds actions over an empty cart.
func Replay(actions ...Action) Cart {
	c := Cart{}
	for _, a := range actions {
		c = Reduce(c, a)
	}
	return c
}

// setLine writes q through the bounds; a non-positive request drops the line.
func setLine(c Cart, productID string, q int, b quantity.Bounds) {
	if productID == "" {
		return
	}
	if q <= 0 {
		delete(c, productID)
		return
	}
	clamped := b.Clamp(q)
	if clamped <= 0 {
		delete(c, productID)
		return
	}
	c[productID] = clamped
}
