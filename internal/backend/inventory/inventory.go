// Package inventory is the dev backend's in-memory catalog and stock ledger.
package inventory

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

var (
	ErrInvalidLine     = errors.New("inventory: line quantity must be positive")
	ErrNoReservation   = errors.New("inventory: no reservation for order")
	ErrDuplicateRecord = errors.New("inventory: order already holds a reservation")
)

// Item seeds one catalog entry with its starting stock.
type Item struct {
	Product entity.Product
	Stock   int
}

// Inventory reserves stock all-or-nothing: either every line of an order
// fits or nothing is taken and one Conflict is returned per short line.
type Inventory struct {
	mu           sync.Mutex
	products     map[string]entity.Product
	stock        map[string]int
	reservations map[string][]entity.Line
	logger       *slog.Logger
}

func New(items []Item, logger *slog.Logger) *Inventory {
	if logger == nil {
		logger = slog.Default()
	}
	inv := &Inventory{
		products:     make(map[string]entity.Product, len(items)),
		stock:        make(map[string]int, len(items)),
		reservations: make(map[string][]entity.Line),
		logger:       logger,
	}
	for _, it := range items {
		inv.products[it.Product.ID] = it.Product
		inv.stock[it.Product.ID] = max(it.Stock, 0)
	}
	return inv
}

func intPtr(v int) *int { return &v }

// DefaultItems is the catalog the dev backend starts with.
func DefaultItems() []Item {
	return []Item{
		{Product: entity.Product{ID: "tortillas", Name: "Corn tortillas", Unit: "kg", Price: 32, MinOrder: 1, MaxOrder: intPtr(20)}, Stock: 15},
		{Product: entity.Product{ID: "salsa-verde", Name: "Salsa verde", Unit: "jar", Price: 55, MinOrder: 1}, Stock: 10},
		{Product: entity.Product{ID: "carnitas", Name: "Carnitas", Unit: "kg", Price: 240, MinOrder: 2, MaxOrder: intPtr(10)}, Stock: 6},
		{Product: entity.Product{ID: "tamales", Name: "Tamales", Unit: "dozen", Price: 180, MinOrder: 1, MaxOrder: intPtr(5)}, Stock: 0},
	}
}

// Products returns the catalog sorted by id.
func (i *Inventory) Products() []entity.Product {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := make([]entity.Product, 0, len(i.products))
	for _, p := range i.products {
		out = append(out, p)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

func (i *Inventory) Available(productID string) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.stock[productID]
}

// Reserve takes stock for every line of orderID. Quantities for the same
// product are summed. Unknown products conflict with zero available.
func (i *Inventory) Reserve(orderID string, lines []entity.Line) ([]entity.Conflict, error) {
	wanted := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidLine, l.ProductID)
		}
		wanted[l.ProductID] += l.Quantity
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if _, exists := i.reservations[orderID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRecord, orderID)
	}

	var conflicts []entity.Conflict
	for productID, qty := range wanted {
		available := i.stock[productID]
		if qty <= available {
			continue
		}
		p, known := i.products[productID]
		name := p.Name
		if !known {
			name = productID
		}
		conflicts = append(conflicts, entity.Conflict{
			ProductID:         productID,
			ProductName:       name,
			RequestedQuantity: qty,
			AvailableQuantity: available,
			Unit:              p.Unit,
		})
	}
	if len(conflicts) > 0 {
		sort.Slice(conflicts, func(a, b int) bool { return conflicts[a].ProductID < conflicts[b].ProductID })
		i.logger.Info("reservation rejected", "order_id", orderID, "conflicts", len(conflicts))
		return conflicts, nil
	}

	reserved := make([]entity.Line, 0, len(wanted))
	for productID, qty := range wanted {
		i.stock[productID] -= qty
		reserved = append(reserved, entity.Line{ProductID: productID, Quantity: qty})
	}
	i.reservations[orderID] = reserved
	i.logger.Info("stock reserved", "order_id", orderID, "lines", len(reserved))
	return nil, nil
}

// Release returns the stock held for orderID.
func (i *Inventory) Release(orderID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	lines, exists := i.reservations[orderID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNoReservation, orderID)
	}
	for _, l := range lines {
		i.stock[l.ProductID] += l.Quantity
	}
	delete(i.reservations, orderID)
	i.logger.Info("stock released", "order_id", orderID)
	return nil
}

// Settle drops the reservation record once the order is fulfilled; the
// stock stays consumed.
func (i *Inventory) Settle(orderID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.reservations, orderID)
}
