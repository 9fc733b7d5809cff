package orders

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

var (
	ErrNotFound          = errors.New("orders: order not found")
	ErrInvalidTransition = errors.New("orders: invalid status transition")
)

// Store keeps orders in memory. Stored values are copied on the way in and
// out so callers cannot mutate them.
type Store struct {
	mu     sync.RWMutex
	orders map[string]Order
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		orders: make(map[string]Order),
		now:    time.Now,
	}
}

// NewID allocates an order id before the order exists so stock can be
// reserved under it.
func NewID() string {
	return "ord_" + uuid.NewString()
}

// Create stores a PENDING order.
func (s *Store) Create(o Order) Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		o.ID = NewID()
	}
	now := s.now().UTC()
	o.Status = StatusPending
	o.CreatedAt = now
	o.UpdatedAt = now
	s.orders[o.ID] = o.clone()
	return o.clone()
}

func (s *Store) Get(id string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return Order{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return o.clone(), nil
}

// Apply moves a pending order to COMPLETED or CANCELLED and returns the
// order as it was before and after.
func (s *Store) Apply(id string, action entity.OrderAction) (before, after Order, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return Order{}, Order{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next, ok := o.Status.next(action)
	if !ok {
		return Order{}, Order{}, fmt.Errorf("%w: cannot %s an order that is %s", ErrInvalidTransition, action, o.Status)
	}

	before = o.clone()
	o.Status = next
	o.UpdatedAt = s.now().UTC()
	s.orders[id] = o
	return before, o.clone(), nil
}
