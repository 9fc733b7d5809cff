package placement

import (
	"context"
	"fmt"
	"time"

	"github.com/jcmexdev/delivery-storefront/internal/backend/inventory"
	"github.com/jcmexdev/delivery-storefront/internal/backend/orders"
	"github.com/jcmexdev/delivery-storefront/internal/pkg/cache"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

// pendingMarker holds an idempotency key while its first request runs.
const pendingMarker = "pending"

// --- ClaimKeyStep ---

// ClaimKeyStep takes ownership of an idempotency key. When the key is
// already held it fails with a *ReplayError or ErrInProgress.
type ClaimKeyStep struct {
	cache cache.Cache
	key   string
	ttl   time.Duration
}

func NewClaimKeyStep(c cache.Cache, key string, ttl time.Duration) *ClaimKeyStep {
	return &ClaimKeyStep{cache: c, key: key, ttl: ttl}
}

func (s *ClaimKeyStep) Name() string { return "claim_idempotency_key" }

func (s *ClaimKeyStep) Execute(ctx context.Context) error {
	claimed, err := s.cache.SetNX(ctx, s.key, pendingMarker, s.ttl)
	if err != nil {
		return fmt.Errorf("claim idempotency key: %w", err)
	}
	if claimed {
		return nil
	}
	stored, err := s.cache.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("read idempotency key: %w", err)
	}
	if stored == "" || stored == pendingMarker {
		return ErrInProgress
	}
	return &ReplayError{OrderID: stored}
}

func (s *ClaimKeyStep) Compensate(ctx context.Context) error {
	return s.cache.Delete(ctx, s.key)
}

// --- ReserveStockStep ---

type ReserveStockStep struct {
	inventory *inventory.Inventory
	orderID   string
	lines     []entity.Line
}

func NewReserveStockStep(inv *inventory.Inventory, orderID string, lines []entity.Line) *ReserveStockStep {
	return &ReserveStockStep{inventory: inv, orderID: orderID, lines: lines}
}

func (s *ReserveStockStep) Name() string { return "reserve_stock" }

func (s *ReserveStockStep) Execute(ctx context.Context) error {
	conflicts, err := s.inventory.Reserve(s.orderID, s.lines)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

func (s *ReserveStockStep) Compensate(ctx context.Context) error {
	return s.inventory.Release(s.orderID)
}

// --- CreateOrderStep ---

type CreateOrderStep struct {
	orders *orders.Store
	order  orders.Order

	created orders.Order
}

func NewCreateOrderStep(store *orders.Store, order orders.Order) *CreateOrderStep {
	return &CreateOrderStep{orders: store, order: order}
}

func (s *CreateOrderStep) Name() string { return "create_order" }

func (s *CreateOrderStep) Execute(ctx context.Context) error {
	s.created = s.orders.Create(s.order)
	return nil
}

// Compensate cancels the order so its id is never reused.
func (s *CreateOrderStep) Compensate(ctx context.Context) error {
	if s.created.ID == "" {
		return nil
	}
	_, _, err := s.orders.Apply(s.created.ID, entity.ActionCancel)
	return err
}

// Order returns the order placed by Execute.
func (s *CreateOrderStep) Order() orders.Order { return s.created }

// --- RecordResultStep ---

// RecordResultStep stores the order id under the claimed key so repeats of
// the request replay it.
type RecordResultStep struct {
	cache   cache.Cache
	key     string
	orderID string
	ttl     time.Duration
}

func NewRecordResultStep(c cache.Cache, key, orderID string, ttl time.Duration) *RecordResultStep {
	return &RecordResultStep{cache: c, key: key, orderID: orderID, ttl: ttl}
}

func (s *RecordResultStep) Name() string { return "record_idempotency_result" }

func (s *RecordResultStep) Execute(ctx context.Context) error {
	if err := s.cache.Set(ctx, s.key, s.orderID, s.ttl); err != nil {
		return fmt.Errorf("store idempotency result: %w", err)
	}
	return nil
}

func (s *RecordResultStep) Compensate(ctx context.Context) error { return nil }
