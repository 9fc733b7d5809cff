// Package placement places orders on the dev backend as a sequence of
// compensable steps: claim the idempotency key, reserve stock, create the
// order and record the result for replays.
package placement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jcmexdev/delivery-storefront/internal/backend/inventory"
	"github.com/jcmexdev/delivery-storefront/internal/backend/orders"
	"github.com/jcmexdev/delivery-storefront/internal/pkg/cache"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

// ErrInProgress is returned while another request holding the same
// idempotency key has not finished.
var ErrInProgress = errors.New("an identical order is still being processed")

// ReplayError reports that the idempotency key already produced an order.
type ReplayError struct {
	OrderID string
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("idempotency key already placed order %s", e.OrderID)
}

// ConflictError lists the lines the inventory could not cover.
type ConflictError struct {
	Conflicts []entity.Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%d line(s) exceed available stock", len(e.Conflicts))
}

// Request is an order submission that passed request validation.
type Request struct {
	Lines          []entity.Line
	Customer       entity.Contact
	Notes          string
	IdempotencyKey string
	RequestID      string
}

// Result is the outcome of a successful Place.
type Result struct {
	OrderID  string
	Replayed bool
}

type Service struct {
	inventory *inventory.Inventory
	orders    *orders.Store
	cache     cache.Cache
	ttl       time.Duration
	logger    *slog.Logger
}

func NewService(inv *inventory.Inventory, store *orders.Store, c cache.Cache, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{inventory: inv, orders: store, cache: c, ttl: ttl, logger: logger}
}

// Place reserves stock for every line and creates a PENDING order. A
// repeated idempotency key yields the first order id with Replayed set.
// Stock conflicts are returned as *ConflictError.
func (s *Service) Place(ctx context.Context, req Request) (Result, error) {
	orderID := orders.NewID()

	var cacheKey string
	steps := make([]Step, 0, 4)
	if req.IdempotencyKey != "" {
		cacheKey = s.cache.GenerateKey("idempotency", req.IdempotencyKey)
		steps = append(steps, NewClaimKeyStep(s.cache, cacheKey, s.ttl))
	}

	create := NewCreateOrderStep(s.orders, orders.Order{
		ID:             orderID,
		Items:          req.Lines,
		Customer:       req.Customer,
		Notes:          req.Notes,
		IdempotencyKey: req.IdempotencyKey,
		RequestID:      req.RequestID,
	})
	steps = append(steps, NewReserveStockStep(s.inventory, orderID, req.Lines), create)
	if cacheKey != "" {
		steps = append(steps, NewRecordResultStep(s.cache, cacheKey, orderID, s.ttl))
	}

	err := NewOrchestrator(s.logger, steps...).Start(ctx)

	var replay *ReplayError
	if errors.As(err, &replay) {
		s.logger.InfoContext(ctx, "replaying order for repeated idempotency key", "order_id", replay.OrderID)
		return Result{OrderID: replay.OrderID, Replayed: true}, nil
	}
	if err != nil {
		return Result{}, err
	}

	s.logger.InfoContext(ctx, "order placed", "order_id", orderID, "request_id", req.RequestID, "lines", len(req.Lines))
	return Result{OrderID: create.Order().ID}, nil
}
