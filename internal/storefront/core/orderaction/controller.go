// Package orderaction runs staff COMPLETE/CANCEL actions with at most one
// action in flight per order.
package orderaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/ports"
)

var (
	ErrActionInFlight = errors.New("orderaction: another action is already in progress for this order")
	ErrNotMounted     = errors.New("orderaction: order is not mounted")
	ErrInvalidAction  = errors.New("orderaction: unknown action")
)

// State is what the order detail view renders.
type State struct {
	InFlight  entity.OrderAction
	LastError *entity.RequestError
}

// Pending reports whether an action is outstanding.
func (s State) Pending() bool {
	return s.InFlight != entity.ActionNone
}

type orderState struct {
	inFlight entity.OrderAction
	lastErr  *entity.RequestError
	cancel   context.CancelFunc
}

// Controller tracks action state for every mounted order.
type Controller struct {
	mu     sync.Mutex
	svc    ports.OrderActionService
	orders map[string]*orderState
	logger *slog.Logger
}

func NewController(svc ports.OrderActionService, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		svc:    svc,
		orders: make(map[string]*orderState),
		logger: logger,
	}
}

// Mount creates IDLE state for orderID. Mounting an already mounted order
// keeps its state.
func (c *Controller) Mount(orderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.orders[orderID]; !ok {
		c.orders[orderID] = &orderState{}
	}
}

// Unmount destroys the order's state and cancels its outstanding action;
// the result of that action is discarded.
func (c *Controller) Unmount(orderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.orders[orderID]
	if !ok {
		return
	}
	if st.cancel != nil {
		st.cancel()
	}
	delete(c.orders, orderID)
}

func (c *Controller) State(orderID string) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.orders[orderID]
	if !ok {
		return State{}, false
	}
	return State{InFlight: st.inFlight, LastError: st.lastErr}, true
}

// Trigger performs action on orderID. It is rejected with ErrActionInFlight,
// not queued, while another action for the same order is outstanding. On
// success the caller should re-fetch the order's authoritative status.
func (c *Controller) Trigger(ctx context.Context, orderID string, action entity.OrderAction) error {
	if !action.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	c.mu.Lock()
	st, ok := c.orders[orderID]
	if !ok {
		c.mu.Unlock()
		return ErrNotMounted
	}
	if st.inFlight != entity.ActionNone {
		c.mu.Unlock()
		return ErrActionInFlight
	}
	actionCtx, cancel := context.WithCancel(ctx)
	st.inFlight = action
	st.lastErr = nil
	st.cancel = cancel
	c.mu.Unlock()

	err := c.svc.ApplyOrderAction(actionCtx, orderID, action)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.orders[orderID]; !ok || current != st {
		c.logger.InfoContext(ctx, "discarding order action result after unmount",
			"order_id", orderID, "action", action)
		return entity.NewRequestError(entity.KindCancelled, "order view closed before the action settled", err)
	}

	st.inFlight = entity.ActionNone
	st.cancel = nil
	if err == nil {
		c.logger.InfoContext(ctx, "order action applied", "order_id", orderID, "action", action)
		return nil
	}

	reqErr := entity.AsRequestError(err)
	if reqErr.Kind != entity.KindCancelled {
		st.lastErr = reqErr
		c.logger.ErrorContext(ctx, "order action failed",
			"order_id", orderID, "action", action, "kind", reqErr.Kind, "error", err)
	}
	return reqErr
}

// DismissError clears the last error shown for orderID.
func (c *Controller) DismissError(orderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.orders[orderID]; ok {
		st.lastErr = nil
	}
}
