// Package checkout drives a cart from DRAFT to a terminal order state.
//
// A submission that comes back with a stock conflict suspends in CONFLICT
// until the customer either accepts the reduced quantities or aborts.
// Accepting resubmits exactly once; a second conflict aborts, so the flow
// terminates even while stock keeps shrinking.
//
// A request that got no definitive answer stays pending. The next Submit
// resends exactly that request under the same idempotency key, whatever the
// cart holds by then, so an order that did land is replayed rather than
// placed twice.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/delivery-storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/cart"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/reconcile"
)

var (
	ErrBusy       = errors.New("checkout: an order submission is already in progress")
	ErrNoConflict = errors.New("checkout: no stock conflict is awaiting a decision")
	ErrEmptyCart  = errors.New("checkout: cart is empty")
	ErrClosed     = errors.New("checkout: closed")
)

// Details are the customer fields sent with every submission of an attempt.
type Details struct {
	Customer entity.Contact
	Notes    string
}

// Outcome is a read-only view of the checkout after an operation.
type Outcome struct {
	State     State
	OrderID   string
	Items     cart.Cart
	Conflicts []entity.Conflict
	LastError *entity.RequestError
}

// Checkout owns the submission of one session's cart.
type Checkout struct {
	mu     sync.Mutex
	id     string
	store  *cart.Store
	gate   OrderingGate
	orders ports.OrderSubmitter
	log    ports.TransitionLog // nil-safe: transitions not persisted if nil
	logger *slog.Logger
	newKey func() string

	pendingRepo ports.PendingSubmissionRepository
	sessionID   string

	state     State
	attempt   uint64
	cancel    context.CancelFunc
	closed    bool
	details   Details
	items     cart.Cart
	basis     cart.Cart
	conflicts []entity.Conflict
	lastErr   *entity.RequestError
	orderID   string
	pending   *ports.PendingSubmission
}

// OrderingGate is satisfied by *site.Gate.
type OrderingGate interface {
	CheckOrdering() error
}

type Option func(*Checkout)

func WithTransitionLog(l ports.TransitionLog) Option {
	return func(c *Checkout) {
		c.log = l
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Checkout) {
		c.logger = l
	}
}

// WithKeyGenerator overrides how idempotency keys are minted.
func WithKeyGenerator(f func() string) Option {
	return func(c *Checkout) {
		c.newKey = f
	}
}

// WithPendingStore persists the unanswered submission of sessionID.
func WithPendingStore(repo ports.PendingSubmissionRepository, sessionID string) Option {
	return func(c *Checkout) {
		c.pendingRepo = repo
		c.sessionID = sessionID
	}
}

// New returns a checkout in DRAFT over store.
func New(store *cart.Store, gate OrderingGate, orders ports.OrderSubmitter, opts ...Option) *Checkout {
	c := &Checkout{
		id:     uuid.NewString(),
		store:  store,
		gate:   gate,
		orders: orders,
		logger: slog.Default(),
		newKey: uuid.NewString,
		state:  StateDraft,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open is New followed by loading the session's pending submission, if a
// pending store is configured.
func Open(ctx context.Context, store *cart.Store, gate OrderingGate, orders ports.OrderSubmitter, opts ...Option) (*Checkout, error) {
	c := New(store, gate, orders, opts...)
	if c.pendingRepo == nil {
		return c, nil
	}
	p, err := c.pendingRepo.LoadPending(ctx, c.sessionID)
	if err != nil {
		return nil, fmt.Errorf("checkout: load pending submission: %w", err)
	}
	if p != nil && len(p.Items) > 0 {
		c.pending = p
	}
	return c, nil
}

// HasPending reports whether an earlier request is still unanswered.
func (c *Checkout) HasPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// ID identifies this checkout in the transition log.
func (c *Checkout) ID() string {
	return c.id
}

func (c *Checkout) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a request is outstanding.
func (c *Checkout) Busy() bool {
	return c.State().InFlight()
}

func (c *Checkout) Outcome() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcomeLocked()
}

// Submit sends the current cart, or the pending request when there is one.
// The cart is locked until the attempt settles or, after a conflict, until
// the customer decides.
func (c *Checkout) Submit(ctx context.Context, details Details) (Outcome, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Outcome{}, ErrClosed
	}
	if !c.state.Ready() {
		defer c.mu.Unlock()
		return c.outcomeLocked(), ErrBusy
	}
	if err := c.gate.CheckOrdering(); err != nil {
		defer c.mu.Unlock()
		return c.outcomeLocked(), err
	}
	if !c.store.Freeze() {
		defer c.mu.Unlock()
		return c.outcomeLocked(), ErrBusy
	}

	var (
		items, basis cart.Cart
		key          string
		reduced      bool
		detail       string
	)
	if p := c.pending; p != nil {
		items, basis = cart.Cart(p.Items).Clone(), cart.Cart(p.Basis).Clone()
		key, reduced = p.IdempotencyKey, p.Reduced
		detail = fmt.Sprintf("resending %d unconfirmed line(s)", len(items))
		c.logger.InfoContext(ctx, "resending unconfirmed order submission", "checkout_id", c.id)
	} else {
		items = c.store.Snapshot()
		if items.Empty() {
			c.store.Unfreeze()
			defer c.mu.Unlock()
			return c.outcomeLocked(), ErrEmptyCart
		}
		basis, key = items.Clone(), c.newKey()
		detail = fmt.Sprintf("submitting %d line(s)", len(items))
	}

	c.details = details
	c.items = items
	c.basis = basis
	c.conflicts = nil
	c.lastErr = nil
	c.orderID = ""
	c.markPendingLocked(ctx, key, items, reduced)
	req := c.requestLocked(items, key)
	token, attemptCtx := c.beginLocked(ctx, StateSubmitting, detail)
	c.mu.Unlock()

	receipt, err := c.orders.SubmitOrder(attemptCtx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if stale := c.settleLocked(ctx, token, err); stale != nil {
		return c.outcomeLocked(), stale
	}

	switch kind := entity.KindOf(err); kind {
	case entity.KindNone:
		to := StateConfirmed
		if reduced {
			to = StateAcceptedReduced
		}
		c.confirmLocked(ctx, to, receipt)
		return c.outcomeLocked(), nil
	case entity.KindStockConflict:
		conflicts := c.conflictsFor(items, err)
		if len(conflicts) == 0 {
			c.failLocked(ctx, entity.NewRequestError(entity.KindServerError, "server reported a stock conflict without details", err))
			return c.outcomeLocked(), c.lastErr
		}
		c.clearPendingLocked(ctx)
		c.conflicts = conflicts
		c.transitionLocked(ctx, StateConflict, fmt.Sprintf("%d conflicting line(s)", len(conflicts)))
		return c.outcomeLocked(), nil
	default:
		c.failLocked(ctx, err)
		if kind == entity.KindCancelled {
			return c.outcomeLocked(), err
		}
		return c.outcomeLocked(), c.lastErr
	}
}

// Resolve answers a stock conflict. Declining aborts with the cart untouched;
// accepting resubmits the reduced cart once.
func (c *Checkout) Resolve(ctx context.Context, accept bool) (Outcome, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Outcome{}, ErrClosed
	}
	if c.state != StateConflict {
		defer c.mu.Unlock()
		return c.outcomeLocked(), ErrNoConflict
	}
	if !accept {
		defer c.mu.Unlock()
		c.abortLocked(ctx, "customer declined the reduced quantities")
		return c.outcomeLocked(), nil
	}

	reduced := reconcile.Reduce(c.items, c.conflicts)
	if reduced.Empty() {
		defer c.mu.Unlock()
		c.abortLocked(ctx, "nothing left to order after reduction")
		return c.outcomeLocked(), nil
	}

	c.items = reduced
	key := c.newKey()
	c.markPendingLocked(ctx, key, reduced, true)
	req := c.requestLocked(reduced, key)
	token, attemptCtx := c.beginLocked(ctx, StateResolving, fmt.Sprintf("resubmitting %d reduced line(s)", len(reduced)))
	c.mu.Unlock()

	receipt, err := c.orders.SubmitOrder(attemptCtx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if stale := c.settleLocked(ctx, token, err); stale != nil {
		return c.outcomeLocked(), stale
	}

	switch kind := entity.KindOf(err); kind {
	case entity.KindNone:
		c.confirmLocked(ctx, StateAcceptedReduced, receipt)
		return c.outcomeLocked(), nil
	case entity.KindStockConflict:
		c.conflicts = c.conflictsFor(reduced, err)
		c.clearPendingLocked(ctx)
		c.abortLocked(ctx, "stock changed again during resubmission")
		return c.outcomeLocked(), nil
	default:
		c.failLocked(ctx, err)
		if kind == entity.KindCancelled {
			return c.outcomeLocked(), err
		}
		return c.outcomeLocked(), c.lastErr
	}
}

// Close tears the checkout down. An outstanding request is cancelled and
// its response, if it still arrives, is discarded.
func (c *Checkout) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.attempt++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if !c.state.Ready() {
		c.store.Unfreeze()
		c.transitionLocked(context.Background(), StateDraft, "checkout closed")
	}
}

// beginLocked starts a new attempt. Only the response carrying the returned
// token may change state.
func (c *Checkout) beginLocked(ctx context.Context, to State, detail string) (uint64, context.Context) {
	c.attempt++
	attemptCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.transitionLocked(ctx, to, detail)
	return c.attempt, attemptCtx
}

// settleLocked releases the attempt's context and returns a Cancelled error
// when the response belongs to a superseded attempt.
func (c *Checkout) settleLocked(ctx context.Context, token uint64, cause error) error {
	if c.closed || token != c.attempt {
		c.logger.InfoContext(ctx, "discarding stale checkout response",
			"checkout_id", c.id, "attempt", token, "current_attempt", c.attempt)
		return entity.NewRequestError(entity.KindCancelled, "response for a superseded attempt was discarded", cause)
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return nil
}

func (c *Checkout) confirmLocked(ctx context.Context, to State, receipt entity.OrderReceipt) {
	c.orderID = receipt.OrderID
	c.clearPendingLocked(ctx)
	c.store.ClearAfterOrder(context.WithoutCancel(ctx), c.basis)
	c.transitionLocked(ctx, to, "order "+receipt.OrderID)
}

func (c *Checkout) abortLocked(ctx context.Context, detail string) {
	c.store.Unfreeze()
	c.transitionLocked(ctx, StateAborted, detail)
}

// failLocked returns the cart to DRAFT after a non-conflict failure.
// Cancellations are not surfaced to the customer.
func (c *Checkout) failLocked(ctx context.Context, err error) {
	c.store.Unfreeze()
	reqErr := entity.AsRequestError(err)
	if reqErr.Kind != entity.KindCancelled {
		c.lastErr = reqErr
		c.logger.ErrorContext(ctx, "order submission failed",
			"checkout_id", c.id, "kind", reqErr.Kind, "error", err)
	}
	if !mayHaveLanded(reqErr) {
		c.clearPendingLocked(ctx)
	}
	c.transitionLocked(ctx, StateDraft, string(reqErr.Kind))
}

// mayHaveLanded reports whether the server could have placed the order
// despite err: the request was lost in transit or abandoned, or the server
// is still processing the same key.
func mayHaveLanded(err *entity.RequestError) bool {
	switch err.Kind {
	case entity.KindNetworkError, entity.KindCancelled:
		return true
	case entity.KindServerError:
		return err.StatusCode == http.StatusConflict
	default:
		return false
	}
}

// markPendingLocked records a request before it is sent.
func (c *Checkout) markPendingLocked(ctx context.Context, key string, items cart.Cart, reduced bool) {
	c.pending = &ports.PendingSubmission{
		IdempotencyKey: key,
		Items:          items.Clone(),
		Basis:          c.basis.Clone(),
		Reduced:        reduced,
	}
	if c.pendingRepo == nil {
		return
	}
	if err := c.pendingRepo.SavePending(context.WithoutCancel(ctx), c.sessionID, *c.pending); err != nil {
		c.logger.ErrorContext(ctx, "failed to persist pending submission", "checkout_id", c.id, "error", err)
	}
}

// clearPendingLocked forgets the pending request once the server answered
// it definitively.
func (c *Checkout) clearPendingLocked(ctx context.Context) {
	if c.pending == nil {
		return
	}
	c.pending = nil
	if c.pendingRepo == nil {
		return
	}
	if err := c.pendingRepo.ClearPending(context.WithoutCancel(ctx), c.sessionID); err != nil {
		c.logger.ErrorContext(ctx, "failed to clear pending submission", "checkout_id", c.id, "error", err)
	}
}

// conflictsFor runs the reconciler against the authoritative snapshot in
// the conflict response. The response only lists short lines, so lines it
// omits are taken as available in full. If that yields nothing, the
// server's own list is used as-is.
func (c *Checkout) conflictsFor(items cart.Cart, err error) []entity.Conflict {
	reqErr := entity.AsRequestError(err)
	snap := make(entity.StockSnapshot, len(items))
	for id, q := range items {
		snap[id] = q
	}
	maps.Copy(snap, entity.SnapshotFromConflicts(reqErr.Conflicts))
	res := reconcile.Reconcile(items, snap, reconcile.DescribeConflicts(reqErr.Conflicts))
	if !res.Ok() {
		return res.Conflicts
	}
	out := append([]entity.Conflict(nil), reqErr.Conflicts...)
	reconcile.SortConflicts(out)
	return out
}

func (c *Checkout) requestLocked(items cart.Cart, key string) entity.OrderRequest {
	return entity.OrderRequest{
		Items:          items.Lines(),
		Customer:       c.details.Customer,
		Notes:          c.details.Notes,
		IdempotencyKey: key,
	}
}

func (c *Checkout) transitionLocked(ctx context.Context, to State, detail string) {
	from := c.state
	c.state = to
	c.logger.InfoContext(ctx, "checkout transition",
		"checkout_id", c.id, "attempt", c.attempt, "from", from, "to", to, "detail", detail)

	if c.log == nil {
		return
	}
	ti := telemetry.ExtractTraceInfo(ctx)
	err := c.log.Record(context.WithoutCancel(ctx), ports.Transition{
		CheckoutID: c.id,
		Attempt:    c.attempt,
		From:       string(from),
		To:         string(to),
		Detail:     detail,
		TraceID:    ti.TraceID,
		SpanID:     ti.SpanID,
		At:         time.Now().UTC(),
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to record checkout transition", "checkout_id", c.id, "error", err)
	}
}

func (c *Checkout) outcomeLocked() Outcome {
	return Outcome{
		State:     c.state,
		OrderID:   c.orderID,
		Items:     c.items.Clone(),
		Conflicts: append([]entity.Conflict(nil), c.conflicts...),
		LastError: c.lastErr,
	}
}
