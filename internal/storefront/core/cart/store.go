package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/quantity"
)

// ErrCartLocked is returned for mutations attempted while a checkout owns the cart.
var ErrCartLocked = errors.New("cart is locked while an order is being submitted")

// Guard is consulted before a mutation that grows the cart. A non-nil error
// rejects the mutation.
type Guard func() error

// Store owns one session's cart. It is safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	cart      Cart
	frozen    bool
	sessionID string
	repo      ports.CartRepository // nil-safe: persistence skipped if nil
	guard     Guard
	logger    *slog.Logger
}

type StoreOption func(*Store)

// WithRepository persists the cart under sessionID after every change.
func WithRepository(repo ports.CartRepository, sessionID string) StoreOption {
	return func(s *Store) {
		s.repo = repo
		s.sessionID = sessionID
	}
}

// WithGuard installs a check run before add/setQuantity.
func WithGuard(g Guard) StoreOption {
	return func(s *Store) {
		s.guard = g
	}
}

func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{cart: Cart{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns a store restored from its repository, if any.
func Open(ctx context.Context, opts ...StoreOption) (*Store, error) {
	s := NewStore(opts...)
	if s.repo == nil {
		return s, nil
	}

	lines, err := s.repo.LoadCart(ctx, s.sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart for session %q: %w", s.sessionID, err)
	}
	s.cart = Reduce(s.cart, Restore(lines))
	return s, nil
}

func (s *Store) Add(ctx context.Context, productID string, delta int, b quantity.Bounds) (Cart, error) {
	if delta > 0 {
		if err := s.checkGuard(); err != nil {
			return nil, err
		}
	}
	return s.dispatch(ctx, Add(productID, delta, b))
}

func (s *Store) SetQuantity(ctx context.Context, productID string, q int, b quantity.Bounds) (Cart, error) {
	if q > 0 {
		if err := s.checkGuard(); err != nil {
			return nil, err
		}
	}
	return s.dispatch(ctx, SetQuantity(productID, q, b))
}

func (s *Store) Remove(ctx context.Context, productID string) (Cart, error) {
	return s.dispatch(ctx, Remove(productID))
}

func (s *Store) Clear(ctx context.Context) (Cart, error) {
	return s.dispatch(ctx, Clear())
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Freeze rejects further mutations until Unfreeze. It reports false when the
// store was already frozen.
func (s *Store) Freeze() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return false
	}
	s.frozen = true
	return true
}

func (s *Store) Unfreeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = false
}

func (s *Store) Frozen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frozen
}

// ClearAfterOrder removes the ordered basis from the cart once an order has
// been accepted; lines added since the basis was taken stay. It bypasses the
// freeze held by the checkout that owns the cart.
func (s *Store) ClearAfterOrder(ctx context.Context, basis Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = Subtract(s.cart, basis)
	s.frozen = false
	s.persist(ctx, s.cart)
}

func (s *Store) dispatch(ctx context.Context, a Action) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return nil, ErrCartLocked
	}
	s.cart = Reduce(s.cart, a)
	s.persist(ctx, s.cart)
	return s.cart.Clone(), nil
}

func (s *Store) checkGuard() error {
	if s.guard == nil {
		return nil
	}
	return s.guard()
}

// persist saves the cart while s.mu is held so saves land in mutation order.
// A failed save is logged, not returned: the in-memory cart stays
// authoritative for the session.
func (s *Store) persist(ctx context.Context, c Cart) {
	if s.repo == nil {
		return
	}
	if err := s.repo.SaveCart(ctx, s.sessionID, c); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist cart", "session_id", s.sessionID, "error", err)
	}
}
