package ports

import (
	"context"
	"time"
)

// CartRepository persists a session's cart so it survives a restart. The
// cart store loads once at start and saves after every change.
type CartRepository interface {
	LoadCart(ctx context.Context, sessionID string) (map[string]int, error)
	SaveCart(ctx context.Context, sessionID string, lines map[string]int) error
}

// Transition is one state change of a checkout attempt.
type Transition struct {
	CheckoutID string
	Attempt    uint64
	From       string
	To         string
	Detail     string
	TraceID    string
	SpanID     string
	At         time.Time
}

// TransitionLog is an append-only audit trail of checkout transitions.
type TransitionLog interface {
	Record(ctx context.Context, t Transition) error
}

// PendingSubmission is an order request that was sent without a definitive
// answer. Items are what was sent; Basis is the cart they were built from.
type PendingSubmission struct {
	IdempotencyKey string
	Items          map[string]int
	Basis          map[string]int
	Reduced        bool
}

// PendingSubmissionRepository keeps a session's unanswered submission so it
// is resent with the same idempotency key after a restart. LoadPending
// returns nil when there is none.
type PendingSubmissionRepository interface {
	LoadPending(ctx context.Context, sessionID string) (*PendingSubmission, error)
	SavePending(ctx context.Context, sessionID string, p PendingSubmission) error
	ClearPending(ctx context.Context, sessionID string) error
}
