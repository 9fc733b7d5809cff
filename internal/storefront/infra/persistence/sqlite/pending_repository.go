package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/ports"
)

var _ ports.PendingSubmissionRepository = (*CartRepository)(nil)

// LoadPending returns nil when the session has no unanswered submission.
func (r *CartRepository) LoadPending(ctx context.Context, sessionID string) (*ports.PendingSubmission, error) {
	const q = `SELECT idempotency_key, items, basis, reduced FROM pending_submissions WHERE session_id = ?`

	var (
		p            ports.PendingSubmission
		items, basis string
	)
	err := r.db.QueryRowContext(ctx, q, sessionID).Scan(&p.IdempotencyKey, &items, &basis, &p.Reduced)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load pending submission %q: %w", sessionID, err)
	}
	if err := json.Unmarshal([]byte(items), &p.Items); err != nil {
		return nil, fmt.Errorf("sqlite: decode pending items: %w", err)
	}
	if err := json.Unmarshal([]byte(basis), &p.Basis); err != nil {
		return nil, fmt.Errorf("sqlite: decode pending basis: %w", err)
	}
	return &p, nil
}

// SavePending replaces the session's pending submission.
func (r *CartRepository) SavePending(ctx context.Context, sessionID string, p ports.PendingSubmission) error {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return fmt.Errorf("sqlite: encode pending items: %w", err)
	}
	basis, err := json.Marshal(p.Basis)
	if err != nil {
		return fmt.Errorf("sqlite: encode pending basis: %w", err)
	}

	const q = `
INSERT INTO pending_submissions (session_id, idempotency_key, items, basis, reduced, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (session_id) DO UPDATE SET
    idempotency_key = excluded.idempotency_key,
    items           = excluded.items,
    basis           = excluded.basis,
    reduced         = excluded.reduced,
    updated_at      = excluded.updated_at`

	_, err = r.db.ExecContext(ctx, q, sessionID, p.IdempotencyKey, string(items), string(basis), p.Reduced, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("sqlite: save pending submission %q: %w", sessionID, err)
	}
	return nil
}

func (r *CartRepository) ClearPending(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_submissions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("sqlite: clear pending submission %q: %w", sessionID, err)
	}
	return nil
}
