package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/ports"
)

var _ ports.TransitionLog = (*TransitionLog)(nil)

// TransitionLog is the SQLite implementation of ports.TransitionLog.
type TransitionLog struct {
	db *sql.DB
}

// Record appends t. It is safe to call concurrently.
func (l *TransitionLog) Record(ctx context.Context, t ports.Transition) error {
	const q = `
		INSERT INTO checkout_transitions
			(checkout_id, attempt, from_state, to_state, detail, trace_id, span_id, recorded_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := l.db.ExecContext(ctx, q,
		t.CheckoutID,
		int64(t.Attempt),
		t.From,
		t.To,
		t.Detail,
		t.TraceID,
		t.SpanID,
		formatTime(t.At),
	)
	if err != nil {
		return fmt.Errorf("sqlite: record transition for %q: %w", t.CheckoutID, err)
	}
	return nil
}

// History returns every transition of a checkout in the order recorded.
func (l *TransitionLog) History(ctx context.Context, checkoutID string) ([]ports.Transition, error) {
	const q = `
		SELECT checkout_id, attempt, from_state, to_state, detail, trace_id, span_id, recorded_at
		FROM   checkout_transitions
		WHERE  checkout_id = ?
		ORDER  BY id`

	rows, err := l.db.QueryContext(ctx, q, checkoutID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", checkoutID, err)
	}
	defer rows.Close()

	var out []ports.Transition
	for rows.Next() {
		var t ports.Transition
		var attempt int64
		var recordedAt string
		if err := rows.Scan(&t.CheckoutID, &attempt, &t.From, &t.To, &t.Detail, &t.TraceID, &t.SpanID, &recordedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan transition: %w", err)
		}
		t.Attempt = uint64(attempt)
		if t.At, err = parseRFC3339(recordedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
