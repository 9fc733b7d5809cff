package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/ports"
)

var _ ports.CartRepository = (*CartRepository)(nil)

// CartRepository stores one row per cart line.
type CartRepository struct {
	db *sql.DB
}

func (r *CartRepository) LoadCart(ctx context.Context, sessionID string) (map[string]int, error) {
	const q = `SELECT product_id, quantity FROM cart_lines WHERE session_id = ?`

	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load cart %q: %w", sessionID, err)
	}
	defer rows.Close()

	lines := make(map[string]int)
	for rows.Next() {
		var productID string
		var quantity int
		if err := rows.Scan(&productID, &quantity); err != nil {
			return nil, fmt.Errorf("sqlite: scan cart line: %w", err)
		}
		lines[productID] = quantity
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: load cart %q: %w", sessionID, err)
	}
	return lines, nil
}

// SaveCart replaces the session's lines in a single transaction.
func (r *CartRepository) SaveCart(ctx context.Context, sessionID string, lines map[string]int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin save cart: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("sqlite: clear cart %q: %w", sessionID, err)
	}

	now := formatTime(time.Now())
	for productID, quantity := range lines {
		if quantity <= 0 {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cart_lines (session_id, product_id, quantity, updated_at) VALUES (?, ?, ?, ?)`,
			sessionID, productID, quantity, now)
		if err != nil {
			return fmt.Errorf("sqlite: save line %q: %w", productID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit cart %q: %w", sessionID, err)
	}
	return nil
}
