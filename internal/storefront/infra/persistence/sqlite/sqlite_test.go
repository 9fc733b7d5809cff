package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/ports"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCartRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t).Carts()

	lines, err := repo.LoadCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	require.NoError(t, repo.SaveCart(ctx, "sess-1", map[string]int{"A": 2, "B": 1, "skip": 0}))
	require.NoError(t, repo.SaveCart(ctx, "sess-2", map[string]int{"C": 4}))

	lines, err = repo.LoadCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, lines)

	require.NoError(t, repo.SaveCart(ctx, "sess-1", map[string]int{"B": 3}))
	lines, err = repo.LoadCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"B": 3}, lines, "save replaces the whole cart")

	lines, err = repo.LoadCart(ctx, "sess-2")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"C": 4}, lines, "sessions are isolated")
}

func TestCartRepository_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storefront.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Carts().SaveCart(ctx, "sess", map[string]int{"A": 1}))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	lines, err := db.Carts().LoadCart(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 1}, lines)
}

func TestTransitionLog_History(t *testing.T) {
	ctx := context.Background()
	log := openTestDB(t).Transitions()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, log.Record(ctx, ports.Transition{CheckoutID: "co-1", Attempt: 1, From: "DRAFT", To: "SUBMITTING", At: at}))
	require.NoError(t, log.Record(ctx, ports.Transition{CheckoutID: "co-2", Attempt: 1, From: "DRAFT", To: "SUBMITTING", At: at}))
	require.NoError(t, log.Record(ctx, ports.Transition{CheckoutID: "co-1", Attempt: 1, From: "SUBMITTING", To: "CONFLICT", Detail: "1 conflicting line(s)", TraceID: "abc", At: at.Add(time.Second)}))

	history, err := log.History(ctx, "co-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "SUBMITTING", history[0].To)
	assert.Equal(t, "CONFLICT", history[1].To)
	assert.Equal(t, "abc", history[1].TraceID)
	assert.Equal(t, uint64(1), history[1].Attempt)
	assert.True(t, at.Add(time.Second).Equal(history[1].At))
}

func TestPendingSubmission_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t).Carts()

	p, err := repo.LoadPending(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, p)

	want := ports.PendingSubmission{
		IdempotencyKey: "key-1",
		Items:          map[string]int{"A": 3},
		Basis:          map[string]int{"A": 5},
		Reduced:        true,
	}
	require.NoError(t, repo.SavePending(ctx, "sess-1", want))

	p, err = repo.LoadPending(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, want, *p)

	want.IdempotencyKey = "key-2"
	want.Reduced = false
	require.NoError(t, repo.SavePending(ctx, "sess-1", want))
	p, err = repo.LoadPending(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "key-2", p.IdempotencyKey, "save replaces the pending submission")
	assert.False(t, p.Reduced)

	other, err := repo.LoadPending(ctx, "sess-2")
	require.NoError(t, err)
	assert.Nil(t, other, "sessions are isolated")

	require.NoError(t, repo.ClearPending(ctx, "sess-1"))
	p, err = repo.LoadPending(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, p)
}
