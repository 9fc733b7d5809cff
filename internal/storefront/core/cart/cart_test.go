package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/quantity"
)

func TestReduce_AddClampsToBounds(t *testing.T) {
	b := quantity.Between(2, 5)

	c := Reduce(Cart{}, Add("A", 1, b))
	assert.Equal(t, Cart{"A": 2}, c, "below min is raised to min")

	c = Reduce(c, Add("A", 10, b))
	assert.Equal(t, Cart{"A": 5}, c, "above max is lowered to max")
}

func TestReduce_AddToZeroRemoves(t *testing.T) {
	c := Cart{"A": 3, "B": 1}

	got := Reduce(c, Add("A", -3, quantity.AtLeast(1)))
	assert.Equal(t, Cart{"B": 1}, got)
	assert.Equal(t, Reduce(c, Remove("A")), got, "add to zero behaves like remove")

	got = Reduce(got, Add("A", -1, quantity.AtLeast(1)))
	assert.Equal(t, Cart{"B": 1}, got, "removing an absent line is a no-op")
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	c := Cart{"A": 1}
	_ = Reduce(c, SetQuantity("A", 4, quantity.AtLeast(1)))
	_ = Reduce(c, Clear())
	assert.Equal(t, Cart{"A": 1}, c)
}

func TestReduce_SetQuantityIdempotent(t *testing.T) {
	b := quantity.Between(1, 10)
	start := Cart{"A": 2, "B": 7}

	for _, q := range []int{-1, 0, 1, 4, 10, 25} {
		once := Reduce(start, SetQuantity("A", q, b))
		twice := Reduce(once, SetQuantity("A", q, b))
		assert.Equal(t, once, twice, "quantity %d", q)
	}
}

func TestReduce_Restore(t *testing.T) {
	c := Reduce(Cart{"X": 9}, Restore(Cart{"A": 2, "B": 0, "": 3, "C": -1}))
	assert.Equal(t, Cart{"A": 2}, c)
}

func TestReplay(t *testing.T) {
	b := quantity.AtLeast(1)
	c := Replay(
		Add("A", 2, b),
		Add("B", 1, b),
		SetQuantity("A", 5, b),
		Remove("B"),
		Add("C", 3, b),
	)
	assert.Equal(t, Cart{"A": 5, "C": 3}, c)
	assert.Equal(t, 8, c.TotalUnits())
	require.Len(t, c.Lines(), 2)
	assert.Equal(t, "A", c.Lines()[0].ProductID)
}

type memRepo struct {
	saved map[string]map[string]int
	err   error
}

func (m *memRepo) LoadCart(_ context.Context, sessionID string) (map[string]int, error) {
	return m.saved[sessionID], nil
}

func (m *memRepo) SaveCart(_ context.Context, sessionID string, lines map[string]int) error {
	if m.err != nil {
		return m.err
	}
	cp := make(map[string]int, len(lines))
	for k, v := range lines {
		cp[k] = v
	}
	m.saved[sessionID] = cp
	return nil
}

func TestStore_PersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{saved: map[string]map[string]int{}}

	s, err := Open(ctx, WithRepository(repo, "sess-1"))
	require.NoError(t, err)

	_, err = s.Add(ctx, "A", 2, quantity.AtLeast(1))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 2}, repo.saved["sess-1"])

	restored, err := Open(ctx, WithRepository(repo, "sess-1"))
	require.NoError(t, err)
	assert.Equal(t, Cart{"A": 2}, restored.Snapshot())
}

func TestStore_SaveFailureKeepsCart(t *testing.T) {
	repo := &memRepo{saved: map[string]map[string]int{}, err: errors.New("disk full")}
	s := NewStore(WithRepository(repo, "sess"))

	c, err := s.Add(context.Background(), "A", 1, quantity.AtLeast(1))
	require.NoError(t, err)
	assert.Equal(t, Cart{"A": 1}, c)
}

func TestStore_FrozenRejectsMutations(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, err := s.Add(ctx, "A", 1, quantity.AtLeast(1))
	require.NoError(t, err)

	require.True(t, s.Freeze())
	assert.False(t, s.Freeze(), "second freeze reports already frozen")

	_, err = s.Add(ctx, "A", 1, quantity.AtLeast(1))
	assert.ErrorIs(t, err, ErrCartLocked)
	_, err = s.Remove(ctx, "A")
	assert.ErrorIs(t, err, ErrCartLocked)
	assert.Equal(t, Cart{"A": 1}, s.Snapshot())

	s.ClearAfterOrder(ctx, Cart{"A": 1})
	assert.True(t, s.Snapshot().Empty())
	assert.False(t, s.Frozen())
}

func TestSubtract(t *testing.T) {
	got := Subtract(Cart{"A": 3, "B": 1, "C": 2}, Cart{"A": 1, "B": 1, "D": 4})
	assert.Equal(t, Cart{"A": 2, "C": 2}, got)
	assert.Equal(t, Cart{}, Subtract(Cart{"A": 1}, Cart{"A": 5}))
}

func TestStore_GuardBlocksGrowthOnly(t *testing.T) {
	ctx := context.Background()
	closed := errors.New("closed")
	allow := true
	s := NewStore(WithGuard(func() error {
		if allow {
			return nil
		}
		return closed
	}))

	_, err := s.Add(ctx, "A", 3, quantity.AtLeast(1))
	require.NoError(t, err)

	allow = false
	_, err = s.Add(ctx, "A", 1, quantity.AtLeast(1))
	assert.ErrorIs(t, err, closed)
	_, err = s.SetQuantity(ctx, "A", 5, quantity.AtLeast(1))
	assert.ErrorIs(t, err, closed)

	c, err := s.Add(ctx, "A", -1, quantity.AtLeast(1))
	require.NoError(t, err)
	assert.Equal(t, Cart{"A": 2}, c)

	c, err = s.Clear(ctx)
	require.NoError(t, err)
	assert.True(t, c.Empty())
}
