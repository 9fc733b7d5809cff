package orders

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

func TestCreateAndGet(t *testing.T) {
	s := NewStore()
	fixed := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	created := s.Create(Order{Items: []entity.Line{{ProductID: "A", Quantity: 2}}, Notes: "ring twice"})
	assert.True(t, strings.HasPrefix(created.ID, "ord_"))
	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, fixed, created.CreatedAt)

	created.Items[0].Quantity = 99
	got, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Items[0].Quantity, "stored order is isolated from callers")

	_, err = s.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApply_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		actions []entity.OrderAction
		want    Status
		wantErr error
	}{
		{name: "complete", actions: []entity.OrderAction{entity.ActionComplete}, want: StatusCompleted},
		{name: "cancel", actions: []entity.OrderAction{entity.ActionCancel}, want: StatusCancelled},
		{name: "complete twice", actions: []entity.OrderAction{entity.ActionComplete, entity.ActionComplete}, want: StatusCompleted, wantErr: ErrInvalidTransition},
		{name: "cancel after complete", actions: []entity.OrderAction{entity.ActionComplete, entity.ActionCancel}, want: StatusCompleted, wantErr: ErrInvalidTransition},
		{name: "no action", actions: []entity.OrderAction{entity.ActionNone}, want: StatusPending, wantErr: ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			o := s.Create(Order{ID: "o1"})

			var err error
			for _, a := range tt.actions {
				_, _, err = s.Apply(o.ID, a)
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			got, _ := s.Get(o.ID)
			assert.Equal(t, tt.want, got.Status)
		})
	}
}

func TestApply_ReturnsBeforeAndAfter(t *testing.T) {
	s := NewStore()
	s.Create(Order{ID: "o1"})

	before, after, err := s.Apply("o1", entity.ActionCancel)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, before.Status)
	assert.Equal(t, StatusCancelled, after.Status)

	_, _, err = s.Apply("missing", entity.ActionCancel)
	assert.ErrorIs(t, err, ErrNotFound)
}
