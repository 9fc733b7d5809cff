package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindClientError, KindOf(errors.New("boom")))

	wrapped := fmt.Errorf("submit: %w", NewRequestError(KindNetworkError, NetworkErrorMessage, nil))
	assert.Equal(t, KindNetworkError, KindOf(wrapped))
	assert.False(t, IsCancelled(wrapped))
	assert.True(t, IsCancelled(NewRequestError(KindCancelled, "", nil)))
}

func TestAsRequestError_WrapsUnknown(t *testing.T) {
	cause := errors.New("bad url")
	reqErr := AsRequestError(cause)
	require.NotNil(t, reqErr)
	assert.Equal(t, KindClientError, reqErr.Kind)
	assert.ErrorIs(t, reqErr, cause)
}

func TestNewConflictError(t *testing.T) {
	err := NewConflictError([]Conflict{{ProductID: "A", RequestedQuantity: 5, AvailableQuantity: 3}})
	assert.Equal(t, KindStockConflict, err.Kind)
	assert.Equal(t, 409, err.StatusCode)
	assert.Equal(t, StockSnapshot{"A": 3}, SnapshotFromConflicts(err.Conflicts))
}

func TestParseSiteStatus(t *testing.T) {
	s, err := ParseSiteStatus("OFFLINE")
	require.NoError(t, err)
	assert.Equal(t, SiteOffline, s)

	_, err = ParseSiteStatus("offline")
	assert.Error(t, err)
}
