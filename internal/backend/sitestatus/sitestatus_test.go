package sitestatus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/delivery-storefront/internal/pkg/cache"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	svc := NewService(cache.NewMemoryCache("test"))

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.SiteAvailability{Status: entity.SiteOnline}, got)

	require.NoError(t, svc.SetStatus(ctx, entity.SiteOffline))
	require.NoError(t, svc.SetOfflineMessage(ctx, "Back at 6pm"))

	got, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.SiteAvailability{Status: entity.SiteOffline, OfflineMessage: "Back at 6pm"}, got)

	assert.Error(t, svc.SetStatus(ctx, "MAINTENANCE"))
}

func TestService_CorruptStoredStatus(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache("test")
	require.NoError(t, c.Set(ctx, c.GenerateKey("site", "status"), "??", 0))

	_, err := NewService(c).Get(ctx)
	assert.Error(t, err)
}
