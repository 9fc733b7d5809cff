package site

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

type fakeSiteService struct {
	status     entity.SiteAvailability
	getErr     error
	setErr     error
	statusSets []entity.SiteStatus
	msgSets    []string
}

func (f *fakeSiteService) GetSiteStatus(context.Context) (entity.SiteAvailability, error) {
	return f.status, f.getErr
}

func (f *fakeSiteService) SetSiteStatus(_ context.Context, s entity.SiteStatus) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.statusSets = append(f.statusSets, s)
	return nil
}

func (f *fakeSiteService) SetOfflineMessage(_ context.Context, m string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.msgSets = append(f.msgSets, m)
	return nil
}

func TestGate_DefaultsOnline(t *testing.T) {
	g := NewGate(&fakeSiteService{}, entity.SiteAvailability{})
	assert.NoError(t, g.CheckOrdering())
}

func TestGate_OfflineMessageVerbatim(t *testing.T) {
	msg := "  Closed for the holidays — back Jan 3rd!  "
	svc := &fakeSiteService{status: entity.SiteAvailability{Status: entity.SiteOffline, OfflineMessage: msg}}
	g := NewGate(svc, entity.SiteAvailability{})

	_, err := g.Refresh(context.Background())
	require.NoError(t, err)

	err = g.CheckOrdering()
	require.Error(t, err)
	assert.True(t, IsOffline(err))
	var offline *OfflineError
	require.ErrorAs(t, err, &offline)
	assert.Equal(t, msg, offline.Message)
	assert.Equal(t, msg, err.Error())
}

func TestGate_RefreshKeepsLastKnownOnFailure(t *testing.T) {
	svc := &fakeSiteService{getErr: errors.New("timeout")}
	g := NewGate(svc, entity.SiteAvailability{Status: entity.SiteOffline, OfflineMessage: "later"})

	got, err := g.Refresh(context.Background())
	assert.Error(t, err)
	assert.Equal(t, entity.SiteOffline, got.Status)
	assert.Equal(t, "later", g.Status().OfflineMessage)
}

func TestGate_ApplyRejectsUnknownStatus(t *testing.T) {
	g := NewGate(&fakeSiteService{}, entity.SiteAvailability{})
	err := g.Apply(entity.SiteAvailability{Status: "MAINTENANCE"})
	assert.Error(t, err)
	assert.Equal(t, entity.SiteOnline, g.Status().Status)
}

func TestGate_SetStatus(t *testing.T) {
	svc := &fakeSiteService{}
	g := NewGate(svc, entity.SiteAvailability{Status: entity.SiteOnline})

	require.NoError(t, g.SetStatus(context.Background(), entity.SiteOffline, "back at 6pm"))
	assert.Equal(t, []string{"back at 6pm"}, svc.msgSets)
	assert.Equal(t, []entity.SiteStatus{entity.SiteOffline}, svc.statusSets)
	assert.Equal(t, entity.SiteAvailability{Status: entity.SiteOffline, OfflineMessage: "back at 6pm"}, g.Status())

	require.NoError(t, g.SetStatus(context.Background(), entity.SiteOnline, "back at 6pm"))
	assert.Len(t, svc.msgSets, 1, "unchanged message is not resent")
}

func TestGate_SetStatusFailureLeavesState(t *testing.T) {
	svc := &fakeSiteService{setErr: errors.New("forbidden")}
	g := NewGate(svc, entity.SiteAvailability{Status: entity.SiteOnline})

	err := g.SetStatus(context.Background(), entity.SiteOffline, "")
	assert.Error(t, err)
	assert.Equal(t, entity.SiteOnline, g.Status().Status)

	assert.Error(t, g.SetStatus(context.Background(), "CLOSED", ""))
}
