// Package site gates ordering on the storefront's ONLINE/OFFLINE status.
package site

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/ports"
)

// OfflineError is returned when ordering is attempted while the site is
// offline. Message is the operator's offline message, unmodified and
// possibly empty; show Message, not Error, to customers.
type OfflineError struct {
	Message string
}

// Error falls back to a generic text for logs when no message was set.
func (e *OfflineError) Error() string {
	if e.Message == "" {
		return "ordering is currently unavailable"
	}
	return e.Message
}

// IsOffline reports whether err came from a closed gate.
func IsOffline(err error) bool {
	var offline *OfflineError
	return errors.As(err, &offline)
}

// Gate holds the last known site availability.
type Gate struct {
	mu      sync.RWMutex
	current entity.SiteAvailability
	svc     ports.SiteStatusService
}

// NewGate returns a gate starting from initial. An empty status is treated
// as ONLINE until the first refresh.
func NewGate(svc ports.SiteStatusService, initial entity.SiteAvailability) *Gate {
	if initial.Status == "" {
		initial.Status = entity.SiteOnline
	}
	return &Gate{current: initial, svc: svc}
}

func (g *Gate) Status() entity.SiteAvailability {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// Apply records a status obtained elsewhere, rejecting unknown values.
func (g *Gate) Apply(a entity.SiteAvailability) error {
	if _, err := entity.ParseSiteStatus(string(a.Status)); err != nil {
		return err
	}
	g.mu.Lock()
	g.current = a
	g.mu.Unlock()
	return nil
}

// Refresh fetches the current status from the server.
func (g *Gate) Refresh(ctx context.Context) (entity.SiteAvailability, error) {
	a, err := g.svc.GetSiteStatus(ctx)
	if err != nil {
		return g.Status(), fmt.Errorf("refresh site status: %w", err)
	}
	if err := g.Apply(a); err != nil {
		return g.Status(), fmt.Errorf("refresh site status: %w", err)
	}
	return a, nil
}

// CheckOrdering returns an *OfflineError when ordering is not permitted.
func (g *Gate) CheckOrdering() error {
	a := g.Status()
	if a.Online() {
		return nil
	}
	return &OfflineError{Message: a.OfflineMessage}
}

// SetStatus is the operator action that opens or closes ordering. The
// message is sent first so customers never see OFFLINE without it.
func (g *Gate) SetStatus(ctx context.Context, status entity.SiteStatus, message string) error {
	if _, err := entity.ParseSiteStatus(string(status)); err != nil {
		return err
	}

	current := g.Status()
	if message != current.OfflineMessage {
		if err := g.svc.SetOfflineMessage(ctx, message); err != nil {
			return fmt.Errorf("set offline message: %w", err)
		}
		g.mu.Lock()
		g.current.OfflineMessage = message
		g.mu.Unlock()
	}

	if err := g.svc.SetSiteStatus(ctx, status); err != nil {
		return fmt.Errorf("set site status: %w", err)
	}
	g.mu.Lock()
	g.current.Status = status
	g.mu.Unlock()
	return nil
}
