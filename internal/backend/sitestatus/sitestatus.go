// Package sitestatus stores the storefront's ordering availability in the
// backend cache.
package sitestatus

import (
	"context"
	"fmt"

	"github.com/jcmexdev/delivery-storefront/internal/pkg/cache"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

// Service reads and writes the site status. An unset status is ONLINE.
type Service struct {
	cache cache.Cache
}

func NewService(c cache.Cache) *Service {
	return &Service{cache: c}
}

func (s *Service) statusKey() string  { return s.cache.GenerateKey("site", "status") }
func (s *Service) messageKey() string { return s.cache.GenerateKey("site", "offline-message") }

func (s *Service) Get(ctx context.Context) (entity.SiteAvailability, error) {
	raw, err := s.cache.Get(ctx, s.statusKey())
	if err != nil {
		return entity.SiteAvailability{}, fmt.Errorf("sitestatus: read status: %w", err)
	}
	status := entity.SiteOnline
	if raw != "" {
		if status, err = entity.ParseSiteStatus(raw); err != nil {
			return entity.SiteAvailability{}, fmt.Errorf("sitestatus: stored value: %w", err)
		}
	}

	msg, err := s.cache.Get(ctx, s.messageKey())
	if err != nil {
		return entity.SiteAvailability{}, fmt.Errorf("sitestatus: read offline message: %w", err)
	}
	return entity.SiteAvailability{Status: status, OfflineMessage: msg}, nil
}

func (s *Service) SetStatus(ctx context.Context, status entity.SiteStatus) error {
	if _, err := entity.ParseSiteStatus(string(status)); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, s.statusKey(), string(status), 0); err != nil {
		return fmt.Errorf("sitestatus: write status: %w", err)
	}
	return nil
}

func (s *Service) SetOfflineMessage(ctx context.Context, message string) error {
	if err := s.cache.Set(ctx, s.messageKey(), message, 0); err != nil {
		return fmt.Errorf("sitestatus: write offline message: %w", err)
	}
	return nil
}
