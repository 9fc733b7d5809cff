package pipeline

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

func (c *Client) GetSiteStatus(ctx context.Context) (entity.SiteAvailability, error) {
	var resp siteStatusResponse
	if err := c.do(ctx, call{method: http.MethodGet, path: "/site/status"}, &resp); err != nil {
		return entity.SiteAvailability{}, err
	}

	status, err := entity.ParseSiteStatus(resp.SiteStatus)
	if err != nil {
		return entity.SiteAvailability{}, entity.NewRequestError(entity.KindServerError, err.Error(), err)
	}
	return entity.SiteAvailability{Status: status, OfflineMessage: resp.OfflineMessage}, nil
}

func (c *Client) SetSiteStatus(ctx context.Context, status entity.SiteStatus) error {
	return c.do(ctx, call{
		method: http.MethodPatch,
		path:   "/site/status",
		query:  url.Values{"status": {string(status)}},
	}, nil)
}

func (c *Client) SetOfflineMessage(ctx context.Context, message string) error {
	return c.do(ctx, call{
		method: http.MethodPatch,
		path:   "/site/offline-message",
		body:   offlineMessageRequest{Message: message},
	}, nil)
}

// ListProducts returns the catalog.
func (c *Client) ListProducts(ctx context.Context) ([]entity.Product, error) {
	var resp []productDTO
	if err := c.do(ctx, call{method: http.MethodGet, path: "/products"}, &resp); err != nil {
		return nil, err
	}

	products := make([]entity.Product, len(resp))
	for i, p := range resp {
		products[i] = entity.Product{
			ID:       p.ID,
			Name:     p.Name,
			Unit:     p.Unit,
			Price:    p.Price,
			MinOrder: p.MinOrder,
			MaxOrder: p.MaxOrder,
		}
	}
	return products, nil
}
