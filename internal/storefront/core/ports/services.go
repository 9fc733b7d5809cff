package ports

import (
	"context"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

// OrderSubmitter sends a cart to the server. A stock conflict is reported as
// an *entity.RequestError of kind KindStockConflict carrying the conflicts.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, req entity.OrderRequest) (entity.OrderReceipt, error)
}

// SiteStatusService reads and mutates the storefront's ordering status.
type SiteStatusService interface {
	GetSiteStatus(ctx context.Context) (entity.SiteAvailability, error)
	SetSiteStatus(ctx context.Context, status entity.SiteStatus) error
	SetOfflineMessage(ctx context.Context, message string) error
}

// OrderActionService applies staff actions to orders.
type OrderActionService interface {
	ApplyOrderAction(ctx context.Context, orderID string, action entity.OrderAction) error
}

// Catalog lists orderable products.
type Catalog interface {
	ListProducts(ctx context.Context) ([]entity.Product, error)
}
