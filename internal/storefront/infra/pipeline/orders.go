package pipeline

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jcmexdev/delivery-storefront/internal/pkg/constants"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/ports"
)

var (
	_ ports.OrderSubmitter     = (*Client)(nil)
	_ ports.OrderActionService = (*Client)(nil)
	_ ports.SiteStatusService  = (*Client)(nil)
	_ ports.Catalog            = (*Client)(nil)
)

// SubmitOrder posts the order. A 409 comes back as a KindStockConflict error.
func (c *Client) SubmitOrder(ctx context.Context, req entity.OrderRequest) (entity.OrderReceipt, error) {
	body := submitOrderRequest{
		Items: make([]lineDTO, len(req.Items)),
		Customer: contactDTO{
			Name:    req.Customer.Name,
			Phone:   req.Customer.Phone,
			Address: req.Customer.Address,
		},
		Notes: req.Notes,
	}
	for i, l := range req.Items {
		body.Items[i] = lineDTO{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	var resp submitOrderResponse
	err := c.do(ctx, call{
		method:        http.MethodPost,
		path:          "/orders",
		body:          body,
		headers:       map[string]string{constants.HeaderXIdempotencyKey: req.IdempotencyKey},
		conflictOn409: true,
	}, &resp)
	if err != nil {
		return entity.OrderReceipt{}, err
	}
	if resp.OrderID == "" {
		return entity.OrderReceipt{}, entity.NewRequestError(entity.KindServerError, "server accepted the order without an order id", nil)
	}
	return entity.OrderReceipt{OrderID: resp.OrderID}, nil
}

// ApplyOrderAction completes or cancels an order.
func (c *Client) ApplyOrderAction(ctx context.Context, orderID string, action entity.OrderAction) error {
	return c.do(ctx, call{
		method: http.MethodPost,
		path:   "/orders/" + url.PathEscape(orderID) + "/actions",
		body:   orderActionRequest{OrderID: orderID, Action: string(action)},
	}, nil)
}

// GetOrder fetches the authoritative order.
func (c *Client) GetOrder(ctx context.Context, orderID string) (entity.Order, error) {
	var resp orderResponse
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/orders/" + url.PathEscape(orderID),
	}, &resp)
	if err != nil {
		return entity.Order{}, err
	}

	items := make([]entity.Line, len(resp.Items))
	for i, l := range resp.Items {
		items[i] = entity.Line{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return entity.Order{
		ID:     resp.OrderID,
		Status: resp.Status,
		Items:  items,
		Customer: entity.Contact{
			Name:    resp.Customer.Name,
			Phone:   resp.Customer.Phone,
			Address: resp.Customer.Address,
		},
		Notes:     resp.Notes,
		CreatedAt: resp.CreatedAt,
		UpdatedAt: resp.UpdatedAt,
	}, nil
}
