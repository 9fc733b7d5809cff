package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/delivery-storefront/internal/backend/inventory"
	"github.com/jcmexdev/delivery-storefront/internal/backend/orders"
	"github.com/jcmexdev/delivery-storefront/internal/backend/placement"
	"github.com/jcmexdev/delivery-storefront/internal/backend/sitestatus"
	"github.com/jcmexdev/delivery-storefront/internal/pkg/cache"
	"github.com/jcmexdev/delivery-storefront/internal/pkg/constants"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

const defaultOfflineMessage = "Ordering is currently unavailable."

// Handler serves the storefront's order backend.
type Handler struct {
	inventory *inventory.Inventory
	orders    *orders.Store
	site      *sitestatus.Service
	placement *placement.Service
}

func NewHandler(inv *inventory.Inventory, store *orders.Store, site *sitestatus.Service, c cache.Cache, idempotencyTTL time.Duration) *Handler {
	return &Handler{
		inventory: inv,
		orders:    store,
		site:      site,
		placement: placement.NewService(inv, store, c, idempotencyTTL, slog.Default()),
	}
}

// SubmitOrder reserves stock for every line and places a PENDING order.
// A repeated idempotency key replays the first order id.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "items are required")
		return
	}
	lines := make([]entity.Line, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_item", "productId and a positive quantity are required")
			return
		}
		lines = append(lines, entity.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	availability, err := h.site.Get(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "site_status_error", err.Error())
		return
	}
	if !availability.Online() {
		msg := availability.OfflineMessage
		if msg == "" {
			msg = defaultOfflineMessage
		}
		writeError(w, http.StatusServiceUnavailable, "site_offline", msg)
		return
	}

	idempKey, _ := ctx.Value(constants.ContextKeyIdempotencyKey).(string)
	requestID, _ := ctx.Value(constants.ContextKeyRequestID).(string)

	res, err := h.placement.Place(ctx, placement.Request{
		Lines: lines,
		Customer: entity.Contact{
			Name:    req.Customer.Name,
			Phone:   req.Customer.Phone,
			Address: req.Customer.Address,
		},
		Notes:          req.Notes,
		IdempotencyKey: idempKey,
		RequestID:      requestID,
	})

	var conflict *placement.ConflictError
	switch {
	case errors.As(err, &conflict):
		slog.InfoContext(ctx, "order rejected on stock", "request_id", requestID, "conflicts", len(conflict.Conflicts))
		writeJSON(w, http.StatusConflict, ConflictResponse{Conflicts: mapConflicts(conflict.Conflicts)})
		return
	case errors.Is(err, placement.ErrInProgress):
		writeError(w, http.StatusConflict, "request_in_progress", err.Error())
		return
	case errors.Is(err, inventory.ErrInvalidLine):
		writeError(w, http.StatusBadRequest, "invalid_item", err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "order_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SubmitOrderResponse{OrderID: res.OrderID})
}

func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "order_not_found", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// ApplyOrderAction completes or cancels a pending order. Cancelling returns
// the reserved stock.
func (h *Handler) ApplyOrderAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "id")

	var req OrderActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.OrderID != "" && req.OrderID != orderID {
		writeError(w, http.StatusBadRequest, "invalid_request", "orderId does not match the path")
		return
	}
	action := entity.OrderAction(req.Action)
	if !action.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_action", "action must be COMPLETE or CANCEL")
		return
	}

	_, after, err := h.orders.Apply(orderID, action)
	switch {
	case errors.Is(err, orders.ErrNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", err.Error())
		return
	case errors.Is(err, orders.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "order_action_error", err.Error())
		return
	}

	switch after.Status {
	case orders.StatusCancelled:
		if err := h.inventory.Release(orderID); err != nil {
			slog.WarnContext(ctx, "no stock to release for cancelled order", "order_id", orderID, "error", err)
		}
	case orders.StatusCompleted:
		h.inventory.Settle(orderID)
	}

	slog.InfoContext(ctx, "order action applied", "order_id", orderID, "action", action, "status", after.Status)
	writeJSON(w, http.StatusOK, mapOrderToResponse(after))
}

func (h *Handler) GetSiteStatus(w http.ResponseWriter, r *http.Request) {
	h.writeSiteStatus(w, r)
}

func (h *Handler) SetSiteStatus(w http.ResponseWriter, r *http.Request) {
	status, err := entity.ParseSiteStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
		return
	}
	if err := h.site.SetStatus(r.Context(), status); err != nil {
		writeError(w, http.StatusInternalServerError, "site_status_error", err.Error())
		return
	}
	slog.InfoContext(r.Context(), "site status changed", "status", status)
	h.writeSiteStatus(w, r)
}

func (h *Handler) SetOfflineMessage(w http.ResponseWriter, r *http.Request) {
	var req OfflineMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if err := h.site.SetOfflineMessage(r.Context(), req.Message); err != nil {
		writeError(w, http.StatusInternalServerError, "site_status_error", err.Error())
		return
	}
	h.writeSiteStatus(w, r)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.inventory.Products()
	out := make([]ProductDTO, len(products))
	for i, p := range products {
		out[i] = ProductDTO{
			ID:       p.ID,
			Name:     p.Name,
			Unit:     p.Unit,
			Price:    p.Price,
			MinOrder: p.MinOrder,
			MaxOrder: p.MaxOrder,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) writeSiteStatus(w http.ResponseWriter, r *http.Request) {
	availability, err := h.site.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "site_status_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SiteStatusResponse{
		SiteStatus:     string(availability.Status),
		OfflineMessage: availability.OfflineMessage,
	})
}

func mapConflicts(in []entity.Conflict) []ConflictDTO {
	out := make([]ConflictDTO, len(in))
	for i, c := range in {
		out[i] = ConflictDTO{
			ProductID:         c.ProductID,
			ProductName:       c.ProductName,
			RequestedQuantity: c.RequestedQuantity,
			AvailableQuantity: c.AvailableQuantity,
			Unit:              c.Unit,
		}
	}
	return out
}

func mapOrderToResponse(o orders.Order) OrderResponse {
	items := make([]LineDTO, len(o.Items))
	for i, l := range o.Items {
		items[i] = LineDTO{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return OrderResponse{
		OrderID: o.ID,
		Status:  string(o.Status),
		Items:   items,
		Customer: ContactDTO{
			Name:    o.Customer.Name,
			Phone:   o.Customer.Phone,
			Address: o.Customer.Address,
		},
		Notes:     o.Notes,
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
		UpdatedAt: o.UpdatedAt.Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
