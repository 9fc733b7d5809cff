package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/delivery-storefront/internal/backend/inventory"
	"github.com/jcmexdev/delivery-storefront/internal/backend/orders"
	"github.com/jcmexdev/delivery-storefront/internal/backend/sitestatus"
	"github.com/jcmexdev/delivery-storefront/internal/pkg/cache"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

const operatorToken = "op-token"

type fixture struct {
	router    http.Handler
	inventory *inventory.Inventory
	site      *sitestatus.Service
	cache     cache.Cache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	inv := inventory.New([]inventory.Item{
		{Product: entity.Product{ID: "A", Name: "Apples", Unit: "kg", MinOrder: 1}, Stock: 5},
		{Product: entity.Product{ID: "B", Name: "Bread", Unit: "loaf", MinOrder: 1}, Stock: 2},
	}, nil)
	c := cache.NewMemoryCache("test")
	site := sitestatus.NewService(c)
	h := NewHandler(inv, orders.NewStore(), site, c, 0)
	return &fixture{
		router:    NewRouter(h, RouterOptions{OperatorToken: operatorToken}),
		inventory: inv,
		site:      site,
		cache:     c,
	}
}

func (f *fixture) do(t *testing.T, method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

var operator = map[string]string{"Authorization": "Bearer " + operatorToken}

func submitBody(lines ...LineDTO) SubmitOrderRequest {
	return SubmitOrderRequest{Items: lines, Customer: ContactDTO{Name: "Ana"}}
}

func TestSubmitOrder_Success(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/orders", submitBody(LineDTO{"A", 3}, LineDTO{"B", 2}), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[SubmitOrderResponse](t, rec)
	assert.True(t, strings.HasPrefix(resp.OrderID, "ord_"))
	assert.Equal(t, 2, f.inventory.Available("A"))

	rec = f.do(t, http.MethodGet, "/orders/"+resp.OrderID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	order := decode[OrderResponse](t, rec)
	assert.Equal(t, "PENDING", order.Status)
	assert.Equal(t, "Ana", order.Customer.Name)
	assert.Len(t, order.Items, 2)
}

func TestSubmitOrder_StockConflict(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/orders", submitBody(LineDTO{"A", 9}, LineDTO{"B", 1}), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decode[ConflictResponse](t, rec)
	assert.Equal(t, []ConflictDTO{{ProductID: "A", ProductName: "Apples", RequestedQuantity: 9, AvailableQuantity: 5, Unit: "kg"}}, resp.Conflicts)
	assert.Equal(t, 2, f.inventory.Available("B"), "a conflicting order takes nothing")
}

func TestSubmitOrder_Validation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/orders", submitBody(), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/orders", submitBody(LineDTO{"A", 0}), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSubmitOrder_Offline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.site.SetStatus(ctx, entity.SiteOffline))

	rec := f.do(t, http.MethodPost, "/orders", submitBody(LineDTO{"A", 1}), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, defaultOfflineMessage, decode[ErrorResponse](t, rec).Message)

	require.NoError(t, f.site.SetOfflineMessage(ctx, "Closed for inventory"))
	rec = f.do(t, http.MethodPost, "/orders", submitBody(LineDTO{"A", 1}), nil)
	assert.Equal(t, "Closed for inventory", decode[ErrorResponse](t, rec).Message)
	assert.Equal(t, 5, f.inventory.Available("A"))
}

func TestSubmitOrder_IdempotentReplay(t *testing.T) {
	f := newFixture(t)
	key := map[string]string{"X-Idempotency-Key": "key-1"}

	first := decode[SubmitOrderResponse](t, f.do(t, http.MethodPost, "/orders", submitBody(LineDTO{"A", 2}), key))
	rec := f.do(t, http.MethodPost, "/orders", submitBody(LineDTO{"A", 2}), key)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first.OrderID, decode[SubmitOrderResponse](t, rec).OrderID)
	assert.Equal(t, 3, f.inventory.Available("A"), "a replay reserves nothing")
}

func TestSubmitOrder_ConflictReleasesIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	key := map[string]string{"X-Idempotency-Key": "key-2"}

	rec := f.do(t, http.MethodPost, "/orders", submitBody(LineDTO{"A", 9}), key)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/orders", submitBody(LineDTO{"A", 5}), key)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubmitOrder_KeyInProgress(t *testing.T) {
	f := newFixture(t)
	_, err := f.cache.SetNX(context.Background(), f.cache.GenerateKey("idempotency", "key-3"), "pending", 0)
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/orders", submitBody(LineDTO{"A", 1}), map[string]string{"X-Idempotency-Key": "key-3"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "request_in_progress", decode[ErrorResponse](t, rec).Error)
	assert.Equal(t, 5, f.inventory.Available("A"))
}

func TestOrderActions(t *testing.T) {
	f := newFixture(t)
	id := decode[SubmitOrderResponse](t, f.do(t, http.MethodPost, "/orders", submitBody(LineDTO{"A", 4}), nil)).OrderID

	rec := f.do(t, http.MethodPost, "/orders/"+id+"/actions", OrderActionRequest{OrderID: id, Action: "CANCEL"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/orders/"+id+"/actions", OrderActionRequest{OrderID: "other", Action: "CANCEL"}, operator)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/orders/"+id+"/actions", OrderActionRequest{OrderID: id, Action: "REFUND"}, operator)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/orders/"+id+"/actions", OrderActionRequest{OrderID: id, Action: "CANCEL"}, operator)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CANCELLED", decode[OrderResponse](t, rec).Status)
	assert.Equal(t, 5, f.inventory.Available("A"), "cancelling returns the stock")

	rec = f.do(t, http.MethodPost, "/orders/"+id+"/actions", OrderActionRequest{OrderID: id, Action: "COMPLETE"}, operator)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/orders/missing/actions", OrderActionRequest{Action: "COMPLETE"}, operator)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSiteEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/site/status", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, SiteStatusResponse{SiteStatus: "ONLINE"}, decode[SiteStatusResponse](t, rec))

	rec = f.do(t, http.MethodPatch, "/site/status?status=OFFLINE", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPatch, "/site/status?status=CLOSED", nil, operator)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, "/site/status?status=OFFLINE", nil, operator)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPatch, "/site/offline-message", OfflineMessageRequest{Message: "Back soon"}, operator)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, SiteStatusResponse{SiteStatus: "OFFLINE", OfflineMessage: "Back soon"}, decode[SiteStatusResponse](t, rec))
}

func TestListProducts(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/products", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode[[]ProductDTO](t, rec)
	require.Len(t, products, 2)
	assert.Equal(t, "A", products[0].ID)
	assert.Nil(t, products[0].MaxOrder)
}

func TestRouter_OpenOperatorEndpointsWithoutToken(t *testing.T) {
	inv := inventory.New(nil, nil)
	c := cache.NewMemoryCache("test")
	router := NewRouter(NewHandler(inv, orders.NewStore(), sitestatus.NewService(c), c, 0), RouterOptions{})

	req := httptest.NewRequest(http.MethodPatch, "/site/status?status=OFFLINE", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
