package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/delivery-storefront/internal/pkg/constants"
)

// AttachRequestMeta copies the request id assigned by middleware.RequestID
// and the client's idempotency key into the request context.
func AttachRequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		idempotencyKey := r.Header.Get(constants.HeaderXIdempotencyKey)

		ctx := context.WithValue(r.Context(), constants.ContextKeyRequestID, requestID)
		ctx = context.WithValue(ctx, constants.ContextKeyIdempotencyKey, idempotencyKey)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
