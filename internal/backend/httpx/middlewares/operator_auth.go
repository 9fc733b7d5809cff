package middlewares

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jcmexdev/delivery-storefront/internal/pkg/constants"
)

// RequireOperator rejects requests whose bearer token differs from token.
// An empty token disables the check.
func RequireOperator(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get(constants.HeaderAuthorization), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", "Bearer")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "unauthorized",
					"message": "operator credentials required",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
