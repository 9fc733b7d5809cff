package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

// classifyTransport maps a failure with no HTTP response. A done caller
// context wins over whatever the transport reported.
func classifyTransport(ctx context.Context, err error) *entity.RequestError {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return entity.NewRequestError(entity.KindCancelled, "", err)
	}
	return entity.NewRequestError(entity.KindNetworkError, entity.NetworkErrorMessage, err)
}

// classifyStatus maps a non-2xx response.
func classifyStatus(status int, body []byte, conflictOn409 bool) *entity.RequestError {
	if status == http.StatusConflict && conflictOn409 {
		var payload conflictResponse
		if err := json.Unmarshal(body, &payload); err == nil && len(payload.Conflicts) > 0 {
			return entity.NewConflictError(conflictsFromDTO(payload.Conflicts))
		}
	}

	reqErr := entity.NewRequestError(entity.KindServerError, extractMessage(status, body), nil)
	reqErr.StatusCode = status
	return reqErr
}

// extractMessage pulls a human readable message out of an error body.
func extractMessage(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return http.StatusText(status)
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return http.StatusText(status)
	}
	return trimmed
}

func conflictsFromDTO(in []conflictDTO) []entity.Conflict {
	out := make([]entity.Conflict, len(in))
	for i, c := range in {
		out[i] = entity.Conflict{
			ProductID:         c.ProductID,
			ProductName:       c.ProductName,
			RequestedQuantity: c.RequestedQuantity,
			AvailableQuantity: c.AvailableQuantity,
			Unit:              c.Unit,
		}
	}
	return out
}
