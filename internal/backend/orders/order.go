// Package orders holds the dev backend's in-memory order book.
package orders

import (
	"time"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Order is the backend's record of a placed order.
type Order struct {
	ID             string
	Items          []entity.Line
	Customer       entity.Contact
	Notes          string
	Status         Status
	IdempotencyKey string
	RequestID      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// next returns the status action leads to from s. Only pending orders move.
func (s Status) next(action entity.OrderAction) (Status, bool) {
	if s != StatusPending {
		return s, false
	}
	switch action {
	case entity.ActionComplete:
		return StatusCompleted, true
	case entity.ActionCancel:
		return StatusCancelled, true
	default:
		return s, false
	}
}

func (o Order) clone() Order {
	o.Items = append([]entity.Line(nil), o.Items...)
	return o
}
