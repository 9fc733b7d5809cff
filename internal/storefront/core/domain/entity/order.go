package entity

// Line is a single product/quantity pair pending order.
type Line struct {
	ProductID string
	Quantity  int
}

// Product is the catalog view of an orderable item.
type Product struct {
	ID       string
	Name     string
	Unit     string
	Price    float64
	MinOrder int
	MaxOrder *int // nil when the product has no upper bound
}

type Contact struct {
	Name    string
	Phone   string
	Address string
}

// OrderRequest is what the storefront submits to the server.
type OrderRequest struct {
	Items          []Line
	Customer       Contact
	Notes          string
	IdempotencyKey string
}

// OrderReceipt is the server's acknowledgement of an accepted order.
type OrderReceipt struct {
	OrderID string
}

// Order is the authoritative order view returned by the server.
type Order struct {
	ID        string
	Status    string
	Items     []Line
	Customer  Contact
	Notes     string
	CreatedAt string
	UpdatedAt string
}

// OrderAction is a staff action applied to an in-progress order.
type OrderAction string

const (
	ActionNone     OrderAction = ""
	ActionComplete OrderAction = "COMPLETE"
	ActionCancel   OrderAction = "CANCEL"
)

func (a OrderAction) Valid() bool {
	return a == ActionComplete || a == ActionCancel
}
