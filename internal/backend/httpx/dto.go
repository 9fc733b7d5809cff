package httpx

type LineDTO struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type ContactDTO struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type SubmitOrderRequest struct {
	Items    []LineDTO  `json:"items"`
	Customer ContactDTO `json:"customer"`
	Notes    string     `json:"notes,omitempty"`
}

type SubmitOrderResponse struct {
	OrderID string `json:"orderId"`
}

type ConflictDTO struct {
	ProductID         string `json:"productId"`
	ProductName       string `json:"productName"`
	RequestedQuantity int    `json:"requestedQuantity"`
	AvailableQuantity int    `json:"availableQuantity"`
	Unit              string `json:"unit"`
}

// ConflictResponse is the 409 body of a stock conflict.
type ConflictResponse struct {
	Conflicts []ConflictDTO `json:"conflicts"`
}

type SiteStatusResponse struct {
	SiteStatus     string `json:"siteStatus"`
	OfflineMessage string `json:"offlineMessage"`
}

type OfflineMessageRequest struct {
	Message string `json:"message"`
}

type OrderActionRequest struct {
	OrderID string `json:"orderId"`
	Action  string `json:"action"`
}

type OrderResponse struct {
	OrderID   string     `json:"orderId"`
	Status    string     `json:"status"`
	Items     []LineDTO  `json:"items"`
	Customer  ContactDTO `json:"customer"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt"`
}

type ProductDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Price    float64 `json:"price"`
	MinOrder int     `json:"minOrder"`
	MaxOrder *int    `json:"maxOrder,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
