package pipeline

type lineDTO struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type contactDTO struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type submitOrderRequest struct {
	Items    []lineDTO  `json:"items"`
	Customer contactDTO `json:"customer"`
	Notes    string     `json:"notes,omitempty"`
}

type submitOrderResponse struct {
	OrderID string `json:"orderId"`
}

type conflictDTO struct {
	ProductID         string `json:"productId"`
	ProductName       string `json:"productName"`
	RequestedQuantity int    `json:"requestedQuantity"`
	AvailableQuantity int    `json:"availableQuantity"`
	Unit              string `json:"unit"`
}

type conflictResponse struct {
	Conflicts []conflictDTO `json:"conflicts"`
}

type siteStatusResponse struct {
	SiteStatus     string `json:"siteStatus"`
	OfflineMessage string `json:"offlineMessage"`
}

type offlineMessageRequest struct {
	Message string `json:"message"`
}

type orderActionRequest struct {
	OrderID string `json:"orderId"`
	Action  string `json:"action"`
}

type orderResponse struct {
	OrderID   string     `json:"orderId"`
	Status    string     `json:"status"`
	Items     []lineDTO  `json:"items"`
	Customer  contactDTO `json:"customer"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt"`
}

type productDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Price    float64 `json:"price"`
	MinOrder int     `json:"minOrder"`
	MaxOrder *int    `json:"maxOrder,omitempty"`
}

// errorBody covers the error shapes servers commonly return.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
