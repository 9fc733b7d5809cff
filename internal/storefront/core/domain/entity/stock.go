package entity

// StockSnapshot maps a product id to the quantity the server reports as
// available. It only lives for one reconciliation attempt.
type StockSnapshot map[string]int

// Available returns the reported quantity, treating absent products as zero.
func (s StockSnapshot) Available(productID string) int {
	if s == nil {
		return 0
	}
	return s[productID]
}

// Conflict is a cart line whose requested quantity exceeds availability.
type Conflict struct {
	ProductID         string
	ProductName       string
	RequestedQuantity int
	AvailableQuantity int
	Unit              string
}

// SnapshotFromConflicts rebuilds the authoritative snapshot carried by a
// stock conflict response.
func SnapshotFromConflicts(conflicts []Conflict) StockSnapshot {
	snap := make(StockSnapshot, len(conflicts))
	for _, c := range conflicts {
		snap[c.ProductID] = c.AvailableQuantity
	}
	return snap
}
