package checkout

import "strings"

// OrderItem is the line shape the external order API expects.
type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type orderRequest struct {
	Reference string      `json:"reference"`
	Items     []OrderItem `json:"items"`
}

// RemoteError is a failed order submission. Messages carries every error the
// provider reported, including nested multi-error payloads.
type RemoteError struct {
	Status   int
	Messages []string
}

func (e *RemoteError) Error() string {
	return strings.Join(e.Messages, ", ")
}
