package cart

import "time"

// Stage is the lifecycle position of the active sale.
type Stage string

const (
	StageShopping    Stage = "shopping"
	StageCheckingOut Stage = "checking_out"
	StageCompleted   Stage = "completed"
)

// Item is one cart line: a product snapshot plus quantity and a unit price
// that may have been overridden at the counter. The price is captured when
// the item is added; later catalog edits do not touch it.
type Item struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Receipt is the immutable snapshot of a completed sale.
type Receipt struct {
	Items         []Item    `json:"items"`
	Total         float64   `json:"total"`
	PaymentMethod string    `json:"payment_method"`
	CashGiven     *float64  `json:"cash_given,omitempty"`
	Change        *float64  `json:"change,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	ReceiptNumber string    `json:"receipt_number"`
}

// State is the durable cart aggregate. OriginalPrices is non-nil only while
// a round-up adjustment is active; it maps product id to the pre-round-up
// unit price.
type State struct {
	Items          []Item            `json:"items"`
	Stage          Stage             `json:"stage"`
	Receipt        *Receipt          `json:"receipt,omitempty"`
	OriginalPrices map[int64]float64 `json:"original_prices,omitempty"`
}

// PaymentCard and PaymentCash are the accepted payment methods.
const (
	PaymentCard = "card"
	PaymentCash = "cash"
)
