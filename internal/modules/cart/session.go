package cart

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/tillpoint/pos-backend/internal/modules/catalog"
)

// CheckoutToken identifies one checkout attempt. A token issued by
// BeginCheckout stops being valid when the checkout is cancelled or a new
// sale starts, so a payment result arriving after cancellation is dropped.
type CheckoutToken struct{ epoch uint64 }

// Session is the single active cart. All mutations go through the session
// one at a time; every successful mutation is persisted to the Store so the
// sale survives a restart.
type Session struct {
	mu    sync.Mutex
	state State
	epoch uint64
	store Store
}

// NewSession restores the cart from the store, or starts an empty one when
// no snapshot exists. A nil store keeps the session purely in memory.
func NewSession(store Store) (*Session, error) {
	s := &Session{store: store}
	s.state.Stage = StageShopping
	if store != nil {
		state, err := store.Load()
		if err != nil {
			return nil, err
		}
		if state != nil {
			s.state = *state
			if s.state.Stage == "" {
				s.state.Stage = StageShopping
			}
		}
	}
	return s, nil
}

// AddItem inserts the product as a new line with quantity 1, or increments
// the quantity of the existing line for the same product. The line price is
// the product's price at this moment; later catalog edits do not affect it.
func (s *Session) AddItem(p *catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Items {
		if s.state.Items[i].ProductID == p.ID {
			s.state.Items[i].Quantity++
			s.persist()
			return
		}
	}
	s.state.Items = append(s.state.Items, Item{
		ProductID: p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		Price:     p.Price,
		Quantity:  1,
	})
	s.persist()
}

// SetQuantity sets the quantity of one line. Zero or negative removes the
// line entirely.
func (s *Session) SetQuantity(productID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quantity <= 0 {
		s.removeLocked(productID)
		s.persist()
		return
	}
	for i := range s.state.Items {
		if s.state.Items[i].ProductID == productID {
			s.state.Items[i].Quantity = quantity
			break
		}
	}
	s.persist()
}

// SetPrice overrides the unit price of one line. The caller validates the
// amount before calling.
func (s *Session) SetPrice(productID int64, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Items {
		if s.state.Items[i].ProductID == productID {
			s.state.Items[i].Price = price
			break
		}
	}
	s.persist()
}

// RemoveItem deletes one line from the cart.
func (s *Session) RemoveItem(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(productID)
	s.persist()
}

func (s *Session) removeLocked(productID int64) {
	items := s.state.Items[:0]
	for _, item := range s.state.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	s.state.Items = items
}

// Clear empties the cart without changing the stage.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Items = nil
	s.persist()
}

// Total is the running sum of price times quantity over all lines.
func (s *Session) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalLocked()
}

func (s *Session) totalLocked() float64 {
	var total float64
	for _, item := range s.state.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// RoundUp lifts the cart total to the next whole currency unit by adding the
// difference to the last line's unit price, spread over its quantity. The
// pre-round prices are snapshotted once, so repeated calls never compound.
// No-op on an empty cart.
func (s *Session) RoundUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.state.Items) == 0 {
		return
	}
	if s.state.OriginalPrices == nil {
		s.state.OriginalPrices = make(map[int64]float64, len(s.state.Items))
		for _, item := range s.state.Items {
			s.state.OriginalPrices[item.ProductID] = item.Price
		}
	}
	// Cent-round before taking the ceiling: a float sum a hair above a
	// whole amount must not get lifted a full extra unit, and a repeat
	// call on an already-rounded cart must see delta == 0.
	total := roundCents(s.totalLocked())
	delta := math.Ceil(total) - total
	if delta > 0 {
		last := &s.state.Items[len(s.state.Items)-1]
		last.Price += delta / float64(last.Quantity)
	}
	s.persist()
}

// RevertRoundUp restores every snapshotted line price and clears the
// snapshot. Lines added after the round-up are left untouched. No-op when
// no snapshot exists or the cart is empty.
func (s *Session) RevertRoundUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.OriginalPrices == nil || len(s.state.Items) == 0 {
		return
	}
	for i := range s.state.Items {
		if price, ok := s.state.OriginalPrices[s.state.Items[i].ProductID]; ok {
			s.state.Items[i].Price = price
		}
	}
	s.state.OriginalPrices = nil
	s.persist()
}

// BeginCheckout moves the sale to the checking-out stage (idempotent) and
// returns the token for this attempt.
func (s *Session) BeginCheckout() CheckoutToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Stage == StageShopping {
		s.state.Stage = StageCheckingOut
		s.persist()
	}
	return CheckoutToken{epoch: s.epoch}
}

// CancelCheckout returns the sale to shopping and invalidates any
// outstanding checkout token. An in-flight payment call is not interrupted;
// its result simply no longer applies.
func (s *Session) CancelCheckout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	if s.state.Stage == StageCheckingOut {
		s.state.Stage = StageShopping
		s.persist()
	}
}

// CompleteSale freezes the current lines into a receipt, marks the sale
// completed, and returns the receipt. This is the only producer of receipts.
func (s *Session) CompleteSale(method string, cashGiven, change *float64) *Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completeLocked(method, cashGiven, change)
}

// CompleteSaleIf applies CompleteSale only when the token is still the
// current checkout attempt and the sale is still checking out. It reports
// whether the sale was applied.
func (s *Session) CompleteSaleIf(token CheckoutToken, method string, cashGiven, change *float64) (*Receipt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token.epoch != s.epoch || s.state.Stage != StageCheckingOut {
		return nil, false
	}
	return s.completeLocked(method, cashGiven, change), true
}

func (s *Session) completeLocked(method string, cashGiven, change *float64) *Receipt {
	receipt := &Receipt{
		Items:         append([]Item(nil), s.state.Items...),
		Total:         s.totalLocked(),
		PaymentMethod: method,
		CashGiven:     cashGiven,
		Change:        change,
		Timestamp:     time.Now().UTC(),
		ReceiptNumber: fmt.Sprintf("R-%d", 100000+rand.Intn(900000)),
	}
	s.state.Receipt = receipt
	s.state.Stage = StageCompleted
	s.persist()
	out := *receipt
	out.Items = append([]Item(nil), receipt.Items...)
	return &out
}

// StartNewSale resets the cart to an empty shopping state, dropping the
// receipt and any round-up snapshot.
func (s *Session) StartNewSale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.state = State{Stage: StageShopping}
	s.persist()
}

// Items returns a copy of the current lines in insertion order.
func (s *Session) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.state.Items...)
}

// Stage returns the current lifecycle stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Stage
}

// Receipt returns the receipt of the completed sale, or nil.
func (s *Session) Receipt() *Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Receipt == nil {
		return nil
	}
	out := *s.state.Receipt
	out.Items = append([]Item(nil), s.state.Receipt.Items...)
	return &out
}

// persist writes the snapshot while the session lock is held. A failed write
// is logged, not fatal: the in-memory cart stays authoritative.
func (s *Session) persist() {
	if s.store == nil {
		return
	}
	if err := s.store.Save(&s.state); err != nil {
		log.Printf("cart: persist state: %v", err)
	}
}
