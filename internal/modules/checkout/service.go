package checkout

import (
	"context"
	"errors"

	"github.com/tillpoint/pos-backend/internal/modules/cart"
)

var (
	// ErrEmptyCart rejects a payment attempt with nothing to sell.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInsufficientCash rejects cash below the total due.
	ErrInsufficientCash = errors.New("cash given is less than the total due")
	// ErrCheckoutCancelled reports a payment that completed remotely after
	// the operator had already cancelled the checkout. The order exists on
	// the remote side; the cart was not completed.
	ErrCheckoutCancelled = errors.New("checkout was cancelled before the payment finished")
)

// OrderSubmitter is the slice of OrderClient the orchestrator needs.
type OrderSubmitter interface {
	SubmitCardOrder(ctx context.Context, items []OrderItem) error
	SubmitCashOrder(ctx context.Context, items []OrderItem) error
}

// Service drives a priced cart through payment: submit the order, and only
// on success complete the sale. A remote failure leaves the cart exactly as
// it was, still checking out.
type Service interface {
	PayByCard(ctx context.Context) (*cart.Receipt, error)
	PayByCash(ctx context.Context, cashGiven float64) (*cart.Receipt, error)
}

type service struct {
	session *cart.Session
	orders  OrderSubmitter
}

func NewService(session *cart.Session, orders OrderSubmitter) Service {
	return &service{session: session, orders: orders}
}

func (s *service) PayByCard(ctx context.Context) (*cart.Receipt, error) {
	items := orderItems(s.session.Items())
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	token := s.session.BeginCheckout()

	if err := s.orders.SubmitCardOrder(ctx, items); err != nil {
		return nil, err
	}
	receipt, ok := s.session.CompleteSaleIf(token, cart.PaymentCard, nil, nil)
	if !ok {
		return nil, ErrCheckoutCancelled
	}
	return receipt, nil
}

func (s *service) PayByCash(ctx context.Context, cashGiven float64) (*cart.Receipt, error) {
	items := orderItems(s.session.Items())
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	total := s.session.Total()
	if cashGiven < total {
		return nil, ErrInsufficientCash
	}
	change := cashGiven - total
	token := s.session.BeginCheckout()

	if err := s.orders.SubmitCashOrder(ctx, items); err != nil {
		return nil, err
	}
	receipt, ok := s.session.CompleteSaleIf(token, cart.PaymentCash, &cashGiven, &change)
	if !ok {
		return nil, ErrCheckoutCancelled
	}
	return receipt, nil
}

func orderItems(items []cart.Item) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	for _, item := range items {
		out = append(out, OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return out
}
