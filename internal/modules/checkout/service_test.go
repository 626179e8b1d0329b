package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/pos-backend/internal/modules/cart"
	"github.com/tillpoint/pos-backend/internal/modules/catalog"
)

type mockOrders struct {
	cardErr   error
	cashErr   error
	cardCalls [][]OrderItem
	cashCalls [][]OrderItem
	onSubmit  func()
}

func (m *mockOrders) SubmitCardOrder(_ context.Context, items []OrderItem) error {
	m.cardCalls = append(m.cardCalls, items)
	if m.onSubmit != nil {
		m.onSubmit()
	}
	return m.cardErr
}

func (m *mockOrders) SubmitCashOrder(_ context.Context, items []OrderItem) error {
	m.cashCalls = append(m.cashCalls, items)
	if m.onSubmit != nil {
		m.onSubmit()
	}
	return m.cashErr
}

func sessionWithItems(t *testing.T) *cart.Session {
	t.Helper()
	s, err := cart.NewSession(nil)
	require.NoError(t, err)
	s.AddItem(&catalog.Product{ID: 1, Name: "Coca Cola", SKU: "BEV001", Price: 2.50})
	s.SetQuantity(1, 2)
	s.AddItem(&catalog.Product{ID: 2, Name: "Potato Chips", SKU: "SNK001", Price: 1.99})
	return s
}

func TestPayByCard_Success(t *testing.T) {
	session := sessionWithItems(t)
	orders := &mockOrders{}
	svc := NewService(session, orders)

	receipt, err := svc.PayByCard(context.Background())
	require.NoError(t, err)
	require.NotNil(t, receipt)

	assert.Equal(t, cart.PaymentCard, receipt.PaymentMethod)
	assert.Nil(t, receipt.CashGiven)
	assert.InDelta(t, 6.99, receipt.Total, 1e-9)
	assert.Equal(t, cart.StageCompleted, session.Stage())

	require.Len(t, orders.cardCalls, 1)
	assert.Equal(t, []OrderItem{
		{ProductID: 1, Quantity: 2, Price: 2.50},
		{ProductID: 2, Quantity: 1, Price: 1.99},
	}, orders.cardCalls[0])
}

func TestPayByCard_RemoteFailureLeavesCartUntouched(t *testing.T) {
	session := sessionWithItems(t)
	orders := &mockOrders{cardErr: &RemoteError{Status: 400, Messages: []string{"invalid card"}}}
	svc := NewService(session, orders)

	before := session.Items()
	_, err := svc.PayByCard(context.Background())

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, []string{"invalid card"}, remote.Messages)

	assert.Equal(t, cart.StageCheckingOut, session.Stage())
	assert.Equal(t, before, session.Items())
	assert.Nil(t, session.Receipt())
}

func TestPayByCard_EmptyCart(t *testing.T) {
	session, err := cart.NewSession(nil)
	require.NoError(t, err)
	svc := NewService(session, &mockOrders{})

	_, err = svc.PayByCard(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, cart.StageShopping, session.Stage())
}

func TestPayByCard_CancelledMidFlightIsDropped(t *testing.T) {
	session := sessionWithItems(t)
	orders := &mockOrders{}
	// The operator cancels while the order call is in flight; the late
	// success must not complete the sale.
	orders.onSubmit = session.CancelCheckout
	svc := NewService(session, orders)

	_, err := svc.PayByCard(context.Background())
	assert.ErrorIs(t, err, ErrCheckoutCancelled)
	assert.Equal(t, cart.StageShopping, session.Stage())
	assert.Nil(t, session.Receipt())
}

func TestPayByCash_Success(t *testing.T) {
	session := sessionWithItems(t)
	orders := &mockOrders{}
	svc := NewService(session, orders)

	receipt, err := svc.PayByCash(context.Background(), 10.00)
	require.NoError(t, err)

	assert.Equal(t, cart.PaymentCash, receipt.PaymentMethod)
	require.NotNil(t, receipt.CashGiven)
	assert.Equal(t, 10.00, *receipt.CashGiven)
	require.NotNil(t, receipt.Change)
	assert.InDelta(t, 3.01, *receipt.Change, 1e-9)
	assert.Equal(t, cart.StageCompleted, session.Stage())
	require.Len(t, orders.cashCalls, 1)
}

func TestPayByCash_InsufficientCash(t *testing.T) {
	session := sessionWithItems(t)
	orders := &mockOrders{}
	svc := NewService(session, orders)

	_, err := svc.PayByCash(context.Background(), 5.00)
	assert.ErrorIs(t, err, ErrInsufficientCash)
	assert.Empty(t, orders.cashCalls) // rejected before any network call
	assert.Nil(t, session.Receipt())
}

func TestPayByCash_RemoteFailureLeavesCartUntouched(t *testing.T) {
	session := sessionWithItems(t)
	orders := &mockOrders{cashErr: &RemoteError{Status: 500, Messages: []string{"order service down"}}}
	svc := NewService(session, orders)

	_, err := svc.PayByCash(context.Background(), 10.00)
	require.Error(t, err)
	assert.Equal(t, cart.StageCheckingOut, session.Stage())
	assert.Nil(t, session.Receipt())
}
