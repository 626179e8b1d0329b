package cart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/pos-backend/internal/modules/catalog"
)

func tempStore(t *testing.T) Store {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "cart-state.json"))
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	store := tempStore(t)
	state, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	store := tempStore(t)
	in := &State{
		Items: []Item{
			{ProductID: 1, Name: "Coca Cola", SKU: "BEV001", Price: 2.50, Quantity: 2},
		},
		Stage:          StageCheckingOut,
		OriginalPrices: map[int64]float64{1: 2.50},
	}
	require.NoError(t, store.Save(in))

	out, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in.Items, out.Items)
	assert.Equal(t, StageCheckingOut, out.Stage)
	assert.Equal(t, in.OriginalPrices, out.OriginalPrices)
}

func TestFileStore_LoadCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart-state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
}

func TestSession_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart-state.json")

	first, err := NewSession(NewFileStore(path))
	require.NoError(t, err)
	first.AddItem(&catalog.Product{ID: 1, Name: "Coca Cola", SKU: "BEV001", Price: 2.50})
	first.SetQuantity(1, 3)
	first.RoundUp()
	first.BeginCheckout()

	second, err := NewSession(NewFileStore(path))
	require.NoError(t, err)

	assert.Equal(t, first.Items(), second.Items())
	assert.Equal(t, StageCheckingOut, second.Stage())

	// The round-up snapshot survived too: revert restores the add-time price.
	second.RevertRoundUp()
	assert.Equal(t, 2.50, second.Items()[0].Price)
}

func TestSession_ReceiptSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart-state.json")

	first, err := NewSession(NewFileStore(path))
	require.NoError(t, err)
	first.AddItem(&catalog.Product{ID: 1, Name: "Coca Cola", SKU: "BEV001", Price: 2.50})
	receipt := first.CompleteSale(PaymentCard, nil, nil)

	second, err := NewSession(NewFileStore(path))
	require.NoError(t, err)

	restored := second.Receipt()
	require.NotNil(t, restored)
	assert.Equal(t, receipt.ReceiptNumber, restored.ReceiptNumber)
	assert.Equal(t, StageCompleted, second.Stage())
}
