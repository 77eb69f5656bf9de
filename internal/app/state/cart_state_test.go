package state

import (
	"testing"

	"github.com/freshveg/basket-agent/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func carrot() model.Vegetable {
	return model.Vegetable{ID: 1, Name: "Carrot", Unit: "500 g", Price: 10}
}

func spinach() model.Vegetable {
	return model.Vegetable{ID: 2, Name: "Spinach", Unit: "1 bunch", Price: 25}
}

func assertCartInvariants(t *testing.T, s *CartState) {
	t.Helper()

	items := s.Items()
	var total float64
	var count int
	for _, item := range items {
		assert.Equal(t, item.UnitPrice*float64(item.Quantity), item.Subtotal)
		total += item.Subtotal
		count += item.Quantity
	}
	assert.Equal(t, total, s.TotalAmount())
	if count > 0 {
		assert.Equal(t, count, s.ItemCount())
	}

	seen := make(map[uint]bool)
	for _, item := range items {
		assert.False(t, seen[item.VegetableID], "duplicate vegetable %d", item.VegetableID)
		seen[item.VegetableID] = true
	}
}

func TestCartState_AddMergesQuantity(t *testing.T) {
	s := NewCartState()

	s.Add(carrot(), 1)
	s.Add(carrot(), 2)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 30.0, items[0].Subtotal)
	assert.Equal(t, 30.0, s.TotalAmount())
	assertCartInvariants(t, s)
}

func TestCartState_AddCapsAtMaxQuantity(t *testing.T) {
	s := NewCartState()

	s.Add(carrot(), 60)
	s.Add(carrot(), 60)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, model.MaxQuantity, items[0].Quantity)
	assertCartInvariants(t, s)
}

func TestCartState_TotalAcrossItems(t *testing.T) {
	s := NewCartState()

	s.Add(carrot(), 2)
	s.Add(spinach(), 3)

	assert.Equal(t, 2*10.0+3*25.0, s.TotalAmount())
	assert.Equal(t, 5, s.ItemCount())
	assertCartInvariants(t, s)
}

func TestCartState_RemoveAbsentIsNoop(t *testing.T) {
	s := NewCartState()
	s.Add(carrot(), 2)
	version := s.Version()

	removed := s.Remove(999)

	assert.False(t, removed)
	assert.Equal(t, version, s.Version())
	assert.Len(t, s.Items(), 1)
}

func TestCartState_Remove(t *testing.T) {
	s := NewCartState()
	s.Add(carrot(), 2)
	s.Add(spinach(), 1)

	require.True(t, s.Remove(carrot().ID))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, spinach().ID, items[0].VegetableID)
	assert.Equal(t, 25.0, s.TotalAmount())
	assertCartInvariants(t, s)
}

func TestCartState_SetQuantity(t *testing.T) {
	s := NewCartState()
	s.Add(carrot(), 2)

	require.True(t, s.SetQuantity(carrot().ID, 5))

	items := s.Items()
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 50.0, s.TotalAmount())
	assertCartInvariants(t, s)
}

func TestCartState_SetQuantityUnknownItem(t *testing.T) {
	s := NewCartState()

	assert.False(t, s.SetQuantity(999, 5))
	assert.Empty(t, s.Items())
}

func TestCartState_ItemCountFallsBackToRowCount(t *testing.T) {
	s := NewCartState()

	// Malformed rows from an old snapshot: quantity zero.
	s.Replace([]model.CartItem{
		{VegetableID: 1, Name: "Carrot", UnitPrice: 10, Quantity: 0},
		{VegetableID: 2, Name: "Spinach", UnitPrice: 25, Quantity: 0},
	})

	assert.Equal(t, 2, s.ItemCount())
	assert.Equal(t, 0.0, s.TotalAmount())
}

func TestCartState_MergeAuthoritative(t *testing.T) {
	s := NewCartState()
	s.Add(carrot(), 2)
	_, version := s.Snapshot()

	require.True(t, s.MergeAuthoritative(carrot().ID, "srv-1", 12, version))

	items := s.Items()
	assert.Equal(t, "srv-1", items[0].ID)
	assert.Equal(t, 12.0, items[0].UnitPrice)
	assert.Equal(t, 24.0, items[0].Subtotal)
	assert.Equal(t, 24.0, s.TotalAmount())
	// A merge is not a user-visible mutation.
	assert.Equal(t, version, s.Version())
}

func TestCartState_MergeDiscardedWhenStale(t *testing.T) {
	s := NewCartState()
	s.Add(carrot(), 2)
	_, version := s.Snapshot()

	// A newer mutation lands before the confirmation arrives.
	s.Add(spinach(), 1)

	assert.False(t, s.MergeAuthoritative(carrot().ID, "srv-1", 12, version))
	assert.Equal(t, 10.0, s.Items()[0].UnitPrice)
}

func TestCartState_Replace(t *testing.T) {
	s := NewCartState()
	s.Add(carrot(), 1)

	s.Replace([]model.CartItem{
		{ID: "srv-9", VegetableID: 7, Name: "Okra", UnitPrice: 40, Quantity: 2},
	})

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, uint(7), items[0].VegetableID)
	assert.Equal(t, 80.0, s.TotalAmount())
	assertCartInvariants(t, s)
}

func TestCartState_Clear(t *testing.T) {
	s := NewCartState()
	s.Add(carrot(), 2)

	s.Clear()

	assert.Empty(t, s.Items())
	assert.Equal(t, 0.0, s.TotalAmount())
	assert.Equal(t, 0, s.ItemCount())
}
