package state

import (
	"sync"

	"github.com/freshveg/basket-agent/internal/app/model"
	"github.com/google/uuid"
)

// CartState is the canonical in-memory cart. Only the cart service and
// the sync service mutate it; everything else reads through selectors.
// Every mutation recomputes the derived aggregates before the lock is
// released, so a reader can never observe items and totals out of step.
//
// The version counter increments on every user-visible mutation and is
// used to discard stale server responses: a dispatch captures the
// version at apply time and its authoritative merge is dropped if the
// state has moved on since.
type CartState struct {
	mu             sync.RWMutex
	items          []model.CartItem
	addresses      []model.Address
	paymentMethods []model.PaymentMethod
	totalAmount    float64
	itemCount      int
	version        uint64
}

func NewCartState() *CartState {
	return &CartState{}
}

// Add merges quantity into an existing row for the same vegetable, or
// appends a new row. The merged quantity is capped at MaxQuantity.
// Returns the resulting row.
func (s *CartState) Add(veg model.Vegetable, quantity int) model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].VegetableID == veg.ID {
			merged := s.items[i].Quantity + quantity
			if merged > model.MaxQuantity {
				merged = model.MaxQuantity
			}
			s.items[i].Quantity = merged
			s.recomputeLocked()
			s.version++
			return s.items[i]
		}
	}

	item := model.CartItem{
		ID:          uuid.NewString(),
		VegetableID: veg.ID,
		Name:        veg.Name,
		ImageURL:    veg.ImageURL,
		Unit:        veg.Unit,
		UnitPrice:   veg.Price,
		Quantity:    quantity,
	}
	s.items = append(s.items, item)
	s.recomputeLocked()
	s.version++
	return s.items[len(s.items)-1]
}

// Remove drops the row for the vegetable. Removing an absent id is a
// no-op and reports false.
func (s *CartState) Remove(vegetableID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].VegetableID == vegetableID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.recomputeLocked()
			s.version++
			return true
		}
	}
	return false
}

// SetQuantity replaces the quantity of an existing row. Reports false
// when no row exists; the caller validates the range before this point.
func (s *CartState) SetQuantity(vegetableID uint, quantity int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].VegetableID == vegetableID {
			s.items[i].Quantity = quantity
			s.recomputeLocked()
			s.version++
			return true
		}
	}
	return false
}

// Replace swaps in a full collection, typically loaded from the server
// or the guest store.
func (s *CartState) Replace(items []model.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]model.CartItem, len(items))
	copy(s.items, items)
	s.recomputeLocked()
	s.version++
}

// SetCheckoutDetails replaces the addresses and payment methods carried
// on the cart for the checkout collaborator.
func (s *CartState) SetCheckoutDetails(addresses []model.Address, paymentMethods []model.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addresses = append([]model.Address(nil), addresses...)
	s.paymentMethods = append([]model.PaymentMethod(nil), paymentMethods...)
}

// MergeAuthoritative applies server-returned fields on top of the
// optimistic row, but only when the state version still matches the one
// captured at apply time. A merge never bumps the version: it is not a
// user-visible mutation and must not invalidate later in-flight merges.
func (s *CartState) MergeAuthoritative(vegetableID uint, serverID string, unitPrice float64, expectedVersion uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.version != expectedVersion {
		return false
	}
	for i := range s.items {
		if s.items[i].VegetableID == vegetableID {
			if serverID != "" {
				s.items[i].ID = serverID
			}
			if unitPrice > 0 {
				s.items[i].UnitPrice = unitPrice
			}
			s.recomputeLocked()
			return true
		}
	}
	return false
}

// Clear empties the cart, e.g. on logout.
func (s *CartState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.addresses = nil
	s.paymentMethods = nil
	s.recomputeLocked()
	s.version++
}

// Items returns a copy of the current rows.
func (s *CartState) Items() []model.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.CartItem, len(s.items))
	copy(items, s.items)
	return items
}

// Snapshot returns the rows together with the version they belong to.
func (s *CartState) Snapshot() ([]model.CartItem, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.CartItem, len(s.items))
	copy(items, s.items)
	return items, s.version
}

func (s *CartState) TotalAmount() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalAmount
}

func (s *CartState) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.itemCount
}

func (s *CartState) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *CartState) Addresses() []model.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Address(nil), s.addresses...)
}

func (s *CartState) PaymentMethods() []model.PaymentMethod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.PaymentMethod(nil), s.paymentMethods...)
}

// recomputeLocked refreshes subtotals, total amount and item count.
// Item count falls back to the row count when rows exist but their
// aggregate quantity is zero (malformed rows from an old snapshot).
func (s *CartState) recomputeLocked() {
	var total float64
	var count int
	for i := range s.items {
		s.items[i].Subtotal = s.items[i].UnitPrice * float64(s.items[i].Quantity)
		total += s.items[i].Subtotal
		count += s.items[i].Quantity
	}
	if count == 0 && len(s.items) > 0 {
		count = len(s.items)
	}
	s.totalAmount = total
	s.itemCount = count
}
