package state

import (
	"sync"

	"github.com/freshveg/basket-agent/internal/app/model"
	"github.com/google/uuid"
)

// WishlistState is the canonical in-memory wishlist. The membership
// index is a derived cache over the item list that answers "is X
// wishlisted" in O(1) for list screens. It is rebuilt inside the same
// critical section as every item mutation, so the two can never
// diverge.
type WishlistState struct {
	mu      sync.RWMutex
	items   []model.WishlistItem
	index   map[uint]bool
	version uint64
}

func NewWishlistState() *WishlistState {
	return &WishlistState{index: make(map[uint]bool)}
}

// Toggle flips membership for the vegetable: present removes, absent
// adds. Reports whether the vegetable is a member after the call.
func (s *WishlistState) Toggle(veg model.Vegetable) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].VegetableID == veg.ID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.rebuildIndexLocked()
			s.version++
			return false
		}
	}

	s.items = append(s.items, model.WishlistItem{
		ID:          uuid.NewString(),
		VegetableID: veg.ID,
		Name:        veg.Name,
		ImageURL:    veg.ImageURL,
		Unit:        veg.Unit,
		UnitPrice:   veg.Price,
	})
	s.rebuildIndexLocked()
	s.version++
	return true
}

// Contains answers membership from the derived index.
func (s *WishlistState) Contains(vegetableID uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index[vegetableID]
}

// Replace swaps in a full collection.
func (s *WishlistState) Replace(items []model.WishlistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]model.WishlistItem, len(items))
	copy(s.items, items)
	s.rebuildIndexLocked()
	s.version++
}

// Clear empties the wishlist, e.g. on logout.
func (s *WishlistState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.rebuildIndexLocked()
	s.version++
}

// Items returns a copy of the current rows.
func (s *WishlistState) Items() []model.WishlistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.WishlistItem, len(s.items))
	copy(items, s.items)
	return items
}

// Snapshot returns the rows together with the version they belong to.
func (s *WishlistState) Snapshot() ([]model.WishlistItem, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.WishlistItem, len(s.items))
	copy(items, s.items)
	return items, s.version
}

func (s *WishlistState) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *WishlistState) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *WishlistState) rebuildIndexLocked() {
	index := make(map[uint]bool, len(s.items))
	for i := range s.items {
		index[s.items[i].VegetableID] = true
	}
	s.index = index
}
