package model

// WishlistItem is one row of the wishlist, unique by VegetableID.
// Presence is boolean membership; there is no quantity.
type WishlistItem struct {
	ID          string  `json:"id"` // local uuid until the server assigns one
	VegetableID uint    `json:"vegetable_id"`
	Name        string  `json:"name"`
	ImageURL    string  `json:"image_url,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
}
