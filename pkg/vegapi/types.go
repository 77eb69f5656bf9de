package vegapi

// CartItemPayload is a cart row as the server returns it. UnitPrice and
// Subtotal are authoritative and merged over the optimistic row.
type CartItemPayload struct {
	ID          string  `json:"id"`
	VegetableID uint    `json:"vegetable_id"`
	Name        string  `json:"name"`
	ImageURL    string  `json:"image_url"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

// CartPayload is the server-owned cart collection.
type CartPayload struct {
	Items          []CartItemPayload      `json:"items"`
	TotalAmount    float64                `json:"total_amount"`
	Addresses      []AddressPayload       `json:"addresses"`
	PaymentMethods []PaymentMethodPayload `json:"payment_methods"`
}

type AddressPayload struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2"`
	City      string `json:"city"`
	Pincode   string `json:"pincode"`
	IsDefault bool   `json:"is_default"`
}

type PaymentMethodPayload struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Label     string `json:"label"`
	IsDefault bool   `json:"is_default"`
}

// WishlistItemPayload is a wishlist row as the server returns it.
type WishlistItemPayload struct {
	ID          string  `json:"id"`
	VegetableID uint    `json:"vegetable_id"`
	Name        string  `json:"name"`
	ImageURL    string  `json:"image_url"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
}

// WishlistPayload is the server-owned wishlist collection.
type WishlistPayload struct {
	Items []WishlistItemPayload `json:"items"`
}

// AddCartItemRequest adds (or merges into) a cart row.
type AddCartItemRequest struct {
	VegetableID uint `json:"vegetable_id"`
	Quantity    int  `json:"quantity"`
}

// UpdateCartItemRequest replaces a row's quantity.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// ToggleWishlistRequest flips wishlist membership.
type ToggleWishlistRequest struct {
	VegetableID uint `json:"vegetable_id"`
}

// TogglePayload reports the membership state after a toggle.
type TogglePayload struct {
	VegetableID uint `json:"vegetable_id"`
	Wishlisted  bool `json:"wishlisted"`
}

// AddWishlistItemRequest creates (or merges) a wishlist row. Used by the
// login-time merge, where a toggle would delete rows the server already
// has.
type AddWishlistItemRequest struct {
	VegetableID uint `json:"vegetable_id"`
}
