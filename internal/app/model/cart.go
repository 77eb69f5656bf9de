package model

// Quantity bounds for a single cart row.
const (
	MinQuantity = 1
	MaxQuantity = 99
)

// Vegetable is the product descriptor a mutation carries. The list
// screens hand it over so guest rows can render without a catalog
// lookup.
type Vegetable struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	ImageURL string  `json:"image_url,omitempty"`
	Unit     string  `json:"unit,omitempty"` // e.g. "500 g", "1 bunch"
	Price    float64 `json:"price"`
}

// CartItem is one row of the cart, unique by VegetableID. Subtotal is
// always UnitPrice * Quantity; it is recomputed by the state container
// and never written independently.
type CartItem struct {
	ID          string  `json:"id"` // local uuid until the server assigns one
	VegetableID uint    `json:"vegetable_id"`
	Name        string  `json:"name"`
	ImageURL    string  `json:"image_url,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

// Address is carried on the cart for the checkout collaborator.
type Address struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2,omitempty"`
	City      string `json:"city"`
	Pincode   string `json:"pincode"`
	IsDefault bool   `json:"is_default"`
}

// PaymentMethod is carried on the cart for the checkout collaborator.
type PaymentMethod struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"` // card, upi, cod
	Label     string `json:"label"`
	IsDefault bool   `json:"is_default"`
}

// BadgeUpdate is the aggregate view pushed to UI badges after every
// mutation.
type BadgeUpdate struct {
	CartCount     int     `json:"cart_count"`
	CartTotal     float64 `json:"cart_total"`
	WishlistCount int     `json:"wishlist_count"`
}
