package models

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	CreatedAt   string  `json:"created_at,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

type ProductList struct {
	Total     int       `json:"total"`
	Page      int       `json:"page"`
	TotalPage int       `json:"total_page"`
	Products  []Product `json:"products"`
}

// CartLine is one product in the local cart. Product is the snapshot taken
// when the line was last written; its Stock is the ceiling for Quantity.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal is price times quantity.
func (l CartLine) Subtotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}
