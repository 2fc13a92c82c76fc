package models

import "strings"

// OrderStatus is the server-side order status. The backend is not consistent
// about case ("Pending" vs "pending"), so compare through Normalize.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusSuccess   OrderStatus = "success"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusExpired   OrderStatus = "expired"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Normalize() OrderStatus {
	return OrderStatus(strings.ToLower(strings.TrimSpace(string(s))))
}

func (s OrderStatus) IsPending() bool {
	return s.Normalize() == OrderStatusPending
}

// IsPaid reports paid or success.
func (s OrderStatus) IsPaid() bool {
	n := s.Normalize()
	return n == OrderStatusPaid || n == OrderStatusSuccess
}

// IsFailed reports failed, expired or cancelled.
func (s OrderStatus) IsFailed() bool {
	switch s.Normalize() {
	case OrderStatusFailed, OrderStatusExpired, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal is true for every status except pending.
func (s OrderStatus) IsTerminal() bool {
	return !s.IsPending()
}

func (s OrderStatus) String() string {
	return string(s)
}

type OrderItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Order struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"user_id,omitempty"`
	TotalPrice float64     `json:"total_price"`
	Status     OrderStatus `json:"status"`
	CreatedAt  string      `json:"created_at,omitempty"`
	UpdatedAt  string      `json:"updated_at,omitempty"`
	Items      []OrderItem `json:"order_items,omitempty"`
}

type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderRequest carries ids and quantities only; prices are computed
// by the order service.
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items"`
}

type OrderResponse struct {
	Order Order `json:"order"`
}

type OrdersResponse struct {
	Orders []Order `json:"orders"`
}
