package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophstore/internal/client/client"
	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/client/store"
	"github.com/dmitrijs2005/gophstore/internal/logging"
)

// OrderService turns the cart into an order and reads orders back.
type OrderService interface {
	// Checkout submits the cart. The cart is cleared only after the
	// backend accepted the order; any failure before that leaves it as is.
	Checkout(ctx context.Context) (models.Order, error)
	List(ctx context.Context, offset int) ([]models.Order, error)
	// Find pages through the order list until it meets orderID.
	Find(ctx context.Context, orderID int64) (models.Order, error)
}

type orderService struct {
	client client.Client
	auth   *store.AuthStore
	cart   *store.CartStore
	log    logging.Logger
}

func NewOrderService(c client.Client, auth *store.AuthStore, cart *store.CartStore, log logging.Logger) OrderService {
	return &orderService{client: c, auth: auth, cart: cart, log: log}
}

func (s *orderService) Checkout(ctx context.Context) (models.Order, error) {
	// An expired access cookie is not a signed-out session: the transport
	// renews it with the refresh token on the first 401.
	if !s.auth.State().IsAuthenticated {
		return models.Order{}, ErrNotAuthenticated
	}

	lines := s.cart.Items()
	if len(lines) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	req := models.CreateOrderRequest{Items: make([]models.OrderItemRequest, 0, len(lines))}
	for _, l := range lines {
		req.Items = append(req.Items, models.OrderItemRequest{ProductID: l.Product.ID, Quantity: l.Quantity})
	}

	order, err := s.client.CreateOrder(ctx, req)
	if err != nil {
		return models.Order{}, fmt.Errorf("creating order: %w", err)
	}
	s.log.Info(ctx, "order created", "order_id", order.ID, "items", len(req.Items), "total", order.TotalPrice)

	if err := s.cart.ClearCart(ctx); err != nil {
		s.log.Error(ctx, "clearing cart after checkout", "order_id", order.ID, "error", err)
		return order, errors.Join(ErrCartNotCleared, err)
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, offset int) ([]models.Order, error) {
	orders, err := s.client.ListOrders(ctx, max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) Find(ctx context.Context, orderID int64) (models.Order, error) {
	offset := 0
	for {
		orders, err := s.List(ctx, offset)
		if err != nil {
			return models.Order{}, err
		}
		if len(orders) == 0 {
			return models.Order{}, fmt.Errorf("%w: #%d", ErrOrderNotFound, orderID)
		}
		for _, o := range orders {
			if o.ID == orderID {
				return o, nil
			}
		}
		offset += len(orders)
	}
}
