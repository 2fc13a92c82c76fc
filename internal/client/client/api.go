package client

import (
	"context"

	"github.com/dmitrijs2005/gophstore/internal/client/models"
)

// Client is the backend contract the services depend on.
type Client interface {
	Register(ctx context.Context, req models.RegisterRequest) (models.MessageResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (models.TokenResponse, error)
	OAuthURL(provider string) (string, error)
	ListProducts(ctx context.Context, page int) (models.ProductList, error)
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (models.Order, error)
	ListOrders(ctx context.Context, offset int) ([]models.Order, error)
	GetPaymentByOrderID(ctx context.Context, orderID int64) (models.Payment, error)
	InitiatePayment(ctx context.Context, req models.InitiatePaymentRequest) (models.InitiatePaymentResponse, error)
	Transaction(ctx context.Context, req models.PaymentTransaction) (models.MessageResponse, error)
}

var _ Client = (*HTTPClient)(nil)
