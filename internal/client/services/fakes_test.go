package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/client/gateway"
	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/gophstore/internal/client/store"
	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- fake client ----

// fakeClient implements client.Client. Unset function fields fail the call
// with errUnexpected.
type fakeClient struct {
	mu sync.Mutex

	RegisterFn        func(models.RegisterRequest) (models.MessageResponse, error)
	LoginFn           func(models.LoginRequest) (models.TokenResponse, error)
	ListProductsFn    func(page int) (models.ProductList, error)
	CreateOrderFn     func(models.CreateOrderRequest) (models.Order, error)
	ListOrdersFn      func(offset int) ([]models.Order, error)
	GetPaymentFn      func(orderID int64) (models.Payment, error)
	InitiatePaymentFn func(models.InitiatePaymentRequest) (models.InitiatePaymentResponse, error)

	RegisterCalls   []models.RegisterRequest
	LoginCalls      []models.LoginRequest
	OrderCalls      []models.CreateOrderRequest
	ListOrderCalls  []int
	PaymentCalls    int
	InitiateCalls   []models.InitiatePaymentRequest
	ProductsCalls   []int
	TransactionCall []models.PaymentTransaction
}

type unexpectedCall string

func (e unexpectedCall) Error() string { return "unexpected call: " + string(e) }

func (f *fakeClient) Register(ctx context.Context, req models.RegisterRequest) (models.MessageResponse, error) {
	f.mu.Lock()
	f.RegisterCalls = append(f.RegisterCalls, req)
	f.mu.Unlock()
	if f.RegisterFn == nil {
		return models.MessageResponse{}, unexpectedCall("Register")
	}
	return f.RegisterFn(req)
}

func (f *fakeClient) Login(ctx context.Context, req models.LoginRequest) (models.TokenResponse, error) {
	f.mu.Lock()
	f.LoginCalls = append(f.LoginCalls, req)
	f.mu.Unlock()
	if f.LoginFn == nil {
		return models.TokenResponse{}, unexpectedCall("Login")
	}
	return f.LoginFn(req)
}

func (f *fakeClient) OAuthURL(provider string) (string, error) {
	return "http://shop.local/api/v1/auth/" + provider, nil
}

func (f *fakeClient) ListProducts(ctx context.Context, page int) (models.ProductList, error) {
	f.mu.Lock()
	f.ProductsCalls = append(f.ProductsCalls, page)
	f.mu.Unlock()
	if f.ListProductsFn == nil {
		return models.ProductList{}, unexpectedCall("ListProducts")
	}
	return f.ListProductsFn(page)
}

func (f *fakeClient) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (models.Order, error) {
	f.mu.Lock()
	f.OrderCalls = append(f.OrderCalls, req)
	f.mu.Unlock()
	if f.CreateOrderFn == nil {
		return models.Order{}, unexpectedCall("CreateOrder")
	}
	return f.CreateOrderFn(req)
}

func (f *fakeClient) ListOrders(ctx context.Context, offset int) ([]models.Order, error) {
	f.mu.Lock()
	f.ListOrderCalls = append(f.ListOrderCalls, offset)
	f.mu.Unlock()
	if f.ListOrdersFn == nil {
		return nil, unexpectedCall("ListOrders")
	}
	return f.ListOrdersFn(offset)
}

func (f *fakeClient) GetPaymentByOrderID(ctx context.Context, orderID int64) (models.Payment, error) {
	f.mu.Lock()
	f.PaymentCalls++
	f.mu.Unlock()
	if f.GetPaymentFn == nil {
		return models.Payment{}, unexpectedCall("GetPaymentByOrderID")
	}
	return f.GetPaymentFn(orderID)
}

func (f *fakeClient) InitiatePayment(ctx context.Context, req models.InitiatePaymentRequest) (models.InitiatePaymentResponse, error) {
	f.mu.Lock()
	f.InitiateCalls = append(f.InitiateCalls, req)
	f.mu.Unlock()
	if f.InitiatePaymentFn == nil {
		return models.InitiatePaymentResponse{}, unexpectedCall("InitiatePayment")
	}
	return f.InitiatePaymentFn(req)
}

func (f *fakeClient) Transaction(ctx context.Context, req models.PaymentTransaction) (models.MessageResponse, error) {
	f.mu.Lock()
	f.TransactionCall = append(f.TransactionCall, req)
	f.mu.Unlock()
	return models.MessageResponse{Message: "ok"}, nil
}

// ---- fake widget ----

// fakeWidget records Open calls and keeps the callbacks so the test can
// fire an outcome later, like a real popup would.
type fakeWidget struct {
	mu      sync.Mutex
	tokens  []string
	cb      gateway.Callbacks
	openErr error
	// fire, when set, runs synchronously inside Open.
	fire func(cb gateway.Callbacks)
}

func (w *fakeWidget) Open(ctx context.Context, token string, cb gateway.Callbacks) error {
	w.mu.Lock()
	w.tokens = append(w.tokens, token)
	w.cb = cb
	fire, err := w.fire, w.openErr
	w.mu.Unlock()

	if err != nil {
		return err
	}
	if fire != nil {
		fire(cb)
	}
	return nil
}

func (w *fakeWidget) callbacks() gateway.Callbacks {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cb
}

// ---- stores ----

type metaRepo struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (r *metaRepo) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.m[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return v, nil
}

func (r *metaRepo) Set(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[key] = value
	return nil
}

func (r *metaRepo) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, key)
	return nil
}

type stores struct {
	jar  *cookies.MemoryJar
	auth *store.AuthStore
	cart *store.CartStore
}

func newStores(t *testing.T) stores {
	t.Helper()
	ctx := context.Background()
	p := store.NewMetadataPersister(&metaRepo{m: map[string][]byte{}})
	jar := cookies.NewMemoryJar()

	auth, err := store.NewAuthStore(ctx, jar, p, false)
	require.NoError(t, err)
	cart, err := store.NewCartStore(ctx, p)
	require.NoError(t, err)
	return stores{jar: jar, auth: auth, cart: cart}
}

func (s stores) signIn(t *testing.T, user *models.User) {
	t.Helper()
	tr := models.TokenResponse{
		Token:        "access-1",
		ExpiredAt:    time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		RefreshToken: "refresh-1",
		Role:         "user",
	}
	require.NoError(t, s.auth.Login(context.Background(), tr, user))
}

func nopLog() logging.Logger { return logging.Nop() }
