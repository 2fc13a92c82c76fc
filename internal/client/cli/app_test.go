package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/client/client"
	"github.com/dmitrijs2005/gophstore/internal/client/config"
	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shopBackend is a fake shop API with a two-product catalogue. It accepts
// one order at a time and marks it paid once a payment was initiated.
type shopBackend struct {
	mu        sync.Mutex
	revoked   bool
	staleAt   bool // login hands out an already expired access token
	renewable bool // the refresh endpoint accepts refresh-1
	refreshes int
	order     *models.Order
	ordered   []models.OrderItemRequest
	initiated []models.InitiatePaymentRequest
}

var catalogue = []models.Product{
	{ID: 1, Name: "Mug", Price: 1000, Stock: 5},
	{ID: 2, Name: "Pen", Price: 250, Stock: 0},
}

func newShopBackend(t *testing.T) (*shopBackend, *httptest.Server) {
	t.Helper()
	b := &shopBackend{}

	r := chi.NewRouter()
	r.Post("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "invalid email or password"})
			return
		}
		b.mu.Lock()
		ttl := time.Hour
		if b.staleAt {
			ttl = -time.Minute
		}
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, models.TokenResponse{
			Token:        "Bearer access-1",
			ExpiredAt:    time.Now().Add(ttl).UTC().Format(time.RFC3339),
			RefreshToken: "refresh-1",
			Role:         "user",
		})
	})
	r.Get("/api/v1/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if !b.renewable || r.Header.Get(common.AuthorizationHeaderName) != "Bearer refresh-1" {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "invalid refresh token"})
			return
		}
		b.refreshes++
		writeJSON(w, http.StatusOK, models.TokenResponse{
			Token:        "Bearer access-1",
			ExpiredAt:    time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
			RefreshToken: "refresh-1",
			Role:         "user",
		})
	})
	r.Get("/product/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.ProductList{Total: 2, Page: 1, TotalPage: 1, Products: catalogue})
	})

	r.Group(func(r chi.Router) {
		r.Use(b.requireAuth)
		r.Post("/order/", func(w http.ResponseWriter, r *http.Request) {
			var req models.CreateOrderRequest
			_ = json.NewDecoder(r.Body).Decode(&req)

			b.mu.Lock()
			defer b.mu.Unlock()
			b.ordered = req.Items
			o := models.Order{ID: 7, Status: "Pending", CreatedAt: "2026-10-15T10:00:00Z"}
			for _, it := range req.Items {
				o.TotalPrice += catalogue[it.ProductID-1].Price * float64(it.Quantity)
			}
			b.order = &o
			writeJSON(w, http.StatusCreated, models.OrderResponse{Order: o})
		})
		r.Get("/order/", func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			resp := models.OrdersResponse{Orders: []models.Order{}}
			if b.order != nil && r.URL.Query().Get("offset") == "0" {
				resp.Orders = append(resp.Orders, *b.order)
			}
			writeJSON(w, http.StatusOK, resp)
		})
		r.Get("/payment/order/{id}", func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			if b.order == nil || chi.URLParam(r, "id") != "7" {
				writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "payment not found"})
				return
			}
			writeJSON(w, http.StatusOK, models.Payment{ID: 3, OrderID: 7, Amount: b.order.TotalPrice, Status: "pending"})
		})
		r.Post("/payment/initiate", func(w http.ResponseWriter, r *http.Request) {
			var req models.InitiatePaymentRequest
			_ = json.NewDecoder(r.Body).Decode(&req)

			b.mu.Lock()
			defer b.mu.Unlock()
			b.initiated = append(b.initiated, req)
			b.order.Status = "paid"
			writeJSON(w, http.StatusOK, models.InitiatePaymentResponse{PaymentID: 3, Token: "snap-token"})
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *shopBackend) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		ok := !b.revoked && r.Header.Get(common.AuthorizationHeaderName) == "Bearer access-1"
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newTestApp builds an App on a fresh database that reads input and
// writes everything it prints, REPL output included, to the returned buffer.
func newTestApp(t *testing.T, srv *httptest.Server, passphrase, input string) (*App, *syncBuffer) {
	t.Helper()
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{
		APIURL:            srv.URL,
		RequestTimeout:    5 * time.Second,
		SnapURL:           "https://pay.example.test/snap",
		StoragePassphrase: passphrase,
	}

	out := &syncBuffer{}
	a, err := newApp(ctx, cfg, logging.Nop(), db, bufio.NewReader(strings.NewReader(input)), out)
	require.NoError(t, err)

	orig := printlnFn
	printlnFn = func(args ...any) (int, error) { return fmt.Fprintln(out, args...) }
	t.Cleanup(func() { printlnFn = orig })

	origPW := getPassword
	getPassword = func(w io.Writer, prompt string) ([]byte, error) { return []byte("secret"), nil }
	t.Cleanup(func() { getPassword = origPW })

	return a, out
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func script(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestApp_BrowseCheckoutAndPay(t *testing.T) {
	for _, passphrase := range []string{"", "correct horse"} {
		t.Run(fmt.Sprintf("passphrase=%q", passphrase), func(t *testing.T) {
			b, srv := newShopBackend(t)
			a, out := newTestApp(t, srv, passphrase, script(
				"products",
				"add 2",
				"add 1 3",
				"add 1 5",
				"login",
				"ann@example.com",
				"cart",
				"checkout",
				"y",
				"success",
				"orders",
				"exit",
			))

			runREPL(context.Background(), a, a.status, a.reader)

			got := out.String()
			assert.Contains(t, got, "Mug")
			assert.Contains(t, got, "out of stock")
			assert.Contains(t, got, "Error: validation error: product is out of stock")
			assert.Contains(t, got, "Mug: 3 in cart")
			assert.Contains(t, got, "Mug: 5 in cart\nOnly 5 in stock.")
			assert.Contains(t, got, "Items: 5  Total: 5000.00")
			assert.Contains(t, got, "shop (ann@example.com, cart 5)> ")
			assert.Contains(t, got, "Order #7 placed, total 5000.00.")
			assert.Contains(t, got, "https://pay.example.test/snap/snap-token")
			assert.Contains(t, got, "Payment received. Thank you!")

			b.mu.Lock()
			defer b.mu.Unlock()
			assert.Equal(t, []models.OrderItemRequest{{ProductID: 1, Quantity: 5}}, b.ordered)
			require.Len(t, b.initiated, 1)
			assert.Equal(t, "ann@example.com", b.initiated[0].CustomerEmail)
			assert.Equal(t, "ann", b.initiated[0].CustomerName)

			assert.Zero(t, a.cart.TotalItems())
			assert.NotContains(t, got, "cart 0")
		})
	}
}

func TestApp_CheckoutNeedsLogin(t *testing.T) {
	b, srv := newShopBackend(t)
	a, out := newTestApp(t, srv, "", script("products", "add 1", "checkout", "exit"))

	runREPL(context.Background(), a, a.status, a.reader)

	assert.Contains(t, out.String(), "not signed in, please log in first")
	assert.Equal(t, 1, a.cart.TotalItems())
	assert.Nil(t, b.order)
}

func TestApp_PayLaterFromOrderList(t *testing.T) {
	_, srv := newShopBackend(t)
	a, out := newTestApp(t, srv, "", script(
		"login", "ann@example.com",
		"products", "add 1 2",
		"checkout", "n",
		"show 7",
		"pay 7", "pending",
		"exit",
	))

	runREPL(context.Background(), a, a.status, a.reader)

	got := out.String()
	assert.Contains(t, got, "You can pay later with 'pay 7'.")
	assert.Contains(t, got, "Awaiting payment of 2000.00.")
	assert.Contains(t, got, "https://pay.example.test/snap/snap-token")
}

func TestApp_ExpiredSessionLogsOut(t *testing.T) {
	b, srv := newShopBackend(t)
	a, out := newTestApp(t, srv, "", script("ann@example.com", "orders", "exit"))

	// Login succeeds; every later authenticated call is rejected and the
	// refresh endpoint refuses too.
	ctx := context.Background()
	require.NoError(t, a.Login(ctx))
	b.mu.Lock()
	b.revoked = true
	b.mu.Unlock()

	runREPL(ctx, a, a.status, a.reader)

	got := out.String()
	assert.Contains(t, got, "Your session has expired. Please log in again.")
	assert.Contains(t, got, "Error:")
	assert.False(t, a.auth.State().IsAuthenticated)
	assert.Contains(t, a.status(), "guest")
}

func TestApp_CheckoutRenewsExpiredAccessToken(t *testing.T) {
	b, srv := newShopBackend(t)
	b.staleAt = true
	b.renewable = true
	a, out := newTestApp(t, srv, "", script(
		"login", "ann@example.com",
		"products", "add 1 2",
		"checkout", "n",
		"exit",
	))

	runREPL(context.Background(), a, a.status, a.reader)

	got := out.String()
	assert.Contains(t, got, "Order #7 placed, total 2000.00.")
	assert.NotContains(t, got, "not signed in")
	assert.NotContains(t, got, "Your session has expired.")
	assert.True(t, a.auth.State().IsAuthenticated)
	assert.Zero(t, a.cart.TotalItems())

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Equal(t, 1, b.refreshes)
	assert.Equal(t, []models.OrderItemRequest{{ProductID: 1, Quantity: 2}}, b.ordered)
}

func TestApp_CommandUsage(t *testing.T) {
	_, srv := newShopBackend(t)
	a, _ := newTestApp(t, srv, "", "")
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
	}{
		{"add without id", func() error { return a.Add(ctx, nil) }},
		{"add bad quantity", func() error { return a.Add(ctx, []string{"1", "x"}) }},
		{"add unknown product", func() error { return a.Add(ctx, []string{"99"}) }},
		{"update missing quantity", func() error { return a.Update(ctx, []string{"1"}) }},
		{"update line not in cart", func() error { return a.Update(ctx, []string{"1", "2"}) }},
		{"remove bad id", func() error { return a.Remove(ctx, []string{"-3"}) }},
		{"products bad page", func() error { return a.Products(ctx, []string{"two"}) }},
		{"orders negative offset", func() error { return a.Orders(ctx, []string{"-1"}) }},
		{"pay without order", func() error { return a.Pay(ctx, nil) }},
		{"oauth without provider", func() error { return a.OAuth(ctx, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), common.ErrorValidation)
		})
	}
}

func TestApp_UpdateAndRemove(t *testing.T) {
	_, srv := newShopBackend(t)
	a, out := newTestApp(t, srv, "", "")
	ctx := context.Background()

	require.NoError(t, a.Products(ctx, nil))
	require.NoError(t, a.Add(ctx, []string{"1", "2"}))

	require.NoError(t, a.Update(ctx, []string{"1", "9"}))
	line, ok := a.cart.GetItem(1)
	require.True(t, ok)
	assert.Equal(t, 5, line.Quantity)
	assert.Contains(t, out.String(), "Only 5 in stock.")

	require.NoError(t, a.Update(ctx, []string{"1", "0"}))
	_, ok = a.cart.GetItem(1)
	assert.False(t, ok)

	require.NoError(t, a.Add(ctx, []string{"1"}))
	require.NoError(t, a.Remove(ctx, []string{"1"}))
	require.NoError(t, a.Cart(ctx))
	assert.Contains(t, out.String(), "Your cart is empty.")
}

func TestApp_RegisterPasswordMismatch(t *testing.T) {
	_, srv := newShopBackend(t)
	a, _ := newTestApp(t, srv, "", script("Ann Example", "ann@example.com"))

	calls := 0
	getPassword = func(io.Writer, string) ([]byte, error) {
		calls++
		return []byte(fmt.Sprintf("secret%d", calls)), nil
	}

	err := a.Register(context.Background())
	assert.ErrorIs(t, err, errPasswordMismatch)
	assert.Equal(t, 2, calls)
}

func TestApp_OAuthCancelled(t *testing.T) {
	_, srv := newShopBackend(t)
	a, out := newTestApp(t, srv, "", script(""))

	require.NoError(t, a.OAuth(context.Background(), []string{"github"}))
	assert.Contains(t, out.String(), srv.URL+"/api/v1/auth/github")
	assert.Contains(t, out.String(), "Cancelled.")
}
