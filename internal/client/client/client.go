package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	registerPath     = "/api/v1/auth/register"
	loginPath        = "/api/v1/auth/login"
	refreshTokenPath = "/api/v1/auth/refresh-token"
	oauthPathPrefix  = "/api/v1/auth/"
	productsPath     = "/product/"
	ordersPath       = "/order/"
	paymentOrderPath = "/payment/order/"
	initiatePath     = "/payment/initiate"
	transactionPath  = "/payment/transaction"
)

const DefaultTimeout = 30 * time.Second

// OAuthProviders lists the providers the backend can sign in with.
var OAuthProviders = []string{"google", "facebook", "github"}

// Options configures an HTTPClient. BaseURL and Jar are required.
type Options struct {
	BaseURL       string
	Jar           cookies.Jar
	Timeout       time.Duration
	SecureCookies bool
	// OnAuthExpired runs after a failed renewal purged the tokens.
	OnAuthExpired func(ctx context.Context)
	Logger        logging.Logger
	// Transport is the underlying round tripper. Defaults to
	// http.DefaultTransport.
	Transport http.RoundTripper
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
	bare    *http.Client
	log     logging.Logger
}

func New(opts Options) (*HTTPClient, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("base url is required")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if opts.Jar == nil {
		return nil, errors.New("cookie jar is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	traced := otelhttp.NewTransport(base)

	c := &HTTPClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		bare:    &http.Client{Transport: traced, Timeout: opts.Timeout},
		log:     opts.Logger,
	}
	c.http = &http.Client{
		Timeout: opts.Timeout,
		Transport: &authTransport{
			next:          traced,
			jar:           opts.Jar,
			refresh:       c.RefreshToken,
			secure:        opts.SecureCookies,
			onAuthExpired: opts.OnAuthExpired,
			log:           opts.Logger,
		},
	}
	return c, nil
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (models.MessageResponse, error) {
	var resp models.MessageResponse
	err := c.do(ctx, c.bare, http.MethodPost, registerPath, nil, req, &resp, "")
	return resp, err
}

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (models.TokenResponse, error) {
	var resp models.TokenResponse
	err := c.do(ctx, c.bare, http.MethodPost, loginPath, nil, req, &resp, "")
	return resp, err
}

// RefreshToken exchanges a refresh token for a new pair. It bypasses the
// authenticating transport.
func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) (models.TokenResponse, error) {
	var resp models.TokenResponse
	err := c.do(ctx, c.bare, http.MethodGet, refreshTokenPath, nil, nil, &resp, bearer(refreshToken))
	return resp, err
}

// OAuthURL is the browser entry point for provider sign-in.
func (c *HTTPClient) OAuthURL(provider string) (string, error) {
	for _, p := range OAuthProviders {
		if p == provider {
			return c.baseURL + oauthPathPrefix + p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrBadProvider, provider)
}

func (c *HTTPClient) ListProducts(ctx context.Context, page int) (models.ProductList, error) {
	var resp models.ProductList
	q := url.Values{"page": {strconv.Itoa(page)}}
	err := c.do(ctx, c.http, http.MethodGet, productsPath, q, nil, &resp, "")
	return resp, err
}

func (c *HTTPClient) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (models.Order, error) {
	var resp models.OrderResponse
	err := c.do(ctx, c.http, http.MethodPost, ordersPath, nil, req, &resp, "")
	return resp.Order, err
}

// ListOrders returns one page of the caller's orders starting at offset.
func (c *HTTPClient) ListOrders(ctx context.Context, offset int) ([]models.Order, error) {
	var resp models.OrdersResponse
	q := url.Values{"offset": {strconv.Itoa(offset)}}
	err := c.do(ctx, c.http, http.MethodGet, ordersPath, q, nil, &resp, "")
	return resp.Orders, err
}

// GetPaymentByOrderID returns the payment record of an order. A record that
// does not exist yet is an error matching ErrNotFound.
func (c *HTTPClient) GetPaymentByOrderID(ctx context.Context, orderID int64) (models.Payment, error) {
	var resp models.Payment
	path := paymentOrderPath + strconv.FormatInt(orderID, 10)
	err := c.do(ctx, c.http, http.MethodGet, path, nil, nil, &resp, "")
	return resp, err
}

func (c *HTTPClient) InitiatePayment(ctx context.Context, req models.InitiatePaymentRequest) (models.InitiatePaymentResponse, error) {
	var resp models.InitiatePaymentResponse
	err := c.do(ctx, c.http, http.MethodPost, initiatePath, nil, req, &resp, "")
	return resp, err
}

// Transaction submits a direct payment. Only the gateway flow uses the
// payment record; this endpoint is kept for backends that predate it.
func (c *HTTPClient) Transaction(ctx context.Context, req models.PaymentTransaction) (models.MessageResponse, error) {
	var resp models.MessageResponse
	err := c.do(ctx, c.http, http.MethodPost, transactionPath, nil, req, &resp, "")
	return resp, err
}

func (c *HTTPClient) do(ctx context.Context, hc *http.Client, method, path string, query url.Values, in, out any, authorization string) error {
	req, err := c.newRequest(ctx, method, path, query, in)
	if err != nil {
		return err
	}
	if authorization != "" {
		req.Header.Set(common.AuthorizationHeaderName, authorization)
	}

	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			var ue *url.Error
			if errors.As(err, &ue) {
				return ue.Err
			}
			return err
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp)
		c.log.Debug(ctx, "request failed",
			"method", method, "path", path, "status", resp.StatusCode, "error", apiErr.Message)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, query url.Values, in any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	return req, nil
}

func decodeAPIError(resp *http.Response) *APIError {
	e := &APIError{StatusCode: resp.StatusCode}

	var body models.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		e.Message = body.Error
		return e
	}

	e.Message = http.StatusText(resp.StatusCode)
	if e.Message == "" {
		e.Message = "request failed with status " + strconv.Itoa(resp.StatusCode)
	}
	return e
}
