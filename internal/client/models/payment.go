package models

type Payment struct {
	ID                   int64   `json:"id"`
	OrderID              int64   `json:"order_id"`
	Amount               float64 `json:"amount"`
	Currency             string  `json:"currency,omitempty"`
	Status               string  `json:"status"`
	PaymentMethod        string  `json:"payment_method,omitempty"`
	GatewayOrderID       string  `json:"gateway_order_id,omitempty"`
	GatewayToken         string  `json:"gateway_token,omitempty"`
	GatewayRedirectURL   string  `json:"gateway_redirect_url,omitempty"`
	GatewayTransactionID string  `json:"gateway_transaction_id,omitempty"`
	GatewayStatus        string  `json:"gateway_status,omitempty"`
	VANumber             string  `json:"va_number,omitempty"`
	QRCodeURL            string  `json:"qr_code_url,omitempty"`
	CreatedAt            string  `json:"created_at,omitempty"`
	PaidAt               string  `json:"paid_at,omitempty"`
	ExpiredAt            string  `json:"expired_at,omitempty"`
}

type InitiatePaymentRequest struct {
	OrderID        int64  `json:"order_id"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	PaymentChannel string `json:"payment_channel,omitempty"`
	CustomerName   string `json:"customer_name"`
	CustomerEmail  string `json:"customer_email"`
	CustomerPhone  string `json:"customer_phone,omitempty"`
}

type InitiatePaymentResponse struct {
	PaymentID   int64  `json:"payment_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	VANumber    string `json:"va_number,omitempty"`
	QRCodeURL   string `json:"qr_code_url,omitempty"`
	ExpiredAt   string `json:"expired_at,omitempty"`
	Status      string `json:"status,omitempty"`
}

// PaymentTransaction is the body of the legacy direct-payment endpoint.
type PaymentTransaction struct {
	PaymentID int64   `json:"payment_id"`
	Money     float64 `json:"money"`
}
