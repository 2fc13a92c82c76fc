package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/gophstore/internal/client/client"
	"github.com/dmitrijs2005/gophstore/internal/client/gateway"
	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/client/retry"
	"github.com/dmitrijs2005/gophstore/internal/client/store"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Outcome is the payment view state derived from the order status.
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomePaid      Outcome = "paid"
	OutcomeFailed    Outcome = "failed"
	OutcomeExpired   Outcome = "expired"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeUnknown   Outcome = "unknown"
)

func OutcomeOf(s models.OrderStatus) Outcome {
	switch s.Normalize() {
	case models.OrderStatusPending:
		return OutcomePending
	case models.OrderStatusPaid, models.OrderStatusSuccess:
		return OutcomePaid
	case models.OrderStatusFailed:
		return OutcomeFailed
	case models.OrderStatusExpired:
		return OutcomeExpired
	case models.OrderStatusCancelled:
		return OutcomeCancelled
	}
	return OutcomeUnknown
}

// Terminal reports whether no further payment action is offered.
func (o Outcome) Terminal() bool {
	return o != OutcomePending
}

// View is a snapshot of one payment view.
type View struct {
	Order   models.Order
	Payment *models.Payment
	Outcome Outcome
	// PaymentAvailable is false until the payment record was found.
	PaymentAvailable bool
	WidgetOpen       bool
	// LastError is the most recent non-fatal problem: a lookup that ran
	// out of retries or a failure the widget reported.
	LastError error
}

// CanPay reports whether starting a payment would be accepted.
func (v View) CanPay() bool {
	return v.Outcome == OutcomePending && !v.WidgetOpen
}

// PaymentService opens payment views for orders.
type PaymentService interface {
	Open(orderID int64) *PaymentFlow
}

type PaymentOption func(*paymentService)

// WithRetryPolicy replaces retry.PaymentLookup.
func WithRetryPolicy(p retry.Policy) PaymentOption {
	return func(s *paymentService) { s.policy = p }
}

// WithSleeper replaces the real-clock wait between lookup attempts.
func WithSleeper(sl retry.Sleeper) PaymentOption {
	return func(s *paymentService) { s.sleep = sl }
}

type paymentService struct {
	client client.Client
	orders OrderService
	auth   *store.AuthStore
	widget gateway.Widget
	log    logging.Logger
	policy retry.Policy
	sleep  retry.Sleeper
}

// NewPaymentService builds the service. A nil widget makes every Pay fail
// with ErrPaymentUnavailable.
func NewPaymentService(c client.Client, orders OrderService, auth *store.AuthStore, widget gateway.Widget, log logging.Logger, opts ...PaymentOption) PaymentService {
	s := &paymentService{
		client: c,
		orders: orders,
		auth:   auth,
		widget: widget,
		log:    log,
		policy: retry.PaymentLookup,
		sleep:  retry.Sleep,
	}
	for _, o := range opts {
		o(s)
	}
	s.policy.Retryable = lookupRetryable
	return s
}

func (s *paymentService) Open(orderID int64) *PaymentFlow {
	ctx, cancel := context.WithCancel(context.Background())
	return &PaymentFlow{
		svc:     s,
		orderID: orderID,
		ctx:     ctx,
		cancel:  cancel,
		log:     s.log.With("order_id", orderID),
	}
}

// lookupRetryable keeps retrying a missing or failing payment lookup but
// gives up on an expired session or a cancelled caller.
func lookupRetryable(err error) bool {
	return !errors.Is(err, client.ErrUnauthorized) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// customer resolves the name and email sent with a payment initiation.
func (s *paymentService) customer() (name, email string) {
	st := s.auth.State()
	if st.User == nil {
		return "Customer", ""
	}
	email = st.User.Email
	switch {
	case strings.TrimSpace(st.User.FullName) != "":
		name = strings.TrimSpace(st.User.FullName)
	case email != "":
		name, _, _ = strings.Cut(email, "@")
	}
	if name == "" {
		name = "Customer"
	}
	return name, email
}

// PaymentFlow drives one order's payment view. It overlays the server's
// order and payment state and never changes a status on its own; only
// refetches do.
//
// Results that arrive after Close are dropped.
type PaymentFlow struct {
	svc     *paymentService
	orderID int64
	ctx     context.Context
	cancel  context.CancelFunc
	log     logging.Logger

	widgetOpen atomic.Bool
	closed     atomic.Bool

	mu       sync.Mutex
	view     View
	loaded   bool
	onChange func(View)
}

func (f *PaymentFlow) OrderID() int64 {
	return f.orderID
}

// OnChange registers fn to receive every new view.
func (f *PaymentFlow) OnChange(fn func(View)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = fn
}

// View returns the current snapshot.
func (f *PaymentFlow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot()
}

func (f *PaymentFlow) snapshot() View {
	v := f.view
	if v.Payment != nil {
		p := *v.Payment
		v.Payment = &p
	}
	v.WidgetOpen = f.widgetOpen.Load()
	return v
}

// Close discards the results of work still in flight.
func (f *PaymentFlow) Close() {
	f.closed.Store(true)
	f.cancel()
}

// Load fetches the order and its payment record concurrently. A payment
// record that does not show up within the retry budget leaves the view
// with PaymentAvailable false; that is not an error.
func (f *PaymentFlow) Load(ctx context.Context) (View, error) {
	var (
		order      models.Order
		payment    models.Payment
		paymentErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		o, err := f.svc.orders.Find(gctx, f.orderID)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	g.Go(func() error {
		payment, paymentErr = f.lookupPayment(gctx)
		if paymentErr != nil && !errors.Is(paymentErr, retry.ErrExhausted) {
			return paymentErr
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return f.View(), fmt.Errorf("loading order #%d: %w", f.orderID, err)
	}

	return f.update(func(v *View) {
		v.Order = order
		v.Outcome = OutcomeOf(order.Status)
		f.setPayment(v, payment, paymentErr)
		f.loaded = true
	})
}

// Pay starts the gateway checkout. It refuses while the widget is open or
// once the order reached a terminal status.
func (f *PaymentFlow) Pay(ctx context.Context) error {
	if f.closed.Load() {
		return ErrFlowClosed
	}

	f.mu.Lock()
	loaded := f.loaded
	f.mu.Unlock()
	if !loaded {
		if _, err := f.Load(ctx); err != nil {
			return err
		}
	}

	v := f.View()
	if v.Outcome.Terminal() {
		return fmt.Errorf("%w: %s", ErrOrderClosed, v.Outcome)
	}
	if f.svc.widget == nil {
		return ErrPaymentUnavailable
	}
	if !f.widgetOpen.CompareAndSwap(false, true) {
		return ErrWidgetOpen
	}

	token, err := f.sessionToken(ctx, v)
	if err != nil {
		f.releaseWidget()
		return err
	}

	f.notify()
	f.log.Info(ctx, "opening payment widget")
	if err := f.svc.widget.Open(ctx, token, f.callbacks()); err != nil {
		f.releaseWidget()
		return fmt.Errorf("opening payment widget: %w", err)
	}
	return nil
}

// sessionToken returns the gateway token of the payment record, asking the
// backend for one when the record has none yet.
func (f *PaymentFlow) sessionToken(ctx context.Context, v View) (string, error) {
	payment := v.Payment
	if !v.PaymentAvailable || payment == nil {
		p, err := f.lookupPayment(ctx)
		if _, uerr := f.update(func(v *View) { f.setPayment(v, p, err) }); uerr != nil {
			return "", uerr
		}
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrPaymentNotReady, err)
		}
		payment = &p
	}

	if payment.GatewayToken != "" {
		return payment.GatewayToken, nil
	}

	name, email := f.svc.customer()
	if email == "" {
		return "", ErrReloginRequired
	}

	resp, err := f.svc.client.InitiatePayment(ctx, models.InitiatePaymentRequest{
		OrderID:       f.orderID,
		CustomerName:  name,
		CustomerEmail: email,
	})
	if err != nil {
		f.recordError(fmt.Errorf("initiating payment: %w", err))
		return "", fmt.Errorf("initiating payment: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("initiating payment: %w", ErrPaymentUnavailable)
	}
	return resp.Token, nil
}

func (f *PaymentFlow) callbacks() gateway.Callbacks {
	return gateway.Callbacks{
		OnSuccess: func(r gateway.Result) {
			f.releaseWidget()
			f.log.Info(f.ctx, "payment reported success", "transaction_id", r.TransactionID)
			f.refetch(true)
		},
		OnPending: func(r gateway.Result) {
			f.releaseWidget()
			f.log.Info(f.ctx, "payment reported pending")
			f.refetch(false)
		},
		OnError: func(r gateway.Result) {
			f.releaseWidget()
			err := ErrPaymentFailed
			if r.Message != "" {
				err = fmt.Errorf("%w: %s", ErrPaymentFailed, r.Message)
			}
			f.log.Warn(f.ctx, "payment reported error", "error", err)
			f.recordError(err)
		},
		OnClose: func() {
			f.releaseWidget()
			f.log.Debug(f.ctx, "payment widget closed")
			f.refetch(false)
		},
	}
}

// refetch re-reads the payment record, and the order too when withOrder.
// Failures are recorded in the view.
func (f *PaymentFlow) refetch(withOrder bool) {
	ctx := f.ctx

	var (
		order    models.Order
		orderErr error
	)
	if withOrder {
		order, orderErr = f.svc.orders.Find(ctx, f.orderID)
	}
	payment, paymentErr := f.svc.client.GetPaymentByOrderID(ctx, f.orderID)

	_, _ = f.update(func(v *View) {
		if withOrder && orderErr == nil {
			v.Order = order
			v.Outcome = OutcomeOf(order.Status)
		}
		if paymentErr == nil {
			f.setPayment(v, payment, nil)
		}
		v.LastError = errors.Join(orderErr, paymentErr)
	})
}

func (f *PaymentFlow) lookupPayment(ctx context.Context) (models.Payment, error) {
	return retry.Do(ctx, f.svc.policy, f.svc.sleep, func(ctx context.Context) (models.Payment, error) {
		p, err := f.svc.client.GetPaymentByOrderID(ctx, f.orderID)
		if err != nil {
			f.log.Debug(ctx, "payment lookup failed", "error", err)
		}
		return p, err
	})
}

func (f *PaymentFlow) setPayment(v *View, p models.Payment, err error) {
	if err != nil {
		v.PaymentAvailable = v.Payment != nil
		v.LastError = err
		return
	}
	v.Payment = &p
	v.PaymentAvailable = true
	v.LastError = nil
}

func (f *PaymentFlow) recordError(err error) {
	_, _ = f.update(func(v *View) { v.LastError = err })
}

func (f *PaymentFlow) releaseWidget() {
	if f.widgetOpen.CompareAndSwap(true, false) {
		f.notify()
	}
}

// update applies fn unless the flow was closed and notifies the observer.
func (f *PaymentFlow) update(fn func(v *View)) (View, error) {
	if f.closed.Load() {
		return View{}, ErrFlowClosed
	}

	f.mu.Lock()
	fn(&f.view)
	v := f.snapshot()
	observer := f.onChange
	f.mu.Unlock()

	if observer != nil {
		observer(v)
	}
	return v, nil
}

func (f *PaymentFlow) notify() {
	if f.closed.Load() {
		return
	}
	f.mu.Lock()
	v := f.snapshot()
	observer := f.onChange
	f.mu.Unlock()

	if observer != nil {
		observer(v)
	}
}
