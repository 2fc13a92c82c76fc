package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophstore/internal/client/services"
)

// Checkout places an order for the cart and offers to pay for it.
func (a *App) Checkout(ctx context.Context) error {
	order, err := a.orders.Checkout(ctx)
	if err != nil && !errors.Is(err, services.ErrCartNotCleared) {
		if errors.Is(err, services.ErrNotAuthenticated) {
			return fmt.Errorf("%w, please log in first", err)
		}
		return err
	}
	if err != nil {
		a.log.Warn(ctx, "order placed but cart kept", "order_id", order.ID, "err", err)
	}

	fmt.Fprintf(a.out, "Order #%d placed, total %s.\n", order.ID, formatPrice(order.TotalPrice))

	answer, err := getSimpleText(a.reader, "Pay now? [y/N]", a.out)
	if err != nil {
		return err
	}
	pay := strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
	if !pay {
		fmt.Fprintf(a.out, "You can pay later with 'pay %d'.\n", order.ID)
	}
	return a.paymentView(ctx, order.ID, pay)
}

// Orders lists one page of the shopper's orders starting at offset.
func (a *App) Orders(ctx context.Context, args []string) error {
	offset := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return usage("orders [offset]")
		}
		offset = n
	}

	list, err := a.orders.List(ctx, offset)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No orders.")
		return nil
	}

	tw := newTable(a.out, "ID", "STATUS", "TOTAL", "CREATED")
	for _, o := range list {
		row(tw, o.ID, o.Status.Normalize(), formatPrice(o.TotalPrice), o.CreatedAt)
	}
	return tw.Flush()
}

// Show prints the payment view of an order.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := orderArg("show", args)
	if err != nil {
		return err
	}
	return a.paymentView(ctx, id, false)
}

// Pay opens the payment view of an order and starts the checkout.
func (a *App) Pay(ctx context.Context, args []string) error {
	id, err := orderArg("pay", args)
	if err != nil {
		return err
	}
	return a.paymentView(ctx, id, true)
}

func (a *App) paymentView(ctx context.Context, orderID int64, pay bool) error {
	flow := a.payments.Open(orderID)
	defer flow.Close()

	v, err := flow.Load(ctx)
	if err != nil {
		return err
	}
	a.printView(v)

	if !pay || !v.CanPay() {
		return nil
	}
	if err := flow.Pay(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out)
	a.printView(flow.View())
	return nil
}

func (a *App) printView(v services.View) {
	fmt.Fprintf(a.out, "Order #%d  status: %s  total: %s\n",
		v.Order.ID, v.Order.Status.Normalize(), formatPrice(v.Order.TotalPrice))
	for _, it := range v.Order.Items {
		fmt.Fprintf(a.out, "  product %d x%d @ %s\n", it.ProductID, it.Quantity, formatPrice(it.Price))
	}

	switch v.Outcome {
	case services.OutcomePaid:
		fmt.Fprintln(a.out, "Payment received. Thank you!")
	case services.OutcomeFailed:
		fmt.Fprintln(a.out, "Payment failed.")
	case services.OutcomeExpired:
		fmt.Fprintln(a.out, "Payment window expired.")
	case services.OutcomeCancelled:
		fmt.Fprintln(a.out, "Order cancelled.")
	case services.OutcomePending:
		if !v.PaymentAvailable {
			fmt.Fprintf(a.out, "Payment is being prepared, try 'pay %d' again shortly.\n", v.Order.ID)
		} else if v.Payment != nil {
			fmt.Fprintf(a.out, "Awaiting payment of %s.\n", formatPrice(v.Payment.Amount))
		}
	default:
		fmt.Fprintf(a.out, "No payment actions for status %q.\n", v.Order.Status)
	}

	if v.LastError != nil {
		fmt.Fprintln(a.out, "Last error:", v.LastError)
	}
}

func orderArg(cmd string, args []string) (int64, error) {
	if len(args) != 1 {
		return 0, usage("%s <order id>", cmd)
	}
	return parseID(args[0])
}
