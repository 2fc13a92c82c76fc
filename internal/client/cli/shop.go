package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophstore/internal/common"
)

var errUnknownProduct = fmt.Errorf("%w: unknown product, list it with 'products' first", common.ErrorValidation)

// Products lists one catalogue page, 1 by default.
func (a *App) Products(ctx context.Context, args []string) error {
	page := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return usage("products [page]")
		}
		page = n
	}

	list, err := a.catalog.ListProducts(ctx, page)
	if err != nil {
		return err
	}
	if len(list.Products) == 0 {
		fmt.Fprintln(a.out, "No products.")
		return nil
	}

	tw := newTable(a.out, "ID", "NAME", "PRICE", "STOCK")
	for _, p := range list.Products {
		stock := strconv.Itoa(p.Stock)
		if p.Stock < 1 {
			stock = "out of stock"
		}
		row(tw, p.ID, p.Name, formatPrice(p.Price), stock)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Page %d of %d, %d products\n", list.Page, max(list.TotalPage, 1), list.Total)
	return nil
}

// Add puts a listed product into the cart, one unit by default.
func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("add <product id> [quantity]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	qty := 1
	if len(args) == 2 {
		if qty, err = strconv.Atoi(args[1]); err != nil {
			return usage("add <product id> [quantity]")
		}
	}

	p, ok := a.catalog.Find(id)
	if !ok {
		return errUnknownProduct
	}

	before, _ := a.cart.GetItem(id)
	if err := a.cart.AddItem(ctx, p, qty); err != nil {
		return err
	}
	after, _ := a.cart.GetItem(id)

	fmt.Fprintf(a.out, "%s: %d in cart\n", p.Name, after.Quantity)
	if after.Quantity-before.Quantity < qty {
		fmt.Fprintf(a.out, "Only %d in stock.\n", after.Product.Stock)
	}
	return nil
}

// Update sets the quantity of a cart line. Zero removes it.
func (a *App) Update(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("update <product id> <quantity>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return usage("update <product id> <quantity>")
	}

	if _, ok := a.cart.GetItem(id); !ok {
		return fmt.Errorf("%w: product %d is not in the cart", common.ErrorValidation, id)
	}
	if err := a.cart.UpdateQuantity(ctx, id, qty); err != nil {
		return err
	}

	if line, ok := a.cart.GetItem(id); ok {
		fmt.Fprintf(a.out, "%s: %d in cart\n", line.Product.Name, line.Quantity)
		if line.Quantity < qty {
			fmt.Fprintf(a.out, "Only %d in stock.\n", line.Product.Stock)
		}
	} else {
		fmt.Fprintln(a.out, "Removed from cart.")
	}
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("remove <product id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := a.cart.RemoveItem(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Removed from cart.")
	return nil
}

// Cart prints the cart lines and totals.
func (a *App) Cart(ctx context.Context) error {
	lines := a.cart.Items()
	if len(lines) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return nil
	}

	tw := newTable(a.out, "ID", "NAME", "PRICE", "QTY", "SUBTOTAL")
	for _, l := range lines {
		row(tw, l.Product.ID, l.Product.Name, formatPrice(l.Product.Price), l.Quantity, formatPrice(l.Subtotal()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Items: %d  Total: %s\n", a.cart.TotalItems(), formatPrice(a.cart.TotalPrice()))
	return nil
}

func (a *App) Clear(ctx context.Context) error {
	if err := a.cart.ClearCart(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Cart cleared.")
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", common.ErrorValidation, s)
	}
	return id, nil
}
