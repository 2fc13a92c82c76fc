package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/common"
)

type cartBlob struct {
	Items []models.CartLine `json:"items"`
}

// CartStore keeps the desired purchase quantities, one line per product.
//
// Every written quantity is clamped to the stock of the product snapshot
// known at write time, so 1 <= quantity <= stock holds for each line when
// it was last written. Totals are folded over the lines on every call.
type CartStore struct {
	mu      sync.Mutex
	lines   []models.CartLine
	persist Persister
}

func NewCartStore(ctx context.Context, p Persister) (*CartStore, error) {
	var blob cartBlob
	if _, err := p.Load(ctx, common.CartStorageKey, &blob); err != nil {
		return nil, fmt.Errorf("loading cart: %w", err)
	}
	return &CartStore{lines: blob.Items, persist: p}, nil
}

// AddItem adds quantity of product, capped at product.Stock. An existing
// line grows by quantity up to the same cap and takes the new snapshot.
func (c *CartStore) AddItem(ctx context.Context, product models.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if product.Stock < 1 {
		return ErrOutOfStock
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.copyLines()
	if i := indexOf(next, product.ID); i >= 0 {
		next[i] = models.CartLine{Product: product, Quantity: min(next[i].Quantity+quantity, product.Stock)}
	} else {
		next = append(next, models.CartLine{Product: product, Quantity: min(quantity, product.Stock)})
	}
	return c.commit(ctx, next)
}

// UpdateQuantity sets a line's quantity, capped at its stock. A quantity of
// zero or less removes the line. Unknown ids are ignored.
func (c *CartStore) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(ctx, productID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.copyLines()
	i := indexOf(next, productID)
	if i < 0 {
		return nil
	}
	next[i].Quantity = min(quantity, next[i].Product.Stock)
	if next[i].Quantity < 1 {
		next = append(next[:i], next[i+1:]...)
	}
	return c.commit(ctx, next)
}

// RemoveItem deletes a line. Unknown ids are ignored.
func (c *CartStore) RemoveItem(ctx context.Context, productID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.lines, productID)
	if i < 0 {
		return nil
	}
	next := c.copyLines()
	next = append(next[:i], next[i+1:]...)
	return c.commit(ctx, next)
}

// ClearCart empties the cart. Clearing an empty cart is a no-op.
func (c *CartStore) ClearCart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.lines) == 0 {
		return nil
	}
	return c.commit(ctx, nil)
}

// Reconcile refreshes the product snapshots of lines present in products
// and re-clamps their quantities. Lines whose fresh stock is zero are
// dropped. Lines for products not in the list are left alone.
func (c *CartStore) Reconcile(ctx context.Context, products []models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := make(map[int64]models.Product, len(products))
	for _, p := range products {
		fresh[p.ID] = p
	}

	changed := false
	next := make([]models.CartLine, 0, len(c.lines))
	for _, l := range c.lines {
		p, ok := fresh[l.Product.ID]
		if !ok {
			next = append(next, l)
			continue
		}
		q := min(l.Quantity, p.Stock)
		if q != l.Quantity || p != l.Product {
			changed = true
		}
		if q < 1 {
			continue
		}
		next = append(next, models.CartLine{Product: p, Quantity: q})
	}

	if !changed {
		return nil
	}
	return c.commit(ctx, next)
}

// GetItem returns the line for productID.
func (c *CartStore) GetItem(productID int64) (models.CartLine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := indexOf(c.lines, productID); i >= 0 {
		return c.lines[i], true
	}
	return models.CartLine{}, false
}

// Items returns a copy of the lines in insertion order.
func (c *CartStore) Items() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLines()
}

func (c *CartStore) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

func (c *CartStore) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0.0
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// commit persists next and only then makes it the live state.
func (c *CartStore) commit(ctx context.Context, next []models.CartLine) error {
	if next == nil {
		next = []models.CartLine{}
	}
	if err := c.persist.Save(ctx, common.CartStorageKey, cartBlob{Items: next}); err != nil {
		return fmt.Errorf("saving cart: %w", err)
	}
	c.lines = next
	return nil
}

func (c *CartStore) copyLines() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func indexOf(lines []models.CartLine, productID int64) int {
	for i, l := range lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}
