package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophstore/internal/client/client"
	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/client/store"
	"github.com/dmitrijs2005/gophstore/internal/logging"
)

// CatalogService lists products and keeps the cart in line with the stock
// it sees.
type CatalogService interface {
	ListProducts(ctx context.Context, page int) (models.ProductList, error)
	// Find returns a product from the pages listed so far.
	Find(productID int64) (models.Product, bool)
}

type catalogService struct {
	client client.Client
	cart   *store.CartStore
	log    logging.Logger

	mu   sync.Mutex
	seen map[int64]models.Product
}

func NewCatalogService(c client.Client, cart *store.CartStore, log logging.Logger) CatalogService {
	return &catalogService{client: c, cart: cart, log: log, seen: map[int64]models.Product{}}
}

func (s *catalogService) ListProducts(ctx context.Context, page int) (models.ProductList, error) {
	if page < 1 {
		page = 1
	}
	list, err := s.client.ListProducts(ctx, page)
	if err != nil {
		return models.ProductList{}, fmt.Errorf("listing products: %w", err)
	}

	s.mu.Lock()
	for _, p := range list.Products {
		s.seen[p.ID] = p
	}
	s.mu.Unlock()

	if err := s.cart.Reconcile(ctx, list.Products); err != nil {
		return list, fmt.Errorf("updating cart stock: %w", err)
	}
	return list, nil
}

func (s *catalogService) Find(productID int64) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.seen[productID]
	return p, ok
}
