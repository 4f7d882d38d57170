package cart

import (
	"context"
	"errors"
	"time"

	"github.com/dkochetov/storefront/internal/storage"
	"github.com/dkochetov/storefront/internal/types/cart"
)

var ErrInvalidQuantity = errors.New("quantity must be greater than 0")

type Service struct {
	carts    CartRepository
	products ProductReader
}

func NewService(carts CartRepository, products ProductReader) *Service {
	return &Service{carts: carts, products: products}
}

// List returns the user's cart lines with the product joined in. This
// read is the snapshot the client submits back at checkout.
func (s *Service) List(ctx context.Context, userID int64) ([]cart.Item, error) {
	return s.carts.ListCartByUser(ctx, userID)
}

// Add puts quantity of a product into the cart, merging with an
// existing line for the same product. The merged quantity must not
// exceed current stock.
func (s *Service) Add(ctx context.Context, userID, productID int64, quantity int) (*cart.Item, error) {
	if quantity <= 0 {
		quantity = 1
	}
	p, err := s.products.FindProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	existing, err := s.carts.FindCartItemByProduct(ctx, userID, productID)
	if err != nil && !errors.Is(err, storage.ErrCartItemNotFound) {
		return nil, err
	}

	newQuantity := quantity
	if existing != nil {
		newQuantity += existing.Quantity
	}
	if p.Stock < newQuantity {
		return nil, &storage.InsufficientStockError{
			ProductID: productID,
			Available: p.Stock,
			Requested: newQuantity,
		}
	}

	if existing != nil {
		if err := s.carts.UpdateCartItemQuantity(ctx, existing.ID, newQuantity); err != nil {
			return nil, err
		}
		existing.Quantity = newQuantity
		existing.Product = p
		return existing, nil
	}

	it := &cart.Item{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.carts.CreateCartItem(ctx, it); err != nil {
		return nil, err
	}
	it.Product = p
	return it, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID int64, quantity int) (*cart.Item, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	it, err := s.carts.FindCartItem(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}
	if it.Product != nil && it.Product.Stock < quantity {
		return nil, &storage.InsufficientStockError{
			ProductID: it.ProductID,
			Available: it.Product.Stock,
			Requested: quantity,
		}
	}
	if err := s.carts.UpdateCartItemQuantity(ctx, it.ID, quantity); err != nil {
		return nil, err
	}
	it.Quantity = quantity
	return it, nil
}

func (s *Service) Remove(ctx context.Context, userID, itemID int64) error {
	return s.carts.DeleteCartItem(ctx, itemID, userID)
}
