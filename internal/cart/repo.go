package cart

import (
	"context"

	"github.com/dkochetov/storefront/internal/types/cart"
	"github.com/dkochetov/storefront/internal/types/product"
)

type CartRepository interface {
	ListCartByUser(ctx context.Context, userID int64) ([]cart.Item, error)
	FindCartItem(ctx context.Context, id, userID int64) (*cart.Item, error)
	FindCartItemByProduct(ctx context.Context, userID, productID int64) (*cart.Item, error)
	CreateCartItem(ctx context.Context, it *cart.Item) error
	UpdateCartItemQuantity(ctx context.Context, id int64, quantity int) error
	DeleteCartItem(ctx context.Context, id, userID int64) error
}

type ProductReader interface {
	FindProductByID(ctx context.Context, id int64) (*product.Product, error)
}
