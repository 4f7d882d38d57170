package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkochetov/storefront/internal/types/cart"
	"github.com/dkochetov/storefront/internal/types/order"
	"github.com/dkochetov/storefront/internal/types/product"
	"github.com/dkochetov/storefront/internal/types/user"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrProductNotFound      = errors.New("product not found")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicateOrderNumber = errors.New("order number already taken")
)

// InsufficientStockError carries the product and quantities that failed
// the stock check, so handlers can report them to the client.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// UserRepository отвечает за операции над пользователями.
type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	FindUserByEmail(ctx context.Context, email string) (*user.User, error)
}

// ProductRepository отвечает за каталог.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]product.Product, error)
	FindProductByID(ctx context.Context, id int64) (*product.Product, error)
	CreateProduct(ctx context.Context, p *product.Product) error
	UpdateProduct(ctx context.Context, p *product.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// CartRepository отвечает за корзину.
type CartRepository interface {
	ListCartByUser(ctx context.Context, userID int64) ([]cart.Item, error)
	FindCartItem(ctx context.Context, id, userID int64) (*cart.Item, error)
	FindCartItemByProduct(ctx context.Context, userID, productID int64) (*cart.Item, error)
	CreateCartItem(ctx context.Context, it *cart.Item) error
	UpdateCartItemQuantity(ctx context.Context, id int64, quantity int) error
	DeleteCartItem(ctx context.Context, id, userID int64) error
}

// OrderRepository отвечает за заказы и складские остатки.
type OrderRepository interface {
	GetProductStock(ctx context.Context, productID int64) (int, error)

	// CreateOrderWithItems persists the order header, its lines and the
	// per-line stock decrements in a single transaction. The decrement
	// is conditional on sufficient stock; the whole transaction rolls
	// back on the first line that fails.
	CreateOrderWithItems(ctx context.Context, o *order.Order, items []order.Item) error

	FindOrderByID(ctx context.Context, id int64) (*order.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]order.Order, error)
	ListAllOrders(ctx context.Context) ([]order.Order, error)

	// UpdateOrderStatus sets the status and updated_at. With restock it
	// first returns every line's quantity to the product stock, all in
	// one transaction.
	UpdateOrderStatus(ctx context.Context, orderID int64, status order.OrderStatus, updatedAt time.Time, restock bool) error
}

// Storage объединяет все репозитории.
type Storage interface {
	UserRepository
	ProductRepository
	CartRepository
	OrderRepository

	// Для управления соединением
	Ping(ctx context.Context) error
	Close() error
}
