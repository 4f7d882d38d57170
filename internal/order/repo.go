package order

import (
	"context"
	"time"

	"github.com/dkochetov/storefront/internal/types/order"
)

type OrderRepository interface {
	GetProductStock(ctx context.Context, productID int64) (int, error)
	CreateOrderWithItems(ctx context.Context, o *order.Order, items []order.Item) error
	FindOrderByID(ctx context.Context, id int64) (*order.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]order.Order, error)
	ListAllOrders(ctx context.Context) ([]order.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status order.OrderStatus, updatedAt time.Time, restock bool) error
}
