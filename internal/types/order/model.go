package order

import (
	"time"

	"github.com/dkochetov/storefront/internal/types/product"
	"github.com/dkochetov/storefront/internal/types/user"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the five recognized statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID          int64         `db:"id" json:"id"`
	UserID      int64         `db:"user_id" json:"user_id"`
	Number      string        `db:"order_number" json:"order_number"`
	Status      OrderStatus   `db:"status" json:"status"`
	TotalAmount float64       `db:"total_amount" json:"total_amount"`
	FullName    string        `db:"full_name" json:"full_name"`
	Phone       string        `db:"phone" json:"phone"`
	City        string        `db:"city" json:"city"`
	Address     string        `db:"address" json:"address"`
	PostalCode  *string       `db:"postal_code" json:"postal_code,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
	Items       []Item        `json:"order_items,omitempty"`
	User        *user.Summary `json:"users,omitempty"`
}

// Item is one order line. Price is the unit price captured at order
// time, decoupled from the live product price.
type Item struct {
	ID        int64            `db:"id" json:"id"`
	OrderID   int64            `db:"order_id" json:"order_id"`
	ProductID int64            `db:"product_id" json:"product_id"`
	Quantity  int              `db:"quantity" json:"quantity"`
	Price     float64          `db:"price" json:"price"`
	Product   *product.Product `json:"products,omitempty"`
}

// CartLine is the client-supplied cart snapshot consumed by checkout.
type CartLine struct {
	ProductID int64   `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

type ShippingInfo struct {
	FullName   string `json:"fullName" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	City       string `json:"city" validate:"required"`
	Address    string `json:"address" validate:"required"`
	PostalCode string `json:"postalCode"`
}

type CreateOrderRequest struct {
	CartItems    []CartLine   `json:"cartItems" validate:"required,min=1,dive"`
	ShippingInfo ShippingInfo `json:"shippingInfo" validate:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
