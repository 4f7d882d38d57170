package cart

import (
	"time"

	"github.com/dkochetov/storefront/internal/types/product"
)

// Item is one row of the persisted cart, joined with its product on reads.
type Item struct {
	ID        int64            `db:"id" json:"id"`
	UserID    int64            `db:"user_id" json:"-"`
	ProductID int64            `db:"product_id" json:"product_id"`
	Quantity  int              `db:"quantity" json:"quantity"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	Product   *product.Product `json:"products,omitempty"`
}

type AddRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity" validate:"omitempty,min=1"`
}

type UpdateRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}
