package product

import (
	"context"

	"github.com/dkochetov/storefront/internal/types/product"
)

type ProductRepository interface {
	ListProducts(ctx context.Context) ([]product.Product, error)
	FindProductByID(ctx context.Context, id int64) (*product.Product, error)
	CreateProduct(ctx context.Context, p *product.Product) error
	UpdateProduct(ctx context.Context, p *product.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}
