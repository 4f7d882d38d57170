package product

import (
	"context"
	"time"

	"github.com/dkochetov/storefront/internal/types/product"
)

type Service struct {
	repo ProductRepository
}

func NewService(r ProductRepository) *Service {
	return &Service{repo: r}
}

func (s *Service) List(ctx context.Context) ([]product.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*product.Product, error) {
	return s.repo.FindProductByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, adminID int64, req *product.CreateRequest) (*product.Product, error) {
	p := &product.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		CreatedBy:   &adminID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id int64, req *product.UpdateRequest) (*product.Product, error) {
	p, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.ImageURL = req.ImageURL
	p.Stock = req.Stock
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteProduct(ctx, id)
}
