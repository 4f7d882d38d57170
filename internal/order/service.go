package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkochetov/storefront/internal/storage"
	"github.com/dkochetov/storefront/internal/types/order"
)

var (
	ErrEmptyCart         = errors.New("cart items required")
	ErrShippingRequired  = errors.New("shipping information required")
	ErrInvalidStatus     = errors.New("valid status required")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrNumberExhausted   = errors.New("could not generate a unique order number")
)

type Service struct {
	repo OrderRepository
}

func NewService(r OrderRepository) *Service {
	return &Service{repo: r}
}

// CreateOrder turns a validated cart snapshot into a persisted order
// with its lines and the matching stock decrements.
//
// The read-only validation pass runs over every line before anything
// is written, so a snapshot that cannot be fulfilled leaves no trace.
// The commit itself re-checks stock with a conditional decrement inside
// one transaction; a concurrent checkout that wins the race makes this
// one roll back entirely.
func (s *Service) CreateOrder(ctx context.Context, userID int64, req *order.CreateOrderRequest) (*order.Order, error) {
	if len(req.CartItems) == 0 {
		return nil, ErrEmptyCart
	}
	sh := req.ShippingInfo
	if sh.FullName == "" || sh.Phone == "" || sh.City == "" || sh.Address == "" {
		return nil, ErrShippingRequired
	}

	// Total comes from the snapshot prices, not the live catalog, so a
	// price change after add-to-cart does not change the charged total.
	var total float64
	for _, line := range req.CartItems {
		total += line.UnitPrice * float64(line.Quantity)
	}

	for _, line := range req.CartItems {
		stock, err := s.repo.GetProductStock(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				return nil, fmt.Errorf("product %d: %w", line.ProductID, err)
			}
			return nil, err
		}
		if stock < line.Quantity {
			return nil, &storage.InsufficientStockError{
				ProductID: line.ProductID,
				Available: stock,
				Requested: line.Quantity,
			}
		}
	}

	var postalCode *string
	if sh.PostalCode != "" {
		pc := sh.PostalCode
		postalCode = &pc
	}

	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		now := time.Now().UTC()
		o := &order.Order{
			UserID:      userID,
			Number:      GenerateNumber(),
			Status:      order.StatusPending,
			TotalAmount: total,
			FullName:    sh.FullName,
			Phone:       sh.Phone,
			City:        sh.City,
			Address:     sh.Address,
			PostalCode:  postalCode,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		items := make([]order.Item, 0, len(req.CartItems))
		for _, line := range req.CartItems {
			items = append(items, order.Item{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.UnitPrice,
			})
		}

		err := s.repo.CreateOrderWithItems(ctx, o, items)
		if errors.Is(err, storage.ErrDuplicateOrderNumber) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return s.repo.FindOrderByID(ctx, o.ID)
	}
	return nil, ErrNumberExhausted
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	return s.repo.FindOrderByID(ctx, id)
}

func (s *Service) ListMyOrders(ctx context.Context, userID int64) ([]order.Order, error) {
	return s.repo.ListOrdersByUser(ctx, userID)
}

func (s *Service) ListAllOrders(ctx context.Context) ([]order.Order, error) {
	return s.repo.ListAllOrders(ctx)
}

// ChangeStatus validates and applies a status transition. Moving into
// cancelled from a non-cancelled state restores every line's quantity
// to the product stock; restoration and the status write happen in one
// transaction, so a partial restore is never visible.
func (s *Service) ChangeStatus(ctx context.Context, orderID int64, target order.OrderStatus) (*order.Order, error) {
	if !target.Valid() {
		return nil, ErrInvalidStatus
	}
	o, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, target)
	}

	restock := target == order.StatusCancelled && o.Status != order.StatusCancelled
	now := time.Now().UTC()
	if err := s.repo.UpdateOrderStatus(ctx, orderID, target, now, restock); err != nil {
		return nil, err
	}
	o.Status = target
	o.UpdatedAt = now
	return o, nil
}
