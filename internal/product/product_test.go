package product

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkochetov/storefront/internal/middleware"
	"github.com/dkochetov/storefront/internal/storage"
	"github.com/dkochetov/storefront/internal/types/product"
	"github.com/dkochetov/storefront/internal/types/user"

	"github.com/go-chi/chi/v5"
)

type stubProductRepo struct {
	products map[int64]*product.Product
	nextID   int64
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[int64]*product.Product)}
}

func (r *stubProductRepo) ListProducts(ctx context.Context) ([]product.Product, error) {
	var out []product.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProductRepo) FindProductByID(ctx context.Context, id int64) (*product.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) CreateProduct(ctx context.Context, p *product.Product) error {
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) UpdateProduct(ctx context.Context, p *product.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return storage.ErrProductNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) DeleteProduct(ctx context.Context, id int64) error {
	if _, ok := r.products[id]; !ok {
		return storage.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func TestCreateRecordsCreator(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), 3, &product.CreateRequest{
		Name: "Mug", Price: 9.5, Stock: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.CreatedBy == nil || *p.CreatedBy != 3 {
		t.Errorf("expected created_by 3, got %v", p.CreatedBy)
	}
	if p.ID == 0 {
		t.Error("expected assigned id")
	}
}

func TestUpdateUnknownProduct(t *testing.T) {
	svc := NewService(newStubProductRepo())

	_, err := svc.Update(context.Background(), 42, &product.UpdateRequest{Name: "Mug", Price: 1})
	if !errors.Is(err, storage.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestUpdateOverwritesFields(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), 3, &product.CreateRequest{Name: "Mug", Price: 9.5, Stock: 10})
	if err != nil {
		t.Fatal(err)
	}
	updated, err := svc.Update(context.Background(), created.ID, &product.UpdateRequest{
		Name: "Big mug", Price: 12, Stock: 4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Big mug" || updated.Price != 12 || updated.Stock != 4 {
		t.Errorf("unexpected product after update: %+v", updated)
	}
}

func withAdmin(req *http.Request) *http.Request {
	return req.WithContext(middleware.ContextWithPrincipal(req.Context(), &middleware.Principal{ID: 3, Role: user.RoleAdmin}))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandlerGetNotFound(t *testing.T) {
	handler := NewHandler(NewService(newStubProductRepo()))

	req := httptest.NewRequest(http.MethodGet, "/products/42", nil)
	req = withURLParam(req, "id", "42")

	w := httptest.NewRecorder()
	handler.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestHandlerCreate(t *testing.T) {
	repo := newStubProductRepo()
	handler := NewHandler(NewService(repo))

	body := bytes.NewReader([]byte(`{"name":"Mug","price":9.5,"stock":10}`))
	req := withAdmin(httptest.NewRequest(http.MethodPost, "/admin/products", body))

	w := httptest.NewRecorder()
	handler.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}
	if len(repo.products) != 1 {
		t.Errorf("expected 1 product stored, got %d", len(repo.products))
	}
}

func TestHandlerCreateMissingName(t *testing.T) {
	handler := NewHandler(NewService(newStubProductRepo()))

	body := bytes.NewReader([]byte(`{"price":9.5}`))
	req := withAdmin(httptest.NewRequest(http.MethodPost, "/admin/products", body))

	w := httptest.NewRecorder()
	handler.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestHandlerDelete(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewService(repo)
	handler := NewHandler(svc)

	if _, err := svc.Create(context.Background(), 3, &product.CreateRequest{Name: "Mug", Price: 9.5}); err != nil {
		t.Fatal(err)
	}

	req := withAdmin(httptest.NewRequest(http.MethodDelete, "/admin/products/1", nil))
	req = withURLParam(req, "id", "1")

	w := httptest.NewRecorder()
	handler.Delete(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if len(repo.products) != 0 {
		t.Errorf("expected product removed, got %d", len(repo.products))
	}
}

func TestHandlerList(t *testing.T) {
	repo := newStubProductRepo()
	repo.products[1] = &product.Product{ID: 1, Name: "Mug", Price: 9.5, Stock: 10, CreatedAt: time.Now()}
	handler := NewHandler(NewService(repo))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}
