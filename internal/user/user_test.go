package user

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkochetov/storefront/internal/storage"
	"github.com/dkochetov/storefront/internal/types/user"

	"github.com/golang-jwt/jwt/v4"
)

type stubUserRepo struct {
	byEmail map[string]*user.User
	nextID  int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*user.User)}
}

func (r *stubUserRepo) CreateUser(ctx context.Context, u *user.User) error {
	if _, exists := r.byEmail[u.Email]; exists {
		return storage.ErrDuplicateEmail
	}
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *stubUserRepo) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func newTestService(repo UserRepository) *Service {
	return NewService(repo, []byte("testsecret"), time.Hour)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)

	u, err := svc.Register(context.Background(), "ivan@example.com", "longenough", "Ivan")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Role != user.RoleCustomer {
		t.Errorf("expected role customer, got %s", u.Role)
	}
	if u.PasswordHash == "longenough" {
		t.Error("password must be hashed")
	}

	token, got, err := svc.Authenticate(context.Background(), "ivan@example.com", "longenough")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("expected user %d, got %d", u.ID, got.ID)
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("testsecret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token must be valid: %v", err)
	}
	if claims.Subject != "ivan@example.com" {
		t.Errorf("expected subject to be the email, got %s", claims.Subject)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	svc := newTestService(newStubUserRepo())

	_, err := svc.Register(context.Background(), "ivan@example.com", "short", "Ivan")
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)

	if _, err := svc.Register(context.Background(), "ivan@example.com", "longenough", "Ivan"); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Register(context.Background(), "ivan@example.com", "longenough", "Ivan")
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)

	if _, err := svc.Register(context.Background(), "ivan@example.com", "longenough", "Ivan"); err != nil {
		t.Fatal(err)
	}
	_, _, err := svc.Authenticate(context.Background(), "ivan@example.com", "wrongpass")
	if !errors.Is(err, ErrInvalidCreds) {
		t.Fatalf("expected ErrInvalidCreds, got %v", err)
	}
}

func TestHandlerRegister(t *testing.T) {
	handler := NewHandler(newTestService(newStubUserRepo()))

	body := bytes.NewReader([]byte(`{"email":"ivan@example.com","password":"longenough","name":"Ivan"}`))
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)

	w := httptest.NewRecorder()
	handler.Register(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Authorization") == "" {
		t.Error("expected Authorization header with a bearer token")
	}
}

func TestHandlerRegisterDuplicate(t *testing.T) {
	repo := newStubUserRepo()
	handler := NewHandler(newTestService(repo))

	payload := `{"email":"ivan@example.com","password":"longenough"}`

	w := httptest.NewRecorder()
	handler.Register(w, httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte(payload))))
	if w.Code != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.Register(w, httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte(payload))))
	if w.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", w.Code)
	}
}

func TestHandlerLoginInvalidCreds(t *testing.T) {
	handler := NewHandler(newTestService(newStubUserRepo()))

	body := bytes.NewReader([]byte(`{"email":"ghost@example.com","password":"whatever123"}`))
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)

	w := httptest.NewRecorder()
	handler.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}
