package user

import (
	"context"
	"errors"
	"time"

	"github.com/dkochetov/storefront/internal/storage"
	"github.com/dkochetov/storefront/internal/types/user"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidCreds     = errors.New("invalid credentials")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
)

type Service struct {
	repo      UserRepository
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewService(repo UserRepository, jwtSecret []byte, jwtTTL time.Duration) *Service {
	return &Service{repo: repo, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

func (s *Service) Register(ctx context.Context, email, password, name string) (*user.User, error) {
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &user.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         user.RoleCustomer,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCreds
	}
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return signed, u, nil
}
