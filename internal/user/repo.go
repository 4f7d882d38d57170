package user

import (
	"context"

	"github.com/dkochetov/storefront/internal/types/user"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	FindUserByEmail(ctx context.Context, email string) (*user.User, error)
}
