package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/entity"
)

// UserRepository is the credential store. Uniqueness of username and email is
// enforced by the store itself so concurrent signups cannot both succeed.
type UserRepository interface {
	// FindByUsername returns ErrNotFound when no user has exactly this username.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	// Insert assigns ID and CreatedAt, or returns ErrDuplicateKey.
	Insert(ctx context.Context, u *entity.User) error
}
