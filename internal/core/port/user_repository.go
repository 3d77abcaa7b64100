package port

import (
	"context"

	"github.com/zywangzy/fun-with-flags/internal/core/domain"
)

// UserRepository exposes persistence behavior for users.
type UserRepository interface {
	// Create inserts a new user row and returns the generated user id.
	// A username or email uniqueness violation surfaces as repository.ErrConflict.
	Create(ctx context.Context, user domain.User) (int, error)
	GetByID(ctx context.Context, id int) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// Update applies the non-nil fields of update. Zero affected rows
	// surface as repository.ErrNotFound.
	Update(ctx context.Context, id int, update domain.UserUpdate) error
	Delete(ctx context.Context, id int) error
}
