package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zywangzy/fun-with-flags/internal/core/domain"
	"github.com/zywangzy/fun-with-flags/internal/core/port"
	"github.com/zywangzy/fun-with-flags/internal/infra/security"
)

// UserService serves profile reads and updates.
type UserService struct {
	users  port.UserRepository
	logger *zap.Logger
}

// NewUserService constructs a user service.
func NewUserService(users port.UserRepository, log *zap.Logger) *UserService {
	return &UserService{users: users, logger: log}
}

// ReadUserBasic returns the externally visible profile fields. Password and
// salt never leave the repository layer.
func (s *UserService) ReadUserBasic(ctx context.Context, id int) (domain.UserBasic, error) {
	if id <= 0 {
		return domain.UserBasic{}, NewBadRequestError("Invalid user id")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.UserBasic{}, err
	}

	return user.Basic(), nil
}

// UpdateUser applies a validated profile update. A password change re-reads
// the user to derive the new digest with the stored salt; the salt itself is
// not rotated.
func (s *UserService) UpdateUser(ctx context.Context, req *UserUpdateRequest) error {
	var digest []byte

	if req.HasPassword() {
		user, err := s.users.GetByID(ctx, req.UserID)
		if err != nil {
			return err
		}
		digest = security.HashWithSalt(req.Password, user.Salt)
	}

	update := req.Update(digest)
	if update.Empty() {
		return NewBadRequestError("No valid fields")
	}

	if err := s.users.Update(ctx, req.UserID, update); err != nil {
		return err
	}

	s.logger.Info("User updated",
		zap.Int("user_id", req.UserID),
		zap.Bool("password_changed", req.HasPassword()),
	)

	return nil
}

// DeleteUser removes the account. Administrative surface; the HTTP layer
// restricts who may call it.
func (s *UserService) DeleteUser(ctx context.Context, id int) error {
	if id <= 0 {
		return NewBadRequestError("Invalid user id")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	s.logger.Info("User deleted", zap.Int("user_id", id))

	return nil
}
