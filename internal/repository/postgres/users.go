package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zywangzy/fun-with-flags/internal/core/domain"
	"github.com/zywangzy/fun-with-flags/internal/repository"
)

const usersTable = "users"

var userColumns = []string{
	"user_id",
	"username",
	"nickname",
	"email",
	"password",
	"salt",
	"created_at",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	db      pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(db pgExecutor) *UserRepository {
	return &UserRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new user row and returns the generated user id.
// Uniqueness violations surface as repository.ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (int, error) {
	stmt, args, err := r.builder.Insert(usersTable).
		Columns("username", "nickname", "email", "password", "salt", "created_at").
		Values(user.Username, user.Nickname, user.Email, user.Password, user.Salt, user.CreatedAt).
		Suffix("RETURNING user_id").
		ToSql()
	if err != nil {
		return domain.UnknownUserID, fmt.Errorf("build insert user sql: %w", err)
	}

	var userID int
	if err := r.db.QueryRow(ctx, stmt, args...).Scan(&userID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.UnknownUserID, repository.ErrConflict
		}
		return domain.UnknownUserID, fmt.Errorf("insert user: %w", err)
	}

	return userID, nil
}

// GetByID retrieves a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"user_id": id})
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"username": username})
}

func (r *UserRepository) getBy(ctx context.Context, predicate squirrel.Eq) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From(usersTable).
		Where(predicate).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	var user domain.User
	if err := r.db.QueryRow(ctx, stmt, args...).Scan(
		&user.UserID,
		&user.Username,
		&user.Nickname,
		&user.Email,
		&user.Password,
		&user.Salt,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	user.Valid = true
	return &user, nil
}

// Update applies the populated fields of update to the user row. Zero
// affected rows surface as repository.ErrNotFound.
func (r *UserRepository) Update(ctx context.Context, id int, update domain.UserUpdate) error {
	if update.Empty() {
		return fmt.Errorf("update user: no fields to update")
	}

	query := r.builder.Update(usersTable)
	if update.Username != nil {
		query = query.Set("username", *update.Username)
	}
	if update.Nickname != nil {
		query = query.Set("nickname", *update.Nickname)
	}
	if update.Email != nil {
		query = query.Set("email", *update.Email)
	}
	if len(update.Password) > 0 {
		query = query.Set("password", update.Password)
	}

	stmt, args, err := query.Where(squirrel.Eq{"user_id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update user sql: %w", err)
	}

	tag, err := r.db.Exec(ctx, stmt, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return repository.ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes the user row. Administrative operation; zero affected rows
// surface as repository.ErrNotFound.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	stmt, args, err := r.builder.Delete(usersTable).
		Where(squirrel.Eq{"user_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete user sql: %w", err)
	}

	tag, err := r.db.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
