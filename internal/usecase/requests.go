package usecase

import (
	"strings"

	"github.com/zywangzy/fun-with-flags/internal/core/domain"
	"github.com/zywangzy/fun-with-flags/internal/infra/security"
)

const usernameMinLength = 3

// BadRequestError marks a failure the caller can fix: malformed input,
// rejected credentials, a policy violation. Handlers map it to 400.
type BadRequestError struct {
	Reason string
}

func (e *BadRequestError) Error() string {
	return e.Reason
}

// NewBadRequestError wraps a caller-facing rejection reason.
func NewBadRequestError(reason string) *BadRequestError {
	return &BadRequestError{Reason: reason}
}

// RegisterRequest is a fully validated registration payload. Construct it
// through NewRegisterRequest; a zero value bypasses validation.
type RegisterRequest struct {
	Username string
	Nickname string
	Email    string
	Password string
}

// NewRegisterRequest validates the registration fields together and reports a
// single aggregate rejection so the response does not reveal which field
// failed.
func NewRegisterRequest(username, nickname, email, password string) (*RegisterRequest, error) {
	if len(username) < usernameMinLength ||
		!security.ValidateEmail(email) ||
		!security.ValidatePassword(password) {
		return nil, NewBadRequestError("Invalid username, email or password")
	}

	if nickname == "" {
		nickname = username
	}

	return &RegisterRequest{
		Username: username,
		Nickname: nickname,
		Email:    email,
		Password: password,
	}, nil
}

// LoginRequest carries the credentials for login and fresh login. Credentials
// are checked against the stored digest, not validated for shape; an account
// predating a policy change must still be able to log in.
type LoginRequest struct {
	Username string
	Password string
}

// protectedFields may only change through a fresh-token flow.
var protectedFields = map[string]struct{}{
	"username": {},
	"email":    {},
	"password": {},
}

// updatableFields is the closed set of keys an update payload may carry.
var updatableFields = map[string]struct{}{
	"username": {},
	"nickname": {},
	"email":    {},
	"password": {},
}

// UserUpdateRequest is a validated profile update. Password stays plaintext
// here; the service derives the digest with the user's stored salt.
type UserUpdateRequest struct {
	UserID   int
	Username *string
	Nickname *string
	Email    *string
	Password string
}

// NewUserUpdateRequest filters the payload down to updatable fields and
// enforces the protected-field policy. Unknown keys are dropped silently.
// Protected callers hold a fresh token and may change username, email and
// password; those fields are validated with the registration rules.
func NewUserUpdateRequest(userID int, fields map[string]string, protected bool) (*UserUpdateRequest, error) {
	if userID <= 0 {
		return nil, NewBadRequestError("Invalid user id")
	}

	accepted := make(map[string]string, len(fields))
	for key, value := range fields {
		if _, ok := updatableFields[key]; ok {
			accepted[key] = value
		}
	}

	if len(accepted) == 0 {
		return nil, NewBadRequestError("No valid fields")
	}

	if !protected {
		for key := range accepted {
			if _, ok := protectedFields[key]; ok {
				return nil, NewBadRequestError("No access to update protected field")
			}
		}
	}

	req := &UserUpdateRequest{UserID: userID}

	if username, ok := accepted["username"]; ok {
		if len(username) < usernameMinLength {
			return nil, NewBadRequestError("Invalid username, email or password")
		}
		req.Username = &username
	}
	if nickname, ok := accepted["nickname"]; ok {
		req.Nickname = &nickname
	}
	if email, ok := accepted["email"]; ok {
		if !security.ValidateEmail(email) {
			return nil, NewBadRequestError("Invalid username, email or password")
		}
		req.Email = &email
	}
	if password, ok := accepted["password"]; ok {
		if !security.ValidatePassword(password) {
			return nil, NewBadRequestError("Invalid username, email or password")
		}
		req.Password = password
	}

	return req, nil
}

// Update projects the request onto the repository update struct. The password
// digest is supplied by the caller once it has been derived with the stored
// salt.
func (r *UserUpdateRequest) Update(passwordDigest []byte) domain.UserUpdate {
	return domain.UserUpdate{
		Username: r.Username,
		Nickname: r.Nickname,
		Email:    r.Email,
		Password: passwordDigest,
	}
}

// HasPassword reports whether the update carries a password change.
func (r *UserUpdateRequest) HasPassword() bool {
	return strings.TrimSpace(r.Password) != ""
}
