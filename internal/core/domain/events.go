package domain

import "time"

// UserRegisteredEvent is emitted after a successful registration.
type UserRegisteredEvent struct {
	UserID       int
	Username     string
	Email        string
	RegisteredAt time.Time
}

// UserLoggedInEvent is emitted after a credential login or fresh login.
type UserLoggedInEvent struct {
	UserID   int
	Username string
	Fresh    bool
	At       time.Time
}

// UserLoggedOutEvent is emitted when a refresh token is revoked.
type UserLoggedOutEvent struct {
	JTI string
	At  time.Time
}
