package domain

import "time"

// SessionStatus is the value stored in the session cache under a token's jti.
type SessionStatus = string

const (
	// SessionStatusLogin marks a live token.
	SessionStatusLogin SessionStatus = "login"
	// SessionStatusLogout marks a revoked token. A missing entry counts as
	// revoked too; absence of evidence of life is treated as death.
	SessionStatusLogout SessionStatus = "logout"
)

// IssuedToken captures a freshly minted JWT alongside the metadata the
// session cache needs to register it.
type IssuedToken struct {
	Token     string
	JTI       string
	TTL       time.Duration
	Fresh     bool
	ExpiresAt time.Time
}
