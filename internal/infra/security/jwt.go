package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/zywangzy/fun-with-flags/internal/core/domain"
)

// Token type discriminators embedded in the "typ" claim. Refresh tokens must
// never be accepted where an access token is expected and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	// ErrInvalidToken indicates the token is malformed, has a bad signature,
	// or carries the wrong type claim.
	ErrInvalidToken = errors.New("jwt: invalid token")
	// ErrExpiredToken indicates the token elapsed its validity window.
	ErrExpiredToken = errors.New("jwt: token expired")
)

// Claims binds a token to a user identity. Fresh marks access tokens minted
// directly from a full credential check; tokens minted via refresh are never
// fresh.
type Claims struct {
	UserID    int    `json:"uid"`
	Fresh     bool   `json:"fresh,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and parses HS256-signed access and refresh tokens.
type TokenIssuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

const (
	defaultAccessTokenTTL  = 10 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// NewTokenIssuer constructs a TokenIssuer. The signing secret is mandatory;
// zero TTLs fall back to the defaults (10m access, 7d refresh).
func NewTokenIssuer(secret, issuer string, accessTTL, refreshTTL time.Duration) (*TokenIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt: signing secret is required")
	}
	if accessTTL <= 0 {
		accessTTL = defaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTokenTTL
	}

	return &TokenIssuer{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock overrides the internal clock for deterministic testing.
func (i *TokenIssuer) WithClock(clock func() time.Time) *TokenIssuer {
	if clock != nil {
		i.now = clock
	}
	return i
}

// AccessTTL returns the configured access token lifetime.
func (i *TokenIssuer) AccessTTL() time.Duration { return i.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (i *TokenIssuer) RefreshTTL() time.Duration { return i.refreshTTL }

// MintAccessToken issues an identity-bound access token. Login and fresh
// login mint with fresh=true; the refresh flow mints with fresh=false.
func (i *TokenIssuer) MintAccessToken(userID int, fresh bool) (domain.IssuedToken, error) {
	return i.mint(userID, TokenTypeAccess, fresh, i.accessTTL)
}

// MintRefreshToken issues an identity-bound refresh token. Refresh tokens are
// only minted at login.
func (i *TokenIssuer) MintRefreshToken(userID int) (domain.IssuedToken, error) {
	return i.mint(userID, TokenTypeRefresh, false, i.refreshTTL)
}

func (i *TokenIssuer) mint(userID int, tokenType string, fresh bool, ttl time.Duration) (domain.IssuedToken, error) {
	if userID <= 0 {
		return domain.IssuedToken{}, fmt.Errorf("jwt: user id is required")
	}

	now := i.now()
	expiresAt := now.Add(ttl)
	jti := uuid.NewString()

	claims := Claims{
		UserID:    userID,
		Fresh:     fresh,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("jwt: sign token: %w", err)
	}

	return domain.IssuedToken{
		Token:     signed,
		JTI:       jti,
		TTL:       ttl,
		Fresh:     fresh,
		ExpiresAt: expiresAt,
	}, nil
}

// Parse validates the signature and registered claims and enforces the
// expected token type.
func (i *TokenIssuer) Parse(token, expectedType string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != expectedType {
		return nil, ErrInvalidToken
	}
	if claims.UserID <= 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
