package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zywangzy/fun-with-flags/internal/core/domain"
	"github.com/zywangzy/fun-with-flags/internal/core/port"
	"github.com/zywangzy/fun-with-flags/internal/infra/logger"
	"github.com/zywangzy/fun-with-flags/internal/infra/security"
	"github.com/zywangzy/fun-with-flags/internal/repository"
)

const defaultSessionTTLMargin = 1.2

// AuthService orchestrates registration, credential login and the token
// lifecycle.
type AuthService struct {
	users  port.UserRepository
	cache  port.SessionCache
	issuer *security.TokenIssuer
	events port.EventPublisher
	logger *zap.Logger
	// ttlMargin scales cache TTLs past the token lifetime so a jti entry
	// never expires before the token it tracks.
	ttlMargin float64
}

// NewAuthService constructs the auth service. A ttlMargin below 1 falls back
// to the default margin.
func NewAuthService(users port.UserRepository, cache port.SessionCache, issuer *security.TokenIssuer, events port.EventPublisher, log *zap.Logger, ttlMargin float64) *AuthService {
	if ttlMargin < 1 {
		ttlMargin = defaultSessionTTLMargin
	}
	return &AuthService{
		users:     users,
		cache:     cache,
		issuer:    issuer,
		events:    events,
		logger:    log,
		ttlMargin: ttlMargin,
	}
}

// TokenPair bundles the two tokens a credential login produces.
type TokenPair struct {
	AccessToken  domain.IssuedToken
	RefreshToken domain.IssuedToken
}

// Register creates an account from a validated request. Username and email
// uniqueness violations surface as repository.ErrConflict.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (domain.UserBasic, error) {
	hash, salt, err := security.GenerateSaltAndHash(req.Password)
	if err != nil {
		return domain.UserBasic{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		UserID:    domain.UnknownUserID,
		Username:  req.Username,
		Nickname:  req.Nickname,
		Email:     req.Email,
		Password:  hash,
		Salt:      salt,
		CreatedAt: now,
	}

	id, err := s.users.Create(ctx, user)
	if err != nil {
		return domain.UserBasic{}, err
	}
	user.UserID = id

	if score := security.PasswordStrength(req.Password, req.Username, req.Email); score < 3 {
		s.logger.Info("Weak password accepted at registration",
			zap.Int("user_id", id),
			zap.Int("strength_score", score),
		)
	}

	s.publishRegistered(ctx, user, now)

	return user.Basic(), nil
}

// Login verifies the credentials and mints a fresh access token plus a
// refresh token, registering both jtis in the session cache. Lookup failures
// and unknown usernames both surface as repository.ErrNotFound so the
// response does not distinguish them.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (TokenPair, error) {
	user, err := s.verifyCredentials(ctx, req)
	if err != nil {
		return TokenPair{}, err
	}

	access, err := s.issuer.MintAccessToken(user.UserID, true)
	if err != nil {
		return TokenPair{}, fmt.Errorf("mint access token: %w", err)
	}
	refresh, err := s.issuer.MintRefreshToken(user.UserID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("mint refresh token: %w", err)
	}

	if err := s.registerToken(ctx, access); err != nil {
		return TokenPair{}, err
	}
	if err := s.registerToken(ctx, refresh); err != nil {
		return TokenPair{}, err
	}

	s.publishLoggedIn(ctx, user, true)

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// FreshLogin re-verifies the password of a user already holding a valid
// refresh token and mints a fresh access token only. No refresh token is
// issued; the existing one stays valid.
func (s *AuthService) FreshLogin(ctx context.Context, userID int, password string) (domain.IssuedToken, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.IssuedToken{}, repository.ErrNotFound
	}

	if !security.VerifyPassword(password, user.Salt, user.Password) {
		return domain.IssuedToken{}, NewBadRequestError("Invalid username and password combination")
	}

	access, err := s.issuer.MintAccessToken(user.UserID, true)
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("mint access token: %w", err)
	}

	if err := s.registerToken(ctx, access); err != nil {
		return domain.IssuedToken{}, err
	}

	s.publishLoggedIn(ctx, user, true)

	return access, nil
}

// RefreshAccessToken exchanges a live refresh token for a non-fresh access
// token. A revoked or unknown refresh jti is rejected.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (domain.IssuedToken, error) {
	claims, err := s.issuer.Parse(refreshToken, security.TokenTypeRefresh)
	if err != nil {
		return domain.IssuedToken{}, err
	}

	if !s.IsTokenActive(ctx, claims.ID) {
		return domain.IssuedToken{}, repository.ErrNotFound
	}

	access, err := s.issuer.MintAccessToken(claims.UserID, false)
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("mint access token: %w", err)
	}

	if err := s.registerToken(ctx, access); err != nil {
		return domain.IssuedToken{}, err
	}

	return access, nil
}

// Logout revokes the refresh token by overwriting its cache entry with the
// logout status. Revoking an already revoked or expired token succeeds; the
// end state is the same.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.issuer.Parse(refreshToken, security.TokenTypeRefresh)
	if err != nil {
		return err
	}

	ttl := s.cacheTTL(s.issuer.RefreshTTL())
	if err := s.cache.Set(ctx, claims.ID, domain.SessionStatusLogout, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	if s.events != nil {
		event := domain.UserLoggedOutEvent{JTI: claims.ID, At: time.Now().UTC()}
		if err := s.events.PublishUserLoggedOut(ctx, event); err != nil {
			s.logger.Warn("Failed to publish logout event", zap.Error(err))
		}
	}

	return nil
}

// ParseAccessToken validates an access token and confirms its jti is still
// registered as live. A revoked or unregistered jti surfaces as
// repository.ErrNotFound.
func (s *AuthService) ParseAccessToken(ctx context.Context, token string) (*security.Claims, error) {
	claims, err := s.issuer.Parse(token, security.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	if !s.IsTokenActive(ctx, claims.ID) {
		return nil, repository.ErrNotFound
	}
	return claims, nil
}

// ParseRefreshToken validates a refresh token and confirms its jti is still
// registered as live, with the same fail-closed semantics as
// ParseAccessToken.
func (s *AuthService) ParseRefreshToken(ctx context.Context, token string) (*security.Claims, error) {
	claims, err := s.issuer.Parse(token, security.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if !s.IsTokenActive(ctx, claims.ID) {
		return nil, repository.ErrNotFound
	}
	return claims, nil
}

// IsTokenActive reports whether the jti is registered and not revoked. Cache
// errors and missing entries both count as revoked.
func (s *AuthService) IsTokenActive(ctx context.Context, jti string) bool {
	status, err := s.cache.Get(ctx, jti)
	if err != nil {
		return false
	}
	return status == domain.SessionStatusLogin
}

func (s *AuthService) verifyCredentials(ctx context.Context, req LoginRequest) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		// Lookup failures collapse into not-found so the caller cannot
		// probe for existing usernames.
		return nil, repository.ErrNotFound
	}

	if !security.VerifyPassword(req.Password, user.Salt, user.Password) {
		return nil, NewBadRequestError("Invalid username and password combination")
	}

	return user, nil
}

func (s *AuthService) registerToken(ctx context.Context, token domain.IssuedToken) error {
	ttl := s.cacheTTL(token.TTL)
	if err := s.cache.Set(ctx, token.JTI, domain.SessionStatusLogin, ttl); err != nil {
		return fmt.Errorf("register token: %w", err)
	}
	return nil
}

func (s *AuthService) cacheTTL(tokenTTL time.Duration) time.Duration {
	return time.Duration(float64(tokenTTL) * s.ttlMargin)
}

func (s *AuthService) publishRegistered(ctx context.Context, user domain.User, at time.Time) {
	if s.events == nil {
		return
	}
	event := domain.UserRegisteredEvent{
		UserID:       user.UserID,
		Username:     user.Username,
		Email:        user.Email,
		RegisteredAt: at,
	}
	if err := s.events.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Warn("Failed to publish registration event",
			zap.Int("user_id", user.UserID),
			zap.String("email", logger.MaskEmail(user.Email)),
			zap.Error(err),
		)
	}
}

func (s *AuthService) publishLoggedIn(ctx context.Context, user *domain.User, fresh bool) {
	if s.events == nil {
		return
	}
	event := domain.UserLoggedInEvent{
		UserID:   user.UserID,
		Username: user.Username,
		Fresh:    fresh,
		At:       time.Now().UTC(),
	}
	if err := s.events.PublishUserLoggedIn(ctx, event); err != nil {
		s.logger.Warn("Failed to publish login event",
			zap.Int("user_id", user.UserID),
			zap.Error(err),
		)
	}
}
