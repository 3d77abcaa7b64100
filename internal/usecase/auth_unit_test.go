package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/zywangzy/fun-with-flags/internal/core/domain"
	"github.com/zywangzy/fun-with-flags/internal/infra/security"
	"github.com/zywangzy/fun-with-flags/internal/repository"
)

type stubUserRepo struct {
	createFn        func(ctx context.Context, user domain.User) (int, error)
	getByIDFn       func(ctx context.Context, id int) (*domain.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	updateFn        func(ctx context.Context, id int, update domain.UserUpdate) error
	deleteFn        func(ctx context.Context, id int) error
}

func (s *stubUserRepo) Create(ctx context.Context, user domain.User) (int, error) {
	if s.createFn == nil {
		return 0, errors.New("unexpected Create call")
	}
	return s.createFn(ctx, user)
}

func (s *stubUserRepo) GetByID(ctx context.Context, id int) (*domain.User, error) {
	if s.getByIDFn == nil {
		return nil, errors.New("unexpected GetByID call")
	}
	return s.getByIDFn(ctx, id)
}

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if s.getByUsernameFn == nil {
		return nil, errors.New("unexpected GetByUsername call")
	}
	return s.getByUsernameFn(ctx, username)
}

func (s *stubUserRepo) Update(ctx context.Context, id int, update domain.UserUpdate) error {
	if s.updateFn == nil {
		return errors.New("unexpected Update call")
	}
	return s.updateFn(ctx, id, update)
}

func (s *stubUserRepo) Delete(ctx context.Context, id int) error {
	if s.deleteFn == nil {
		return errors.New("unexpected Delete call")
	}
	return s.deleteFn(ctx, id)
}

type memorySessionCache struct {
	entries map[string]string
	ttls    map[string]time.Duration
	failSet error
	failGet error
}

func newMemorySessionCache() *memorySessionCache {
	return &memorySessionCache{
		entries: make(map[string]string),
		ttls:    make(map[string]time.Duration),
	}
}

func (c *memorySessionCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if c.failSet != nil {
		return c.failSet
	}
	c.entries[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *memorySessionCache) Get(_ context.Context, key string) (string, error) {
	if c.failGet != nil {
		return "", c.failGet
	}
	value, ok := c.entries[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return value, nil
}

func newTestIssuer(t *testing.T) *security.TokenIssuer {
	t.Helper()

	issuer, err := security.NewTokenIssuer("unit-test-secret", "fun-with-flags", 10*time.Minute, 168*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	return issuer
}

func storedCredentials(t *testing.T, password string) (hash, salt []byte) {
	t.Helper()

	hash, salt, err := security.GenerateSaltAndHash(password)
	if err != nil {
		t.Fatalf("GenerateSaltAndHash: %v", err)
	}
	return hash, salt
}

func TestAuthService_Register(t *testing.T) {
	var created domain.User
	repo := &stubUserRepo{
		createFn: func(_ context.Context, user domain.User) (int, error) {
			created = user
			return 11, nil
		},
	}

	svc := NewAuthService(repo, newMemorySessionCache(), newTestIssuer(t), nil, zaptest.NewLogger(t), 1.2)

	req, err := NewRegisterRequest("zhiyu", "zy", "zhiyu@example.com", "AbC123@x")
	if err != nil {
		t.Fatalf("NewRegisterRequest: %v", err)
	}

	basic, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if basic.UserID != 11 || basic.Username != "zhiyu" {
		t.Fatalf("unexpected result: %+v", basic)
	}
	if len(created.Password) == 0 || len(created.Salt) == 0 {
		t.Fatal("expected digest and salt to be persisted")
	}
	if string(created.Password) == "AbC123@x" {
		t.Fatal("plaintext password must never be persisted")
	}
	if !security.VerifyPassword("AbC123@x", created.Salt, created.Password) {
		t.Fatal("persisted digest does not verify against the password")
	}
}

func TestAuthService_RegisterConflict(t *testing.T) {
	repo := &stubUserRepo{
		createFn: func(context.Context, domain.User) (int, error) {
			return 0, repository.ErrConflict
		},
	}

	svc := NewAuthService(repo, newMemorySessionCache(), newTestIssuer(t), nil, zaptest.NewLogger(t), 1.2)

	req, err := NewRegisterRequest("zhiyu", "", "zhiyu@example.com", "AbC123@x")
	if err != nil {
		t.Fatalf("NewRegisterRequest: %v", err)
	}

	if _, err := svc.Register(context.Background(), req); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	hash, salt := storedCredentials(t, "AbC123@x")
	repo := &stubUserRepo{
		getByUsernameFn: func(_ context.Context, username string) (*domain.User, error) {
			if username != "zhiyu" {
				return nil, repository.ErrNotFound
			}
			return &domain.User{UserID: 5, Username: "zhiyu", Password: hash, Salt: salt, Valid: true}, nil
		},
	}
	cache := newMemorySessionCache()
	issuer := newTestIssuer(t)

	svc := NewAuthService(repo, cache, issuer, nil, zaptest.NewLogger(t), 1.2)

	pair, err := svc.Login(context.Background(), LoginRequest{Username: "zhiyu", Password: "AbC123@x"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if !pair.AccessToken.Fresh {
		t.Fatal("credential login must mint a fresh access token")
	}
	if pair.RefreshToken.Fresh {
		t.Fatal("refresh tokens are never fresh")
	}

	for _, token := range []domain.IssuedToken{pair.AccessToken, pair.RefreshToken} {
		if cache.entries[token.JTI] != domain.SessionStatusLogin {
			t.Fatalf("expected jti %q registered as login", token.JTI)
		}
		wantTTL := time.Duration(float64(token.TTL) * 1.2)
		if cache.ttls[token.JTI] != wantTTL {
			t.Fatalf("expected cache ttl %v, got %v", wantTTL, cache.ttls[token.JTI])
		}
	}

	claims, err := issuer.Parse(pair.AccessToken.Token, security.TokenTypeAccess)
	if err != nil {
		t.Fatalf("minted access token does not parse: %v", err)
	}
	if claims.UserID != 5 || !claims.Fresh {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_LoginUnknownUser(t *testing.T) {
	repo := &stubUserRepo{
		getByUsernameFn: func(context.Context, string) (*domain.User, error) {
			return nil, repository.ErrNotFound
		},
	}

	svc := NewAuthService(repo, newMemorySessionCache(), newTestIssuer(t), nil, zaptest.NewLogger(t), 1.2)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "AbC123@x"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAuthService_LoginStoreFailureLooksLikeUnknownUser(t *testing.T) {
	repo := &stubUserRepo{
		getByUsernameFn: func(context.Context, string) (*domain.User, error) {
			return nil, errors.New("connection reset")
		},
	}

	svc := NewAuthService(repo, newMemorySessionCache(), newTestIssuer(t), nil, zaptest.NewLogger(t), 1.2)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "zhiyu", Password: "AbC123@x"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected lookup failures to collapse into ErrNotFound, got %v", err)
	}
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	hash, salt := storedCredentials(t, "AbC123@x")
	repo := &stubUserRepo{
		getByUsernameFn: func(context.Context, string) (*domain.User, error) {
			return &domain.User{UserID: 5, Username: "zhiyu", Password: hash, Salt: salt, Valid: true}, nil
		},
	}

	svc := NewAuthService(repo, newMemorySessionCache(), newTestIssuer(t), nil, zaptest.NewLogger(t), 1.2)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "zhiyu", Password: "Wrong1@x"})
	var badRequest *BadRequestError
	if !errors.As(err, &badRequest) {
		t.Fatalf("expected BadRequestError, got %v", err)
	}
}

func TestAuthService_FreshLogin(t *testing.T) {
	hash, salt := storedCredentials(t, "AbC123@x")
	repo := &stubUserRepo{
		getByIDFn: func(_ context.Context, id int) (*domain.User, error) {
			if id != 5 {
				return nil, repository.ErrNotFound
			}
			return &domain.User{UserID: 5, Username: "zhiyu", Password: hash, Salt: salt, Valid: true}, nil
		},
	}
	cache := newMemorySessionCache()

	svc := NewAuthService(repo, cache, newTestIssuer(t), nil, zaptest.NewLogger(t), 1.2)

	access, err := svc.FreshLogin(context.Background(), 5, "AbC123@x")
	if err != nil {
		t.Fatalf("FreshLogin returned error: %v", err)
	}
	if !access.Fresh {
		t.Fatal("fresh login must mint a fresh access token")
	}
	if cache.entries[access.JTI] != domain.SessionStatusLogin {
		t.Fatal("expected access jti registered as login")
	}
	if len(cache.entries) != 1 {
		t.Fatalf("fresh login must not mint a refresh token, cache has %d entries", len(cache.entries))
	}

	if _, err := svc.FreshLogin(context.Background(), 9, "AbC123@x"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}

	_, err = svc.FreshLogin(context.Background(), 5, "Wrong1@x")
	var badRequest *BadRequestError
	if !errors.As(err, &badRequest) {
		t.Fatalf("expected BadRequestError for wrong password, got %v", err)
	}
}

func TestAuthService_RefreshAccessToken(t *testing.T) {
	issuer := newTestIssuer(t)
	cache := newMemorySessionCache()

	svc := NewAuthService(&stubUserRepo{}, cache, issuer, nil, zaptest.NewLogger(t), 1.2)

	refresh, err := issuer.MintRefreshToken(5)
	if err != nil {
		t.Fatalf("MintRefreshToken: %v", err)
	}
	cache.entries[refresh.JTI] = domain.SessionStatusLogin

	access, err := svc.RefreshAccessToken(context.Background(), refresh.Token)
	if err != nil {
		t.Fatalf("RefreshAccessToken returned error: %v", err)
	}
	if access.Fresh {
		t.Fatal("refreshed access tokens must not be fresh")
	}

	claims, err := issuer.Parse(access.Token, security.TokenTypeAccess)
	if err != nil {
		t.Fatalf("refreshed access token does not parse: %v", err)
	}
	if claims.UserID != 5 || claims.Fresh {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_RefreshRejectsRevokedToken(t *testing.T) {
	issuer := newTestIssuer(t)
	cache := newMemorySessionCache()

	svc := NewAuthService(&stubUserRepo{}, cache, issuer, nil, zaptest.NewLogger(t), 1.2)

	refresh, err := issuer.MintRefreshToken(5)
	if err != nil {
		t.Fatalf("MintRefreshToken: %v", err)
	}
	cache.entries[refresh.JTI] = domain.SessionStatusLogout

	if _, err := svc.RefreshAccessToken(context.Background(), refresh.Token); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected revoked refresh token to be rejected, got %v", err)
	}
}

func TestAuthService_RefreshRejectsUnregisteredToken(t *testing.T) {
	issuer := newTestIssuer(t)

	svc := NewAuthService(&stubUserRepo{}, newMemorySessionCache(), issuer, nil, zaptest.NewLogger(t), 1.2)

	refresh, err := issuer.MintRefreshToken(5)
	if err != nil {
		t.Fatalf("MintRefreshToken: %v", err)
	}

	if _, err := svc.RefreshAccessToken(context.Background(), refresh.Token); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected unregistered refresh token to be rejected, got %v", err)
	}
}

func TestAuthService_RefreshRejectsAccessToken(t *testing.T) {
	issuer := newTestIssuer(t)

	svc := NewAuthService(&stubUserRepo{}, newMemorySessionCache(), issuer, nil, zaptest.NewLogger(t), 1.2)

	access, err := issuer.MintAccessToken(5, true)
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	if _, err := svc.RefreshAccessToken(context.Background(), access.Token); !errors.Is(err, security.ErrInvalidToken) {
		t.Fatalf("expected access token to be rejected as refresh, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	issuer := newTestIssuer(t)
	cache := newMemorySessionCache()

	svc := NewAuthService(&stubUserRepo{}, cache, issuer, nil, zaptest.NewLogger(t), 1.2)

	refresh, err := issuer.MintRefreshToken(5)
	if err != nil {
		t.Fatalf("MintRefreshToken: %v", err)
	}
	cache.entries[refresh.JTI] = domain.SessionStatusLogin

	if err := svc.Logout(context.Background(), refresh.Token); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if cache.entries[refresh.JTI] != domain.SessionStatusLogout {
		t.Fatal("expected jti overwritten with logout status")
	}

	// Logging out again reaches the same end state.
	if err := svc.Logout(context.Background(), refresh.Token); err != nil {
		t.Fatalf("repeated Logout returned error: %v", err)
	}
	if cache.entries[refresh.JTI] != domain.SessionStatusLogout {
		t.Fatal("expected jti to stay revoked")
	}
}

func TestAuthService_IsTokenActiveFailClosed(t *testing.T) {
	cache := newMemorySessionCache()
	svc := NewAuthService(&stubUserRepo{}, cache, newTestIssuer(t), nil, zaptest.NewLogger(t), 1.2)

	ctx := context.Background()

	if svc.IsTokenActive(ctx, "missing") {
		t.Fatal("missing jti must count as revoked")
	}

	cache.entries["revoked"] = domain.SessionStatusLogout
	if svc.IsTokenActive(ctx, "revoked") {
		t.Fatal("logout status must count as revoked")
	}

	cache.entries["live"] = domain.SessionStatusLogin
	if !svc.IsTokenActive(ctx, "live") {
		t.Fatal("login status must count as active")
	}

	cache.failGet = errors.New("connection refused")
	if svc.IsTokenActive(ctx, "live") {
		t.Fatal("cache errors must count as revoked")
	}
}
