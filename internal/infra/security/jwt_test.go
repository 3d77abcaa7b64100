package security

import (
	"errors"
	"testing"
	"time"
)

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()

	issuer, err := NewTokenIssuer("test-secret", "fun-with-flags", 10*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer returned error: %v", err)
	}
	return issuer
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer("", "fun-with-flags", 0, 0); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	issuer := newTestIssuer(t)

	minted, err := issuer.MintAccessToken(42, true)
	if err != nil {
		t.Fatalf("MintAccessToken returned error: %v", err)
	}
	if minted.JTI == "" {
		t.Fatalf("expected a jti on the minted token")
	}
	if !minted.Fresh {
		t.Fatalf("expected fresh flag to be set")
	}
	if minted.TTL != 10*time.Minute {
		t.Fatalf("expected access ttl 10m, got %v", minted.TTL)
	}

	claims, err := issuer.Parse(minted.Token, TokenTypeAccess)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected uid 42, got %d", claims.UserID)
	}
	if !claims.Fresh {
		t.Fatalf("expected fresh claim")
	}
	if claims.ID != minted.JTI {
		t.Fatalf("jti mismatch: %s vs %s", claims.ID, minted.JTI)
	}
}

func TestParseRejectsWrongTokenType(t *testing.T) {
	issuer := newTestIssuer(t)

	refresh, err := issuer.MintRefreshToken(7)
	if err != nil {
		t.Fatalf("MintRefreshToken returned error: %v", err)
	}

	if _, err := issuer.Parse(refresh.Token, TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for refresh-as-access, got %v", err)
	}
	if _, err := issuer.Parse(refresh.Token, TokenTypeRefresh); err != nil {
		t.Fatalf("expected refresh token to parse as refresh, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issuer := newTestIssuer(t)

	base := time.Now().UTC()
	issuer.WithClock(func() time.Time { return base })

	minted, err := issuer.MintAccessToken(1, false)
	if err != nil {
		t.Fatalf("MintAccessToken returned error: %v", err)
	}

	issuer.WithClock(func() time.Time { return base.Add(11 * time.Minute) })
	if _, err := issuer.Parse(minted.Token, TokenTypeAccess); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	issuer := newTestIssuer(t)

	other, err := NewTokenIssuer("other-secret", "fun-with-flags", 0, 0)
	if err != nil {
		t.Fatalf("NewTokenIssuer returned error: %v", err)
	}

	minted, err := other.MintAccessToken(5, false)
	if err != nil {
		t.Fatalf("MintAccessToken returned error: %v", err)
	}

	if _, err := issuer.Parse(minted.Token, TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}
