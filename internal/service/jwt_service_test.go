package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"blupr/internal/domain"
)

func testUser() domain.User {
	return domain.User{ID: "u1", Email: "user@example.com", DisplayName: "Test"}
}

func TestJWTService_GenerateParseAccess(t *testing.T) {
	svc := NewJWTService("secret", 15*time.Minute, 30*time.Minute, nil)

	pair, err := svc.GeneratePair(context.Background(), testUser())
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.ExpiresIn != 900 {
		t.Fatalf("unexpected pair %+v", pair)
	}

	claims, err := svc.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "user@example.com" || claims.Issuer != "blupr" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := svc.ParseAccessToken(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected refresh token to be rejected as access, got %v", err)
	}
}

func TestJWTService_RefreshRotation(t *testing.T) {
	ctx := context.Background()
	svc := NewJWTService("secret", 15*time.Minute, 30*time.Minute, NewMemoryRefreshTokenStore())

	pair, err := svc.GeneratePair(ctx, testUser())
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	refreshed, err := svc.RefreshPair(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh pair: %v", err)
	}
	if refreshed.RefreshToken == pair.RefreshToken {
		t.Fatalf("expected a new refresh token")
	}
	if _, err := svc.RefreshPair(ctx, pair.RefreshToken); err == nil {
		t.Fatalf("expected old refresh token to be revoked")
	}
}

func TestJWTService_RevokeRefresh(t *testing.T) {
	ctx := context.Background()
	svc := NewJWTService("secret", 15*time.Minute, 30*time.Minute, nil)
	pair, err := svc.GeneratePair(ctx, testUser())
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if err := svc.RevokeRefresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("revoke refresh: %v", err)
	}
	if _, err := svc.RefreshPair(ctx, pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid, got %v", err)
	}
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService("secret", time.Minute, time.Hour, nil)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	pair, err := svc.GeneratePair(context.Background(), testUser())
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := svc.ParseAccessToken(pair.AccessToken); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	svc := NewJWTService("secret", time.Minute, time.Hour, nil)

	other := NewJWTService("other-secret", time.Minute, time.Hour, nil)
	pair, err := other.GeneratePair(context.Background(), testUser())
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if _, err := svc.ParseAccessToken(pair.AccessToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected wrong signature to fail, got %v", err)
	}

	claims := Claims{
		UserID:    "u1",
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.ParseAccessToken(token); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected wrong issuer to fail, got %v", err)
	}

	if _, err := NewJWTService("", time.Minute, time.Hour, nil).GeneratePair(context.Background(), testUser()); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected empty secret to fail, got %v", err)
	}
}
