package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "storefront",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()
	adminID := uuid.New()

	token, expiresAt, err := MintAccessToken(cfg, now, AccessTokenPayload{
		AdminID: adminID,
		Email:   "owner@shop.test",
		Role:    enums.AdminRoleOwner,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.AdminID != adminID {
		t.Fatalf("expected admin_id %s, got %s", adminID, claims.AdminID)
	}
	if claims.Role != enums.AdminRoleOwner {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Email != "owner@shop.test" {
		t.Fatalf("unexpected email %s", claims.Email)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != Audience {
		t.Fatalf("unexpected audience %v", claims.Audience)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	diff := claims.ExpiresAt.Sub(expiresAt)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", expiresAt, claims.ExpiresAt.UTC(), diff)
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig()
	token, _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{AdminID: uuid.New(), Role: enums.AdminRoleStaff})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.ExpirationMinutes = 15
	token, _, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{AdminID: uuid.New(), Role: enums.AdminRoleStaff})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err = ParseAccessToken(cfg, token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestParseAccessTokenRequiresAudience(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()
	claims := AccessTokenClaims{
		AdminID: uuid.New(),
		Role:    enums.AdminRoleOwner,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected token without audience to be rejected")
	}
}

func TestMintAccessTokenValidatesPayload(t *testing.T) {
	cfg := testJWTConfig()
	if _, _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{AdminID: uuid.New(), Role: ""}); err == nil {
		t.Fatal("expected invalid role error")
	}
	if _, _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.AdminRoleOwner}); err == nil {
		t.Fatal("expected missing admin id error")
	}
	cfg.Secret = ""
	if _, _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{AdminID: uuid.New(), Role: enums.AdminRoleOwner}); err == nil {
		t.Fatal("expected missing secret error")
	}
}
