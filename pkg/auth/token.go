// Package auth mints and verifies the HS256 access tokens of back-office
// admins.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Audience is stamped on every admin token and required when parsing.
const Audience = "storefront-admin"

var (
	jwtSigningMethod = jwt.SigningMethodHS256

	// ErrExpired is returned by ParseAccessToken for well-formed tokens past
	// their expiry.
	ErrExpired = errors.New("access token expired")
)

// AccessTokenPayload is the admin identity a token is minted for.
type AccessTokenPayload struct {
	AdminID uuid.UUID
	Email   string
	Role    enums.AdminRole
}

// AccessTokenClaims is the JWT body issued to back-office users.
type AccessTokenClaims struct {
	AdminID uuid.UUID       `json:"admin_id"`
	Email   string          `json:"email"`
	Role    enums.AdminRole `json:"role"`
	jwt.RegisteredClaims
}

// MintAccessToken signs a token for payload valid for cfg.TTL from now and
// returns it with its expiry.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, time.Time, error) {
	switch {
	case cfg.Secret == "":
		return "", time.Time{}, fmt.Errorf("jwt secret is required")
	case cfg.Issuer == "":
		return "", time.Time{}, fmt.Errorf("jwt issuer is required")
	case payload.AdminID == uuid.Nil:
		return "", time.Time{}, fmt.Errorf("admin id is required")
	case !payload.Role.IsValid():
		return "", time.Time{}, fmt.Errorf("invalid admin role %q", payload.Role)
	}

	expiresAt := now.Add(cfg.TTL())
	claims := AccessTokenClaims{
		AdminID: payload.AdminID,
		Email:   payload.Email,
		Role:    payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   payload.AdminID.String(),
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing jwt: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseAccessToken verifies signature, issuer, audience and expiry, then
// returns the typed claims.
func ParseAccessToken(cfg config.JWTConfig, tokenString string) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	claims := &AccessTokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return []byte(cfg.Secret), nil },
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrExpired
	}
	if err != nil {
		return nil, err
	}
	if claims.AdminID == uuid.Nil || !claims.Role.IsValid() {
		return nil, fmt.Errorf("token is missing admin claims")
	}
	return claims, nil
}
