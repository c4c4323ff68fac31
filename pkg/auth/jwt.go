// Package auth verifies the bearer tokens issued by the identity provider.
//
// Tokens are HS256 JWTs carrying the user's uid. The role claim is advisory
// only: authorization always re-reads the user document so a stale token
// cannot outlive a role change.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/marketlane/storefront/config"
)

// Claims holds the typed JWT payload.
type Claims struct {
	UID  string `json:"uid"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func secret() []byte {
	return []byte(config.JWTSecret())
}

// GenerateToken mints a signed JWT for the given uid. Used by the `token`
// CLI command and by tests; production tokens come from the identity
// provider.
func GenerateToken(uid, role string, ttl time.Duration) (string, error) {
	claims := Claims{
		UID:  uid,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
}

// ValidateToken parses and validates a JWT string.
func ValidateToken(t string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return secret(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}
