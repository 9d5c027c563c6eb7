// Package auth verifies service-to-service tokens for the internal
// trigger endpoints. End-user authentication lives outside this service.
package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ServiceTokenManager issues and validates HS256 tokens identifying a
// calling service.
type ServiceTokenManager struct {
	secret []byte
}

// NewServiceTokenManager builds a new manager.
func NewServiceTokenManager(secret string) *ServiceTokenManager {
	return &ServiceTokenManager{secret: []byte(secret)}
}

// Claims describes the JWT payload.
type Claims struct {
	Service string `json:"svc"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for the named caller.
func (tm *ServiceTokenManager) GenerateToken(serviceName string, ttl time.Duration) (string, error) {
	claims := &Claims{
		Service: serviceName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   serviceName,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
}

// ParseToken validates and returns claims.
func (tm *ServiceTokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
