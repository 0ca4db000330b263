// Package auth verifies bearer tokens issued by the account service. This
// service never issues login sessions itself; it only checks signatures and
// extracts the caller's identity.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the role claim value granting administrative access.
const RoleAdmin = "admin"

// ErrInvalidToken is returned when a token fails signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	UserID int64
	Role   string
}

// IsAdmin reports whether the identity carries administrative privilege.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Verifier parses and validates bearer tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a token verifier for the given HMAC secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// ParseToken validates the token signature and extracts the caller identity.
func (v *Verifier) ParseToken(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	role, _ := claims["role"].(string)

	return Identity{
		UserID: int64(userID),
		Role:   role,
	}, nil
}

// GenerateToken signs a token for the given identity. Used by tests and
// operational tooling; production tokens come from the account service.
func (v *Verifier) GenerateToken(identity Identity, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": identity.UserID,
		"role":    identity.Role,
		"exp":     time.Now().Add(ttl).Unix(),
	})

	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
