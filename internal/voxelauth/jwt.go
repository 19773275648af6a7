// Package voxelauth issues and validates the bearer tokens that gate
// cmd/voxeldemo's debug HTTP surface.
package voxelauth

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var secret []byte

func init() {
	secret = make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		secret = []byte("voxeldemo-development-secret-change-in-production")
	}
}

// SetSecret overrides the random startup secret, e.g. from an env var in
// a deployment that needs tokens to survive a restart.
func SetSecret(raw []byte) {
	secret = raw
}

// Claims identifies the caller as an operator of the debug surface;
// there's no notion of per-user scope since this is a single-operator
// debug tool, not a multi-tenant API.
type Claims struct {
	Operator string `json:"operator"`
	jwt.RegisteredClaims
}

// Issue mints a token for operator valid for the given lifetime.
func Issue(operator string, lifetime time.Duration) (string, error) {
	claims := &Claims{
		Operator: operator,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "voxeldemo",
			Subject:   operator,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Validate parses and verifies tokenString, returning the operator name
// on success.
func Validate(tokenString string) (operator string, ok bool) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, isHMAC := token.Method.(*jwt.SigningMethodHMAC); !isHMAC {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	return claims.Operator, true
}
