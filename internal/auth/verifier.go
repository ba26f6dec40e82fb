// Package auth verifies bearer tokens issued by the external identity
// provider. The service never mints customer tokens itself; it only checks
// them and extracts the verified subject and contact claims.
package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims are the verified fields extracted from an identity token.
type Claims struct {
	SubjectID string `json:"uid"`
	Phone     string `json:"phoneNumber,omitempty"`
	Email     string `json:"email,omitempty"`
}

// TokenVerifier checks an opaque bearer token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}
