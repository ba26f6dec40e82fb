package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtClaims mirrors the identity provider's token payload.
type jwtClaims struct {
	Phone string `json:"phone_number,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies provider tokens offline against a shared HS256 secret.
// Used in development and tests, where no identity service is reachable.
type JWTVerifier struct {
	secretKey []byte
	expiry    time.Duration
}

func NewJWTVerifier(secretKey string, expiry time.Duration) *JWTVerifier {
	return &JWTVerifier{
		secretKey: []byte(secretKey),
		expiry:    expiry,
	}
}

// Verify parses and validates the token, returning its claims.
func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{
		SubjectID: claims.Subject,
		Phone:     claims.Phone,
		Email:     claims.Email,
	}, nil
}

// GenerateToken mints a token this verifier will accept. Development and test
// helper only.
func (v *JWTVerifier) GenerateToken(subjectID, phone, email string) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		Phone: phone,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secretKey)
}
