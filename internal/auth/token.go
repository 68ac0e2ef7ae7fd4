package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"wayfarer/internal/apperr"
)

// Claims is what a verified token proves: which credential, issued when.
type Claims struct {
	UserID   uint
	IssuedAt time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 access tokens with a process-wide secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Sign issues a token for the given credential embedding the current time.
func (c *Codec) Sign(userID uint) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})
	return token.SignedString(c.secret)
}

// Verify checks signature and expiry and returns the embedded claims.
// Failures map onto the error taxonomy; the caller never sees jwt internals.
func (c *Codec) Verify(raw string) (Claims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, apperr.ErrExpiredToken
		}
		return Claims{}, apperr.ErrInvalidToken
	}
	if !token.Valid || claims.IssuedAt == nil {
		return Claims{}, apperr.ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return Claims{}, apperr.ErrInvalidToken
	}
	return Claims{UserID: uint(id), IssuedAt: claims.IssuedAt.Time}, nil
}
