// Package auth issues and verifies bearer tokens and hashes account passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
)

// SuperAdminID is the subject of tokens issued to the configured superadmin,
// who has no stored account.
const SuperAdminID = "superadmin"

type TokenService struct {
	Secret   []byte
	Duration time.Duration
	now      func() time.Time
}

func NewTokenService(secret string, d time.Duration) TokenService {
	if d <= 0 {
		d = 24 * time.Hour
	}
	return TokenService{Secret: []byte(secret), Duration: d, now: time.Now}
}

// Claims is the token payload; it is also what /me returns.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

func (ts TokenService) clock() time.Time {
	if ts.now != nil {
		return ts.now()
	}
	return time.Now()
}

func (ts TokenService) Sign(id, email, role, name string) (string, time.Time, error) {
	now := ts.clock()
	exp := now.Add(ts.Duration)

	claims := Claims{
		UserID: id,
		Email:  email,
		Role:   role,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(ts.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, exp, nil
}

// Parse verifies an HS256 token. Every failure is reported as Unauthorized.
func (ts TokenService) Parse(tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.Secret, nil
	}, jwt.WithTimeFunc(ts.clock))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Wrap(apperr.KindUnauthorized, "Token expired", err)
		}
		return nil, apperr.Wrap(apperr.KindUnauthorized, "Invalid token", err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, apperr.Unauthorized("Invalid token")
	}
	return claims, nil
}
