package auth

import (
	"errors"
	"fmt"
	"time"

	"fluxo-storefront/internal/domain"
	"github.com/golang-jwt/jwt/v4"
)

type sessionClaims struct {
	Profile domain.Profile `json:"profile"`
	jwt.RegisteredClaims
}

// tokenManager signs and verifies HS256 session tokens that carry the profile.
type tokenManager struct {
	secret []byte
	now    func() time.Time
}

func newTokenManager(secret string) *tokenManager {
	return &tokenManager{secret: []byte(secret), now: time.Now}
}

func (m *tokenManager) Issue(profile domain.Profile, ttl time.Duration) (string, time.Time, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(ttl)
	claims := sessionClaims{
		Profile: profile,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, expiresAt, nil
}

func (m *tokenManager) Validate(token string) (domain.Profile, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return domain.Profile{}, errors.Join(ErrInvalidToken, err)
	}
	if claims.Profile.Email == "" {
		return domain.Profile{}, ErrInvalidToken
	}
	return claims.Profile, nil
}
