// Package auth is the mock authentication service: any non-empty credentials
// are accepted after a short delay and produce a signed session token.
package auth

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"fluxo-storefront/internal/domain"
	"fluxo-storefront/internal/service/shared"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("email and password are required")
	ErrMissingFields      = errors.New("name, email and password are required")
)

const (
	DefaultDelay      = 500 * time.Millisecond
	DefaultSessionTTL = 7 * 24 * time.Hour
)

// Session is returned by Login and Register.
type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      domain.Profile `json:"user"`
}

type Service struct {
	tokens     *tokenManager
	delay      time.Duration
	sessionTTL time.Duration
	logger     *log.Logger
}

func New(secret string, delay time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		tokens:     newTokenManager(secret),
		delay:      delay,
		sessionTTL: DefaultSessionTTL,
		logger:     logger,
	}
}

// Login accepts any non-empty email and password. The display name is the
// local part of the email.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		s.logger.Printf("auth: login rejected, missing credentials")
		return nil, ErrInvalidCredentials
	}
	if err := shared.SleepOrDone(ctx, s.delay); err != nil {
		return nil, err
	}
	name, _, _ := strings.Cut(email, "@")
	return s.issue(mockProfile(name, email))
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		s.logger.Printf("auth: register rejected, missing fields")
		return nil, ErrMissingFields
	}
	if err := shared.SleepOrDone(ctx, s.delay); err != nil {
		return nil, err
	}
	return s.issue(mockProfile(name, email))
}

// Authenticate resolves a session token to the profile it was issued for.
func (s *Service) Authenticate(_ context.Context, token string) (domain.Profile, error) {
	return s.tokens.Validate(token)
}

func (s *Service) issue(profile domain.Profile) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(profile, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("auth: session issued for %s", profile.Email)
	return &Session{Token: token, ExpiresAt: expiresAt, User: profile}, nil
}

func mockProfile(name, email string) domain.Profile {
	return domain.Profile{
		ID:         "1",
		Name:       name,
		Email:      email,
		Phone:      "0000000000",
		Address:    "Rua Exemplo, 123",
		City:       "São Paulo",
		State:      "SP",
		PostalCode: "00000-000",
	}
}
