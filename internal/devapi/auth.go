package devapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"wellmatch/internal/domain"
)

// Claims are the token claims the portal decodes.
type Claims struct {
	UserID         int64       `json:"userId"`
	UserType       domain.Role `json:"userType"`
	ProfessionalID *int64      `json:"professionalId,omitempty"`
	jwt.RegisteredClaims
}

// AuthService handles accounts and HS256 session tokens.
type AuthService struct {
	accounts AccountRepository
	revoked  RevocationRepository
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(accounts AccountRepository, revoked RevocationRepository, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{
		accounts: accounts,
		revoked:  revoked,
		secret:   secret,
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL is the lifetime of issued tokens.
func (s *AuthService) TTL() time.Duration { return s.ttl }

// Login authenticates an account and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *Account, error) {
	acct, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil || acct == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.Issue(acct)
	if err != nil {
		return "", nil, err
	}
	return token, acct, nil
}

// Issue signs a token for acct.
func (s *AuthService) Issue(acct *Account) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:         acct.ID,
		UserType:       acct.Role,
		ProfessionalID: acct.ProfessionalID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(acct.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Register creates a professional account. When approval is required the
// professional starts inactive.
func (s *AuthService) Register(ctx context.Context, fullName, email, password string, requireApproval bool) (*Account, error) {
	reg := domain.Registration{FullName: fullName, Email: email, Password: password, Confirm: password}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return s.create(ctx, Account{
		Email:    normalizeEmail(email),
		FullName: strings.TrimSpace(fullName),
		Role:     domain.RoleProfessional,
	}, password, !requireApproval)
}

// Validate verifies a token and returns its claims.
func (s *AuthService) Validate(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes a token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.Validate(ctx, token)
	if errors.Is(err, ErrTokenRevoked) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// Seed creates an account if the email is unused. It is how the
// development backend gets its fixed admin, professional and client
// accounts.
func (s *AuthService) Seed(ctx context.Context, a Account, password string) (*Account, error) {
	a.Email = normalizeEmail(a.Email)
	existing, err := s.accounts.GetByEmail(ctx, a.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return s.create(ctx, a, password, true)
}

func (s *AuthService) create(ctx context.Context, a Account, password string, active bool) (*Account, error) {
	existing, err := s.accounts.GetByEmail(ctx, a.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	a.PasswordHash = string(hash)
	a.AnonymousID = uuid.NewString()
	a.CreatedAt = s.now().UTC()
	return s.accounts.Create(ctx, a, active)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
