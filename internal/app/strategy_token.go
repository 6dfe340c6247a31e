package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"wellmatch/internal/domain"
)

// TokenStrategy keeps a bearer token in a CredentialStore and derives the
// identity from its claims.
//
// Claims are decoded without verifying the signature. The decoded identity
// only selects which dashboard to show; the backend verifies the token on
// every request.
type TokenStrategy struct {
	creds  domain.CredentialStore
	parser *jwt.Parser

	mu    sync.RWMutex
	token string
}

// NewTokenStrategy creates a token strategy persisting into creds.
func NewTokenStrategy(creds domain.CredentialStore) *TokenStrategy {
	return &TokenStrategy{creds: creds, parser: jwt.NewParser()}
}

// Mode implements Strategy.
func (t *TokenStrategy) Mode() domain.AuthMode { return domain.TokenMode }

// Credential returns the active bearer token, or "".
func (t *TokenStrategy) Credential() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

// Restore implements Strategy.
func (t *TokenStrategy) Restore(ctx context.Context, _ domain.AuthAPI) (*domain.Session, error) {
	raw, err := t.creds.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if raw == "" {
		return nil, nil
	}
	sess, err := t.decode(raw, domain.Identity{})
	if err != nil {
		return nil, err
	}
	t.setToken(raw)
	return sess, nil
}

// Build implements Strategy. Identity fields from the response body take
// precedence; claims fill whatever the body omitted.
func (t *TokenStrategy) Build(_ context.Context, res domain.LoginResult) (*domain.Session, error) {
	if res.Token == "" {
		return nil, fmt.Errorf("%w: login response has no token", domain.ErrMalformedCredential)
	}
	return t.decode(res.Token, res.Identity)
}

// Persist implements Strategy.
func (t *TokenStrategy) Persist(ctx context.Context, s *domain.Session) error {
	if err := t.creds.Save(ctx, s.Credential); err != nil {
		return err
	}
	t.setToken(s.Credential)
	return nil
}

// Clear implements Strategy.
func (t *TokenStrategy) Clear(ctx context.Context) error {
	t.setToken("")
	return t.creds.Clear(ctx)
}

func (t *TokenStrategy) setToken(tok string) {
	t.mu.Lock()
	t.token = tok
	t.mu.Unlock()
}

func (t *TokenStrategy) decode(raw string, body domain.Identity) (*domain.Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := t.parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedCredential, err)
	}

	fromClaims, err := domain.IdentityFromFields(claims)
	if err != nil {
		return nil, err
	}
	id := merge(body, fromClaims)
	if id.Role == "" {
		return nil, fmt.Errorf("%w: no role claim", domain.ErrMalformedCredential)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: no expiry claim", domain.ErrMalformedCredential)
	}

	return &domain.Session{
		Mode:       domain.TokenMode,
		Credential: raw,
		Identity:   id,
		ExpiresAt:  exp.Time,
	}, nil
}

// merge fills zero fields of primary from fallback.
func merge(primary, fallback domain.Identity) domain.Identity {
	if primary.Role == "" {
		primary.Role = fallback.Role
	}
	if primary.UserID == 0 {
		primary.UserID = fallback.UserID
	}
	if primary.ProfessionalID == nil {
		primary.ProfessionalID = fallback.ProfessionalID
	}
	return primary
}
