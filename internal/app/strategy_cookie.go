package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"wellmatch/internal/domain"
)

// SessionCookie is the name of the backend's HttpOnly session cookie.
const SessionCookie = "session"

// CookieStrategy relies on a backend session cookie held in a cookie jar
// shared with the API client. The cookie value is mirrored into a
// CredentialStore so a later process can resume the session.
type CookieStrategy struct {
	creds domain.CredentialStore
	jar   http.CookieJar
	base  *url.URL
}

// NewCookieStrategy creates a cookie strategy for the backend at base.
func NewCookieStrategy(creds domain.CredentialStore, jar http.CookieJar, base *url.URL) *CookieStrategy {
	return &CookieStrategy{creds: creds, jar: jar, base: base}
}

// Mode implements Strategy.
func (c *CookieStrategy) Mode() domain.AuthMode { return domain.CookieMode }

// Credential returns the current session cookie value, or "".
func (c *CookieStrategy) Credential() string {
	for _, ck := range c.jar.Cookies(c.base) {
		if ck.Name == SessionCookie {
			return ck.Value
		}
	}
	return ""
}

// Restore implements Strategy. It seeds the jar from storage and probes the
// backend's who-am-I endpoint; the response body is the identity. A stored
// cookie the backend rejects is dropped so it is not replayed next start.
func (c *CookieStrategy) Restore(ctx context.Context, auth domain.AuthAPI) (*domain.Session, error) {
	stored, err := c.creds.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cookie: %w", err)
	}
	if stored != "" {
		c.setCookie(stored, 0)
	}

	id, err := auth.WhoAmI(ctx)
	if errors.Is(err, domain.ErrUnauthorized) {
		if stored != "" {
			if err := c.Clear(ctx); err != nil {
				return nil, fmt.Errorf("clear cookie: %w", err)
			}
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("who am i: %w", err)
	}
	return &domain.Session{Mode: domain.CookieMode, Credential: c.Credential(), Identity: id}, nil
}

// Build implements Strategy. The backend already set the cookie on the
// login response.
func (c *CookieStrategy) Build(_ context.Context, res domain.LoginResult) (*domain.Session, error) {
	if res.Identity.Role == "" {
		return nil, fmt.Errorf("%w: login response has no role", domain.ErrMalformedCredential)
	}
	return &domain.Session{Mode: domain.CookieMode, Credential: c.Credential(), Identity: res.Identity}, nil
}

// Persist implements Strategy.
func (c *CookieStrategy) Persist(ctx context.Context, s *domain.Session) error {
	if s.Credential == "" {
		return nil
	}
	return c.creds.Save(ctx, s.Credential)
}

// Clear implements Strategy.
func (c *CookieStrategy) Clear(ctx context.Context) error {
	c.setCookie("", -1)
	return c.creds.Clear(ctx)
}

func (c *CookieStrategy) setCookie(value string, maxAge int) {
	c.jar.SetCookies(c.base, []*http.Cookie{{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   maxAge,
	}})
}
