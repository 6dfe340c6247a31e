package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"wellmatch/internal/domain"
)

func TestSessionStore_Restore_NoCredential(t *testing.T) {
	store := NewSessionStore(&mockBackend{}, NewTokenStrategy(&mockCreds{}), zap.NewNop())

	sess, err := store.Restore(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sess != nil {
		t.Errorf("expected no session, got %+v", sess)
	}
}

func TestSessionStore_Restore_RejectsBadTokens(t *testing.T) {
	future := time.Now().Add(time.Hour)
	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{"garbage", func(t *testing.T) string { return "not-a-jwt" }, domain.ErrMalformedCredential},
		{"bad base64", func(t *testing.T) string { return "a.!!!.c" }, domain.ErrMalformedCredential},
		{"expired", func(t *testing.T) string { return professionalToken(t, 42, time.Now().Add(-time.Minute)) }, domain.ErrSessionExpired},
		{"no role", func(t *testing.T) string {
			return signToken(t, jwt.MapClaims{"userId": 1, "exp": future.Unix()})
		}, domain.ErrMalformedCredential},
		{"no expiry", func(t *testing.T) string {
			return signToken(t, jwt.MapClaims{"userType": "admin"})
		}, domain.ErrMalformedCredential},
		{"client role", func(t *testing.T) string {
			return signToken(t, jwt.MapClaims{"userType": "client", "exp": future.Unix()})
		}, domain.ErrAccessRestricted},
		{"professional without id", func(t *testing.T) string {
			return signToken(t, jwt.MapClaims{"userType": "professional", "exp": future.Unix()})
		}, domain.ErrMissingProfessionalID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := &mockCreds{value: tt.token(t)}
			store := NewSessionStore(&mockBackend{}, NewTokenStrategy(creds), zap.NewNop())

			sess, err := store.Restore(context.Background())
			if sess != nil {
				t.Fatalf("expected no session, got %+v", sess)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if creds.stored() != "" {
				t.Error("expected stored credential to be cleared")
			}
			if store.Current() != nil {
				t.Error("expected no current session")
			}
		})
	}
}

func TestSessionStore_Restore_ValidToken(t *testing.T) {
	creds := &mockCreds{value: professionalToken(t, 42, time.Now().Add(time.Hour))}
	strategy := NewTokenStrategy(creds)
	store := NewSessionStore(&mockBackend{}, strategy, zap.NewNop())

	sess, err := store.Restore(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sess.Identity.Role != domain.RoleProfessional {
		t.Errorf("expected professional, got %s", sess.Identity.Role)
	}
	if sess.Identity.ProfessionalID == nil || *sess.Identity.ProfessionalID != 42 {
		t.Errorf("expected professional id 42, got %v", sess.Identity.ProfessionalID)
	}
	if strategy.Credential() == "" {
		t.Error("expected token to be active")
	}
}

func TestSessionStore_Login_Professional(t *testing.T) {
	token := professionalToken(t, 42, time.Now().Add(time.Hour))
	pid := int64(42)
	backend := &mockBackend{
		loginFn: func(ctx context.Context, c domain.Credentials) (domain.LoginResult, error) {
			if c.Email != "dana@example.com" {
				t.Errorf("expected email dana@example.com, got %s", c.Email)
			}
			return domain.LoginResult{Token: token, Identity: domain.Identity{Role: domain.RoleProfessional, ProfessionalID: &pid}}, nil
		},
	}
	creds := &mockCreds{}
	store := NewSessionStore(backend, NewTokenStrategy(creds), zap.NewNop())

	sess, err := store.Login(context.Background(), domain.Credentials{Email: "dana@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sess.Identity.Role != domain.RoleProfessional || *sess.Identity.ProfessionalID != 42 {
		t.Errorf("unexpected identity %+v", sess.Identity)
	}
	if sess.Identity.UserID != 7 {
		t.Errorf("expected user id from claims, got %d", sess.Identity.UserID)
	}
	if creds.stored() != token {
		t.Error("expected token to be persisted")
	}
}

func TestSessionStore_Login_RejectedRolesPersistNothing(t *testing.T) {
	future := time.Now().Add(time.Hour)
	tests := []struct {
		name    string
		claims  jwt.MapClaims
		body    domain.Identity
		wantErr error
	}{
		{"client", jwt.MapClaims{"userType": "client", "exp": future.Unix()}, domain.Identity{Role: domain.RoleClient}, domain.ErrAccessRestricted},
		{"professional without id", jwt.MapClaims{"userType": "professional", "exp": future.Unix()}, domain.Identity{Role: domain.RoleProfessional}, domain.ErrMissingProfessionalID},
		{"unknown", jwt.MapClaims{"userType": "superuser", "exp": future.Unix()}, domain.Identity{}, domain.ErrAccessRestricted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := signToken(t, tt.claims)
			backend := &mockBackend{
				loginFn: func(ctx context.Context, c domain.Credentials) (domain.LoginResult, error) {
					return domain.LoginResult{Token: token, Identity: tt.body}, nil
				},
			}
			creds := &mockCreds{}
			strategy := NewTokenStrategy(creds)
			store := NewSessionStore(backend, strategy, zap.NewNop())

			sess, err := store.Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "secret1"})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if sess != nil || store.Current() != nil {
				t.Error("expected no session")
			}
			if creds.saves != 0 {
				t.Errorf("expected nothing persisted, got %d saves", creds.saves)
			}
			if strategy.Credential() != "" {
				t.Error("expected no active token")
			}
		})
	}
}

func TestSessionStore_Login_ValidationBeforeNetwork(t *testing.T) {
	called := false
	backend := &mockBackend{
		loginFn: func(ctx context.Context, c domain.Credentials) (domain.LoginResult, error) {
			called = true
			return domain.LoginResult{}, nil
		},
	}
	store := NewSessionStore(backend, NewTokenStrategy(&mockCreds{}), zap.NewNop())

	_, err := store.Login(context.Background(), domain.Credentials{Email: "a@b.c"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if called {
		t.Error("expected no backend call")
	}
}

func TestSessionStore_Logout_AlwaysClears(t *testing.T) {
	backend := &mockBackend{
		logoutFn: func(ctx context.Context) error {
			return &domain.TransportError{Op: "POST /api/logout", Err: errors.New("connection refused")}
		},
	}
	creds := &mockCreds{value: adminToken(t, time.Now().Add(time.Hour))}
	store := NewSessionStore(backend, NewTokenStrategy(creds), zap.NewNop())
	if _, err := store.Restore(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var changes []SessionChange
	store.Subscribe(func(c SessionChange) { changes = append(changes, c) })

	store.Logout(context.Background(), ReasonRequested)
	store.Logout(context.Background(), ReasonRequested)

	if store.Current() != nil {
		t.Error("expected no session after logout")
	}
	if creds.stored() != "" {
		t.Error("expected credential cleared")
	}
	if len(changes) != 2 || changes[0].Session != nil {
		t.Errorf("expected two logout notifications, got %+v", changes)
	}
}

func TestSessionStore_Authorized_UnauthorizedLogsOut(t *testing.T) {
	creds := &mockCreds{value: adminToken(t, time.Now().Add(time.Hour))}
	store := NewSessionStore(&mockBackend{}, NewTokenStrategy(creds), zap.NewNop())
	if _, err := store.Restore(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var reason LogoutReason = -1
	store.Subscribe(func(c SessionChange) {
		if c.Session == nil {
			reason = c.Reason
		}
	})

	err := store.Authorized(context.Background(), func(ctx context.Context) error {
		return &domain.APIError{Status: http.StatusForbidden}
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if store.Current() != nil {
		t.Error("expected session to end")
	}
	if reason != ReasonUnauthorized {
		t.Errorf("expected ReasonUnauthorized, got %d", reason)
	}
}

func TestSessionStore_Authorized_ExpiredLogsOut(t *testing.T) {
	creds := &mockCreds{value: adminToken(t, time.Now().Add(time.Hour))}
	store := NewSessionStore(&mockBackend{}, NewTokenStrategy(creds), zap.NewNop())
	if _, err := store.Restore(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	called := false
	err := store.Authorized(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected session expired, got %v", err)
	}
	if called {
		t.Error("expected no backend call with an expired token")
	}
	if store.Current() != nil {
		t.Error("expected session to end")
	}
}

func TestSessionStore_Authorized_NoSession(t *testing.T) {
	store := NewSessionStore(&mockBackend{}, NewTokenStrategy(&mockCreds{}), zap.NewNop())
	err := store.Authorized(context.Background(), func(ctx context.Context) error { return nil })
	if !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestCookieStrategy_RestoreProbesWhoAmI(t *testing.T) {
	jar, _ := cookiejar.New(nil)
	base, _ := url.Parse("http://portal.test")
	creds := &mockCreds{value: "cookie-value"}
	pid := int64(9)
	backend := &mockBackend{
		whoAmIFn: func(ctx context.Context) (domain.Identity, error) {
			return domain.Identity{UserID: 3, Role: domain.RoleProfessional, ProfessionalID: &pid}, nil
		},
	}
	strategy := NewCookieStrategy(creds, jar, base)
	store := NewSessionStore(backend, strategy, zap.NewNop())

	sess, err := store.Restore(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sess.Mode != domain.CookieMode || *sess.Identity.ProfessionalID != 9 {
		t.Errorf("unexpected session %+v", sess)
	}
	if strategy.Credential() != "cookie-value" {
		t.Errorf("expected jar seeded from storage, got %q", strategy.Credential())
	}
}

func TestCookieStrategy_RestoreUnauthorizedIsNoSession(t *testing.T) {
	jar, _ := cookiejar.New(nil)
	base, _ := url.Parse("http://portal.test")
	store := NewSessionStore(&mockBackend{}, NewCookieStrategy(&mockCreds{}, jar, base), zap.NewNop())

	sess, err := store.Restore(context.Background())
	if err != nil || sess != nil {
		t.Errorf("expected no session and no error, got %+v, %v", sess, err)
	}
}

func TestCookieStrategy_RestoreRejectedCookieIsCleared(t *testing.T) {
	jar, _ := cookiejar.New(nil)
	base, _ := url.Parse("http://portal.test")
	creds := &mockCreds{value: "stale-cookie"}
	strategy := NewCookieStrategy(creds, jar, base)
	store := NewSessionStore(&mockBackend{}, strategy, zap.NewNop())

	sess, err := store.Restore(context.Background())
	if err != nil || sess != nil {
		t.Fatalf("expected no session and no error, got %+v, %v", sess, err)
	}
	if creds.stored() != "" || creds.clears != 1 {
		t.Errorf("expected stored cookie cleared once, got %q after %d clears", creds.stored(), creds.clears)
	}
	if strategy.Credential() != "" {
		t.Error("expected cookie removed from jar")
	}
}

func TestCookieStrategy_ClearExpiresCookie(t *testing.T) {
	jar, _ := cookiejar.New(nil)
	base, _ := url.Parse("http://portal.test")
	creds := &mockCreds{}
	strategy := NewCookieStrategy(creds, jar, base)
	jar.SetCookies(base, []*http.Cookie{{Name: SessionCookie, Value: "abc", Path: "/"}})

	if err := strategy.Clear(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strategy.Credential() != "" {
		t.Error("expected cookie removed from jar")
	}
	if creds.clears != 1 {
		t.Errorf("expected store cleared once, got %d", creds.clears)
	}
}
