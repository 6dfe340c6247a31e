package app

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"wellmatch/internal/domain"
)

func TestRouter_StartsLoading(t *testing.T) {
	p := newTestPortal(&mockBackend{}, &mockCreds{})
	if p.Router.View() != ViewLoading {
		t.Errorf("expected loading, got %s", p.Router.View())
	}
	if err := p.Router.ShowRegister(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected invalid transition before start, got %v", err)
	}
}

func TestRouter_FreshVisitLandsOnLogin(t *testing.T) {
	p := newTestPortal(&mockBackend{}, &mockCreds{})

	v, err := p.Router.Start(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if v != ViewLogin {
		t.Errorf("expected login, got %s", v)
	}
	if !p.Router.Notice().Empty() {
		t.Errorf("expected no notice, got %+v", p.Router.Notice())
	}
	if _, err := p.Router.Start(context.Background()); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected second start to fail, got %v", err)
	}
}

func TestRouter_BadStoredTokenLandsOnLogin(t *testing.T) {
	tokens := map[string]string{
		"malformed": "x.y.z",
		"expired":   professionalToken(t, 42, time.Now().Add(-time.Hour)),
		"client":    signToken(t, jwt.MapClaims{"userType": "client", "exp": time.Now().Add(time.Hour).Unix()}),
	}
	for name, tok := range tokens {
		t.Run(name, func(t *testing.T) {
			p := newTestPortal(&mockBackend{}, &mockCreds{value: tok})
			v, err := p.Router.Start(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if v != ViewLogin {
				t.Errorf("expected login, got %s", v)
			}
			if p.Router.Notice().Kind != NoticeError {
				t.Errorf("expected error notice, got %+v", p.Router.Notice())
			}
		})
	}
}

func TestRouter_StoredTokenRestoresDashboard(t *testing.T) {
	p := newTestPortal(&mockBackend{}, &mockCreds{value: adminToken(t, time.Now().Add(time.Hour))})
	v, err := p.Router.Start(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if v != ViewAdmin {
		t.Errorf("expected admin dashboard, got %s", v)
	}
}

func TestRouter_ProfessionalLogin(t *testing.T) {
	token := professionalToken(t, 42, time.Now().Add(time.Hour))
	pid := int64(42)
	backend := &mockBackend{
		loginFn: func(ctx context.Context, c domain.Credentials) (domain.LoginResult, error) {
			return domain.LoginResult{Token: token, Identity: domain.Identity{Role: domain.RoleProfessional, ProfessionalID: &pid}}, nil
		},
	}
	p := newTestPortal(backend, &mockCreds{})
	if _, err := p.Router.Start(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var seen []View
	p.Router.OnChange(func(v View) { seen = append(seen, v) })

	if err := p.Router.Login(context.Background(), domain.Credentials{Email: "dana@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.Router.View() != ViewProfessional {
		t.Errorf("expected professional dashboard, got %s", p.Router.View())
	}
	sess := p.Sessions.Current()
	if sess == nil || sess.Identity.Role != domain.RoleProfessional || *sess.Identity.ProfessionalID != 42 {
		t.Errorf("unexpected session %+v", sess)
	}
	if len(seen) != 1 || seen[0] != ViewProfessional {
		t.Errorf("expected one transition to professional, got %v", seen)
	}
}

func TestRouter_ClientLoginIsRestricted(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"userType": "client", "userId": 5, "exp": time.Now().Add(time.Hour).Unix()})
	backend := &mockBackend{
		loginFn: func(ctx context.Context, c domain.Credentials) (domain.LoginResult, error) {
			return domain.LoginResult{Token: token, Identity: domain.Identity{Role: domain.RoleClient, UserID: 5}}, nil
		},
	}
	creds := &mockCreds{}
	p := newTestPortal(backend, creds)
	if _, err := p.Router.Start(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	err := p.Router.Login(context.Background(), domain.Credentials{Email: "client@example.com", Password: "secret1"})
	if !errors.Is(err, domain.ErrAccessRestricted) {
		t.Fatalf("expected access restricted, got %v", err)
	}
	if p.Router.View() != ViewLogin {
		t.Errorf("expected login view, got %s", p.Router.View())
	}
	if got := p.Router.Notice().Text; got != "Access restricted to professionals and admins." {
		t.Errorf("unexpected notice %q", got)
	}
	if p.Sessions.Current() != nil || creds.saves != 0 {
		t.Error("expected no session and nothing persisted")
	}
}

func TestRouter_LoginFailureShowsServerMessage(t *testing.T) {
	backend := &mockBackend{
		loginFn: func(ctx context.Context, c domain.Credentials) (domain.LoginResult, error) {
			return domain.LoginResult{}, &domain.APIError{Status: http.StatusUnauthorized, Message: "Invalid email or password"}
		},
	}
	p := newTestPortal(backend, &mockCreds{})
	_, _ = p.Router.Start(context.Background())

	_ = p.Router.Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "nope123"})
	if got := p.Router.Notice().Text; got != "Invalid email or password" {
		t.Errorf("expected server message, got %q", got)
	}
	p.Router.Dismiss()
	if !p.Router.Notice().Empty() {
		t.Error("expected notice dismissed")
	}
}

func TestRouter_RegisterReturnsToLogin(t *testing.T) {
	tests := []struct {
		name     string
		result   domain.RegistrationResult
		wantText string
	}{
		{"immediate", domain.RegistrationResult{}, "Registration complete. Please log in."},
		{"approval", domain.RegistrationResult{RequiresApproval: true}, "Registration received and awaiting admin approval."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mockBackend{
				registerFn: func(ctx context.Context, reg domain.Registration) (domain.RegistrationResult, error) {
					return tt.result, nil
				},
			}
			creds := &mockCreds{}
			p := newTestPortal(backend, creds)
			_, _ = p.Router.Start(context.Background())
			if err := p.Router.ShowRegister(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			reg := domain.Registration{FullName: "Dana Levi", Email: "dana@example.com", Password: "secret1", Confirm: "secret1"}
			if err := p.Router.Register(context.Background(), reg); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if p.Router.View() != ViewLogin {
				t.Errorf("expected login view, got %s", p.Router.View())
			}
			if n := p.Router.Notice(); n.Kind != NoticeSuccess || n.Text != tt.wantText {
				t.Errorf("unexpected notice %+v", n)
			}
			if p.Sessions.Current() != nil || creds.saves != 0 {
				t.Error("registration must not create a session")
			}
		})
	}
}

func TestRouter_RegisterValidationStaysOnForm(t *testing.T) {
	called := false
	backend := &mockBackend{
		registerFn: func(ctx context.Context, reg domain.Registration) (domain.RegistrationResult, error) {
			called = true
			return domain.RegistrationResult{}, nil
		},
	}
	p := newTestPortal(backend, &mockCreds{})
	_, _ = p.Router.Start(context.Background())
	_ = p.Router.ShowRegister()

	err := p.Router.Register(context.Background(), domain.Registration{FullName: "Dana", Email: "d@x.y", Password: "secret1", Confirm: "secret2"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if called {
		t.Error("expected no backend call")
	}
	if p.Router.View() != ViewRegister {
		t.Errorf("expected register view, got %s", p.Router.View())
	}
	if got := p.Router.Notice().Text; got != "Passwords do not match." {
		t.Errorf("unexpected notice %q", got)
	}
}

func TestRouter_LogoutAfterServerFailure(t *testing.T) {
	backend := &mockBackend{
		logoutFn: func(ctx context.Context) error { return errors.New("network down") },
	}
	p, creds := loggedIn(t, backend, adminToken(t, time.Now().Add(time.Hour)))

	p.Router.Logout(context.Background())

	if p.Router.View() != ViewLogin {
		t.Errorf("expected login view, got %s", p.Router.View())
	}
	if p.Sessions.Current() != nil || creds.stored() != "" {
		t.Error("expected session and credential cleared")
	}
}

func TestRouter_UnauthorizedCallForcesLogin(t *testing.T) {
	backend := &mockBackend{
		statsFn: func(ctx context.Context) (domain.Stats, error) {
			return domain.Stats{}, &domain.APIError{Status: http.StatusForbidden}
		},
	}
	p, _ := loggedIn(t, backend, adminToken(t, time.Now().Add(time.Hour)))

	err := p.Moderation.LoadStats(context.Background())
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if p.Router.View() != ViewLogin {
		t.Errorf("expected login view, got %s", p.Router.View())
	}
	if p.Router.Notice().Kind != NoticeError {
		t.Errorf("expected error notice, got %+v", p.Router.Notice())
	}
}

func TestRouter_ToggleLoginRegister(t *testing.T) {
	p := newTestPortal(&mockBackend{}, &mockCreds{})
	_, _ = p.Router.Start(context.Background())

	if err := p.Router.ShowRegister(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.Router.View() != ViewRegister {
		t.Errorf("expected register, got %s", p.Router.View())
	}
	if err := p.Router.ShowLogin(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.Router.View() != ViewLogin {
		t.Errorf("expected login, got %s", p.Router.View())
	}
}
