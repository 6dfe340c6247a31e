// Package domain contains the core portal entities and the ports the
// application layer depends on.
package domain

import (
	"context"
	"strings"
	"time"
)

// Role is the closed set of account kinds the backend knows about. Only
// RoleProfessional and RoleAdmin may hold a portal session.
type Role string

const (
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
	RoleClient       Role = "client"
)

// AuthMode selects how the credential travels to the backend. A deployment
// uses exactly one mode.
type AuthMode string

const (
	// TokenMode sends a persisted bearer token in the Authorization header.
	TokenMode AuthMode = "token"
	// CookieMode relies on an HttpOnly session cookie set by the backend.
	CookieMode AuthMode = "cookie"
)

// Identity is the canonical, normalized shape of "who is logged in".
type Identity struct {
	UserID         int64
	Role           Role
	ProfessionalID *int64
}

// Authorize reports whether the identity may use the portal.
func (i Identity) Authorize() error {
	switch i.Role {
	case RoleAdmin:
		return nil
	case RoleProfessional:
		if i.ProfessionalID == nil {
			return ErrMissingProfessionalID
		}
		return nil
	default:
		return ErrAccessRestricted
	}
}

// Session is the client-side record of the authenticated identity. Mode tags
// which credential variant it carries.
type Session struct {
	Mode       AuthMode
	Credential string
	Identity   Identity
	// ExpiresAt is derived from token claims; zero for cookie sessions.
	ExpiresAt time.Time
}

// Expired reports whether a token session is past its expiry claim.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Credentials are the login form values.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the form before any network call.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return &ValidationError{Field: "email", Code: CodeCredentialsRequired}
	}
	return nil
}

// Registration is the professional sign-up form.
type Registration struct {
	FullName string
	Email    string
	Password string
	Confirm  string
}

// MinPasswordLength is the shortest password the sign-up form accepts.
const MinPasswordLength = 6

// Validate applies the client-side sign-up rules in form order.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.FullName) == "" {
		return &ValidationError{Field: "full_name", Code: CodeFullNameRequired}
	}
	if strings.TrimSpace(r.Email) == "" {
		return &ValidationError{Field: "email", Code: CodeCredentialsRequired}
	}
	if r.Password != r.Confirm {
		return &ValidationError{Field: "confirm", Code: CodePasswordMismatch}
	}
	if len(r.Password) < MinPasswordLength {
		return &ValidationError{Field: "password", Code: CodePasswordTooShort}
	}
	return nil
}

// LoginResult is a successful /api/login response after normalization.
type LoginResult struct {
	Token    string
	Identity Identity
}

// RegistrationResult is a successful /api/register response.
type RegistrationResult struct {
	Message          string
	RequiresApproval bool
}

// AuthAPI is the port for the backend's authentication endpoints.
type AuthAPI interface {
	Login(ctx context.Context, creds Credentials) (LoginResult, error)
	Register(ctx context.Context, reg Registration) (RegistrationResult, error)
	Logout(ctx context.Context) error
	// WhoAmI asks the backend which identity the ambient credential
	// belongs to.
	WhoAmI(ctx context.Context) (Identity, error)
}

// CredentialStore is the port for durable client-side credential storage.
// Load returns "" with a nil error when nothing is stored.
type CredentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, credential string) error
	Clear(ctx context.Context) error
}
