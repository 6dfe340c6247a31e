package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"wellmatch/internal/domain"
)

var _ domain.AuthAPI = (*Client)(nil)

// Login posts credentials. The token is absent for cookie deployments.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.LoginResult, error) {
	var raw json.RawMessage
	in := map[string]string{"email": creds.Email, "password": creds.Password}
	if err := c.doJSON(ctx, c.anon, http.MethodPost, "/api/login", in, &raw); err != nil {
		return domain.LoginResult{}, err
	}

	fields, err := decodeFields(bytes.NewReader(raw))
	if err != nil {
		return domain.LoginResult{}, &domain.TransportError{Op: "decode login", Err: err}
	}
	id, err := domain.IdentityFromFields(fields)
	if err != nil {
		return domain.LoginResult{}, err
	}

	res := domain.LoginResult{Identity: id}
	if v, ok := fields["token"]; ok && v != nil {
		tok, ok := v.(string)
		if !ok {
			return domain.LoginResult{}, fmt.Errorf("%w: token is %T", domain.ErrMalformedCredential, v)
		}
		res.Token = tok
	}
	return res, nil
}

// Register creates a professional account.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (domain.RegistrationResult, error) {
	in := map[string]string{
		"email":     reg.Email,
		"password":  reg.Password,
		"full_name": reg.FullName,
	}
	var out struct {
		Message          string `json:"message"`
		RequiresApproval bool   `json:"requires_approval"`
	}
	if err := c.doJSON(ctx, c.anon, http.MethodPost, "/api/register", in, &out); err != nil {
		return domain.RegistrationResult{}, err
	}
	return domain.RegistrationResult{Message: out.Message, RequiresApproval: out.RequiresApproval}, nil
}

// Logout asks the backend to invalidate the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/api/logout", nil, nil)
}

// WhoAmI probes the identity behind the ambient credential. A bare profile
// without a role is a professional whose profile id is the professional id.
func (c *Client) WhoAmI(ctx context.Context) (domain.Identity, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, c.whoAmIPath, &raw); err != nil {
		return domain.Identity{}, err
	}
	fields, err := decodeFields(bytes.NewReader(raw))
	if err != nil {
		return domain.Identity{}, &domain.TransportError{Op: "decode who am i", Err: err}
	}
	id, err := domain.IdentityFromFields(fields)
	if err != nil {
		return domain.Identity{}, err
	}

	if id.ProfessionalID == nil && (id.Role == "" || id.Role == domain.RoleProfessional) {
		if v, ok := fields["id"]; ok && v != nil {
			prof, err := domain.IdentityFromFields(map[string]any{"professional_id": v})
			if err != nil {
				return domain.Identity{}, err
			}
			id.Role = domain.RoleProfessional
			id.ProfessionalID = prof.ProfessionalID
		}
	}
	return id, nil
}
